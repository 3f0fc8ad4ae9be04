package editor

import (
	"unicode/utf16"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"
)

// CellPaint draws UTF-16 runs onto a tcell screen, one grapheme cluster per
// cell group. Tabs advance to the next multiple of TabWidth counted from
// Origin. Cells left of Left are skipped and drawing stops at Right. X holds
// the pen position after the last DrawText.
type CellPaint struct {
	Screen   tcell.Screen
	Style    tcell.Style
	TabWidth int
	Origin   int
	Left     int
	Right    int
	X        int
}

const replacement = '�'

// clusters walks the grapheme clusters of run, reporting each cluster's
// runes, its length in units and its width in cells when starting at
// column col.
func (p *CellPaint) clusters(run []uint16, col int, fn func(runes []rune, units, width int)) {
	g := uniseg.NewGraphemes(string(utf16.Decode(run)))
	for g.Next() {
		runes := g.Runes()
		units := 0
		for _, r := range runes {
			units += utf16.RuneLen(r)
		}
		width := g.Width()
		switch {
		case runes[0] == '\t':
			tw := max(p.TabWidth, 1)
			width = tw - col%tw
		case width == 0:
			width = 1
		}
		fn(runes, units, width)
		col += width
	}
}

func (p *CellPaint) DrawText(run []uint16, x, y int) {
	p.clusters(run, x-p.Origin, func(runes []rune, _ int, width int) {
		if x+width > p.Right {
			x = p.Right
			return
		}
		if x < p.Left {
			x += width
			return
		}
		switch {
		case runes[0] == '\t':
			for i := 0; i < width; i++ {
				p.Screen.SetContent(x+i, y, ' ', nil, p.Style)
			}
		case uniseg.StringWidth(string(runes)) == 0:
			p.Screen.SetContent(x, y, replacement, nil, p.Style)
		default:
			p.Screen.SetContent(x, y, runes[0], runes[1:], p.Style)
		}
		x += width
	})
	p.X = x
}

// MeasureText returns the width of run in cells, with tab stops counted
// from the start of run.
func (p *CellPaint) MeasureText(run []uint16) int {
	total := 0
	p.clusters(run, 0, func(_ []rune, _ int, width int) {
		total += width
	})
	return total
}

// TextWidths gives the first unit of each cluster the cluster's width and
// every following unit zero.
func (p *CellPaint) TextWidths(run []uint16, widths []int) int {
	i := 0
	p.clusters(run, 0, func(_ []rune, units, width int) {
		for k := 0; k < units && i < len(widths); k++ {
			if k == 0 {
				widths[i] = width
			} else {
				widths[i] = 0
			}
			i++
		}
	})
	return i
}
