package editor

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/kobzarvs/qtext/internal/config"
	"github.com/kobzarvs/qtext/internal/logger"
	"github.com/kobzarvs/qtext/internal/rope"
	"github.com/kobzarvs/qtext/internal/textmodel"
	"github.com/kobzarvs/qtext/internal/treesitter"
)

// Tokenizer supplies highlight tokens for a path.
type Tokenizer interface {
	Tokens(path string) []treesitter.Token
}

// Editor is a single-cursor terminal view over a text model. The cursor is
// a unit offset into the model and follows edits made by anyone.
type Editor struct {
	model    *textmodel.Model
	listener *textmodel.ListenerFuncs
	tokens   Tokenizer

	filename string
	newline  string
	dirty    bool
	status   string
	branch   string

	cursor     int
	goalX      int
	scroll     int
	leftCol    int
	viewHeight int
	follow     bool

	tabWidth    int
	scrollOff   int
	lineNumbers bool

	styleMain             tcell.Style
	styleStatus           tcell.Style
	styleLineNumber       tcell.Style
	styleLineNumberActive tcell.Style
	syntax                map[string]tcell.Style

	paint CellPaint
}

func New(cfg config.Config, m *textmodel.Model) *Editor {
	mainFg := parseColor(cfg.Theme.Foreground, tcell.ColorWhite)
	mainBg := parseColor(cfg.Theme.Background, tcell.ColorBlack)
	statusFg := parseColor(cfg.Theme.StatuslineForeground, tcell.ColorBlack)
	statusBg := parseColor(cfg.Theme.StatuslineBackground, tcell.ColorGray)
	lineNumberFg := parseColor(cfg.Theme.LineNumberForeground, tcell.ColorGray)
	lineNumberActiveFg := parseColor(cfg.Theme.LineNumberActiveForeground, mainFg)

	syntax := make(map[string]tcell.Style)
	for _, kind := range []string{
		"keyword", "string", "comment", "type", "function", "number", "constant",
		"operator", "punctuation", "field", "builtin", "variable", "parameter",
	} {
		fg := parseColor(cfg.Theme.SyntaxColor(kind), mainFg)
		syntax[kind] = tcell.StyleDefault.Foreground(fg).Background(mainBg)
	}

	e := &Editor{
		model:                 m,
		newline:               "\n",
		goalX:                 -1,
		follow:                true,
		tabWidth:              max(cfg.Editor.TabWidth, 1),
		scrollOff:             max(cfg.Editor.ScrollOff, 0),
		lineNumbers:           parseLineNumbers(cfg.Editor.LineNumbers),
		styleMain:             tcell.StyleDefault.Foreground(mainFg).Background(mainBg),
		styleStatus:           tcell.StyleDefault.Foreground(statusFg).Background(statusBg),
		styleLineNumber:       tcell.StyleDefault.Foreground(lineNumberFg).Background(mainBg),
		styleLineNumberActive: tcell.StyleDefault.Foreground(lineNumberActiveFg).Background(mainBg),
		syntax:                syntax,
	}
	e.paint = CellPaint{TabWidth: e.tabWidth}
	e.listener = &textmodel.ListenerFuncs{
		OnSet:      e.textSet,
		OnInserted: e.textInserted,
		OnDeleted:  e.textDeleted,
		OnReplaced: e.textReplaced,
	}
	m.AddListener(e.listener)
	e.newline = detectNewline(m)
	return e
}

// Close detaches the editor from its model.
func (e *Editor) Close() {
	e.model.RemoveListener(e.listener)
}

func (e *Editor) SetFilename(path string)     { e.filename = path }
func (e *Editor) SetTokenizer(t Tokenizer)    { e.tokens = t }
func (e *Editor) SetGitBranch(branch string)  { e.branch = branch }
func (e *Editor) SetStatusMessage(msg string) { e.status = msg }
func (e *Editor) Dirty() bool                 { return e.dirty }
func (e *Editor) Cursor() int                 { return e.cursor }
func (e *Editor) Scroll() int                 { return e.scroll }

// SetCursor moves the cursor to offset and makes top the first visible
// line. Both are clamped to the content.
func (e *Editor) SetCursor(offset, top int) {
	e.cursor = e.snap(min(max(offset, 0), e.model.Len()))
	e.scroll = min(max(top, 0), e.model.LineCount()-1)
	e.goalX = -1
}

func (e *Editor) textSet() {
	e.cursor = e.snap(min(e.cursor, e.model.Len()))
	e.scroll = min(e.scroll, e.model.LineCount()-1)
	e.newline = detectNewline(e.model)
	e.dirty = false
}

func (e *Editor) textInserted(index int, text *rope.Text) {
	if index <= e.cursor {
		e.cursor += text.Len()
	}
	e.dirty = true
}

func (e *Editor) textDeleted(start, end int) {
	switch {
	case e.cursor >= end:
		e.cursor -= end - start
	case e.cursor > start:
		e.cursor = start
	}
	e.dirty = true
}

func (e *Editor) textReplaced(start, end int, text *rope.Text) {
	switch {
	case e.cursor >= end:
		e.cursor += text.Len() - (end - start)
	case e.cursor > start:
		e.cursor = start + text.Len()
	}
	e.dirty = true
}

// detectNewline picks the terminator ending the first line.
func detectNewline(m *textmodel.Model) string {
	n, err := m.LineLength(0)
	if err != nil || n >= m.Len() {
		return "\n"
	}
	c, _ := m.CharAt(n)
	if c == '\r' {
		if n+1 < m.Len() {
			if next, _ := m.CharAt(n + 1); next == '\n' {
				return "\r\n"
			}
		}
		return "\r"
	}
	return "\n"
}

// line returns the start offset, length and index of the cursor's line.
func (e *Editor) line() (start, length, idx int) {
	idx, _ = e.model.LineAtOffset(e.cursor)
	start, _ = e.model.OffsetAtLine(idx)
	length, _ = e.model.LineLength(idx)
	return start, length, idx
}

// snap moves offset off the second half of a CRLF or surrogate pair.
func (e *Editor) snap(offset int) int {
	if offset <= 0 || offset >= e.model.Len() {
		return offset
	}
	prev, _ := e.model.CharAt(offset - 1)
	cur, _ := e.model.CharAt(offset)
	if joined(prev, cur) {
		return offset - 1
	}
	return offset
}

// joined reports whether a and b form a CRLF or a surrogate pair.
func joined(a, b uint16) bool {
	if a == '\r' && b == '\n' {
		return true
	}
	return utf16.DecodeRune(rune(a), rune(b)) != utf8.RuneError
}

func (e *Editor) next(offset int) int {
	if offset >= e.model.Len() {
		return offset
	}
	c, _ := e.model.CharAt(offset)
	if offset+1 < e.model.Len() {
		d, _ := e.model.CharAt(offset + 1)
		if joined(c, d) {
			return offset + 2
		}
	}
	return offset + 1
}

func (e *Editor) prev(offset int) int {
	if offset <= 0 {
		return 0
	}
	return e.snap(offset - 1)
}

// columnX returns the screen column of offset within a line starting at
// start.
func (e *Editor) columnX(start, offset int) int {
	w, _ := e.model.MeasureText(start, offset, &e.paint)
	return w
}

// offsetAtX maps a screen column to an offset on the given line.
func (e *Editor) offsetAtX(lineIdx, x int) int {
	start, _ := e.model.OffsetAtLine(lineIdx)
	length, _ := e.model.LineLength(lineIdx)
	widths := make([]int, length)
	n, _ := e.model.TextWidths(start, start+length, widths, &e.paint)
	col := 0
	for i := 0; i < n; i++ {
		if widths[i] == 0 {
			continue
		}
		if col+widths[i] > x {
			return start + i
		}
		col += widths[i]
	}
	return start + length
}

func (e *Editor) moveVertical(delta int) {
	start, _, idx := e.line()
	if e.goalX < 0 {
		e.goalX = e.columnX(start, e.cursor)
	}
	target := min(max(idx+delta, 0), e.model.LineCount()-1)
	e.cursor = e.offsetAtX(target, e.goalX)
}

func (e *Editor) insert(s string) {
	if err := e.model.Insert(e.cursor, s); err != nil {
		e.status = err.Error()
	}
}

func (e *Editor) deleteRange(start, end int) {
	if end <= start {
		return
	}
	if err := e.model.Delete(start, end); err != nil {
		e.status = err.Error()
	}
}

// HandleKey applies a key event and reports whether the editor should quit.
func (e *Editor) HandleKey(ev *tcell.EventKey) bool {
	e.status = ""
	e.follow = true
	vertical := false
	switch ev.Key() {
	case tcell.KeyCtrlQ, tcell.KeyCtrlC:
		return true
	case tcell.KeyLeft:
		e.cursor = e.prev(e.cursor)
	case tcell.KeyRight:
		e.cursor = e.next(e.cursor)
	case tcell.KeyUp:
		e.moveVertical(-1)
		vertical = true
	case tcell.KeyDown:
		e.moveVertical(1)
		vertical = true
	case tcell.KeyPgUp:
		e.moveVertical(-max(e.viewHeight-1, 1))
		vertical = true
	case tcell.KeyPgDn:
		e.moveVertical(max(e.viewHeight-1, 1))
		vertical = true
	case tcell.KeyHome:
		start, _, _ := e.line()
		e.cursor = start
	case tcell.KeyEnd:
		start, length, _ := e.line()
		e.cursor = start + length
	case tcell.KeyEnter:
		e.insert(e.newline)
	case tcell.KeyTab:
		e.insert("\t")
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		e.deleteRange(e.prev(e.cursor), e.cursor)
	case tcell.KeyDelete:
		e.deleteRange(e.cursor, e.next(e.cursor))
	case tcell.KeyRune:
		e.insert(string(ev.Rune()))
	}
	if !vertical {
		e.goalX = -1
	}
	return false
}

func (e *Editor) HandleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	switch {
	case ev.Buttons()&tcell.WheelUp != 0:
		e.scroll = max(e.scroll-3, 0)
		e.follow = false
	case ev.Buttons()&tcell.WheelDown != 0:
		e.scroll = min(e.scroll+3, e.model.LineCount()-1)
		e.follow = false
	case ev.Buttons()&tcell.Button1 != 0:
		if y >= e.viewHeight {
			return
		}
		idx := min(e.scroll+y, e.model.LineCount()-1)
		e.cursor = e.offsetAtX(idx, max(x-e.gutterWidth()+e.leftCol, 0))
		e.goalX = -1
		e.follow = true
	}
}

func (e *Editor) ensureCursorVisible() {
	_, _, idx := e.line()
	off := min(e.scrollOff, max((e.viewHeight-1)/2, 0))
	if idx-off < e.scroll {
		e.scroll = max(idx-off, 0)
	}
	if idx+off >= e.scroll+e.viewHeight {
		e.scroll = idx + off - e.viewHeight + 1
	}
	e.scroll = min(max(e.scroll, 0), max(e.model.LineCount()-1, 0))
}

func (e *Editor) gutterWidth() int {
	if !e.lineNumbers {
		return 0
	}
	digits := max(len(strconv.Itoa(e.model.LineCount())), 2)
	return 1 + digits + 1
}

func parseLineNumbers(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "off", "none", "false":
		return false
	}
	return true
}

func (e *Editor) statusLine(w int) string {
	name := e.filename
	if name == "" {
		name = "[No Name]"
	} else {
		name = filepath.Base(name)
	}
	if e.dirty {
		name += "*"
	}
	left := " " + name
	if e.status != "" {
		left += " | " + e.status
	}
	start, _, idx := e.line()
	right := fmt.Sprintf(" Ln %d, Col %d | %d lines ", idx+1, e.columnX(start, e.cursor)+1, e.model.LineCount())
	if e.branch != "" {
		right += "| " + e.branch + " "
	}
	return composeStatusLine(left, right, w)
}

// composeStatusLine pads or truncates left so that right ends at width.
func composeStatusLine(left, right string, width int) string {
	if width <= 0 {
		return ""
	}
	rw := runewidth.StringWidth(right)
	if rw >= width {
		return runewidth.Truncate(right, width, "")
	}
	left = runewidth.Truncate(left, width-rw, "…")
	return runewidth.FillRight(left, width-rw) + right
}

func parseColor(name string, fallback tcell.Color) tcell.Color {
	name = strings.TrimSpace(name)
	if name == "" {
		return fallback
	}
	if strings.HasPrefix(name, "#") && len(name) == 7 {
		v, err := strconv.ParseUint(name[1:], 16, 32)
		if err != nil {
			return fallback
		}
		return tcell.NewHexColor(int32(v))
	}
	name = strings.ToLower(name)
	if name == "default" {
		return tcell.ColorDefault
	}
	c := tcell.GetColor(name)
	if c == tcell.ColorDefault {
		return fallback
	}
	return c
}

// Render draws the visible lines, the gutter and the status line, and
// places the terminal cursor.
func (e *Editor) Render(s tcell.Screen) {
	w, h := s.Size()
	s.Clear()
	if w <= 0 || h <= 0 {
		s.Show()
		return
	}
	e.viewHeight = max(h-1, 1)
	if e.follow {
		e.ensureCursorVisible()
	}

	gutter := e.gutterWidth()
	curStart, _, curLine := e.line()
	curX := e.columnX(curStart, e.cursor)
	textW := max(w-gutter, 1)
	if curX < e.leftCol {
		e.leftCol = curX
	}
	if curX >= e.leftCol+textW {
		e.leftCol = curX - textW + 1
	}

	visStart, _ := e.model.OffsetAtLine(e.scroll)
	lastLine := min(e.scroll+e.viewHeight, e.model.LineCount()) - 1
	lastStart, _ := e.model.OffsetAtLine(lastLine)
	lastLen, _ := e.model.LineLength(lastLine)
	kinds := e.visibleKinds(visStart, lastStart+lastLen)

	e.paint = CellPaint{Screen: s, TabWidth: e.tabWidth, Origin: gutter - e.leftCol, Left: gutter, Right: w}
	for row := 0; row < e.viewHeight; row++ {
		idx := e.scroll + row
		if idx >= e.model.LineCount() {
			break
		}
		if gutter > 0 {
			style := e.styleLineNumber
			if idx == curLine {
				style = e.styleLineNumberActive
			}
			num := fmt.Sprintf("%*d ", gutter-1, idx+1)
			for i, r := range num {
				s.SetContent(i, row, r, nil, style)
			}
		}
		start, _ := e.model.OffsetAtLine(idx)
		length, _ := e.model.LineLength(idx)
		x := gutter - e.leftCol
		for a := start; a < start+length; {
			kind := kinds[a-visStart]
			b := a + 1
			for b < start+length && kinds[b-visStart] == kind {
				b++
			}
			e.paint.Style = e.styleMain
			if st, ok := e.syntax[kind]; ok && kind != "" {
				e.paint.Style = st
			}
			if err := e.model.DrawText(a, b, x, row, &e.paint); err != nil {
				logger.Error("draw failed", "line", idx, "error", err)
				break
			}
			x = e.paint.X
			a = b
		}
		for ; x < w; x++ {
			if x >= gutter {
				s.SetContent(x, row, ' ', nil, e.styleMain)
			}
		}
	}

	status := e.statusLine(w)
	col := 0
	for _, r := range status {
		s.SetContent(col, h-1, r, nil, e.styleStatus)
		col += runewidth.RuneWidth(r)
	}
	for ; col < w; col++ {
		s.SetContent(col, h-1, ' ', nil, e.styleStatus)
	}

	if row := curLine - e.scroll; row >= 0 && row < e.viewHeight {
		s.ShowCursor(gutter+curX-e.leftCol, row)
	} else {
		s.HideCursor()
	}
	s.Show()
}

// visibleKinds resolves the highlight kind of every unit in [start, end).
// Overlapping tokens go to the higher priority kind.
func (e *Editor) visibleKinds(start, end int) []string {
	kinds := make([]string, max(end-start, 0))
	if e.tokens == nil || e.filename == "" {
		return kinds
	}
	for _, tok := range e.tokens.Tokens(e.filename) {
		if tok.Start >= end {
			break
		}
		a, b := max(tok.Start, start), min(tok.Stop, end)
		for i := a; i < b; i++ {
			cur := kinds[i-start]
			if cur == "" || treesitter.Priority(tok.Kind) > treesitter.Priority(cur) {
				kinds[i-start] = tok.Kind
			}
		}
	}
	return kinds
}
