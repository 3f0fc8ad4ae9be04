package editor

import (
	"slices"
	"testing"
	"unicode/utf16"

	"github.com/gdamore/tcell/v2"
)

func units(s string) []uint16 { return utf16.Encode([]rune(s)) }

func TestTextWidthsClusters(t *testing.T) {
	p := &CellPaint{TabWidth: 4}
	run := units("a😀\tb中e\u0301")
	widths := make([]int, len(run))
	n := p.TextWidths(run, widths)
	if n != len(run) {
		t.Fatalf("TextWidths = %d, want %d", n, len(run))
	}
	want := []int{1, 2, 0, 1, 1, 2, 1, 0}
	if !slices.Equal(widths, want) {
		t.Fatalf("widths = %v, want %v", widths, want)
	}
	if got := p.MeasureText(run); got != 8 {
		t.Fatalf("MeasureText = %d, want 8", got)
	}
}

func TestMeasureTabStops(t *testing.T) {
	p := &CellPaint{TabWidth: 4}
	if got := p.MeasureText(units("\t")); got != 4 {
		t.Fatalf("MeasureText(tab) = %d, want 4", got)
	}
	if got := p.MeasureText(units("ab\tc")); got != 5 {
		t.Fatalf("MeasureText(ab tab c) = %d, want 5", got)
	}
}

func TestDrawTextClipsAndAdvances(t *testing.T) {
	s := tcell.NewSimulationScreen("UTF-8")
	if err := s.Init(); err != nil {
		t.Fatalf("init screen: %v", err)
	}
	defer s.Fini()
	s.SetSize(10, 2)

	p := &CellPaint{Screen: s, TabWidth: 4, Right: 3}
	p.DrawText(units("abcd"), 0, 0)
	if p.X != 3 {
		t.Fatalf("X = %d, want 3", p.X)
	}
	p.Right = 10
	p.DrawText(units("\u0001"), 5, 1)
	s.Show()

	cells, w, _ := s.GetContents()
	for i, want := range "abc" {
		if got := cells[i].Runes; len(got) == 0 || got[0] != want {
			t.Fatalf("cell %d = %q, want %q", i, got, want)
		}
	}
	if got := cells[3].Runes; len(got) > 0 && got[0] == 'd' {
		t.Fatalf("cell 3 drawn past Right")
	}
	if got := cells[w+5].Runes; len(got) == 0 || got[0] != replacement {
		t.Fatalf("control cell = %q, want replacement", got)
	}
}

func TestDrawTextSkipsLeftOfClip(t *testing.T) {
	s := tcell.NewSimulationScreen("UTF-8")
	if err := s.Init(); err != nil {
		t.Fatalf("init screen: %v", err)
	}
	defer s.Fini()
	s.SetSize(10, 1)

	p := &CellPaint{Screen: s, TabWidth: 4, Left: 2, Right: 10}
	p.DrawText(units("abcd"), 0, 0)
	s.Show()
	cells, _, _ := s.GetContents()
	if got := cells[0].Runes; len(got) > 0 && got[0] == 'a' {
		t.Fatalf("cell 0 drawn left of clip")
	}
	if got := cells[2].Runes; len(got) == 0 || got[0] != 'c' {
		t.Fatalf("cell 2 = %q, want 'c'", got)
	}
}
