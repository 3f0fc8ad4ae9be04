package textmodel

import (
	"errors"
	"math/rand/v2"
	"testing"
	"unicode/utf16"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kobzarvs/qtext/internal/logger"
)

// refLineStarts returns the offset of every line start in s.
func refLineStarts(s []uint16) []int {
	starts := []int{0}
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\r':
			if i+1 < len(s) && s[i+1] == '\n' {
				i++
			}
			starts = append(starts, i+1)
		case '\n':
			starts = append(starts, i+1)
		}
	}
	return starts
}

func refLineAt(starts []int, offset int) int {
	line := 0
	for i, s := range starts {
		if s <= offset {
			line = i
		}
	}
	return line
}

func TestLineScenario(t *testing.T) {
	m := NewFromString("abc\ndef\r\nghi")
	if got := m.LineCount(); got != 3 {
		t.Fatalf("LineCount = %d, want 3", got)
	}
	for line, want := range []int{0, 4, 9} {
		got, err := m.OffsetAtLine(line)
		if err != nil || got != want {
			t.Fatalf("OffsetAtLine(%d) = %d, %v, want %d", line, got, err, want)
		}
	}
	if got, err := m.LineLength(1); err != nil || got != 3 {
		t.Fatalf("LineLength(1) = %d, %v, want 3", got, err)
	}
	if got, err := m.LineAtOffset(9); err != nil || got != 2 {
		t.Fatalf("LineAtOffset(9) = %d, %v, want 2", got, err)
	}
	line, err := m.Line(1)
	if err != nil || line.String() != "def" {
		t.Fatalf("Line(1) = %v, %v, want def", line, err)
	}
}

func TestInsertKeepsLines(t *testing.T) {
	m := NewFromString("abc\ndef")
	if _, err := m.OffsetAtLine(1); err != nil {
		t.Fatalf("OffsetAtLine error: %v", err)
	}
	if err := m.Insert(3, "X"); err != nil {
		t.Fatalf("insert error: %v", err)
	}
	if got := m.String(); got != "abcX\ndef" {
		t.Fatalf("content = %q, want %q", got, "abcX\ndef")
	}
	if got := m.LineCount(); got != 2 {
		t.Fatalf("LineCount = %d, want 2", got)
	}
	if got, _ := m.OffsetAtLine(1); got != 5 {
		t.Fatalf("OffsetAtLine(1) = %d, want 5", got)
	}
}

func TestCRLFBoundaryEdits(t *testing.T) {
	tests := []struct {
		name      string
		initial   string
		edit      func(m *Model) error
		want      string
		wantLines int
	}{
		{"split pair", "a\r\nb", func(m *Model) error { return m.Insert(2, "x") }, "a\rx\nb", 3},
		{"join pair", "a\rx\nb", func(m *Model) error { return m.Delete(2, 3) }, "a\r\nb", 2},
		{"lf after cr", "a\rb", func(m *Model) error { return m.Insert(2, "\n") }, "a\r\nb", 2},
		{"cr before lf", "a\nb", func(m *Model) error { return m.Insert(1, "\r") }, "a\r\nb", 2},
		{"drop cr", "a\r\nb", func(m *Model) error { return m.Delete(1, 2) }, "a\nb", 2},
		{"drop lf", "a\r\nb", func(m *Model) error { return m.Delete(2, 3) }, "a\rb", 2},
		{"replace across", "a\r\nb\r\nc", func(m *Model) error { return m.Replace(2, 4, "\r") }, "a\r\r\r\nc", 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewFromString(tt.initial)
			if err := tt.edit(m); err != nil {
				t.Fatalf("edit error: %v", err)
			}
			if got := m.String(); got != tt.want {
				t.Fatalf("content = %q, want %q", got, tt.want)
			}
			if got := m.LineCount(); got != tt.wantLines {
				t.Fatalf("LineCount = %d, want %d", got, tt.wantLines)
			}
		})
	}
}

func TestOffsetInsideCRLF(t *testing.T) {
	m := NewFromString("ab\r\ncd\r\n")
	for _, tt := range []struct{ offset, line int }{
		{2, 0}, {3, 0}, {4, 1}, {7, 1}, {8, 2},
	} {
		if got, err := m.LineAtOffset(tt.offset); err != nil || got != tt.line {
			t.Fatalf("LineAtOffset(%d) = %d, %v, want %d", tt.offset, got, err, tt.line)
		}
	}
	// Approach from above so the scan runs backward.
	if _, err := m.OffsetAtLine(2); err != nil {
		t.Fatalf("OffsetAtLine(2): %v", err)
	}
	if got, _ := m.LineAtOffset(3); got != 0 {
		t.Fatalf("LineAtOffset(3) from above = %d, want 0", got)
	}
	if got, _ := m.OffsetAtLine(1); got != 4 {
		t.Fatalf("OffsetAtLine(1) from above = %d, want 4", got)
	}
}

func TestLinesMatchReference(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	alphabet := []rune{'a', 'b', '\r', '\n', 'ж', ' '}
	randomText := func(n int) string {
		rs := make([]rune, n)
		for i := range rs {
			rs[i] = alphabet[rng.IntN(len(alphabet))]
		}
		return string(rs)
	}

	m := NewFromString(randomText(200))
	for step := 0; step < 300; step++ {
		n := m.Len()
		switch rng.IntN(3) {
		case 0:
			if err := m.Insert(rng.IntN(n+1), randomText(rng.IntN(6))); err != nil {
				t.Fatalf("step %d: insert: %v", step, err)
			}
		case 1:
			start := rng.IntN(n + 1)
			if err := m.Delete(start, start+rng.IntN(n-start+1)/4); err != nil {
				t.Fatalf("step %d: delete: %v", step, err)
			}
		case 2:
			start := rng.IntN(n + 1)
			end := start + rng.IntN(n-start+1)/4
			if err := m.Replace(start, end, randomText(rng.IntN(4))); err != nil {
				t.Fatalf("step %d: replace: %v", step, err)
			}
		}

		units := utf16.Encode([]rune(m.String()))
		starts := refLineStarts(units)
		if m.LineCount() != len(starts) {
			t.Fatalf("step %d: LineCount = %d, want %d", step, m.LineCount(), len(starts))
		}
		cold := NewFromText(m.Snapshot())
		for probe := 0; probe < 8; probe++ {
			line := rng.IntN(len(starts))
			got, err := m.OffsetAtLine(line)
			if err != nil || got != starts[line] {
				t.Fatalf("step %d: OffsetAtLine(%d) = %d, %v, want %d", step, line, got, err, starts[line])
			}
			if c, _ := cold.OffsetAtLine(line); c != got {
				t.Fatalf("step %d: cold OffsetAtLine(%d) = %d, warm %d", step, line, c, got)
			}
			if back, _ := m.LineAtOffset(got); back != line {
				t.Fatalf("step %d: LineAtOffset(OffsetAtLine(%d)) = %d", step, line, back)
			}

			offset := rng.IntN(len(units) + 1)
			lineAt, err := m.LineAtOffset(offset)
			if err != nil || lineAt != refLineAt(starts, offset) {
				t.Fatalf("step %d: LineAtOffset(%d) = %d, %v, want %d", step, offset, lineAt, err, refLineAt(starts, offset))
			}
			if c, _ := cold.LineAtOffset(offset); c != lineAt {
				t.Fatalf("step %d: cold LineAtOffset(%d) = %d, warm %d", step, offset, c, lineAt)
			}
			if start, _ := m.OffsetAtLine(lineAt); start > offset {
				t.Fatalf("step %d: OffsetAtLine(LineAtOffset(%d)) = %d", step, offset, start)
			}
		}
	}
}

func TestInsertDeleteInverse(t *testing.T) {
	for _, initial := range []string{"", "plain", "a\r\nb\rc\nd", "\r\n\r\n"} {
		for index := 0; index <= len(initial); index++ {
			for _, ins := range []string{"x", "\n", "\r", "\r\n", "y\r"} {
				m := NewFromString(initial)
				lines := m.LineCount()
				if err := m.Insert(index, ins); err != nil {
					t.Fatalf("insert: %v", err)
				}
				if err := m.Delete(index, index+len(ins)); err != nil {
					t.Fatalf("delete: %v", err)
				}
				if m.String() != initial || m.LineCount() != lines {
					t.Fatalf("%q insert %q at %d: got %q with %d lines, want %d", initial, ins, index, m.String(), m.LineCount(), lines)
				}
			}
		}
	}
}

func TestInconsistentLineCountReported(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	logger.Use(zap.New(core))
	defer logger.Use(nil)

	m := NewFromString("a\nb")
	m.lineCount = 3
	if _, err := m.OffsetAtLine(2); !errors.Is(err, ErrLineIndex) {
		t.Fatalf("OffsetAtLine error = %v, want ErrLineIndex", err)
	}

	m.lineCount = 1
	if _, err := m.LineAtOffset(3); !errors.Is(err, ErrLineIndex) {
		t.Fatalf("LineAtOffset error = %v, want ErrLineIndex", err)
	}
	if logs.Len() != 2 {
		t.Fatalf("logged %d errors, want 2", logs.Len())
	}
}
