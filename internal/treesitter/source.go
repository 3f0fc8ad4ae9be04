package treesitter

import (
	"unicode/utf16"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kobzarvs/qtext/internal/rope"
)

// source is a snapshot encoded as UTF-8 for the parser. units maps every
// byte offset, and len(bytes), to the unit offset of its rune.
type source struct {
	bytes []byte
	units []int32
}

func encode(t *rope.Text) source {
	src := source{
		bytes: make([]byte, 0, t.Len()),
		units: make([]int32, 0, t.Len()+1),
	}
	r := t.NewReader()
	for {
		off := int32(r.Offset())
		ch, _, err := r.ReadRune()
		if err != nil {
			break
		}
		n := len(src.bytes)
		src.bytes = utf8.AppendRune(src.bytes, ch)
		for range len(src.bytes) - n {
			src.units = append(src.units, off)
		}
	}
	src.units = append(src.units, int32(t.Len()))
	return src
}

func (s source) unitAt(b int) int {
	return int(s.units[min(max(b, 0), len(s.units)-1)])
}

// position is a byte index together with the parser's row/column point.
// Rows advance on LF only.
type position struct {
	index uint32
	point sitter.Point
}

func (p position) advance(t *rope.Text) position {
	r := t.NewReader()
	for {
		ch, size, err := r.ReadRune()
		if err != nil {
			return p
		}
		p.index += uint32(size)
		if ch == '\n' {
			p.point.Row++
			p.point.Column = 0
		} else {
			p.point.Column += uint32(size)
		}
	}
}

// change is one edit as reported to listeners, kept with the text it was
// applied to.
type change struct {
	old   *rope.Text
	start int
	end   int
	text  *rope.Text
}

func (c change) newLen() int {
	if c.text == nil {
		return 0
	}
	return c.text.Len()
}

// touchesSurrogate reports whether a surrogate sits next to either edit
// boundary. Such an edit can split or join a pair, which changes the UTF-8
// length of units outside the edited range.
func (c change) touchesSurrogate() bool {
	surrogateAt := func(t *rope.Text, i int) bool {
		return i >= 0 && i < t.Len() && utf16.IsSurrogate(rune(t.CharAt(i)))
	}
	if surrogateAt(c.old, c.start-1) || surrogateAt(c.old, c.end) {
		return true
	}
	n := c.newLen()
	return n > 0 && (surrogateAt(c.text, 0) || surrogateAt(c.text, n-1))
}

func (c change) input() sitter.EditInput {
	start := position{}.advance(c.old.Slice(0, c.start))
	oldEnd := start.advance(c.old.Slice(c.start, c.end))
	newEnd := start
	if c.text != nil {
		newEnd = start.advance(c.text)
	}
	return sitter.EditInput{
		StartIndex:  start.index,
		OldEndIndex: oldEnd.index,
		NewEndIndex: newEnd.index,
		StartPoint:  start.point,
		OldEndPoint: oldEnd.point,
		NewEndPoint: newEnd.point,
	}
}
