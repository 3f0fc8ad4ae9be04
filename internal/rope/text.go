package rope

import (
	"fmt"
	"sync"
	"unicode/utf16"

	"github.com/cespare/xxhash/v2"
)

// Text is an immutable sequence of UTF-16 code units stored as a balanced
// binary tree of chunks. Every editing method returns a new Text; subtrees
// that an edit does not touch are shared between the old and the new value,
// so holding on to an old Text is cheap.
//
// A *Text is safe for concurrent use by multiple goroutines. Position
// memoization for sequential access lives in Cursor, which is not.
type Text struct {
	root *node

	hashOnce sync.Once
	hash     uint64
}

var empty = &Text{root: emptyNode}

// Empty returns the empty text.
func Empty() *Text {
	return empty
}

// FromString encodes s as UTF-16 and returns it as a single-leaf text.
func FromString(s string) *Text {
	if s == "" {
		return empty
	}
	return &Text{root: leafOf(utf16.Encode([]rune(s)))}
}

// FromUnits returns a text holding a copy of units.
func FromUnits(units []uint16) *Text {
	if len(units) == 0 {
		return empty
	}
	cp := make([]uint16, len(units))
	copy(cp, units)
	return &Text{root: leafOf(cp)}
}

func newText(n *node) *Text {
	if n.length == 0 {
		return empty
	}
	return &Text{root: n}
}

// Len returns the number of UTF-16 code units.
func (t *Text) Len() int {
	return t.root.length
}

// CharAt returns the unit at index i. It panics if i is out of range.
func (t *Text) CharAt(i int) uint16 {
	if i < 0 || i >= t.root.length {
		panic(fmt.Sprintf("rope: index %d out of range [0:%d)", i, t.root.length))
	}
	return t.root.charAt(i)
}

func (t *Text) checkRange(op string, start, end int) {
	if start < 0 || start > end || end > t.root.length {
		panic(fmt.Sprintf("rope: %s [%d:%d] out of range with length %d", op, start, end, t.root.length))
	}
}

// Slice returns the text in [start, end). The whole text is returned as is.
func (t *Text) Slice(start, end int) *Text {
	t.checkRange("slice", start, end)
	if start == 0 && end == t.root.length {
		return t
	}
	if start == end {
		return empty
	}
	return newText(t.root.subNode(start, end))
}

// Concat returns t followed by other.
func (t *Text) Concat(other *Text) *Text {
	if other.Len() == 0 {
		return t
	}
	if t.Len() == 0 {
		return other
	}
	return &Text{root: concatNodes(t.ensureChunked().root, other.ensureChunked().root)}
}

// Insert returns t with other inserted at index.
func (t *Text) Insert(index int, other *Text) *Text {
	t.checkRange("insert", index, index)
	c := t.ensureChunked()
	return c.Slice(0, index).Concat(other).Concat(c.Slice(index, c.Len()))
}

// InsertString is Insert for a Go string.
func (t *Text) InsertString(index int, s string) *Text {
	return t.Insert(index, FromString(s))
}

// Delete returns t without the units in [start, end).
func (t *Text) Delete(start, end int) *Text {
	t.checkRange("delete", start, end)
	if start == end {
		return t
	}
	c := t.ensureChunked()
	return c.Slice(0, start).Concat(c.Slice(end, c.Len()))
}

// ensureChunked breaks a freshly loaded single leaf into block sized leaves
// so that edits share structure instead of copying the whole leaf.
func (t *Text) ensureChunked() *Text {
	if t.root.length > BlockSize && t.root.isLeaf() {
		return &Text{root: chunk(t.root, 0, t.root.length)}
	}
	return t
}

// GetChars copies the units in [start, end) into dst starting at dstOff.
func (t *Text) GetChars(start, end int, dst []uint16, dstOff int) {
	t.checkRange("getChars", start, end)
	if dstOff < 0 || dstOff+end-start > len(dst) {
		panic(fmt.Sprintf("rope: getChars destination [%d:%d] exceeds length %d", dstOff, dstOff+end-start, len(dst)))
	}
	t.root.getChars(start, end, dst[dstOff:])
}

// Units returns a fresh copy of all units.
func (t *Text) Units() []uint16 {
	units := make([]uint16, t.root.length)
	t.root.getChars(0, t.root.length, units)
	return units
}

func (t *Text) String() string {
	return string(utf16.Decode(t.Units()))
}

// Equal reports whether t and other hold the same units.
func (t *Text) Equal(other *Text) bool {
	if t == other {
		return true
	}
	if other == nil || t.Len() != other.Len() {
		return false
	}
	c := other.Cursor()
	i := 0
	return t.root.walkLeaves(func(leaf *node) bool {
		for j := 0; j < leaf.length; j++ {
			if leaf.leafAt(j) != c.CharAt(i) {
				return false
			}
			i++
		}
		return true
	})
}

// Hash returns a content hash of the text. Equal texts hash equally
// regardless of their tree shape. The value is computed on first use.
func (t *Text) Hash() uint64 {
	t.hashOnce.Do(func() {
		d := xxhash.New()
		var buf [2 * BlockSize]byte
		t.root.walkLeaves(func(leaf *node) bool {
			for i := 0; i < leaf.length; i += BlockSize {
				n := min(BlockSize, leaf.length-i)
				for j := 0; j < n; j++ {
					u := leaf.leafAt(i + j)
					buf[2*j] = byte(u)
					buf[2*j+1] = byte(u >> 8)
				}
				_, _ = d.Write(buf[:2*n])
			}
			return true
		})
		t.hash = d.Sum64()
	})
	return t.hash
}

// DrawText draws [start, end) with p.
func (t *Text) DrawText(start, end, x, y int, p Paint) {
	t.checkRange("drawText", start, end)
	t.root.drawText(start, end, x, y, p)
}

// MeasureText measures [start, end) with p.
func (t *Text) MeasureText(start, end int, p Paint) int {
	t.checkRange("measureText", start, end)
	return t.root.measureText(start, end, p)
}

// TextWidths stores per-unit widths of [start, end) into widths.
func (t *Text) TextWidths(start, end int, widths []int, p Paint) int {
	t.checkRange("textWidths", start, end)
	return t.root.textWidths(start, end, widths, p)
}

func (t *Text) depth() int {
	return t.root.depth()
}
