// Package textmodel wraps a rope.Text with line bookkeeping, change
// notification and bounds-checked access.
package textmodel

import (
	"reflect"
	"slices"

	"github.com/kobzarvs/qtext/internal/logger"
	"github.com/kobzarvs/qtext/internal/rope"
)

type editState uint8

const (
	stateIdle editState = iota
	stateEditing
	stateCompound
)

// Model is a mutable text buffer. It is not safe for concurrent use; share
// Snapshot() results instead.
type Model struct {
	text      *rope.Text
	cur       *rope.Cursor
	lineCount int
	cache     *anchorCache
	listeners []Listener
	state     editState
}

// New returns an empty model.
func New() *Model {
	return NewFromText(rope.Empty())
}

// NewFromString returns a model holding s.
func NewFromString(s string) *Model {
	return NewFromText(rope.FromString(s))
}

// NewFromText returns a model whose content is the snapshot t.
func NewFromText(t *rope.Text) *Model {
	m := &Model{text: t, cur: t.Cursor(), cache: newAnchorCache()}
	m.lineCount = 1 + m.terminators(0, t.Len())
	return m
}

// Len returns the length in UTF-16 units.
func (m *Model) Len() int { return m.text.Len() }

// LineCount is one more than the number of line terminators. CRLF counts
// once.
func (m *Model) LineCount() int { return m.lineCount }

// Snapshot returns the current immutable content.
func (m *Model) Snapshot() *rope.Text { return m.text }

// String returns the content as a Go string.
func (m *Model) String() string { return m.text.String() }

// AddListener registers l once. Register pointers: a listener of a
// non-comparable type is never recognized again, so adding it twice
// notifies it twice and RemoveListener cannot find it.
func (m *Model) AddListener(l Listener) {
	if l == nil || slices.ContainsFunc(m.listeners, func(x Listener) bool { return sameListener(x, l) }) {
		return
	}
	m.listeners = append(slices.Clip(m.listeners), l)
}

// RemoveListener unregisters l. Unknown listeners are ignored.
func (m *Model) RemoveListener(l Listener) {
	i := slices.IndexFunc(m.listeners, func(x Listener) bool { return sameListener(x, l) })
	if i < 0 {
		return
	}
	m.listeners = slices.Delete(slices.Clone(m.listeners), i, i+1)
}

// sameListener compares listeners without panicking on non-comparable
// dynamic types.
func sameListener(a, b Listener) bool {
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}

// SetText replaces the whole content and notifies TextSet.
func (m *Model) SetText(s string) error {
	return m.SetSnapshot(rope.FromString(s))
}

// SetSnapshot replaces the whole content with t and notifies TextSet.
func (m *Model) SetSnapshot(t *rope.Text) error {
	if err := m.begin(stateEditing); err != nil {
		return err
	}
	defer m.finish()

	m.swap(t)
	m.lineCount = 1 + m.terminators(0, t.Len())
	m.cache.reset()
	logger.Debug("text set", "length", t.Len(), "lines", m.lineCount)

	for _, l := range m.listeners {
		l.TextSet()
	}
	return nil
}

// Insert inserts s before index. Inserting empty text is a no-op.
func (m *Model) Insert(index int, s string) error {
	return m.InsertText(index, rope.FromString(s))
}

// InsertText is Insert for a snapshot.
func (m *Model) InsertText(index int, t *rope.Text) error {
	if err := m.begin(stateEditing); err != nil {
		return err
	}
	defer m.finish()

	if index < 0 || index > m.Len() {
		return indexError("insert", index, m.Len())
	}
	if t.Len() == 0 {
		return nil
	}
	m.insert(index, t, true)
	return nil
}

// Delete removes [start, end). An empty range is a no-op.
func (m *Model) Delete(start, end int) error {
	if err := m.begin(stateEditing); err != nil {
		return err
	}
	defer m.finish()

	if err := m.checkRange("delete", start, end); err != nil {
		return err
	}
	if start == end {
		return nil
	}
	m.delete(start, end, true)
	return nil
}

// Replace swaps [start, end) for s. Listeners see one TextChanging and one
// TextReplaced, never the inner delete and insert.
func (m *Model) Replace(start, end int, s string) error {
	return m.ReplaceText(start, end, rope.FromString(s))
}

// ReplaceText is Replace for a snapshot.
func (m *Model) ReplaceText(start, end int, t *rope.Text) error {
	if err := m.begin(stateCompound); err != nil {
		return err
	}
	defer m.finish()

	if err := m.checkRange("replace", start, end); err != nil {
		return err
	}
	for _, l := range m.listeners {
		l.TextChanging(start, end, t)
	}
	if end > start {
		m.delete(start, end, false)
	}
	if t.Len() > 0 {
		m.insert(start, t, false)
	}
	for _, l := range m.listeners {
		l.TextReplaced(start, end, t)
	}
	return nil
}

func (m *Model) begin(s editState) error {
	if m.state != stateIdle {
		return ErrReentrantEdit
	}
	m.state = s
	return nil
}

func (m *Model) finish() {
	m.state = stateIdle
}

func (m *Model) insert(index int, t *rope.Text, notify bool) {
	if notify {
		for _, l := range m.listeners {
			l.TextChanging(index, index, t)
		}
	}

	// Only terminators in the touched window can change: the inserted units
	// and the unit right after them, whose CRLF pairing may differ.
	before := m.terminators(index, index+1)
	m.swap(m.text.Insert(index, t))
	m.lineCount += m.terminators(index, index+t.Len()+1) - before
	m.cache.invalidate(index)

	if notify {
		for _, l := range m.listeners {
			l.TextInserted(index, t)
		}
	}
}

func (m *Model) delete(start, end int, notify bool) {
	if notify {
		for _, l := range m.listeners {
			l.TextChanging(start, end, nil)
		}
	}

	before := m.terminators(start, end+1)
	m.swap(m.text.Delete(start, end))
	m.lineCount += m.terminators(start, start+1) - before
	m.cache.invalidate(start)

	if notify {
		for _, l := range m.listeners {
			l.TextDeleted(start, end)
		}
	}
}

func (m *Model) swap(t *rope.Text) {
	m.text = t
	m.cur.Reset(t)
}

func (m *Model) checkRange(op string, start, end int) error {
	if start < 0 || end < start || end > m.Len() {
		return rangeError(op, start, end, m.Len())
	}
	return nil
}

// CharAt returns the unit at index.
func (m *Model) CharAt(index int) (uint16, error) {
	if index < 0 || index >= m.Len() {
		return 0, indexError("char at", index, m.Len())
	}
	return m.cur.CharAt(index), nil
}

// Slice returns [start, end) as a snapshot sharing structure with the
// model's content.
func (m *Model) Slice(start, end int) (*rope.Text, error) {
	if err := m.checkRange("slice", start, end); err != nil {
		return nil, err
	}
	return m.text.Slice(start, end), nil
}

// GetChars copies [start, end) into dst at dstOff.
func (m *Model) GetChars(start, end int, dst []uint16, dstOff int) error {
	if err := m.checkRange("get chars", start, end); err != nil {
		return err
	}
	if dstOff < 0 || dstOff+end-start > len(dst) {
		return rangeError("get chars destination", dstOff, dstOff+end-start, len(dst))
	}
	m.text.GetChars(start, end, dst, dstOff)
	return nil
}

// DrawText draws [start, end) at (x, y) with p.
func (m *Model) DrawText(start, end, x, y int, p rope.Paint) error {
	if err := m.checkRange("draw text", start, end); err != nil {
		return err
	}
	m.text.DrawText(start, end, x, y, p)
	return nil
}

// MeasureText returns the advance of [start, end) as measured by p.
func (m *Model) MeasureText(start, end int, p rope.Paint) (int, error) {
	if err := m.checkRange("measure text", start, end); err != nil {
		return 0, err
	}
	return m.text.MeasureText(start, end, p), nil
}

// TextWidths fills widths with the advance of each unit in [start, end).
func (m *Model) TextWidths(start, end int, widths []int, p rope.Paint) (int, error) {
	if err := m.checkRange("text widths", start, end); err != nil {
		return 0, err
	}
	if len(widths) < end-start {
		return 0, rangeError("text widths destination", 0, end-start, len(widths))
	}
	return m.text.TextWidths(start, end, widths, p), nil
}
