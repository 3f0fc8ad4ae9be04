package textmodel

import (
	"fmt"

	"github.com/kobzarvs/qtext/internal/logger"
	"github.com/kobzarvs/qtext/internal/rope"
)

const (
	cr = '\r'
	lf = '\n'
)

// terminators counts line terminators whose last unit lies in [from, to).
// A CR always ends a terminator, an LF only when it does not follow a CR.
func (m *Model) terminators(from, to int) int {
	n := m.cur.Len()
	from, to = max(from, 0), min(to, n)
	count := 0
	for i := from; i < to; i++ {
		switch m.cur.CharAt(i) {
		case cr:
			count++
		case lf:
			if i == 0 || m.cur.CharAt(i-1) != cr {
				count++
			}
		}
	}
	return count
}

// terminatorAt returns the length of the terminator starting at pos, or 0.
func (m *Model) terminatorAt(pos int) int {
	switch m.cur.CharAt(pos) {
	case lf:
		return 1
	case cr:
		if pos+1 < m.cur.Len() && m.cur.CharAt(pos+1) == lf {
			return 2
		}
		return 1
	}
	return 0
}

// terminatorBefore returns the length of the terminator ending at pos, or 0.
func (m *Model) terminatorBefore(pos int) int {
	switch m.cur.CharAt(pos - 1) {
	case cr:
		return 1
	case lf:
		if pos >= 2 && m.cur.CharAt(pos-2) == cr {
			return 2
		}
		return 1
	}
	return 0
}

// OffsetAtLine returns the offset of the first unit of line.
func (m *Model) OffsetAtLine(line int) (int, error) {
	if line < 0 || line >= m.lineCount {
		return 0, lineError("offset at line", line, m.lineCount)
	}
	a := m.cache.nearestByLine(line)
	off, ok := a.offset, true
	switch {
	case line > a.line:
		off, ok = m.scanLinesForward(a, line)
	case line < a.line:
		off, ok = m.scanLinesBackward(a, line)
	}
	if !ok {
		return 0, m.inconsistent("offset at line", line)
	}
	m.cache.update(line, off)
	return off, nil
}

func (m *Model) scanLinesForward(from anchor, target int) (int, bool) {
	line, pos, n := from.line, from.offset, m.cur.Len()
	for pos < n {
		tl := m.terminatorAt(pos)
		if tl == 0 {
			pos++
			continue
		}
		pos += tl
		line++
		if line == target {
			return pos, true
		}
	}
	return 0, false
}

func (m *Model) scanLinesBackward(from anchor, target int) (int, bool) {
	line, pos := from.line, from.offset
	for pos > 0 {
		tl := m.terminatorBefore(pos)
		if tl == 0 {
			pos--
			continue
		}
		if line == target {
			return pos, true
		}
		line--
		pos -= tl
	}
	return 0, line == target
}

// LineAtOffset returns the line containing offset. offset may equal Len.
// An offset between the CR and LF of a CRLF belongs to the line the pair
// ends.
func (m *Model) LineAtOffset(offset int) (int, error) {
	if offset < 0 || offset > m.Len() {
		return 0, indexError("line at offset", offset, m.Len())
	}
	a := m.cache.nearestByOffset(offset)
	line, pos := a.line, a.offset
	known := anchor{}
	for pos < offset {
		tl := m.terminatorAt(pos)
		if tl == 0 {
			pos++
			continue
		}
		if pos+tl > offset {
			break
		}
		pos += tl
		line++
		known = anchor{line: line, offset: pos}
	}
	for pos > offset {
		tl := m.terminatorBefore(pos)
		if tl == 0 {
			pos--
			continue
		}
		known = anchor{line: line, offset: pos}
		line--
		pos -= tl
	}
	if line < 0 || line >= m.lineCount {
		return 0, m.inconsistent("line at offset", offset)
	}
	m.cache.update(known.line, known.offset)
	return line, nil
}

// LineLength returns the length of line without its terminator.
func (m *Model) LineLength(line int) (int, error) {
	start, err := m.OffsetAtLine(line)
	if err != nil {
		return 0, err
	}
	end, n := start, m.cur.Len()
	for end < n {
		if c := m.cur.CharAt(end); c == cr || c == lf {
			break
		}
		end++
	}
	return end - start, nil
}

// Line returns the content of line without its terminator.
func (m *Model) Line(line int) (*rope.Text, error) {
	start, err := m.OffsetAtLine(line)
	if err != nil {
		return nil, err
	}
	length, err := m.LineLength(line)
	if err != nil {
		return nil, err
	}
	return m.text.Slice(start, start+length), nil
}

func (m *Model) inconsistent(op string, arg int) error {
	logger.Error("line index inconsistent", "op", op, "arg", arg, "lineCount", m.lineCount, "length", m.Len())
	return fmt.Errorf("%s (%d): %w", op, arg, ErrLineIndex)
}
