package textmodel

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfBounds reports an index or range outside the text or its lines.
	ErrOutOfBounds = errors.New("out of bounds")

	// ErrLineIndex reports a line scan that did not land on a line boundary.
	// It means the line count and the content disagree.
	ErrLineIndex = errors.New("line index inconsistent with content")

	// ErrReentrantEdit reports a mutation issued while another mutation,
	// including its listener callbacks, is still running.
	ErrReentrantEdit = errors.New("reentrant edit")
)

func indexError(op string, index, length int) error {
	if index < 0 {
		return fmt.Errorf("%s (%d) starts before 0: %w", op, index, ErrOutOfBounds)
	}
	return fmt.Errorf("%s (%d) ends beyond length %d: %w", op, index, length, ErrOutOfBounds)
}

func rangeError(op string, start, end, length int) error {
	switch {
	case end < start:
		return fmt.Errorf("%s (%d ... %d) has end before start: %w", op, start, end, ErrOutOfBounds)
	case start < 0:
		return fmt.Errorf("%s (%d ... %d) starts before 0: %w", op, start, end, ErrOutOfBounds)
	default:
		return fmt.Errorf("%s (%d ... %d) ends beyond length %d: %w", op, start, end, length, ErrOutOfBounds)
	}
}

func lineError(op string, line, count int) error {
	return fmt.Errorf("%s: invalid line index %d of %d: %w", op, line, count, ErrOutOfBounds)
}
