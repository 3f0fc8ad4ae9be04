package textmodel

import "github.com/kobzarvs/qtext/internal/rope"

// Listener observes changes to a Model. Callbacks run synchronously on the
// mutating goroutine, after the new content is in place (except
// TextChanging, which runs before). A callback must not mutate the model;
// such calls fail with ErrReentrantEdit.
type Listener interface {
	TextSet()
	// TextChanging announces that [start, end) is about to be replaced by
	// newText. newText is nil for a pure deletion.
	TextChanging(start, end int, newText *rope.Text)
	TextInserted(index int, text *rope.Text)
	TextDeleted(start, end int)
	TextReplaced(start, end int, newText *rope.Text)
}

// ListenerFuncs adapts optional functions to a Listener. Register it by
// pointer.
type ListenerFuncs struct {
	OnSet      func()
	OnChanging func(start, end int, newText *rope.Text)
	OnInserted func(index int, text *rope.Text)
	OnDeleted  func(start, end int)
	OnReplaced func(start, end int, newText *rope.Text)
}

func (f *ListenerFuncs) TextSet() {
	if f.OnSet != nil {
		f.OnSet()
	}
}

func (f *ListenerFuncs) TextChanging(start, end int, newText *rope.Text) {
	if f.OnChanging != nil {
		f.OnChanging(start, end, newText)
	}
}

func (f *ListenerFuncs) TextInserted(index int, text *rope.Text) {
	if f.OnInserted != nil {
		f.OnInserted(index, text)
	}
}

func (f *ListenerFuncs) TextDeleted(start, end int) {
	if f.OnDeleted != nil {
		f.OnDeleted(start, end)
	}
}

func (f *ListenerFuncs) TextReplaced(start, end int, newText *rope.Text) {
	if f.OnReplaced != nil {
		f.OnReplaced(start, end, newText)
	}
}
