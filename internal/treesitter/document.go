package treesitter

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kobzarvs/qtext/internal/rope"
	"github.com/kobzarvs/qtext/internal/textmodel"
)

// document is the engine's state for one attached model. It listens to the
// model on the model's goroutine and hands snapshots to the engine.
type document struct {
	engine *Engine
	path   string
	lang   string
	model  *textmodel.Model

	// changing is set between TextChanging and the matching completion.
	changing *change

	// Guarded by engine.mu.
	snap   *rope.Text
	edits  []change
	full   bool
	tokens []Token
	parsed *rope.Text

	// Guarded by engine.parseMu.
	tree *sitter.Tree
}

func (d *document) TextSet() {
	d.changing = nil
	d.engine.schedule(d, nil, d.model.Snapshot())
}

func (d *document) TextChanging(start, end int, newText *rope.Text) {
	d.changing = &change{old: d.model.Snapshot(), start: start, end: end, text: newText}
}

func (d *document) TextInserted(int, *rope.Text) { d.changed() }

func (d *document) TextDeleted(int, int) { d.changed() }

func (d *document) TextReplaced(int, int, *rope.Text) { d.changed() }

func (d *document) changed() {
	c := d.changing
	d.changing = nil
	d.engine.schedule(d, c, d.model.Snapshot())
}
