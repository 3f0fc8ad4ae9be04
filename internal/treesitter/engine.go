package treesitter

import (
	"context"
	"errors"
	"sync"
	"time"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kobzarvs/qtext/internal/config"
	"github.com/kobzarvs/qtext/internal/logger"
	"github.com/kobzarvs/qtext/internal/rope"
	"github.com/kobzarvs/qtext/internal/textmodel"
)

var ErrStopped = errors.New("tokenizer stopped")

type Event struct {
	Kind string
	Path string
}

// Engine tokenizes attached models. Before Start every change is parsed
// synchronously inside the model's notification; after Start parsing moves
// to a background goroutine that works on immutable snapshots and reports
// each result on Events.
type Engine struct {
	langs    config.Languages
	maxBytes int64
	enabled  bool

	mu      sync.RWMutex
	docs    map[string]*document
	dirty   map[string]*document
	running bool

	// parseMu serializes parsing; parsers and trees are not safe to share.
	parseMu sync.Mutex
	parsers map[string]*sitter.Parser
	queries map[string]*sitter.Query

	wake   chan struct{}
	events chan Event
	stopCh chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
}

func New(langs config.Languages, hl config.Highlight) *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		langs:    langs,
		maxBytes: hl.MaxBytes,
		enabled:  hl.Enabled,
		docs:     make(map[string]*document),
		dirty:    make(map[string]*document),
		parsers:  make(map[string]*sitter.Parser),
		queries:  make(map[string]*sitter.Query),
		wake:     make(chan struct{}, 1),
		events:   make(chan Event, 16),
		stopCh:   make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (e *Engine) Start() error {
	select {
	case <-e.stopCh:
		return ErrStopped
	default:
	}
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return nil
	}
	e.running = true
	e.mu.Unlock()
	go e.loop()
	return nil
}

func (e *Engine) Stop() error {
	select {
	case <-e.stopCh:
		return nil
	default:
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
		close(e.stopCh)
		e.cancel()
		return nil
	}
}

func (e *Engine) Events() <-chan Event {
	return e.events
}

// Attach starts tokenizing m under path. It reports false when highlighting
// is disabled or no language matches path.
func (e *Engine) Attach(path string, m *textmodel.Model) bool {
	if !e.enabled {
		return false
	}
	lang := e.langs.Match(path)
	if lang == nil {
		return false
	}
	if _, ok := grammars[lang.Name]; !ok {
		if _, ok := regexTokenizers[lang.Name]; !ok {
			return false
		}
	}
	e.Detach(path)

	d := &document{engine: e, path: path, lang: lang.Name, model: m}
	e.mu.Lock()
	e.docs[path] = d
	e.mu.Unlock()
	m.AddListener(d)
	e.schedule(d, nil, m.Snapshot())
	logger.Debug("tokenizer attached", "path", path, "language", lang.Name)
	return true
}

func (e *Engine) Detach(path string) {
	e.mu.Lock()
	d := e.docs[path]
	delete(e.docs, path)
	delete(e.dirty, path)
	e.mu.Unlock()
	if d != nil {
		d.model.RemoveListener(d)
	}
}

// Tokens returns the tokens of the last parsed snapshot of path. The slice
// must not be modified.
func (e *Engine) Tokens(path string) []Token {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if d := e.docs[path]; d != nil {
		return d.tokens
	}
	return nil
}

// Parsed returns the snapshot the current tokens were computed from.
func (e *Engine) Parsed(path string) *rope.Text {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if d := e.docs[path]; d != nil {
		return d.parsed
	}
	return nil
}

// schedule records a change (nil for a full reparse) and the snapshot it
// produced.
func (e *Engine) schedule(d *document, c *change, snap *rope.Text) {
	e.mu.Lock()
	if c == nil || c.touchesSurrogate() {
		d.full = true
		d.edits = nil
	} else if !d.full {
		d.edits = append(d.edits, *c)
	}
	d.snap = snap
	running := e.running
	if running {
		e.dirty[d.path] = d
	}
	e.mu.Unlock()

	if !running {
		e.process(context.Background(), d)
		return
	}
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

func (e *Engine) loop() {
	for {
		select {
		case <-e.stopCh:
			return
		case <-e.wake:
			e.mu.Lock()
			batch := make([]*document, 0, len(e.dirty))
			for path, d := range e.dirty {
				batch = append(batch, d)
				delete(e.dirty, path)
			}
			e.mu.Unlock()
			for _, d := range batch {
				e.process(e.ctx, d)
			}
		}
	}
}

func (e *Engine) process(ctx context.Context, d *document) {
	e.parseMu.Lock()
	defer e.parseMu.Unlock()

	e.mu.Lock()
	snap, edits, full := d.snap, d.edits, d.full
	d.edits, d.full = nil, false
	e.mu.Unlock()
	if snap == nil {
		return
	}

	began := time.Now()
	src := encode(snap)
	var spans []span
	if e.maxBytes > 0 && int64(len(src.bytes)) > e.maxBytes {
		d.tree = nil
		logger.Info("file too large to tokenize", "path", d.path, "bytes", len(src.bytes))
	} else if fn, ok := regexTokenizers[d.lang]; ok {
		spans = tokenizeLines(fn, src.bytes, 0, len(src.bytes), nil)
	} else {
		var ok bool
		if spans, ok = e.parse(ctx, d, src.bytes, edits, full); !ok {
			return
		}
	}
	toks := finish(spans, src)

	e.mu.Lock()
	d.tokens = toks
	d.parsed = snap
	e.mu.Unlock()
	logger.Debug("tokenized", "path", d.path, "tokens", len(toks), "incremental", !full && len(edits) > 0, "elapsed", time.Since(began))
	e.sendEvent("parsed", d.path)
}

func (e *Engine) parse(ctx context.Context, d *document, src []byte, edits []change, full bool) ([]span, bool) {
	parser, query := e.parserFor(d.lang), e.queryFor(d.lang)
	if parser == nil {
		return nil, false
	}
	prev := d.tree
	if full {
		prev = nil
	}
	if prev != nil {
		for _, c := range edits {
			prev.Edit(c.input())
		}
	}
	tree, err := parser.ParseCtx(ctx, prev, src)
	if err != nil || tree == nil {
		// Cancelled or failed: keep the old tokens, reparse from scratch next time.
		d.tree = nil
		logger.Warn("parse failed", "path", d.path, "error", err)
		return nil, false
	}
	d.tree = tree

	spans := querySpans(query, tree.RootNode(), src, 0, nil)
	if d.lang == "markdown" {
		spans = e.markdownSpans(ctx, tree.RootNode(), src, spans)
	}
	return spans, true
}

func (e *Engine) parserFor(lang string) *sitter.Parser {
	if p, ok := e.parsers[lang]; ok {
		return p
	}
	g, ok := grammars[lang]
	if !ok {
		return nil
	}
	p := sitter.NewParser()
	p.SetLanguage(g.lang)
	e.parsers[lang] = p
	return p
}

func (e *Engine) queryFor(lang string) *sitter.Query {
	if q, ok := e.queries[lang]; ok {
		return q
	}
	g, ok := grammars[lang]
	if !ok {
		return nil
	}
	q, err := sitter.NewQuery([]byte(g.query), g.lang)
	if err != nil {
		logger.Warn("highlight query rejected", "language", lang, "error", err)
	}
	e.queries[lang] = q
	return q
}

func (e *Engine) sendEvent(kind, path string) {
	select {
	case e.events <- Event{Kind: kind, Path: path}:
	default:
	}
}
