package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/qtext/internal/config"
	"github.com/kobzarvs/qtext/internal/editor"
	"github.com/kobzarvs/qtext/internal/gitinfo"
	"github.com/kobzarvs/qtext/internal/logger"
	"github.com/kobzarvs/qtext/internal/session"
	"github.com/kobzarvs/qtext/internal/textmodel"
	"github.com/kobzarvs/qtext/internal/treesitter"
)

// App is the top-level runtime for qtext.
type App struct {
	args []string
}

func New(args []string) *App {
	return &App{args: args}
}

type gitTick struct{}

func (a *App) Run() error {
	if err := logger.Init(os.Getenv("QTEXT_DEBUG") != ""); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	langs, err := config.LoadLanguages()
	if err != nil {
		return err
	}

	s, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := s.Init(); err != nil {
		return err
	}
	s.EnableMouse()
	defer s.Fini()

	return a.run(s, cfg, langs)
}

func (a *App) run(s tcell.Screen, cfg config.Config, langs config.Languages) error {
	var openPath string
	if len(a.args) > 0 {
		openPath = a.args[0]
	}
	m, isNew, err := loadModel(openPath)
	if err != nil {
		return err
	}
	logger.Info("file opened", "path", openPath, "units", m.Len(), "lines", m.LineCount())

	ts := treesitter.New(langs, cfg.Highlight)
	if err := ts.Start(); err != nil {
		return err
	}
	defer func() { _ = ts.Stop() }()

	ed := editor.New(cfg, m)
	defer ed.Close()
	if openPath != "" {
		ed.SetFilename(openPath)
		if ts.Attach(openPath, m) {
			ed.SetTokenizer(ts)
			defer ts.Detach(openPath)
		}
	}
	if isNew {
		ed.SetStatusMessage("new file")
	}

	// The buffer is never written back, so positions are keyed to the
	// content as loaded from disk.
	loaded := m.Snapshot()
	var absPath string
	sm, err := session.NewManager()
	if err != nil {
		logger.Warn("session unavailable", "error", err)
	} else if openPath != "" {
		absPath, _ = filepath.Abs(openPath)
		if state, ok := sm.Restore(absPath, loaded); ok {
			ed.SetCursor(state.Offset, state.Scroll)
		}
		sm.StartAutosave(15 * time.Second)
		defer func() {
			sm.Remember(absPath, loaded, ed.Cursor(), ed.Scroll())
			if err := sm.Stop(); err != nil {
				logger.Warn("session save failed", "error", err)
			}
		}()
	}

	gitPath := openPath
	if gitPath == "" {
		if cwd, err := os.Getwd(); err == nil {
			gitPath = cwd
		}
	}
	ed.SetGitBranch(gitinfo.Branch(gitPath))

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case ev := <-ts.Events():
				_ = s.PostEvent(tcell.NewEventInterrupt(ev))
			case <-ticker.C:
				_ = s.PostEvent(tcell.NewEventInterrupt(gitTick{}))
			}
		}
	}()

	lastCursor := ed.Cursor()
	ed.Render(s)
	for {
		switch ev := s.PollEvent().(type) {
		case nil:
			return nil
		case *tcell.EventKey:
			if ed.HandleKey(ev) {
				return nil
			}
		case *tcell.EventMouse:
			ed.HandleMouse(ev)
		case *tcell.EventResize:
			s.Sync()
		case *tcell.EventInterrupt:
			switch data := ev.Data().(type) {
			case gitTick:
				ed.SetGitBranch(gitinfo.Branch(gitPath))
				if sm != nil && absPath != "" && ed.Cursor() != lastCursor {
					lastCursor = ed.Cursor()
					sm.Remember(absPath, loaded, lastCursor, ed.Scroll())
				}
			case treesitter.Event:
				logger.Debug("tokenizer event", "kind", data.Kind, "path", data.Path)
			}
		}
		ed.Render(s)
	}
}

// loadModel reads path into a new model. A missing file opens empty and
// reports isNew.
func loadModel(path string) (m *textmodel.Model, isNew bool, err error) {
	if path == "" {
		return textmodel.New(), false, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return textmodel.New(), true, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("open %s: %w", path, err)
	}
	return textmodel.NewFromString(string(data)), false, nil
}
