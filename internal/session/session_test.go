package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kobzarvs/qtext/internal/rope"
)

func TestSessionPathUsesStateHome(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/tmp/state")
	path, err := sessionPath()
	if err != nil {
		t.Fatalf("sessionPath error: %v", err)
	}
	if path != "/tmp/state/qtext/session.json" {
		t.Fatalf("path = %q, want %q", path, "/tmp/state/qtext/session.json")
	}
}

func TestRememberRestoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	content := rope.FromString("line one\nline two\n")

	m := Open(path)
	m.Remember("/abs/file.txt", content, 9, 1)
	if err := m.Stop(); err != nil {
		t.Fatalf("Stop error: %v", err)
	}

	reopened := Open(path)
	state, ok := reopened.Restore("/abs/file.txt", rope.FromString("line one\nline two\n"))
	if !ok {
		t.Fatalf("Restore ok = false, want true")
	}
	if state.Offset != 9 || state.Scroll != 1 {
		t.Fatalf("state = %+v, want offset 9 scroll 1", state)
	}
	if got := reopened.ActiveFile(); got != "/abs/file.txt" {
		t.Fatalf("ActiveFile = %q, want %q", got, "/abs/file.txt")
	}
}

func TestRestoreRejectsChangedContent(t *testing.T) {
	m := Open(filepath.Join(t.TempDir(), "session.json"))
	m.Remember("/abs/a.go", rope.FromString("package a\n"), 3, 0)
	if _, ok := m.Restore("/abs/a.go", rope.FromString("package b\n")); ok {
		t.Fatalf("Restore with changed content ok = true, want false")
	}
	if _, ok := m.Restore("/abs/other.go", rope.FromString("package a\n")); ok {
		t.Fatalf("Restore unknown file ok = true, want false")
	}
}

func TestSaveSkipsCleanSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	m := Open(path)
	if err := m.Save(); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("clean Save wrote a file: %v", err)
	}
}

func TestCorruptSessionStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	m := Open(path)
	if m.ActiveFile() != "" {
		t.Fatalf("ActiveFile = %q, want empty", m.ActiveFile())
	}
	m.Remember("/x", rope.FromString("x"), 0, 0)
	if err := m.Save(); err != nil {
		t.Fatalf("Save error: %v", err)
	}
}

func TestAutosave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	m := Open(path)
	m.StartAutosave(10 * time.Millisecond)
	defer m.Stop()
	m.Remember("/x", rope.FromString("x"), 1, 0)

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, err := os.Stat(path); err == nil {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("autosave did not write %s", path)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
