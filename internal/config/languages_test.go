package config

import (
	"path/filepath"
	"testing"
)

func TestLanguagesMatch(t *testing.T) {
	cfg := Languages{
		Languages: []Language{
			{Name: "go", FileTypes: []string{"go", "go.mod", ".go"}},
			{Name: "git", FileTypes: []string{".gitignore", "Makefile"}},
		},
	}

	if got := cfg.Match("main.go"); got == nil || got.Name != "go" {
		t.Fatalf("Match main.go = %#v, want go", got)
	}
	if got := cfg.Match("go.mod"); got == nil || got.Name != "go" {
		t.Fatalf("Match go.mod = %#v, want go", got)
	}
	if got := cfg.Match(".gitignore"); got == nil || got.Name != "git" {
		t.Fatalf("Match .gitignore = %#v, want git", got)
	}
	if got := cfg.Match("Makefile"); got == nil || got.Name != "git" {
		t.Fatalf("Match Makefile = %#v, want git", got)
	}
	if got := cfg.Match("unknown.txt"); got != nil {
		t.Fatalf("Match unknown.txt = %#v, want nil", got)
	}
}

func TestLoadLanguagesOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("QTEXT_CONFIG_HOME", dir)

	writeFile(t, filepath.Join(dir, "languages.toml"), `
[[language]]
name = "go"
file-types = ["go", "gotmpl"]

[[language]]
name = "ini"
file-types = ["ini"]
`)

	cfg, err := LoadLanguages()
	if err != nil {
		t.Fatalf("LoadLanguages error: %v", err)
	}
	if got, want := len(cfg.Languages), len(DefaultLanguages().Languages)+1; got != want {
		t.Fatalf("Languages len = %d, want %d", got, want)
	}
	if got := cfg.Match("page.gotmpl"); got == nil || got.Name != "go" {
		t.Fatalf("Match page.gotmpl = %#v, want go", got)
	}
	if got := cfg.Match("setup.ini"); got == nil || got.Name != "ini" {
		t.Fatalf("Match setup.ini = %#v, want ini", got)
	}
	if got := cfg.Match("notes.md"); got == nil || got.Name != "markdown" {
		t.Fatalf("Match notes.md = %#v, want markdown", got)
	}
}

func TestLoadLanguagesMissing(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("QTEXT_CONFIG_HOME", dir)

	cfg, err := LoadLanguages()
	if err != nil {
		t.Fatalf("LoadLanguages error: %v", err)
	}
	if len(cfg.Languages) != len(DefaultLanguages().Languages) {
		t.Fatalf("Languages len = %d, want defaults", len(cfg.Languages))
	}
}
