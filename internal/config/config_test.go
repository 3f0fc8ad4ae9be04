package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestConfigDirEnv(t *testing.T) {
	t.Setenv("QTEXT_CONFIG_HOME", "/tmp/qtext-config")
	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir error: %v", err)
	}
	if dir != "/tmp/qtext-config" {
		t.Fatalf("ConfigDir = %q, want %q", dir, "/tmp/qtext-config")
	}

	t.Setenv("QTEXT_CONFIG_HOME", "")
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	dir, err = ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir error: %v", err)
	}
	if dir != "/tmp/xdg/qtext" {
		t.Fatalf("ConfigDir = %q, want %q", dir, "/tmp/xdg/qtext")
	}
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	t.Setenv("QTEXT_CONFIG_HOME", t.TempDir())
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	def := Default()
	if cfg.Editor != def.Editor || cfg.Highlight != def.Highlight || cfg.Theme != def.Theme {
		t.Fatalf("Load = %+v, want defaults", cfg)
	}
}

func TestLoadWithThemeAndOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("QTEXT_CONFIG_HOME", dir)

	writeFile(t, filepath.Join(dir, "theme", "test.toml"), `
foreground = "#111111"
background = "#222222"
syntax-keyword = "#333333"
`)

	writeFile(t, filepath.Join(dir, "config.toml"), `
[editor]
tab-width = 8
line-numbers = "off"
scroll-off = 0

[theme]
theme = "test"
syntax-keyword = "#123456"

[highlight]
enabled = false
max-bytes = 1024
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Editor.TabWidth != 8 {
		t.Fatalf("TabWidth = %d, want 8", cfg.Editor.TabWidth)
	}
	if cfg.Editor.LineNumbers != "off" {
		t.Fatalf("LineNumbers = %q, want %q", cfg.Editor.LineNumbers, "off")
	}
	if cfg.Editor.ScrollOff != 0 {
		t.Fatalf("ScrollOff = %d, want 0", cfg.Editor.ScrollOff)
	}
	if cfg.Theme.Foreground != "#111111" {
		t.Fatalf("Foreground = %q, want %q", cfg.Theme.Foreground, "#111111")
	}
	if cfg.Theme.Background != "#222222" {
		t.Fatalf("Background = %q, want %q", cfg.Theme.Background, "#222222")
	}
	if cfg.Theme.SyntaxKeyword != "#123456" {
		t.Fatalf("SyntaxKeyword = %q, want %q", cfg.Theme.SyntaxKeyword, "#123456")
	}
	if cfg.Theme.SyntaxString != Default().Theme.SyntaxString {
		t.Fatalf("SyntaxString = %q, want default", cfg.Theme.SyntaxString)
	}
	if cfg.Highlight.Enabled {
		t.Fatalf("Highlight.Enabled = true, want false")
	}
	if cfg.Highlight.MaxBytes != 1024 {
		t.Fatalf("Highlight.MaxBytes = %d, want 1024", cfg.Highlight.MaxBytes)
	}
}

func TestLoadMissingThemeFails(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("QTEXT_CONFIG_HOME", dir)
	writeFile(t, filepath.Join(dir, "config.toml"), "[theme]\ntheme = \"nope\"\n")
	if _, err := Load(); err == nil {
		t.Fatalf("Load error = nil, want missing theme error")
	}
}

func TestLoadThemeWrapped(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("QTEXT_CONFIG_HOME", dir)

	writeFile(t, filepath.Join(dir, "theme", "wrapped.toml"), `
[theme]
foreground = "#aaaaaa"
background = "#bbbbbb"
`)

	theme, err := LoadTheme("wrapped")
	if err != nil {
		t.Fatalf("LoadTheme error: %v", err)
	}
	if theme.Foreground != "#aaaaaa" {
		t.Fatalf("Foreground = %q, want %q", theme.Foreground, "#aaaaaa")
	}
	if theme.Background != "#bbbbbb" {
		t.Fatalf("Background = %q, want %q", theme.Background, "#bbbbbb")
	}
}

func TestSyntaxColor(t *testing.T) {
	theme := Default().Theme
	if got := theme.SyntaxColor("comment"); got != theme.SyntaxComment {
		t.Fatalf("SyntaxColor(comment) = %q, want %q", got, theme.SyntaxComment)
	}
	if got := theme.SyntaxColor("heading"); got != "" {
		t.Fatalf("SyntaxColor(heading) = %q, want empty", got)
	}
}
