package gitinfo

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestFindFromNestedFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".git", "HEAD"), "ref: refs/heads/feature/rope\n")
	file := filepath.Join(root, "a", "b", "main.go")
	writeFile(t, file, "package main\n")

	repo, err := Find(file)
	if err != nil {
		t.Fatalf("Find error: %v", err)
	}
	if repo.Root != root {
		t.Fatalf("Root = %q, want %q", repo.Root, root)
	}
	head, err := repo.Head()
	if err != nil {
		t.Fatalf("Head error: %v", err)
	}
	if head != "feature/rope" {
		t.Fatalf("Head = %q, want %q", head, "feature/rope")
	}
	if got := Branch(file); got != "feature/rope" {
		t.Fatalf("Branch = %q, want %q", got, "feature/rope")
	}
}

func TestDetachedHead(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".git", "HEAD"), "0123456789abcdef\n")
	if got := Branch(root); got != "detached:0123456" {
		t.Fatalf("Branch = %q, want %q", got, "detached:0123456")
	}
}

func TestGitdirFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "real", "HEAD"), "ref: refs/heads/main\n")
	wt := filepath.Join(root, "wt")
	writeFile(t, filepath.Join(wt, ".git"), "gitdir: ../real\n")

	if got := Branch(wt); got != "main" {
		t.Fatalf("Branch = %q, want %q", got, "main")
	}
}

func TestNotRepository(t *testing.T) {
	dir := t.TempDir()
	if _, err := Find(filepath.Join(dir, "x.txt")); !errors.Is(err, ErrNotRepository) {
		t.Skipf("Find error = %v; temp dir is inside a repository", err)
	}
	if got := Branch(dir); got != "" {
		t.Fatalf("Branch = %q, want empty", got)
	}
}
