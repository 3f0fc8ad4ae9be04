// Package gitinfo reads repository state straight from the .git directory.
package gitinfo

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var ErrNotRepository = errors.New("not a git repository")

// Repo is a working tree found by walking up from a path.
type Repo struct {
	Root   string
	gitDir string
}

// Find locates the repository containing path. Worktrees and submodules
// with a "gitdir:" file are followed.
func Find(path string) (*Repo, error) {
	start, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if info, err := os.Stat(start); err != nil || !info.IsDir() {
		start = filepath.Dir(start)
	}
	for {
		gitPath := filepath.Join(start, ".git")
		if info, err := os.Stat(gitPath); err == nil {
			if info.IsDir() {
				return &Repo{Root: start, gitDir: gitPath}, nil
			}
			if info.Mode().IsRegular() {
				dir, err := readGitFile(gitPath)
				if err != nil {
					return nil, err
				}
				if !filepath.IsAbs(dir) {
					dir = filepath.Join(start, dir)
				}
				return &Repo{Root: start, gitDir: dir}, nil
			}
		}
		parent := filepath.Dir(start)
		if parent == start {
			return nil, fmt.Errorf("%s: %w", path, ErrNotRepository)
		}
		start = parent
	}
}

func readGitFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	line := strings.TrimSpace(string(data))
	const prefix = "gitdir:"
	if !strings.HasPrefix(line, prefix) {
		return "", fmt.Errorf("%s: malformed .git file: %w", path, ErrNotRepository)
	}
	return strings.TrimSpace(strings.TrimPrefix(line, prefix)), nil
}

// Head returns the checked out branch, or "detached:" and a short hash.
func (r *Repo) Head() (string, error) {
	f, err := os.Open(filepath.Join(r.gitDir, "HEAD"))
	if err != nil {
		return "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return "", errors.New("empty HEAD")
	}
	line := strings.TrimSpace(scanner.Text())
	const refPrefix = "ref:"
	if strings.HasPrefix(line, refPrefix) {
		ref := strings.TrimSpace(strings.TrimPrefix(line, refPrefix))
		return strings.TrimPrefix(ref, "refs/heads/"), nil
	}
	if len(line) >= 7 {
		return "detached:" + line[:7], nil
	}
	return "detached", nil
}

// Branch returns the branch of the repository containing path, or "".
func Branch(path string) string {
	repo, err := Find(path)
	if err != nil {
		return ""
	}
	head, err := repo.Head()
	if err != nil {
		return ""
	}
	return head
}
