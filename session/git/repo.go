// Package git locates and initializes the repository a project lives in.
package git

import (
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"

	"github.com/go-git/go-git/v5"
)

const projectsDirName = ".project"

// Executor is the part of cmd.Executor used for jj.
type Executor interface {
	Run(cmd *exec.Cmd) error
}

// FindRoot walks up from start to the first directory containing .git.
// It reports false when start is not inside a repository.
func FindRoot(start string) (string, bool) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", false
	}
	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", false
	}
	wt, err := repo.Worktree()
	if err != nil {
		// Bare repository: no working tree to host .project.
		return "", false
	}
	return wt.Filesystem.Root(), true
}

// IsGitRepo reports whether path is inside a repository.
func IsGitRepo(path string) bool {
	_, ok := FindRoot(path)
	return ok
}

// NormalizeRoot maps a .project directory to the directory holding it.
func NormalizeRoot(path string) string {
	path = filepath.Clean(path)
	if filepath.Base(path) == projectsDirName {
		return filepath.Dir(path)
	}
	return path
}

// ResolveRoot returns the repository root containing cwd, or cwd itself when
// there is none.
func ResolveRoot(cwd string) string {
	if root, ok := FindRoot(cwd); ok {
		return NormalizeRoot(root)
	}
	return NormalizeRoot(cwd)
}

// Init creates an empty repository at path. An existing repository is left
// alone.
func Init(path string) error {
	_, err := git.PlainInit(path, false)
	if errors.Is(err, git.ErrRepositoryAlreadyExists) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to init repository at %s: %w", path, err)
	}
	return nil
}

// NewChange starts a new jj change with message in dir.
func NewChange(e Executor, dir, message string) error {
	cmd := exec.Command("jj", "new", "-m", message)
	cmd.Dir = dir
	if err := e.Run(cmd); err != nil {
		return fmt.Errorf("jj new failed: %w", err)
	}
	return nil
}
