// Package workspace resolves the directory every delegated tool runs in.
//
// The directory is derived from the location of the running executable, not
// from the caller's working directory, so relative paths behave the same no
// matter where chore is invoked from. When that location sits inside a git
// worktree the worktree root is used.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
)

var (
	ErrNotDirectory = errors.New("workspace is not a directory")
	ErrRepoOpen     = errors.New("git repo open failed")
)

// Workspace is computed once at startup and passed down explicitly.
type Workspace struct {
	// Dir is the absolute directory delegated tools run in.
	Dir string
	// Repo reports whether Dir is the root of a git worktree.
	Repo bool
	// Commit is the checked-out HEAD hash, empty when unknown.
	Commit string
}

// executable is swapped in tests.
var executable = os.Executable

// EntryDir returns the directory holding the running executable with
// symlinks resolved.
func EntryDir() (string, error) {
	exe, err := executable()
	if err != nil {
		return "", fmt.Errorf("locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}

// Locate resolves start to a Workspace. With detect set, parent directories
// are searched for an enclosing worktree whose root then becomes Dir;
// otherwise start is used as is.
func Locate(start string, detect bool) (Workspace, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return Workspace{}, err
	}
	st, err := os.Stat(abs)
	if err != nil {
		return Workspace{}, err
	}
	if !st.IsDir() {
		return Workspace{}, fmt.Errorf("%w: %s", ErrNotDirectory, abs)
	}

	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{DetectDotGit: detect})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return Workspace{Dir: abs}, nil
	}
	if err != nil {
		return Workspace{}, fmt.Errorf("%w: %v", ErrRepoOpen, err)
	}
	wt, err := repo.Worktree()
	if errors.Is(err, git.ErrIsBareRepository) {
		return Workspace{Dir: abs}, nil
	}
	if err != nil {
		return Workspace{}, fmt.Errorf("%w: %v", ErrRepoOpen, err)
	}

	ws := Workspace{Dir: wt.Filesystem.Root(), Repo: true}
	if !detect {
		ws.Dir = abs
	}
	if head, err := repo.Head(); err == nil {
		ws.Commit = head.Hash().String()
	}
	return ws, nil
}
