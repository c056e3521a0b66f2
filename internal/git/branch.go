// Package git reads repository state for stamping sessions.
// Every call shells out to git and is best-effort.
package git

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

var (
	ErrGitNotFound = errors.New("git not found in PATH")
	ErrNotARepo    = errors.New("not a git repository")
)

// Info is the branch and commit a session was recorded on.
type Info struct {
	Branch string
	Commit string
}

// ensureGit checks that git is available in PATH.
func ensureGit() error {
	if _, err := exec.LookPath("git"); err != nil {
		return ErrGitNotFound
	}
	return nil
}

func run(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return strings.TrimSpace(string(out)), nil
}

// IsRepo reports whether dir is inside a git work tree.
func IsRepo(dir string) bool {
	if ensureGit() != nil {
		return false
	}
	out, err := run(dir, "rev-parse", "--is-inside-work-tree")
	return err == nil && out == "true"
}

// CurrentBranch returns the name of the current branch in dir. It fails
// on a detached HEAD.
// Shells out to: git symbolic-ref --short HEAD
func CurrentBranch(dir string) (string, error) {
	if err := ensureGit(); err != nil {
		return "", err
	}
	return run(dir, "symbolic-ref", "--short", "HEAD")
}

// HeadCommit returns the abbreviated hash of HEAD in dir.
// Shells out to: git rev-parse --short HEAD
func HeadCommit(dir string) (string, error) {
	if err := ensureGit(); err != nil {
		return "", err
	}
	return run(dir, "rev-parse", "--short", "HEAD")
}

// Describe returns the branch and commit of dir. A repository without
// commits yields an empty commit; a detached HEAD an empty branch.
func Describe(dir string) (Info, error) {
	if !IsRepo(dir) {
		return Info{}, ErrNotARepo
	}
	var info Info
	if branch, err := CurrentBranch(dir); err == nil {
		info.Branch = branch
	}
	if commit, err := HeadCommit(dir); err == nil {
		info.Commit = commit
	}
	return info, nil
}
