package git

import (
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gitCmd(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
}

func requireGit(t *testing.T) {
	t.Helper()
	if ensureGit() != nil {
		t.Skip("git not installed")
	}
}

func TestDescribe_NotARepo(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	if IsRepo(dir) {
		t.Skip("temp dir is inside a git work tree")
	}
	_, err := Describe(dir)
	assert.ErrorIs(t, err, ErrNotARepo)
}

func TestDescribe_Repo(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	gitCmd(t, dir, "init", "-q", "-b", "trunk")
	gitCmd(t, dir, "-c", "user.name=t", "-c", "user.email=t@example.com",
		"commit", "-q", "--allow-empty", "-m", "init")

	info, err := Describe(dir)
	require.NoError(t, err)
	assert.Equal(t, "trunk", info.Branch)
	assert.Regexp(t, `^[0-9a-f]{4,}$`, info.Commit)
}

func TestDescribe_EmptyRepo(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	gitCmd(t, dir, "init", "-q", "-b", "trunk")

	info, err := Describe(dir)
	require.NoError(t, err)
	assert.Equal(t, Info{Branch: "trunk"}, info)
}
