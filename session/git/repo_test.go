package git

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/kastheco/orchestra/cmd/cmd_test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindRoot(t *testing.T) {
	repo := t.TempDir()
	require.NoError(t, Init(repo))
	nested := filepath.Join(repo, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	root, ok := FindRoot(nested)
	require.True(t, ok)
	wantRoot, err := filepath.EvalSymlinks(repo)
	require.NoError(t, err)
	gotRoot, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	assert.Equal(t, wantRoot, gotRoot)
	assert.True(t, IsGitRepo(nested))
}

func TestFindRoot_NotARepo(t *testing.T) {
	_, ok := FindRoot(t.TempDir())
	assert.False(t, ok)
}

func TestInit_Idempotent(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Init(dir))
	require.NoError(t, Init(dir))
	assert.DirExists(t, filepath.Join(dir, ".git"))
}

func TestNormalizeRoot(t *testing.T) {
	assert.Equal(t, "/work/repo", NormalizeRoot("/work/repo/.project"))
	assert.Equal(t, "/work/repo", NormalizeRoot("/work/repo/"))
}

func TestResolveRoot_FallsBackToCwd(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, dir, ResolveRoot(dir))
}

func TestNewChange(t *testing.T) {
	var got *exec.Cmd
	mock := cmd_test.NewMockExecutor()
	mock.RunFunc = func(c *exec.Cmd) error {
		got = c
		return nil
	}

	require.NoError(t, NewChange(mock, "/repo", "refactor: check_last"))
	require.NotNil(t, got)
	assert.Equal(t, []string{"jj", "new", "-m", "refactor: check_last"}, got.Args)
	assert.Equal(t, "/repo", got.Dir)

	mock.RunFunc = func(c *exec.Cmd) error { return errors.New("boom") }
	assert.ErrorContains(t, NewChange(mock, "/repo", "x"), "jj new failed")
}
