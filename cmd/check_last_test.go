package cmd

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/kastheco/orchestra/cmd/cmd_test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteCheckLast(t *testing.T) {
	dir := t.TempDir()
	mock := cmd_test.NewMockExecutor()
	var ran []*exec.Cmd
	mock.RunFunc = func(c *exec.Cmd) error {
		ran = append(ran, c)
		return nil
	}
	w := &replyWorker{reply: "  extracted helpers\n"}

	summary, err := executeCheckLast(context.Background(), w, mock, dir)
	require.NoError(t, err)
	assert.Equal(t, "extracted helpers", summary)

	require.Len(t, ran, 1)
	assert.Equal(t, []string{"jj", "new", "-m", CheckLastMessage}, ran[0].Args)
	assert.Equal(t, dir, ran[0].Dir)
	assert.Len(t, w.Prompts(), 1)
}

func TestExecuteCheckLast_JJFailureSkipsWorker(t *testing.T) {
	mock := cmd_test.NewMockExecutor()
	mock.RunFunc = func(*exec.Cmd) error { return errors.New("no jj repo") }
	w := &replyWorker{}

	_, err := executeCheckLast(context.Background(), w, mock, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jj new failed")
	assert.Empty(t, w.Prompts())
}
