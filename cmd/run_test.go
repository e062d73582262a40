package cmd

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/kastheco/orchestra/internal/batch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteRunParallel_Validation(t *testing.T) {
	var out bytes.Buffer
	w := &replyWorker{}

	err := executeRunParallel(context.Background(), &out, RunParallelOptions{N: 0, Msgs: []string{"a"}}, w, &recordingPoster{})
	assert.ErrorIs(t, err, batch.ErrNoWorkers)

	err = executeRunParallel(context.Background(), &out, RunParallelOptions{N: 2}, w, &recordingPoster{})
	assert.ErrorIs(t, err, batch.ErrNoMessages)

	assert.Empty(t, w.Prompts())
	assert.Empty(t, out.String())
}

func TestExecuteRunParallel_PrintsOneLinePerWorker(t *testing.T) {
	var out bytes.Buffer
	poster := &recordingPoster{}
	opts := RunParallelOptions{
		ServerURL: "127.0.0.1:9",
		N:         3,
		Msgs:      []string{"first", "second"},
		SendOnly:  true,
	}

	require.NoError(t, executeRunParallel(context.Background(), &out, opts, &replyWorker{reply: "ok"}, poster))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	for i := 0; i < 3; i++ {
		assert.Contains(t, lines, fmt.Sprintf("worker %d: %s", i, batch.SendOnlyResult))
	}
	assert.Len(t, poster.envs, 3)
}
