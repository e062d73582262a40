package jobs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatch_Timeout(t *testing.T) {
	w := Watch{
		Path:     filepath.Join(t.TempDir(), "plan.draft.yaml"),
		Interval: 10 * time.Millisecond,
		Timeout:  60 * time.Millisecond,
	}
	_, err := w.Wait(context.Background(), nil)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestWatch_FiresOnNewerNonEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.draft.yaml")
	require.NoError(t, os.WriteFile(path, []byte("old: true\n"), 0o644))
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(path, past, past))

	w := Watch{Path: path, Baseline: Baseline(path), Interval: 10 * time.Millisecond, Timeout: 2 * time.Second}

	go func() {
		time.Sleep(30 * time.Millisecond)
		_ = os.WriteFile(path, []byte("name: new\n"), 0o644)
	}()

	data, err := w.Wait(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "name: new\n", string(data))
}

func TestWatch_IgnoresUnchangedAndEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plan.draft.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: same\n"), 0o644))

	w := Watch{Path: path, Baseline: Baseline(path), Interval: 10 * time.Millisecond, Timeout: 80 * time.Millisecond}
	_, err := w.Wait(context.Background(), nil)
	assert.ErrorIs(t, err, ErrTimeout, "an unchanged file never fires")

	require.NoError(t, os.WriteFile(path, nil, 0o644))
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, future, future))
	_, err = w.Wait(context.Background(), nil)
	assert.ErrorIs(t, err, ErrTimeout, "an empty file never fires")
}

func TestWatch_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w := Watch{Path: filepath.Join(t.TempDir(), "x.yaml"), Interval: 10 * time.Millisecond, Timeout: time.Second}
	_, err := w.Wait(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBaseline_MissingFile(t *testing.T) {
	assert.True(t, Baseline(filepath.Join(t.TempDir(), "none")).IsZero())
}
