package cmd

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/kastheco/orchestra/config/planstore"
	"github.com/kastheco/orchestra/internal/server"
	"github.com/kastheco/orchestra/session"
	"github.com/stretchr/testify/require"
)

// replyWorker answers every call with reply and records the prompts.
type replyWorker struct {
	reply string
	code  int

	mu      sync.Mutex
	prompts []string
}

func (w *replyWorker) Exec(_ context.Context, call session.Call) (session.Result, error) {
	w.mu.Lock()
	w.prompts = append(w.prompts, call.Prompt)
	w.mu.Unlock()
	if call.OutPath != "" {
		if err := os.WriteFile(call.OutPath, []byte(w.reply), 0o644); err != nil {
			return session.Result{}, err
		}
	}
	return session.Result{ExitCode: w.code, Stdout: w.reply}, nil
}

func (w *replyWorker) Prompts() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.prompts...)
}

type recordingPoster struct {
	mu   sync.Mutex
	envs []server.Envelope
}

func (p *recordingPoster) Post(_ context.Context, _ string, env server.Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.envs = append(p.envs, env)
	return nil
}

func newTestProject(t *testing.T) planstore.Project {
	t.Helper()
	p := planstore.NewProject(t.TempDir(), "demo")
	require.NoError(t, p.EnsureLayout())
	return p
}
