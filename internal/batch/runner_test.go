package batch

import (
	"context"
	"errors"
	"os"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/kastheco/orchestra/internal/server"
	"github.com/kastheco/orchestra/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWorker struct {
	reply func(call session.Call) (session.Result, error)

	mu    sync.Mutex
	calls []session.Call
}

func (w *fakeWorker) Exec(_ context.Context, call session.Call) (session.Result, error) {
	w.mu.Lock()
	w.calls = append(w.calls, call)
	w.mu.Unlock()

	res, err := w.reply(call)
	if err != nil {
		return session.Result{}, err
	}
	if call.OutPath != "" {
		if err := os.WriteFile(call.OutPath, []byte(res.Stdout), 0o644); err != nil {
			return session.Result{}, err
		}
	}
	return res, nil
}

func (w *fakeWorker) Calls() []session.Call {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := append([]session.Call(nil), w.calls...)
	sort.Slice(out, func(i, j int) bool { return out[i].WorkerID < out[j].WorkerID })
	return out
}

type fakePoster struct {
	err error

	mu   sync.Mutex
	urls []string
	envs []server.Envelope
}

func (p *fakePoster) Post(_ context.Context, url string, env server.Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.urls = append(p.urls, url)
	p.envs = append(p.envs, env)
	return nil
}

func (p *fakePoster) Envelopes() []server.Envelope {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := append([]server.Envelope(nil), p.envs...)
	sort.Slice(out, func(i, j int) bool { return out[i].Result.WorkerID < out[j].Result.WorkerID })
	return out
}

func drain(ch chan RowEvent) []RowEvent {
	var out []RowEvent
	for {
		select {
		case ev := <-ch:
			out = append(out, ev)
		default:
			return out
		}
	}
}

const postpixReply = "noise\nSUMMARY: s\nRESULT: r\nREPORT: answer=42\ntrailing"

func TestRunValidatesArguments(t *testing.T) {
	r := &Runner{Worker: &fakeWorker{}, Poster: &fakePoster{}}
	assert.ErrorIs(t, r.Run(context.Background(), 0, []string{"a"}), ErrNoWorkers)
	assert.ErrorIs(t, r.Run(context.Background(), 2, nil), ErrNoMessages)
}

func TestRunAssignsMessagesRoundRobin(t *testing.T) {
	w := &fakeWorker{reply: func(session.Call) (session.Result, error) {
		return session.Result{Stdout: postpixReply}, nil
	}}
	p := &fakePoster{}
	events := make(chan RowEvent, 16)
	r := &Runner{Worker: w, Poster: p, ServerURL: "http://127.0.0.1:9/", Events: events}

	require.NoError(t, r.Run(context.Background(), 3, []string{"first", "second"}))

	envs := p.Envelopes()
	require.Len(t, envs, 3)
	assert.Equal(t, []string{"first", "second", "first"},
		[]string{envs[0].Result.CommandMessage, envs[1].Result.CommandMessage, envs[2].Result.CommandMessage})
	for _, url := range p.urls {
		assert.Equal(t, "http://127.0.0.1:9/v1/results", url)
	}
	assert.Equal(t, "SUMMARY: s\nRESULT: r\nREPORT: answer=42", envs[0].Result.Stdout)
	assert.True(t, envs[0].Result.CodexFinished)
	assert.Equal(t, server.Protocol, envs[0].Server.Protocol)

	calls := w.Calls()
	require.Len(t, calls, 3)
	assert.Contains(t, calls[0].Prompt, "Task: first")
	assert.Contains(t, calls[0].Prompt, "REPORT:")
	assert.Contains(t, calls[0].Prompt, "Callback URL is http://127.0.0.1:9/v1/results")

	evs := drain(events)
	require.Len(t, evs, 6)
	done := map[int]string{}
	for _, ev := range evs {
		if ev.Kind == RowDone {
			done[ev.Index] = ev.Result
		}
	}
	assert.Equal(t, map[int]string{0: "42", 1: "42", 2: "42"}, done)
}

func TestRunSendOnly(t *testing.T) {
	w := &fakeWorker{reply: func(session.Call) (session.Result, error) {
		return session.Result{Stdout: postpixReply, Stderr: "warn"}, nil
	}}
	p := &fakePoster{}
	events := make(chan RowEvent, 8)
	r := &Runner{Worker: w, Poster: p, SendOnly: true, Events: events}

	require.NoError(t, r.Run(context.Background(), 1, []string{"only"}))

	envs := p.Envelopes()
	require.Len(t, envs, 1)
	assert.Empty(t, envs[0].Result.Stdout)
	assert.Equal(t, "warn", envs[0].Result.Stderr)
	assert.NotContains(t, w.Calls()[0].Prompt, "REPORT:")

	evs := drain(events)
	require.Len(t, evs, 2)
	assert.Equal(t, RowEvent{Kind: RowDone, Index: 0, Result: SendOnlyResult}, evs[1])
}

func TestRunReportsWorkerErrorsOnTheRow(t *testing.T) {
	w := &fakeWorker{reply: func(call session.Call) (session.Result, error) {
		if call.WorkerID == 1 {
			return session.Result{}, errors.New("spawn failed")
		}
		return session.Result{Stdout: "plain\nreply"}, nil
	}}
	p := &fakePoster{}
	events := make(chan RowEvent, 8)
	r := &Runner{Worker: w, Poster: p, Events: events}

	err := r.Run(context.Background(), 2, []string{"a", "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "spawn failed")

	done := map[int]string{}
	for _, ev := range drain(events) {
		if ev.Kind == RowDone {
			done[ev.Index] = ev.Result
		}
	}
	assert.Equal(t, "plain / reply", done[0])
	assert.True(t, strings.HasPrefix(done[1], "error: "), done[1])
	assert.Len(t, p.Envelopes(), 1)
}

func TestRunFailsWhenPostFails(t *testing.T) {
	w := &fakeWorker{reply: func(session.Call) (session.Result, error) {
		return session.Result{Stdout: "x"}, nil
	}}
	r := &Runner{Worker: w, Poster: &fakePoster{err: errors.New("server returned status 500")}}

	err := r.Run(context.Background(), 1, []string{"a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestRunNonZeroExitIsPostedNotFailed(t *testing.T) {
	w := &fakeWorker{reply: func(session.Call) (session.Result, error) {
		return session.Result{ExitCode: 2, Stderr: "bad"}, nil
	}}
	p := &fakePoster{}
	r := &Runner{Worker: w, Poster: p}

	require.NoError(t, r.Run(context.Background(), 1, []string{"a"}))
	envs := p.Envelopes()
	require.Len(t, envs, 1)
	assert.Equal(t, 2, envs[0].Result.ExitCode)
	assert.Equal(t, "bad", envs[0].Result.Stderr)
}

func TestRunAgainstCallbackServer(t *testing.T) {
	srv := server.New("127.0.0.1", 0)
	require.NoError(t, srv.Start(context.Background()))
	defer srv.Shutdown(context.Background())

	r := &Runner{
		Worker:    session.DryRun{},
		Poster:    server.NewClient(),
		ServerURL: srv.BaseURL(),
		SendOnly:  true,
	}
	require.NoError(t, r.Run(context.Background(), 2, []string{"one", "two"}))
	assert.Len(t, srv.Results(), 2)
}
