package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kastheco/orchestra/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTriggerIsOneShot(t *testing.T) {
	trig := NewTrigger()
	assert.True(t, trig.Fire())
	assert.False(t, trig.Fire())
	assert.True(t, trig.Fired())
	<-trig.C()

	trig.Rearm()
	assert.False(t, trig.Fired())
	assert.True(t, trig.Fire())
}

func TestChecklistLoader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "todos.yaml")

	msgs, err := ChecklistLoader(path)()
	require.NoError(t, err)
	assert.Empty(t, msgs)

	require.NoError(t, os.WriteFile(path, []byte("todos:\n  - name: a\n    type: action\n  - name: b\n"), 0o644))
	msgs, err = ChecklistLoader(path)()
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.True(t, strings.HasPrefix(msgs[0], "  - name: a\n    type: action"))

	require.NoError(t, os.WriteFile(path, []byte("tasks: [unclosed"), 0o644))
	_, err = ChecklistLoader(path)()
	assert.Error(t, err)
}

func TestRunOnceEmitsFinishAndRearms(t *testing.T) {
	w := &fakeWorker{reply: func(session.Call) (session.Result, error) {
		return session.Result{Stdout: "RESULT: ok"}, nil
	}}
	events := make(chan RowEvent, 8)
	trig := NewTrigger()
	require.True(t, trig.Fire())

	s := &Session{
		Runner:  &Runner{Worker: w, Poster: &fakePoster{}, Events: events},
		Trigger: trig,
		Load:    func() ([]string, error) { return []string{"a"}, nil },
		Extra:   []string{"b"},
	}
	require.NoError(t, s.RunOnce(context.Background()))

	evs := drain(events)
	require.Len(t, evs, 5)
	assert.Equal(t, Finish, evs[4].Kind)
	assert.NoError(t, evs[4].Err)
	assert.False(t, trig.Fired())
	assert.Len(t, w.Calls(), 2)
}

func TestRunOnceWithoutRequests(t *testing.T) {
	events := make(chan RowEvent, 2)
	s := &Session{
		Runner:  &Runner{Worker: &fakeWorker{}, Poster: &fakePoster{}, Events: events},
		Trigger: NewTrigger(),
		Load:    func() ([]string, error) { return nil, nil },
	}
	err := s.RunOnce(context.Background())
	require.Error(t, err)

	evs := drain(events)
	require.Len(t, evs, 1)
	assert.Equal(t, Finish, evs[0].Kind)
	assert.Equal(t, err, evs[0].Err)
}

func TestRunOnceReviewsAfterSuccess(t *testing.T) {
	spec := filepath.Join(t.TempDir(), "spec.yaml")
	require.NoError(t, os.WriteFile(spec, []byte("name: demo\nfeatures:\n  domain: [message]\n  feature: [message.send]\n"), 0o644))

	worker := &fakeWorker{reply: func(session.Call) (session.Result, error) {
		return session.Result{Stdout: "RESULT: ok"}, nil
	}}
	reviewer := &fakeWorker{reply: func(session.Call) (session.Result, error) {
		return session.Result{Stdout: "```yaml\nreview: fine\nfeature: [message.send, message.edit]\n```"}, nil
	}}
	s := &Session{
		Runner:   &Runner{Worker: worker, Poster: &fakePoster{}},
		Trigger:  NewTrigger(),
		Load:     func() ([]string, error) { return []string{"a"}, nil },
		SpecPath: spec,
		Reviewer: reviewer,
	}
	require.NoError(t, s.RunOnce(context.Background()))

	data, err := os.ReadFile(spec)
	require.NoError(t, err)
	assert.Contains(t, string(data), "message.edit")
	assert.Equal(t, 1, strings.Count(string(data), "message.send"))
	assert.Contains(t, reviewer.Calls()[0].Prompt, "allowed_domains: [message]")
}

func TestRunOnceSkipsReviewAfterFailure(t *testing.T) {
	worker := &fakeWorker{reply: func(session.Call) (session.Result, error) {
		return session.Result{}, errors.New("boom")
	}}
	reviewer := &fakeWorker{reply: func(session.Call) (session.Result, error) {
		return session.Result{Stdout: "review: x"}, nil
	}}
	s := &Session{
		Runner:   &Runner{Worker: worker, Poster: &fakePoster{}},
		Trigger:  NewTrigger(),
		Load:     func() ([]string, error) { return []string{"a"}, nil },
		SpecPath: filepath.Join(t.TempDir(), "spec.yaml"),
		Reviewer: reviewer,
	}
	require.Error(t, s.RunOnce(context.Background()))
	assert.Empty(t, reviewer.Calls())
}

func TestServeRunsOnTrigger(t *testing.T) {
	events := make(chan RowEvent, 8)
	trig := NewTrigger()
	s := &Session{
		Runner:  &Runner{Worker: session.DryRun{Delay: time.Millisecond}, Poster: &fakePoster{}, SendOnly: true, Events: events},
		Trigger: trig,
		Load:    func() ([]string, error) { return []string{"a"}, nil },
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx) }()

	require.True(t, trig.Fire())
	deadline := time.After(5 * time.Second)
	for finished := false; !finished; {
		select {
		case ev := <-events:
			finished = ev.Kind == Finish
		case <-deadline:
			t.Fatal("run did not finish")
		}
	}
	cancel()
	assert.NoError(t, <-done)
}
