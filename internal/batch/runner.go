package batch

import (
	"context"
	"errors"
	"fmt"

	"github.com/kastheco/orchestra/config/auditlog"
	"github.com/kastheco/orchestra/internal/server"
	"github.com/kastheco/orchestra/log"
	"github.com/kastheco/orchestra/session"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNoWorkers  = errors.New("n must be >= 1")
	ErrNoMessages = errors.New("msgs must not be empty")
)

// Poster delivers an envelope to the callback server.
type Poster interface {
	Post(ctx context.Context, callbackURL string, env server.Envelope) error
}

// Runner runs one worker per request and posts every result to the callback
// server.
type Runner struct {
	Worker session.Worker
	Poster Poster
	// ServerURL is the base URL of the callback server.
	ServerURL string
	// SendOnly skips the result-format prompt and posts an empty stdout.
	SendOnly bool
	// Limit caps concurrent workers; zero means one goroutine per worker.
	Limit int

	// Events, when set, receives row updates. Sends give up when the run's
	// context is done.
	Events chan<- RowEvent

	Audit   auditlog.Logger
	Project string
}

func (r *Runner) emit(ctx context.Context, ev RowEvent) {
	if r.Events == nil {
		return
	}
	select {
	case r.Events <- ev:
	case <-ctx.Done():
	}
}

func (r *Runner) audit(kind auditlog.EventKind, msg string, opts ...auditlog.EventOption) {
	if r.Audit == nil {
		return
	}
	r.Audit.Emit(auditlog.NewEvent(kind, r.Project, msg, opts...))
}

// Run starts n workers; worker i handles msgs[i%len(msgs)]. Every worker runs
// to completion and the first error is returned.
func (r *Runner) Run(ctx context.Context, n int, msgs []string) error {
	if n < 1 {
		return ErrNoWorkers
	}
	if len(msgs) == 0 {
		return ErrNoMessages
	}

	callbackURL := server.NormalizeURL(r.ServerURL)
	info := server.Info{Protocol: server.Protocol, CallbackURL: callbackURL}

	var g errgroup.Group
	if r.Limit > 0 {
		g.SetLimit(r.Limit)
	}
	for i := 0; i < n; i++ {
		id, msg := i, msgs[i%len(msgs)]
		r.emit(ctx, RowEvent{Kind: RowRunning, Index: id})
		r.audit(auditlog.EventRowRunning, msg, auditlog.WithWorker(id))
		g.Go(func() error {
			env, err := r.runWorker(ctx, info, id, msg)
			result := SendOnlyResult
			switch {
			case err != nil:
				result = errorResult(err)
				log.ErrorLog.Printf("worker %d failed: %v", id, err)
			case !r.SendOnly:
				result = session.ExtractResultValue(env.Result.Stdout)
			}
			r.emit(ctx, RowEvent{Kind: RowDone, Index: id, Result: result})
			r.audit(auditlog.EventRowDone, result, auditlog.WithWorker(id))
			return err
		})
	}
	return g.Wait()
}

func (r *Runner) runWorker(ctx context.Context, info server.Info, id int, msg string) (server.Envelope, error) {
	prompt := session.BuildPrompt(info.Protocol, info.CallbackURL, msg)
	if !r.SendOnly {
		prompt = session.WithPostpix(prompt, msg)
	}
	res, err := session.LastMessage(ctx, r.Worker, session.Call{
		WorkerID: id,
		Prompt:   prompt,
		OutPath:  session.LastMessagePath(id),
	})
	if err != nil {
		return server.Envelope{}, err
	}

	stdout := ""
	if !r.SendOnly {
		stdout = session.ExtractPostpixLines(res.Stdout)
	}
	env := server.Envelope{
		Server: info,
		Result: server.Completion{
			WorkerID:       id,
			CommandMessage: msg,
			CodexFinished:  true,
			ExitCode:       res.ExitCode,
			Stdout:         stdout,
			Stderr:         res.Stderr,
		},
	}
	if err := r.Poster.Post(ctx, info.CallbackURL, env); err != nil {
		return server.Envelope{}, fmt.Errorf("failed to post result of worker %d: %w", id, err)
	}
	return env, nil
}
