package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/kastheco/orchestra/config/auditlog"
	"github.com/kastheco/orchestra/config/planstore"
	"github.com/kastheco/orchestra/log"
	"github.com/kastheco/orchestra/session"
)

// Loader returns the requests of the next run.
type Loader func() ([]string, error)

// ChecklistLoader renders every item of the checklist at path as a request.
// A missing or blank file yields no requests.
func ChecklistLoader(path string) Loader {
	return func() ([]string, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, nil
			}
			return nil, err
		}
		if strings.TrimSpace(string(data)) == "" {
			return nil, nil
		}
		doc, err := planstore.DecodeChecklist(string(data))
		if err != nil {
			return nil, fmt.Errorf("failed to parse yaml: %s: %w", path, err)
		}
		msgs := make([]string, len(doc.Tasks))
		for i, t := range doc.Tasks {
			msgs[i] = session.TaskMessage(t)
		}
		return msgs, nil
	}
}

// Session waits for the console to fire the trigger, runs the checklist and
// reports back through the runner's events. It re-arms the trigger after
// every run.
type Session struct {
	Runner  *Runner
	Trigger *Trigger
	Load    Loader
	// Extra requests are appended to every run.
	Extra []string

	// SpecPath and Reviewer enable the post-run review. A nil Reviewer skips
	// it.
	SpecPath string
	Reviewer session.Worker
}

// Serve handles runs until ctx is done. Run failures are reported on the
// Finish event and never end the loop.
func (s *Session) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.Trigger.C():
		}
		if err := s.RunOnce(ctx); err != nil {
			log.ErrorLog.Printf("run failed: %v", err)
		}
	}
}

// RunOnce performs a single run and always emits Finish.
func (s *Session) RunOnce(ctx context.Context) error {
	defer s.Trigger.Rearm()
	s.Runner.audit(auditlog.EventRunTriggered, "run triggered")

	err := s.run(ctx)
	if err == nil {
		s.review(ctx)
	}

	s.Runner.emit(ctx, RowEvent{Kind: Finish, Err: err})
	level := "info"
	msg := "run finished"
	if err != nil {
		level = "error"
		msg = err.Error()
	}
	s.Runner.audit(auditlog.EventRunFinished, msg, auditlog.WithLevel(level))
	return err
}

func (s *Session) run(ctx context.Context) error {
	var msgs []string
	if s.Load != nil {
		loaded, err := s.Load()
		if err != nil {
			return err
		}
		msgs = loaded
	}
	msgs = append(msgs, s.Extra...)
	if len(msgs) == 0 {
		return errors.New("no todo tasks found, add items to todos.yaml and retry")
	}
	return s.Runner.Run(ctx, len(msgs), msgs)
}

func (s *Session) review(ctx context.Context) {
	if s.Reviewer == nil || s.SpecPath == "" {
		return
	}
	review, added, err := PostReview(ctx, s.Reviewer, s.SpecPath)
	if err != nil {
		log.WarningLog.Printf("post-review failed: %v", err)
		return
	}
	log.InfoLog.Printf("post-review: %s (added %d features)", review.Review, added)
	s.Runner.audit(auditlog.EventFeaturesAppended, review.Review,
		auditlog.WithDetail(fmt.Sprintf(`{"added":%d}`, added)))
}
