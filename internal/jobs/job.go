package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kastheco/orchestra/internal/sentry"
	"github.com/kastheco/orchestra/log"
)

// eventBuffer lets a job emit a burst of progress lines between two drains.
const eventBuffer = 64

// Report emits a progress line.
type Report func(line string)

// Func is the body of a job. Its return value becomes the terminal event.
type Func func(ctx context.Context, report Report) (Outcome, error)

// Handle is the console's side of a running job.
type Handle struct {
	ID      string
	Kind    Kind
	Started time.Time
	Events  <-chan Event
}

// Start runs fn on its own goroutine. The goroutine sends exactly one
// terminal event and closes the channel. A panic in fn becomes a failure.
func Start(ctx context.Context, kind Kind, fn Func) *Handle {
	ch := make(chan Event, eventBuffer)
	h := &Handle{ID: uuid.NewString(), Kind: kind, Started: time.Now(), Events: ch}

	send := func(ev Event) {
		select {
		case ch <- ev:
		case <-ctx.Done():
		}
	}

	go func() {
		defer close(ch)

		var (
			out Outcome
			err error
		)
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.ErrorLog.Printf("job %s (%s) panicked: %v", h.ID, kind, r)
					sentry.CaptureRecovered(r)
					err = fmt.Errorf("job panicked: %v", r)
				}
			}()
			out, err = fn(ctx, func(line string) { send(progress(kind, line)) })
		}()

		if err != nil {
			send(failed(kind, err))
			return
		}
		send(succeeded(kind, out))
	}()
	return h
}
