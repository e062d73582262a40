// Package jobs runs long operations off the UI goroutine and hands their
// progress back through channels the console drains without blocking.
package jobs

import (
	"errors"
	"fmt"

	"github.com/kastheco/orchestra/config/planstore"
)

var (
	// ErrSlotBusy is returned when a slot already runs a job.
	ErrSlotBusy = errors.New("a job is already running")
	// ErrDisconnected is synthesized when a job channel closes without a
	// terminal event.
	ErrDisconnected = errors.New("job channel disconnected")
	// ErrTimeout ends a file watch that saw no change in time.
	ErrTimeout = errors.New("timeout")
)

// Kind identifies what a job does.
type Kind int

const (
	EnrichAndGenerateChecklist Kind = iota
	FillPlanTasks
	PlanConversationTurn
	PlanFileWatch
)

func (k Kind) String() string {
	switch k {
	case EnrichAndGenerateChecklist:
		return "generate checklist"
	case FillPlanTasks:
		return "fill plan tasks"
	case PlanConversationTurn:
		return "plan chat"
	case PlanFileWatch:
		return "plan file watch"
	}
	return fmt.Sprintf("job(%d)", int(k))
}

// Outcome is the payload of a successful job. Which fields are set depends
// on the kind.
type Outcome struct {
	// Plan replaces the current plan (EnrichAndGenerateChecklist,
	// PlanFileWatch).
	Plan *planstore.PlanDocument
	// Checklist is a batch to append to the checklist.
	Checklist []planstore.TaskItem
	// Tasks are filled drafts to append to the plan.
	Tasks []planstore.TaskItem
	// Reply is the worker's answer in a conversation.
	Reply string
}

// Event is one message from a job. Progress events carry Line. Exactly one
// event per job has Final set; it carries either Outcome or Err, and it is
// always the last one sent.
type Event struct {
	Kind    Kind
	Line    string
	Final   bool
	Outcome Outcome
	Err     error
}

// Failed reports whether e is a terminal failure.
func (e Event) Failed() bool {
	return e.Final && e.Err != nil
}

func progress(kind Kind, line string) Event {
	return Event{Kind: kind, Line: line}
}

func succeeded(kind Kind, out Outcome) Event {
	return Event{Kind: kind, Final: true, Outcome: out}
}

func failed(kind Kind, err error) Event {
	return Event{Kind: kind, Final: true, Err: err}
}
