package jobs

import (
	"context"
	"fmt"
)

// Slot runs at most one job at a time and keeps its progress log.
type Slot struct {
	name   string
	handle *Handle
	log    *LogRing
	// last is the terminal event of the previous job.
	last *Event
}

func NewSlot(name string) *Slot {
	return &Slot{name: name, log: NewLogRing(DefaultLogLines)}
}

func (s *Slot) Name() string {
	return s.name
}

// Running reports whether a job occupies the slot.
func (s *Slot) Running() bool {
	return s.handle != nil
}

// Handle returns the running job, or nil.
func (s *Slot) Handle() *Handle {
	return s.handle
}

// Log returns the progress log of the current or previous job.
func (s *Slot) Log() *LogRing {
	return s.log
}

// Last returns the terminal event of the previous job, if any.
func (s *Slot) Last() (Event, bool) {
	if s.last == nil {
		return Event{}, false
	}
	return *s.last, true
}

// Start spawns fn when the slot is free. A busy slot refuses with
// ErrSlotBusy and nothing is spawned.
func (s *Slot) Start(ctx context.Context, kind Kind, fn Func) (*Handle, error) {
	if s.handle != nil {
		return nil, fmt.Errorf("%s: %w", s.name, ErrSlotBusy)
	}
	h := Start(ctx, kind, fn)
	s.attach(h)
	return h, nil
}

func (s *Slot) attach(h *Handle) {
	s.handle = h
	s.last = nil
	s.log.Reset()
	s.log.Append(fmt.Sprintf("started %s", h.Kind))
}

// Poll drains every event that is ready without blocking and passes each one
// to apply. A terminal event frees the slot. A channel that closed without a
// terminal event produces a synthesized ErrDisconnected failure, which frees
// the slot in the same call. It returns the number of events applied.
func (s *Slot) Poll(apply func(Event)) int {
	n := 0
	for s.handle != nil {
		select {
		case ev, ok := <-s.handle.Events:
			if !ok {
				ev = failed(s.handle.Kind, ErrDisconnected)
			}
			s.record(ev)
			if ev.Final {
				s.finish(ev)
			}
			n++
			if apply != nil {
				apply(ev)
			}
		default:
			return n
		}
	}
	return n
}

func (s *Slot) record(ev Event) {
	switch {
	case !ev.Final:
		s.log.Append(ev.Line)
	case ev.Err != nil:
		s.log.Append(fmt.Sprintf("failed: %v", ev.Err))
	default:
		s.log.Append("done")
	}
}

func (s *Slot) finish(ev Event) {
	s.handle = nil
	s.last = &ev
}
