package auditlog

import "time"

// QueryFilter specifies criteria for querying audit events.
type QueryFilter struct {
	Project string
	JobID   string
	Kinds   []EventKind
	Limit   int
	Before  time.Time
	After   time.Time
}

// Logger is the interface for emitting and querying audit events.
type Logger interface {
	Emit(event Event)
	Query(filter QueryFilter) ([]Event, error)
	Close() error
}

// EventOption is a functional option for configuring optional Event fields.
type EventOption func(*Event)

// WithJob sets the job correlation id and kind.
func WithJob(id, kind string) EventOption {
	return func(e *Event) {
		e.JobID = id
		e.JobKind = kind
	}
}

// WithWorker sets the batch worker index.
func WithWorker(id int) EventOption {
	return func(e *Event) { e.WorkerID = id }
}

// WithDetail sets the Detail field on the event (JSON-encoded extra data).
func WithDetail(detail string) EventOption {
	return func(e *Event) { e.Detail = detail }
}

// WithLevel sets the Level field on the event (info, warn, error).
func WithLevel(level string) EventOption {
	return func(e *Event) { e.Level = level }
}

// NewEvent builds an event for project with the given options applied.
func NewEvent(kind EventKind, project, message string, opts ...EventOption) Event {
	e := Event{Kind: kind, Project: project, Message: message}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// Open returns a sqlite logger at path, or a NopLogger when disabled. The
// error is returned alongside the NopLogger so callers can log it and carry on.
func Open(enabled bool, path string) (Logger, error) {
	if !enabled {
		return NopLogger(), nil
	}
	l, err := NewSQLiteLogger(path)
	if err != nil {
		return NopLogger(), err
	}
	return l, nil
}

// nopLogger is a no-op Logger used when auditing is disabled.
type nopLogger struct{}

// NopLogger returns a Logger that discards all events.
func NopLogger() Logger {
	return &nopLogger{}
}

func (n *nopLogger) Emit(_ Event) {}

func (n *nopLogger) Query(_ QueryFilter) ([]Event, error) {
	return nil, nil
}

func (n *nopLogger) Close() error {
	return nil
}
