package auditlog

import "time"

// EventKind identifies the type of audit event.
type EventKind string

// String returns the string representation of the EventKind.
func (k EventKind) String() string {
	return string(k)
}

// Background job events.
const (
	EventJobStarted   EventKind = "job_started"
	EventJobSucceeded EventKind = "job_succeeded"
	EventJobFailed    EventKind = "job_failed"
	EventJobRejected  EventKind = "job_rejected"
)

// Document events.
const (
	EventDocumentSaved      EventKind = "document_saved"
	EventDocumentLoadFailed EventKind = "document_load_failed"
	EventFeaturesAppended   EventKind = "features_appended"
)

// Batch run events.
const (
	EventRunTriggered EventKind = "run_triggered"
	EventRowRunning   EventKind = "row_running"
	EventRowDone      EventKind = "row_done"
	EventRunFinished  EventKind = "run_finished"
)

// Operational events.
const (
	EventResultReceived EventKind = "result_received"
	EventPlannerOpened  EventKind = "planner_opened"
	EventError          EventKind = "error"
)

// Event is a single audit log entry.
type Event struct {
	ID        int64
	Kind      EventKind
	Timestamp time.Time
	Project   string
	JobID     string
	JobKind   string
	WorkerID  int
	Message   string
	Detail    string // JSON-encoded extra data
	Level     string // info, warn, error
}
