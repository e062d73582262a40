package auditlog

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // register sqlite driver
)

const auditSchema = `
CREATE TABLE IF NOT EXISTS audit_events (
	id         INTEGER PRIMARY KEY,
	kind       TEXT    NOT NULL,
	timestamp  TEXT    NOT NULL,
	project    TEXT    NOT NULL DEFAULT '',
	job_id     TEXT    NOT NULL DEFAULT '',
	job_kind   TEXT    NOT NULL DEFAULT '',
	worker_id  INTEGER NOT NULL DEFAULT 0,
	message    TEXT    NOT NULL DEFAULT '',
	detail     TEXT    NOT NULL DEFAULT '',
	level      TEXT    NOT NULL DEFAULT 'info'
);

CREATE INDEX IF NOT EXISTS idx_audit_project_ts ON audit_events(project, timestamp DESC);
CREATE INDEX IF NOT EXISTS idx_audit_job ON audit_events(job_id, timestamp DESC);
`

const maxQueryLimit = 500

// SQLiteLogger is a Logger backed by a SQLite database.
type SQLiteLogger struct {
	db *sql.DB
}

// NewSQLiteLogger opens the audit database at dbPath, creating the file and
// its directory when missing. ":memory:" gives a private in-memory database.
func NewSQLiteLogger(dbPath string) (*SQLiteLogger, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create audit log directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db for audit log: %w", err)
	}
	// The callback server and the console emit from different goroutines;
	// one connection keeps writes ordered and ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(auditSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run audit log schema: %w", err)
	}

	return &SQLiteLogger{db: db}, nil
}

// Emit stores e, stamping it with the current time when it has none.
// Write failures are dropped so a broken audit database never stalls a job
// or a batch worker.
func (l *SQLiteLogger) Emit(e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	if e.Level == "" {
		e.Level = "info"
	}
	_, _ = l.db.Exec(
		"INSERT INTO audit_events (kind, timestamp, project, job_id, job_kind, worker_id, message, detail, level) "+
			"VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		string(e.Kind), formatTime(e.Timestamp), e.Project, e.JobID, e.JobKind,
		e.WorkerID, e.Message, e.Detail, e.Level,
	)
}

// filterClause renders the WHERE clause of f, or "" when f matches
// everything.
func filterClause(f QueryFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, vals ...any) {
		conds = append(conds, cond)
		args = append(args, vals...)
	}
	if f.Project != "" {
		add("project = ?", f.Project)
	}
	if f.JobID != "" {
		add("job_id = ?", f.JobID)
	}
	if n := len(f.Kinds); n > 0 {
		kinds := make([]any, n)
		for i, k := range f.Kinds {
			kinds[i] = string(k)
		}
		add("kind IN (?"+strings.Repeat(", ?", n-1)+")", kinds...)
	}
	if !f.After.IsZero() {
		add("timestamp > ?", formatTime(f.After))
	}
	if !f.Before.IsZero() {
		add("timestamp < ?", formatTime(f.Before))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// Query returns the events matching f, newest first. The limit is clamped
// to 1..500.
func (l *SQLiteLogger) Query(f QueryFilter) ([]Event, error) {
	limit := f.Limit
	if limit <= 0 || limit > maxQueryLimit {
		limit = maxQueryLimit
	}
	where, args := filterClause(f)
	q := "SELECT " + eventColumns + " FROM audit_events" + where +
		fmt.Sprintf(" ORDER BY timestamp DESC, id DESC LIMIT %d", limit)

	rows, err := l.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

const eventColumns = "id, kind, timestamp, project, job_id, job_kind, worker_id, message, detail, level"

func scanEvents(rows *sql.Rows) ([]Event, error) {
	var events []Event
	for rows.Next() {
		var (
			e  Event
			ts string
		)
		err := rows.Scan(&e.ID, (*string)(&e.Kind), &ts, &e.Project, &e.JobID, &e.JobKind,
			&e.WorkerID, &e.Message, &e.Detail, &e.Level)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Timestamp = parseTime(ts)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}

// Close releases the database connection.
func (l *SQLiteLogger) Close() error {
	return l.db.Close()
}

// Timestamps are stored as UTC RFC3339Nano text so they sort as strings.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
