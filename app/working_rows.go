package app

import (
	"errors"

	"github.com/kastheco/orchestra/internal/batch"
	"github.com/kastheco/orchestra/log"
	"github.com/kastheco/orchestra/ui"
)

var (
	errRunInProgress  = errors.New("a run is in progress")
	errEmptyChecklist = errors.New("run is disabled until todos.yaml has items")
)

// notRunResult is the result of a row the run never reached.
const notRunResult = "(not run)"

// WorkingRows tracks the rows of the current run. A row's status only moves
// forward; events that would move it back are dropped.
type WorkingRows struct {
	rows []ui.WorkingRow
}

// Rows returns the rows for rendering.
func (w *WorkingRows) Rows() []ui.WorkingRow {
	return w.rows
}

func (w *WorkingRows) Len() int {
	return len(w.rows)
}

// Result returns the result of row i, or "" when it has none.
func (w *WorkingRows) Result(i int) string {
	if i < 0 || i >= len(w.rows) {
		return ""
	}
	return w.rows[i].Result
}

// Done reports how many rows are done.
func (w *WorkingRows) Done() int {
	n := 0
	for _, r := range w.rows {
		if r.Status == batch.Done {
			n++
		}
	}
	return n
}

// Idle reports whether every row is done, which includes having no rows.
func (w *WorkingRows) Idle() bool {
	return w.Done() == len(w.rows)
}

// CanRun returns why a new run may not start.
func (w *WorkingRows) CanRun(checklistItems int) error {
	if !w.Idle() {
		return errRunInProgress
	}
	if checklistItems == 0 {
		return errEmptyChecklist
	}
	return nil
}

// Reset replaces the rows with one Ready row per request.
func (w *WorkingRows) Reset(requests []string) {
	w.rows = make([]ui.WorkingRow, len(requests))
	for i, r := range requests {
		w.rows[i] = ui.WorkingRow{Request: r, Status: batch.Ready}
	}
}

func (w *WorkingRows) advance(i int, to batch.Status, result string) bool {
	if i < 0 || i >= len(w.rows) {
		log.WarningLog.Printf("row event for unknown row %d (have %d)", i, len(w.rows))
		return false
	}
	if w.rows[i].Status >= to {
		return false
	}
	w.rows[i].Status = to
	if to == batch.Done {
		w.rows[i].Result = result
	}
	return true
}

// Apply applies a row event and reports whether a row changed. Finish
// settles rows the run never reached so the next run is not blocked.
func (w *WorkingRows) Apply(ev batch.RowEvent) bool {
	switch ev.Kind {
	case batch.RowRunning:
		return w.advance(ev.Index, batch.Running, "")
	case batch.RowDone:
		return w.advance(ev.Index, batch.Done, ev.Result)
	case batch.Finish:
		result := notRunResult
		if ev.Err != nil {
			result = "error: " + ev.Err.Error()
		}
		changed := false
		for i := range w.rows {
			if w.advance(i, batch.Done, result) {
				changed = true
			}
		}
		return changed
	}
	return false
}
