package batch

import "fmt"

type RowKind int

const (
	RowRunning RowKind = iota
	RowDone
	Finish
)

func (k RowKind) String() string {
	switch k {
	case RowRunning:
		return "running"
	case RowDone:
		return "done"
	case Finish:
		return "finish"
	default:
		return fmt.Sprintf("row(%d)", int(k))
	}
}

// RowEvent updates one working row, or ends the run. Result is set for
// RowDone only. Err is set on Finish when the run failed.
type RowEvent struct {
	Kind   RowKind
	Index  int
	Result string
	Err    error
}

// SendOnlyResult is the row result of a worker whose output is not awaited.
const SendOnlyResult = "(send-only)"

func errorResult(err error) string {
	return "error: " + err.Error()
}

// Status is the state of one working row. It only moves forward:
// Ready, then Running, then Done.
type Status int

const (
	Ready Status = iota
	Running
	Done
)

func (s Status) String() string {
	switch s {
	case Ready:
		return "ready"
	case Running:
		return "running"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}
