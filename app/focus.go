package app

// Focus is the pane that owns keyboard input. The panes form a 2×2 grid:
//
//	Project  | Todos
//	TaskSpec | Working
type Focus int

const (
	FocusProject Focus = iota
	FocusTaskSpec
	FocusTodos
	FocusWorking
)

func (f Focus) String() string {
	switch f {
	case FocusProject:
		return "project"
	case FocusTaskSpec:
		return "task spec"
	case FocusTodos:
		return "todos"
	case FocusWorking:
		return "working"
	}
	return "unknown"
}

type direction int

const (
	dirUp direction = iota
	dirDown
	dirLeft
	dirRight
)

// nextFocus moves focus across the grid. Left/Right switch columns and keep
// the row, Up/Down switch rows and keep the column. Moves off the grid keep
// the current focus.
func nextFocus(f Focus, dir direction) Focus {
	top := f == FocusProject || f == FocusTodos
	left := f == FocusProject || f == FocusTaskSpec

	switch dir {
	case dirUp:
		top = true
	case dirDown:
		top = false
	case dirLeft:
		left = true
	case dirRight:
		left = false
	default:
		return f
	}

	switch {
	case top && left:
		return FocusProject
	case !top && left:
		return FocusTaskSpec
	case top:
		return FocusTodos
	default:
		return FocusWorking
	}
}
