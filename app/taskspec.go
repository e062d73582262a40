package app

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/kastheco/orchestra/config/planstore"
	"github.com/kastheco/orchestra/keys"
	"github.com/kastheco/orchestra/ui"
)

type taskMode int

const (
	modeList taskMode = iota
	modeForm
)

const (
	statusNoTasks       = "no tasks to select"
	statusInputCanceled = "input canceled"
)

// taskSpec is the TaskSpec pane state. In List mode the pane either owns
// focus as a whole or a selected item; Form mode edits the selected task
// one field at a time.
type taskSpec struct {
	mode      taskMode
	itemFocus bool
	selected  int
	field     int
	editing   bool
	input     textinput.Model
}

func newTaskSpec() *taskSpec {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 0
	return &taskSpec{input: ti}
}

// taskKey is what a key press did to the pane.
type taskKey struct {
	// consumed keys are not handled by the grid or the global keys.
	consumed bool
	status   string
	// changed means the plan was edited and must be saved.
	changed bool
}

// clamp keeps the selection valid after the task list changed.
func (t *taskSpec) clamp(n int) {
	if n == 0 {
		t.selected = 0
		t.itemFocus = false
		t.mode = modeList
		t.editing = false
		return
	}
	t.selected = min(max(t.selected, 0), n-1)
}

func (t *taskSpec) handleKey(msg tea.KeyMsg, plan *planstore.PlanDocument) taskKey {
	if t.editing {
		return t.handleEdit(msg, plan)
	}
	name, ok := keys.GlobalKeyStringsMap[msg.String()]
	if !ok {
		return taskKey{}
	}
	if t.mode == modeForm {
		return t.handleForm(name, plan)
	}
	return t.handleList(name, len(plan.Tasks))
}

func (t *taskSpec) handleList(name keys.KeyName, n int) taskKey {
	if !t.itemFocus {
		if name != keys.KeyDown {
			return taskKey{}
		}
		if n == 0 {
			return taskKey{consumed: true, status: statusNoTasks}
		}
		t.itemFocus = true
		t.selected = 0
		return taskKey{consumed: true}
	}

	switch name {
	case keys.KeyUp:
		if t.selected == 0 {
			t.itemFocus = false
		} else {
			t.selected--
		}
	case keys.KeyDown:
		t.selected = min(t.selected+1, max(n-1, 0))
	case keys.KeyEnter:
		if t.selected >= n {
			return taskKey{consumed: true, status: statusNoTasks}
		}
		t.mode = modeForm
		t.field = 0
	case keys.KeyEsc:
		t.itemFocus = false
	default:
		return taskKey{}
	}
	return taskKey{consumed: true}
}

func (t *taskSpec) handleForm(name keys.KeyName, plan *planstore.PlanDocument) taskKey {
	switch name {
	case keys.KeyUp:
		t.field = max(t.field-1, 0)
	case keys.KeyDown:
		t.field = min(t.field+1, len(planstore.FormFields)-1)
	case keys.KeyEnter:
		if t.selected >= len(plan.Tasks) {
			t.mode = modeList
			return taskKey{consumed: true, status: statusNoTasks}
		}
		t.editing = true
		t.input.SetValue(plan.Tasks[t.selected].FieldValue(t.field))
		t.input.CursorEnd()
		t.input.Focus()
	case keys.KeyEsc, keys.KeyQuit:
		t.mode = modeList
		t.itemFocus = true
	default:
		return taskKey{}
	}
	return taskKey{consumed: true}
}

func (t *taskSpec) handleEdit(msg tea.KeyMsg, plan *planstore.PlanDocument) taskKey {
	switch msg.Type {
	case tea.KeyEsc:
		t.stopEditing()
		return taskKey{consumed: true, status: statusInputCanceled}
	case tea.KeyEnter:
		value := t.input.Value()
		t.stopEditing()
		if t.selected >= len(plan.Tasks) {
			return taskKey{consumed: true, status: statusNoTasks}
		}
		plan.Tasks[t.selected].SetField(t.field, value)
		return taskKey{consumed: true, changed: true,
			status: planstore.FormFields[t.field] + " updated"}
	}
	t.input, _ = t.input.Update(msg)
	return taskKey{consumed: true}
}

func (t *taskSpec) stopEditing() {
	t.editing = false
	t.input.Blur()
	t.input.Reset()
}

// view returns the pane data for the renderer.
func (t *taskSpec) view(tasks []planstore.TaskItem) ui.TaskSpecData {
	d := ui.TaskSpecData{
		Tasks:     tasks,
		Form:      t.mode == modeForm,
		ItemFocus: t.itemFocus,
		Selected:  t.selected,
		Field:     t.field,
		Editing:   t.editing,
	}
	if t.editing {
		d.EditView = t.input.View()
	}
	return d
}
