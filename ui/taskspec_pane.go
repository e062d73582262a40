package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/kastheco/orchestra/config/planstore"
)

// TaskSpecData is what the TaskSpec pane shows. EditView is the rendered
// text input of the field being edited.
type TaskSpecData struct {
	Tasks     []planstore.TaskItem
	Form      bool
	ItemFocus bool
	Selected  int
	Field     int
	Editing   bool
	EditView  string
}

var (
	fieldLabelStyle = lipgloss.NewStyle().Foreground(ColorMuted).Width(7)
	taskTypeStyle   = lipgloss.NewStyle().Foreground(ColorSubtle)
)

// RenderTaskSpec draws the plan tasks as a list, or the selected task as a
// form.
func (t Theme) RenderTaskSpec(d TaskSpecData, width, height int, focused bool) string {
	if d.Form && d.Selected >= 0 && d.Selected < len(d.Tasks) {
		return t.renderTaskForm(d, width, height, focused)
	}

	innerW, innerH := t.InnerSize(width, height)
	if len(d.Tasks) == 0 {
		return t.Frame("Task Spec", hintStyle.Render("no tasks, press i to add some"), width, height, focused)
	}

	start, end := window(len(d.Tasks), d.Selected, innerH)
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		task := d.Tasks[i]
		label := fmt.Sprintf("%2d. %s", i+1, task.Name)
		if task.Type != "" {
			label += " [" + task.Type + "]"
		}
		line := padRight(label, innerW)
		if d.ItemFocus && i == d.Selected {
			line = t.selectedStyle(focused).Render(line)
		}
		lines = append(lines, line)
	}
	title := fmt.Sprintf("Task Spec (%d)", len(d.Tasks))
	return t.Frame(title, strings.Join(lines, "\n"), width, height, focused)
}

func (t Theme) renderTaskForm(d TaskSpecData, width, height int, focused bool) string {
	innerW, _ := t.InnerSize(width, height)
	task := d.Tasks[d.Selected]

	lines := make([]string, 0, len(planstore.FormFields)+2)
	for i, name := range planstore.FormFields {
		cursor := "  "
		if i == d.Field {
			cursor = "> "
		}
		var value string
		if d.Editing && i == d.Field {
			value = d.EditView
		} else {
			value = fit(task.FieldValue(i), innerW-9)
			if i == d.Field {
				value = t.selectedStyle(focused).Render(value)
			}
		}
		lines = append(lines, cursor+fieldLabelStyle.Render(name)+value)
	}

	hint := "↑/↓ field · enter edit · esc back"
	if d.Editing {
		hint = "enter save · esc cancel"
	}
	lines = append(lines, "", hintStyle.Render(fit(hint, innerW)))
	if len(task.Domain) > 0 {
		lines = append(lines, taskTypeStyle.Render(fit("domain: "+strings.Join(task.Domain, ", "), innerW)))
	}
	return t.Frame("Task Spec: "+task.Name, strings.Join(lines, "\n"), width, height, focused)
}
