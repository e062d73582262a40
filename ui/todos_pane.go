package ui

import (
	"fmt"
	"strings"

	"github.com/kastheco/orchestra/config/planstore"
	"github.com/muesli/reflow/truncate"
)

// RenderTodos draws the checklist with the selected entry highlighted when
// the pane is focused.
func (t Theme) RenderTodos(items []planstore.TaskItem, selected, width, height int, focused bool) string {
	innerW, innerH := t.InnerSize(width, height)
	title := fmt.Sprintf("Todos (%d)", len(items))
	if len(items) == 0 {
		return t.Frame(title, hintStyle.Render("empty, press g to generate"), width, height, focused)
	}

	start, end := window(len(items), selected, innerH)
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		item := items[i]
		label := fmt.Sprintf("%2d. %s", i+1, item.Name)
		if len(item.Domain) > 0 {
			label += " (" + strings.Join(item.Domain, ", ") + ")"
		}
		line := truncate.StringWithTail(label, uint(max(innerW, 0)), "…")
		if focused && i == selected {
			line = t.selectedStyle(true).Render(padRight(line, innerW))
		}
		lines = append(lines, line)
	}
	return t.Frame(title, strings.Join(lines, "\n"), width, height, focused)
}
