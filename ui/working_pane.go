package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/kastheco/orchestra/internal/batch"
	"github.com/mattn/go-runewidth"
)

// WorkingRow is one row of the Working pane.
type WorkingRow struct {
	Request string
	Result  string
	Status  batch.Status
}

var (
	readyStyle   = lipgloss.NewStyle().Foreground(ColorMuted)
	runningStyle = lipgloss.NewStyle().Foreground(ColorGold)
	doneStyle    = lipgloss.NewStyle().Foreground(ColorFoam)
)

func (t Theme) statusSymbol(s batch.Status) string {
	switch s {
	case batch.Running:
		return runningStyle.Render(t.RunningSymbol)
	case batch.Done:
		return doneStyle.Render(t.DoneSymbol)
	default:
		return readyStyle.Render(t.ReadySymbol)
	}
}

// firstLine is the request column text: the first non-blank line, with
// the YAML list prefix removed.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			return strings.TrimPrefix(line, "- ")
		}
	}
	return ""
}

// RenderWorking draws the run table: status symbol, request and result.
func (t Theme) RenderWorking(rows []WorkingRow, selected, width, height int, focused bool, footer string) string {
	innerW, innerH := t.InnerSize(width, height)
	done := 0
	for _, r := range rows {
		if r.Status == batch.Done {
			done++
		}
	}
	title := fmt.Sprintf("Working %d/%d", done, len(rows))
	if len(rows) == 0 {
		return t.Frame(title, hintStyle.Render(footer), width, height, focused)
	}

	if footer != "" {
		innerH--
	}
	symbolW := max(runewidth.StringWidth(t.ReadySymbol), runewidth.StringWidth(t.RunningSymbol), runewidth.StringWidth(t.DoneSymbol))
	requestW := (innerW - symbolW - 2) / 2
	resultW := innerW - symbolW - 2 - requestW

	start, end := window(len(rows), selected, innerH)
	lines := make([]string, 0, end-start+1)
	for i := start; i < end; i++ {
		r := rows[i]
		request := padRight(firstLine(r.Request), requestW)
		result := padRight(r.Result, resultW)
		if focused && i == selected {
			request = t.selectedStyle(true).Render(request)
		}
		symbol := t.statusSymbol(r.Status)
		symbol += strings.Repeat(" ", symbolW-lipgloss.Width(symbol))
		lines = append(lines, symbol+" "+request+" "+result)
	}
	if footer != "" {
		lines = append(lines, hintStyle.Render(fit(footer, innerW)))
	}
	return t.Frame(title, strings.Join(lines, "\n"), width, height, focused)
}
