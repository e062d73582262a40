package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Frame renders body inside a bordered box of exactly width x height cells
// with title on the first line. Lines that do not fit are cut.
func (t Theme) Frame(title, body string, width, height int, focused bool) string {
	style := t.paneStyle(focused)
	innerW := width - style.GetHorizontalFrameSize()
	innerH := height - style.GetVerticalFrameSize()
	if innerW < 1 || innerH < 1 {
		return ""
	}

	lines := []string{t.titleStyle(focused).Render(fit(title, innerW))}
	if body != "" {
		lines = append(lines, strings.Split(body, "\n")...)
	}
	if len(lines) > innerH {
		lines = lines[:innerH]
	}
	return style.Width(innerW + t.Padding*2).Height(innerH).Render(strings.Join(lines, "\n"))
}

// fit truncates plain text to width cells.
func fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

// padRight pads plain text with spaces to width cells.
func padRight(s string, width int) string {
	return runewidth.FillRight(fit(s, width), width)
}

// window returns the [start, end) range of a list of n rows of which at most
// height are visible, keeping selected in view.
func window(n, selected, height int) (int, int) {
	if height <= 0 || n <= height {
		return 0, n
	}
	start := selected - height/2
	if start < 0 {
		start = 0
	}
	if start+height > n {
		start = n - height
	}
	return start, start + height
}

// InnerSize returns the content size of a pane of the given outer size.
func (t Theme) InnerSize(width, height int) (int, int) {
	style := t.paneStyle(false)
	return width - style.GetHorizontalFrameSize(), height - style.GetVerticalFrameSize() - 1
}

var hintStyle = lipgloss.NewStyle().Foreground(ColorMuted).Italic(true)
