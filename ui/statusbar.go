package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/kastheco/orchestra/keys"
	"github.com/muesli/reflow/truncate"
)

// StatusBarData holds the contextual information displayed in the status bar.
type StatusBarData struct {
	Project string
	Focus   string
	// Job is the label of the running shared job, empty when idle.
	Job     string
	Message string
	IsError bool
}

// StatusBar is the bottom status bar component.
type StatusBar struct {
	width int
	data  StatusBarData
}

// NewStatusBar creates a new StatusBar.
func NewStatusBar() *StatusBar {
	return &StatusBar{}
}

// SetSize sets the terminal width for the status bar.
func (s *StatusBar) SetSize(width int) {
	s.width = width
}

// SetData updates the status bar content.
func (s *StatusBar) SetData(data StatusBarData) {
	s.data = data
}

var statusBarStyle = lipgloss.NewStyle().
	Background(ColorSurface).
	Foreground(ColorText).
	Padding(0, 1)

var statusBarAppNameStyle = lipgloss.NewStyle().
	Foreground(ColorIris).
	Background(ColorSurface).
	Bold(true)

var statusBarSepStyle = lipgloss.NewStyle().
	Foreground(ColorOverlay).
	Background(ColorSurface)

var statusBarFocusStyle = lipgloss.NewStyle().
	Foreground(ColorFoam).
	Background(ColorSurface)

var statusBarJobStyle = lipgloss.NewStyle().
	Foreground(ColorGold).
	Background(ColorSurface)

var statusBarMsgStyle = lipgloss.NewStyle().
	Foreground(ColorSubtle).
	Background(ColorSurface)

var statusBarErrStyle = lipgloss.NewStyle().
	Foreground(ColorLove).
	Background(ColorSurface)

const statusBarSep = " │ "

func (s *StatusBar) String() string {
	if s.width < 10 {
		return ""
	}

	parts := make([]string, 0, 5)
	parts = append(parts, statusBarAppNameStyle.Render("orchestra"))
	if s.data.Project != "" {
		parts = append(parts, s.data.Project)
	}
	if s.data.Focus != "" {
		parts = append(parts, statusBarFocusStyle.Render(s.data.Focus))
	}
	if s.data.Job != "" {
		parts = append(parts, statusBarJobStyle.Render("● "+s.data.Job))
	}
	if s.data.Message != "" {
		style := statusBarMsgStyle
		if s.data.IsError {
			style = statusBarErrStyle
		}
		parts = append(parts, style.Render(s.data.Message))
	}

	sep := statusBarSepStyle.Render(statusBarSep)
	content := strings.Join(parts, sep)
	if lipgloss.Width(content) > s.width-2 {
		content = truncate.StringWithTail(content, uint(s.width-2), "…")
	}
	return statusBarStyle.Width(s.width).Render(content)
}

// KeyHints renders the key help line under the status bar.
func KeyHints(width int) string {
	hints := make([]string, 0, len(keys.StatusHints))
	for _, name := range keys.StatusHints {
		h := keys.GlobalkeyBindings[name].Help()
		hints = append(hints, h.Key+" "+h.Desc)
	}
	return hintStyle.Render(fit(strings.Join(hints, " · "), width))
}
