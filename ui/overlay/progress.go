package overlay

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

// ProgressFocus is the focused element of the job progress overlay.
type ProgressFocus int

const (
	ProgressFocusLog ProgressFocus = iota
	ProgressFocusClose
)

type ProgressAction int

const (
	ProgressNone ProgressAction = iota
	ProgressClose
	// ProgressCloseRefused means close was pressed while the job runs.
	ProgressCloseRefused
)

// JobProgressOverlay shows the log of the shared background job.
type JobProgressOverlay struct {
	viewport viewport.Model
	spinner  *spinner.Model
	Focus    ProgressFocus
	title    string
	lines    []string
	running  bool
	width    int
	height   int
	follow   bool
}

func NewJobProgressOverlay(s *spinner.Model) *JobProgressOverlay {
	return &JobProgressOverlay{
		viewport: viewport.New(0, 0),
		spinner:  s,
		follow:   true,
	}
}

func (p *JobProgressOverlay) SetSize(width, height int) {
	p.width = max(width, 40)
	p.height = max(height, 6)
	p.viewport.Width = p.width - 6
	p.viewport.Height = p.height - 6
	p.refresh()
}

// SetJob updates the title, log lines and running flag. The view follows
// the tail unless the operator scrolled up.
func (p *JobProgressOverlay) SetJob(title string, lines []string, running bool) {
	p.title = title
	p.running = running
	if len(lines) == len(p.lines) && (len(lines) == 0 || lines[len(lines)-1] == p.lines[len(p.lines)-1]) {
		return
	}
	p.lines = append(p.lines[:0], lines...)
	p.refresh()
}

func (p *JobProgressOverlay) Running() bool {
	return p.running
}

func (p *JobProgressOverlay) refresh() {
	width := p.viewport.Width
	wrapped := make([]string, 0, len(p.lines))
	for _, line := range p.lines {
		if width > 0 {
			line = wordwrap.String(line, width)
		}
		wrapped = append(wrapped, line)
	}
	p.viewport.SetContent(strings.Join(wrapped, "\n"))
	if p.follow {
		p.viewport.GotoBottom()
	}
}

// HandleKeyPress updates the overlay. Close is refused while the job runs.
func (p *JobProgressOverlay) HandleKeyPress(msg tea.KeyMsg) ProgressAction {
	switch msg.Type {
	case tea.KeyTab, tea.KeyShiftTab:
		p.Focus = (p.Focus + 1) % 2
		return ProgressNone
	case tea.KeyEsc:
		return p.close()
	case tea.KeyEnter:
		if p.Focus == ProgressFocusClose {
			return p.close()
		}
		return ProgressNone
	case tea.KeyUp:
		p.viewport.LineUp(1)
	case tea.KeyDown:
		p.viewport.LineDown(1)
	case tea.KeyPgUp:
		p.viewport.HalfViewUp()
	case tea.KeyPgDown:
		p.viewport.HalfViewDown()
	default:
		if msg.String() == "q" {
			return p.close()
		}
		return ProgressNone
	}
	p.follow = p.viewport.AtBottom()
	return ProgressNone
}

func (p *JobProgressOverlay) close() ProgressAction {
	if p.running {
		return ProgressCloseRefused
	}
	return ProgressClose
}

func (p *JobProgressOverlay) Render() string {
	style := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(colorIris).
		Padding(1, 2)

	title := p.title
	if title == "" {
		title = "no job"
	}
	header := lipgloss.NewStyle().Foreground(colorIris).Bold(true).Render(title)
	if p.running {
		header = lipgloss.NewStyle().Foreground(colorGold).Render(p.spinner.View()) + " " + header
	} else {
		header += lipgloss.NewStyle().Foreground(colorMuted).Render("  finished")
	}

	body := p.viewport.View()
	if len(p.lines) == 0 {
		body = lipgloss.NewStyle().Foreground(colorMuted).Render("no output yet")
	}

	hint := "tab focus · ↑/↓ scroll · esc close"
	if p.running {
		hint = "tab focus · ↑/↓ scroll · close is disabled while the job runs"
	}
	footer := button(" Close ", p.Focus == ProgressFocusClose) + "  " +
		lipgloss.NewStyle().Foreground(colorMuted).Render(hint)

	return style.Width(p.width).Render(header + "\n\n" + body + "\n\n" + footer)
}
