package overlay

import (
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// RequestFocus is the focused element of the request input overlay.
type RequestFocus int

const (
	RequestFocusInput RequestFocus = iota
	RequestFocusSubmit
	RequestFocusCancel
)

// RequestAction is what a key press asked the app to do.
type RequestAction int

const (
	RequestNone RequestAction = iota
	RequestSubmit
	RequestCancel
)

const requestPlaceholder = "# task name\n> a step\n- a rule"

// RequestInputOverlay collects free-text task drafts.
type RequestInputOverlay struct {
	textarea textarea.Model
	Title    string
	Focus    RequestFocus
	status   string
	width    int
	height   int
	sizeSet  bool
}

func NewRequestInputOverlay(title string) *RequestInputOverlay {
	ta := textarea.New()
	ta.Focus()
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.Placeholder = requestPlaceholder
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.CharLimit = 0
	ta.MaxHeight = 0

	return &RequestInputOverlay{textarea: ta, Title: title}
}

// SetSize sizes the overlay once. Later resizes keep the first size so the
// text being typed does not jump around.
func (r *RequestInputOverlay) SetSize(width, height int) {
	if r.sizeSet {
		return
	}
	r.sizeSet = true
	r.width = width
	r.height = height
	r.textarea.SetHeight(max(height, 3))
}

// SetStatus shows a message under the buttons, e.g. a parse failure.
func (r *RequestInputOverlay) SetStatus(msg string) {
	r.status = msg
}

func (r *RequestInputOverlay) Value() string {
	return r.textarea.Value()
}

func (r *RequestInputOverlay) SetValue(v string) {
	r.textarea.SetValue(v)
}

func (r *RequestInputOverlay) setFocus(f RequestFocus) {
	r.Focus = f
	if f == RequestFocusInput {
		r.textarea.Focus()
	} else {
		r.textarea.Blur()
	}
}

// HandleKeyPress updates the overlay. Enter inside the text inserts a
// newline; ctrl+s submits from anywhere.
func (r *RequestInputOverlay) HandleKeyPress(msg tea.KeyMsg) RequestAction {
	switch msg.Type {
	case tea.KeyEsc:
		return RequestCancel
	case tea.KeyCtrlS:
		return RequestSubmit
	case tea.KeyTab:
		r.setFocus((r.Focus + 1) % 3)
		return RequestNone
	case tea.KeyShiftTab:
		r.setFocus((r.Focus + 2) % 3)
		return RequestNone
	case tea.KeyEnter:
		switch r.Focus {
		case RequestFocusSubmit:
			return RequestSubmit
		case RequestFocusCancel:
			return RequestCancel
		}
	}
	if r.Focus == RequestFocusInput {
		r.status = ""
		r.textarea, _ = r.textarea.Update(msg)
	}
	return RequestNone
}

// Render renders the overlay box.
func (r *RequestInputOverlay) Render() string {
	style := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(colorIris).
		Padding(1, 2)

	titleStyle := lipgloss.NewStyle().
		Foreground(colorIris).
		Bold(true).
		MarginBottom(1)

	w := max(r.width, 40)
	r.textarea.SetWidth(w - 6)

	content := titleStyle.Render(r.Title) + "\n"
	content += r.textarea.View() + "\n\n"
	content += button(" Submit ", r.Focus == RequestFocusSubmit) + " " + button(" Cancel ", r.Focus == RequestFocusCancel)
	content += "  " + lipgloss.NewStyle().Foreground(colorMuted).Render("tab focus · ctrl+s submit · esc cancel")
	if r.status != "" {
		content += "\n" + lipgloss.NewStyle().Foreground(colorLove).Render(r.status)
	}
	return style.Render(content)
}

func button(label string, focused bool) string {
	if focused {
		return lipgloss.NewStyle().Background(colorIris).Foreground(colorBase).Render(label)
	}
	return lipgloss.NewStyle().Foreground(colorSubtle).Render(label)
}
