package overlay

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/kastheco/orchestra/log"
	"github.com/kastheco/orchestra/session"
)

// Roles of the plan conversation.
const (
	RoleOperator = "operator"
	RoleWorker   = "worker"
)

type ChatFocus int

const (
	ChatFocusInput ChatFocus = iota
	ChatFocusTranscript
)

type ChatAction int

const (
	ChatNone ChatAction = iota
	// ChatSend asks the app to start a conversation turn with Message().
	ChatSend
	// ChatBusy means send was pressed while a turn is in flight.
	ChatBusy
	ChatClose
	// ChatCloseRefused means close was pressed while a turn is in flight.
	ChatCloseRefused
)

// PlanChatOverlay is a conversation with a worker about the plan.
type PlanChatOverlay struct {
	viewport viewport.Model
	input    textarea.Model
	spinner  *spinner.Model
	Focus    ChatFocus

	history []session.Turn
	pending bool
	message string

	width    int
	height   int
	renderer *glamour.TermRenderer
	wrapAt   int
}

func NewPlanChatOverlay(s *spinner.Model) *PlanChatOverlay {
	ta := textarea.New()
	ta.Focus()
	ta.ShowLineNumbers = false
	ta.Prompt = "> "
	ta.Placeholder = "ask about the plan, or request a change"
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.SetHeight(3)
	ta.CharLimit = 0

	return &PlanChatOverlay{
		viewport: viewport.New(0, 0),
		input:    ta,
		spinner:  s,
	}
}

func (c *PlanChatOverlay) SetSize(width, height int) {
	c.width = max(width, 40)
	c.height = max(height, 12)
	c.viewport.Width = c.width - 6
	c.viewport.Height = c.height - 12
	c.input.SetWidth(c.width - 6)
	c.refresh()
}

// History returns the turns so far.
func (c *PlanChatOverlay) History() []session.Turn {
	return append([]session.Turn(nil), c.history...)
}

// Message is the text submitted by the last ChatSend.
func (c *PlanChatOverlay) Message() string {
	return c.message
}

func (c *PlanChatOverlay) Pending() bool {
	return c.pending
}

// AddReply ends the turn in flight with the worker's answer.
func (c *PlanChatOverlay) AddReply(text string) {
	c.pending = false
	c.history = append(c.history, session.Turn{Role: RoleWorker, Text: text})
	c.refresh()
}

// FailTurn ends the turn in flight without an answer. The operator's message
// stays in the transcript.
func (c *PlanChatOverlay) FailTurn(err error) {
	c.pending = false
	c.history = append(c.history, session.Turn{Role: RoleWorker, Text: fmt.Sprintf("_failed: %v_", err)})
	c.refresh()
}

// HandleKeyPress updates the overlay. Close is refused while a turn is in
// flight.
func (c *PlanChatOverlay) HandleKeyPress(msg tea.KeyMsg) ChatAction {
	switch msg.Type {
	case tea.KeyEsc:
		if c.pending {
			return ChatCloseRefused
		}
		return ChatClose
	case tea.KeyTab, tea.KeyShiftTab:
		if c.Focus == ChatFocusInput {
			c.Focus = ChatFocusTranscript
			c.input.Blur()
		} else {
			c.Focus = ChatFocusInput
			c.input.Focus()
		}
		return ChatNone
	}

	if c.Focus == ChatFocusTranscript {
		switch msg.Type {
		case tea.KeyUp:
			c.viewport.LineUp(1)
		case tea.KeyDown:
			c.viewport.LineDown(1)
		case tea.KeyPgUp:
			c.viewport.HalfViewUp()
		case tea.KeyPgDown:
			c.viewport.HalfViewDown()
		}
		return ChatNone
	}

	if msg.Type == tea.KeyEnter {
		text := strings.TrimSpace(c.input.Value())
		if text == "" {
			return ChatNone
		}
		if c.pending {
			return ChatBusy
		}
		c.message = text
		c.input.Reset()
		c.pending = true
		c.history = append(c.history, session.Turn{Role: RoleOperator, Text: text})
		c.refresh()
		return ChatSend
	}
	c.input, _ = c.input.Update(msg)
	return ChatNone
}

// TranscriptMarkdown renders the conversation as markdown.
func TranscriptMarkdown(history []session.Turn) string {
	var sb strings.Builder
	for i, t := range history {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "**%s:** %s", t.Role, t.Text)
	}
	return sb.String()
}

func (c *PlanChatOverlay) refresh() {
	md := TranscriptMarkdown(c.history)
	if md == "" {
		c.viewport.SetContent(lipgloss.NewStyle().Foreground(colorMuted).Render("no messages yet"))
		return
	}
	c.viewport.SetContent(c.render(md))
	c.viewport.GotoBottom()
}

func (c *PlanChatOverlay) render(md string) string {
	wrap := c.viewport.Width
	if wrap <= 0 {
		wrap = 80
	}
	if c.renderer == nil || c.wrapAt != wrap {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(wrap),
		)
		if err != nil {
			log.WarningLog.Printf("could not create markdown renderer: %v", err)
			return md
		}
		c.renderer, c.wrapAt = r, wrap
	}
	out, err := c.renderer.Render(md)
	if err != nil {
		log.WarningLog.Printf("could not render chat transcript: %v", err)
		return md
	}
	return strings.TrimRight(out, "\n")
}

func (c *PlanChatOverlay) Render() string {
	style := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(colorIris).
		Padding(1, 2)

	header := lipgloss.NewStyle().Foreground(colorIris).Bold(true).Render("Plan chat")
	if c.pending {
		header += "  " + lipgloss.NewStyle().Foreground(colorGold).Render(c.spinner.View()+" waiting for reply")
	}
	hint := lipgloss.NewStyle().Foreground(colorMuted).Render("enter send · tab transcript · esc close")

	return style.Width(c.width).Render(header + "\n\n" + c.viewport.View() + "\n\n" + c.input.View() + "\n" + hint)
}
