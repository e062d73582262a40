package overlay

import (
	"errors"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/kastheco/orchestra/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChat() *PlanChatOverlay {
	s := spinner.New()
	c := NewPlanChatOverlay(&s)
	c.SetSize(80, 30)
	return c
}

func say(c *PlanChatOverlay, text string) ChatAction {
	c.HandleKeyPress(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return c.HandleKeyPress(tea.KeyMsg{Type: tea.KeyEnter})
}

func TestChatSendAndReply(t *testing.T) {
	c := newTestChat()
	require.Equal(t, ChatSend, say(c, "split task two"))
	assert.True(t, c.Pending())
	assert.Equal(t, "split task two", c.Message())

	assert.Equal(t, ChatBusy, say(c, "and task three"))

	c.AddReply("done, see the draft")
	assert.False(t, c.Pending())
	assert.Equal(t, []session.Turn{
		{Role: RoleOperator, Text: "split task two"},
		{Role: RoleWorker, Text: "done, see the draft"},
	}, c.History())
}

func TestChatEmptyEnterDoesNothing(t *testing.T) {
	c := newTestChat()
	assert.Equal(t, ChatNone, c.HandleKeyPress(tea.KeyMsg{Type: tea.KeyEnter}))
	assert.False(t, c.Pending())
}

func TestChatFailTurn(t *testing.T) {
	c := newTestChat()
	say(c, "hello")
	c.FailTurn(errors.New("worker exited with code 1"))

	assert.False(t, c.Pending())
	h := c.History()
	require.Len(t, h, 2)
	assert.Contains(t, h[1].Text, "worker exited with code 1")
}

func TestChatFocusAndClose(t *testing.T) {
	c := newTestChat()
	c.HandleKeyPress(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, ChatFocusTranscript, c.Focus)
	assert.Equal(t, ChatNone, c.HandleKeyPress(tea.KeyMsg{Type: tea.KeyEnter}), "enter in the transcript does not send")
	c.HandleKeyPress(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, ChatFocusInput, c.Focus)
	assert.Equal(t, ChatClose, c.HandleKeyPress(tea.KeyMsg{Type: tea.KeyEsc}))
}

func TestChatCloseRefusedWhilePending(t *testing.T) {
	c := newTestChat()
	require.Equal(t, ChatSend, say(c, "hello"))
	assert.Equal(t, ChatCloseRefused, c.HandleKeyPress(tea.KeyMsg{Type: tea.KeyEsc}))

	c.AddReply("hi")
	assert.Equal(t, ChatClose, c.HandleKeyPress(tea.KeyMsg{Type: tea.KeyEsc}))
}

func TestTranscriptMarkdown(t *testing.T) {
	md := TranscriptMarkdown([]session.Turn{
		{Role: RoleOperator, Text: "hi"},
		{Role: RoleWorker, Text: "hello"},
	})
	assert.Equal(t, "**operator:** hi\n\n**worker:** hello", md)
	assert.Empty(t, TranscriptMarkdown(nil))
}
