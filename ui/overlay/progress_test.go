package overlay

import (
	"fmt"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func newTestProgress() *JobProgressOverlay {
	s := spinner.New()
	p := NewJobProgressOverlay(&s)
	p.SetSize(60, 14)
	return p
}

func TestProgressCloseRefusedWhileRunning(t *testing.T) {
	p := newTestProgress()
	p.SetJob("generate", []string{"enriching 2 tasks"}, true)

	assert.Equal(t, ProgressCloseRefused, p.HandleKeyPress(tea.KeyMsg{Type: tea.KeyEsc}))
	assert.Equal(t, ProgressCloseRefused, p.HandleKeyPress(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}))

	p.HandleKeyPress(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, ProgressFocusClose, p.Focus)
	assert.Equal(t, ProgressCloseRefused, p.HandleKeyPress(tea.KeyMsg{Type: tea.KeyEnter}))
	assert.Contains(t, p.Render(), "disabled while the job runs")
}

func TestProgressCloseAfterFinish(t *testing.T) {
	p := newTestProgress()
	p.SetJob("generate", []string{"generated 3 checklist items"}, false)

	assert.False(t, p.Running())
	assert.Equal(t, ProgressClose, p.HandleKeyPress(tea.KeyMsg{Type: tea.KeyEsc}))
	assert.Equal(t, ProgressNone, p.HandleKeyPress(tea.KeyMsg{Type: tea.KeyEnter}), "enter on the log does nothing")
	assert.Contains(t, p.Render(), "finished")
}

func TestProgressFollowsTail(t *testing.T) {
	p := newTestProgress()
	var lines []string
	for i := 0; i < 40; i++ {
		lines = append(lines, fmt.Sprintf("line %d", i))
	}
	p.SetJob("generate", lines, true)
	assert.True(t, p.viewport.AtBottom())
	assert.Contains(t, p.Render(), "line 39")

	p.HandleKeyPress(tea.KeyMsg{Type: tea.KeyUp})
	assert.False(t, p.follow)
	p.SetJob("generate", append(lines, "line 40"), true)
	assert.False(t, p.viewport.AtBottom())
}

func TestProgressEmpty(t *testing.T) {
	p := newTestProgress()
	out := p.Render()
	assert.Contains(t, out, "no job")
	assert.Contains(t, out, "no output yet")
}
