package app

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/kastheco/orchestra/config/planparser"
	"github.com/kastheco/orchestra/keys"
	"github.com/kastheco/orchestra/ui/overlay"
)

const (
	statusParseFailed  = "parse failed"
	statusQuitDisabled = "a job is running, quit is disabled while its progress is shown"
	statusChatPending  = "a chat turn is running, wait for the reply"
)

func (m *home) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		if reason, blocked := m.quitBlocked(); blocked {
			m.setError(reason)
			return m, nil
		}
		return m.handleQuit()
	}

	switch m.state {
	case stateRequest:
		return m.handleRequestKey(msg)
	case stateProgress:
		return m.handleProgressKey(msg)
	case stateChat:
		return m.handleChatKey(msg)
	}

	if m.focus == FocusTaskSpec {
		res := m.taskSpec.handleKey(msg, &m.plan)
		if res.status != "" {
			m.setStatus(res.status)
		}
		if res.changed {
			if err := m.savePlan(); err != nil {
				return m, m.handleError(err)
			}
			m.refreshEvents()
		}
		if res.consumed {
			return m, nil
		}
	}

	name, ok := keys.GlobalKeyStringsMap[msg.String()]
	if !ok {
		return m, nil
	}

	switch name {
	case keys.KeyUp:
		if !m.moveSelection(true) {
			m.move(dirUp)
		}
	case keys.KeyDown:
		if !m.moveSelection(false) {
			m.move(dirDown)
		}
	case keys.KeyLeft:
		m.move(dirLeft)
	case keys.KeyRight:
		m.move(dirRight)
	case keys.KeyEnter:
		if m.focus == FocusWorking {
			return m, m.startRun()
		}
	case keys.KeyQuit:
		if m.taskSpec.mode == modeForm {
			return m, nil
		}
		return m.handleQuit()
	case keys.KeyRequest:
		m.openRequest()
	case keys.KeyGenerate:
		return m, m.startGenerate()
	case keys.KeyChat:
		m.openChat()
	case keys.KeyProgress:
		m.openProgress()
	case keys.KeyPlanner:
		if m.focus != FocusProject {
			m.setStatus("focus the project pane to open the planner")
			return m, nil
		}
		return m, m.openPlanner()
	case keys.KeyCopy:
		return m, m.copyResult()
	case keys.KeyReload:
		m.loadDocuments()
		if !m.statusErr {
			m.setStatus("documents reloaded")
		}
		m.refreshEvents()
	}
	return m, nil
}

// move changes focus. Opening and closing overlays never does.
func (m *home) move(dir direction) {
	m.focus = nextFocus(m.focus, dir)
}

// moveSelection moves the Todos or Working selection. It reports false at
// the edge of the list so the key moves focus instead.
func (m *home) moveSelection(up bool) bool {
	var sel *int
	var n int
	switch m.focus {
	case FocusTodos:
		sel, n = &m.todoSel, len(m.checklist.Tasks)
	case FocusWorking:
		sel, n = &m.workSel, m.rows.Len()
	default:
		return false
	}
	if up && *sel > 0 {
		*sel--
		return true
	}
	if !up && *sel < n-1 {
		*sel++
		return true
	}
	return false
}

// quitBlocked reports whether the open overlay shows a running job, which
// disables quitting, and the status line to show instead.
func (m *home) quitBlocked() (string, bool) {
	switch m.state {
	case stateProgress:
		if m.progressOverlay != nil && m.progressOverlay.Running() {
			return statusQuitDisabled, true
		}
	case stateChat:
		if m.chatSlot.Running() {
			return statusChatPending, true
		}
	}
	return "", false
}

func (m *home) openRequest() {
	m.requestOverlay = overlay.NewRequestInputOverlay("Add tasks")
	w, h := overlaySize(m.width, m.height)
	m.requestOverlay.SetSize(w, h/2)
	m.state = stateRequest
}

func (m *home) openProgress() {
	if m.progressOverlay == nil {
		m.progressOverlay = overlay.NewJobProgressOverlay(&m.spinner)
	}
	m.progressOverlay.SetSize(overlaySize(m.width, m.height))
	m.syncProgress()
	m.state = stateProgress
}

// openChat reuses the overlay so the transcript survives closing it.
func (m *home) openChat() {
	if m.chatOverlay == nil {
		m.chatOverlay = overlay.NewPlanChatOverlay(&m.spinner)
	}
	m.chatOverlay.SetSize(overlaySize(m.width, m.height))
	m.state = stateChat
}

func (m *home) closeOverlay() {
	m.state = stateDefault
}

func (m *home) handleRequestKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.requestOverlay.HandleKeyPress(msg) {
	case overlay.RequestCancel:
		m.requestOverlay = nil
		m.closeOverlay()
		m.setStatus(statusInputCanceled)
	case overlay.RequestSubmit:
		drafts := planparser.ParseTasks(m.requestOverlay.Value())
		if len(drafts) == 0 {
			m.requestOverlay.SetStatus(statusParseFailed)
			m.setError(statusParseFailed)
			return m, nil
		}
		cmd, err := m.startFill(drafts)
		if err != nil {
			// The text stays so it can be submitted once the slot is free.
			m.requestOverlay.SetStatus(err.Error())
			return m, cmd
		}
		m.requestOverlay = nil
		m.closeOverlay()
		return m, cmd
	}
	return m, nil
}

func (m *home) handleProgressKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.progressOverlay.HandleKeyPress(msg) {
	case overlay.ProgressClose:
		m.closeOverlay()
	case overlay.ProgressCloseRefused:
		m.setError(statusQuitDisabled)
	}
	return m, nil
}

func (m *home) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.chatOverlay.HandleKeyPress(msg) {
	case overlay.ChatClose:
		m.closeOverlay()
	case overlay.ChatCloseRefused:
		m.setError(statusChatPending)
	case overlay.ChatBusy:
		m.setError("wait for the reply before sending again")
	case overlay.ChatSend:
		history := m.chatOverlay.History()
		// The message just sent is the last turn; the prompt adds it itself.
		history = history[:len(history)-1]
		return m, m.startChatTurn(history, m.chatOverlay.Message())
	}
	return m, nil
}

var errNoResult = errors.New("no result to copy")

func (m *home) copyResult() tea.Cmd {
	if m.focus != FocusWorking {
		m.setStatus("focus the working pane to copy a result")
		return nil
	}
	result := m.rows.Result(m.workSel)
	if result == "" {
		return m.handleError(errNoResult)
	}
	if err := clipboard.WriteAll(result); err != nil {
		return m.handleError(fmt.Errorf("failed to copy result: %w", err))
	}
	m.setStatus(fmt.Sprintf("copied result of row %d", m.workSel+1))
	return nil
}
