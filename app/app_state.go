package app

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kastheco/orchestra/config/auditlog"
	"github.com/kastheco/orchestra/config/planstore"
	"github.com/kastheco/orchestra/log"
	"github.com/kastheco/orchestra/ui"
)

// loadDocuments reads the plan and the checklist. Load problems only reach
// the status line and the audit feed.
func (m *home) loadDocuments() {
	plan, planStatus := planstore.LoadPlan(m.project.SpecPath())
	checklist, checklistStatus := planstore.LoadChecklist(m.project.ChecklistPath())
	m.plan = plan
	m.checklist = checklist
	m.taskSpec.clamp(len(m.plan.Tasks))
	m.todoSel = clampIndex(m.todoSel, len(m.checklist.Tasks))

	m.setStatus(planStatus.Message + "; " + checklistStatus.Message)
	for _, status := range []planstore.LoadStatus{planStatus, checklistStatus} {
		if !status.Failed {
			continue
		}
		m.setError(status.Message)
		m.emit(auditlog.EventDocumentLoadFailed, status.Message, auditlog.WithLevel("warning"))
	}
}

func clampIndex(i, n int) int {
	if n == 0 {
		return 0
	}
	return min(max(i, 0), n-1)
}

func (m *home) savePlan() error {
	if err := planstore.SavePlan(m.project.SpecPath(), m.plan); err != nil {
		return err
	}
	m.emit(auditlog.EventDocumentSaved, fmt.Sprintf("saved spec.yaml (%d tasks)", len(m.plan.Tasks)))
	return nil
}

func (m *home) saveChecklist() error {
	if err := planstore.SaveChecklist(m.project.ChecklistPath(), m.checklist); err != nil {
		return err
	}
	m.emit(auditlog.EventDocumentSaved, fmt.Sprintf("saved todos.yaml (%d items)", len(m.checklist.Tasks)))
	return nil
}

func (m *home) emit(kind auditlog.EventKind, msg string, opts ...auditlog.EventOption) {
	m.audit.Emit(auditlog.NewEvent(kind, m.project.Name, msg, opts...))
}

// refreshEvents reloads the audit feed of the Project pane.
func (m *home) refreshEvents() {
	events, err := m.audit.Query(auditlog.QueryFilter{Project: m.project.Name, Limit: ui.MaxProjectEvents})
	if err != nil {
		log.WarningLog.Printf("failed to query audit events: %v", err)
		return
	}
	m.events = events
}

func (m *home) setStatus(msg string) {
	m.status = msg
	m.statusErr = false
}

func (m *home) setError(msg string) {
	m.status = msg
	m.statusErr = true
}

// handleError logs err and shows it in the status bar and as a toast.
func (m *home) handleError(err error) tea.Cmd {
	log.ErrorLog.Printf("%v", err)
	m.setError(err.Error())
	m.toastManager.Error(err.Error())
	return m.toastTickCmd()
}

func (m *home) runningJobs() []string {
	var names []string
	if m.planSlot.Running() {
		names = append(names, m.jobLabel())
	}
	if m.chatSlot.Running() {
		names = append(names, "chat turn")
	}
	if m.watchSlot.Running() {
		names = append(names, "watching draft")
	}
	return names
}

// jobLabel names the job in the shared slot.
func (m *home) jobLabel() string {
	if h := m.planSlot.Handle(); h != nil {
		return h.Kind.String()
	}
	return ""
}

func (m *home) projectData() ui.ProjectData {
	return ui.ProjectData{
		Name:          m.project.Name,
		Root:          m.project.Root,
		SpecPath:      m.project.SpecPath(),
		ChecklistPath: m.project.ChecklistPath(),
		Tasks:         len(m.plan.Tasks),
		Checklist:     len(m.checklist.Tasks),
		Domains:       len(m.plan.AllowedDomains()),
		Jobs:          m.runningJobs(),
		Events:        m.events,
		Now:           time.Now(),
	}
}

func (m *home) statusBarData() ui.StatusBarData {
	return ui.StatusBarData{
		Project: m.project.Name,
		Focus:   m.focus.String(),
		Job:     m.jobLabel(),
		Message: m.status,
		IsError: m.statusErr,
	}
}

func (m *home) workingFooter() string {
	switch {
	case m.trigger == nil:
		return "runs are disabled in this console"
	case !m.rows.Idle():
		return fmt.Sprintf("running %d/%d", m.rows.Done(), m.rows.Len())
	case len(m.checklist.Tasks) == 0:
		return "add todos to enable runs"
	default:
		return "enter run · y copy result"
	}
}
