package app

import (
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kastheco/orchestra/config/auditlog"
	"github.com/kastheco/orchestra/config/planstore"
	"github.com/kastheco/orchestra/internal/batch"
	"github.com/kastheco/orchestra/internal/jobs"
	"github.com/kastheco/orchestra/log"
	"github.com/kastheco/orchestra/session"
	"github.com/kastheco/orchestra/session/tmux"
	"github.com/kastheco/orchestra/ui/overlay"
)

var drainLog = log.NewEvery(30 * time.Second)

func (m *home) jobDeps() jobs.Deps {
	return jobs.Deps{Worker: m.worker}
}

// startJob runs fn in slot. A busy slot refuses the job with a toast and
// an audit entry; nothing is spawned.
func (m *home) startJob(slot *jobs.Slot, kind jobs.Kind, fn jobs.Func) (tea.Cmd, error) {
	if m.worker == nil {
		return nil, errors.New("no worker configured")
	}
	h, err := slot.Start(m.ctx, kind, fn)
	if err != nil {
		m.emit(auditlog.EventJobRejected, err.Error(), auditlog.WithJob("", kind.String()), auditlog.WithLevel("warning"))
		m.toastManager.Error(err.Error())
		m.setError(err.Error())
		return m.toastTickCmd(), err
	}
	m.emit(auditlog.EventJobStarted, kind.String()+" started", auditlog.WithJob(h.ID, kind.String()))
	m.jobToasts[h.ID] = m.toastManager.Loading(kind.String() + "…")
	m.setStatus(kind.String() + " started")
	m.refreshEvents()
	return m.toastTickCmd(), nil
}

// drainJobs polls every slot without blocking.
func (m *home) drainJobs() tea.Cmd {
	var cmds []tea.Cmd
	applied := 0
	for _, slot := range []*jobs.Slot{m.planSlot, m.chatSlot, m.watchSlot} {
		h := slot.Handle()
		applied += slot.Poll(func(ev jobs.Event) {
			if ev.Final {
				cmds = append(cmds, m.finishJob(h, ev))
			}
		})
	}
	if applied > 0 {
		if drainLog.ShouldLog() {
			log.InfoLog.Printf("drained %d job events", applied)
		}
		m.refreshEvents()
	}
	m.syncProgress()
	return tea.Batch(cmds...)
}

// finishJob applies a terminal event on the UI goroutine.
func (m *home) finishJob(h *jobs.Handle, ev jobs.Event) tea.Cmd {
	id := ""
	if h != nil {
		id = h.ID
	}
	toastID := m.jobToasts[id]
	delete(m.jobToasts, id)

	if ev.Err != nil {
		log.ErrorLog.Printf("%s failed: %v", ev.Kind, ev.Err)
		m.emit(auditlog.EventJobFailed, ev.Err.Error(), auditlog.WithJob(id, ev.Kind.String()), auditlog.WithLevel("error"))
		msg := fmt.Sprintf("%s failed: %v", ev.Kind, ev.Err)
		m.resolveToast(toastID, overlay.ToastError, msg)
		m.setError(msg)
		if ev.Kind == jobs.PlanConversationTurn && m.chatOverlay != nil {
			m.chatOverlay.FailTurn(ev.Err)
		}
		if ev.Kind == jobs.PlanFileWatch {
			m.closeSplit()
		}
		return m.toastTickCmd()
	}

	msg, err := m.applyOutcome(ev.Kind, ev.Outcome)
	if err != nil {
		m.resolveToast(toastID, overlay.ToastError, err.Error())
		m.emit(auditlog.EventJobFailed, err.Error(), auditlog.WithJob(id, ev.Kind.String()), auditlog.WithLevel("error"))
		return m.handleError(err)
	}
	m.emit(auditlog.EventJobSucceeded, msg, auditlog.WithJob(id, ev.Kind.String()))
	m.resolveToast(toastID, overlay.ToastSuccess, msg)
	m.setStatus(msg)
	return m.toastTickCmd()
}

func (m *home) resolveToast(id string, typ overlay.ToastType, msg string) {
	if id == "" {
		m.toastManager.Error(msg)
		return
	}
	m.toastManager.Resolve(id, typ, msg)
}

// applyOutcome mutates the documents with a successful job's result and
// saves them. It returns the status line.
func (m *home) applyOutcome(kind jobs.Kind, out jobs.Outcome) (string, error) {
	switch kind {
	case jobs.EnrichAndGenerateChecklist:
		if out.Plan != nil {
			m.rebasePlan(m.generateBase, *out.Plan)
			if err := m.savePlan(); err != nil {
				return "", err
			}
		}
		m.checklist.Append(out.Checklist)
		m.todoSel = clampIndex(m.todoSel, len(m.checklist.Tasks))
		if err := m.saveChecklist(); err != nil {
			return "", err
		}
		return fmt.Sprintf("generated %d checklist items", len(out.Checklist)), nil

	case jobs.FillPlanTasks:
		m.plan.Tasks = append(m.plan.Tasks, out.Tasks...)
		m.taskSpec.clamp(len(m.plan.Tasks))
		if err := m.savePlan(); err != nil {
			return "", err
		}
		return fmt.Sprintf("added %d tasks", len(out.Tasks)), nil

	case jobs.PlanConversationTurn:
		if m.chatOverlay != nil {
			m.chatOverlay.AddReply(out.Reply)
		}
		return "reply received", nil

	case jobs.PlanFileWatch:
		m.closeSplit()
		if out.Plan == nil {
			return "", errors.New("draft produced no plan")
		}
		m.rebasePlan(m.watchBase, *out.Plan)
		if err := m.savePlan(); err != nil {
			return "", err
		}
		return fmt.Sprintf("plan updated from draft (%d tasks)", len(m.plan.Tasks)), nil
	}
	return "", fmt.Errorf("unknown job kind %s", kind)
}

// rebasePlan adopts next, computed by a job from base, keeping task edits
// made in the console while the job ran.
func (m *home) rebasePlan(base []planstore.TaskItem, next planstore.PlanDocument) {
	next.Tasks = planstore.Rebase(base, m.plan.Tasks, next.Tasks)
	m.plan = next
	m.taskSpec.clamp(len(m.plan.Tasks))
}

// progressSlot is the slot the progress overlay shows: the shared job,
// unless only the draft watch has anything to show.
func (m *home) progressSlot() *jobs.Slot {
	if m.planSlot.Running() || m.planSlot.Log().Len() > 0 {
		return m.planSlot
	}
	if m.watchSlot.Running() || m.watchSlot.Log().Len() > 0 {
		return m.watchSlot
	}
	return m.planSlot
}

func (m *home) syncProgress() {
	if m.progressOverlay == nil {
		return
	}
	slot := m.progressSlot()
	title := "no job"
	if h := slot.Handle(); h != nil {
		title = h.Kind.String()
	} else if last, ok := slot.Last(); ok {
		title = last.Kind.String()
	}
	m.progressOverlay.SetJob(title, slot.Log().Lines(), slot.Running())
}

// startGenerate starts enriching the plan and generating checklist items
// from a copy of the plan, so form edits do not race the job.
func (m *home) startGenerate() tea.Cmd {
	plan := m.planCopy()
	cmd, err := m.startJob(m.planSlot, jobs.EnrichAndGenerateChecklist, jobs.EnrichAndGenerate(m.jobDeps(), plan))
	if err == nil {
		m.generateBase = plan.Clone().Tasks
	}
	return cmd
}

// startFill starts filling the parsed drafts.
func (m *home) startFill(drafts []planstore.TaskItem) (tea.Cmd, error) {
	return m.startJob(m.planSlot, jobs.FillPlanTasks, jobs.FillTasks(m.jobDeps(), m.planCopy(), drafts))
}

func (m *home) startChatTurn(history []session.Turn, message string) tea.Cmd {
	fn := jobs.ConversationTurn(m.jobDeps(), m.planCopy(), history, message, m.project.DraftPath())
	cmd, err := m.startJob(m.chatSlot, jobs.PlanConversationTurn, fn)
	if err != nil {
		m.chatOverlay.FailTurn(err)
	}
	return cmd
}

func (m *home) planCopy() planstore.PlanDocument {
	return m.plan.Clone()
}

// openPlanner opens an interactive worker in a tmux split and watches the
// draft it is told to write.
func (m *home) openPlanner() tea.Cmd {
	if !tmux.InTmux() {
		return m.handleError(tmux.ErrNotInTmux)
	}
	if m.watchSlot.Running() {
		return m.handleError(fmt.Errorf("%s: %w", m.watchSlot.Name(), jobs.ErrSlotBusy))
	}

	draft := m.project.DraftPath()
	watch := jobs.Watch{
		Path:     draft,
		Baseline: jobs.Baseline(draft),
		Interval: m.cfg.Console.WatchInterval(),
		Timeout:  m.cfg.Console.WatchTimeout(),
	}
	ai := m.cfg.ResolveAI("")
	split := tmux.NewSplit(m.cmdExec, ai.Model, ai.Auto, session.PlannerPrompt(m.project.SpecPath(), draft))
	split.WorkDir = m.project.Root
	if err := split.Open(); err != nil {
		return m.handleError(err)
	}
	m.split = split
	m.emit(auditlog.EventPlannerOpened, "planner opened in tmux")

	cmd, err := m.startJob(m.watchSlot, jobs.PlanFileWatch, jobs.WatchDraft(watch))
	if err != nil {
		m.closeSplit()
		return cmd
	}
	m.watchBase = m.planCopy().Tasks
	return cmd
}

func (m *home) closeSplit() {
	if m.split != nil {
		m.split.Close()
		m.split = nil
	}
}

// startRun fires the batch trigger for the current checklist.
func (m *home) startRun() tea.Cmd {
	if m.trigger == nil {
		m.setError("runs are disabled in this console")
		return nil
	}
	if err := m.rows.CanRun(len(m.checklist.Tasks)); err != nil {
		m.setError(err.Error())
		return nil
	}
	var requests []string
	if m.requests != nil {
		loaded, err := m.requests()
		if err != nil {
			return m.handleError(err)
		}
		requests = loaded
	}
	if !m.trigger.Fire() {
		m.setError("run already triggered")
		return nil
	}
	m.rows.Reset(requests)
	m.workSel = 0
	m.setStatus(fmt.Sprintf("run started with %d requests", len(requests)))
	return nil
}

// applyRowEvent moves a row forward, or ends the run on Finish.
func (m *home) applyRowEvent(ev batch.RowEvent) tea.Cmd {
	m.rows.Apply(ev)
	if ev.Kind != batch.Finish {
		return nil
	}
	m.refreshEvents()
	if ev.Err != nil {
		return m.handleError(fmt.Errorf("run failed: %w", ev.Err))
	}
	m.setStatus("run finished")
	m.toastManager.Success(fmt.Sprintf("run finished: %d/%d done", m.rows.Done(), m.rows.Len()))
	if m.cfg.Console.ExitOnFinish {
		_, cmd := m.handleQuit()
		return cmd
	}
	return m.toastTickCmd()
}
