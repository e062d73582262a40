package app

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kastheco/orchestra/cmd"
	"github.com/kastheco/orchestra/config"
	"github.com/kastheco/orchestra/config/auditlog"
	"github.com/kastheco/orchestra/config/planstore"
	"github.com/kastheco/orchestra/internal/batch"
	"github.com/kastheco/orchestra/internal/jobs"
	"github.com/kastheco/orchestra/session"
	"github.com/kastheco/orchestra/session/tmux"
	"github.com/kastheco/orchestra/ui"
	"github.com/kastheco/orchestra/ui/overlay"
)

// Options wire the console to the rest of the process.
type Options struct {
	Config  *config.Config
	Project planstore.Project
	Theme   ui.Theme
	Worker  session.Worker
	CmdExec cmd.Executor
	Audit   auditlog.Logger

	// Trigger starts a batch run; Rows carries its progress back. Both are
	// optional, without them the Working pane cannot run.
	Trigger *batch.Trigger
	Rows    <-chan batch.RowEvent
	// Requests returns the requests of the next run, in row order.
	Requests batch.Loader
}

// Run is the main entrypoint into the console.
func Run(ctx context.Context, opts Options) error {
	restore := opts.Theme.ApplyBackground()
	defer restore()

	p := tea.NewProgram(newHome(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

type state int

const (
	stateDefault state = iota
	// stateRequest shows the free-text request input.
	stateRequest
	// stateProgress shows the log of the shared background job.
	stateProgress
	// stateChat shows the plan conversation.
	stateChat
)

type home struct {
	ctx context.Context

	// -- Configuration --

	cfg     *config.Config
	project planstore.Project
	theme   ui.Theme
	worker  session.Worker
	cmdExec cmd.Executor
	audit   auditlog.Logger

	trigger   *batch.Trigger
	rowEvents <-chan batch.RowEvent
	requests  batch.Loader

	// -- Documents --

	plan      planstore.PlanDocument
	checklist planstore.ChecklistDocument

	// -- State --

	state    state
	focus    Focus
	taskSpec *taskSpec
	todoSel  int
	workSel  int
	rows     WorkingRows
	quitting bool

	// status is the message shown in the status bar.
	status    string
	statusErr bool

	// planSlot is shared by checklist generation and plan filling; chat
	// turns and the draft watch have their own slots.
	planSlot  *jobs.Slot
	chatSlot  *jobs.Slot
	watchSlot *jobs.Slot
	// generateBase and watchBase are the plan tasks a running generate or
	// draft watch started from. Outcomes are rebased on them so edits made
	// meanwhile survive.
	generateBase []planstore.TaskItem
	watchBase    []planstore.TaskItem
	// jobToasts maps a running job id to its loading toast.
	jobToasts map[string]string
	// split is the tmux planner whose draft is being watched.
	split *tmux.Split

	events []auditlog.Event

	// -- UI Components --

	spinner         spinner.Model
	toastManager    *overlay.ToastManager
	statusBar       *ui.StatusBar
	requestOverlay  *overlay.RequestInputOverlay
	progressOverlay *overlay.JobProgressOverlay
	chatOverlay     *overlay.PlanChatOverlay

	width  int
	height int
}

func newHome(ctx context.Context, opts Options) *home {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	audit := opts.Audit
	if audit == nil {
		audit = auditlog.NopLogger()
	}
	m := &home{
		ctx:       ctx,
		cfg:       cfg,
		project:   opts.Project,
		theme:     opts.Theme,
		worker:    opts.Worker,
		cmdExec:   opts.CmdExec,
		audit:     audit,
		trigger:   opts.Trigger,
		rowEvents: opts.Rows,
		requests:  opts.Requests,
		taskSpec:  newTaskSpec(),
		planSlot:  jobs.NewSlot("plan"),
		chatSlot:  jobs.NewSlot("chat"),
		watchSlot: jobs.NewSlot("watch"),
		jobToasts: make(map[string]string),
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		statusBar: ui.NewStatusBar(),
	}
	m.toastManager = overlay.NewToastManager(&m.spinner)
	m.loadDocuments()
	m.refreshEvents()
	return m
}

// tickMsg drains the job slots.
type tickMsg struct{}

// rowEventMsg carries one update of the batch run.
type rowEventMsg batch.RowEvent

func (m *home) tickCmd() tea.Cmd {
	return tea.Tick(m.cfg.Console.Tick(), func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// listenForRowEvents blocks on the row channel and is re-armed after every
// event.
func listenForRowEvents(ch <-chan batch.RowEvent) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return rowEventMsg(ev)
	}
}

func (m *home) toastTickCmd() tea.Cmd {
	return func() tea.Msg {
		time.Sleep(50 * time.Millisecond)
		return overlay.ToastTickMsg{}
	}
}

func (m *home) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.tickCmd(),
		listenForRowEvents(m.rowEvents),
		m.toastTickCmd(),
	)
}

func (m *home) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		cmd := m.drainJobs()
		return m, tea.Batch(cmd, m.tickCmd())
	case rowEventMsg:
		cmd := m.applyRowEvent(batch.RowEvent(msg))
		return m, tea.Batch(cmd, listenForRowEvents(m.rowEvents))
	case overlay.ToastTickMsg:
		m.toastManager.Tick()
		if m.toastManager.HasActiveToasts() {
			return m, m.toastTickCmd()
		}
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.updateHandleWindowSizeEvent(msg)
		return m, nil
	case error:
		return m, m.handleError(msg)
	}
	return m, nil
}

// updateHandleWindowSizeEvent sizes the overlays and the status bar. The
// panes are sized in View.
func (m *home) updateHandleWindowSizeEvent(msg tea.WindowSizeMsg) {
	m.width = msg.Width
	m.height = msg.Height
	m.toastManager.SetSize(msg.Width, msg.Height)
	m.statusBar.SetSize(msg.Width)

	w, h := overlaySize(msg.Width, msg.Height)
	if m.requestOverlay != nil {
		m.requestOverlay.SetSize(w, h/2)
	}
	if m.progressOverlay != nil {
		m.progressOverlay.SetSize(w, h)
	}
	if m.chatOverlay != nil {
		m.chatOverlay.SetSize(w, h)
	}
}

func overlaySize(width, height int) (int, int) {
	return int(float32(width) * 0.7), int(float32(height) * 0.7)
}

func (m *home) handleQuit() (tea.Model, tea.Cmd) {
	m.quitting = true
	if m.split != nil {
		m.split.Close()
	}
	return m, tea.Quit
}

// footerHeight is the status bar plus the key hint line.
const footerHeight = 2

func (m *home) View() string {
	if m.quitting || m.width == 0 || m.height == 0 {
		return ""
	}

	contentH := max(m.height-footerHeight, 2)
	leftW := m.width / 2
	rightW := m.width - leftW
	topH := contentH / 2
	bottomH := contentH - topH

	left := lipgloss.JoinVertical(lipgloss.Left,
		m.theme.RenderProject(m.projectData(), leftW, topH, m.focus == FocusProject),
		m.theme.RenderTaskSpec(m.taskSpec.view(m.plan.Tasks), leftW, bottomH, m.focus == FocusTaskSpec),
	)
	right := lipgloss.JoinVertical(lipgloss.Left,
		m.theme.RenderTodos(m.checklist.Tasks, m.todoSel, rightW, topH, m.focus == FocusTodos),
		m.theme.RenderWorking(m.rows.Rows(), m.workSel, rightW, bottomH, m.focus == FocusWorking, m.workingFooter()),
	)

	m.statusBar.SetData(m.statusBarData())
	mainView := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, left, right),
		m.statusBar.String(),
		ui.KeyHints(m.width),
	)

	var result string
	switch {
	case m.state == stateRequest && m.requestOverlay != nil:
		result = overlay.PlaceOverlay(0, 0, m.requestOverlay.Render(), mainView, true)
	case m.state == stateProgress && m.progressOverlay != nil:
		result = overlay.PlaceOverlay(0, 0, m.progressOverlay.Render(), mainView, true)
	case m.state == stateChat && m.chatOverlay != nil:
		result = overlay.PlaceOverlay(0, 0, m.chatOverlay.Render(), mainView, true)
	default:
		result = mainView
	}

	if toastView := m.toastManager.View(); toastView != "" {
		x, y := m.toastManager.GetPosition()
		result = overlay.PlaceOverlay(x, y, toastView, result, false)
	}

	return ui.FillBackground(result, m.height)
}
