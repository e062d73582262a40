package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kastheco/orchestra/config"
	"github.com/kastheco/orchestra/config/auditlog"
	"github.com/kastheco/orchestra/config/planstore"
	"github.com/kastheco/orchestra/internal/batch"
	"github.com/kastheco/orchestra/session"
	"github.com/kastheco/orchestra/ui"
	"github.com/stretchr/testify/require"
)

// scriptedWorker answers every call with reply(prompt). When gate is set,
// calls block until it is closed.
type scriptedWorker struct {
	mu    sync.Mutex
	calls []string
	gate  chan struct{}
	reply func(prompt string) string
}

func (w *scriptedWorker) Exec(ctx context.Context, call session.Call) (session.Result, error) {
	w.mu.Lock()
	w.calls = append(w.calls, call.Prompt)
	gate := w.gate
	w.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return session.Result{}, ctx.Err()
		}
	}
	out := ""
	if w.reply != nil {
		out = w.reply(call.Prompt)
	}
	if call.OutPath != "" {
		if err := os.WriteFile(call.OutPath, []byte(out), 0o644); err != nil {
			return session.Result{}, err
		}
	}
	return session.Result{Stdout: out}, nil
}

type homeOption func(*Options)

func withAudit(t *testing.T) homeOption {
	return func(o *Options) {
		audit, err := auditlog.NewSQLiteLogger(filepath.Join(t.TempDir(), "audit.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = audit.Close() })
		o.Audit = audit
	}
}

func withWorker(w session.Worker) homeOption {
	return func(o *Options) { o.Worker = w }
}

func withRun(trigger *batch.Trigger, requests ...string) homeOption {
	return func(o *Options) {
		o.Trigger = trigger
		o.Requests = func() ([]string, error) { return requests, nil }
	}
}

// newTestHome builds a console over a temp project with the given plan
// tasks and checklist items.
func newTestHome(t *testing.T, tasks, checklist []planstore.TaskItem, opts ...homeOption) *home {
	t.Helper()
	project := planstore.NewProject(t.TempDir(), "demo")
	require.NoError(t, os.MkdirAll(project.Dir(), 0o755))
	require.NoError(t, planstore.SavePlan(project.SpecPath(),
		planstore.PlanDocument{Name: "demo", Tasks: tasks}))
	require.NoError(t, planstore.SaveChecklist(project.ChecklistPath(),
		planstore.ChecklistDocument{Tasks: checklist}))

	o := Options{
		Config:  config.DefaultConfig(),
		Project: project,
		Theme:   ui.DefaultTheme(),
		Worker:  &scriptedWorker{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	m := newHome(ctx, o)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m
}

func press(m *home, keys ...string) tea.Cmd {
	var last tea.Cmd
	for _, k := range keys {
		_, last = m.Update(keyMsg(k))
	}
	return last
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+u":
		return tea.KeyMsg{Type: tea.KeyCtrlU}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func typeText(m *home, text string) {
	for _, line := range strings.SplitAfter(text, "\n") {
		body := strings.TrimSuffix(line, "\n")
		if body != "" {
			m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(body)})
		}
		if strings.HasSuffix(line, "\n") {
			m.Update(keyMsg("enter"))
		}
	}
}

// waitJobs drains the slots until every job finished.
func waitJobs(t *testing.T, m *home) {
	t.Helper()
	require.Eventually(t, func() bool {
		m.drainJobs()
		return !m.planSlot.Running() && !m.chatSlot.Running() && !m.watchSlot.Running()
	}, 5*time.Second, 10*time.Millisecond)
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func items(names ...string) []planstore.TaskItem {
	out := make([]planstore.TaskItem, len(names))
	for i, n := range names {
		out[i] = planstore.TaskItem{Name: n, Type: "action", Scope: []string{"core"}}
	}
	return out
}
