package jobs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kastheco/orchestra/config/planstore"
	"github.com/kastheco/orchestra/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedWorker answers prompts with reply and writes the answer to the
// call's output file like the real worker does.
type scriptedWorker struct {
	reply func(call session.Call) (string, error)

	mu      sync.Mutex
	prompts []string
}

func (w *scriptedWorker) Exec(ctx context.Context, call session.Call) (session.Result, error) {
	w.mu.Lock()
	w.prompts = append(w.prompts, call.Prompt)
	w.mu.Unlock()

	out, err := w.reply(call)
	if err != nil {
		return session.Result{}, err
	}
	if call.OutPath != "" {
		if err := os.WriteFile(call.OutPath, []byte(out), 0o644); err != nil {
			return session.Result{}, err
		}
	}
	return session.Result{Stdout: out}, nil
}

func collect() (Report, func() []string) {
	var (
		mu    sync.Mutex
		lines []string
	)
	return func(line string) {
			mu.Lock()
			defer mu.Unlock()
			lines = append(lines, line)
		}, func() []string {
			mu.Lock()
			defer mu.Unlock()
			return append([]string(nil), lines...)
		}
}

func testPlan() planstore.PlanDocument {
	return planstore.PlanDocument{
		Name:     "shop",
		Features: planstore.Features{Domain: []string{"cart", "user"}},
		Tasks: []planstore.TaskItem{
			{Name: "add item", Type: "action", Step: []string{"parse"}},
			{Name: "login", Type: "action"},
		},
	}
}

func TestEnrichAndGenerate(t *testing.T) {
	w := &scriptedWorker{reply: func(call session.Call) (string, error) {
		if strings.HasPrefix(call.Prompt, "Complete the plan") {
			// Reordered on purpose: matching is by name.
			return "```yaml\nname: shop\ntasks:\n  - name: login\n    domain: [user]\n  - name: add item\n    domain: [cart]\n    step: [ignored]\n```", nil
		}
		return fmt.Sprintf("tasks:\n  - name: item-%d-a\n  - name: item-%d-b\n", call.WorkerID, call.WorkerID), nil
	}}
	report, lines := collect()

	out, err := EnrichAndGenerate(Deps{Worker: w, TempDir: t.TempDir()}, testPlan())(context.Background(), report)
	require.NoError(t, err)

	require.NotNil(t, out.Plan)
	assert.Equal(t, []string{"cart"}, out.Plan.Tasks[0].Domain)
	assert.Equal(t, []string{"parse"}, out.Plan.Tasks[0].Step, "operator fields are kept")
	assert.Equal(t, []string{"user"}, out.Plan.Tasks[1].Domain)

	var names []string
	for _, item := range out.Checklist {
		names = append(names, item.Name)
	}
	assert.Equal(t, []string{"item-0-a", "item-0-b", "item-1-a", "item-1-b"}, names)
	assert.Contains(t, lines(), "generated 4 checklist items")
}

func TestEnrichAndGenerate_WorkerFailure(t *testing.T) {
	dir := t.TempDir()
	w := &scriptedWorker{reply: func(call session.Call) (string, error) {
		if strings.HasPrefix(call.Prompt, "Complete the plan") {
			return "tasks: []", nil
		}
		if call.WorkerID == 1 {
			return "", errors.New("spawn failed")
		}
		return "tasks:\n  - name: a\n", nil
	}}
	report, _ := collect()

	_, err := EnrichAndGenerate(Deps{Worker: w, TempDir: dir}, testPlan())(context.Background(), report)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "spawn failed")

	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestEnrichAndGenerate_EmptyPlan(t *testing.T) {
	report, _ := collect()
	_, err := EnrichAndGenerate(Deps{Worker: &scriptedWorker{}}, planstore.PlanDocument{})(context.Background(), report)
	assert.Error(t, err)
}

func TestFillTasks(t *testing.T) {
	w := &scriptedWorker{reply: func(call session.Call) (string, error) {
		return "tasks:\n  - name: alpha\n    type: calc\n    domain: [cart]\n    step: [changed]\n", nil
	}}
	drafts := []planstore.TaskItem{
		{Name: "alpha", Type: "action", Step: []string{"step1"}},
		{Name: "beta", Type: "action"},
	}
	report, _ := collect()

	out, err := FillTasks(Deps{Worker: w}, testPlan(), drafts)(context.Background(), report)
	require.NoError(t, err)
	require.Len(t, out.Tasks, 2)
	assert.Equal(t, "action", out.Tasks[0].Type)
	assert.Equal(t, []string{"cart"}, out.Tasks[0].Domain)
	assert.Equal(t, []string{"step1"}, out.Tasks[0].Step)
	assert.Equal(t, planstore.TaskItem{Name: "beta", Type: "action"}, out.Tasks[1], "a dropped draft is kept as typed")
}

func TestConversationTurn(t *testing.T) {
	w := &scriptedWorker{reply: func(call session.Call) (string, error) {
		return "  Sure, split it.\n", nil
	}}
	report, _ := collect()

	out, err := ConversationTurn(Deps{Worker: w}, testPlan(), nil, "split login", "/tmp/d.yaml")(context.Background(), report)
	require.NoError(t, err)
	assert.Equal(t, "Sure, split it.", out.Reply)
	require.Len(t, w.prompts, 1)
	assert.Contains(t, w.prompts[0], "/tmp/d.yaml")
}

func TestWatchDraft(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.draft.yaml")
	w := Watch{Path: path, Interval: 10 * time.Millisecond, Timeout: 2 * time.Second}

	go func() {
		time.Sleep(20 * time.Millisecond)
		_ = os.WriteFile(path, []byte("name: shop\ntasks:\n  - name: a\n"), 0o644)
	}()
	report, _ := collect()

	out, err := WatchDraft(w)(context.Background(), report)
	require.NoError(t, err)
	require.NotNil(t, out.Plan)
	assert.Equal(t, "shop", out.Plan.Name)
}

func TestWatchDraft_RejectsEmptyPlan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.draft.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: shop\ntasks: []\n"), 0o644))
	report, _ := collect()

	_, err := WatchDraft(Watch{Path: path, Interval: 10 * time.Millisecond, Timeout: time.Second})(context.Background(), report)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no tasks")
}
