package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kastheco/orchestra/config/planstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPrompt(t *testing.T) {
	got := BuildPrompt("http", "http://127.0.0.1:7878/v1/results", "do it")
	assert.Equal(t, "Server protocol is http. Callback URL is http://127.0.0.1:7878/v1/results. "+
		"Do not perform network calls yourself; only return the requested formatted output. Task: do it", got)
}

func TestTaskMessage(t *testing.T) {
	msg := TaskMessage(planstore.TaskItem{
		Name:  "add item",
		Type:  "action",
		Scope: []string{"cart.go"},
		Rule:  []string{"validate"},
		Step:  []string{"parse", "store"},
	})
	assert.Equal(t, "  - name: add item\n    type: action\n    scope:\n    - cart.go\n    rule:\n    - validate\n"+
		"    step:\n    - parse\n    - store", msg)
}

func TestWithPostpix(t *testing.T) {
	t.Setenv(PostpixPathEnv, "")
	got := WithPostpix("BASE", "  - name: x")

	assert.True(t, len(got) > len("BASE"))
	assert.Contains(t, got, "BASE\n\n")
	assert.Contains(t, got, "  - name: x")
	assert.NotContains(t, got, TodoBody)
	assert.Contains(t, got, "SUMMARY:")
}

func TestPostpixPrompt_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "postpix.txt")
	require.NoError(t, os.WriteFile(path, []byte("CUSTOM FORMAT"), 0o644))

	t.Setenv(PostpixPathEnv, path)
	assert.Equal(t, "CUSTOM FORMAT", PostpixPrompt())

	t.Setenv(PostpixPathEnv, filepath.Join(t.TempDir(), "missing.txt"))
	assert.Contains(t, PostpixPrompt(), "RESULT:")
}

func TestChatPrompt(t *testing.T) {
	got := ChatPrompt("name: shop\n", []Turn{{Role: "operator", Text: "hi"}, {Role: "worker", Text: "hello"}},
		"split task a", "/tmp/plan.draft.yaml")

	assert.Contains(t, got, "/tmp/plan.draft.yaml")
	assert.Contains(t, got, "operator: hi\nworker: hello\n")
	assert.Contains(t, got, "operator: split task a")
}

func TestMakeTodosPrompt(t *testing.T) {
	got := MakeTodosPrompt("name: shop\n", "cart, user", "tasks: []\n")
	assert.Contains(t, got, "allowed_domains: [cart, user]")
	assert.Contains(t, got, "spec.yaml:\nname: shop")
}
