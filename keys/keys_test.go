package keys

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGlobalKeyStringsMap_ActionKeys(t *testing.T) {
	want := map[string]KeyName{
		"i": KeyRequest,
		"g": KeyGenerate,
		"c": KeyChat,
		"p": KeyProgress,
		"o": KeyPlanner,
		"y": KeyCopy,
		"r": KeyReload,
		"q": KeyQuit,
	}
	for k, name := range want {
		got, ok := GlobalKeyStringsMap[k]
		assert.True(t, ok, "%q must be in GlobalKeyStringsMap", k)
		assert.Equal(t, name, got, k)
	}
}

func TestEveryMappedKeyHasABinding(t *testing.T) {
	for k, name := range GlobalKeyStringsMap {
		b, ok := GlobalkeyBindings[name]
		if !ok {
			t.Fatalf("no binding for %q", k)
		}
		assert.Contains(t, b.Keys(), k)
	}
}

func TestStatusHintsHaveHelp(t *testing.T) {
	for _, name := range StatusHints {
		assert.NotEmpty(t, GlobalkeyBindings[name].Help().Desc)
	}
	if got := GlobalkeyBindings[KeyEnter].Help().Desc; got != "select" {
		t.Fatalf("KeyEnter help desc = %q, want %q", got, "select")
	}
}
