package sentry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInit_Disabled(t *testing.T) {
	err := Init("1.0.0", Options{Enabled: false, DSN: "https://key@example.invalid/1"})
	assert.NoError(t, err)
	assert.False(t, IsEnabled())
	// Flush and the capture helpers should be safe no-ops
	Flush()
	CaptureRecovered("boom")
	SetContext("test", "codex", false)
}

func TestInit_EmptyDSN(t *testing.T) {
	err := Init("1.0.0", Options{Enabled: true})
	assert.NoError(t, err)
	assert.False(t, IsEnabled())
	Flush()
}

func TestRecoverPanic_DisabledDoesNotSwallow(t *testing.T) {
	enabled = false
	assert.Panics(t, func() {
		defer RecoverPanic()
		panic("boom")
	})
}

func TestIsEnabled(t *testing.T) {
	enabled = false
	assert.False(t, IsEnabled())
	enabled = true
	assert.True(t, IsEnabled())
	enabled = false // reset
}
