package sentry

import (
	"bytes"
	"testing"

	gosentry "github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
)

func TestWriter_PassthroughToInner(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, LevelError)

	msg := []byte("ERROR: job failed\n")
	n, err := w.Write(msg)

	assert.NoError(t, err)
	assert.Equal(t, len(msg), n)
	assert.Equal(t, string(msg), buf.String())
}

func TestWriter_DisabledPassthrough(t *testing.T) {
	enabled = false
	var buf bytes.Buffer
	w := NewWriter(&buf, LevelWarning)

	_, err := w.Write([]byte("first\n"))
	assert.NoError(t, err)
	_, err = w.Write([]byte("second\n"))
	assert.NoError(t, err)
	assert.Equal(t, "first\nsecond\n", buf.String())
}

func TestLevel_SentryLevel(t *testing.T) {
	assert.Equal(t, gosentry.LevelError, LevelError.sentryLevel())
	assert.Equal(t, gosentry.LevelWarning, LevelWarning.sentryLevel())
	assert.Equal(t, gosentry.LevelInfo, LevelInfo.sentryLevel())
}
