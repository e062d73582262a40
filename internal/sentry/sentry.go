package sentry

import (
	"runtime"
	"time"

	gosentry "github.com/getsentry/sentry-go"
)

// Options configures crash reporting. An empty DSN disables reporting even
// when Enabled is set.
type Options struct {
	DSN         string
	Environment string
	Enabled     bool
}

// enabled tracks whether sentry was successfully initialized.
var enabled bool

// Init initializes the Sentry SDK. When reporting is disabled every other
// function in this package is a no-op.
func Init(version string, opts Options) error {
	if !opts.Enabled || opts.DSN == "" {
		enabled = false
		return nil
	}

	err := gosentry.Init(gosentry.ClientOptions{
		Dsn:              opts.DSN,
		Environment:      opts.Environment,
		Release:          "orchestra@" + version,
		AttachStacktrace: true,
		SampleRate:       1.0,
	})
	if err != nil {
		return err
	}

	gosentry.ConfigureScope(func(scope *gosentry.Scope) {
		scope.SetTag("os", runtime.GOOS)
		scope.SetTag("arch", runtime.GOARCH)
		scope.SetTag("go_version", runtime.Version())
		scope.SetTag("version", version)
	})

	enabled = true
	return nil
}

// IsEnabled returns whether sentry is active.
func IsEnabled() bool {
	return enabled
}

// Flush waits up to 2 seconds for buffered events to be sent.
func Flush() {
	if !enabled {
		return
	}
	gosentry.Flush(2 * time.Second)
}

// RecoverPanic captures a panic to Sentry, flushes, then re-panics.
// Usage: defer sentry.RecoverPanic()
func RecoverPanic() {
	if !enabled {
		return
	}
	if err := recover(); err != nil {
		gosentry.CurrentHub().Recover(err)
		gosentry.Flush(2 * time.Second)
		panic(err)
	}
}

// CaptureRecovered reports a value already taken from recover() by a
// goroutine that keeps running.
func CaptureRecovered(v any) {
	if !enabled || v == nil {
		return
	}
	gosentry.CurrentHub().Recover(v)
}

// SetContext adds project-level context to the current scope.
func SetContext(project, model string, autoApprove bool) {
	if !enabled {
		return
	}
	gosentry.ConfigureScope(func(scope *gosentry.Scope) {
		scope.SetTag("project", project)
		scope.SetTag("worker_model", model)
		scope.SetTag("auto_approve", boolStr(autoApprove))
		scope.SetContext("app", map[string]interface{}{
			"project":      project,
			"worker_model": model,
			"auto_approve": autoApprove,
		})
	})
}

func boolStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
