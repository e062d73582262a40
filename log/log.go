// Package log holds the process-wide leveled loggers. Everything the console
// prints goes to a file because stdout belongs to the terminal UI.
package log

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/kastheco/orchestra/internal/sentry"
)

var (
	WarningLog *log.Logger
	InfoLog    *log.Logger
	ErrorLog   *log.Logger
)

var (
	globalLogFile *os.File
	logFileName   = filepath.Join(os.TempDir(), "orchestra.log")
)

const flags = log.Ldate | log.Ltime | log.Lshortfile

func init() {
	// Usable before Initialize, e.g. from tests of packages that log.
	InfoLog = log.New(io.Discard, "INFO:", flags)
	WarningLog = log.New(io.Discard, "WARNING:", flags)
	ErrorLog = log.New(io.Discard, "ERROR:", flags)
}

// Initialize opens the log file and wires the three loggers to it. daemon
// prefixes every line so background processes can be told apart. When
// teeSentry is set, warnings and errors are also forwarded to sentry.
func Initialize(daemon bool, teeSentry ...bool) {
	f, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		panic(fmt.Sprintf("could not open log file: %s", err))
	}
	globalLogFile = f

	tee := len(teeSentry) > 0 && teeSentry[0]
	out := func(level sentry.Level) io.Writer {
		if tee {
			return sentry.NewWriter(f, level)
		}
		return f
	}

	fmtPrefix := func(prefix string) string {
		if daemon {
			return fmt.Sprintf("[DAEMON] %s", prefix)
		}
		return prefix
	}

	InfoLog = log.New(out(sentry.LevelInfo), fmtPrefix("INFO:"), flags)
	WarningLog = log.New(out(sentry.LevelWarning), fmtPrefix("WARNING:"), flags)
	ErrorLog = log.New(out(sentry.LevelError), fmtPrefix("ERROR:"), flags)
}

// Close flushes the log file and tells the operator where it lives.
func Close() {
	if globalLogFile == nil {
		return
	}
	_ = globalLogFile.Close()
	globalLogFile = nil
	fmt.Println("wrote logs to " + logFileName)
}

// Path returns the log file location.
func Path() string {
	return logFileName
}

// Every rate limits a log line that would otherwise fire on every tick.
type Every struct {
	mu      sync.Mutex
	timeout time.Duration
	last    time.Time
}

func NewEvery(timeout time.Duration) *Every {
	return &Every{timeout: timeout}
}

// ShouldLog reports whether enough time has passed since the last line.
func (e *Every) ShouldLog() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := time.Now()
	if e.last.IsZero() || now.Sub(e.last) >= e.timeout {
		e.last = now
		return true
	}
	return false
}
