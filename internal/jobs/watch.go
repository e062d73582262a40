package jobs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/kastheco/orchestra/log"
)

const (
	DefaultWatchInterval = 500 * time.Millisecond
	DefaultWatchTimeout  = 15 * time.Minute
)

// Watch waits for a file to be rewritten.
type Watch struct {
	Path string
	// Baseline is the mtime the file must exceed. Capture it with
	// Baseline before the writer may start.
	Baseline time.Time
	Interval time.Duration
	Timeout  time.Duration
}

// Baseline returns the current mtime of path, or the zero time when it does
// not exist.
func Baseline(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

// changed returns the file contents once it is non-empty and newer than the
// baseline.
func (w Watch) changed() ([]byte, bool) {
	info, err := os.Stat(w.Path)
	if err != nil || info.Size() == 0 || !info.ModTime().After(w.Baseline) {
		return nil, false
	}
	data, err := os.ReadFile(w.Path)
	if err != nil || len(data) == 0 {
		return nil, false
	}
	return data, true
}

// Wait polls the file's mtime every Interval until it changes, and returns
// the new contents, or ErrTimeout once Timeout elapses. Events from an
// fsnotify watcher on the parent directory only trigger an early poll.
func (w Watch) Wait(ctx context.Context, report Report) ([]byte, error) {
	interval := w.Interval
	if interval <= 0 {
		interval = DefaultWatchInterval
	}
	timeout := w.Timeout
	if timeout <= 0 {
		timeout = DefaultWatchTimeout
	}

	var (
		hint  <-chan fsnotify.Event
		hintE <-chan error
	)
	if watcher, err := fsnotify.NewWatcher(); err != nil {
		log.WarningLog.Printf("fsnotify unavailable, polling only: %v", err)
	} else {
		defer watcher.Close()
		if err := watcher.Add(filepath.Dir(w.Path)); err != nil {
			log.WarningLog.Printf("failed to watch %s, polling only: %v", filepath.Dir(w.Path), err)
		} else {
			hint, hintE = watcher.Events, watcher.Errors
		}
	}

	if report != nil {
		report(fmt.Sprintf("watching %s (timeout %s)", filepath.Base(w.Path), timeout))
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if data, ok := w.changed(); ok {
			return data, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			return nil, ErrTimeout
		case <-ticker.C:
		case ev, ok := <-hint:
			if !ok {
				hint = nil
				continue
			}
			if filepath.Base(ev.Name) != filepath.Base(w.Path) {
				continue
			}
		case err, ok := <-hintE:
			if !ok {
				hintE = nil
				continue
			}
			log.WarningLog.Printf("fsnotify error on %s: %v", w.Path, err)
		}
	}
}
