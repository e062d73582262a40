// Package batch launches the external workers of a run and reports their
// progress as row events.
package batch

import "sync"

// Trigger starts one run. It fires at most once until it is re-armed.
type Trigger struct {
	mu    sync.Mutex
	fired bool
	ch    chan struct{}
}

func NewTrigger() *Trigger {
	return &Trigger{ch: make(chan struct{}, 1)}
}

// Fire requests a run. It returns false when this run was already fired.
func (t *Trigger) Fire() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.fired {
		return false
	}
	t.fired = true
	t.ch <- struct{}{}
	return true
}

// Fired reports whether the current run was requested.
func (t *Trigger) Fired() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fired
}

// Rearm allows the next Fire.
func (t *Trigger) Rearm() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.fired = false
}

// C delivers one value per successful Fire.
func (t *Trigger) C() <-chan struct{} {
	return t.ch
}
