package location

import (
	"sync"
	"time"
)

// DefaultWait is the debounce window for ZIP keystrokes
const DefaultWait = 500 * time.Millisecond

// Task is a scheduled call that has not run yet
type Task struct {
	timer *time.Timer
}

// Cancel stops the task. It reports false if the task already ran or was cancelled.
func (t *Task) Cancel() bool {
	if t == nil {
		return false
	}
	return t.timer.Stop()
}

// Debouncer runs only the last function scheduled within its wait window
type Debouncer struct {
	wait    time.Duration
	mu      sync.Mutex
	pending *Task
	stopped bool
}

// NewDebouncer returns a debouncer with the given window
func NewDebouncer(wait time.Duration) *Debouncer {
	return &Debouncer{wait: wait}
}

// Schedule cancels the pending task, if any, and schedules fn after the wait window
func (d *Debouncer) Schedule(fn func()) *Task {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return nil
	}
	d.pending.Cancel()
	d.pending = &Task{timer: time.AfterFunc(d.wait, fn)}
	return d.pending
}

// Cancel drops the pending task without scheduling a new one
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending.Cancel()
	d.pending = nil
}

// Stop cancels the pending task and refuses new ones
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending.Cancel()
	d.pending = nil
	d.stopped = true
}
