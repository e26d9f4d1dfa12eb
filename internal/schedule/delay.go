package schedule

import (
	"sync"
	"time"
)

// Delay runs a callback once after a fixed delay. Scheduling again before
// the callback ran replaces the pending call.
//
// All methods are safe for concurrent use.
type Delay struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	seq     uint64 // invalidates callbacks of replaced timers
	pending bool
}

// NewDelay creates a Delay.
func NewDelay(delay time.Duration) *Delay {
	return &Delay{delay: delay}
}

// Schedule arranges for fn to run after the delay, replacing any pending call.
func (d *Delay) Schedule(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	seq := d.seq
	d.pending = true

	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if !d.pending || d.seq != seq {
			d.mu.Unlock()
			return
		}
		d.pending = false
		d.mu.Unlock()
		fn()
	})
}

// Cancel drops the pending call, if any.
func (d *Delay) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
	d.pending = false
}

// Pending reports whether a call is scheduled.
func (d *Delay) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}
