// Package frame schedules work to run once per paint frame.
//
// The resize queue never applies operations synchronously. It asks a
// Scheduler for the next frame and drains one batch when the callback
// fires. Manual is driven explicitly and is what tests and the terminal
// editor use; Timer fires on a fixed interval.
package frame

import (
	"sync"
	"time"
)

// DefaultInterval is roughly one frame at 60 Hz.
const DefaultInterval = 16 * time.Millisecond

// Scheduler runs callbacks on the next frame.
type Scheduler interface {
	// RequestFrame schedules fn for the next frame. Requests made while a
	// frame is already pending are all run on that frame, in order.
	RequestFrame(fn func())
}

var (
	_ Scheduler = (*Manual)(nil)
	_ Scheduler = (*Timer)(nil)
)

// =============================================================================
// Manual
// =============================================================================

// Manual queues callbacks until Flush is called.
type Manual struct {
	mu      sync.Mutex
	pending []func()
	frames  int
}

// NewManual returns an empty manual scheduler.
func NewManual() *Manual { return &Manual{} }

func (m *Manual) RequestFrame(fn func()) {
	m.mu.Lock()
	m.pending = append(m.pending, fn)
	m.mu.Unlock()
}

// Flush runs one frame: every callback requested before the call.
// Callbacks requested while flushing wait for the next Flush. It reports
// whether anything ran.
func (m *Manual) Flush() bool {
	m.mu.Lock()
	batch := m.pending
	m.pending = nil
	if len(batch) > 0 {
		m.frames++
	}
	m.mu.Unlock()

	for _, fn := range batch {
		fn()
	}
	return len(batch) > 0
}

// FlushAll runs frames until nothing is pending or limit frames have run,
// and returns the number of frames run.
func (m *Manual) FlushAll(limit int) int {
	n := 0
	for n < limit && m.Flush() {
		n++
	}
	return n
}

// Pending returns the number of callbacks waiting for the next frame.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// Frames returns the number of non-empty frames flushed so far.
func (m *Manual) Frames() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frames
}

// =============================================================================
// Timer
// =============================================================================

// Timer runs callbacks on a timer goroutine after Interval. All callbacks
// requested before the timer fires share one frame.
type Timer struct {
	interval time.Duration

	mu      sync.Mutex
	pending []func()
	timer   *time.Timer
	stopped bool
}

// NewTimer returns a timer scheduler. A non-positive interval selects
// DefaultInterval.
func NewTimer(interval time.Duration) *Timer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Timer{interval: interval}
}

// Interval returns the frame interval.
func (t *Timer) Interval() time.Duration { return t.interval }

func (t *Timer) RequestFrame(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	t.pending = append(t.pending, fn)
	if t.timer == nil {
		t.timer = time.AfterFunc(t.interval, t.fire)
	}
}

func (t *Timer) fire() {
	t.mu.Lock()
	batch := t.pending
	t.pending = nil
	t.timer = nil
	t.mu.Unlock()

	for _, fn := range batch {
		fn()
	}
}

// Stop cancels the pending frame and drops later requests.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	t.pending = nil
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
