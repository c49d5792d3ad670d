// Package clock abstracts timers so the scrolling engine can be driven by
// wall time, by a host event loop, or by tests.
package clock

import (
	"sort"
	"sync"
	"time"
)

// Timer is a pending callback armed on a Clock.
type Timer interface {
	// Stop prevents the timer from firing. It reports whether the call
	// stopped the timer, false if it had already fired or been stopped.
	Stop() bool
}

// Clock arms callbacks after a delay.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Timer
}

// Real is the wall clock. Callbacks run on their own goroutine, so callers
// must serialize access to shared state themselves.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

func (Real) AfterFunc(d time.Duration, fn func()) Timer { return time.AfterFunc(d, fn) }

// Manual is a controllable clock for tests. Time only moves on Advance.
type Manual struct {
	mu     sync.Mutex
	now    time.Time
	seq    uint64
	timers []*manualTimer
}

type manualTimer struct {
	m       *Manual
	due     time.Time
	seq     uint64
	fn      func()
	stopped bool
	fired   bool
}

// NewManual creates a manual clock starting at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) AfterFunc(d time.Duration, fn func()) Timer {
	if d < 0 {
		d = 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTimer{m: m, due: m.now.Add(d), seq: m.seq, fn: fn}
	m.timers = append(m.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves time forward by d, firing every timer that falls due in
// order. Timers armed by fired callbacks run too when they are due within
// the window.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		m.mu.Lock()
		next := m.nextDueLocked(target)
		if next == nil {
			m.now = target
			m.compactLocked()
			m.mu.Unlock()
			return
		}
		next.fired = true
		if next.due.After(m.now) {
			m.now = next.due
		}
		m.mu.Unlock()

		next.fn()
	}
}

// Pending returns the number of live timers.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.timers {
		if !t.fired && !t.stopped {
			n++
		}
	}
	return n
}

func (m *Manual) nextDueLocked(target time.Time) *manualTimer {
	live := make([]*manualTimer, 0, len(m.timers))
	for _, t := range m.timers {
		if t.fired || t.stopped || t.due.After(target) {
			continue
		}
		live = append(live, t)
	}
	if len(live) == 0 {
		return nil
	}
	sort.Slice(live, func(i, j int) bool {
		if live[i].due.Equal(live[j].due) {
			return live[i].seq < live[j].seq
		}
		return live[i].due.Before(live[j].due)
	})
	return live[0]
}

func (m *Manual) compactLocked() {
	kept := m.timers[:0]
	for _, t := range m.timers {
		if !t.fired && !t.stopped {
			kept = append(kept, t)
		}
	}
	m.timers = kept
}
