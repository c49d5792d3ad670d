// Package throttle limits how often a callback runs.
//
// The default policy is throttle-with-trailing: the first call in a window
// runs immediately and calls made within the interval collapse into a single
// trailing run, interval after the last run, carrying the latest arguments.
package throttle

import (
	"sync"
	"time"

	"seamless/internal/clock"
)

// Options selects the limiting policy.
type Options struct {
	// NoTrailing drops calls made within the interval instead of deferring
	// the latest one.
	NoTrailing bool
	// NoLeading defers the first call of a window instead of running it.
	NoLeading bool
	// DebounceMode runs the first call of a window and suppresses the rest
	// until the window closes, interval after it opened.
	DebounceMode bool
}

// CancelOptions controls Cancel.
type CancelOptions struct {
	// UpcomingOnly clears the pending run but keeps the limiter usable.
	UpcomingOnly bool
}

// Limited wraps a callback with a rate limit.
type Limited[T any] struct {
	mu       sync.Mutex
	interval time.Duration
	fn       func(T)
	opts     Options
	clock    clock.Clock

	timer     clock.Timer
	lastExec  time.Time
	executed  bool
	windowOn  bool
	cancelled bool
}

// Limit wraps fn so it runs at most once per interval. A nil clock uses the
// wall clock.
func Limit[T any](interval time.Duration, fn func(T), opts Options, c clock.Clock) *Limited[T] {
	if c == nil {
		c = clock.Real{}
	}
	return &Limited[T]{interval: interval, fn: fn, opts: opts, clock: c}
}

// Call forwards arg to the callback subject to the policy.
func (l *Limited[T]) Call(arg T) {
	l.mu.Lock()
	if l.cancelled {
		l.mu.Unlock()
		return
	}
	if l.opts.DebounceMode {
		l.callDebounced(arg)
		return
	}

	now := l.clock.Now()
	l.stopTimerLocked()

	if !l.executed || now.Sub(l.lastExec) > l.interval {
		if l.opts.NoLeading {
			// The window starts without running; only a trailing run can
			// fire for it.
			l.lastExec = now
			l.executed = true
			if !l.opts.NoTrailing {
				l.armLocked(l.interval, arg)
			}
			l.mu.Unlock()
			return
		}
		l.lastExec = now
		l.executed = true
		l.mu.Unlock()
		l.fn(arg)
		return
	}

	if !l.opts.NoTrailing {
		l.armLocked(l.interval-now.Sub(l.lastExec), arg)
	}
	l.mu.Unlock()
}

// callDebounced runs with l.mu held and releases it.
func (l *Limited[T]) callDebounced(arg T) {
	if l.windowOn {
		l.mu.Unlock()
		return
	}
	l.windowOn = true
	l.timer = l.clock.AfterFunc(l.interval, func() {
		l.mu.Lock()
		l.windowOn = false
		l.timer = nil
		l.mu.Unlock()
	})
	run := !l.opts.NoLeading
	if run {
		l.lastExec = l.clock.Now()
		l.executed = true
	}
	l.mu.Unlock()
	if run {
		l.fn(arg)
	}
}

// Cancel clears any pending run. Unless opts.UpcomingOnly is set, the
// limiter is disabled for good.
func (l *Limited[T]) Cancel(opts CancelOptions) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stopTimerLocked()
	l.windowOn = false
	if !opts.UpcomingOnly {
		l.cancelled = true
	}
}

func (l *Limited[T]) armLocked(d time.Duration, arg T) {
	var t clock.Timer
	t = l.clock.AfterFunc(d, func() {
		l.mu.Lock()
		if l.cancelled || l.timer != t {
			l.mu.Unlock()
			return
		}
		l.timer = nil
		l.lastExec = l.clock.Now()
		l.executed = true
		l.mu.Unlock()
		l.fn(arg)
	})
	l.timer = t
}

func (l *Limited[T]) stopTimerLocked() {
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
}
