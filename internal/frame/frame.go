// Package frame schedules callbacks for the next repaint.
//
// A host that knows when it repaints provides a Native source. Without one,
// Resolve falls back to a timer at roughly 60Hz. Callers only see Handles, so
// cancelling works the same for both.
package frame

import (
	"time"

	"seamless/internal/clock"
)

// FallbackInterval is the timer delay used when no native source exists.
const FallbackInterval = 16700 * time.Microsecond

// Handle identifies a scheduled frame callback. The zero Handle is never
// issued.
type Handle uint64

// Scheduler runs callbacks before the next repaint.
type Scheduler interface {
	Request(fn func()) Handle
	Cancel(h Handle)
}

// Native is a host's own "before next repaint" primitive. RequestFrame must
// return non-zero ids.
type Native interface {
	RequestFrame(fn func()) uint64
	CancelFrame(id uint64)
}

// Resolve picks the scheduler once at startup: native when available,
// otherwise the timer fallback on c.
func Resolve(native Native, c clock.Clock) Scheduler {
	if native != nil {
		return nativeScheduler{native: native}
	}
	if c == nil {
		c = clock.Real{}
	}
	return &timerScheduler{clock: c, timers: make(map[Handle]clock.Timer)}
}

type nativeScheduler struct {
	native Native
}

func (s nativeScheduler) Request(fn func()) Handle {
	return Handle(s.native.RequestFrame(fn))
}

func (s nativeScheduler) Cancel(h Handle) {
	if h == 0 {
		return
	}
	s.native.CancelFrame(uint64(h))
}

type timerScheduler struct {
	clock  clock.Clock
	next   Handle
	timers map[Handle]clock.Timer
}

func (s *timerScheduler) Request(fn func()) Handle {
	s.next++
	h := s.next
	s.timers[h] = s.clock.AfterFunc(FallbackInterval, func() {
		if _, ok := s.timers[h]; !ok {
			return
		}
		delete(s.timers, h)
		fn()
	})
	return h
}

func (s *timerScheduler) Cancel(h Handle) {
	t, ok := s.timers[h]
	if !ok {
		return
	}
	t.Stop()
	delete(s.timers, h)
}
