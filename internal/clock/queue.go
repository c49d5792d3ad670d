package clock

import (
	"sort"
	"time"
)

// Pending is a timer armed on a Queue that the host has not scheduled yet.
type Pending struct {
	ID    uint64
	Delay time.Duration
}

// Queue is a Clock whose timers are fired by the host event loop rather than
// by goroutines. The host drains newly armed timers, waits out their delay
// in its own way, and calls Fire with the timer id. Stopped timers are
// dropped on Fire.
//
// This is not thread safe; it belongs to the goroutine running the host loop.
type Queue struct {
	now   func() time.Time
	next  uint64
	armed map[uint64]*queuedTimer
	fresh []Pending
}

type queuedTimer struct {
	q  *Queue
	id uint64
	fn func()
}

// NewQueue builds a queue reading time from now, or time.Now when nil.
func NewQueue(now func() time.Time) *Queue {
	if now == nil {
		now = time.Now
	}
	return &Queue{now: now, armed: make(map[uint64]*queuedTimer)}
}

func (q *Queue) Now() time.Time { return q.now() }

func (q *Queue) AfterFunc(d time.Duration, fn func()) Timer {
	if d < 0 {
		d = 0
	}
	q.next++
	t := &queuedTimer{q: q, id: q.next, fn: fn}
	q.armed[t.id] = t
	q.fresh = append(q.fresh, Pending{ID: t.id, Delay: d})
	return t
}

func (t *queuedTimer) Stop() bool {
	if _, ok := t.q.armed[t.id]; !ok {
		return false
	}
	delete(t.q.armed, t.id)
	return true
}

// Drain returns the timers armed since the last Drain.
func (q *Queue) Drain() []Pending {
	if len(q.fresh) == 0 {
		return nil
	}
	out := q.fresh
	q.fresh = nil
	return out
}

// Fire runs the timer with the given id if it is still armed.
func (q *Queue) Fire(id uint64) bool {
	t, ok := q.armed[id]
	if !ok {
		return false
	}
	delete(q.armed, id)
	t.fn()
	return true
}

// Len returns the number of armed timers.
func (q *Queue) Len() int { return len(q.armed) }

// Armed returns the ids of armed timers in arming order.
func (q *Queue) Armed() []uint64 {
	ids := make([]uint64, 0, len(q.armed))
	for id := range q.armed {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
