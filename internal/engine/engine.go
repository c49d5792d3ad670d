// Package engine drives the seamless scroll animation.
//
// The engine owns the motion state and advances it one frame at a time
// through a frame.Scheduler. When the offset passes half of the measured
// extent it snaps back and counts a loop; because the content is rendered
// twice (or more), the snap lands on an identical picture and is invisible.
//
// Every method must be called from the goroutine that runs the host loop,
// and frame and timer callbacks must be delivered on that same goroutine.
// The engine holds no locks.
package engine

import (
	"log/slog"
	"math"

	"seamless/internal/clock"
	"seamless/internal/frame"
	"seamless/internal/layout"
	"seamless/internal/throttle"
)

// State is a coarse view of what the engine is doing.
type State int

const (
	// Idle means nothing is scheduled: too few items, not measured yet, or
	// switched off before starting.
	Idle State = iota
	Running
	HoverPaused
	LimitReached
	WheelStepping
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case HoverPaused:
		return "paused"
	case LimitReached:
		return "limit reached"
	case WheelStepping:
		return "wheel"
	default:
		return "idle"
	}
}

// Motion is a snapshot of the live motion state.
type Motion struct {
	X, Y   float64
	Loops  int
	Paused bool
}

// Offset returns the offset along the axis d moves on.
func (m Motion) Offset(d Direction) float64 {
	if d.Horizontal() {
		return m.X
	}
	return m.Y
}

// Hooks receive the engine's events. Any of them may be nil.
type Hooks struct {
	// Stop fires when motion halts on hover, when scrolling is disabled, or
	// when the loop limit is reached.
	Stop func(loops int)
	// Count fires every time a wraparound completes.
	Count func(loops int)
	// Move fires after every position update.
	Move func(m Motion)
}

// MeasureFunc probes the rendered content. It reports false while the
// content cannot be measured.
type MeasureFunc func(cfg Config) (layout.Metrics, bool)

// Options are the engine's collaborators.
type Options struct {
	Frames  frame.Scheduler
	Clock   clock.Clock
	Measure MeasureFunc
	Hooks   Hooks
	Logger  *slog.Logger
	// Items is the initial content list length.
	Items int
}

type halt int

const (
	haltNone halt = iota
	haltLimit
	haltOther
)

// Engine is the scroll animation state machine.
type Engine struct {
	cfg     Config
	frames  frame.Scheduler
	clock   clock.Clock
	measure MeasureFunc
	hooks   Hooks
	log     *slog.Logger

	active   bool
	items    int
	metrics  layout.Metrics
	measured bool
	mounted  bool
	gone     bool

	x, y     float64
	loops    int
	paused   bool
	stepping bool
	halted   halt

	frame  frame.Handle
	wait   clock.Timer
	delay  clock.Timer
	settle clock.Timer

	wheel *throttle.Limited[float64]
}

// New creates an engine. Nothing moves until Mount.
func New(cfg Config, opts Options) *Engine {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	c := opts.Clock
	if c == nil {
		c = clock.Real{}
	}
	frames := opts.Frames
	if frames == nil {
		frames = frame.Resolve(nil, c)
	}
	e := &Engine{
		frames:  frames,
		clock:   c,
		measure: opts.Measure,
		hooks:   opts.Hooks,
		log:     log,
		items:   opts.Items,
	}
	e.cfg = cfg.normalize(log)
	e.active = e.cfg.AutoStart
	e.wheel = throttle.Limit(WheelInterval, e.wheelStep, throttle.Options{}, c)
	return e
}

// Config returns the current configuration snapshot.
func (e *Engine) Config() Config { return e.cfg }

// Motion returns the current motion state.
func (e *Engine) Motion() Motion {
	return Motion{X: e.x, Y: e.y, Loops: e.loops, Paused: e.paused}
}

// Metrics returns the last measurement.
func (e *Engine) Metrics() layout.Metrics { return e.metrics }

// Active reports the external active toggle.
func (e *Engine) Active() bool { return e.active }

// Scrolling reports whether the content list is long enough to scroll.
func (e *Engine) Scrolling() bool { return e.items >= e.cfg.MinItems }

// State reports what the engine is doing.
func (e *Engine) State() State {
	switch {
	case e.gone || !e.Scrolling():
		return Idle
	case e.paused && e.stepping:
		return WheelStepping
	case e.paused:
		return HoverPaused
	case e.frame != 0 || e.wait != nil:
		return Running
	case e.halted == haltLimit:
		return LimitReached
	default:
		return Idle
	}
}

// Advance moves the offset one step in dir. Discrete steps come from the
// wheel and never schedule the next frame.
func (e *Engine) Advance(dir Direction, step float64, discrete bool) {
	if e.gone || !e.measured {
		return
	}

	w := e.metrics.Half(true)
	h := e.metrics.Half(false)
	switch dir {
	case Up:
		if math.Abs(e.y) >= h {
			e.y = 0
			e.wrapped()
		}
		e.y -= step
	case Down:
		if e.y >= 0 {
			e.y = -h
			e.wrapped()
		}
		e.y += step
	case Left:
		if math.Abs(e.x) >= w {
			e.x = 0
			e.wrapped()
		}
		e.x -= step
	case Right:
		if e.x >= 0 {
			e.x = -w
			e.wrapped()
		}
		e.x += step
	}
	if e.hooks.Move != nil {
		e.hooks.Move(e.Motion())
	}

	if discrete {
		return
	}

	stop, offset := e.cfg.singleStop(e.metrics.FontScale), e.y
	if e.cfg.Direction.Horizontal() {
		offset = e.x
	}
	if stop > 0 && math.Mod(math.Abs(offset), stop) < step {
		e.stopWait()
		e.wait = e.clock.AfterFunc(e.cfg.SingleWait, func() {
			e.wait = nil
			e.Move()
		})
		return
	}
	e.Move()
}

func (e *Engine) wrapped() {
	e.loops++
	if e.hooks.Count != nil {
		e.hooks.Count(e.loops)
	}
}

// Move evaluates whether motion continues and schedules the next frame.
func (e *Engine) Move() {
	e.cancelFrame()
	if e.gone {
		return
	}
	limit := e.cfg.Limit != Infinite && e.loops == e.cfg.Limit
	if e.paused || !e.Scrolling() || limit {
		loops := e.loops
		e.loops = 0
		e.halted = haltOther
		if limit {
			e.halted = haltLimit
		}
		e.log.Debug("scroll stopped", "loops", loops, "paused", e.paused, "limit", limit)
		if e.hooks.Stop != nil {
			e.hooks.Stop(loops)
		}
		return
	}
	e.halted = haltNone
	e.stepping = false
	e.frame = e.frames.Request(func() {
		e.frame = 0
		e.Advance(e.cfg.Direction, e.cfg.Step, false)
	})
}

// InitMove re-measures the content and starts motion when allowed.
func (e *Engine) InitMove() {
	if e.gone {
		return
	}
	if e.items > ItemWarnThreshold {
		e.log.Warn("long content list may degrade scrolling performance", "items", e.items)
	}
	if e.measure != nil {
		e.metrics, e.measured = e.measure(e.cfg)
	}
	if !e.measured {
		e.log.Debug("content not measurable yet")
	} else if stop := e.cfg.singleStop(e.metrics.FontScale); stop > 0 && !divides(e.cfg.Step, stop) {
		e.log.Warn("step does not divide the single-stop distance; stepped scrolling may overshoot the stop",
			"step", e.cfg.Step, "single_stop", stop)
	}

	if e.Scrolling() && e.active && e.measured {
		e.Move()
		return
	}
	e.cancelFrame()
	e.x, e.y = 0, 0
}

// StartMove clears the hover pause and resumes motion.
func (e *Engine) StartMove() {
	e.paused = false
	e.Move()
}

// StopMove pauses motion and drops pending frames and alignment waits.
func (e *Engine) StopMove() {
	e.paused = true
	e.stopWait()
	e.cancelFrame()
}

// Reset re-measures and restarts motion from a clean state.
func (e *Engine) Reset() {
	e.cancelFrame()
	e.stopWait()
	e.paused = false
	e.stepping = false
	e.InitMove()
}

// ContentChanged records the new content length. When watching, a full
// Reset follows once the host has rendered the new content.
func (e *Engine) ContentChanged(items int) {
	e.items = items
	if !e.cfg.Watch || e.gone {
		return
	}
	if e.settle != nil {
		e.settle.Stop()
	}
	e.settle = e.clock.AfterFunc(0, func() {
		e.settle = nil
		e.Reset()
	})
}

// SetActive flips the external active toggle.
func (e *Engine) SetActive(active bool) {
	e.active = active
	if active {
		e.StartMove()
		return
	}
	e.StopMove()
}

// SetLimit changes the loop limit. A non-zero limit re-arms motion that
// stopped at the previous limit.
func (e *Engine) SetLimit(limit int) {
	if limit < Infinite {
		limit = Infinite
	}
	e.cfg.Limit = limit
	if limit != 0 {
		e.StartMove()
	}
}

// SetHover toggles hover handling. Turning it off while hover-paused resumes
// motion.
func (e *Engine) SetHover(hover bool) {
	wasPaused := e.paused && e.cfg.Hover
	e.cfg.Hover = hover
	if !hover && wasPaused && e.active {
		e.StartMove()
	}
}

// SetWheel toggles wheel stepping.
func (e *Engine) SetWheel(wheel bool) { e.cfg.Wheel = wheel }

// SetConfig swaps the configuration and resets. The active toggle takes
// the new AutoStart value.
func (e *Engine) SetConfig(cfg Config) {
	e.cfg = cfg.normalize(e.log)
	e.active = e.cfg.AutoStart
	e.x, e.y = 0, 0
	e.loops = 0
	if e.mounted {
		e.Reset()
	}
}

// Wheel handles a wheel event with the given vertical delta. over reports
// whether the pointer is over the content.
//
// Vertical tickers step down for a negative delta and up otherwise, by
// SingleHeight or DefaultWheelStep. Horizontal tickers step along x
// instead, right for a negative delta and left otherwise, by SingleWidth or
// DefaultWheelStep.
func (e *Engine) Wheel(deltaY float64, over bool) {
	if !e.cfg.Wheel || !e.cfg.Hover || !over {
		return
	}
	e.wheel.Call(deltaY)
}

func (e *Engine) wheelStep(deltaY float64) {
	if e.gone || deltaY == 0 {
		return
	}
	e.cancelFrame()
	e.stepping = true

	// Horizontal tickers step along their own axis: a downward delta moves
	// content right, as "down" moves it toward higher offsets.
	if e.cfg.Direction.Horizontal() {
		step := e.cfg.SingleWidth * e.metrics.FontScale
		if step <= 0 {
			step = DefaultWheelStep
		}
		if deltaY < 0 {
			e.Advance(Right, step, true)
		} else {
			e.Advance(Left, step, true)
		}
		return
	}

	step := e.cfg.SingleHeight * e.metrics.FontScale
	if step <= 0 {
		step = DefaultWheelStep
	}
	if deltaY < 0 {
		e.Advance(Down, step, true)
	} else {
		e.Advance(Up, step, true)
	}
}

// PointerEnter pauses motion while the pointer is over the content.
func (e *Engine) PointerEnter() {
	if e.cfg.Hover && e.active && e.Scrolling() {
		e.StopMove()
	}
}

// PointerLeave resumes motion from the current offset.
func (e *Engine) PointerLeave() {
	if e.cfg.Hover && e.active && e.Scrolling() {
		e.StartMove()
	}
}

// Mount starts the engine, after the configured delay when set.
func (e *Engine) Mount() {
	if e.gone || e.mounted {
		return
	}
	e.mounted = true
	if !e.Scrolling() {
		return
	}
	if e.cfg.Delay <= 0 {
		e.InitMove()
		return
	}
	e.delay = e.clock.AfterFunc(e.cfg.Delay, func() {
		e.delay = nil
		e.InitMove()
	})
}

// Unmount cancels everything pending. The engine is inert afterwards.
func (e *Engine) Unmount() {
	e.cancelFrame()
	e.stopWait()
	for _, t := range []*clock.Timer{&e.delay, &e.settle} {
		if *t != nil {
			(*t).Stop()
			*t = nil
		}
	}
	e.wheel.Cancel(throttle.CancelOptions{})
	e.gone = true
	e.mounted = false
}

// Pending reports the outstanding frame and alignment wait, for hosts and
// tests that check the single-registration guarantee.
func (e *Engine) Pending() (frame, wait bool) {
	return e.frame != 0, e.wait != nil
}

func (e *Engine) cancelFrame() {
	if e.frame != 0 {
		e.frames.Cancel(e.frame)
		e.frame = 0
	}
}

func (e *Engine) stopWait() {
	if e.wait != nil {
		e.wait.Stop()
		e.wait = nil
	}
}
