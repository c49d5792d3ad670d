package engine

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"seamless/internal/clock"
	"seamless/internal/frame"
	"seamless/internal/layout"
)

type harness struct {
	eng    *Engine
	clock  *clock.Manual
	frames *frame.Batch
	stops  []int
	counts []int
	moves  int
	logs   *bytes.Buffer
}

func newHarness(t *testing.T, cfg Config, items int, m layout.Metrics) *harness {
	t.Helper()
	h := &harness{
		clock:  clock.NewManual(time.Unix(0, 0)),
		frames: frame.NewBatch(),
		logs:   new(bytes.Buffer),
	}
	h.eng = New(cfg, Options{
		Frames: frame.Resolve(h.frames, nil),
		Clock:  h.clock,
		Measure: func(Config) (layout.Metrics, bool) {
			return m, m.ContentHeight > 0 || m.ContentWidth > 0
		},
		Hooks: Hooks{
			Stop:  func(n int) { h.stops = append(h.stops, n) },
			Count: func(n int) { h.counts = append(h.counts, n) },
			Move:  func(Motion) { h.moves++ },
		},
		Logger: slog.New(slog.NewTextHandler(h.logs, nil)),
		Items:  items,
	})
	return h
}

func (h *harness) flush(n int) {
	for i := 0; i < n; i++ {
		h.frames.Flush()
	}
}

func vertical(height float64) layout.Metrics {
	return layout.Metrics{ContentHeight: height, FontScale: 1}
}

func TestUpWrapsAtHalfExtent(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Step = 2
	h := newHarness(t, cfg, 5, vertical(100))
	h.eng.Mount()

	h.flush(25)
	if got := h.eng.Motion().Y; got != -50 {
		t.Fatalf("after 25 frames Y = %v, want -50", got)
	}
	if len(h.counts) != 0 {
		t.Fatalf("counted %v before the wrap", h.counts)
	}

	h.flush(1)
	if got := h.eng.Motion().Y; got != -2 {
		t.Fatalf("after wrap Y = %v, want -2", got)
	}
	if len(h.counts) != 1 || h.counts[0] != 1 {
		t.Fatalf("counts = %v, want [1]", h.counts)
	}
	if h.moves != 26 {
		t.Fatalf("moves = %d, want 26", h.moves)
	}
}

func TestDownWrapsOnFirstFrame(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Direction = Down
	cfg.Step = 2
	h := newHarness(t, cfg, 5, vertical(100))
	h.eng.Mount()
	h.flush(1)

	if got := h.eng.Motion().Y; got != -48 {
		t.Fatalf("Y = %v, want -48", got)
	}
	if len(h.counts) != 1 {
		t.Fatalf("counts = %v, want one wrap", h.counts)
	}
	h.flush(24)
	if got := h.eng.Motion().Y; got != 0 {
		t.Fatalf("Y = %v, want 0", got)
	}
	h.flush(1)
	if len(h.counts) != 2 {
		t.Fatalf("counts = %v, want two wraps", h.counts)
	}
}

func TestHorizontalUsesWidth(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Direction = Left
	h := newHarness(t, cfg, 5, layout.Metrics{ContentWidth: 21, FontScale: 1})
	h.eng.Mount()

	h.flush(11)
	if got := h.eng.Motion().X; got != -11 {
		t.Fatalf("X = %v, want -11", got)
	}
	h.flush(1)
	if got := h.eng.Motion().X; got != -1 {
		t.Fatalf("X = %v, want -1 after wrap", got)
	}
	if h.eng.Motion().Y != 0 {
		t.Fatalf("Y moved on a horizontal run")
	}
}

func TestSingleStopWaits(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Step = 2
	cfg.SingleHeight = 10
	cfg.SingleWait = time.Second
	h := newHarness(t, cfg, 5, vertical(100))
	h.eng.Mount()

	h.flush(4)
	if !h.frames.Pending() {
		t.Fatalf("expected a frame before the stop")
	}
	h.flush(1)
	if got := h.eng.Motion().Y; got != -10 {
		t.Fatalf("Y = %v, want -10", got)
	}
	frameOn, waitOn := h.eng.Pending()
	if frameOn || !waitOn {
		t.Fatalf("pending frame=%v wait=%v, want only the wait", frameOn, waitOn)
	}

	h.clock.Advance(999 * time.Millisecond)
	if h.frames.Pending() {
		t.Fatalf("frame scheduled before the wait elapsed")
	}
	h.clock.Advance(time.Millisecond)
	if !h.frames.Pending() {
		t.Fatalf("no frame after the wait")
	}
	h.flush(1)
	if got := h.eng.Motion().Y; got != -12 {
		t.Fatalf("Y = %v, want -12", got)
	}
}

func TestWheelStepsDiscretely(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Hover = true
	cfg.Wheel = true
	h := newHarness(t, cfg, 5, vertical(100))
	h.eng.Mount()

	h.eng.PointerEnter()
	if h.eng.State() != HoverPaused {
		t.Fatalf("state = %v, want paused", h.eng.State())
	}

	h.eng.Wheel(-5, true)
	if got := h.eng.Motion().Y; got != -35 {
		t.Fatalf("Y = %v, want -35 (reset to -50, then +15)", got)
	}
	frameOn, waitOn := h.eng.Pending()
	if frameOn || waitOn {
		t.Fatalf("discrete step scheduled frame=%v wait=%v", frameOn, waitOn)
	}
	if h.eng.State() != WheelStepping {
		t.Fatalf("state = %v, want wheel", h.eng.State())
	}

	// Within the throttle interval the call becomes a trailing run.
	h.eng.Wheel(5, true)
	if got := h.eng.Motion().Y; got != -35 {
		t.Fatalf("throttled step ran immediately, Y = %v", got)
	}
	h.clock.Advance(WheelInterval)
	if got := h.eng.Motion().Y; got != -50 {
		t.Fatalf("trailing step Y = %v, want -50", got)
	}
}

func TestWheelUsesSingleHeight(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Hover = true
	cfg.Wheel = true
	cfg.SingleHeight = 4
	h := newHarness(t, cfg, 5, vertical(100))
	h.eng.Mount()
	h.eng.PointerEnter()

	h.eng.Wheel(3, true)
	if got := h.eng.Motion().Y; got != -4 {
		t.Fatalf("Y = %v, want -4", got)
	}
}

func TestWheelGuards(t *testing.T) {
	tests := []struct {
		name  string
		hover bool
		wheel bool
		over  bool
		delta float64
	}{
		{"wheel disabled", true, false, true, 1},
		{"hover disabled", false, true, true, 1},
		{"pointer outside", true, true, false, 1},
		{"zero delta", true, true, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Hover = tt.hover
			cfg.Wheel = tt.wheel
			cfg.AutoStart = false
			h := newHarness(t, cfg, 5, vertical(100))
			h.eng.Mount()
			h.eng.Wheel(tt.delta, tt.over)
			if h.moves != 0 {
				t.Fatalf("wheel moved content")
			}
		})
	}
}

func TestLimitStopsOnce(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Step = 50
	cfg.Limit = 2
	h := newHarness(t, cfg, 5, vertical(100))
	h.eng.Mount()

	h.flush(10)
	if len(h.stops) != 1 || h.stops[0] != 2 {
		t.Fatalf("stops = %v, want [2]", h.stops)
	}
	if h.eng.Motion().Loops != 0 {
		t.Fatalf("loops not reset after stop")
	}
	if h.frames.Pending() {
		t.Fatalf("frame scheduled after the limit")
	}
	if h.eng.State() != LimitReached {
		t.Fatalf("state = %v, want limit reached", h.eng.State())
	}

	h.eng.SetLimit(1)
	if h.eng.State() != Running {
		t.Fatalf("state = %v after raising the limit", h.eng.State())
	}
}

func TestInfiniteLimitNeverStops(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Step = 50
	h := newHarness(t, cfg, 5, vertical(100))
	h.eng.Mount()
	h.flush(100)
	if len(h.stops) != 0 {
		t.Fatalf("stops = %v", h.stops)
	}
	if len(h.counts) == 0 {
		t.Fatalf("no wraps")
	}
}

func TestBelowMinItemsIsIdle(t *testing.T) {
	h := newHarness(t, DefaultConfig(), 2, vertical(100))
	h.eng.Mount()
	if h.frames.Pending() || h.clock.Pending() != 0 {
		t.Fatalf("something scheduled below the minimum")
	}
	if h.eng.State() != Idle {
		t.Fatalf("state = %v, want idle", h.eng.State())
	}
	h.eng.PointerEnter()
	if h.eng.Motion().Paused {
		t.Fatalf("hover paused an idle engine")
	}
}

func TestHoverCancelsFrameAndWait(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Hover = true
	cfg.Step = 2
	cfg.SingleHeight = 10
	h := newHarness(t, cfg, 5, vertical(100))
	h.eng.Mount()
	h.flush(5)

	h.eng.PointerEnter()
	if frameOn, waitOn := h.eng.Pending(); frameOn || waitOn {
		t.Fatalf("pending frame=%v wait=%v after hover", frameOn, waitOn)
	}
	h.clock.Advance(5 * time.Second)
	if h.frames.Pending() {
		t.Fatalf("stale wait scheduled a frame")
	}
	y := h.eng.Motion().Y

	h.eng.PointerLeave()
	h.flush(1)
	if got := h.eng.Motion().Y; got != y-2 {
		t.Fatalf("Y = %v, want to resume from %v", got, y)
	}
}

func TestAtMostOnePendingFrame(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Hover = true
	h := newHarness(t, cfg, 5, vertical(40))
	h.eng.Mount()
	for i := 0; i < 50; i++ {
		h.eng.StartMove()
		h.eng.InitMove()
		if ran := h.frames.Flush(); ran != 1 {
			t.Fatalf("frame %d ran %d callbacks", i, ran)
		}
	}
}

func TestPausedMoveEmitsStop(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Hover = true
	h := newHarness(t, cfg, 5, vertical(100))
	h.eng.Mount()
	h.eng.StopMove()
	h.eng.Move()
	if len(h.stops) != 1 {
		t.Fatalf("stops = %v, want one", h.stops)
	}
}

func TestSetActive(t *testing.T) {
	h := newHarness(t, DefaultConfig(), 5, vertical(100))
	h.eng.Mount()
	h.eng.SetActive(false)
	if h.frames.Pending() {
		t.Fatalf("frame pending while inactive")
	}
	h.eng.SetActive(true)
	if !h.frames.Pending() {
		t.Fatalf("no frame after reactivating")
	}
}

func TestAutoStartOff(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AutoStart = false
	h := newHarness(t, cfg, 5, vertical(100))
	h.eng.Mount()
	if h.frames.Pending() {
		t.Fatalf("started without auto start")
	}
	if m := h.eng.Motion(); m.X != 0 || m.Y != 0 {
		t.Fatalf("offset not zeroed: %+v", m)
	}
}

func TestContentChangedResets(t *testing.T) {
	h := newHarness(t, DefaultConfig(), 5, vertical(100))
	h.eng.Mount()
	h.flush(7)

	h.eng.ContentChanged(2)
	h.eng.ContentChanged(1)
	h.clock.Advance(0)
	if m := h.eng.Motion(); m.Y != 0 {
		t.Fatalf("Y = %v, want 0 after shrinking below the minimum", m.Y)
	}
	if h.frames.Pending() {
		t.Fatalf("frame pending below the minimum")
	}

	h.eng.ContentChanged(6)
	h.clock.Advance(0)
	if !h.frames.Pending() {
		t.Fatalf("no frame after growing the list")
	}
}

func TestContentChangedWithoutWatch(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Watch = false
	h := newHarness(t, cfg, 5, vertical(100))
	h.eng.Mount()
	h.eng.ContentChanged(1)
	if h.clock.Pending() != 0 {
		t.Fatalf("reset armed without watch")
	}
}

func TestMountDelay(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Delay = 500 * time.Millisecond
	h := newHarness(t, cfg, 5, vertical(100))
	h.eng.Mount()
	if h.frames.Pending() {
		t.Fatalf("started before the delay")
	}
	h.clock.Advance(500 * time.Millisecond)
	if !h.frames.Pending() {
		t.Fatalf("not started after the delay")
	}
}

func TestUnmountCancelsEverything(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Delay = time.Second
	h := newHarness(t, cfg, 5, vertical(100))
	h.eng.Mount()
	h.eng.ContentChanged(7)
	h.eng.Unmount()

	h.clock.Advance(time.Hour)
	h.flush(3)
	if h.moves != 0 {
		t.Fatalf("engine moved after unmount")
	}
	if h.clock.Pending() != 0 {
		t.Fatalf("%d timers left", h.clock.Pending())
	}
}

func TestFallbackSchedulerDrivesFrames(t *testing.T) {
	c := clock.NewManual(time.Unix(0, 0))
	var counts []int
	eng := New(DefaultConfig(), Options{
		Clock: c,
		Measure: func(Config) (layout.Metrics, bool) {
			return vertical(20), true
		},
		Hooks:  Hooks{Count: func(n int) { counts = append(counts, n) }},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Items:  5,
	})
	eng.Mount()
	c.Advance(11 * frame.FallbackInterval)
	if len(counts) != 1 {
		t.Fatalf("counts = %v, want one wrap after 11 frames", counts)
	}
}

func TestNormalize(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := Config{Direction: "sideways", Step: -1, CopyNum: -2, Limit: -7}
	got := cfg.normalize(log)
	if got.Direction != Up || got.Step != 1 || got.CopyNum != 0 || got.Limit != Infinite {
		t.Fatalf("normalize = %+v", got)
	}
	if !divides(0.1, 1) || divides(3, 10) {
		t.Fatalf("divides tolerance wrong")
	}
}

func TestParseDirection(t *testing.T) {
	for in, want := range map[string]Direction{"": Up, "Left": Left, " down ": Down} {
		got, err := ParseDirection(in)
		if err != nil || got != want {
			t.Errorf("ParseDirection(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseDirection("diagonal"); err == nil {
		t.Errorf("expected error")
	}
}

func TestSetConfigAppliesActive(t *testing.T) {
	h := newHarness(t, DefaultConfig(), 5, vertical(100))
	h.eng.Mount()
	h.flush(3)

	cfg := DefaultConfig()
	cfg.AutoStart = false
	h.eng.SetConfig(cfg)
	h.flush(3)
	if h.eng.Active() {
		t.Fatalf("still active after AutoStart=false")
	}
	if m := h.eng.Motion(); m.Y != 0 || h.frames.Pending() || h.eng.State() != Idle {
		t.Fatalf("motion = %+v pending = %v state = %v", m, h.frames.Pending(), h.eng.State())
	}

	h.eng.SetConfig(DefaultConfig())
	if !h.eng.Active() || !h.frames.Pending() {
		t.Fatalf("not restarted after AutoStart=true")
	}
}

func TestSetHoverOffResumes(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Hover = true
	h := newHarness(t, cfg, 5, vertical(100))
	h.eng.Mount()
	h.eng.PointerEnter()
	if h.eng.State() != HoverPaused {
		t.Fatalf("state = %v, want paused", h.eng.State())
	}

	h.eng.SetHover(false)
	if h.eng.State() != Running || !h.frames.Pending() {
		t.Fatalf("state = %v pending = %v, want running", h.eng.State(), h.frames.Pending())
	}
	h.flush(1)
	if got := h.eng.Motion().Y; got != -1 {
		t.Fatalf("Y = %v, want -1", got)
	}

	// Hover is off now, so entering no longer pauses.
	h.eng.PointerEnter()
	if h.eng.State() != Running {
		t.Fatalf("state = %v after enter with hover off", h.eng.State())
	}
}

func TestLongListWarning(t *testing.T) {
	tests := []struct {
		items int
		warn  bool
	}{
		{ItemWarnThreshold, false},
		{ItemWarnThreshold + 1, true},
	}
	for _, tt := range tests {
		h := newHarness(t, DefaultConfig(), tt.items, vertical(100))
		h.eng.Mount()
		got := strings.Contains(h.logs.String(), "long content list")
		if got != tt.warn {
			t.Errorf("items=%d warned=%v, want %v: %s", tt.items, got, tt.warn, h.logs)
		}
	}
}

func TestStepDivisorWarning(t *testing.T) {
	tests := []struct {
		name  string
		step  float64
		stop  float64
		scale float64
		warn  bool
	}{
		{"divides", 2, 10, 1, false},
		{"overshoots", 3, 10, 1, true},
		{"divides once scaled", 3, 2, 1.5, false},
		{"overshoots once scaled", 2, 2, 1.5, true},
		{"no stop", 3, 0, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Step = tt.step
			cfg.SingleHeight = tt.stop
			cfg.RemUnit = tt.scale != 1
			h := newHarness(t, cfg, 5, layout.Metrics{ContentHeight: 100, FontScale: tt.scale})
			h.eng.Mount()
			got := strings.Contains(h.logs.String(), "does not divide")
			if got != tt.warn {
				t.Fatalf("warned=%v, want %v: %s", got, tt.warn, h.logs)
			}
		})
	}
}

func TestRemScalesSingleStop(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Step = 2
	cfg.SingleHeight = 4
	cfg.RemUnit = true
	h := newHarness(t, cfg, 5, layout.Metrics{ContentHeight: 100, FontScale: 2.5})
	h.eng.Mount()

	h.flush(4)
	if frameOn, waitOn := h.eng.Pending(); !frameOn || waitOn {
		t.Fatalf("stopped before the scaled distance: frame=%v wait=%v", frameOn, waitOn)
	}
	h.flush(1)
	if got := h.eng.Motion().Y; got != -10 {
		t.Fatalf("Y = %v, want -10", got)
	}
	if frameOn, waitOn := h.eng.Pending(); frameOn || !waitOn {
		t.Fatalf("pending frame=%v wait=%v, want only the wait", frameOn, waitOn)
	}
}

func TestRemScalesWheelStep(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Hover = true
	cfg.Wheel = true
	cfg.SingleHeight = 4
	cfg.RemUnit = true
	h := newHarness(t, cfg, 5, layout.Metrics{ContentHeight: 100, FontScale: 2})
	h.eng.Mount()
	h.eng.PointerEnter()

	h.eng.Wheel(3, true)
	if got := h.eng.Motion().Y; got != -8 {
		t.Fatalf("Y = %v, want -8", got)
	}
}

func TestHorizontalWheelStepsAlongX(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Direction = Left
	cfg.Hover = true
	cfg.Wheel = true
	cfg.SingleWidth = 3
	h := newHarness(t, cfg, 5, layout.Metrics{ContentWidth: 61, FontScale: 1})
	h.eng.Mount()
	h.eng.PointerEnter()

	h.eng.Wheel(2, true)
	if m := h.eng.Motion(); m.X != -3 || m.Y != 0 {
		t.Fatalf("motion = %+v, want x=-3", m)
	}
}
