package ticker

import (
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"

	"seamless/internal/engine"
)

func plain(it Item, _ int, _ int) string { return it.Title }

func items(titles ...string) []Item {
	out := make([]Item, len(titles))
	for i, t := range titles {
		out[i] = Item{ID: t, Title: t}
	}
	return out
}

type fakeNow struct{ t time.Time }

func (f *fakeNow) now() time.Time { return f.t }

func newTicker(t *testing.T, opts Options, list []Item, w, h int) (*Model, *fakeNow) {
	t.Helper()
	now := &fakeNow{t: time.Unix(0, 0)}
	m := New(Config{
		Options: opts,
		Items:   list,
		Primary: plain,
		Width:   w,
		Height:  h,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:     now.now,
	})
	t.Cleanup(m.Close)
	return m, now
}

func frames(m *Model, n int) tea.Cmd {
	var cmd tea.Cmd
	for i := 0; i < n; i++ {
		_, cmd = m.Update(frameMsg{id: m.ID()})
	}
	return cmd
}

func view(m *Model) []string {
	lines := strings.Split(m.View(), "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(ansi.Strip(lines[i]), " ")
	}
	return lines
}

// collect runs cmd and gathers the messages it produces within wait.
func collect(cmd tea.Cmd, wait time.Duration) []tea.Msg {
	if cmd == nil {
		return nil
	}
	out := make(chan tea.Msg, 64)
	var run func(tea.Cmd)
	var wg sync.WaitGroup
	run = func(c tea.Cmd) {
		defer wg.Done()
		msg := c()
		if batch, ok := msg.(tea.BatchMsg); ok {
			for _, c := range batch {
				if c != nil {
					wg.Add(1)
					go run(c)
				}
			}
			return
		}
		out <- msg
	}
	wg.Add(1)
	go run(cmd)

	var msgs []tea.Msg
	deadline := time.After(wait)
	for {
		select {
		case msg := <-out:
			msgs = append(msgs, msg)
		case <-deadline:
			return msgs
		}
	}
}

func TestDefaultOptions(t *testing.T) {
	o := DefaultOptions()
	cfg := o.EngineConfig()
	if !cfg.AutoStart || !cfg.Watch || cfg.Limit != engine.Infinite || cfg.MinItems != 3 || cfg.CopyNum != 1 {
		t.Fatalf("engine config = %+v", cfg)
	}
	if cfg.SingleWait != time.Second || cfg.Ease.String() != "ease-in" || cfg.Direction != engine.Up {
		t.Fatalf("engine config = %+v", cfg)
	}
}

func TestVerticalLoopIsSeamless(t *testing.T) {
	m, _ := newTicker(t, DefaultOptions(), items("a", "b", "c", "d", "e"), 4, 3)
	m.Init()

	start := view(m)
	if got := strings.Join(start, ","); got != "a,b,c" {
		t.Fatalf("initial view = %q", got)
	}

	frames(m, 1)
	if got := strings.Join(view(m), ","); got != "b,c,d" {
		t.Fatalf("after one frame = %q", got)
	}

	frames(m, 4)
	if got := m.Motion().Y; got != -5 {
		t.Fatalf("Y = %v, want -5", got)
	}
	if got := strings.Join(view(m), ","); got != strings.Join(start, ",") {
		t.Fatalf("view at the wrap point = %q, want %q", got, strings.Join(start, ","))
	}

	frames(m, 1)
	if got := m.Motion().Y; got != -1 {
		t.Fatalf("Y = %v after wrap, want -1", got)
	}
}

func TestHorizontalLoopIsSeamless(t *testing.T) {
	opts := DefaultOptions()
	opts.Direction = engine.Left
	m, _ := newTicker(t, opts, items("a", "b", "c"), 5, 1)
	m.Init()

	if got := view(m)[0]; got != "a · b" {
		t.Fatalf("initial view = %q", got)
	}
	frames(m, 2)
	if got := view(m)[0]; got != "· b ·" {
		t.Fatalf("after two frames = %q", got)
	}
	frames(m, 11)
	if got := m.Motion().X; got != -13 {
		t.Fatalf("X = %v, want -13", got)
	}
	if got := view(m)[0]; got != "a · b" {
		t.Fatalf("view at the wrap point = %q", got)
	}
	frames(m, 1)
	if got := m.Motion().X; got != -1 {
		t.Fatalf("X = %v after wrap, want -1", got)
	}
}

func TestTooFewItemsStaysStill(t *testing.T) {
	m, _ := newTicker(t, DefaultOptions(), items("a", "b"), 4, 3)
	m.Init()
	if m.frames.Pending() {
		t.Fatalf("frame requested below the minimum")
	}
	if got := strings.Join(view(m), ","); got != "a,b," {
		t.Fatalf("view = %q, want no copies", got)
	}
}

func TestTimerMessagesRouteById(t *testing.T) {
	opts := DefaultOptions()
	opts.SingleHeight = 2
	m, _ := newTicker(t, opts, items("a", "b", "c", "d", "e"), 4, 3)
	m.Init()
	frames(m, 2)

	armed := m.queue.Armed()
	if len(armed) != 1 || m.frames.Pending() {
		t.Fatalf("armed = %v, frame pending = %v", armed, m.frames.Pending())
	}

	m.Update(timerMsg{id: m.ID() + 1000, timer: armed[0]})
	if m.frames.Pending() {
		t.Fatalf("foreign timer message fired")
	}
	m.Update(timerMsg{id: m.ID(), timer: armed[0]})
	if !m.frames.Pending() {
		t.Fatalf("timer did not resume motion")
	}
}

func TestHoverPausesAndResumes(t *testing.T) {
	opts := DefaultOptions()
	opts.Hover = true
	m, _ := newTicker(t, opts, items("a", "b", "c", "d", "e"), 4, 3)
	m.SetBounds(10, 5)
	m.Init()
	frames(m, 1)

	m.Update(tea.MouseMotionMsg{X: 11, Y: 6})
	if !m.Hovered() || m.State() != engine.HoverPaused {
		t.Fatalf("hovered = %v state = %v", m.Hovered(), m.State())
	}
	if m.frames.Pending() {
		t.Fatalf("frame pending while hovered")
	}

	m.Update(tea.MouseMotionMsg{X: 14, Y: 6})
	if m.Hovered() || m.State() != engine.Running {
		t.Fatalf("hovered = %v state = %v", m.Hovered(), m.State())
	}
}

func TestWheelSteps(t *testing.T) {
	opts := DefaultOptions()
	opts.Hover = true
	opts.Wheel = true
	opts.SingleHeight = 1
	m, _ := newTicker(t, opts, items("a", "b", "c", "d", "e"), 4, 3)
	m.Init()

	m.Update(tea.MouseWheelMsg{X: 0, Y: 0, Button: tea.MouseWheelDown})
	if got := m.Motion().Y; got != -1 {
		t.Fatalf("Y = %v, want -1", got)
	}
	if m.State() != engine.WheelStepping {
		t.Fatalf("state = %v", m.State())
	}

	// Outside the viewport the wheel does nothing.
	m.Update(tea.MouseWheelMsg{X: 40, Y: 40, Button: tea.MouseWheelDown})
	if got := m.Motion().Y; got != -1 {
		t.Fatalf("Y = %v, want -1", got)
	}
}

func TestLimitEmitsCountAndStop(t *testing.T) {
	opts := DefaultOptions()
	opts.Step = 5
	opts.Count = 1
	m, _ := newTicker(t, opts, items("a", "b", "c", "d", "e"), 4, 3)
	m.Init()
	frames(m, 1)
	cmd := frames(m, 1)

	var count, stop bool
	for _, msg := range collect(cmd, 200*time.Millisecond) {
		switch msg := msg.(type) {
		case CountMsg:
			count = msg.ID == m.ID() && msg.Loops == 1
		case StopMsg:
			stop = msg.ID == m.ID() && msg.Loops == 1
		}
	}
	if !count || !stop {
		t.Fatalf("count = %v stop = %v", count, stop)
	}
	if m.State() != engine.LimitReached {
		t.Fatalf("state = %v", m.State())
	}
}

func TestResetHandle(t *testing.T) {
	m, _ := newTicker(t, DefaultOptions(), items("a", "b", "c", "d", "e"), 4, 3)
	m.Init()
	frames(m, 3)
	m.Handle().Reset()
	if mo := m.Motion(); mo.Y != -3 || !m.frames.Pending() {
		t.Fatalf("motion = %+v pending = %v", mo, m.frames.Pending())
	}

	m.SetItems(items("a"))
	id := m.queue.Armed()
	if len(id) != 1 {
		t.Fatalf("armed = %v, want the settle timer", id)
	}
	m.Update(timerMsg{id: m.ID(), timer: id[0]})
	if mo := m.Motion(); mo.Y != 0 || m.frames.Pending() {
		t.Fatalf("motion = %+v pending = %v after shrinking", mo, m.frames.Pending())
	}
}

func TestDiscreteStepEases(t *testing.T) {
	opts := DefaultOptions()
	opts.Hover = true
	opts.Wheel = true
	opts.SingleHeight = 3
	opts.Delay = 100 * time.Millisecond
	m, now := newTicker(t, opts, items("a", "b", "c", "d", "e", "f"), 4, 3)
	m.Init()
	armed := m.queue.Armed()
	if len(armed) != 1 {
		t.Fatalf("armed = %v, want the start delay", armed)
	}
	m.Update(timerMsg{id: m.ID(), timer: armed[0]})
	m.Update(tea.MouseMotionMsg{X: 1, Y: 1})

	m.Update(tea.MouseWheelMsg{X: 1, Y: 1, Button: tea.MouseWheelDown})
	if m.Motion().Y != -3 {
		t.Fatalf("Y = %v, want -3", m.Motion().Y)
	}
	if m.shownY != 0 || m.trans == nil {
		t.Fatalf("shown = %v, want an eased transition from 0", m.shownY)
	}

	now.t = now.t.Add(50 * time.Millisecond)
	m.Update(easeMsg{id: m.ID()})
	if m.shownY >= 0 || m.shownY <= -3 {
		t.Fatalf("midway shown = %v", m.shownY)
	}

	now.t = now.t.Add(60 * time.Millisecond)
	m.Update(easeMsg{id: m.ID()})
	if m.shownY != -3 || m.trans != nil {
		t.Fatalf("final shown = %v", m.shownY)
	}
}

func TestSetSizeRemeasures(t *testing.T) {
	opts := DefaultOptions()
	opts.Direction = engine.Right
	m, _ := newTicker(t, opts, items("a", "b", "c"), 5, 1)
	m.Init()
	frames(m, 3)
	m.SetSize(8, 1)
	if got := ansi.StringWidth(m.View()); got != 8 {
		t.Fatalf("view width = %d, want 8", got)
	}
	if !m.frames.Pending() {
		t.Fatalf("motion did not restart after resize")
	}
}

func TestDefaultTemplate(t *testing.T) {
	tmpl := DefaultTemplate()
	row := ansi.Strip(tmpl(Item{Title: "T", Body: "one\ntwo"}, 0, 0))
	if row != "T one two" {
		t.Fatalf("row = %q", row)
	}
	stacked := ansi.Strip(tmpl(Item{Title: "Title", Body: "body"}, 0, 10))
	if !strings.HasPrefix(stacked, "Title") || !strings.Contains(stacked, "body") {
		t.Fatalf("stacked = %q", stacked)
	}
}

func TestAlternateRendersCopies(t *testing.T) {
	m := New(Config{
		Options:   DefaultOptions(),
		Items:     items("a", "b", "c"),
		Primary:   plain,
		Alternate: func(it Item, _ int, _ int) string { return strings.ToUpper(it.Title) },
		Width:     4,
		Height:    6,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	t.Cleanup(m.Close)
	if got := strings.Join(view(m), ","); got != "a,b,c,A,B,C" {
		t.Fatalf("view = %q", got)
	}
}

func TestSetOptionsAppliesActive(t *testing.T) {
	m, _ := newTicker(t, DefaultOptions(), items("a", "b", "c", "d", "e"), 4, 3)
	m.Init()
	frames(m, 3)

	opts := DefaultOptions()
	opts.Active = false
	m.SetOptions(opts)
	frames(m, 3)
	if m.Options().Active || m.eng.Active() {
		t.Fatalf("active after switching options off")
	}
	if mo := m.Motion(); mo.Y != 0 || m.frames.Pending() || m.State() != engine.Idle {
		t.Fatalf("motion = %+v pending = %v state = %v", mo, m.frames.Pending(), m.State())
	}

	m.SetOptions(DefaultOptions())
	if !m.eng.Active() || !m.frames.Pending() {
		t.Fatalf("not restarted after switching options on")
	}
}
