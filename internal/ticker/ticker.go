// Package ticker is the seamless scrolling widget as a bubbletea model.
//
// The model owns an engine and runs every engine continuation through its
// Update loop: timers armed on a clock.Queue and frames requested from a
// frame.Batch come back as tick messages routed by widget id, so the engine
// is only ever touched from the program goroutine.
package ticker

import (
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"

	"seamless/internal/clock"
	"seamless/internal/engine"
	"seamless/internal/frame"
	"seamless/internal/layout"
)

// Internal ID management, so tick messages reach only the widget that
// scheduled them.
var lastID int64

func nextID() int { return int(atomic.AddInt64(&lastID, 1)) }

type timerMsg struct {
	id    int
	timer uint64
}

type frameMsg struct{ id int }

type easeMsg struct{ id int }

// StopMsg is sent when motion halts on hover, when scrolling is disabled, or
// when the loop limit is reached.
type StopMsg struct {
	ID    int
	Loops int
}

// CountMsg is sent each time a wraparound completes.
type CountMsg struct {
	ID    int
	Loops int
}

// MoveMsg is sent after every position update.
type MoveMsg struct {
	ID   int
	X, Y float64
}

// Handle is the imperative control surface handed to hosts.
type Handle interface {
	// Reset re-measures and restarts motion from a clean state.
	Reset() tea.Cmd
}

// Config builds a Model.
type Config struct {
	Options Options
	Items   []Item
	// Primary renders items; nil uses DefaultTemplate.
	Primary Template
	// Alternate renders items in the duplicated blocks when set.
	Alternate Template
	// RootFontSize scales single-stop distances when IsRemUnit is set.
	RootFontSize float64
	Width        int
	Height       int
	Logger       *slog.Logger
	// Now overrides the clock, for tests.
	Now func() time.Time
}

type transition struct {
	fromX, fromY float64
	toX, toY     float64
	start        time.Time
	dur          time.Duration
}

// Model is the ticker widget.
type Model struct {
	id   int
	opts Options
	log  *slog.Logger

	eng         *engine.Engine
	queue       *clock.Queue
	frames      *frame.Batch
	frameQueued bool
	easeQueued  bool
	mounted     bool

	items     []Item
	primary   Template
	alternate Template
	fontSize  float64

	x, y          int
	width, height int
	hovered       bool

	cache   *rendered
	shownX  float64
	shownY  float64
	trans   *transition
	wrapped bool

	outbox []tea.Msg
}

// New creates a ticker. Nothing moves until Init.
func New(cfg Config) *Model {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	m := &Model{
		id:        nextID(),
		opts:      cfg.Options,
		log:       log,
		queue:     clock.NewQueue(cfg.Now),
		frames:    frame.NewBatch(),
		items:     cfg.Items,
		primary:   cfg.Primary,
		alternate: cfg.Alternate,
		fontSize:  cfg.RootFontSize,
		width:     max(cfg.Width, 0),
		height:    max(cfg.Height, 0),
	}
	if m.primary == nil {
		m.primary = DefaultTemplate()
	}
	m.eng = engine.New(cfg.Options.EngineConfig(), engine.Options{
		Frames:  frame.Resolve(m.frames, m.queue),
		Clock:   m.queue,
		Measure: m.measure,
		Hooks: engine.Hooks{
			Stop:  m.onStop,
			Count: m.onCount,
			Move:  m.onMove,
		},
		Logger: log.With("ticker", m.id),
		Items:  len(cfg.Items),
	})
	return m
}

// ID identifies the widget in the messages it sends.
func (m *Model) ID() int { return m.id }

// Init mounts the engine.
func (m *Model) Init() tea.Cmd {
	m.mounted = true
	m.eng.Mount()
	return m.pump()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case timerMsg:
		if msg.id != m.id {
			return m, nil
		}
		m.queue.Fire(msg.timer)
	case frameMsg:
		if msg.id != m.id {
			return m, nil
		}
		m.frameQueued = false
		m.frames.Flush()
	case easeMsg:
		if msg.id != m.id {
			return m, nil
		}
		m.easeQueued = false
		m.stepTransition()
	case tea.MouseMotionMsg:
		m.pointer(msg.Mouse())
	case tea.MouseWheelMsg:
		mouse := msg.Mouse()
		m.pointer(mouse)
		over := m.contains(mouse.X, mouse.Y)
		switch mouse.Button {
		case tea.MouseWheelUp:
			m.eng.Wheel(-1, over)
		case tea.MouseWheelDown:
			m.eng.Wheel(1, over)
		}
	default:
		return m, nil
	}
	return m, m.pump()
}

// pump turns everything the engine armed since the last call into commands.
func (m *Model) pump() tea.Cmd {
	var cmds []tea.Cmd
	id := m.id
	for _, p := range m.queue.Drain() {
		timer := p.ID
		cmds = append(cmds, tea.Tick(p.Delay, func(time.Time) tea.Msg {
			return timerMsg{id: id, timer: timer}
		}))
	}
	if m.frames.Pending() && !m.frameQueued {
		m.frameQueued = true
		cmds = append(cmds, tea.Tick(frame.FallbackInterval, func(time.Time) tea.Msg {
			return frameMsg{id: id}
		}))
	}
	if m.trans != nil && !m.easeQueued {
		m.easeQueued = true
		cmds = append(cmds, tea.Tick(frame.FallbackInterval, func(time.Time) tea.Msg {
			return easeMsg{id: id}
		}))
	}
	for _, msg := range m.outbox {
		cmds = append(cmds, func() tea.Msg { return msg })
	}
	m.outbox = nil
	return tea.Batch(cmds...)
}

func (m *Model) onStop(loops int) {
	m.outbox = append(m.outbox, StopMsg{ID: m.id, Loops: loops})
}

func (m *Model) onCount(loops int) {
	m.wrapped = true
	m.outbox = append(m.outbox, CountMsg{ID: m.id, Loops: loops})
}

// onMove updates the drawn offset. Discrete jumps ease over the configured
// delay; frame steps and wrap resets land immediately.
func (m *Model) onMove(mo engine.Motion) {
	wrapped := m.wrapped
	m.wrapped = false
	m.outbox = append(m.outbox, MoveMsg{ID: m.id, X: mo.X, Y: mo.Y})

	cfg := m.eng.Config()
	jump := math.Max(math.Abs(mo.X-m.shownX), math.Abs(mo.Y-m.shownY))
	if cfg.Delay <= 0 || wrapped || jump <= cfg.Step+1e-9 {
		m.trans = nil
		m.shownX, m.shownY = mo.X, mo.Y
		return
	}
	m.trans = &transition{
		fromX: m.shownX, fromY: m.shownY,
		toX: mo.X, toY: mo.Y,
		start: m.queue.Now(),
		dur:   cfg.Delay,
	}
}

func (m *Model) stepTransition() {
	t := m.trans
	if t == nil {
		return
	}
	p := float64(m.queue.Now().Sub(t.start)) / float64(t.dur)
	if p >= 1 {
		m.shownX, m.shownY = t.toX, t.toY
		m.trans = nil
		return
	}
	e := m.eng.Config().Ease.At(p)
	m.shownX = t.fromX + (t.toX-t.fromX)*e
	m.shownY = t.fromY + (t.toY-t.fromY)*e
}

func (m *Model) pointer(mouse tea.Mouse) {
	over := m.contains(mouse.X, mouse.Y)
	switch {
	case over && !m.hovered:
		m.hovered = true
		m.eng.PointerEnter()
	case !over && m.hovered:
		m.hovered = false
		m.eng.PointerLeave()
	}
}

func (m *Model) contains(x, y int) bool {
	return x >= m.x && x < m.x+m.width && y >= m.y && y < m.y+m.height
}

func (m *Model) measure(cfg engine.Config) (layout.Metrics, bool) {
	r := m.render()
	return layout.Measure(
		layout.Text(r.primary),
		layout.Text(r.container),
		cfg.Direction.Horizontal(),
		cfg.RemUnit,
		layout.FontSize(m.fontSize),
	)
}

// Handle returns the imperative control surface.
func (m *Model) Handle() Handle { return handle{m} }

type handle struct{ m *Model }

func (h handle) Reset() tea.Cmd {
	h.m.trans = nil
	h.m.eng.Reset()
	return h.m.pump()
}

// SetItems replaces the content list.
func (m *Model) SetItems(items []Item) tea.Cmd {
	m.items = items
	m.cache = nil
	m.eng.ContentChanged(len(items))
	return m.pump()
}

// SetActive flips the active toggle.
func (m *Model) SetActive(active bool) tea.Cmd {
	m.opts.Active = active
	m.eng.SetActive(active)
	return m.pump()
}

// SetLimit changes the loop limit.
func (m *Model) SetLimit(limit int) tea.Cmd {
	m.opts.Count = limit
	m.eng.SetLimit(limit)
	return m.pump()
}

// SetHover toggles pause on hover.
func (m *Model) SetHover(hover bool) tea.Cmd {
	m.opts.Hover = hover
	m.eng.SetHover(hover)
	return m.pump()
}

// SetWheel toggles wheel stepping.
func (m *Model) SetWheel(wheel bool) {
	m.opts.Wheel = wheel
	m.eng.SetWheel(wheel)
}

// SetOptions swaps the whole configuration and restarts.
func (m *Model) SetOptions(opts Options) tea.Cmd {
	m.opts = opts
	m.cache = nil
	m.trans = nil
	m.shownX, m.shownY = 0, 0
	m.eng.SetConfig(opts.EngineConfig())
	return m.pump()
}

// SetSize sets the viewport size and re-measures.
func (m *Model) SetSize(width, height int) tea.Cmd {
	width, height = max(width, 0), max(height, 0)
	if width == m.width && height == m.height {
		return nil
	}
	m.width, m.height = width, height
	m.cache = nil
	if !m.mounted {
		return nil
	}
	return m.Handle().Reset()
}

// SetBounds sets the screen position of the viewport's top-left cell, used
// to hit-test the pointer.
func (m *Model) SetBounds(x, y int) { m.x, m.y = x, y }

// Close cancels everything pending. The model is inert afterwards.
func (m *Model) Close() { m.eng.Unmount() }

func (m *Model) Options() Options      { return m.opts }
func (m *Model) State() engine.State   { return m.eng.State() }
func (m *Model) Motion() engine.Motion { return m.eng.Motion() }
func (m *Model) Hovered() bool         { return m.hovered }
func (m *Model) Items() []Item         { return m.items }
