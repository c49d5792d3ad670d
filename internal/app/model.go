// Package app is the full-screen program around the ticker widget.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/v2/help"
	"github.com/charmbracelet/bubbles/v2/key"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"seamless/internal/engine"
	"seamless/internal/feed"
	"seamless/internal/stats"
	"seamless/internal/styles"
	"seamless/internal/ticker"
)

// Recorder persists loop events.
type Recorder interface {
	Record(ctx context.Context, runID string, kind stats.Kind, loops int) error
}

type feedMsg struct{ items []feed.Item }

type feedErrMsg struct{ err error }

type recordErrMsg struct{ err error }

// Config builds the root model.
type Config struct {
	Options      ticker.Options
	FeedPattern  string
	RootFontSize float64
	Items        []feed.Item
	// Updates and Errors come from feed.Watch; both may be nil.
	Updates <-chan []feed.Item
	Errors  <-chan error
	// Recorder stores count and stop events for RunID when set.
	Recorder Recorder
	RunID    string
	Logger   *slog.Logger
}

// Model is the root program model.
type Model struct {
	ctx  context.Context
	cfg  Config
	log  *slog.Logger
	keys keyMap
	help help.Model

	header header
	ticker *ticker.Model
	feed   []feed.Item

	width, height int
	loops         int
	stopped       bool
	notice        string
}

// New creates the root model. ctx bounds the stats writes.
func New(ctx context.Context, cfg Config) *Model {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	h := help.New()
	t := styles.CurrentTheme()
	h.Styles = t.S().Help

	m := &Model{
		ctx:  ctx,
		cfg:  cfg,
		log:  log,
		keys: defaultKeys,
		help: h,
		feed: cfg.Items,
	}
	m.header.feed = cfg.FeedPattern
	m.ticker = ticker.New(ticker.Config{
		Options:      cfg.Options,
		Items:        convert(cfg.Items, 0),
		Primary:      ticker.DefaultTemplate(),
		RootFontSize: cfg.RootFontSize,
		Logger:       log,
	})
	return m
}

func convert(items []feed.Item, width int) []ticker.Item {
	out := make([]ticker.Item, len(items))
	for i, it := range items {
		out[i] = ticker.Item{ID: it.ID, Title: it.Title, Body: it.Rendered(max(width, 20))}
	}
	return out
}

func waitFeed(updates <-chan []feed.Item, errs <-chan error) tea.Cmd {
	if updates == nil && errs == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case items, ok := <-updates:
			if !ok {
				// The watcher closes updates before errs; pick up the
				// reason it stopped.
				if errs == nil {
					return nil
				}
				if err, ok := <-errs; ok {
					return feedErrMsg{err: err}
				}
				return nil
			}
			return feedMsg{items: items}
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			return feedErrMsg{err: err}
		}
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.ticker.Init(), waitFeed(m.cfg.Updates, m.cfg.Errors))
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m, m.resize(msg.Width, msg.Height)
	case tea.KeyPressMsg:
		return m, m.handleKey(msg)
	case feedMsg:
		m.feed = msg.items
		m.notice = ""
		cmd := m.ticker.SetItems(convert(msg.items, m.innerWidth()))
		return m, tea.Batch(cmd, waitFeed(m.cfg.Updates, m.cfg.Errors))
	case feedErrMsg:
		m.log.Warn("feed watch failed", "error", msg.err)
		m.notice = msg.err.Error()
		return m, waitFeed(m.cfg.Updates, m.cfg.Errors)
	case recordErrMsg:
		m.log.Warn("failed to record loop event", "error", msg.err)
		return m, nil
	case ticker.CountMsg:
		m.loops = msg.Loops
		m.stopped = false
		return m, m.record(stats.KindCount, msg.Loops)
	case ticker.StopMsg:
		m.stopped = true
		return m, m.record(stats.KindStop, msg.Loops)
	case ticker.MoveMsg:
		return m, nil
	}

	_, cmd := m.ticker.Update(msg)
	return m, cmd
}

func (m *Model) record(kind stats.Kind, loops int) tea.Cmd {
	rec := m.cfg.Recorder
	if rec == nil || m.cfg.RunID == "" {
		return nil
	}
	ctx, runID := m.ctx, m.cfg.RunID
	return func() tea.Msg {
		if err := rec.Record(ctx, runID, kind, loops); err != nil {
			return recordErrMsg{err: err}
		}
		return nil
	}
}

func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	opts := m.ticker.Options()
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.ticker.Close()
		return tea.Quit
	case key.Matches(msg, m.keys.Toggle):
		return m.ticker.SetActive(!opts.Active)
	case key.Matches(msg, m.keys.Reset):
		m.loops = 0
		return m.ticker.Handle().Reset()
	case key.Matches(msg, m.keys.Hover):
		return m.ticker.SetHover(!opts.Hover)
	case key.Matches(msg, m.keys.Wheel):
		m.ticker.SetWheel(!opts.Wheel)
	case key.Matches(msg, m.keys.More):
		return m.ticker.SetLimit(nextLimit(opts.Count, 1))
	case key.Matches(msg, m.keys.Less):
		return m.ticker.SetLimit(nextLimit(opts.Count, -1))
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m.resize(m.width, m.height)
	}
	return nil
}

// nextLimit steps the loop limit. Going down from 1 reaches the infinite
// setting; going up from infinite starts at 1.
func nextLimit(limit, delta int) int {
	if limit == engine.Infinite {
		if delta > 0 {
			return 1
		}
		return engine.Infinite
	}
	next := limit + delta
	if next < 1 {
		return engine.Infinite
	}
	return next
}

// The viewport frame is a rounded border with one column of padding.
const (
	frameLeft = 2
	frameTop  = 1
)

func (m *Model) innerWidth() int {
	return max(m.width-2*frameLeft, 0)
}

func (m *Model) resize(width, height int) tea.Cmd {
	rewrap := width != m.width
	m.width, m.height = width, height
	m.help.Width = width
	m.header.SetWidth(width)

	chrome := 1 + 2*frameTop + 1 + lipgloss.Height(m.help.View(m.keys))
	w, h := m.innerWidth(), max(height-chrome, 0)
	// Title takes the first row.
	m.ticker.SetBounds(frameLeft, 1+frameTop)

	var cmds []tea.Cmd
	if rewrap && hasMarkdown(m.feed) {
		cmds = append(cmds, m.ticker.SetItems(convert(m.feed, w)))
	}
	cmds = append(cmds, m.ticker.SetSize(w, h))
	return tea.Batch(cmds...)
}

func hasMarkdown(items []feed.Item) bool {
	for _, it := range items {
		if it.Format == feed.Markdown {
			return true
		}
	}
	return false
}

func (m *Model) View() string {
	if m.width == 0 {
		return ""
	}
	t := styles.CurrentTheme()
	s := t.S()

	frame := s.Viewport
	if m.ticker.Hovered() {
		frame = s.ViewportHover
	}
	body := frame.Render(m.ticker.View())

	return lipgloss.JoinVertical(lipgloss.Left,
		m.header.View(),
		body,
		m.statusView(),
		m.help.View(m.keys),
	)
}

func (m *Model) statusView() string {
	t := styles.CurrentTheme()
	s := t.S()
	opts := m.ticker.Options()

	state := m.ticker.State()
	var label string
	switch state {
	case engine.Running, engine.WheelStepping:
		label = s.StatusRunning.Render("● " + state.String())
	case engine.HoverPaused:
		label = s.StatusPaused.Render("◐ " + state.String())
	default:
		label = s.StatusStopped.Render("○ " + state.String())
	}

	limit := "∞"
	if opts.Count != engine.Infinite {
		limit = fmt.Sprint(opts.Count)
	}
	parts := []string{
		label,
		fmt.Sprintf("loops %d/%s", m.loops, limit),
		fmt.Sprintf("%d items", len(m.ticker.Items())),
		string(opts.Direction),
	}
	if opts.Hover {
		parts = append(parts, "hover")
	}
	if opts.Wheel {
		parts = append(parts, "wheel")
	}
	line := " " + strings.Join(parts, s.Subtle.Render(" · "))
	if m.notice != "" {
		line += "  " + lipgloss.NewStyle().Foreground(t.Error).Render(m.notice)
	}
	return lipgloss.NewStyle().MaxWidth(max(m.width, 1)).Render(line)
}
