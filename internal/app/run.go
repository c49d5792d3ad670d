package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"

	"seamless/config"
	"seamless/internal/feed"
	"seamless/internal/stats"
)

// Deps are the collaborators Run wires together.
type Deps struct {
	Config config.File
	// Store records loop events; nil skips recording.
	Store  *stats.Store
	Logger *slog.Logger
}

// wheelGap is the minimum spacing of wheel events let into the queue.
const wheelGap = 8 * time.Millisecond

// newWheelFilter drops wheel events arriving faster than wheelGap so a fast
// flick cannot flood the event queue.
func newWheelFilter() func(tea.Model, tea.Msg) tea.Msg {
	var last time.Time
	return func(_ tea.Model, msg tea.Msg) tea.Msg {
		if _, ok := msg.(tea.MouseWheelMsg); ok {
			now := time.Now()
			if !last.IsZero() && now.Sub(last) < wheelGap {
				return nil
			}
			last = now
		}
		return msg
	}
}

// Run loads the feed and runs the full-screen program until the user quits
// or ctx is cancelled.
func Run(ctx context.Context, d Deps) error {
	log := d.Logger
	if log == nil {
		log = slog.Default()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pattern := d.Config.FeedPattern()
	items, err := feed.Load(pattern)
	if err != nil && !errors.Is(err, feed.ErrNoMatches) {
		return err
	}
	if len(items) == 0 {
		log.Warn("feed is empty", "pattern", pattern)
	}

	cfg := Config{
		Options:      d.Config.Ticker,
		FeedPattern:  d.Config.Feed,
		RootFontSize: d.Config.RootFontSize,
		Items:        items,
		Logger:       log,
	}
	if d.Config.Ticker.IsWatch {
		cfg.Updates, cfg.Errors = feed.Watch(ctx, pattern, log)
	}
	if d.Store != nil {
		runID, err := d.Store.StartRun(ctx, d.Config.Feed, string(d.Config.Ticker.Direction))
		if err != nil {
			return fmt.Errorf("failed to start run: %w", err)
		}
		cfg.Recorder, cfg.RunID = d.Store, runID
		defer func() {
			// The run context is gone by now.
			if err := d.Store.EndRun(context.Background(), runID); err != nil {
				log.Warn("failed to end run", "error", err)
			}
		}()
	}

	p := tea.NewProgram(
		New(ctx, cfg),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithFilter(newWheelFilter()),
	)
	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	_, err = p.Run()
	return err
}
