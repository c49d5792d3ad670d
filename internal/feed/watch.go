package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// settleDelay lets editors finish writing before the feed is reloaded.
const settleDelay = 100 * time.Millisecond

// Watch reloads the feed whenever a file matching pattern changes and sends
// the new items. Both channels close when ctx is done or the watcher fails
// to start; the error channel carries the reason in the latter case.
func Watch(ctx context.Context, pattern string, log *slog.Logger) (<-chan []Item, <-chan error) {
	if log == nil {
		log = slog.Default()
	}
	out := make(chan []Item)
	errs := make(chan error, 1)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		errs <- fmt.Errorf("failed to create feed watcher: %w", err)
		close(out)
		close(errs)
		return out, errs
	}

	if err := addDirs(watcher, pattern); err != nil {
		watcher.Close()
		errs <- err
		close(out)
		close(errs)
		return out, errs
	}

	go func() {
		defer close(errs)
		defer close(out)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
					continue
				}
				if event.Op&fsnotify.Create != 0 {
					if st, err := os.Stat(event.Name); err == nil && st.IsDir() {
						_ = watcher.Add(event.Name)
						continue
					}
				}
				match, err := doublestar.PathMatch(filepath.Clean(pattern), filepath.Clean(event.Name))
				if err != nil || !match {
					continue
				}

				if !sleep(ctx, settleDelay) {
					return
				}
				drain(watcher.Events)

				items, err := Load(pattern)
				if errors.Is(err, ErrNoMatches) {
					// Every file is gone; an empty feed stops the ticker.
					items, err = nil, nil
				}
				if err != nil {
					log.Warn("feed reload failed", "pattern", pattern, "error", err)
					continue
				}
				log.Debug("feed reloaded", "pattern", pattern, "items", len(items))
				select {
				case out <- items:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn("feed watcher error", "error", err)
			}
		}
	}()
	return out, errs
}

// addDirs watches the static base of pattern and every directory beneath
// it, since fsnotify is not recursive.
func addDirs(w *fsnotify.Watcher, pattern string) error {
	base, _ := doublestar.SplitPattern(filepath.ToSlash(pattern))
	base = filepath.FromSlash(base)
	return filepath.WalkDir(base, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// drain drops events queued while settling; the reload picks them up.
func drain(ch <-chan fsnotify.Event) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}
