// Package watch notifies about changes to a single file on disk.
package watch

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Callback is invoked after the watched file settles. removed is true when
// the file no longer exists; otherwise timestamp is its mtime in seconds.
type Callback func(timestamp int64, removed bool)

// DefaultDebounce coalesces the burst of events editors produce per save.
const DefaultDebounce = 100 * time.Millisecond

// Watch observes path until ctx is cancelled. The parent directory is
// watched rather than the file so that editors which save by writing a
// temp file and renaming it over the original keep being tracked.
func Watch(ctx context.Context, path string, debounce time.Duration, logger *slog.Logger, cb Callback) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	path = filepath.Clean(path)
	dir := filepath.Dir(path)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("path", path))

	var timer *time.Timer
	var fire <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			fire = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	lastRemoved := false

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-fire:
			info, statErr := os.Stat(path)
			switch {
			case errors.Is(statErr, os.ErrNotExist):
				if lastRemoved {
					continue
				}
				lastRemoved = true
				logger.Debug("watcher: removed", slog.String("path", path))
				cb(0, true)
			case statErr != nil:
				logger.Warn("watcher: stat failed", slog.String("path", path), slog.String("error", statErr.Error()))
			default:
				ts := info.ModTime().Unix()
				lastRemoved = false
				logger.Debug("watcher: changed", slog.String("path", path), slog.Int64("timestamp", ts))
				cb(ts, false)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			// Chmod is kept: touch(1) only changes attributes.
			if filepath.Clean(ev.Name) != path {
				continue
			}
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
