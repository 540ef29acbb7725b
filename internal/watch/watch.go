// Package watch reports external modifications to the store directory.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"
)

// Watch watches dir until ctx is done, invoking notify for every fsnotify
// event on a JSON file. Whole-file rewrites and editors produce event bursts;
// a token bucket drops the excess instead of flooding the notifier.
func Watch(ctx context.Context, dir string, notify func(fsnotify.Event)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() {
		_ = w.Close()
	}()
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	lim := rate.NewLimiter(rate.Every(100*time.Millisecond), 10)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Ext(ev.Name) != ".json" {
				continue
			}
			if !lim.Allow() {
				continue
			}
			notify(ev)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.WarnContext(ctx, "Error watching store directory", "err", err)
		}
	}
}
