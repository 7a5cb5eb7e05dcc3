// Package view_config internal/service/view_config/watcher.go
package view_config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDuration groups the bursts of events editors produce on save.
const debounceDuration = 300 * time.Millisecond

// StartWatcher reloads the registry when a view file of the directory changes.
// The watcher stops when ctx is done.
func (r *Registry) StartWatcher(ctx context.Context) error {
	if r.dir == "" {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := watcher.Add(filepath.Clean(r.dir)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch views directory %q: %w", r.dir, err)
	}
	slog.Info("watching views directory", "dir", r.dir)

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				r.stopTimers()
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				r.handleFsEvent(event)
			case errWatch, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Error("views watcher error", "error", errWatch)
			}
		}
	}()
	return nil
}

func (r *Registry) handleFsEvent(event fsnotify.Event) {
	path := filepath.Clean(event.Name)
	if !isViewFile(path) {
		return
	}
	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) &&
		!event.Op.Has(fsnotify.Remove) && !event.Op.Has(fsnotify.Rename) {
		return
	}

	r.eventTimersMu.Lock()
	defer r.eventTimersMu.Unlock()
	if timer, exists := r.eventTimers[path]; exists {
		timer.Stop()
	}
	r.eventTimers[path] = time.AfterFunc(debounceDuration, func() {
		r.eventTimersMu.Lock()
		delete(r.eventTimers, path)
		r.eventTimersMu.Unlock()

		if _, err := r.Reload(); err != nil {
			slog.Error("reload screen definitions", "file", path, "error", err)
		}
	})
}

func (r *Registry) stopTimers() {
	r.eventTimersMu.Lock()
	defer r.eventTimersMu.Unlock()
	for path, timer := range r.eventTimers {
		timer.Stop()
		delete(r.eventTimers, path)
	}
}
