// Package watch re-runs an action whenever a file changes.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/sreevatsank1999/zenphoton/internal/logger"
)

// DefaultDebounce groups the bursts of events editors produce on save.
const DefaultDebounce = 200 * time.Millisecond

// Watcher watches one file.
type Watcher struct {
	Path     string
	Debounce time.Duration
	Log      *zap.Logger
}

// New returns a Watcher for path with default settings.
func New(path string) *Watcher {
	return &Watcher{
		Path:     path,
		Debounce: DefaultDebounce,
		Log:      logger.Named("watch"),
	}
}

// Run calls fn after every change to the file until ctx is cancelled. Calls
// never overlap. Errors from fn are logged and watching continues.
//
// The parent directory is watched rather than the file so that editors which
// save by renaming a temporary file are still seen.
func (w *Watcher) Run(ctx context.Context, fn func(context.Context) error) error {
	target, err := filepath.Abs(w.Path)
	if err != nil {
		return err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(target), err)
	}
	w.Log.Info("watching", zap.String("path", target))

	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.Log.Debug("change", zap.String("op", event.Op.String()))
			timer.Reset(w.Debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.Log.Warn("watch error", zap.Error(err))
		case <-timer.C:
			if err := fn(ctx); err != nil {
				w.Log.Error("action failed", zap.Error(err))
			}
		}
	}
}
