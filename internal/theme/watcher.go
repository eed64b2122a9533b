package theme

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the burst of events editors produce on save.
const DefaultDebounce = 150 * time.Millisecond

// Watcher watches the user themes directory and reports stylesheet changes.
// Any .css file counts, since themes may @import each other.
type Watcher struct {
	dir      string
	logger   *slog.Logger
	debounce time.Duration
}

// NewWatcher creates a watcher for the themes directory dir.
func NewWatcher(dir string, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		dir:      dir,
		logger:   logger,
		debounce: DefaultDebounce,
	}
}

// SetDebounce sets how long the watcher waits after the last change before
// reporting it.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string {
	return w.dir
}

// Run watches until ctx is cancelled, calling onChange once per settled
// burst of stylesheet writes, creations, removals or renames.
func (w *Watcher) Run(ctx context.Context, onChange func()) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	w.logger.Debug("theme watcher started", "dir", w.dir)

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("theme watcher stopped")
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !strings.EqualFold(filepath.Ext(event.Name), ".css") {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				timer.Reset(w.debounce)
			}

		case <-timer.C:
			w.logger.Info("theme files changed, reloading", "dir", w.dir)
			if onChange != nil {
				onChange()
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("theme watcher error", "error", err)
		}
	}
}
