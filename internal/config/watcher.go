package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the burst of events editors produce on save.
const DefaultDebounce = 150 * time.Millisecond

// Watcher watches a config file and reloads it when it changes.
type Watcher struct {
	path     string
	logger   *slog.Logger
	debounce time.Duration
}

// NewWatcher creates a watcher for the config file at path.
func NewWatcher(path string, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		path:     path,
		logger:   logger,
		debounce: DefaultDebounce,
	}
}

// SetDebounce sets how long the watcher waits after the last change before
// reloading.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// Path returns the watched file.
func (w *Watcher) Path() string {
	return w.path
}

// Run watches until ctx is cancelled. Every successful reload is passed to
// onReload; parse or validation failures go to onError (which may be nil)
// and the previous configuration stays in effect.
func (w *Watcher) Run(ctx context.Context, onReload func(*Config), onError func(error)) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fw.Close()

	// Watch the directory containing the file (more reliable for writes)
	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	w.logger.Debug("config watcher started", "path", w.path)

	filename := filepath.Base(w.path)
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("config watcher stopped")
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			// Only care about our file
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				timer.Reset(w.debounce)
			}

		case <-timer.C:
			cfg, err := w.reload()
			if err != nil {
				w.logger.Warn("config file changed but reload failed", "path", w.path, "error", err)
				if onError != nil {
					onError(err)
				}
				continue
			}
			w.logger.Info("config reloaded", "path", w.path, "popups", len(cfg.Popups))
			if onReload != nil {
				onReload(cfg)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("config watcher error", "error", err)
		}
	}
}

func (w *Watcher) reload() (*Config, error) {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data, FormatForPath(w.path))
}
