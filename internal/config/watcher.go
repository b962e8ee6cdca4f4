package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/lslview/lslview/internal/logging"
)

const watchDebounce = 1500 * time.Millisecond

// Watcher watches the config file and re-applies logging levels when it
// changes, so log verbosity can be tuned without a restart.
type Watcher struct {
	path    string
	logger  *slog.Logger
	watcher *fsnotify.Watcher
	cancel  context.CancelFunc
}

// NewWatcher creates a config file watcher.
func NewWatcher(path string, logger *slog.Logger) *Watcher {
	return &Watcher{path: path, logger: logger}
}

// Start begins watching. Missing config files are not an error; the
// watcher simply stays idle until Stop.
func (w *Watcher) Start() error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fw.Add(w.path); err != nil {
		fw.Close()
		w.logger.Debug("Config file not watchable", "path", w.path, "error", err)
		return nil
	}
	w.watcher = fw

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.logger.Info("Config watcher started", "path", w.path)
	go w.watch(ctx)
	return nil
}

// Stop stops watching.
func (w *Watcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	if w.watcher != nil {
		w.watcher.Close()
	}
}

func (w *Watcher) watch(ctx context.Context) {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			// Editors often replace the file, so watch creates too.
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				if timer != nil {
					timer.Stop()
				}
				timer = time.NewTimer(watchDebounce)
				timerC = timer.C
			}

		case <-timerC:
			timerC = nil
			cfg := LoadLoggingConfig(w.path)
			logging.ApplyLevels(cfg)
			w.logger.Info("Logging levels reloaded", "level", cfg.Level)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Config watcher error", "error", err)
		}
	}
}
