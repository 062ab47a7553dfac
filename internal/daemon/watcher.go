package daemon

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"time"
)

type watcherConfig struct {
	Path     string
	Interval time.Duration
	Logger   *slog.Logger
}

// configWatcher polls the config file and reloads when its modification
// time or size changes.
type configWatcher struct {
	path     string
	interval time.Duration
	reload   func() error
	logger   *slog.Logger

	stat    func(string) (fs.FileInfo, error)
	modTime time.Time
	size    int64
	present bool
}

func newConfigWatcher(cfg watcherConfig, reload func() error) *configWatcher {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	w := &configWatcher{
		path:     cfg.Path,
		interval: interval,
		reload:   reload,
		logger:   logger,
		stat:     os.Stat,
	}
	w.snapshot()
	return w
}

// Run polls until ctx is cancelled.
func (w *configWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Debug("config watcher started", "path", w.path, "interval", w.interval)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.check()
		}
	}
}

// snapshot records the current file state and reports whether it differs
// from the previous one.
func (w *configWatcher) snapshot() bool {
	info, err := w.stat(w.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			w.logger.Warn("config watcher: stat failed", "path", w.path, "error", err)
			return false
		}
		changed := w.present
		w.present = false
		w.modTime = time.Time{}
		w.size = 0
		return changed
	}

	changed := !w.present || !info.ModTime().Equal(w.modTime) || info.Size() != w.size
	w.present = true
	w.modTime = info.ModTime()
	w.size = info.Size()
	return changed
}

func (w *configWatcher) check() {
	defer func() {
		if err := recover(); err != nil {
			w.logger.Error("config watcher panic recovered", "error", err)
		}
	}()

	if !w.snapshot() {
		return
	}

	w.logger.Info("config file changed, reloading", "path", w.path)
	if err := w.reload(); err != nil {
		w.logger.Warn("config reload failed, keeping previous config", "path", w.path, "error", err)
	}
}
