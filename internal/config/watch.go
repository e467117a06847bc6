package config

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/vango-dev/dnd/internal/errors"
)

// Watch calls fn with the reloaded configuration each time the file at path
// is written, until ctx is done. Edits that fail to parse or validate are
// logged and skipped.
func Watch(ctx context.Context, path string, fn func(*Config)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.New("E120").Wrap(err)
	}

	// Editors often save by rename, so watch the directory and filter.
	path = filepath.Clean(path)
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return errors.New("E120").
			WithDetail("Cannot watch " + filepath.Dir(path)).
			Wrap(err)
	}

	logger := slog.Default().With("component", "config")
	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != path || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
					continue
				}
				cfg, err := LoadFile(path)
				if err != nil {
					logger.Warn("config reload failed", "path", path, "error", err)
					continue
				}
				if err := cfg.Validate(); err != nil {
					logger.Warn("reloaded config invalid", "path", path, "error", err)
					continue
				}
				logger.Info("config reloaded", "path", path)
				fn(cfg)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Warn("config watcher error", "error", err)
			}
		}
	}()
	return nil
}
