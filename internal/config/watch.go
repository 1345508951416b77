package config

import (
	"context"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	perrors "github.com/matzehuels/panels/pkg/errors"
)

// Watch reloads the config file at path (Path() when empty) whenever it is
// written, created or renamed into place, and calls onChange with the new
// configuration. Reloads that fail validation are logged and skipped.
// Watch blocks until ctx is done.
//
// The parent directory is watched rather than the file, so editors that
// replace the file atomically are seen.
func Watch(ctx context.Context, path string, logger *log.Logger, onChange func(Config, fsnotify.Event)) error {
	if path == "" {
		path = Path()
	}
	if logger == nil {
		logger = log.Default()
	}
	path = filepath.Clean(path)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return perrors.Wrap(perrors.ErrCodeInternal, err, "create config watcher")
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(path)); err != nil {
		return perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "watch %s", filepath.Dir(path))
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(e.Name) != path || !e.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			logger.Debug("config change detected", "op", e.Op.String(), "file", e.Name)
			cfg, err := Load(path)
			if err != nil {
				logger.Warn("config reload failed", "file", path, "err", err)
				continue
			}
			onChange(cfg, e)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("config watcher error", "err", err)
		}
	}
}
