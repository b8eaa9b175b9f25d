package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/chazu/brushwork/pkg/logging"
	"github.com/fsnotify/fsnotify"
)

// settle is how long a file must stay quiet before it is re-run. Editors
// often write a file in several steps.
const settle = 100 * time.Millisecond

// watch calls onChange every time the file at path is written, until ctx
// is done. The parent directory is watched so that editors replacing the
// file by rename are noticed too.
func watch(ctx context.Context, path string, onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()

	target, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	if err := w.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	log := logging.For("watch")
	log.Info("watching", "file", path)

	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-w.Events:
			if !ok {
				return nil
			}
			name, err := filepath.Abs(e.Name)
			if err != nil || name != target {
				continue
			}
			if e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				fire = time.After(settle)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error", "err", err)
		case <-fire:
			fire = nil
			log.Debug("file changed", "file", path)
			onChange()
		}
	}
}
