package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kb-dk/ds-cumulus-export/internal/logger"
)

// watchDebounce collapses the burst of events an editor produces on save.
const watchDebounce = 500 * time.Millisecond

// mappingChanged reports whether event modifies the file at path.
func mappingChanged(event fsnotify.Event, path string) bool {
	if filepath.Clean(event.Name) != filepath.Clean(path) {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

// watchMapping runs fn once and again after every change of the mapping
// file, until ctx is done. A failing run is logged and the watch goes on.
func watchMapping(ctx context.Context, path string, fn func() error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors often replace the file on save.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}

	run := func() {
		if err := fn(); err != nil {
			logger.Error("%v", err)
		}
	}
	run()

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if mappingChanged(event, path) {
				logger.Debug("mapping changed: %s", event)
				debounce = time.After(watchDebounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher: %v", err)
		case <-debounce:
			debounce = nil
			logger.Info("mapping %s changed, exporting again", path)
			run()
		}
	}
}
