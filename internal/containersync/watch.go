package containersync

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch re-runs the sync whenever a manifest file changes in the source directory, until ctx
// ends. Bursts of events are coalesced by the debounce window. onRun may be nil.
func (s *Syncer) Watch(ctx context.Context, onRun func(Report, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	for _, dir := range s.watchDirs() {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	s.logger.Info("Watching source files", "dir", s.manifest.SourceDir, "files", len(s.manifest.Files))

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if s.shouldResync(event) {
				s.logger.Debug("Source changed", "file", event.Name, "op", event.Op.String())
				debounce = time.After(s.debounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("Watcher error", "error", err)
		case <-debounce:
			debounce = nil
			report, err := s.Run(ctx)
			if onRun != nil {
				onRun(report, err)
			}
		}
	}
}

// watchDirs covers the source dir and every parent of a nested manifest file.
func (s *Syncer) watchDirs() []string {
	seen := map[string]bool{}
	var dirs []string
	for _, f := range s.manifest.Files {
		dir := filepath.Dir(filepath.Join(s.manifest.SourceDir, f))
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

func (s *Syncer) shouldResync(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	rel, err := filepath.Rel(s.manifest.SourceDir, event.Name)
	if err != nil {
		return false
	}
	for _, f := range s.manifest.Files {
		if filepath.Clean(f) == rel {
			return true
		}
	}
	return false
}
