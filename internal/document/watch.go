package document

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Reload drops the cached template so the next render reads it from disk.
func (a *Assembler) Reload() {
	a.mu.Lock()
	a.template = nil
	a.mu.Unlock()
}

// WatchTemplate reloads the template whenever the file changes on disk,
// until ctx is done. The parent directory is watched because spreadsheet
// editors save by replacing the file.
func (a *Assembler) WatchTemplate(ctx context.Context) error {
	if a.TemplatePath == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("template watcher: %w", err)
	}

	target := filepath.Clean(a.TemplatePath)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target || !isContentChange(event.Op) {
					continue
				}
				a.Reload()
				slog.Info("report template changed, reloading", "path", target, "op", event.Op.String())

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("template watcher error", "error", err)
			}
		}
	}()

	return nil
}

func isContentChange(op fsnotify.Op) bool {
	return op.Has(fsnotify.Create) || op.Has(fsnotify.Write) ||
		op.Has(fsnotify.Remove) || op.Has(fsnotify.Rename)
}
