// Package watch reloads the collection when a local export file changes.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses the burst of events an editor or exporter
// produces while writing a file.
const DefaultDebounce = 500 * time.Millisecond

// Watcher calls OnChange once a watched file has been quiet for the
// debounce interval.
//
// Parent directories are watched rather than the files themselves, so a file
// that is replaced by rename (the usual way spreadsheet tools save) is still
// seen, and a file that does not exist yet is picked up when it appears.
type Watcher struct {
	files    map[string]bool
	debounce time.Duration
	onChange func(ctx context.Context, file string)

	watcher *fsnotify.Watcher
}

// New creates a watcher for files. onChange runs on the watcher goroutine.
func New(files []string, debounce time.Duration, onChange func(ctx context.Context, file string)) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &Watcher{
		files:    make(map[string]bool, len(files)),
		debounce: debounce,
		onChange: onChange,
		watcher:  fw,
	}

	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			fw.Close()
			return nil, fmt.Errorf("resolve %s: %w", f, err)
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}

	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	return w, nil
}

// Run processes events until ctx is done, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) {
	defer w.watcher.Close()

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			name, err := filepath.Abs(event.Name)
			if err != nil || !w.files[name] {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				pending[name] = time.Now()
			}

		case now := <-ticker.C:
			for file, last := range pending {
				if now.Sub(last) >= w.debounce {
					delete(pending, file)
					slog.Info("collection file changed", "file", file)
					w.onChange(ctx, file)
				}
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("file watch error", "error", err)
		}
	}
}
