package content

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long Watch waits for a burst of file events to
// settle before calling back.
const DefaultDebounce = 300 * time.Millisecond

// Watch calls fn after files below dir change, coalescing bursts of events
// that arrive within debounce of each other. Directories created while
// watching are added. Watch blocks until ctx is done.
func Watch(ctx context.Context, dir string, debounce time.Duration, fn func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := addTree(watcher, dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				// a new subdirectory needs its own watch
				_ = addTree(watcher, event.Name)
			}
			if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
				continue
			}
			if pending && !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(debounce)
			pending = true
		case <-timer.C:
			pending = false
			fn()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}
}

func addTree(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		return w.Add(path)
	})
}

// WatchAndImport re-runs im.Import whenever its source directory changes and
// passes each report to done. It blocks until ctx is done.
func WatchAndImport(ctx context.Context, im *Importer, done func(Report)) error {
	return Watch(ctx, im.Dir(), DefaultDebounce, func() {
		report, err := im.Import(ctx)
		if err != nil {
			im.log.Warnf("re-import failed: %v", err)
			return
		}
		if done != nil {
			done(report)
		}
	})
}
