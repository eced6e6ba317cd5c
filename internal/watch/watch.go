// Package watch reports changes to files that are open in the viewer.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches the parent directories of added files so that editors
// saving through a rename are still seen.
type Watcher struct {
	fs      *fsnotify.Watcher
	logger  *slog.Logger
	changes chan string
	cancel  context.CancelFunc
	done    chan struct{}

	mu    sync.Mutex
	files map[string]struct{}
	dirs  map[string]int
}

// New starts a watcher. Close stops it and closes Changes.
func New(logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("new watcher: %w", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		fs:      fw,
		logger:  logger,
		changes: make(chan string, 16),
		cancel:  cancel,
		done:    make(chan struct{}),
		files:   map[string]struct{}{},
		dirs:    map[string]int{},
	}
	go w.run(ctx)
	return w, nil
}

// Changes delivers the absolute path of a watched file after it was written
// or recreated. The channel is closed by Close.
func (w *Watcher) Changes() <-chan string { return w.changes }

// Add starts reporting changes to path.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.files[abs]; ok {
		return nil
	}
	dir := filepath.Dir(abs)
	if w.dirs[dir] == 0 {
		if err := w.fs.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	w.dirs[dir]++
	w.files[abs] = struct{}{}
	return nil
}

// Remove stops reporting changes to path.
func (w *Watcher) Remove(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.files[abs]; !ok {
		return nil
	}
	delete(w.files, abs)
	dir := filepath.Dir(abs)
	w.dirs[dir]--
	if w.dirs[dir] > 0 {
		return nil
	}
	delete(w.dirs, dir)
	if err := w.fs.Remove(dir); err != nil {
		return fmt.Errorf("unwatch %s: %w", dir, err)
	}
	return nil
}

// Watching reports whether path is currently watched.
func (w *Watcher) Watching(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.files[abs]
	return ok
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	w.cancel()
	err := w.fs.Close()
	<-w.done
	return err
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)
	defer close(w.changes)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			path := filepath.Clean(event.Name)
			w.mu.Lock()
			_, watched := w.files[path]
			w.mu.Unlock()
			if !watched {
				continue
			}
			select {
			case w.changes <- path:
			case <-ctx.Done():
				return
			default:
				w.logger.Debug("change dropped, consumer busy", slog.String("path", path))
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", slog.Any("error", err))
		}
	}
}
