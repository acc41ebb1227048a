// Package watcher reports changes to files in a directory, debounced.
// The TUI uses it to pick up config edits made by another process.
package watcher

import (
	"context"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDelay coalesces a burst of events, such as an editor's write
// followed by a rename, into one callback.
const debounceDelay = 150 * time.Millisecond

// Watcher watches one directory. Only events on the named files trigger
// the callback; the directory is watched so atomic replaces are seen.
type Watcher struct {
	fsw      *fsnotify.Watcher
	names    []string
	delay    time.Duration
	mu       sync.Mutex
	timer    *time.Timer
	callback func()
}

// New watches dir for changes to the files called names. An empty names
// list matches every file.
func New(dir string, names []string, callback func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return &Watcher{fsw: fsw, names: names, delay: debounceDelay, callback: callback}, nil
}

// Run is the watch loop. It blocks until ctx is canceled or the watcher
// is closed. Watcher errors go to errFn when it is non-nil.
func (w *Watcher) Run(ctx context.Context, errFn func(error)) {
	for {
		select {
		case <-ctx.Done():
			w.stop()
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				w.stop()
				return
			}
			if w.relevant(ev) {
				w.debounce()
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				w.stop()
				return
			}
			if errFn != nil {
				errFn(err)
			}
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Rename) {
		return false
	}
	return len(w.names) == 0 || slices.Contains(w.names, filepath.Base(ev.Name))
}

// Close stops the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

func (w *Watcher) debounce() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.delay, w.callback)
}
