// Package watcher maintains at most one live recursive filesystem watch
// and surfaces every modification of a regular file as a path on an
// outbound channel.
package watcher

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

var (
	// ErrNotFound is returned by Start when the directory does not exist.
	ErrNotFound = errors.New("directory not found")
	// ErrNotDirectory is returned by Start when the path is not a directory.
	ErrNotDirectory = errors.New("path is not a directory")
	// ErrNoRecovery is returned by Recover when no previous watch is on record.
	ErrNoRecovery = errors.New("no previous watch to recover")
)

// Watcher owns the single native watch handle. Start replaces any previous
// watch, so at most one is ever active. Safe for concurrent use.
type Watcher struct {
	mu       sync.Mutex
	fsw      *fsnotify.Watcher
	out      chan<- string
	dirs     []string
	pending  map[string]*time.Timer
	watching atomic.Bool
	debounce time.Duration
	log      *slog.Logger
}

// New returns an idle Watcher. Rapid-fire modifications of the same path
// are coalesced into one event per debounce window.
func New(log *slog.Logger, debounce time.Duration) *Watcher {
	return &Watcher{
		pending:  make(map[string]*time.Timer),
		debounce: debounce,
		log:      log.With("component", "watcher"),
	}
}

// Start begins watching dir recursively, publishing modified-file paths to
// out. Any previously active watch is torn down first. The caller keeps
// ownership of out and may close it once Stop has returned.
func (w *Watcher) Start(dir string, out chan<- string) error {
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, dir)
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}

	w.Stop()

	w.log.Info("starting file watcher", "dir", dir)

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := w.addTree(fsw, dir); err != nil {
		fsw.Close()
		return err
	}

	w.mu.Lock()
	w.fsw = fsw
	w.out = out
	w.dirs = []string{dir}
	w.pending = make(map[string]*time.Timer)
	w.mu.Unlock()
	w.watching.Store(true)

	go w.loop(fsw)
	return nil
}

// Stop tears down the active watch. Idempotent; a no-op when idle. After
// Stop returns no further paths are published.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.watching.Load() {
		w.mu.Unlock()
		w.log.Debug("file watcher is not running")
		return
	}
	w.log.Info("stopping file watcher")
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
	fsw := w.fsw
	w.fsw = nil
	w.out = nil
	w.dirs = nil
	w.watching.Store(false)
	w.mu.Unlock()

	if err := fsw.Close(); err != nil {
		w.log.Warn("error closing native watcher", "error", err)
	}
}

// IsWatching reports whether a watch is active.
func (w *Watcher) IsWatching() bool {
	return w.watching.Load()
}

// WatchedDirectories returns a snapshot of the currently watched roots.
func (w *Watcher) WatchedDirectories() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.dirs)
}

// Recover restarts the watch against the previously recorded directory and
// channel. It fails with ErrNoRecovery when nothing is on record, such as
// after Stop.
func (w *Watcher) Recover() error {
	w.log.Warn("attempting to recover file watcher")

	w.mu.Lock()
	out := w.out
	dirs := slices.Clone(w.dirs)
	w.mu.Unlock()

	if out == nil {
		return ErrNoRecovery
	}
	for _, dir := range dirs {
		if err := w.Start(dir, out); err != nil {
			return err
		}
	}
	w.log.Info("file watcher recovered")
	return nil
}

// addTree registers dir and every subdirectory below it with fsw.
func (w *Watcher) addTree(fsw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := fsw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		w.log.Debug("watching directory", "dir", path)
		return nil
	})
}

// loop drains native events until fsw is closed. Native errors are logged
// and never stop the watch.
func (w *Watcher) loop(fsw *fsnotify.Watcher) {
	for {
		select {
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(fsw, ev)
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.log.Error("file watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(fsw *fsnotify.Watcher, ev fsnotify.Event) {
	if ev.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addTree(fsw, ev.Name); err != nil {
				w.log.Warn("cannot watch new directory", "dir", ev.Name, "error", err)
			}
			return
		}
	}
	if !ev.Op.Has(fsnotify.Write) {
		return
	}
	info, err := os.Stat(ev.Name)
	if err != nil || !info.Mode().IsRegular() {
		return
	}
	w.log.Debug("file modified", "file", ev.Name)
	w.scheduleEmit(ev.Name)
}

// scheduleEmit resets the debounce timer for path, so a burst of writes
// yields a single published event.
func (w *Watcher) scheduleEmit(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.watching.Load() || w.out == nil {
		return
	}
	if t, ok := w.pending[path]; ok {
		t.Stop()
	}
	w.pending[path] = time.AfterFunc(w.debounce, func() { w.emit(path) })
}

// emit publishes path without blocking. A full channel means the consumer
// has fallen behind; the event is dropped with a warning rather than
// stalling the watch.
func (w *Watcher) emit(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.pending, path)
	if w.out == nil {
		return
	}
	select {
	case w.out <- path:
	default:
		w.log.Warn("event channel full, dropping change event", "file", path)
	}
}
