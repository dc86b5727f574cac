package watcher

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func discardLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// tmpDir returns a temp directory with symlinks resolved, so paths coming
// back from the native watcher compare equal to ours.
func tmpDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("resolve temp dir: %v", err)
	}
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func waitEvent(t *testing.T, ch <-chan string, timeout time.Duration) string {
	t.Helper()
	select {
	case path := <-ch:
		return path
	case <-time.After(timeout):
		t.Fatal("timed out waiting for a change event")
		return ""
	}
}

func expectQuiet(t *testing.T, ch <-chan string, window time.Duration) {
	t.Helper()
	select {
	case path := <-ch:
		t.Fatalf("unexpected change event for %s", path)
	case <-time.After(window):
	}
}

func TestNewWatcherIsIdle(t *testing.T) {
	w := New(discardLog(), 50*time.Millisecond)
	if w.IsWatching() {
		t.Fatal("new watcher should not be watching")
	}
	if dirs := w.WatchedDirectories(); len(dirs) != 0 {
		t.Fatalf("watched dirs = %v, want none", dirs)
	}
}

func TestStartMissingDirectory(t *testing.T) {
	w := New(discardLog(), 50*time.Millisecond)
	ch := make(chan string, 8)

	err := w.Start(filepath.Join(t.TempDir(), "nope"), ch)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if w.IsWatching() {
		t.Fatal("failed start must leave the watcher idle")
	}
}

func TestStartNotADirectory(t *testing.T) {
	dir := tmpDir(t)
	file := filepath.Join(dir, "plain.txt")
	writeFile(t, file, "hello")

	w := New(discardLog(), 50*time.Millisecond)
	err := w.Start(file, make(chan string, 8))
	if !errors.Is(err, ErrNotDirectory) {
		t.Fatalf("err = %v, want ErrNotDirectory", err)
	}
	if w.IsWatching() {
		t.Fatal("failed start must leave the watcher idle")
	}
}

func TestStartAndStop(t *testing.T) {
	dir := tmpDir(t)
	w := New(discardLog(), 50*time.Millisecond)
	ch := make(chan string, 8)

	if err := w.Start(dir, ch); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(w.Stop)

	if !w.IsWatching() {
		t.Fatal("expected watching state after start")
	}
	dirs := w.WatchedDirectories()
	if len(dirs) != 1 || dirs[0] != dir {
		t.Fatalf("watched dirs = %v, want [%s]", dirs, dir)
	}

	w.Stop()
	if w.IsWatching() {
		t.Fatal("expected idle state after stop")
	}
	if dirs := w.WatchedDirectories(); len(dirs) != 0 {
		t.Fatalf("watched dirs = %v, want none after stop", dirs)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	w := New(discardLog(), 50*time.Millisecond)

	w.Stop()
	if w.IsWatching() {
		t.Fatal("stop on an idle watcher must leave it idle")
	}

	dir := tmpDir(t)
	if err := w.Start(dir, make(chan string, 8)); err != nil {
		t.Fatalf("start: %v", err)
	}
	w.Stop()
	w.Stop()
	if w.IsWatching() {
		t.Fatal("double stop must leave the watcher idle")
	}
}

func TestStartReplacesPreviousWatch(t *testing.T) {
	first := tmpDir(t)
	second := tmpDir(t)
	w := New(discardLog(), 50*time.Millisecond)
	ch := make(chan string, 8)

	if err := w.Start(first, ch); err != nil {
		t.Fatalf("start first: %v", err)
	}
	if err := w.Start(second, ch); err != nil {
		t.Fatalf("start second: %v", err)
	}
	t.Cleanup(w.Stop)

	dirs := w.WatchedDirectories()
	if len(dirs) != 1 || dirs[0] != second {
		t.Fatalf("watched dirs = %v, want exactly [%s]", dirs, second)
	}

	// Only the second directory is live now.
	writeFile(t, filepath.Join(first, "stale.py"), "print('old')")
	expectQuiet(t, ch, 400*time.Millisecond)

	writeFile(t, filepath.Join(second, "fresh.py"), "print('new')")
	got := waitEvent(t, ch, 2*time.Second)
	if filepath.Base(got) != "fresh.py" {
		t.Fatalf("event = %s, want fresh.py", got)
	}
}

func TestFileChangeDetection(t *testing.T) {
	dir := tmpDir(t)
	w := New(discardLog(), 50*time.Millisecond)
	ch := make(chan string, 8)

	if err := w.Start(dir, ch); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(w.Stop)

	target := filepath.Join(dir, "test.py")
	writeFile(t, target, "print('hello')")

	if got := waitEvent(t, ch, 2*time.Second); got != target {
		t.Fatalf("event = %s, want %s", got, target)
	}
}

func TestDebounceCoalescesBursts(t *testing.T) {
	dir := tmpDir(t)
	w := New(discardLog(), 150*time.Millisecond)
	ch := make(chan string, 8)

	if err := w.Start(dir, ch); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(w.Stop)

	target := filepath.Join(dir, "burst.py")
	writeFile(t, target, "print(1)")
	writeFile(t, target, "print(2)")
	writeFile(t, target, "print(3)")

	if got := waitEvent(t, ch, 2*time.Second); got != target {
		t.Fatalf("event = %s, want %s", got, target)
	}
	expectQuiet(t, ch, 500*time.Millisecond)
}

func TestDetectsFilesInNewSubdirectory(t *testing.T) {
	dir := tmpDir(t)
	w := New(discardLog(), 50*time.Millisecond)
	ch := make(chan string, 8)

	if err := w.Start(dir, ch); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(w.Stop)

	sub := filepath.Join(dir, "section2-loops")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	time.Sleep(500 * time.Millisecond)

	writeFile(t, filepath.Join(sub, "inner.py"), "print('deep')")
	got := waitEvent(t, ch, 3*time.Second)
	if filepath.Base(got) != "inner.py" {
		t.Fatalf("event = %s, want inner.py", got)
	}
}

func TestDirectoryEventsAreNotPublished(t *testing.T) {
	dir := tmpDir(t)
	w := New(discardLog(), 50*time.Millisecond)
	ch := make(chan string, 8)

	if err := w.Start(dir, ch); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(w.Stop)

	if err := os.Mkdir(filepath.Join(dir, "just-a-dir"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	expectQuiet(t, ch, 600*time.Millisecond)
}

func TestRecoverWithoutSession(t *testing.T) {
	w := New(discardLog(), 50*time.Millisecond)
	if err := w.Recover(); !errors.Is(err, ErrNoRecovery) {
		t.Fatalf("err = %v, want ErrNoRecovery", err)
	}

	// Stop wipes the recorded session, so recovery is no longer possible.
	dir := tmpDir(t)
	if err := w.Start(dir, make(chan string, 8)); err != nil {
		t.Fatalf("start: %v", err)
	}
	w.Stop()
	if err := w.Recover(); !errors.Is(err, ErrNoRecovery) {
		t.Fatalf("err after stop = %v, want ErrNoRecovery", err)
	}
}

func TestRecoverRestartsWatch(t *testing.T) {
	dir := tmpDir(t)
	w := New(discardLog(), 50*time.Millisecond)
	ch := make(chan string, 8)

	if err := w.Start(dir, ch); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(w.Stop)

	if err := w.Recover(); err != nil {
		t.Fatalf("recover: %v", err)
	}
	if !w.IsWatching() {
		t.Fatal("expected watching state after recovery")
	}

	target := filepath.Join(dir, "back.py")
	writeFile(t, target, "print('recovered')")
	if got := waitEvent(t, ch, 2*time.Second); got != target {
		t.Fatalf("event = %s, want %s", got, target)
	}
}
