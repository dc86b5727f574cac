// Package events filters raw file-change notifications down to the paths
// worth executing and runs the crash-resistant consumption loop that feeds
// them to the pipeline.
package events

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// errorStreak is the consecutive-failure count that triggers an escalated
// log line. It is a soft alarm: the loop keeps going either way.
const errorStreak = 10

// Action is invoked for every accepted change event. A returned error is
// classified and logged; it never stops the loop.
type Action func(ctx context.Context, path string) error

// Filter gates which changed paths reach the executor, by extension.
// Matching is case-insensitive. Safe for concurrent use.
type Filter struct {
	mu         sync.RWMutex
	extensions map[string]struct{}
	log        *slog.Logger
}

// NewFilter returns a Filter accepting the given extensions, defaulting to
// "py" when none are given.
func NewFilter(log *slog.Logger, extensions ...string) *Filter {
	if len(extensions) == 0 {
		extensions = []string{"py"}
	}
	f := &Filter{
		extensions: make(map[string]struct{}, len(extensions)),
		log:        log.With("component", "filter"),
	}
	for _, ext := range extensions {
		f.extensions[normalizeExt(ext)] = struct{}{}
	}
	return f
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// AddExtension marks an extension as supported.
func (f *Filter) AddExtension(ext string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.log.Debug("adding supported extension", "ext", normalizeExt(ext))
	f.extensions[normalizeExt(ext)] = struct{}{}
}

// RemoveExtension withdraws support for an extension.
func (f *Filter) RemoveExtension(ext string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.log.Debug("removing supported extension", "ext", normalizeExt(ext))
	delete(f.extensions, normalizeExt(ext))
}

// IsSupported reports whether the extension is in the supported set.
func (f *Filter) IsSupported(ext string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.extensions[normalizeExt(ext)]
	return ok
}

// Extensions returns the supported set, sorted.
func (f *Filter) Extensions() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	exts := make([]string, 0, len(f.extensions))
	for ext := range f.extensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// ShouldProcess reports whether path is an existing regular file with a
// supported extension.
func (f *Filter) ShouldProcess(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		f.log.Debug("skipping non-file path", "path", path)
		return false
	}
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		f.log.Debug("skipping file without extension", "path", path)
		return false
	}
	return f.IsSupported(ext)
}

// Process consumes paths from in until the channel is closed, invoking
// action for each accepted one. Action failures are logged and absorbed;
// after errorStreak consecutive failures an escalated line is logged and
// the counter resets. Channel closure is the only way out.
func (f *Filter) Process(ctx context.Context, in <-chan string, action Action) {
	streak := 0
	for path := range in {
		f.log.Debug("received file change event", "file", path)

		if _, err := os.Stat(path); err != nil {
			f.log.Debug("file no longer exists, skipping", "file", path)
			continue
		}
		if !f.ShouldProcess(path) {
			continue
		}

		if err := action(ctx, path); err != nil {
			streak++
			f.logActionError(path, err)
			if streak >= errorStreak {
				f.log.Error("too many consecutive errors, continuing anyway", "consecutive_errors", streak)
				streak = 0
			}
			continue
		}
		streak = 0
	}
	f.log.Info("file change processing stopped")
}

func (f *Filter) logActionError(path string, err error) {
	switch {
	case errors.Is(err, fs.ErrPermission):
		f.log.Error("permission denied", "file", path, "error", err)
	case errors.Is(err, fs.ErrNotExist):
		f.log.Error("file disappeared before it could be processed", "file", path, "error", err)
	default:
		f.log.Error("failed to process file change", "file", path, "error", err)
	}
}

// FileStats summarizes how much of a directory tree the filter would accept.
type FileStats struct {
	Total       int
	Supported   int
	Unsupported int
}

// SupportPercentage returns the supported share as a percentage, 0 for an
// empty tree.
func (s FileStats) SupportPercentage() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Supported) / float64(s.Total) * 100
}

// FileStats walks dir recursively and counts supported vs unsupported
// regular files.
func (f *Filter) FileStats(dir string) (FileStats, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return FileStats{}, err
	}
	if !info.IsDir() {
		return FileStats{}, fmt.Errorf("%s is not a directory", dir)
	}

	var stats FileStats
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		stats.Total++
		if f.ShouldProcess(path) {
			stats.Supported++
		} else {
			stats.Unsupported++
		}
		return nil
	})
	if err != nil {
		return FileStats{}, err
	}
	return stats, nil
}
