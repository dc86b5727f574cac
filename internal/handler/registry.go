package handler

import (
	"sort"
	"strings"
	"sync"
)

// Registry is a concurrent-safe extension → handler lookup table. Extension
// keys are case-insensitive and stored without a leading dot.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// normalizeExt lowercases an extension and strips a leading dot, so "PY",
// ".py" and "py" all address the same handler.
func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// Register installs a handler for an extension, replacing any previous one.
func (r *Registry) Register(ext string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[normalizeExt(ext)] = h
}

// Get returns the handler for an extension.
func (r *Registry) Get(ext string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[normalizeExt(ext)]
	return h, ok
}

// IsSupported reports whether a handler is registered for the extension.
func (r *Registry) IsSupported(ext string) bool {
	_, ok := r.Get(ext)
	return ok
}

// Extensions returns the registered extensions, sorted.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exts := make([]string, 0, len(r.handlers))
	for ext := range r.handlers {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
