package handler

import (
	"context"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

// stubHandler is a do-nothing handler for registry tests.
type stubHandler struct {
	name string
	ext  string
}

func (s *stubHandler) Run(context.Context, string) (Outcome, error) { return Outcome{}, nil }
func (s *stubHandler) CheckSyntax(context.Context, string) (Validation, error) {
	return Validation{OK: true}, nil
}
func (s *stubHandler) Name() string      { return s.name }
func (s *stubHandler) Extension() string { return s.ext }

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry()
	r.Register("py", &stubHandler{name: "Python", ext: "py"})

	for _, key := range []string{"py", "PY", "Py", ".py", ".PY"} {
		h, ok := r.Get(key)
		if !ok {
			t.Errorf("Get(%q): handler not found", key)
			continue
		}
		if h.Name() != "Python" {
			t.Errorf("Get(%q) = %s, want Python", key, h.Name())
		}
		if !r.IsSupported(key) {
			t.Errorf("IsSupported(%q) = false, want true", key)
		}
	}

	if _, ok := r.Get("rb"); ok {
		t.Error("Get(\"rb\") found a handler for an unregistered extension")
	}
	if r.IsSupported("rb") {
		t.Error("IsSupported(\"rb\") = true for an unregistered extension")
	}
}

func TestRegistryOverwrite(t *testing.T) {
	r := NewRegistry()
	r.Register("py", &stubHandler{name: "first", ext: "py"})
	r.Register("PY", &stubHandler{name: "second", ext: "py"})

	h, ok := r.Get("py")
	if !ok {
		t.Fatal("handler not found after re-registration")
	}
	if h.Name() != "second" {
		t.Errorf("Get after overwrite = %s, want second", h.Name())
	}
	if n := len(r.Extensions()); n != 1 {
		t.Errorf("Extensions() has %d entries, want 1", n)
	}
}

func TestRegistryExtensionsSorted(t *testing.T) {
	r := NewRegistry()
	r.Register("py", &stubHandler{name: "Python", ext: "py"})
	r.Register("go", &stubHandler{name: "Go", ext: "go"})

	exts := r.Extensions()
	if len(exts) != 2 || exts[0] != "go" || exts[1] != "py" {
		t.Errorf("Extensions() = %v, want [go py]", exts)
	}
}

// Any case variant of a registered extension resolves to the same handler.
func TestRegistryCaseInsensitive(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		ext := rapid.StringMatching(`[a-z]{1,5}`).Draw(rt, "ext")

		// Flip the case of an arbitrary subset of characters.
		chars := []byte(ext)
		for i := range chars {
			if rapid.Bool().Draw(rt, "flip") {
				chars[i] = strings.ToUpper(string(chars[i]))[0]
			}
		}
		variant := string(chars)

		r := NewRegistry()
		r.Register(ext, &stubHandler{name: "h", ext: ext})

		if _, ok := r.Get(variant); !ok {
			rt.Fatalf("Get(%q) failed for registered extension %q", variant, ext)
		}
	})
}
