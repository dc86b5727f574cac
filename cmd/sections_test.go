package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte("print('hi')\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestSectionsListsSubdirectories(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	resetFlags()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "s1", "a.py"))
	writeFile(t, filepath.Join(dir, "s1", "b.txt"))
	writeFile(t, filepath.Join(dir, "s2", "c.py"))
	writeFile(t, filepath.Join(dir, ".hidden", "d.py"))

	out, err := executeCommand(rootCmd, "sections", dir)
	if err != nil {
		t.Fatalf("sections: %v", err)
	}
	for _, want := range []string{
		"Available sections in",
		"s1 (1 files)",
		"s2 (1 files)",
		"4 files total, 3 supported (75.0%)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, ".hidden") {
		t.Errorf("hidden directories should not be listed, got:\n%s", out)
	}
}

func TestSectionsEmptyDirectory(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	resetFlags()

	out, err := executeCommand(rootCmd, "sections", t.TempDir())
	if err != nil {
		t.Fatalf("sections: %v", err)
	}
	if !strings.Contains(out, "No sections found") {
		t.Errorf("expected no-sections message, got:\n%s", out)
	}
}

func TestSectionsMissingDirectory(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	resetFlags()

	missing := filepath.Join(t.TempDir(), "nope")
	_, err := executeCommand(rootCmd, "sections", missing)
	if err == nil {
		t.Fatal("expected an error for a missing directory, got nil")
	}
	if !strings.Contains(err.Error(), missing) {
		t.Errorf("expected error to name %q, got: %v", missing, err)
	}
}
