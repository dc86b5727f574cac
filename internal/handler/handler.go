// Package handler defines the language handler capability and the registry
// that maps file extensions to handlers.
package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// Handler runs and syntax-checks source files of one language by shelling
// out to that language's interpreter or compiler.
type Handler interface {
	// Run executes the file and reports the process outcome. It returns an
	// error only when the process could not be started at all (for example
	// a missing interpreter binary); a process that ran and exited non-zero
	// is a normal Outcome, not an error.
	Run(ctx context.Context, filePath string) (Outcome, error)

	// CheckSyntax validates the file without running it.
	CheckSyntax(ctx context.Context, filePath string) (Validation, error)

	// Name is the display name of the language.
	Name() string

	// Extension is the file extension this handler supports, without dot.
	Extension() string
}

// Outcome is the raw result of one completed process run.
type Outcome struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Validation is the result of a syntax-only check.
type Validation struct {
	OK     bool
	Detail string // compiler/interpreter diagnostics when not OK
}

// runCommand executes name with args, captures both output streams and
// measures wall-clock duration. Output is read only after the process
// exits; nothing is streamed.
func runCommand(ctx context.Context, name string, args ...string) (Outcome, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	out := Outcome{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			out.ExitCode = exitErr.ExitCode()
			return out, nil
		}
		return Outcome{Duration: out.Duration}, fmt.Errorf("run %s: %w", name, err)
	}
	return out, nil
}

// checkCommand runs a syntax-check command and folds its exit status into a
// Validation. Diagnostics are taken from stderr.
func checkCommand(ctx context.Context, name string, args ...string) (Validation, error) {
	out, err := runCommand(ctx, name, args...)
	if err != nil {
		return Validation{}, err
	}
	if out.ExitCode != 0 {
		detail := out.Stderr
		if detail == "" {
			detail = out.Stdout
		}
		return Validation{OK: false, Detail: detail}, nil
	}
	return Validation{OK: true}, nil
}
