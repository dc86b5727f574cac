// Package executor converts "a file changed" into a recorded, normalized
// execution outcome. Execution never raises an error back to the caller:
// every failure mode becomes a failed Result, so one broken file can never
// stop the pipeline.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fakeyudi/rerun/internal/handler"
	"github.com/fakeyudi/rerun/internal/history"
)

// previewLen bounds the output excerpt stored with each history record.
const previewLen = 100

// Result is the normalized outcome of one execution attempt. Success is
// true iff the process ran and exited zero; ErrorMessage is set iff Success
// is false.
type Result struct {
	FilePath     string
	Success      bool
	Output       string
	ErrorMessage string
	Duration     time.Duration
	Timestamp    time.Time // when the attempt started
	ExitCode     int       // -1 when no process ran
}

// Executor resolves the language handler for a file, runs it, and appends
// the outcome to the history store.
type Executor struct {
	registry *handler.Registry
	store    *history.Store
	log      *slog.Logger
}

// New returns an Executor recording through store.
func New(registry *handler.Registry, store *history.Store, log *slog.Logger) *Executor {
	return &Executor{registry: registry, store: store, log: log.With("component", "executor")}
}

// Execute runs one file and returns its normalized outcome. Every attempt,
// successful or not, is appended to history; a failed append is logged and
// never alters the returned Result.
func (e *Executor) Execute(ctx context.Context, filePath string) Result {
	res := e.run(ctx, filePath)
	e.record(ctx, res)
	return res
}

func (e *Executor) run(ctx context.Context, filePath string) Result {
	res := Result{FilePath: filePath, Timestamp: time.Now(), ExitCode: -1}

	if _, err := os.Stat(filePath); err != nil {
		res.ErrorMessage = "File not found"
		return res
	}

	ext := strings.TrimPrefix(filepath.Ext(filePath), ".")
	if ext == "" {
		res.ErrorMessage = "No file extension"
		return res
	}

	h, ok := e.registry.Get(ext)
	if !ok {
		res.ErrorMessage = "Unsupported file type: ." + ext
		return res
	}

	e.log.Debug("executing file", "language", h.Name(), "file", filePath)

	out, err := h.Run(ctx, filePath)
	if err != nil {
		res.ErrorMessage = "Handler error: " + err.Error()
		return res
	}

	res.Duration = out.Duration
	res.ExitCode = out.ExitCode
	if out.ExitCode == 0 {
		res.Success = true
		res.Output = out.Stdout
	} else {
		msg := out.Stderr
		if msg == "" {
			msg = out.Stdout
		}
		res.ErrorMessage = msg
	}
	return res
}

// ExecuteWithTimeout races Execute against a timer. On timeout it returns a
// synthetic failure right away; the in-flight execution is abandoned, not
// killed, and appends its own record whenever it eventually finishes.
func (e *Executor) ExecuteWithTimeout(ctx context.Context, filePath string, timeout time.Duration) Result {
	done := make(chan Result, 1)
	start := time.Now()
	go func() {
		done <- e.Execute(ctx, filePath)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-done:
		return res
	case <-timer.C:
		secs := int(timeout.Seconds())
		e.log.Warn("execution timed out", "file", filePath, "timeout_secs", secs)
		return Result{
			FilePath:     filePath,
			ErrorMessage: fmt.Sprintf("Execution timeout (%ds)", secs),
			Duration:     timeout,
			Timestamp:    start,
			ExitCode:     -1,
		}
	}
}

func (e *Executor) record(ctx context.Context, res Result) {
	rec := history.Record{
		ID:            uuid.New().String(),
		FilePath:      res.FilePath,
		Section:       Section(res.FilePath),
		Success:       res.Success,
		ExecutionTime: res.Duration.Seconds(),
		Timestamp:     res.Timestamp,
		OutputPreview: preview(res),
	}
	if err := e.store.RecordExecution(ctx, rec); err != nil {
		e.log.Warn("failed to record execution in history", "file", res.FilePath, "error", err)
	}
}

// preview returns the first previewLen characters of the output (or of the
// error message for failures).
func preview(res Result) string {
	text := res.Output
	if !res.Success {
		text = res.ErrorMessage
	}
	runes := []rune(text)
	if len(runes) > previewLen {
		runes = runes[:previewLen]
	}
	return string(runes)
}

// Section infers the exercise grouping from the file's immediate parent
// directory name, falling back to "unknown".
func Section(filePath string) string {
	name := filepath.Base(filepath.Dir(filePath))
	if name == "." || name == string(filepath.Separator) || name == "" {
		return "unknown"
	}
	return name
}
