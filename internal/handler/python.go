package handler

import "context"

// Python runs .py files through a Python interpreter.
type Python struct {
	Bin string // interpreter binary, e.g. "python" or "python3"
}

// NewPython returns a Python handler using the default "python" binary.
func NewPython() *Python {
	return &Python{Bin: "python"}
}

func (h *Python) Run(ctx context.Context, filePath string) (Outcome, error) {
	return runCommand(ctx, h.Bin, filePath)
}

// CheckSyntax compiles the file to bytecode without executing it.
func (h *Python) CheckSyntax(ctx context.Context, filePath string) (Validation, error) {
	return checkCommand(ctx, h.Bin, "-m", "py_compile", filePath)
}

func (h *Python) Name() string { return "Python" }

func (h *Python) Extension() string { return "py" }
