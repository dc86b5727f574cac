package handler

import (
	"context"
	"os"
)

// Golang runs .go files through the Go toolchain.
type Golang struct {
	Bin string // toolchain binary, normally "go"
}

// NewGolang returns a Go handler using the default "go" binary.
func NewGolang() *Golang {
	return &Golang{Bin: "go"}
}

func (h *Golang) Run(ctx context.Context, filePath string) (Outcome, error) {
	return runCommand(ctx, h.Bin, "run", filePath)
}

// CheckSyntax builds the file to the null device, discarding the binary.
func (h *Golang) CheckSyntax(ctx context.Context, filePath string) (Validation, error) {
	return checkCommand(ctx, h.Bin, "build", "-o", os.DevNull, filePath)
}

func (h *Golang) Name() string { return "Go" }

func (h *Golang) Extension() string { return "go" }
