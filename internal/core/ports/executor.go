// Package ports defines the core interfaces for the application.
package ports

import (
	"context"
	"io"
)

// Command describes one external process invocation.
type Command struct {
	// Name is the executable.
	Name string
	Args []string
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// Env holds extra "KEY=VALUE" entries appended to the inherited environment.
	Env []string
}

// Executor defines the interface for running external commands.
//
//go:generate mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs the command and streams its output to stdout and stderr.
	// It returns an error if the process cannot start or exits non-zero.
	Execute(ctx context.Context, cmd Command, stdout, stderr io.Writer) error
}
