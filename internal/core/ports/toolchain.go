package ports

import (
	"context"
	"io"

	"go.trai.ch/crate/internal/core/domain"
)

// Toolchain is the set of external build tools driven by the staged build pipeline.
// Tool output is streamed to out.
//
//go:generate mockgen -source=toolchain.go -destination=mocks/mock_toolchain.go -package=mocks
type Toolchain interface {
	// Format rewrites the sources of the package in dir in place.
	Format(ctx context.Context, dir string, out io.Writer) error

	// ExtractTypes emits type declarations for src into dest.
	ExtractTypes(ctx context.Context, dir, src, dest string, out io.Writer) error

	// Transpile compiles src into dest for the environment tagged by kind.
	Transpile(ctx context.Context, dir, src, dest string, kind domain.TargetKind, out io.Writer) error
}
