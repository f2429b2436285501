package ports

import (
	"context"
	"io"
)

//go:generate mockgen -source=telemetry.go -destination=mocks/mock_telemetry.go -package=mocks

// Tracer is the entry point for creating spans.
type Tracer interface {
	// Start creates a new span.
	Start(ctx context.Context, name string, opts ...SpanOption) (context.Context, Span)
	// EmitPlan signals that a set of packages is planned for processing.
	EmitPlan(ctx context.Context, names []string, deps map[string][]string)
	// Shutdown flushes pending spans.
	Shutdown(ctx context.Context) error
}

// Span represents a unit of work.
type Span interface {
	io.Writer
	// End completes the span.
	End()
	// RecordError records an error for the span.
	RecordError(err error)
	// SetAttribute adds a key-value pair to the span.
	SetAttribute(key string, value any)
}

// SpanConfig holds configuration for a starting span.
type SpanConfig struct {
	// Package is the workspace package the span belongs to.
	Package string
}

// SpanOption is a functional option for configuring a span.
type SpanOption func(*SpanConfig)

// WithPackage tags the span with a package name.
func WithPackage(name string) SpanOption {
	return func(c *SpanConfig) {
		c.Package = name
	}
}
