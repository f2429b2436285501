package telemetry

import (
	"context"

	"go.trai.ch/crate/internal/core/ports"
)

// NoOpTracer is a no-op implementation of ports.Tracer.
type NoOpTracer struct{}

// NewNoOpTracer creates a new NoOpTracer.
func NewNoOpTracer() *NoOpTracer {
	return &NoOpTracer{}
}

// Start creates a new no-op span.
func (t *NoOpTracer) Start(ctx context.Context, _ string, _ ...ports.SpanOption) (context.Context, ports.Span) {
	return ctx, NoOpSpan{}
}

// EmitPlan does nothing.
func (t *NoOpTracer) EmitPlan(context.Context, []string, map[string][]string) {}

// Shutdown does nothing.
func (t *NoOpTracer) Shutdown(context.Context) error { return nil }

// NoOpSpan is a no-op implementation of ports.Span.
type NoOpSpan struct{}

// End does nothing.
func (NoOpSpan) End() {}

// RecordError does nothing.
func (NoOpSpan) RecordError(error) {}

// SetAttribute does nothing.
func (NoOpSpan) SetAttribute(string, any) {}

// Write discards p.
func (NoOpSpan) Write(p []byte) (int, error) {
	return len(p), nil
}
