package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/crate/internal/core/ports"
)

// AttrPackage is the span attribute naming the workspace package.
const AttrPackage = "crate.package"

// OTelTracer implements ports.Tracer on a private OpenTelemetry tracer provider.
// Span lifecycle reaches the renderer through a Bridge; span output is batched
// and streamed to the renderer directly.
type OTelTracer struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
	renderer ports.Renderer
}

// NewOTelTracer creates a tracer reporting to renderer. A nil renderer only records spans.
func NewOTelTracer(name string, renderer ports.Renderer, opts ...sdktrace.TracerProviderOption) *OTelTracer {
	if renderer != nil {
		opts = append(opts, sdktrace.WithSpanProcessor(NewBridge(renderer)))
	}
	provider := sdktrace.NewTracerProvider(opts...)
	return &OTelTracer{
		provider: provider,
		tracer:   provider.Tracer(name),
		renderer: renderer,
	}
}

// Start creates a new span.
func (t *OTelTracer) Start(ctx context.Context, name string, opts ...ports.SpanOption) (context.Context, ports.Span) {
	cfg := &ports.SpanConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	var startOpts []trace.SpanStartOption
	if cfg.Package != "" {
		startOpts = append(startOpts, trace.WithAttributes(attribute.String(AttrPackage, cfg.Package)))
	}
	ctx, span := t.tracer.Start(ctx, name, startOpts...)

	s := &OTelSpan{span: span}
	if t.renderer != nil {
		spanID := span.SpanContext().SpanID().String()
		s.batcher = NewBatchProcessor(0, 0, func(data []byte) {
			t.renderer.OnStepLog(spanID, data)
		})
	}
	return ctx, s
}

// EmitPlan records the planned packages on the current span and announces them to the renderer.
func (t *OTelTracer) EmitPlan(ctx context.Context, names []string, deps map[string][]string) {
	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.AddEvent("plan_emitted", trace.WithAttributes(
			attribute.StringSlice("packages", names),
		))
	}
	if t.renderer != nil {
		t.renderer.OnPlanEmit(names, deps)
	}
}

// Shutdown flushes and stops the tracer provider.
func (t *OTelTracer) Shutdown(ctx context.Context) error {
	return t.provider.Shutdown(ctx)
}

// OTelSpan implements ports.Span.
type OTelSpan struct {
	span    trace.Span
	batcher *BatchProcessor
}

// End flushes pending output and completes the span.
func (s *OTelSpan) End() {
	if s.batcher != nil {
		_ = s.batcher.Close()
	}
	s.span.End()
}

// RecordError records err and marks the span failed.
func (s *OTelSpan) RecordError(err error) {
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

// SetAttribute adds a key-value pair to the span.
func (s *OTelSpan) SetAttribute(key string, value any) {
	switch v := value.(type) {
	case string:
		s.span.SetAttributes(attribute.String(key, v))
	case int:
		s.span.SetAttributes(attribute.Int(key, v))
	case int64:
		s.span.SetAttributes(attribute.Int64(key, v))
	case bool:
		s.span.SetAttributes(attribute.Bool(key, v))
	case []string:
		s.span.SetAttributes(attribute.StringSlice(key, v))
	case fmt.Stringer:
		s.span.SetAttributes(attribute.String(key, v.String()))
	default:
		s.span.SetAttributes(attribute.String(key, fmt.Sprintf("%v", v)))
	}
}

// Write streams tool output to the renderer, or records it as a span event without one.
func (s *OTelSpan) Write(p []byte) (int, error) {
	if s.batcher != nil {
		return s.batcher.Write(p)
	}
	s.span.AddEvent("log", trace.WithAttributes(attribute.String("message", string(p))))
	return len(p), nil
}
