package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.trai.ch/crate/internal/adapters/telemetry"
	"go.trai.ch/crate/internal/core/ports"
	"go.trai.ch/crate/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestOTelTracer_StreamsToRenderer(t *testing.T) {
	ctrl := gomock.NewController(t)
	renderer := mocks.NewMockRenderer(ctrl)

	var spanID string
	gomock.InOrder(
		renderer.EXPECT().OnPlanEmit([]string{"pkg-a"}, map[string][]string{"pkg-a": nil}),
		renderer.EXPECT().OnStepStart(gomock.Any(), "", "pkg-a", gomock.Any()).
			Do(func(id, _, _ string, _ any) { spanID = id }),
		renderer.EXPECT().OnStepLog(gomock.Any(), []byte("compiling\n")).
			Do(func(id string, _ []byte) { assert.Equal(t, spanID, id) }),
		renderer.EXPECT().OnStepComplete(gomock.Any(), gomock.Any(), nil),
	)

	tracer := telemetry.NewOTelTracer("test", renderer)
	ctx := context.Background()

	tracer.EmitPlan(ctx, []string{"pkg-a"}, map[string][]string{"pkg-a": nil})

	_, span := tracer.Start(ctx, "pkg-a", ports.WithPackage("pkg-a"))
	_, err := span.Write([]byte("compiling\n"))
	require.NoError(t, err)
	span.End()

	require.NoError(t, tracer.Shutdown(ctx))
}

func TestOTelTracer_NestedFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	renderer := mocks.NewMockRenderer(ctrl)

	var parentID string
	renderer.EXPECT().OnStepStart(gomock.Any(), "", "pkg-a", gomock.Any()).
		Do(func(id, _, _ string, _ any) { parentID = id })
	renderer.EXPECT().OnStepStart(gomock.Any(), gomock.Any(), "pkg-a:module", gomock.Any()).
		Do(func(_, parent, _ string, _ any) { assert.Equal(t, parentID, parent) })
	renderer.EXPECT().OnStepComplete(gomock.Any(), gomock.Any(), gomock.Not(nil)).
		Do(func(_ string, _ any, err error) { assert.EqualError(t, err, "exit status 1") })
	renderer.EXPECT().OnStepComplete(gomock.Any(), gomock.Any(), nil)

	tracer := telemetry.NewOTelTracer("test", renderer)
	ctx, parent := tracer.Start(context.Background(), "pkg-a")
	_, child := tracer.Start(ctx, "pkg-a:module")
	child.RecordError(errors.New("exit status 1"))
	child.End()
	parent.End()
}

func TestOTelTracer_RecordsAttributes(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tracer := telemetry.NewOTelTracer("test", nil, sdktrace.WithSpanProcessor(recorder))

	ctx := context.Background()
	ctx, span := tracer.Start(ctx, "publish", ports.WithPackage("pkg-a"))
	span.SetAttribute("channel", "global")
	span.SetAttribute("attempt", 2)
	span.SetAttribute("dry", true)
	span.SetAttribute("targets", []string{"module", "types"})
	span.SetAttribute("ratio", 0.5)
	tracer.EmitPlan(ctx, []string{"pkg-a"}, nil)
	_, _ = span.Write([]byte("npm notice"))
	span.RecordError(errors.New("E403"))
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	got := spans[0]

	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range got.Attributes() {
		attrs[kv.Key] = kv.Value
	}
	assert.Equal(t, "pkg-a", attrs[telemetry.AttrPackage].AsString())
	assert.Equal(t, "global", attrs["channel"].AsString())
	assert.Equal(t, int64(2), attrs["attempt"].AsInt64())
	assert.True(t, attrs["dry"].AsBool())
	assert.Equal(t, []string{"module", "types"}, attrs["targets"].AsStringSlice())
	assert.Equal(t, "0.5", attrs["ratio"].AsString())

	assert.Equal(t, codes.Error, got.Status().Code)
	assert.Equal(t, "E403", got.Status().Description)

	var events []string
	for _, e := range got.Events() {
		events = append(events, e.Name)
	}
	assert.Equal(t, []string{"plan_emitted", "log", "exception"}, events)
}

func TestNoOpTracer(t *testing.T) {
	tracer := telemetry.NewNoOpTracer()
	ctx := context.Background()

	got, span := tracer.Start(ctx, "noop")
	assert.Equal(t, ctx, got)

	n, err := span.Write([]byte("data"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	span.SetAttribute("k", "v")
	span.RecordError(errors.New("ignored"))
	span.End()
	tracer.EmitPlan(ctx, nil, nil)
	assert.NoError(t, tracer.Shutdown(ctx))
}
