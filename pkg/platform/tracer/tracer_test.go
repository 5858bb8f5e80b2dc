package tracer_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"deletionguard/pkg/platform/tracer"
)

func TestNoopTracer_Start(t *testing.T) {
	tr := tracer.NewNoop()
	ctx := context.Background()

	newCtx, span := tr.Start(ctx, tracer.SpanInvalidate,
		tracer.String(tracer.AttrEntityID, "post-42"),
		tracer.Bool(tracer.AttrVerify, true),
	)

	assert.Equal(t, ctx, newCtx)
	require.NotNil(t, span)

	span.SetAttributes(tracer.Int64(tracer.AttrKeyCount, 12))
	span.AddEvent(tracer.EventRetryScheduled, tracer.Int64(tracer.AttrAttempt, 2))
	span.End(errors.New("all keys failed"))
}

func TestOTelTracer_Start(t *testing.T) {
	tr := tracer.NewOTel(tracer.WithOTelTracer(noop.NewTracerProvider().Tracer("test")))

	ctx, span := tr.Start(context.Background(), tracer.SpanInvalidateAttempt,
		tracer.Int64(tracer.AttrAttempt, 1),
		tracer.Duration("delay", 0),
		tracer.Float64("ratio", 0.5),
	)
	require.NotNil(t, ctx)
	require.NotNil(t, span)

	span.SetAttributes(tracer.String(tracer.AttrEntityID, "post-42"))
	span.AddEvent(tracer.EventCancelled)
	span.End(nil)
}

func TestOTelTracer_GlobalProvider(t *testing.T) {
	tr := tracer.NewOTel(tracer.WithInstrumentationName("deletionguard/test"), tracer.WithInstrumentationName(""))

	_, span := tr.Start(context.Background(), tracer.SpanInvalidate,
		tracer.Attribute{Key: "raw_delay", Value: 250 * time.Millisecond},
		tracer.Attribute{Key: "unsupported", Value: struct{}{}},
	)
	require.NotNil(t, span)
	span.End(errors.New("redis unavailable"))
}

func TestAttributeConstructors(t *testing.T) {
	t.Run("String", func(t *testing.T) {
		attr := tracer.String("key", "value")
		assert.Equal(t, "key", attr.Key)
		assert.Equal(t, "value", attr.Value)
	})

	t.Run("Int64", func(t *testing.T) {
		attr := tracer.Int64("count", 42)
		assert.Equal(t, int64(42), attr.Value)
	})

	t.Run("Duration", func(t *testing.T) {
		attr := tracer.Duration("latency", 150*1e6) // 150ms in nanoseconds
		assert.Equal(t, "latency", attr.Key)
		assert.Equal(t, int64(150), attr.Value)
	})
}
