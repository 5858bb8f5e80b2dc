// Package tracer provides a lightweight tracing abstraction so cache
// invalidation can emit distributed traces without importing OpenTelemetry
// throughout the codebase.
//
// Implementations:
//   - NoopTracer: For tests (zero overhead)
//   - OTelTracer: OpenTelemetry adapter for production
package tracer

import (
	"context"
	"time"
)

// Span represents an active trace span.
// Spans track the execution of a single operation and can record errors and events.
type Span interface {
	// End completes the span, recording any error that occurred.
	// If err is non-nil, the span is marked as failed.
	// End must be called exactly once, typically via defer.
	End(err error)

	// SetAttributes adds key-value pairs to the span.
	// Attributes provide context for debugging and analysis.
	SetAttributes(attrs ...Attribute)

	// AddEvent records a timestamped event within the span.
	// Events mark significant points during span execution.
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans for distributed tracing.
// Implementations must be safe for concurrent use.
type Tracer interface {
	// Start creates a new span with the given name and attributes.
	// The returned context contains the new span and should be passed to child operations.
	// The span must be ended by calling Span.End().
	//
	// Example:
	//   ctx, span := tracer.Start(ctx, tracer.SpanInvalidate,
	//       tracer.String(tracer.AttrEntityID, entityID),
	//       tracer.Int64(tracer.AttrKeyCount, int64(len(keys))),
	//   )
	//   defer span.End(nil)
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

// String creates a string attribute.
func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

// Bool creates a boolean attribute.
func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

// Int64 creates an int64 attribute.
func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Float64 creates a float64 attribute.
func Float64(key string, value float64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration creates a duration attribute in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// Span names used by cache invalidation.
const (
	SpanInvalidate        = "cache.invalidate"
	SpanInvalidateAttempt = "cache.invalidate.attempt"
)

// Attribute keys used by cache invalidation.
const (
	AttrEntityID     = "entity_id"
	AttrKeyCount     = "cache.key_count"
	AttrAttempt      = "cache.attempt"
	AttrInvalidated  = "cache.invalidated"
	AttrFailed       = "cache.failed"
	AttrVerify       = "cache.verify"
	AttrRetryCount   = "cache.retry_count"
	AttrVerifyFailed = "cache.verify_failed"
)

// Event names used by cache invalidation.
const (
	EventRetryScheduled = "retry.scheduled"
	EventCancelled      = "cancelled"
)
