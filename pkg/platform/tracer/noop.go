package tracer

import "context"

// NoopTracer discards every span. It is the invalidator's default when no
// tracer is configured.
type NoopTracer struct{}

func NewNoop() *NoopTracer {
	return &NoopTracer{}
}

func (*NoopTracer) Start(ctx context.Context, _ string, _ ...Attribute) (context.Context, Span) {
	return ctx, discardSpan{}
}

type discardSpan struct{}

func (discardSpan) End(error)                     {}
func (discardSpan) SetAttributes(...Attribute)    {}
func (discardSpan) AddEvent(string, ...Attribute) {}

var (
	_ Tracer = (*NoopTracer)(nil)
	_ Span   = discardSpan{}
)
