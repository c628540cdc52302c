package trace

import "context"

type ctxKey struct{}

// binding is what a context carries: the tracer and the span new spans
// should hang under.
type binding struct {
	tracer Tracer
	parent uint64
}

func bindingFrom(ctx context.Context) binding {
	if ctx != nil {
		if b, ok := ctx.Value(ctxKey{}).(binding); ok {
			return b
		}
	}
	return binding{tracer: Nop}
}

// FromContext returns the tracer attached to ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	return bindingFrom(ctx).tracer
}

// WithTracer attaches t to ctx. Spans started from the result are roots.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, ctxKey{}, binding{tracer: t})
}

// ParentSpan returns the ID of the span that StartSpan last attached to
// ctx, 0 at the root.
func ParentSpan(ctx context.Context) uint64 {
	return bindingFrom(ctx).parent
}

// StartSpan begins a span under the span carried by ctx and returns a
// context in which the new span is the parent.
func StartSpan(ctx context.Context, scope Scope, name string) (context.Context, *Span) {
	b := bindingFrom(ctx)
	span := Begin(b.tracer, scope, name, b.parent)
	if span.ID() == 0 {
		// отфильтрованный спан не меняет родителя
		return ctx, span
	}
	return context.WithValue(ctx, ctxKey{}, binding{tracer: b.tracer, parent: span.ID()}), span
}
