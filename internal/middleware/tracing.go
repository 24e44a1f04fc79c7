package middleware

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dshills/purdah/internal/dispatch"
	"github.com/dshills/purdah/internal/event"
)

// Tracing wraps each dispatch in a span.
type Tracing struct {
	tracer trace.Tracer
}

type spanKey struct {
	t *Tracing
}

// NewTracing creates tracing middleware using tracer.
func NewTracing(tracer trace.Tracer) *Tracing {
	return &Tracing{tracer: tracer}
}

// Name implements dispatch.Middleware.
func (t *Tracing) Name() string { return "tracing" }

// Before implements dispatch.Middleware.
func (t *Tracing) Before(ctx context.Context, ev event.Event) (context.Context, dispatch.Verdict) {
	meta := event.MetadataOf(ev)
	ctx, span := t.tracer.Start(ctx, "dispatch "+ev.EventType(),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("event.type", ev.EventType()),
			attribute.String("event.id", meta.ID),
			attribute.String("event.source", meta.Source),
		),
	)
	return context.WithValue(ctx, spanKey{t}, span), dispatch.Continue
}

// After implements dispatch.Middleware.
func (t *Tracing) After(ctx context.Context, ev event.Event, r dispatch.Report) {
	span, ok := ctx.Value(spanKey{t}).(trace.Span)
	if !ok {
		return
	}
	span.SetAttributes(
		attribute.Bool("dispatch.message", r.Message),
		attribute.Bool("dispatch.action", r.Action),
		attribute.Int("dispatch.delivered", r.Delivered),
		attribute.Bool("dispatch.cancelled", r.Cancelled),
	)
	if r.Cancelled {
		span.SetAttributes(attribute.String("dispatch.cancelled_by", r.CancelledBy))
	}
	if err := r.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
