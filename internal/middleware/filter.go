package middleware

import (
	"context"

	"github.com/dshills/purdah/internal/dispatch"
	"github.com/dshills/purdah/internal/event"
	"github.com/dshills/purdah/internal/event/topic"
)

type filtered struct {
	inner    dispatch.Middleware
	patterns topic.Patterns
}

// ForTypes runs mw only for events whose type matches one of patterns.
// Patterns use topic wildcards; no patterns matches everything.
func ForTypes(mw dispatch.Middleware, patterns ...topic.Topic) dispatch.Middleware {
	return &filtered{inner: mw, patterns: topic.Patterns(patterns)}
}

func (f *filtered) Name() string { return f.inner.Name() }

func (f *filtered) Before(ctx context.Context, ev event.Event) (context.Context, dispatch.Verdict) {
	if !f.patterns.Any(event.TopicOf(ev)) {
		return ctx, dispatch.Continue
	}
	return f.inner.Before(ctx, ev)
}

func (f *filtered) After(ctx context.Context, ev event.Event, r dispatch.Report) {
	if f.patterns.Any(event.TopicOf(ev)) {
		f.inner.After(ctx, ev, r)
	}
}
