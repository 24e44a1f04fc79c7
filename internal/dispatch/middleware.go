package dispatch

import (
	"context"
	"sync"

	"github.com/dshills/purdah/internal/event"
)

// Verdict is a Before hook's decision about handler delivery.
type Verdict int

const (
	// Continue lets delivery proceed.
	Continue Verdict = iota

	// Cancel skips handler delivery for this event. Remaining Before hooks and
	// all After hooks still run.
	Cancel
)

// String returns a human-readable verdict name.
func (v Verdict) String() string {
	switch v {
	case Continue:
		return "continue"
	case Cancel:
		return "cancel"
	default:
		return "unknown"
	}
}

// Middleware observes every dispatched event, whether or not any handler
// exists for its payloads.
type Middleware interface {
	// Name identifies the middleware in reports and logs.
	Name() string

	// Before runs ahead of handler delivery. The returned context is passed to
	// the next hook, to handlers and to After hooks; returning nil keeps the
	// incoming context.
	Before(ctx context.Context, ev event.Event) (context.Context, Verdict)

	// After runs once delivery is finished (or skipped) with the final report.
	After(ctx context.Context, ev event.Event, r Report)
}

// Funcs adapts plain functions to Middleware. Nil functions are no-ops.
type Funcs struct {
	NameValue  string
	BeforeFunc func(ctx context.Context, ev event.Event) (context.Context, Verdict)
	AfterFunc  func(ctx context.Context, ev event.Event, r Report)
}

// Name implements Middleware.
func (f Funcs) Name() string {
	if f.NameValue == "" {
		return "funcs"
	}
	return f.NameValue
}

// Before implements Middleware.
func (f Funcs) Before(ctx context.Context, ev event.Event) (context.Context, Verdict) {
	if f.BeforeFunc == nil {
		return ctx, Continue
	}
	return f.BeforeFunc(ctx, ev)
}

// After implements Middleware.
func (f Funcs) After(ctx context.Context, ev event.Event, r Report) {
	if f.AfterFunc != nil {
		f.AfterFunc(ctx, ev, r)
	}
}

// chain is the append-only middleware list.
type chain struct {
	mu    sync.RWMutex
	items []Middleware
}

func (c *chain) add(mws ...Middleware) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, mw := range mws {
		if mw != nil {
			c.items = append(c.items, mw)
		}
	}
}

func (c *chain) snapshot() []Middleware {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.items) == 0 {
		return nil
	}
	out := make([]Middleware, len(c.items))
	copy(out, c.items)
	return out
}

func (c *chain) names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, len(c.items))
	for i, mw := range c.items {
		names[i] = mw.Name()
	}
	return names
}
