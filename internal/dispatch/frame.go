package dispatch

import (
	"context"
	"sync"

	"github.com/dshills/purdah/internal/event"
)

// frameKey scopes a frame to the dispatcher that opened it.
type frameKey struct {
	d *Dispatcher
}

// frame tracks one top-level Dispatch call. Dispatches issued with the
// frame's context while it is open are appended here instead of nesting.
type frame struct {
	mu      sync.Mutex
	pending []event.Event
	closed  bool
}

func (d *Dispatcher) frameFrom(ctx context.Context) *frame {
	f, _ := ctx.Value(frameKey{d}).(*frame)
	return f
}

func (d *Dispatcher) openFrame(ctx context.Context) (context.Context, *frame) {
	f := &frame{}
	return context.WithValue(ctx, frameKey{d}, f), f
}

// push defers ev. It fails once the frame has been closed.
func (f *frame) push(ev event.Event) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return false
	}
	f.pending = append(f.pending, ev)
	return true
}

// next pops the oldest deferred event, closing the frame when none remain.
func (f *frame) next() (event.Event, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.pending) == 0 {
		f.closed = true
		return nil, false
	}
	ev := f.pending[0]
	f.pending[0] = nil
	f.pending = f.pending[1:]
	return ev, true
}

// InDispatch reports whether ctx belongs to an open Dispatch call on d.
func (d *Dispatcher) InDispatch(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	f := d.frameFrom(ctx)
	if f == nil {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.closed
}
