package state

import (
	"context"
	"reflect"

	"github.com/dshills/purdah/internal/dispatch"
)

// Handle accesses one slot. Handles are values; copies share the slot.
type Handle[S, P any] struct {
	slot       *slot[S, P]
	dispatcher *dispatch.Dispatcher
}

// IsZero reports whether h is not bound to a slot.
func (h Handle[S, P]) IsZero() bool {
	return h.slot == nil
}

// State returns a snapshot under the slot's read lock. It panics with a
// *PoisonedError if an earlier update panicked.
//
// Do not call State on a slot from inside that slot's own update: the read
// lock waits for the write lock held by the same goroutine and never returns.
// An update reads its own state directly.
func (h Handle[S, P]) State() S {
	return h.slot.read()
}

// Dispatch applies p to the slot under its write lock, bypassing the
// dispatcher's middleware and handler tables.
//
// Inside an update, pass on the ctx the update received. A write to the same
// slot made with that ctx is queued and applied after the current update
// returns. A write made with any other ctx, such as context.Background(),
// waits for the lock its own goroutine holds and deadlocks.
func (h Handle[S, P]) Dispatch(ctx context.Context, p P) error {
	return h.slot.write(ctx, p)
}

// Dispatcher returns the dispatcher the slot is wired to.
func (h Handle[S, P]) Dispatcher() *dispatch.Dispatcher {
	return h.dispatcher
}

// Type returns the concrete type the slot is keyed by.
func (h Handle[S, P]) Type() reflect.Type {
	return h.slot.typ
}

// Kind reports whether the slot takes messages or actions.
func (h Handle[S, P]) Kind() dispatch.Kind {
	return h.slot.kind
}

// HandlerID returns the slot's adapter handler on the dispatcher.
func (h Handle[S, P]) HandlerID() dispatch.HandlerID {
	return h.slot.handler
}

// Poisoned reports whether the slot has been poisoned.
func (h Handle[S, P]) Poisoned() bool {
	return h.slot.poisoned() != nil
}
