// Package dispatch routes events to type-erased handlers.
//
// The Dispatcher owns two handler tables, one for message payloads and one
// for action payloads, each keyed by the payload's concrete type, plus an
// ordered middleware chain and a FIFO pending queue.
//
// # Dispatch sequence
//
// Dispatch runs four steps to completion on the calling goroutine:
//
//  1. every middleware Before hook, in registration order
//  2. if the event projects a message, every live handler registered for the
//     message's concrete type, in registration order
//  3. the same for the event's action projection against the action table
//  4. every middleware After hook, in registration order
//
// A Before hook may return Cancel. Cancellation skips steps 2 and 3 only; all
// Before and After hooks still run. Middleware that always returns Continue
// never affects delivery.
//
// # Handler table
//
// Each table is an arena of entries with stable indices. Unregister turns an
// entry into a tombstone instead of removing it, so a HandlerID stays valid
// for the dispatcher's lifetime and the firing order of other handlers never
// changes.
//
//	id := dispatch.RegisterMessage(d, func(ctx context.Context, msg CounterMsg) error {
//	    return nil
//	})
//	d.Unregister(id) // tombstone; safe to call again
//
// # Deferred delivery
//
// Queue appends an event without running anything. Drain takes the events
// pending at call time and dispatches each one, oldest first, through the
// same four-step path as Dispatch. Events queued during a Drain wait for the
// next Drain.
//
// # Reentrancy
//
// Handlers receive a context that marks an active dispatch. Calling Dispatch
// with that context does not nest: the event is deferred and delivered after
// the current event's After hooks, before the outer Dispatch returns. The
// deferred reports are attached to the outer report as Followups.
//
// # Thread safety
//
// The handler tables, the middleware chain and the pending queue have
// independent locks. No lock is held while a handler or hook runs, so
// handlers may register, unregister or queue freely.
package dispatch
