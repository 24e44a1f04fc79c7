// Package bridge forwards payloads between the two state disciplines.
//
// A bridge is an ordinary dispatcher handler: it converts a message into an
// action (or the reverse) and writes it to a target handle. Bridges are
// unregistered like any other handler.
package bridge

import (
	"context"

	"github.com/dshills/purdah/internal/dispatch"
	"github.com/dshills/purdah/internal/state"
)

// MessageToAction forwards messages of type M to target as actions. When
// convert reports false the message is ignored.
func MessageToAction[M, A, S any](d *dispatch.Dispatcher, convert func(M) (A, bool), target state.Handle[S, A]) dispatch.HandlerID {
	if convert == nil || target.IsZero() {
		panic("bridge: nil converter or zero target handle")
	}
	return dispatch.RegisterMessage(d, func(ctx context.Context, msg M) error {
		action, ok := convert(msg)
		if !ok {
			return nil
		}
		return target.Dispatch(ctx, action)
	})
}

// ActionToMessage forwards actions of type A to target as messages. When
// convert reports false the action is ignored.
func ActionToMessage[A, M, S any](d *dispatch.Dispatcher, convert func(A) (M, bool), target state.Handle[S, M]) dispatch.HandlerID {
	if convert == nil || target.IsZero() {
		panic("bridge: nil converter or zero target handle")
	}
	return dispatch.RegisterAction(d, func(ctx context.Context, action A) error {
		msg, ok := convert(action)
		if !ok {
			return nil
		}
		return target.Dispatch(ctx, msg)
	})
}

// Always wraps a total conversion for use with the bridge constructors.
func Always[From, To any](fn func(From) To) func(From) (To, bool) {
	return func(v From) (To, bool) {
		return fn(v), true
	}
}
