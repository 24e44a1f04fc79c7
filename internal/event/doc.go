// Package event defines the values routed through the dispatcher.
//
// An Event is an immutable occurrence with a stable type tag. It may project
// itself into a message payload (consumed by update-function models), into an
// action payload (consumed by reducer stores), into both, or into neither:
//
//	┌─────────────┐   AsMessage()   ┌──────────────┐
//	│    Event    │ ──────────────▶ │ message (M)  │ ──▶ message handler table
//	│ EventType() │                 └──────────────┘
//	│             │   AsAction()    ┌──────────────┐
//	│             │ ──────────────▶ │  action (A)  │ ──▶ action handler table
//	└─────────────┘                 └──────────────┘
//
// Projections are pure derivations of the event's own data. They allocate a
// fresh payload on every call and have no side effects.
//
// # Typed events
//
// Most callers build events with New instead of implementing the interfaces:
//
//	ev := event.New("todo.add", AddTodo{Text: "Learn Go"},
//	    event.WithAction(func(e AddTodo) TodoAction { return TodoAction{Add: e.Text} }),
//	).WithSource("ui")
//	report := dispatcher.Dispatch(ctx, ev)
//
// Event type tags are dot-separated topics (see the topic subpackage) so
// middleware can filter on them with wildcard patterns.
package event
