package state

import "context"

// Cmd describes a side effect requested by a model update. Commands are not
// executed; a non-nil Cmd is logged and dropped.
type Cmd func(ctx context.Context) any

// None is the empty command.
var None Cmd

// Model is the update-function discipline: each message produces an
// optional command and State returns an owned snapshot.
type Model[S, M any] interface {
	Update(ctx context.Context, msg M) Cmd
	State() S
}

// Store is the reducer discipline: actions mutate the store in place.
type Store[S, A any] interface {
	Reduce(ctx context.Context, action A)
	State() S
}
