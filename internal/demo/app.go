package demo

import (
	"github.com/dshills/purdah/internal/bridge"
	"github.com/dshills/purdah/internal/dispatch"
	"github.com/dshills/purdah/internal/state"
)

// App holds the handles of the installed demo state.
type App struct {
	Counter state.Handle[int, CounterMsg]
	Todos   state.Handle[[]Todo, TodoAction]

	// Bridge is the handler forwarding ClearTodos to the counter as Reset.
	Bridge dispatch.HandlerID
}

// Install registers a fresh Counter and TodoStore in r and bridges them.
func Install(r *state.Registry) (App, error) {
	counter, err := state.AddModel(r, NewCounter())
	if err != nil {
		return App{}, err
	}
	todos, err := state.AddStore(r, NewTodoStore())
	if err != nil {
		return App{}, err
	}

	id := bridge.ActionToMessage(r.Dispatcher(), clearResets, counter)
	return App{Counter: counter, Todos: todos, Bridge: id}, nil
}

func clearResets(a TodoAction) (CounterMsg, bool) {
	if a.Kind != ClearTodos {
		return CounterMsg{}, false
	}
	return CounterMsg{Op: Reset}, true
}
