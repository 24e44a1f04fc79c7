// Package demo holds two small state objects used by the purdah binary and
// its frontends.
//
// Counter follows the update-function discipline and is registered with
// state.AddModel. TodoStore follows the reducer discipline and is registered
// with state.AddStore. Install registers both and links them with a bridge so
// that clearing the todo list also resets the counter.
package demo
