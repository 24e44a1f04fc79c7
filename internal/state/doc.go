// Package state holds typed state objects behind lock-guarded slots.
//
// Two update disciplines share one Registry:
//
//   - Model: Update(ctx, msg) returns a Cmd, driven by message payloads.
//   - Store: Reduce(ctx, action) mutates in place, driven by action payloads.
//
// Adding a value creates a slot keyed by the value's concrete type and
// registers an adapter handler on the dispatcher, so events whose message
// or action projection has the slot's payload type reach it. The returned
// Handle reads snapshots under the slot's read lock and writes directly
// under its write lock without going through the dispatcher.
//
// A write issued with the context of a write already in progress on the same
// slot is applied after the current update returns, under the same lock
// acquisition. A panic inside Update or Reduce poisons the slot; every later
// State call panics and every later write fails with ErrPoisoned.
package state
