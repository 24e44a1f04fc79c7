package dispatch

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
)

// Kind selects one of the dispatcher's two handler tables.
type Kind uint8

const (
	// KindMessage is the table for update-function message payloads.
	KindMessage Kind = iota + 1

	// KindAction is the table for reducer action payloads.
	KindAction
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindMessage:
		return "message"
	case KindAction:
		return "action"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// HandlerID identifies one entry in a handler table. It stays valid after the
// entry is unregistered.
type HandlerID struct {
	Kind  Kind
	Type  reflect.Type
	Index int
}

// IsZero reports whether id was never assigned.
func (id HandlerID) IsZero() bool {
	return id.Type == nil
}

// String formats the id as kind(type)#index.
func (id HandlerID) String() string {
	if id.IsZero() {
		return "handler(none)"
	}
	return fmt.Sprintf("%s(%s)#%d", id.Kind, id.Type, id.Index)
}

// MarshalText encodes the id in its String form.
func (id HandlerID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// HandlerFunc is the type-erased form every handler is stored as. A handler
// that does not accept the payload's concrete type returns nil.
type HandlerFunc func(ctx context.Context, payload any) error

type entry struct {
	id   HandlerID
	fn   HandlerFunc
	live atomic.Bool
}

// table is an append-only arena of handler entries per payload type.
type table struct {
	kind    Kind
	mu      sync.RWMutex
	entries map[reflect.Type][]*entry
}

func newTable(kind Kind) *table {
	return &table{
		kind:    kind,
		entries: make(map[reflect.Type][]*entry),
	}
}

func (t *table) add(typ reflect.Type, fn HandlerFunc) HandlerID {
	t.mu.Lock()
	defer t.mu.Unlock()

	list := t.entries[typ]
	e := &entry{
		id: HandlerID{Kind: t.kind, Type: typ, Index: len(list)},
		fn: fn,
	}
	e.live.Store(true)
	t.entries[typ] = append(list, e)
	return e.id
}

// tombstone marks the entry inert. It reports whether the entry was live.
func (t *table) tombstone(typ reflect.Type, index int) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	list := t.entries[typ]
	if index < 0 || index >= len(list) {
		return false
	}
	return list[index].live.Swap(false)
}

// lookup returns a copy of the entry list for typ. Entries may be tombstoned
// after the copy is taken; callers check live before invoking.
func (t *table) lookup(typ reflect.Type) []*entry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	list := t.entries[typ]
	if len(list) == 0 {
		return nil
	}
	out := make([]*entry, len(list))
	copy(out, list)
	return out
}

// count returns the number of live entries and the arena length for typ.
func (t *table) count(typ reflect.Type) (live, total int) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	list := t.entries[typ]
	for _, e := range list {
		if e.live.Load() {
			live++
		}
	}
	return live, len(list)
}

func (t *table) liveTotal() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n := 0
	for _, list := range t.entries {
		for _, e := range list {
			if e.live.Load() {
				n++
			}
		}
	}
	return n
}

// adapt wraps a typed callback. Payloads of other types are not applicable
// and are skipped without error.
func adapt[P any](fn func(context.Context, P) error) HandlerFunc {
	return func(ctx context.Context, payload any) error {
		p, ok := payload.(P)
		if !ok {
			return nil
		}
		return fn(ctx, p)
	}
}

// RegisterMessage registers fn for message payloads of concrete type M.
func RegisterMessage[M any](d *Dispatcher, fn func(ctx context.Context, msg M) error) HandlerID {
	if fn == nil {
		panic("dispatch: nil message handler")
	}
	return d.Register(KindMessage, reflect.TypeFor[M](), adapt(fn))
}

// RegisterAction registers fn for action payloads of concrete type A.
func RegisterAction[A any](d *Dispatcher, fn func(ctx context.Context, action A) error) HandlerID {
	if fn == nil {
		panic("dispatch: nil action handler")
	}
	return d.Register(KindAction, reflect.TypeFor[A](), adapt(fn))
}
