package state

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"sync"

	"github.com/dshills/purdah/internal/dispatch"
)

// Registry maps concrete state types to slots. It is owned by the composition
// root and wired to exactly one dispatcher.
type Registry struct {
	mu    sync.RWMutex
	slots map[reflect.Type]entry

	dispatcher *dispatch.Dispatcher
	policy     DuplicatePolicy
	logger     *slog.Logger
}

// NewRegistry creates a registry that wires its slots to d.
func NewRegistry(d *dispatch.Dispatcher, opts ...Option) *Registry {
	if d == nil {
		panic("state: nil dispatcher")
	}
	r := &Registry{
		slots:      make(map[reflect.Type]entry),
		dispatcher: d,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Dispatcher returns the dispatcher slots are wired to.
func (r *Registry) Dispatcher() *dispatch.Dispatcher {
	return r.dispatcher
}

// Policy returns the duplicate add policy.
func (r *Registry) Policy() DuplicatePolicy {
	return r.policy
}

// AddModel registers m under its concrete type and subscribes it to message
// payloads of type M.
func AddModel[S, M any](r *Registry, m Model[S, M]) (Handle[S, M], error) {
	if isNil(m) {
		return Handle[S, M]{}, ErrNilState
	}
	typ := reflect.TypeOf(m)
	s := &slot[S, M]{
		typ:      typ,
		kind:     dispatch.KindMessage,
		snapshot: m.State,
	}
	s.apply = func(ctx context.Context, msg M) {
		if cmd := m.Update(ctx, msg); cmd != nil {
			r.logger.Debug("command discarded", "state", typ.String())
		}
	}
	return install(r, s, func() dispatch.HandlerID {
		return dispatch.RegisterMessage(r.dispatcher, s.write)
	})
}

// AddStore registers st under its concrete type and subscribes it to action
// payloads of type A.
func AddStore[S, A any](r *Registry, st Store[S, A]) (Handle[S, A], error) {
	if isNil(st) {
		return Handle[S, A]{}, ErrNilState
	}
	s := &slot[S, A]{
		typ:      reflect.TypeOf(st),
		kind:     dispatch.KindAction,
		apply:    st.Reduce,
		snapshot: st.State,
	}
	return install(r, s, func() dispatch.HandlerID {
		return dispatch.RegisterAction(r.dispatcher, s.write)
	})
}

func install[S, P any](r *Registry, s *slot[S, P], register func() dispatch.HandlerID) (Handle[S, P], error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	old, exists := r.slots[s.typ]
	if exists && r.policy != DuplicateReplace {
		return Handle[S, P]{}, fmt.Errorf("%w: %s", ErrAlreadyRegistered, s.typ)
	}

	s.handler = register()
	r.slots[s.typ] = s

	if exists {
		r.dispatcher.Unregister(old.handlerID())
		r.logger.Debug("state replaced",
			"state", s.typ.String(),
			"old_handler", old.handlerID().String(),
			"handler", s.handler.String(),
		)
	} else {
		r.logger.Debug("state added",
			"state", s.typ.String(),
			"kind", s.kind.String(),
			"handler", s.handler.String(),
		)
	}
	return Handle[S, P]{slot: s, dispatcher: r.dispatcher}, nil
}

// Get returns a handle to the slot for concrete type T. It reports false when
// T was never added or when the slot's snapshot or payload type differs from
// S and P.
func Get[T, S, P any](r *Registry) (Handle[S, P], bool) {
	r.mu.RLock()
	e, ok := r.slots[reflect.TypeFor[T]()]
	r.mu.RUnlock()
	if !ok {
		return Handle[S, P]{}, false
	}
	s, ok := e.(*slot[S, P])
	if !ok {
		return Handle[S, P]{}, false
	}
	return Handle[S, P]{slot: s, dispatcher: r.dispatcher}, true
}

// Has reports whether typ has a slot.
func (r *Registry) Has(typ reflect.Type) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.slots[typ]
	return ok
}

// Len returns the number of slots.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.slots)
}

// Types returns the registered concrete types sorted by name.
func (r *Registry) Types() []reflect.Type {
	r.mu.RLock()
	types := make([]reflect.Type, 0, len(r.slots))
	for typ := range r.slots {
		types = append(types, typ)
	}
	r.mu.RUnlock()

	sort.Slice(types, func(i, j int) bool {
		return types[i].String() < types[j].String()
	})
	return types
}

// Describe returns slot descriptions sorted by type name.
func (r *Registry) Describe() []SlotInfo {
	r.mu.RLock()
	infos := make([]SlotInfo, 0, len(r.slots))
	for _, e := range r.slots {
		infos = append(infos, e.info())
	}
	r.mu.RUnlock()

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Type < infos[j].Type
	})
	return infos
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
