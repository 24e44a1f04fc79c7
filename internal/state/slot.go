package state

import (
	"context"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/dshills/purdah/internal/dispatch"
)

// SlotInfo describes one registered slot.
type SlotInfo struct {
	Type      string             `json:"type"`
	Kind      dispatch.Kind      `json:"kind"`
	Payload   string             `json:"payload"`
	StateType string             `json:"state_type"`
	Handler   dispatch.HandlerID `json:"handler"`
	Writes    uint64             `json:"writes"`
	Poisoned  bool               `json:"poisoned"`
}

// entry is the type-erased view of a slot kept in the registry map.
type entry interface {
	info() SlotInfo
	handlerID() dispatch.HandlerID
}

// slot owns one state object. S is the snapshot type, P the payload type.
type slot[S, P any] struct {
	typ     reflect.Type
	kind    dispatch.Kind
	handler dispatch.HandlerID

	mu       sync.RWMutex
	apply    func(ctx context.Context, p P)
	snapshot func() S

	poison atomic.Pointer[PoisonedError]
	writes atomic.Uint64
}

// writeKey scopes a write marker to one slot.
type writeKey struct {
	slot any
}

// writeMark collects payloads written to a slot from inside its own update.
type writeMark[P any] struct {
	mu      sync.Mutex
	pending []P
	closed  bool
}

func (m *writeMark[P]) push(p P) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false
	}
	m.pending = append(m.pending, p)
	return true
}

func (m *writeMark[P]) next() (P, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero P
	if len(m.pending) == 0 {
		m.closed = true
		return zero, false
	}
	p := m.pending[0]
	m.pending[0] = zero
	m.pending = m.pending[1:]
	return p, true
}

func (s *slot[S, P]) poisoned() error {
	if perr := s.poison.Load(); perr != nil {
		return perr
	}
	return nil
}

// write applies p under the write lock. A write made with the context of an
// update already running on s is queued behind it instead.
func (s *slot[S, P]) write(ctx context.Context, p P) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if mark, ok := ctx.Value(writeKey{s}).(*writeMark[P]); ok && mark.push(p) {
		return nil
	}
	if err := s.poisoned(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.poisoned(); err != nil {
		return err
	}

	mark := &writeMark[P]{}
	wctx := context.WithValue(ctx, writeKey{s}, mark)
	s.applyLocked(wctx, p)
	for {
		next, ok := mark.next()
		if !ok {
			break
		}
		s.applyLocked(wctx, next)
	}
	return nil
}

// applyLocked runs one update. A panic poisons the slot and keeps unwinding.
func (s *slot[S, P]) applyLocked(ctx context.Context, p P) {
	defer func() {
		if r := recover(); r != nil {
			s.poison.CompareAndSwap(nil, &PoisonedError{Type: s.typ, Value: r})
			panic(r)
		}
	}()
	s.apply(ctx, p)
	s.writes.Add(1)
}

func (s *slot[S, P]) read() S {
	if perr := s.poison.Load(); perr != nil {
		panic(perr)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if perr := s.poison.Load(); perr != nil {
		panic(perr)
	}
	return s.snapshot()
}

func (s *slot[S, P]) handlerID() dispatch.HandlerID {
	return s.handler
}

func (s *slot[S, P]) info() SlotInfo {
	return SlotInfo{
		Type:      s.typ.String(),
		Kind:      s.kind,
		Payload:   reflect.TypeFor[P]().String(),
		StateType: reflect.TypeFor[S]().String(),
		Handler:   s.handler,
		Writes:    s.writes.Load(),
		Poisoned:  s.poison.Load() != nil,
	}
}
