package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/purdah/internal/dispatch"
	"github.com/dshills/purdah/internal/event"
)

// Script is middleware implemented by a Lua chunk defining global
// before(evt) and/or after(evt, report) functions. Returning false from
// before cancels delivery; any other result continues. Script errors are
// logged and never cancel.
//
// The Lua state is not goroutine-safe; hooks are serialised by a mutex.
type Script struct {
	name   string
	logger *slog.Logger

	mu     sync.Mutex
	L      *lua.LState
	before *lua.LFunction
	after  *lua.LFunction
	closed bool

	failures atomic.Uint64
}

// ScriptOption configures a Script.
type ScriptOption func(*Script)

// WithScriptLogger sets the logger for script output and failures.
func WithScriptLogger(l *slog.Logger) ScriptOption {
	return func(s *Script) {
		if l != nil {
			s.logger = l
		}
	}
}

// LoadScript compiles the Lua file at path.
func LoadScript(path string, opts ...ScriptOption) (*Script, error) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return newScript(name, func(L *lua.LState) error { return L.DoFile(path) }, opts)
}

// NewScript compiles Lua source under name.
func NewScript(name, source string, opts ...ScriptOption) (*Script, error) {
	return newScript(name, func(L *lua.LState) error { return L.DoString(source) }, opts)
}

func newScript(name string, run func(*lua.LState) error, opts []ScriptOption) (*Script, error) {
	s := &Script{
		name:   name,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(L)
	L.SetGlobal("log", L.NewFunction(s.luaLog))

	if err := protect(func() error { return run(L) }); err != nil {
		L.Close()
		return nil, fmt.Errorf("loading script %s: %w", name, err)
	}

	s.before, _ = L.GetGlobal("before").(*lua.LFunction)
	s.after, _ = L.GetGlobal("after").(*lua.LFunction)
	if s.before == nil && s.after == nil {
		L.Close()
		return nil, fmt.Errorf("%w: %s", ErrNoHooks, name)
	}
	s.L = L
	return s, nil
}

// openSafeLibraries opens base, table, string and math only, and removes the
// base functions that load code from disk or strings.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		L.SetGlobal(name, lua.LNil)
	}
}

func protect(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// Name implements dispatch.Middleware.
func (s *Script) Name() string { return "lua:" + s.name }

// Failures returns the number of hook invocations that raised an error.
func (s *Script) Failures() uint64 { return s.failures.Load() }

// Before implements dispatch.Middleware.
func (s *Script) Before(ctx context.Context, ev event.Event) (context.Context, dispatch.Verdict) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.before == nil {
		return ctx, dispatch.Continue
	}

	ret, err := s.call(s.before, s.eventTable(ev))
	if err != nil {
		s.fail(ctx, "before", ev, err)
		return ctx, dispatch.Continue
	}
	if ret == lua.LFalse {
		return ctx, dispatch.Cancel
	}
	return ctx, dispatch.Continue
}

// After implements dispatch.Middleware.
func (s *Script) After(ctx context.Context, ev event.Event, r dispatch.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.after == nil {
		return
	}

	if _, err := s.call(s.after, s.eventTable(ev), s.reportTable(r)); err != nil {
		s.fail(ctx, "after", ev, err)
	}
}

// Close releases the Lua state.
func (s *Script) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.L.Close()
	s.closed = true
	return nil
}

// call invokes fn and returns its first result. Callers hold s.mu.
func (s *Script) call(fn *lua.LFunction, args ...lua.LValue) (lua.LValue, error) {
	var ret lua.LValue = lua.LNil
	err := protect(func() error {
		if err := s.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, args...); err != nil {
			return err
		}
		ret = s.L.Get(-1)
		s.L.Pop(1)
		return nil
	})
	return ret, err
}

func (s *Script) fail(ctx context.Context, hook string, ev event.Event, err error) {
	s.failures.Add(1)
	s.logger.Log(ctx, slog.LevelWarn, "script hook failed",
		"script", s.name,
		"hook", hook,
		"event", ev.EventType(),
		"error", err,
	)
}

func (s *Script) eventTable(ev event.Event) *lua.LTable {
	L := s.L
	meta := event.MetadataOf(ev)
	t := L.NewTable()
	t.RawSetString("type", lua.LString(ev.EventType()))
	t.RawSetString("id", lua.LString(meta.ID))
	t.RawSetString("source", lua.LString(meta.Source))
	t.RawSetString("correlation_id", lua.LString(meta.CorrelationID))
	t.RawSetString("causation_id", lua.LString(meta.CausationID))
	if !meta.Timestamp.IsZero() {
		t.RawSetString("timestamp", lua.LNumber(meta.Timestamp.UnixMilli()))
	}
	if payload, ok := event.Payload(ev); ok {
		t.RawSetString("payload", toLua(L, payload))
	}
	return t
}

func (s *Script) reportTable(r dispatch.Report) *lua.LTable {
	L := s.L
	t := L.NewTable()
	t.RawSetString("message", lua.LBool(r.Message))
	t.RawSetString("action", lua.LBool(r.Action))
	t.RawSetString("delivered", lua.LNumber(r.Delivered))
	t.RawSetString("cancelled", lua.LBool(r.Cancelled))
	t.RawSetString("cancelled_by", lua.LString(r.CancelledBy))
	t.RawSetString("errors", lua.LNumber(len(r.Errors)))
	t.RawSetString("duration_ms", lua.LNumber(float64(r.Duration.Microseconds())/1000))
	if err := r.Err(); err != nil {
		t.RawSetString("error", lua.LString(err.Error()))
	}
	return t
}

func (s *Script) luaLog(L *lua.LState) int {
	parts := make([]string, 0, L.GetTop())
	for i := 1; i <= L.GetTop(); i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	s.logger.Info("script output", "script", s.name, "output", strings.Join(parts, " "))
	return 0
}
