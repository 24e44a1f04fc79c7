package dispatch

import (
	"context"
	"log/slog"
	"reflect"
	"runtime"
	"sync"
	"time"

	"github.com/dshills/purdah/internal/event"
)

// Dispatcher routes events to typed handlers through a middleware chain.
type Dispatcher struct {
	messages *table
	actions  *table
	chain    chain

	queueMu sync.Mutex
	queue   []event.Event

	config  config
	metrics *metrics
}

// New creates a dispatcher.
func New(opts ...Option) *Dispatcher {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Dispatcher{
		messages: newTable(KindMessage),
		actions:  newTable(KindAction),
		config:   cfg,
		metrics:  newMetrics(),
	}
}

func (d *Dispatcher) tableFor(kind Kind) *table {
	switch kind {
	case KindMessage:
		return d.messages
	case KindAction:
		return d.actions
	default:
		return nil
	}
}

// Register appends fn to the kind table for payload type typ. It panics on an
// unknown kind, a nil type or a nil handler.
func (d *Dispatcher) Register(kind Kind, typ reflect.Type, fn HandlerFunc) HandlerID {
	t := d.tableFor(kind)
	if t == nil {
		panic("dispatch: unknown handler kind")
	}
	if typ == nil || fn == nil {
		panic("dispatch: nil handler type or func")
	}
	id := t.add(typ, fn)
	d.config.logger.Debug("handler registered", "handler", id.String())
	return id
}

// Unregister tombstones the entry for id. Other entries keep their indices and
// order. It returns true only for the call that actually deactivated the
// entry; unknown ids and repeated calls are no-ops.
func (d *Dispatcher) Unregister(id HandlerID) bool {
	t := d.tableFor(id.Kind)
	if t == nil || id.IsZero() {
		return false
	}
	ok := t.tombstone(id.Type, id.Index)
	if ok {
		d.config.logger.Debug("handler unregistered", "handler", id.String())
	}
	return ok
}

// Use appends middleware to the chain. Nil entries are ignored.
func (d *Dispatcher) Use(mws ...Middleware) {
	d.chain.add(mws...)
}

// Middleware returns installed middleware names in chain order.
func (d *Dispatcher) Middleware() []string {
	return d.chain.names()
}

// HandlerCount returns the number of live handlers for typ in the kind table.
func (d *Dispatcher) HandlerCount(kind Kind, typ reflect.Type) int {
	t := d.tableFor(kind)
	if t == nil {
		return 0
	}
	live, _ := t.count(typ)
	return live
}

// Dispatch delivers ev synchronously: before hooks, message handlers, action
// handlers, after hooks. When ctx comes from a handler running inside an
// open Dispatch on d, ev is deferred until the outer event completes and the
// returned report has Deferred set.
func (d *Dispatcher) Dispatch(ctx context.Context, ev event.Event) Report {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := event.Validate(ev); err != nil {
		return Report{Errors: []error{err}}
	}

	if f := d.frameFrom(ctx); f != nil && f.push(ev) {
		d.metrics.recordDeferred()
		return Report{
			EventType: ev.EventType(),
			EventID:   event.MetadataOf(ev).ID,
			Deferred:  true,
		}
	}

	ctx, f := d.openFrame(ctx)
	report := d.deliver(ctx, ev)
	for {
		next, ok := f.next()
		if !ok {
			break
		}
		report.Followups = append(report.Followups, d.deliver(ctx, next))
	}
	return report
}

func (d *Dispatcher) deliver(ctx context.Context, ev event.Event) Report {
	start := time.Now()
	report := Report{
		EventType: ev.EventType(),
		EventID:   event.MetadataOf(ev).ID,
	}

	mws := d.chain.snapshot()
	for _, mw := range mws {
		next, verdict := mw.Before(ctx, ev)
		if next != nil {
			ctx = next
		}
		if verdict == Cancel && !report.Cancelled {
			report.Cancelled = true
			report.CancelledBy = mw.Name()
		}
	}

	msg, hasMsg := event.MessageOf(ev)
	action, hasAction := event.ActionOf(ev)
	report.Message = hasMsg
	report.Action = hasAction

	panics := 0
	if !report.Cancelled {
		if hasMsg {
			panics += d.invoke(ctx, d.messages, msg, &report)
		}
		if hasAction {
			panics += d.invoke(ctx, d.actions, action, &report)
		}
	} else {
		d.config.logger.Debug("delivery cancelled",
			"event", report.EventType,
			"middleware", report.CancelledBy,
		)
	}

	report.Duration = time.Since(start)
	d.metrics.recordDispatch(&report, panics)

	for _, mw := range mws {
		mw.After(ctx, ev, report)
	}
	return report
}

// invoke calls every live entry for payload's concrete type in registration
// order and returns the number of recovered panics.
func (d *Dispatcher) invoke(ctx context.Context, t *table, payload any, report *Report) int {
	panics := 0
	for _, e := range t.lookup(reflect.TypeOf(payload)) {
		if !e.live.Load() {
			continue
		}
		report.Delivered++
		err := d.call(ctx, e, payload)
		if err == nil {
			continue
		}
		if _, ok := err.(*PanicError); ok {
			panics++
		}
		report.Errors = append(report.Errors, err)
		d.config.logger.Error("handler failed",
			"event", report.EventType,
			"handler", e.id.String(),
			"error", err,
		)
	}
	return panics
}

func (d *Dispatcher) call(ctx context.Context, e *entry, payload any) (err error) {
	if d.config.recoverPanics {
		defer func() {
			if r := recover(); r != nil {
				stack := make([]byte, 4096)
				n := runtime.Stack(stack, false)
				err = &PanicError{ID: e.id, Value: r, Stack: string(stack[:n])}
			}
		}()
	}
	if herr := e.fn(ctx, payload); herr != nil {
		return &HandlerError{ID: e.id, Err: herr}
	}
	return nil
}

// Queue appends ev to the pending queue without running middleware or
// handlers.
func (d *Dispatcher) Queue(ev event.Event) error {
	if err := event.Validate(ev); err != nil {
		return err
	}

	d.queueMu.Lock()
	if d.config.queueCapacity > 0 && len(d.queue) >= d.config.queueCapacity {
		d.queueMu.Unlock()
		return ErrQueueFull
	}
	d.queue = append(d.queue, ev)
	d.queueMu.Unlock()

	d.metrics.recordQueued()
	return nil
}

// Pending returns the number of queued events.
func (d *Dispatcher) Pending() int {
	d.queueMu.Lock()
	defer d.queueMu.Unlock()
	return len(d.queue)
}

// Drain dispatches the events queued at call time, oldest first, through the
// same path as Dispatch. Events queued while draining wait for the next call.
func (d *Dispatcher) Drain(ctx context.Context) []Report {
	d.queueMu.Lock()
	batch := d.queue
	d.queue = nil
	d.queueMu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	reports := make([]Report, 0, len(batch))
	for _, ev := range batch {
		reports = append(reports, d.Dispatch(ctx, ev))
	}
	d.metrics.recordDrained(len(batch))
	return reports
}

// Stats returns a snapshot of dispatcher counters.
func (d *Dispatcher) Stats() Stats {
	s := d.metrics.snapshot()
	s.Handlers = d.messages.liveTotal() + d.actions.liveTotal()
	s.Middleware = d.chain.names()
	return s
}

// Logger returns the dispatcher's logger.
func (d *Dispatcher) Logger() *slog.Logger {
	return d.config.logger
}
