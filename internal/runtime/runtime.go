// Package runtime is the composition root for a dispatcher and its registry.
//
// A Runtime is built from configuration, installs the configured middleware
// (logging, tracing, recorder, Lua scripts, in that order) and is passed
// explicitly to the code that needs it. Frontends call ProcessEvents once per
// frame to drain queued events.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"go.opentelemetry.io/otel/trace"

	"github.com/dshills/purdah/internal/config"
	"github.com/dshills/purdah/internal/devtools"
	"github.com/dshills/purdah/internal/dispatch"
	"github.com/dshills/purdah/internal/event"
	"github.com/dshills/purdah/internal/logging"
	"github.com/dshills/purdah/internal/middleware"
	"github.com/dshills/purdah/internal/state"
	"github.com/dshills/purdah/internal/telemetry"
)

// ErrClosed is returned by operations on a closed runtime.
var ErrClosed = errors.New("runtime is closed")

// Option configures New.
type Option func(*options)

type options struct {
	logger         *logging.Logger
	output         io.Writer
	tracerProvider trace.TracerProvider
}

// WithLogger uses l instead of building a logger from configuration.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithLogOutput sets where the configured logger writes. Default os.Stderr.
func WithLogOutput(w io.Writer) Option {
	return func(o *options) {
		o.output = w
	}
}

// WithTracerProvider installs tracing with tp regardless of telemetry
// configuration.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.tracerProvider = tp
	}
}

// Runtime owns one dispatcher and one registry.
type Runtime struct {
	mu     sync.Mutex
	cfg    config.Config
	closed bool

	logger     *logging.Logger
	dispatcher *dispatch.Dispatcher
	registry   *state.Registry
	recorder   *devtools.Recorder
	scripts    []*middleware.Script
	shutdown   telemetry.ShutdownFunc
}

// New builds a runtime from cfg.
func New(ctx context.Context, cfg config.Config, opts ...Option) (*Runtime, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	o := options{output: os.Stderr}
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if logger == nil {
		var err error
		logger, err = logging.New(o.output, cfg.Log.Level, cfg.Log.Format)
		if err != nil {
			return nil, err
		}
	}

	policy, err := state.ParseDuplicatePolicy(cfg.Dispatch.OnDuplicate)
	if err != nil {
		return nil, err
	}

	d := dispatch.New(
		dispatch.WithRecover(cfg.Dispatch.RecoverPanics),
		dispatch.WithQueueCapacity(cfg.Dispatch.QueueCapacity),
		dispatch.WithLogger(logger.With("component", "dispatch")),
	)
	rt := &Runtime{
		cfg:        cfg,
		logger:     logger,
		dispatcher: d,
		registry: state.NewRegistry(d,
			state.WithDuplicatePolicy(policy),
			state.WithLogger(logger.With("component", "state")),
		),
		shutdown: func(context.Context) error { return nil },
	}

	if cfg.Middleware.Logging {
		d.Use(middleware.NewLogging(logger.With("component", "middleware"), slog.LevelDebug))
	}

	tp := o.tracerProvider
	if tp == nil && cfg.Telemetry.Enabled {
		provider, shutdown, err := telemetry.Setup(ctx, cfg.Telemetry)
		if err != nil {
			return nil, fmt.Errorf("telemetry setup: %w", err)
		}
		tp, rt.shutdown = provider, shutdown
	}
	if tp != nil {
		d.Use(middleware.NewTracing(tp.Tracer(telemetry.InstrumentationName)))
	}

	if cfg.Devtools.Record {
		rt.recorder = devtools.NewRecorder(cfg.Devtools.HistorySize)
		d.Use(rt.recorder)
	}

	for _, path := range cfg.Middleware.Scripts {
		s, err := middleware.LoadScript(path, middleware.WithScriptLogger(logger.With("component", "script")))
		if err != nil {
			_ = rt.Close(ctx)
			return nil, err
		}
		rt.scripts = append(rt.scripts, s)
		d.Use(s)
	}

	logger.Debug("runtime ready",
		"middleware", d.Middleware(),
		"recover_panics", cfg.Dispatch.RecoverPanics,
		"queue_capacity", cfg.Dispatch.QueueCapacity,
		"on_duplicate", policy.String(),
	)
	return rt, nil
}

// Dispatcher returns the runtime's dispatcher.
func (rt *Runtime) Dispatcher() *dispatch.Dispatcher { return rt.dispatcher }

// Registry returns the runtime's registry.
func (rt *Runtime) Registry() *state.Registry { return rt.registry }

// Recorder returns the dispatch recorder, or nil when recording is disabled.
func (rt *Runtime) Recorder() *devtools.Recorder { return rt.recorder }

// Logger returns the runtime logger.
func (rt *Runtime) Logger() *logging.Logger { return rt.logger }

// Config returns the active configuration.
func (rt *Runtime) Config() config.Config {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.cfg
}

// Dispatch delivers ev immediately.
func (rt *Runtime) Dispatch(ctx context.Context, ev event.Event) dispatch.Report {
	return rt.dispatcher.Dispatch(ctx, ev)
}

// Queue defers ev until the next ProcessEvents.
func (rt *Runtime) Queue(ev event.Event) error {
	return rt.dispatcher.Queue(ev)
}

// ProcessEvents drains the queue. Call it once per frame.
func (rt *Runtime) ProcessEvents(ctx context.Context) []dispatch.Report {
	reports := rt.dispatcher.Drain(ctx)
	for _, r := range reports {
		if err := r.Err(); err != nil {
			rt.logger.Warn("queued event failed", "event", r.EventType, "error", err)
		}
	}
	return reports
}

// Inspect captures a debugging snapshot.
func (rt *Runtime) Inspect() devtools.Snapshot {
	return devtools.Inspect(rt.registry, rt.recorder)
}

// Apply hot-applies reloadable settings from cfg: the log level and recorder
// pausing. Other changes need a restart and are logged.
func (rt *Runtime) Apply(cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.closed {
		return ErrClosed
	}

	if err := rt.logger.SetLevel(cfg.Log.Level); err != nil {
		return err
	}
	if rt.recorder != nil {
		if cfg.Devtools.Record {
			rt.recorder.Resume()
		} else {
			rt.recorder.Pause()
		}
	}

	old := rt.cfg
	if old.Dispatch != cfg.Dispatch || old.Log.Format != cfg.Log.Format ||
		old.Middleware.Logging != cfg.Middleware.Logging || old.Telemetry != cfg.Telemetry ||
		!equalStrings(old.Middleware.Scripts, cfg.Middleware.Scripts) ||
		(old.Devtools.Record != cfg.Devtools.Record && rt.recorder == nil) {
		rt.logger.Warn("config change requires restart")
	}

	rt.cfg = cfg
	rt.logger.Info("config applied", "log_level", cfg.Log.Level)
	return nil
}

// Close releases scripts and flushes telemetry. It is safe to call twice.
func (rt *Runtime) Close(ctx context.Context) error {
	rt.mu.Lock()
	if rt.closed {
		rt.mu.Unlock()
		return nil
	}
	rt.closed = true
	scripts := rt.scripts
	shutdown := rt.shutdown
	rt.mu.Unlock()

	var errs []error
	for _, s := range scripts {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if shutdown != nil {
		if err := shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("telemetry shutdown: %w", err))
		}
	}
	return errors.Join(errs...)
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
