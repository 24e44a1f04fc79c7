// Package main is the entry point for the purdah demo.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/purdah/internal/config"
	"github.com/dshills/purdah/internal/demo"
	"github.com/dshills/purdah/internal/demo/frontend"
	"github.com/dshills/purdah/internal/runtime"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

type options struct {
	configPath string
	frontend   string
	logFile    string
	logLevel   string
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		return 1
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}

	logOut, closeLog, err := openLog(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open log: %v\n", err)
		return 1
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := runtime.New(ctx, cfg, runtime.WithLogOutput(logOut))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	// Ensure cleanup on all exit paths
	defer func() {
		if err := rt.Close(context.Background()); err != nil {
			rt.Logger().Error("shutdown", "error", err)
		}
	}()

	if opts.configPath != "" {
		w, err := config.NewWatcher(opts.configPath, config.WithWatcherLogger(rt.Logger().Logger))
		if err != nil {
			rt.Logger().Warn("config watch disabled", "error", err)
		} else {
			defer w.Close()
			w.OnChange(func(next config.Config) {
				if opts.logLevel != "" {
					next.Log.Level = opts.logLevel
				}
				if err := rt.Apply(next); err != nil {
					rt.Logger().Warn("config not applied", "error", err)
				}
			})
			if err := w.Start(ctx); err != nil {
				rt.Logger().Warn("config watch disabled", "error", err)
			}
		}
	}

	app, err := demo.Install(rt.Registry())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	ctl := frontend.NewController(rt, app)

	switch opts.frontend {
	case "tcell":
		err = runTerminal(ctx, ctl)
	case "tea":
		err = frontend.RunTea(ctx, ctl)
	case "headless":
		err = runHeadless(ctx, rt, app)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func runTerminal(ctx context.Context, ctl *frontend.Controller) error {
	term, err := frontend.NewTerminal(ctl)
	if err != nil {
		return fmt.Errorf("failed to create terminal: %w", err)
	}
	if err := term.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}
	defer term.Shutdown()
	return term.Run(ctx)
}

// runHeadless plays both demo scripts through the queue and prints a
// snapshot of the runtime.
func runHeadless(ctx context.Context, rt *runtime.Runtime, app demo.App) error {
	for _, a := range []demo.TodoAction{
		demo.Add("Learn Rust"),
		demo.Add("Build GPUI app"),
		demo.Add("Master Hybrid TEA-Flux"),
		demo.Toggle(1),
		demo.Remove(2),
	} {
		if err := rt.Queue(demo.TodoEvent(a)); err != nil {
			return err
		}
	}
	for _, m := range []demo.CounterMsg{
		{Op: demo.Increment},
		{Op: demo.Increment},
		{Op: demo.Decrement},
		{Op: demo.Set, Value: 42},
		{Op: demo.Reset},
	} {
		if err := rt.Queue(demo.CounterEvent(m)); err != nil {
			return err
		}
	}
	rt.ProcessEvents(ctx)

	fmt.Printf("count: %d\n", app.Counter.State())
	for _, t := range app.Todos.State() {
		mark := " "
		if t.Completed {
			mark = "x"
		}
		fmt.Printf("[%s] %d. %s\n", mark, t.ID, t.Text)
	}
	return rt.Inspect().WriteJSON(os.Stdout)
}

func openLog(opts options) (io.Writer, func(), error) {
	if opts.logFile != "" {
		f, err := os.OpenFile(opts.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		return f, func() { _ = f.Close() }, nil
	}
	// Terminal frontends own the screen.
	if opts.frontend == "headless" {
		return os.Stderr, func() {}, nil
	}
	return io.Discard, func() {}, nil
}

func parseFlags() options {
	var opts options
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.configPath, "config", "", "Path to configuration file (.toml, .yaml)")
	flag.StringVar(&opts.configPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.frontend, "frontend", "tcell", "Frontend (tcell, tea, headless)")
	flag.StringVar(&opts.frontend, "f", "tcell", "Frontend (shorthand)")
	flag.StringVar(&opts.logFile, "log-file", "", "Write logs to this file")
	flag.StringVar(&opts.logLevel, "log-level", "", "Override the configured log level (debug, info, warn, error)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "purdah - state dispatch runtime demo\n\n")
		fmt.Fprintf(os.Stderr, "Usage: purdah [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment variables prefixed with %s override the config file.\n", config.EnvPrefix)
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  purdah                          Counter and todo list in the terminal\n")
		fmt.Fprintf(os.Stderr, "  purdah -f tea -c purdah.toml    Bubbletea frontend with a config file\n")
		fmt.Fprintf(os.Stderr, "  purdah -f headless              Replay the demo script and print state\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("purdah %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	switch opts.frontend {
	case "tcell", "tea", "headless":
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid frontend %q (must be tcell, tea, or headless)\n", opts.frontend)
		os.Exit(1)
	}

	switch opts.logLevel {
	case "", "debug", "info", "warn", "error":
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.logLevel)
		os.Exit(1)
	}

	return opts
}
