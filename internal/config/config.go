package config

import (
	"errors"
	"fmt"
	"strings"
)

// Config holds every runtime setting.
type Config struct {
	Log        LogConfig        `toml:"log" yaml:"log" envPrefix:"LOG_"`
	Dispatch   DispatchConfig   `toml:"dispatch" yaml:"dispatch" envPrefix:"DISPATCH_"`
	Middleware MiddlewareConfig `toml:"middleware" yaml:"middleware" envPrefix:"MIDDLEWARE_"`
	Devtools   DevtoolsConfig   `toml:"devtools" yaml:"devtools" envPrefix:"DEVTOOLS_"`
	Telemetry  TelemetryConfig  `toml:"telemetry" yaml:"telemetry" envPrefix:"TELEMETRY_"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level" yaml:"level" env:"LEVEL"`

	// Format is text or json.
	Format string `toml:"format" yaml:"format" env:"FORMAT"`
}

// DispatchConfig controls the dispatcher and registry.
type DispatchConfig struct {
	RecoverPanics bool `toml:"recover_panics" yaml:"recover_panics" env:"RECOVER_PANICS"`

	// QueueCapacity bounds the pending queue; 0 means unbounded.
	QueueCapacity int `toml:"queue_capacity" yaml:"queue_capacity" env:"QUEUE_CAPACITY"`

	// OnDuplicate is error or replace.
	OnDuplicate string `toml:"on_duplicate" yaml:"on_duplicate" env:"ON_DUPLICATE"`
}

// MiddlewareConfig selects built-in middleware.
type MiddlewareConfig struct {
	Logging bool `toml:"logging" yaml:"logging" env:"LOGGING"`

	// Scripts are Lua files installed as scripted middleware, in order.
	Scripts []string `toml:"scripts" yaml:"scripts" env:"SCRIPTS" envSeparator:","`
}

// DevtoolsConfig controls the dispatch recorder.
type DevtoolsConfig struct {
	Record      bool `toml:"record" yaml:"record" env:"RECORD"`
	HistorySize int  `toml:"history_size" yaml:"history_size" env:"HISTORY_SIZE"`
}

// TelemetryConfig controls OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled     bool   `toml:"enabled" yaml:"enabled" env:"ENABLED"`
	Endpoint    string `toml:"endpoint" yaml:"endpoint" env:"ENDPOINT"`
	Insecure    bool   `toml:"insecure" yaml:"insecure" env:"INSECURE"`
	ServiceName string `toml:"service_name" yaml:"service_name" env:"SERVICE_NAME"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Dispatch: DispatchConfig{
			RecoverPanics: true,
			OnDuplicate:   "error",
		},
		Middleware: MiddlewareConfig{
			Logging: true,
		},
		Devtools: DevtoolsConfig{
			Record:      false,
			HistorySize: 256,
		},
		Telemetry: TelemetryConfig{
			Endpoint:    "localhost:4318",
			ServiceName: "purdah",
		},
	}
}

// Validate checks every section and returns all failures joined.
func (c Config) Validate() error {
	var errs []error
	add := func(path, msg string, value any) {
		errs = append(errs, &ValidationError{Path: path, Message: msg, Value: value})
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		add("log.level", "must be debug, info, warn or error", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		add("log.format", "must be text or json", c.Log.Format)
	}

	if c.Dispatch.QueueCapacity < 0 {
		add("dispatch.queue_capacity", "must not be negative", c.Dispatch.QueueCapacity)
	}
	switch strings.ToLower(strings.TrimSpace(c.Dispatch.OnDuplicate)) {
	case "", "error", "replace":
	default:
		add("dispatch.on_duplicate", "must be error or replace", c.Dispatch.OnDuplicate)
	}

	for i, script := range c.Middleware.Scripts {
		if strings.TrimSpace(script) == "" {
			add("middleware.scripts", fmt.Sprintf("empty script path at index %d", i), script)
		}
	}

	if c.Devtools.HistorySize < 0 {
		add("devtools.history_size", "must not be negative", c.Devtools.HistorySize)
	}

	if c.Telemetry.Enabled {
		if c.Telemetry.ServiceName == "" {
			add("telemetry.service_name", "required when telemetry is enabled", c.Telemetry.ServiceName)
		}
		if c.Telemetry.Endpoint == "" {
			add("telemetry.endpoint", "required when telemetry is enabled", c.Telemetry.Endpoint)
		}
	}

	return errors.Join(errs...)
}
