package dispatch

import "log/slog"

// Option configures a Dispatcher.
type Option func(*config)

type config struct {
	// recoverPanics turns handler panics into PanicErrors.
	recoverPanics bool

	// queueCapacity bounds the pending queue; zero means unbounded.
	queueCapacity int

	logger *slog.Logger
}

func defaultConfig() config {
	return config{
		recoverPanics: true,
		logger:        slog.New(slog.DiscardHandler),
	}
}

// WithRecover enables or disables handler panic recovery. When disabled a
// panicking handler unwinds through Dispatch.
func WithRecover(enabled bool) Option {
	return func(c *config) {
		c.recoverPanics = enabled
	}
}

// WithQueueCapacity bounds the pending queue. Values <= 0 mean unbounded.
func WithQueueCapacity(n int) Option {
	return func(c *config) {
		if n < 0 {
			n = 0
		}
		c.queueCapacity = n
	}
}

// WithLogger sets the logger used for registration and failure diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}
