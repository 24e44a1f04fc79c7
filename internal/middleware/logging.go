package middleware

import (
	"context"
	"log/slog"

	"github.com/dshills/purdah/internal/dispatch"
	"github.com/dshills/purdah/internal/event"
)

// Logging records every dispatch on a structured logger.
type Logging struct {
	logger *slog.Logger
	level  slog.Level
}

// NewLogging logs completed dispatches at level; failures always log at
// error.
func NewLogging(logger *slog.Logger, level slog.Level) *Logging {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Logging{logger: logger, level: level}
}

// Name implements dispatch.Middleware.
func (l *Logging) Name() string { return "logging" }

// Before implements dispatch.Middleware.
func (l *Logging) Before(ctx context.Context, ev event.Event) (context.Context, dispatch.Verdict) {
	meta := event.MetadataOf(ev)
	l.logger.Log(ctx, slog.LevelDebug, "dispatch start",
		"event", ev.EventType(),
		"id", meta.ID,
		"source", meta.Source,
	)
	return ctx, dispatch.Continue
}

// After implements dispatch.Middleware.
func (l *Logging) After(ctx context.Context, ev event.Event, r dispatch.Report) {
	attrs := []any{
		"event", r.EventType,
		"id", r.EventID,
		"message", r.Message,
		"action", r.Action,
		"delivered", r.Delivered,
		"duration", r.Duration,
	}
	if r.Cancelled {
		attrs = append(attrs, "cancelled_by", r.CancelledBy)
	}
	if err := r.Err(); err != nil {
		l.logger.Log(ctx, slog.LevelError, "dispatch failed", append(attrs, "error", err)...)
		return
	}
	l.logger.Log(ctx, l.level, "dispatch", attrs...)
}
