package dispatch

import (
	"errors"
	"fmt"
	"time"
)

// Report describes what one Dispatch call did.
type Report struct {
	// EventType is the dispatched event's type tag.
	EventType string

	// EventID is the event's metadata ID, when it carries one.
	EventID string

	// Message and Action report which projections the event produced.
	Message bool
	Action  bool

	// Delivered counts live handler invocations across both tables.
	Delivered int

	// Cancelled is set when a Before hook returned Cancel; CancelledBy names
	// the first such middleware.
	Cancelled   bool
	CancelledBy string

	// Deferred is set when the event was dispatched from inside a handler and
	// will be delivered after the enclosing event instead of immediately.
	Deferred bool

	// Followups holds reports for events deferred during this dispatch, in
	// delivery order.
	Followups []Report

	// Errors collects handler failures in invocation order.
	Errors []error

	// Duration covers Before hooks and handler delivery.
	Duration time.Duration
}

// Err joins this report's errors and those of its followups. It returns nil
// when every handler succeeded.
func (r Report) Err() error {
	errs := append([]error(nil), r.Errors...)
	for _, f := range r.Followups {
		if err := f.Err(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// HandlerError wraps an error returned by a handler.
type HandlerError struct {
	ID  HandlerID
	Err error
}

// Error implements the error interface.
func (e *HandlerError) Error() string {
	return fmt.Sprintf("handler %s: %v", e.ID, e.Err)
}

// Unwrap returns the underlying error.
func (e *HandlerError) Unwrap() error {
	return e.Err
}

// PanicError records a recovered handler panic.
type PanicError struct {
	ID    HandlerID
	Value any
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("handler %s panicked: %v", e.ID, e.Value)
}

// Is matches ErrHandlerPanic.
func (e *PanicError) Is(target error) bool {
	return target == ErrHandlerPanic
}

// Unwrap exposes the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
