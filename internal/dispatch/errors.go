package dispatch

import "errors"

// Sentinel errors for the dispatch package.
var (
	// ErrQueueFull is returned by Queue when the pending queue is at capacity.
	ErrQueueFull = errors.New("pending queue is full")

	// ErrHandlerPanic matches every *PanicError.
	ErrHandlerPanic = errors.New("handler panicked")
)
