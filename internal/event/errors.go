package event

import "errors"

// ErrInvalidEvent is returned for nil events or events without a type tag.
var ErrInvalidEvent = errors.New("invalid event")
