package state

import (
	"fmt"
	"log/slog"
	"strings"
)

// DuplicatePolicy decides what adding an already registered type does.
type DuplicatePolicy int

const (
	// DuplicateError rejects the second add with ErrAlreadyRegistered.
	DuplicateError DuplicatePolicy = iota

	// DuplicateReplace installs the new slot and tombstones the old slot's
	// dispatcher handler. Handles to the old slot keep working on it.
	DuplicateReplace
)

// String returns the policy name used in configuration.
func (p DuplicatePolicy) String() string {
	switch p {
	case DuplicateError:
		return "error"
	case DuplicateReplace:
		return "replace"
	default:
		return "unknown"
	}
}

// ParseDuplicatePolicy parses "error" or "replace".
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "error":
		return DuplicateError, nil
	case "replace":
		return DuplicateReplace, nil
	default:
		return DuplicateError, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

// Option configures a Registry.
type Option func(*Registry)

// WithDuplicatePolicy sets the duplicate add policy.
func WithDuplicatePolicy(p DuplicatePolicy) Option {
	return func(r *Registry) {
		r.policy = p
	}
}

// WithLogger sets the registry logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}
