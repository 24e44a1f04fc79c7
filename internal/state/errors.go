package state

import (
	"errors"
	"fmt"
	"reflect"
)

// Sentinel errors for the state package.
var (
	// ErrNilState is returned when adding a nil model or store.
	ErrNilState = errors.New("state value is nil")

	// ErrAlreadyRegistered is returned when a concrete type is added twice
	// under the DuplicateError policy.
	ErrAlreadyRegistered = errors.New("state type already registered")

	// ErrPoisoned matches every *PoisonedError.
	ErrPoisoned = errors.New("state slot poisoned")

	// ErrUnknownPolicy is returned when parsing an unknown duplicate policy.
	ErrUnknownPolicy = errors.New("unknown duplicate policy")
)

// PoisonedError reports a slot left unusable by a panic during update.
type PoisonedError struct {
	Type  reflect.Type
	Value any
}

// Error implements the error interface.
func (e *PoisonedError) Error() string {
	return fmt.Sprintf("state %s poisoned by panic: %v", e.Type, e.Value)
}

// Is matches ErrPoisoned.
func (e *PoisonedError) Is(target error) bool {
	return target == ErrPoisoned
}
