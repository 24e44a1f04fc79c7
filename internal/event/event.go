package event

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/purdah/internal/event/topic"
)

// Metadata contains standard information attached to a typed event.
type Metadata struct {
	// ID is a unique identifier for this event instance.
	ID string

	// Timestamp is when the event was created.
	Timestamp time.Time

	// Source identifies the component that produced the event.
	Source string

	// CorrelationID links related events.
	CorrelationID string

	// CausationID links to the event that caused this one.
	CausationID string
}

// MetadataProvider is implemented by events that carry Metadata.
type MetadataProvider interface {
	EventMetadata() Metadata
}

// Typed is the generic Event implementation. It is a value type; every With*
// method returns a modified copy.
type Typed[T any] struct {
	// Type is the event type tag.
	Type topic.Topic

	// Payload is the domain data carried by the event.
	Payload T

	// Metadata contains standard event information.
	Metadata Metadata

	toMessage func(T) any
	toAction  func(T) any
}

// Option configures a Typed event at construction.
type Option[T any] func(*Typed[T])

// New creates a typed event with a fresh ID and timestamp.
func New[T any](eventType topic.Topic, payload T, opts ...Option[T]) Typed[T] {
	e := Typed[T]{
		Type:    eventType,
		Payload: payload,
		Metadata: Metadata{
			ID:        generateID(),
			Timestamp: time.Now(),
		},
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// WithMessage gives the event a message projection.
func WithMessage[T, M any](fn func(T) M) Option[T] {
	return func(e *Typed[T]) {
		if fn == nil {
			return
		}
		e.toMessage = func(p T) any { return fn(p) }
	}
}

// WithAction gives the event an action projection.
func WithAction[T, A any](fn func(T) A) Option[T] {
	return func(e *Typed[T]) {
		if fn == nil {
			return
		}
		e.toAction = func(p T) any { return fn(p) }
	}
}

// EventType implements Event.
func (e Typed[T]) EventType() string {
	return string(e.Type)
}

// EventMetadata implements MetadataProvider.
func (e Typed[T]) EventMetadata() Metadata {
	return e.Metadata
}

// AsMessage implements MessageSource.
func (e Typed[T]) AsMessage() (any, bool) {
	if e.toMessage == nil {
		return nil, false
	}
	return e.toMessage(e.Payload), true
}

// AsAction implements ActionSource.
func (e Typed[T]) AsAction() (any, bool) {
	if e.toAction == nil {
		return nil, false
	}
	return e.toAction(e.Payload), true
}

// EventPayload returns the payload as any, for diagnostics.
func (e Typed[T]) EventPayload() any {
	return e.Payload
}

// WithCorrelation returns a copy with a correlation ID set.
func (e Typed[T]) WithCorrelation(id string) Typed[T] {
	e.Metadata.CorrelationID = id
	return e
}

// WithCausation returns a copy with a causation ID set.
func (e Typed[T]) WithCausation(id string) Typed[T] {
	e.Metadata.CausationID = id
	return e
}

// WithSource returns a copy with a different source.
func (e Typed[T]) WithSource(source string) Typed[T] {
	e.Metadata.Source = source
	return e
}

// generateID returns a random UUID, falling back to raw random bytes if the
// uuid generator fails.
func generateID() string {
	id, err := uuid.NewRandom()
	if err == nil {
		return id.String()
	}
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return hex.EncodeToString([]byte(time.Now().String()))
	}
	return hex.EncodeToString(b)
}
