package event

import "github.com/dshills/purdah/internal/event/topic"

// Event is anything that can be routed through the dispatcher.
type Event interface {
	// EventType returns the stable type tag used for diagnostics and
	// middleware filtering.
	EventType() string
}

// MessageSource is implemented by events that project into a message payload.
// The boolean is false when this particular event has no message form.
type MessageSource interface {
	AsMessage() (any, bool)
}

// ActionSource is implemented by events that project into an action payload.
type ActionSource interface {
	AsAction() (any, bool)
}

// PayloadProvider exposes an event's domain payload for diagnostics.
type PayloadProvider interface {
	EventPayload() any
}

// MessageOf returns the message projection of ev, if any.
func MessageOf(ev Event) (any, bool) {
	src, ok := ev.(MessageSource)
	if !ok {
		return nil, false
	}
	msg, ok := src.AsMessage()
	if !ok || msg == nil {
		return nil, false
	}
	return msg, true
}

// ActionOf returns the action projection of ev, if any.
func ActionOf(ev Event) (any, bool) {
	src, ok := ev.(ActionSource)
	if !ok {
		return nil, false
	}
	action, ok := src.AsAction()
	if !ok || action == nil {
		return nil, false
	}
	return action, true
}

// Payload returns the domain payload of ev when it exposes one.
func Payload(ev Event) (any, bool) {
	if pp, ok := ev.(PayloadProvider); ok {
		return pp.EventPayload(), true
	}
	return nil, false
}

// MetadataOf returns ev's metadata, or the zero value when ev carries none.
func MetadataOf(ev Event) Metadata {
	if mp, ok := ev.(MetadataProvider); ok {
		return mp.EventMetadata()
	}
	return Metadata{}
}

// TopicOf returns the event type tag as a topic.
func TopicOf(ev Event) topic.Topic {
	return topic.Topic(ev.EventType())
}

// Validate rejects nil events and events with an empty type tag.
func Validate(ev Event) error {
	if ev == nil || ev.EventType() == "" {
		return ErrInvalidEvent
	}
	return nil
}
