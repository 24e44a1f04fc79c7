package demo

import (
	"context"

	"github.com/dshills/purdah/internal/event"
	"github.com/dshills/purdah/internal/event/topic"
	"github.com/dshills/purdah/internal/state"
)

// CounterOp selects what a CounterMsg does.
type CounterOp int

const (
	Increment CounterOp = iota
	Decrement
	Set
	Reset
)

// String returns the lower-case op name.
func (op CounterOp) String() string {
	switch op {
	case Increment:
		return "increment"
	case Decrement:
		return "decrement"
	case Set:
		return "set"
	case Reset:
		return "reset"
	default:
		return "unknown"
	}
}

// CounterMsg is the counter's message. Value is read only by Set.
type CounterMsg struct {
	Op    CounterOp `json:"op"`
	Value int       `json:"value,omitempty"`
}

// Counter is an integer model.
type Counter struct {
	count int
}

// NewCounter returns a counter at zero.
func NewCounter() *Counter {
	return &Counter{}
}

// Update applies msg.
func (c *Counter) Update(_ context.Context, msg CounterMsg) state.Cmd {
	switch msg.Op {
	case Increment:
		c.count++
	case Decrement:
		c.count--
	case Set:
		c.count = msg.Value
	case Reset:
		c.count = 0
	}
	return state.None
}

// State returns the current count.
func (c *Counter) State() int {
	return c.count
}

// CounterTopic is the topic of counter events for op.
func CounterTopic(op CounterOp) topic.Topic {
	return topic.Topic("counter." + op.String())
}

// CounterEvent wraps msg in an event that projects to a message only.
func CounterEvent(msg CounterMsg) event.Typed[CounterMsg] {
	return event.New(CounterTopic(msg.Op), msg,
		event.WithMessage(func(m CounterMsg) CounterMsg { return m }),
	).WithSource("demo")
}
