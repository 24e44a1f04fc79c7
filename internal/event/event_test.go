package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counterMsg struct{ Delta int }

type counterAction struct{ Delta int }

type bump struct{ By int }

func TestNew_Metadata(t *testing.T) {
	ev := New("counter.bump", bump{By: 2})

	assert.Equal(t, "counter.bump", ev.EventType())
	assert.NotEmpty(t, ev.Metadata.ID)
	assert.False(t, ev.Metadata.Timestamp.IsZero())

	other := New("counter.bump", bump{By: 2})
	assert.NotEqual(t, ev.Metadata.ID, other.Metadata.ID)
}

func TestTyped_NoProjection(t *testing.T) {
	ev := New("ui.clicked", bump{})

	_, ok := MessageOf(ev)
	assert.False(t, ok)
	_, ok = ActionOf(ev)
	assert.False(t, ok)
}

func TestTyped_Projections(t *testing.T) {
	ev := New("counter.bump", bump{By: 3},
		WithMessage(func(b bump) counterMsg { return counterMsg{Delta: b.By} }),
		WithAction(func(b bump) counterAction { return counterAction{Delta: -b.By} }),
	)

	msg, ok := MessageOf(ev)
	require.True(t, ok)
	assert.Equal(t, counterMsg{Delta: 3}, msg)

	action, ok := ActionOf(ev)
	require.True(t, ok)
	assert.Equal(t, counterAction{Delta: -3}, action)
}

func TestTyped_ProjectionIsPure(t *testing.T) {
	calls := 0
	ev := New("counter.bump", bump{By: 1},
		WithMessage(func(b bump) counterMsg {
			calls++
			return counterMsg{Delta: b.By}
		}),
	)

	first, _ := ev.AsMessage()
	second, _ := ev.AsMessage()
	assert.Equal(t, first, second)
	assert.Equal(t, 2, calls)
	assert.Equal(t, bump{By: 1}, ev.Payload)
}

func TestTyped_CopyModifiers(t *testing.T) {
	ev := New("todo.add", bump{})
	withSource := ev.WithSource("keyboard").WithCorrelation("c-1").WithCausation("e-0")

	assert.Empty(t, ev.Metadata.Source)
	assert.Equal(t, "keyboard", withSource.Metadata.Source)
	assert.Equal(t, "c-1", withSource.Metadata.CorrelationID)
	assert.Equal(t, "e-0", withSource.Metadata.CausationID)
	assert.Equal(t, ev.Metadata.ID, withSource.Metadata.ID)
}

type bareEvent struct{}

func (bareEvent) EventType() string { return "bare" }

func TestMetadataOf(t *testing.T) {
	assert.Equal(t, Metadata{}, MetadataOf(bareEvent{}))

	ev := New("x", 1)
	assert.Equal(t, ev.Metadata, MetadataOf(ev))
}

type nilProjection struct{}

func (nilProjection) EventType() string      { return "nil" }
func (nilProjection) AsMessage() (any, bool) { return nil, true }

func TestMessageOf_NilPayloadIsAbsent(t *testing.T) {
	_, ok := MessageOf(nilProjection{})
	assert.False(t, ok)
}

func TestValidate(t *testing.T) {
	assert.ErrorIs(t, Validate(nil), ErrInvalidEvent)
	assert.ErrorIs(t, Validate(New("", 0)), ErrInvalidEvent)
	assert.NoError(t, Validate(bareEvent{}))
}

func TestTopicOf(t *testing.T) {
	assert.Equal(t, "todo.add", TopicOf(New("todo.add", 0)).String())
}
