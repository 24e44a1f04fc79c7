package bridge_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/purdah/internal/bridge"
	"github.com/dshills/purdah/internal/dispatch"
	"github.com/dshills/purdah/internal/event"
	"github.com/dshills/purdah/internal/state"
)

type clickMsg struct{ Label string }

type clicks struct{ n int }

func (c *clicks) Update(ctx context.Context, m clickMsg) state.Cmd {
	c.n++
	return nil
}
func (c *clicks) State() int { return c.n }

type logAction struct{ Line string }

type auditLog struct{ lines []string }

func (l *auditLog) Reduce(ctx context.Context, a logAction) { l.lines = append(l.lines, a.Line) }
func (l *auditLog) State() []string                         { return append([]string(nil), l.lines...) }

func clickEvent(label string) event.Event {
	return event.New("ui.click", label,
		event.WithMessage(func(s string) clickMsg { return clickMsg{Label: s} }),
	)
}

func logEvent(line string) event.Event {
	return event.New("audit.log", line,
		event.WithAction(func(s string) logAction { return logAction{Line: s} }),
	)
}

func TestMessageToAction(t *testing.T) {
	d := dispatch.New()
	r := state.NewRegistry(d)
	c, err := state.AddModel(r, &clicks{})
	require.NoError(t, err)
	audit, err := state.AddStore(r, &auditLog{})
	require.NoError(t, err)

	id := bridge.MessageToAction(d, func(m clickMsg) (logAction, bool) {
		if m.Label == "" {
			return logAction{}, false
		}
		return logAction{Line: "clicked " + m.Label}, true
	}, audit)

	d.Dispatch(context.Background(), clickEvent("save"))
	d.Dispatch(context.Background(), clickEvent(""))

	assert.Equal(t, 2, c.State(), "model still receives messages")
	assert.Equal(t, []string{"clicked save"}, audit.State())

	require.True(t, d.Unregister(id))
	d.Dispatch(context.Background(), clickEvent("again"))
	assert.Len(t, audit.State(), 1)
}

func TestActionToMessage(t *testing.T) {
	d := dispatch.New()
	r := state.NewRegistry(d)
	c, err := state.AddModel(r, &clicks{})
	require.NoError(t, err)
	audit, err := state.AddStore(r, &auditLog{})
	require.NoError(t, err)

	bridge.ActionToMessage(d, bridge.Always(func(a logAction) clickMsg {
		return clickMsg{Label: a.Line}
	}), c)

	rep := d.Dispatch(context.Background(), logEvent("boot"))
	require.NoError(t, rep.Err())
	assert.Equal(t, 2, rep.Delivered)
	assert.Equal(t, []string{"boot"}, audit.State())
	assert.Equal(t, 1, c.State())
}

func TestBridge_PanicsOnZeroHandle(t *testing.T) {
	d := dispatch.New()
	assert.Panics(t, func() {
		bridge.MessageToAction(d, bridge.Always(func(m clickMsg) logAction { return logAction{} }), state.Handle[[]string, logAction]{})
	})
}
