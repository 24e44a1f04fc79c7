// Package frontend renders the demo state in a terminal.
//
// Both frontends follow the same frame discipline: drain queued events, read
// State() from each handle, render, then turn key presses into queued events
// for the next frame. Controller holds that shared logic; Terminal drives it
// from a tcell screen and Model from a bubbletea program.
package frontend

import (
	"context"
	"strings"

	"github.com/dshills/purdah/internal/demo"
	"github.com/dshills/purdah/internal/dispatch"
	"github.com/dshills/purdah/internal/event"
)

// Pump queues events and drains them once per frame. *runtime.Runtime
// implements it.
type Pump interface {
	Queue(ev event.Event) error
	ProcessEvents(ctx context.Context) []dispatch.Report
}

// View is everything a frontend draws for one frame.
type View struct {
	Count  int
	Todos  []demo.Todo
	Cursor int
	Status string
}

// Selected returns the todo under the cursor.
func (v View) Selected() (demo.Todo, bool) {
	if v.Cursor < 0 || v.Cursor >= len(v.Todos) {
		return demo.Todo{}, false
	}
	return v.Todos[v.Cursor], true
}

// Controller maps user intents onto queued events.
type Controller struct {
	pump   Pump
	app    demo.App
	cursor int
	status string
	last   View
}

// NewController returns a controller for app that queues through pump.
func NewController(pump Pump, app demo.App) *Controller {
	return &Controller{pump: pump, app: app}
}

// Frame drains pending events and returns the view to render.
func (c *Controller) Frame(ctx context.Context) View {
	for _, r := range c.pump.ProcessEvents(ctx) {
		if err := r.Err(); err != nil {
			c.status = r.EventType + ": " + err.Error()
		}
	}

	v := View{
		Count:  c.app.Counter.State(),
		Todos:  c.app.Todos.State(),
		Status: c.status,
	}
	c.cursor = min(c.cursor, len(v.Todos)-1)
	c.cursor = max(c.cursor, 0)
	v.Cursor = c.cursor
	c.last = v
	return v
}

// Increment queues a counter increment.
func (c *Controller) Increment() { c.queue(demo.CounterEvent(demo.CounterMsg{Op: demo.Increment})) }

// Decrement queues a counter decrement.
func (c *Controller) Decrement() { c.queue(demo.CounterEvent(demo.CounterMsg{Op: demo.Decrement})) }

// ResetCounter queues a counter reset.
func (c *Controller) ResetCounter() { c.queue(demo.CounterEvent(demo.CounterMsg{Op: demo.Reset})) }

// Add queues a new todo. Blank text is ignored.
func (c *Controller) Add(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	c.queue(demo.TodoEvent(demo.Add(text)))
}

// ToggleSelected queues a toggle of the todo under the cursor.
func (c *Controller) ToggleSelected() {
	if t, ok := c.last.Selected(); ok {
		c.queue(demo.TodoEvent(demo.Toggle(t.ID)))
	}
}

// RemoveSelected queues removal of the todo under the cursor.
func (c *Controller) RemoveSelected() {
	if t, ok := c.last.Selected(); ok {
		c.queue(demo.TodoEvent(demo.Remove(t.ID)))
	}
}

// Clear queues clearing the list, which also resets the counter.
func (c *Controller) Clear() { c.queue(demo.TodoEvent(demo.Clear())) }

// Move shifts the cursor. Frame clamps it to the list.
func (c *Controller) Move(delta int) {
	c.cursor += delta
}

func (c *Controller) queue(ev event.Event) {
	if err := c.pump.Queue(ev); err != nil {
		c.status = err.Error()
		return
	}
	c.status = ""
}

// helpKeys is the key summary shown by both frontends, quit first.
var helpKeys = []string{"q quit", "+/- count", "0 reset", "a add", "space toggle", "d delete", "c clear"}

// HelpLines wraps the key summary to width columns. Entries are never split;
// one wider than width gets a line to itself. width <= 0 gives one line.
func HelpLines(width int) []string {
	if width <= 0 {
		return []string{strings.Join(helpKeys, "  ")}
	}
	var lines []string
	line := ""
	for _, k := range helpKeys {
		switch {
		case line == "":
			line = k
		case len(line)+2+len(k) <= width:
			line += "  " + k
		default:
			lines = append(lines, line)
			line = k
		}
	}
	return append(lines, line)
}
