package frontend

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/purdah/internal/config"
	"github.com/dshills/purdah/internal/demo"
	"github.com/dshills/purdah/internal/logging"
	"github.com/dshills/purdah/internal/runtime"
)

func newController(t *testing.T) (*Controller, demo.App) {
	t.Helper()
	rt, err := runtime.New(context.Background(), config.Default(), runtime.WithLogger(logging.Discard()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close(context.Background()) })

	app, err := demo.Install(rt.Registry())
	require.NoError(t, err)
	return NewController(rt, app), app
}

func TestController_FrameDrainsQueue(t *testing.T) {
	ctl, app := newController(t)
	ctx := context.Background()

	ctl.Increment()
	ctl.Increment()
	ctl.Decrement()
	ctl.Add("write tests")
	ctl.Add("   ")
	assert.Equal(t, 0, app.Counter.State(), "nothing applied before the frame")

	v := ctl.Frame(ctx)
	assert.Equal(t, 1, v.Count)
	require.Len(t, v.Todos, 1)
	assert.Equal(t, "write tests", v.Todos[0].Text)
}

func TestController_Selection(t *testing.T) {
	ctl, _ := newController(t)
	ctx := context.Background()

	ctl.Add("one")
	ctl.Add("two")
	ctl.Add("three")
	ctl.Frame(ctx)

	ctl.Move(5)
	v := ctl.Frame(ctx)
	assert.Equal(t, 2, v.Cursor, "cursor clamps to the last item")

	ctl.Move(-1)
	ctl.Frame(ctx)
	ctl.ToggleSelected()
	v = ctl.Frame(ctx)
	assert.True(t, v.Todos[1].Completed)

	ctl.RemoveSelected()
	v = ctl.Frame(ctx)
	assert.Equal(t, []string{"one", "three"}, texts(v.Todos))

	ctl.Move(-10)
	v = ctl.Frame(ctx)
	assert.Equal(t, 0, v.Cursor)
}

func TestController_EmptySelection(t *testing.T) {
	ctl, _ := newController(t)
	v := ctl.Frame(context.Background())
	_, ok := v.Selected()
	assert.False(t, ok)

	ctl.ToggleSelected()
	ctl.RemoveSelected()
	v = ctl.Frame(context.Background())
	assert.Empty(t, v.Todos)
	assert.Equal(t, 0, v.Cursor)
}

func TestController_ClearResetsCounter(t *testing.T) {
	ctl, _ := newController(t)
	ctx := context.Background()

	ctl.Increment()
	ctl.Add("x")
	ctl.Frame(ctx)
	ctl.Clear()
	v := ctl.Frame(ctx)
	assert.Equal(t, 0, v.Count)
	assert.Empty(t, v.Todos)
}

func texts(todos []demo.Todo) []string {
	out := make([]string, len(todos))
	for i, t := range todos {
		out[i] = t.Text
	}
	return out
}

func newSimTerminal(t *testing.T, ctl *Controller) (*Terminal, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	term := NewTerminalScreen(screen, ctl)
	require.NoError(t, term.Init())
	screen.SetSize(60, 12)
	t.Cleanup(term.Shutdown)
	return term, screen
}

func screenText(screen tcell.SimulationScreen) string {
	cells, width, height := screen.GetContents()
	var b strings.Builder
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := cells[y*width+x]
			if len(c.Runes) == 0 {
				b.WriteRune(' ')
				continue
			}
			b.WriteRune(c.Runes[0])
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func key(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func TestTerminal_HandleAndDraw(t *testing.T) {
	ctl, app := newController(t)
	term, screen := newSimTerminal(t, ctl)
	ctx := context.Background()

	for _, r := range "++-+" {
		assert.False(t, term.Handle(key(r)))
	}
	assert.False(t, term.Handle(key('a')))
	for _, r := range "milk" {
		term.Handle(key(r))
	}
	term.Handle(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone))

	term.Draw(ctl.Frame(ctx))
	assert.Equal(t, 2, app.Counter.State())

	out := screenText(screen)
	assert.Contains(t, out, "Count: 2")
	assert.Contains(t, out, "Todos (1)")
	assert.Contains(t, out, "[ ] 1. milk")
	assert.Contains(t, out, "q quit")

	term.Handle(key(' '))
	term.Draw(ctl.Frame(ctx))
	assert.Contains(t, screenText(screen), "[x] 1. milk")

	assert.True(t, term.Handle(key('q')))
	assert.True(t, term.Handle(tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl)))
}

func TestHelpLines(t *testing.T) {
	one := HelpLines(0)
	require.Len(t, one, 1)
	assert.True(t, strings.HasPrefix(one[0], "q quit"))
	assert.Contains(t, one[0], "c clear")

	assert.Equal(t, []string{
		"q quit  +/- count  0 reset",
		"a add  space toggle  d delete",
		"c clear",
	}, HelpLines(30))

	narrow := HelpLines(4)
	assert.Len(t, narrow, 7, "entries wider than the screen get their own line")
	assert.Equal(t, "space toggle", narrow[4])

	for _, w := range []int{20, 30, 60, 80} {
		joined := strings.Join(HelpLines(w), "  ")
		assert.Equal(t, one[0], joined, "width %d", w)
		for _, line := range HelpLines(w) {
			assert.LessOrEqual(t, len(line), w)
		}
	}
}

func TestTerminal_NarrowHelp(t *testing.T) {
	ctl, _ := newController(t)
	term, screen := newSimTerminal(t, ctl)
	screen.SetSize(30, 12)

	term.Handle(key('a'))
	for _, r := range "tea" {
		term.Handle(key(r))
	}
	term.Draw(ctl.Frame(context.Background()))

	rows := strings.Split(screenText(screen), "\n")
	assert.Equal(t, "q quit  +/- count  0 reset", strings.TrimRight(rows[9], " "))
	assert.Equal(t, "a add  space toggle  d delete", strings.TrimRight(rows[10], " "))
	assert.Equal(t, "c clear", strings.TrimRight(rows[11], " "))
	assert.Equal(t, "new todo: tea", strings.TrimRight(rows[7], " "))
}

func TestTerminal_InputEditing(t *testing.T) {
	ctl, app := newController(t)
	term, screen := newSimTerminal(t, ctl)
	ctx := context.Background()

	term.Handle(key('a'))
	for _, r := range "bread" {
		term.Handle(key(r))
	}
	term.Handle(tcell.NewEventKey(tcell.KeyBackspace2, 0, tcell.ModNone))
	term.Draw(ctl.Frame(ctx))
	assert.Contains(t, screenText(screen), "new todo: brea")

	assert.False(t, term.Handle(key('q')), "q is text while adding")
	term.Handle(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone))
	ctl.Frame(ctx)
	assert.Empty(t, app.Todos.State())
}

func TestTerminal_Run(t *testing.T) {
	ctl, app := newController(t)
	term, screen := newSimTerminal(t, ctl)

	screen.InjectKey(tcell.KeyRune, '+', tcell.ModNone)
	screen.InjectKey(tcell.KeyRune, '+', tcell.ModNone)
	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)

	require.NoError(t, term.Run(context.Background()))
	assert.Equal(t, 2, app.Counter.State())
	assert.Contains(t, screenText(screen), "Count: 2")
}

func TestTerminal_RunCancelled(t *testing.T) {
	ctl, _ := newController(t)
	term, _ := newSimTerminal(t, ctl)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, term.Run(ctx), context.Canceled)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok)
	}
	return m
}

func TestModel_Keys(t *testing.T) {
	ctl, app := newController(t)
	m := NewModel(context.Background(), ctl)

	require.NotNil(t, m.Init())
	m = update(t, m, frameMsg{}, runes("+"), runes("+"), runes("-"), frameMsg{})
	assert.Equal(t, 1, app.Counter.State())
	assert.Contains(t, m.View(), "Count: 1")

	m = update(t, m, runes("a"), runes("eggs"), tea.KeyMsg{Type: tea.KeyEnter}, frameMsg{})
	assert.Contains(t, m.View(), "1. eggs")
	assert.NotContains(t, m.View(), "new todo:")

	m = update(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, frameMsg{})
	assert.Contains(t, m.View(), "[x] 1. eggs")

	m = update(t, m, runes("c"), frameMsg{})
	assert.Equal(t, 0, app.Counter.State())
	assert.Contains(t, m.View(), "Todos (0)")
}

func TestModel_Quit(t *testing.T) {
	ctl, _ := newController(t)
	m := NewModel(context.Background(), ctl)

	next, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, next.View())

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
}

func TestModel_WindowSizeWrapsHelp(t *testing.T) {
	ctl, _ := newController(t)
	m := NewModel(context.Background(), ctl)

	m = update(t, m, frameMsg{})
	assert.Contains(t, m.View(), "q quit  +/- count")
	assert.Contains(t, m.View(), "d delete  c clear")

	m = update(t, m, tea.WindowSizeMsg{Width: 30, Height: 12})
	out := m.View()
	assert.Contains(t, out, "q quit")
	assert.Contains(t, out, "c clear")
	assert.NotContains(t, out, "d delete  c clear")
}

func TestModel_EscapeCancelsInput(t *testing.T) {
	ctl, app := newController(t)
	m := NewModel(context.Background(), ctl)

	m = update(t, m, runes("a"))
	assert.Contains(t, m.View(), "new todo:")
	m = update(t, m, runes("zz"), tea.KeyMsg{Type: tea.KeyEsc}, frameMsg{})
	assert.NotContains(t, m.View(), "new todo:")
	assert.Empty(t, app.Todos.State())
}
