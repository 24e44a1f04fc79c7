package frontend

import (
	"context"
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
)

var (
	styleTitle  = tcell.StyleDefault.Bold(true)
	styleDone   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleCursor = tcell.StyleDefault.Reverse(true)
	styleStatus = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleHelp   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleInput  = tcell.StyleDefault.Foreground(tcell.ColorGreen)
)

// Terminal runs the demo on a tcell screen.
type Terminal struct {
	screen tcell.Screen
	ctl    *Controller
	mu     sync.Mutex

	adding bool
	input  []rune
}

// NewTerminal opens the process terminal.
func NewTerminal(ctl *Controller) (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return NewTerminalScreen(screen, ctl), nil
}

// NewTerminalScreen uses an existing screen, such as a simulation screen.
func NewTerminalScreen(screen tcell.Screen, ctl *Controller) *Terminal {
	return &Terminal{screen: screen, ctl: ctl}
}

// Init prepares the screen.
func (t *Terminal) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.screen.Init(); err != nil {
		return err
	}
	t.screen.EnablePaste()
	return nil
}

// Shutdown restores the terminal.
func (t *Terminal) Shutdown() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Fini()
}

// Run draws a frame per input event until q, ctrl-c or ctx is done.
func (t *Terminal) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = t.screen.PostEvent(tcell.NewEventInterrupt(nil)) // best-effort; queue may be full
		case <-done:
		}
	}()

	for {
		t.Draw(t.ctl.Frame(ctx))

		ev := t.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if _, ok := ev.(*tcell.EventInterrupt); ok && ctx.Err() != nil {
			return ctx.Err()
		}
		if quit := t.Handle(ev); quit {
			return nil
		}
	}
}

// Handle applies one input event and reports whether to quit.
func (t *Terminal) Handle(ev tcell.Event) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch ev := ev.(type) {
	case *tcell.EventResize:
		t.screen.Sync()
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyCtrlC {
			return true
		}
		if t.adding {
			t.editInput(ev)
			return false
		}
		return t.command(ev)
	}
	return false
}

func (t *Terminal) editInput(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEnter:
		t.ctl.Add(string(t.input))
		t.adding, t.input = false, nil
	case tcell.KeyEscape:
		t.adding, t.input = false, nil
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(t.input) > 0 {
			t.input = t.input[:len(t.input)-1]
		}
	case tcell.KeyRune:
		t.input = append(t.input, ev.Rune())
	}
}

func (t *Terminal) command(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyUp:
		t.ctl.Move(-1)
		return false
	case tcell.KeyDown:
		t.ctl.Move(1)
		return false
	case tcell.KeyRune:
	default:
		return false
	}

	switch ev.Rune() {
	case 'q':
		return true
	case '+', '=':
		t.ctl.Increment()
	case '-':
		t.ctl.Decrement()
	case '0':
		t.ctl.ResetCounter()
	case 'a':
		t.adding = true
	case ' ':
		t.ctl.ToggleSelected()
	case 'd':
		t.ctl.RemoveSelected()
	case 'c':
		t.ctl.Clear()
	case 'k':
		t.ctl.Move(-1)
	case 'j':
		t.ctl.Move(1)
	}
	return false
}

// Draw renders v.
func (t *Terminal) Draw(v View) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Clear()
	width, height := t.screen.Size()

	y := 0
	t.text(0, y, width, styleTitle, fmt.Sprintf("Count: %d", v.Count))
	y += 2
	t.text(0, y, width, styleTitle, fmt.Sprintf("Todos (%d)", len(v.Todos)))
	y++

	help := HelpLines(width)
	bottom := height - len(help)

	for i, todo := range v.Todos {
		if y >= bottom-2 {
			break
		}
		mark := "[ ]"
		style := tcell.StyleDefault
		if todo.Completed {
			mark, style = "[x]", styleDone
		}
		if i == v.Cursor {
			style = styleCursor
		}
		t.text(0, y, width, style, fmt.Sprintf("%s %d. %s", mark, todo.ID, todo.Text))
		y++
	}

	if t.adding {
		t.text(0, bottom-2, width, styleInput, "new todo: "+string(t.input))
		t.screen.ShowCursor(len("new todo: ")+len(t.input), bottom-2)
	} else {
		t.screen.HideCursor()
	}
	if v.Status != "" {
		t.text(0, bottom-1, width, styleStatus, v.Status)
	}
	for i, line := range help {
		t.text(0, bottom+i, width, styleHelp, line)
	}
	t.screen.Show()
}

func (t *Terminal) text(x, y, width int, style tcell.Style, s string) {
	if y < 0 {
		return
	}
	for _, r := range s {
		if x >= width {
			return
		}
		t.screen.SetContent(x, y, r, nil, style)
		x++
	}
}
