package frontend

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	teaTitle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255"))
	teaDone   = lipgloss.NewStyle().Foreground(lipgloss.Color("243")).Strikethrough(true)
	teaCursor = lipgloss.NewStyle().Background(lipgloss.Color("236")).Foreground(lipgloss.Color("252")).Bold(true)
	teaStatus = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	teaHelp   = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	teaPrompt = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))
)

// frameMsg asks the model to drain events and refresh its view.
type frameMsg struct{}

// Model is the bubbletea model for the demo.
type Model struct {
	ctx   context.Context
	ctl   *Controller
	input textinput.Model
	view  View
	width int

	adding   bool
	quitting bool
}

// NewModel returns a model driving ctl. ctx is passed to event dispatch.
func NewModel(ctx context.Context, ctl *Controller) Model {
	ti := textinput.New()
	ti.Prompt = "new todo: "
	ti.PromptStyle = teaPrompt
	ti.CharLimit = 256
	return Model{ctx: ctx, ctl: ctl, input: ti}
}

// RunTea runs the bubbletea program until the user quits or ctx is done.
func RunTea(ctx context.Context, ctl *Controller) error {
	p := tea.NewProgram(NewModel(ctx, ctl), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Init requests the first frame.
func (m Model) Init() tea.Cmd {
	return func() tea.Msg { return frameMsg{} }
}

// Update handles key presses. Every message ends with a fresh frame.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.quitting = true
			return m, tea.Quit
		}
		if m.adding {
			m, cmd = m.editInput(msg)
			break
		}
		if m.command(msg.String()) {
			m.quitting = true
			return m, tea.Quit
		}
		if m.adding {
			cmd = m.input.Focus()
		}
	}

	m.view = m.ctl.Frame(m.ctx)
	return m, cmd
}

func (m Model) editInput(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.ctl.Add(m.input.Value())
		m.stopInput()
		return m, nil
	case tea.KeyEsc:
		m.stopInput()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) stopInput() {
	m.adding = false
	m.input.Reset()
	m.input.Blur()
}

func (m *Model) command(key string) bool {
	switch key {
	case "q":
		return true
	case "+", "=":
		m.ctl.Increment()
	case "-":
		m.ctl.Decrement()
	case "0":
		m.ctl.ResetCounter()
	case "a":
		m.adding = true
	case " ":
		m.ctl.ToggleSelected()
	case "d":
		m.ctl.RemoveSelected()
	case "c":
		m.ctl.Clear()
	case "up", "k":
		m.ctl.Move(-1)
	case "down", "j":
		m.ctl.Move(1)
	}
	return false
}

// View renders the current frame.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(teaTitle.Render(fmt.Sprintf("Count: %d", m.view.Count)))
	b.WriteString("\n\n")
	b.WriteString(teaTitle.Render(fmt.Sprintf("Todos (%d)", len(m.view.Todos))))
	b.WriteString("\n")

	for i, todo := range m.view.Todos {
		mark := "[ ]"
		if todo.Completed {
			mark = "[x]"
		}
		line := fmt.Sprintf("%s %d. %s", mark, todo.ID, todo.Text)
		switch {
		case i == m.view.Cursor:
			line = teaCursor.Render(line)
		case todo.Completed:
			line = teaDone.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.adding {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
	if m.view.Status != "" {
		b.WriteString(teaStatus.Render(m.view.Status))
		b.WriteString("\n")
	}
	b.WriteString(teaHelp.Render(strings.Join(HelpLines(m.width), "\n")))
	return b.String()
}
