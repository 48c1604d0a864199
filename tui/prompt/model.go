// Package prompt reads a secret from the terminal with a masked input.
package prompt

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/mastosql/domain"
	"github.com/CrestNiraj12/mastosql/tui/common"
)

// Model holds the state of a masked single-line prompt.
type Model struct {
	input    textinput.Model
	keys     common.KeyMap
	label    string
	value    string
	done     bool
	canceled bool
}

// New creates a password prompt titled with label.
func New(label string) Model {
	ti := textinput.New()
	ti.Placeholder = "password"
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'
	ti.CharLimit = 256
	ti.Width = 40
	ti.Focus()

	return Model{
		input: ti,
		keys:  common.DefaultKeyMap(),
		label: label,
	}
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles key presses for the prompt.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Submit):
			m.value = m.input.Value()
			m.done = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.ForceQuit):
			m.canceled = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the prompt. It is empty once the prompt has finished so no
// trace of the input length is left on screen.
func (m Model) View() string {
	if m.done || m.canceled {
		return ""
	}
	var b strings.Builder
	b.WriteString(common.AppTitleStyle.Render("mastosql"))
	b.WriteString(common.LabelStyle.Render(m.label))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString(common.StatusBarStyle.Render("enter: submit • esc: cancel"))
	b.WriteString("\n")
	return b.String()
}

// Value returns the submitted text.
func (m Model) Value() string { return m.value }

// Canceled reports whether the prompt was abandoned.
func (m Model) Canceled() bool { return m.canceled }

// Password runs the prompt on in/out and returns the entered secret.
func Password(ctx context.Context, in io.Reader, out io.Writer, label string) (string, error) {
	p := tea.NewProgram(New(label),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)
	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("password prompt: %w", err)
	}
	m, ok := final.(Model)
	if !ok || m.Canceled() {
		return "", domain.ErrCanceled
	}
	return m.Value(), nil
}
