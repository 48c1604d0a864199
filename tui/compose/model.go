// Package compose drafts a status in an inline Bubble Tea textarea.
package compose

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/mastosql/domain"
	"github.com/CrestNiraj12/mastosql/tui/common"
)

// Model holds the state for the inline compose view.
type Model struct {
	textarea textarea.Model
	keys     common.KeyMap
	cw       string
	initial  string
	content  string
	done     bool
	canceled bool
}

// New creates a compose model seeded with initial. A non-empty cw is shown
// above the draft.
func New(initial, cw string) Model {
	ta := textarea.New()
	ta.Placeholder = "What's on your mind?"
	ta.CharLimit = common.StatusCharLimit
	ta.SetWidth(72)
	ta.SetHeight(6)
	ta.SetValue(initial)
	ta.Focus()

	return Model{
		textarea: ta,
		keys:     common.DefaultKeyMap(),
		cw:       cw,
		initial:  initial,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles messages for the compose view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.ForceQuit):
			m.canceled = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Post):
			content := strings.TrimSpace(m.textarea.Value())
			if content == "" || content == strings.TrimSpace(m.initial) {
				m.canceled = true
				return m, tea.Quit
			}
			m.content = content
			m.done = true
			return m, tea.Quit
		}
	}

	// Delegate to textarea for normal typing.
	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

// Content returns the accepted draft.
func (m Model) Content() string { return m.content }

// Canceled reports whether the draft was abandoned.
func (m Model) Canceled() bool { return m.canceled }

// Run drafts a status on in/out and returns the text to publish.
func Run(ctx context.Context, in io.Reader, out io.Writer, initial, cw string) (string, error) {
	p := tea.NewProgram(New(initial, cw),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)
	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("compose: %w", err)
	}
	m, ok := final.(Model)
	if !ok || m.Canceled() {
		return "", domain.ErrCanceled
	}
	return m.Content(), nil
}
