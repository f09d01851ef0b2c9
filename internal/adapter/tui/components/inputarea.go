package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"canvas-ai/internal/adapter/tui/theme"
)

// InputSubmitMsg is sent when the user presses Enter on a non-blank prompt.
// The input keeps its text; the owner clears it once the prompt settles.
type InputSubmitMsg struct {
	Value string
}

// InputAreaModel wraps a single-line prompt input with slash-command autocomplete.
type InputAreaModel struct {
	Input        textinput.Model
	Autocomplete AutocompleteModel
	Enabled      bool
	width        int
}

// NewInputArea creates an input area with sensible defaults.
func NewInputArea() InputAreaModel {
	ti := textinput.New()
	ti.Placeholder = "Describe what to draw, or /help"
	ti.Prompt = "> "
	ti.CharLimit = 0
	ti.PromptStyle = theme.InputPrompt
	ti.PlaceholderStyle = theme.InputPlaceholder
	ti.Focus()

	return InputAreaModel{
		Input:   ti,
		Enabled: true,
	}
}

// SetWidth updates the input width.
func (m *InputAreaModel) SetWidth(w int) {
	m.width = w
	m.Input.Width = max(w-4, 10)
	m.Autocomplete.SetWidth(w)
}

// SetEnabled enables or disables input while a prompt is in flight.
func (m *InputAreaModel) SetEnabled(enabled bool) {
	m.Enabled = enabled
	if enabled {
		m.Input.Focus()
	} else {
		m.Input.Blur()
	}
}

// Reset clears the input.
func (m *InputAreaModel) Reset() {
	m.Input.Reset()
	m.Autocomplete.Hide()
}

// Value returns the current input text.
func (m InputAreaModel) Value() string {
	return m.Input.Value()
}

// ParseSlashCommand extracts command and args from slash command input.
func ParseSlashCommand(input string) (cmd string, args []string, ok bool) {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") {
		return "", nil, false
	}
	parts := strings.Fields(input)
	return strings.ToLower(parts[0]), parts[1:], true
}

// Update handles key events. Enter submits the trimmed value; blank input is
// ignored. When the autocomplete popup is visible, Tab/arrow keys navigate it.
func (m InputAreaModel) Update(msg tea.Msg) (InputAreaModel, tea.Cmd) {
	if !m.Enabled {
		return m, nil
	}
	if _, ok := msg.(tea.MouseMsg); ok {
		return m, nil
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if m.Autocomplete.Visible {
			switch keyMsg.Type {
			case tea.KeyTab, tea.KeyDown:
				m.Autocomplete.SelectNext()
				return m, nil
			case tea.KeyShiftTab, tea.KeyUp:
				m.Autocomplete.SelectPrev()
				return m, nil
			case tea.KeyEnter:
				// Accept the selected command into the input (don't submit yet).
				if accepted := m.Autocomplete.Accept(); accepted != "" {
					m.Input.SetValue(accepted + " ")
					m.Input.CursorEnd()
				}
				return m, nil
			case tea.KeyEsc:
				m.Autocomplete.Hide()
				return m, nil
			}
		}

		if keyMsg.Type == tea.KeyEnter {
			value := strings.TrimSpace(m.Input.Value())
			if value == "" {
				return m, nil
			}
			m.Autocomplete.Hide()
			return m, func() tea.Msg { return InputSubmitMsg{Value: value} }
		}
	}

	var cmd tea.Cmd
	m.Input, cmd = m.Input.Update(msg)

	value := m.Input.Value()
	if strings.HasPrefix(value, "/") && !strings.Contains(value, " ") {
		m.Autocomplete.SetPrefix(value)
	} else {
		m.Autocomplete.Hide()
	}
	return m, cmd
}

// View renders the input with the autocomplete popup above it.
func (m InputAreaModel) View() string {
	if popup := m.Autocomplete.View(); popup != "" {
		return popup + "\n" + m.Input.View()
	}
	return m.Input.View()
}
