package screen

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/chmouel/apollo/internal/theme"
)

// InputScreen prompts for a single line of text.
type InputScreen struct {
	Prompt   string
	Input    textinput.Model
	ErrorMsg string
	Thm      *theme.Theme

	// Validate returns an error message, or "" when value is acceptable.
	Validate func(value string) string
	// Complete returns the completed value for tab, or value unchanged.
	Complete func(value string) string

	OnSubmit func(value string) tea.Cmd
	OnCancel func() tea.Cmd
}

// NewInputScreen creates a focused input screen.
func NewInputScreen(prompt, placeholder, value string, thm *theme.Theme) *InputScreen {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.SetValue(value)
	ti.CursorEnd()
	ti.Focus()
	ti.CharLimit = 4096
	ti.Prompt = ""
	ti.TextStyle = lipgloss.NewStyle().Foreground(thm.TextFg)
	ti.Width = modalWidth - 8

	return &InputScreen{
		Prompt: prompt,
		Input:  ti,
		Thm:    thm,
	}
}

// Type returns the screen type.
func (s *InputScreen) Type() Type {
	return TypeInput
}

// Update handles submit, cancel and completion, passing other keys to the
// text input.
func (s *InputScreen) Update(msg tea.KeyMsg) (Screen, tea.Cmd) {
	switch msg.String() {
	case keyEnter:
		value := strings.TrimSpace(s.Input.Value())
		if s.Validate != nil {
			if errMsg := strings.TrimSpace(s.Validate(value)); errMsg != "" {
				s.ErrorMsg = errMsg
				return s, nil
			}
		}
		s.ErrorMsg = ""
		if s.OnSubmit != nil {
			return nil, s.OnSubmit(value)
		}
		return nil, nil
	case keyEsc, keyCtrlC:
		if s.OnCancel != nil {
			return nil, s.OnCancel()
		}
		return nil, nil
	case keyTab:
		if s.Complete != nil {
			s.Input.SetValue(s.Complete(s.Input.Value()))
			s.Input.CursorEnd()
		}
		return s, nil
	}

	if msg.Type == tea.KeyRunes || msg.Type == tea.KeyBackspace {
		s.ErrorMsg = ""
	}
	var cmd tea.Cmd
	s.Input, cmd = s.Input.Update(msg)
	return s, cmd
}

// View renders the prompt box.
func (s *InputScreen) View() string {
	width := modalWidth
	inner := width - 6

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.Thm.Accent).
		Padding(1, 2).
		Width(width)

	lines := []string{
		lipgloss.NewStyle().Foreground(s.Thm.Accent).Bold(true).Width(inner).Align(lipgloss.Center).Render(s.Prompt),
		lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(s.Thm.Border).
			Padding(0, 1).
			Width(inner).
			Render(s.Input.View()),
	}
	if s.ErrorMsg != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(s.Thm.ErrorFg).Width(inner).Align(lipgloss.Center).Render(s.ErrorMsg))
	}
	footer := "Enter to confirm • Esc to cancel"
	if s.Complete != nil {
		footer = "Tab to complete • " + footer
	}
	lines = append(lines, lipgloss.NewStyle().Foreground(s.Thm.MutedFg).Width(inner).Align(lipgloss.Center).Render(footer))

	return boxStyle.Render(strings.Join(lines, "\n\n"))
}
