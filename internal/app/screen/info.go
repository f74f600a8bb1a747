package screen

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/chmouel/apollo/internal/theme"
)

// InfoScreen shows a message with an OK button.
type InfoScreen struct {
	Title   string
	Message string
	Thm     *theme.Theme

	OnClose func() tea.Cmd
}

// NewInfoScreen creates an informational modal.
func NewInfoScreen(title, message string, thm *theme.Theme) *InfoScreen {
	return &InfoScreen{Title: title, Message: message, Thm: thm}
}

// Type returns the screen type.
func (s *InfoScreen) Type() Type {
	return TypeInfo
}

// Update closes the screen on enter, esc or q.
func (s *InfoScreen) Update(msg tea.KeyMsg) (Screen, tea.Cmd) {
	switch msg.String() {
	case keyEnter, keyEsc, keyQ, keyCtrlC:
		if s.OnClose != nil {
			return nil, s.OnClose()
		}
		return nil, nil
	}
	return s, nil
}

// View renders the box.
func (s *InfoScreen) View() string {
	width := modalWidth

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.Thm.Accent).
		Padding(1, 2).
		Width(width)

	lines := make([]string, 0, 3)
	if s.Title != "" {
		lines = append(lines, lipgloss.NewStyle().
			Foreground(s.Thm.Accent).
			Bold(true).
			Width(width-6).
			Align(lipgloss.Center).
			Render(s.Title))
	}
	lines = append(lines,
		lipgloss.NewStyle().Width(width-6).Align(lipgloss.Center).Foreground(s.Thm.TextFg).Render(s.Message),
		lipgloss.NewStyle().
			Width(width-6).
			Align(lipgloss.Center).
			Foreground(s.Thm.AccentFg).
			Background(s.Thm.Accent).
			Bold(true).
			Render("[OK]"),
	)
	return boxStyle.Render(strings.Join(lines, "\n\n"))
}
