package screen

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/chmouel/apollo/internal/theme"
)

// ConfirmScreen asks a yes/no question with two buttons.
type ConfirmScreen struct {
	Message        string
	ConfirmLabel   string
	SelectedButton int // 0 = confirm, 1 = cancel
	Thm            *theme.Theme

	OnConfirm func() tea.Cmd
	OnCancel  func() tea.Cmd
}

// NewConfirmScreen creates a confirm screen with the confirm button focused.
func NewConfirmScreen(message, confirmLabel string, thm *theme.Theme) *ConfirmScreen {
	if confirmLabel == "" {
		confirmLabel = "Confirm"
	}
	return &ConfirmScreen{
		Message:      message,
		ConfirmLabel: confirmLabel,
		Thm:          thm,
	}
}

// Type returns the screen type.
func (s *ConfirmScreen) Type() Type {
	return TypeConfirm
}

func (s *ConfirmScreen) confirm() (Screen, tea.Cmd) {
	if s.OnConfirm != nil {
		return nil, s.OnConfirm()
	}
	return nil, nil
}

func (s *ConfirmScreen) cancel() (Screen, tea.Cmd) {
	if s.OnCancel != nil {
		return nil, s.OnCancel()
	}
	return nil, nil
}

// Update handles button focus and the y/n shortcuts.
func (s *ConfirmScreen) Update(msg tea.KeyMsg) (Screen, tea.Cmd) {
	switch msg.String() {
	case keyTab, keyShiftTab, "right", "left", "l", "h":
		s.SelectedButton = 1 - s.SelectedButton
	case "y", "Y":
		return s.confirm()
	case "n", "N", keyEsc, keyQ, keyCtrlC:
		return s.cancel()
	case keyEnter:
		if s.SelectedButton == 0 {
			return s.confirm()
		}
		return s.cancel()
	}
	return s, nil
}

// View renders the dialog.
func (s *ConfirmScreen) View() string {
	width := modalWidth
	buttonWidth := (width - 6) / 2

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.Thm.Accent).
		Padding(1, 2).
		Width(width)

	messageStyle := lipgloss.NewStyle().
		Width(width-4).
		Align(lipgloss.Center).
		Foreground(s.Thm.TextFg)

	button := lipgloss.NewStyle().Width(buttonWidth).Align(lipgloss.Center).Padding(0, 2)
	unfocused := button.Foreground(s.Thm.MutedFg).Background(s.Thm.BorderDim)

	confirmBtn := unfocused.Render("[" + s.ConfirmLabel + "]")
	cancelBtn := unfocused.Render("[Cancel]")
	if s.SelectedButton == 0 {
		confirmBtn = button.Foreground(s.Thm.AccentFg).Background(s.Thm.ErrorFg).Bold(true).Render("[" + s.ConfirmLabel + "]")
	} else {
		cancelBtn = button.Foreground(s.Thm.AccentFg).Background(s.Thm.Accent).Bold(true).Render("[Cancel]")
	}

	return boxStyle.Render(fmt.Sprintf("%s\n\n%s  %s", messageStyle.Render(s.Message), confirmBtn, cancelBtn))
}
