package screen

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/chmouel/apollo/internal/theme"
)

// ChecklistItem is a single toggle.
type ChecklistItem struct {
	ID          string
	Label       string
	Description string
	Checked     bool
}

// ChecklistScreen edits a fixed set of toggles. Changes are only handed to
// OnSubmit; cancelling leaves the caller's items untouched.
type ChecklistScreen struct {
	Items  []ChecklistItem
	Cursor int
	Title  string
	Thm    *theme.Theme

	OnSubmit func([]ChecklistItem) tea.Cmd
	OnCancel func() tea.Cmd
}

// NewChecklistScreen copies items into a new checklist.
func NewChecklistScreen(title string, items []ChecklistItem, thm *theme.Theme) *ChecklistScreen {
	cp := make([]ChecklistItem, len(items))
	copy(cp, items)
	return &ChecklistScreen{Items: cp, Title: title, Thm: thm}
}

// Type returns the screen type.
func (s *ChecklistScreen) Type() Type {
	return TypeChecklist
}

// Update handles navigation and toggling.
func (s *ChecklistScreen) Update(msg tea.KeyMsg) (Screen, tea.Cmd) {
	switch msg.String() {
	case keyEnter:
		if s.OnSubmit != nil {
			return nil, s.OnSubmit(s.Items)
		}
		return nil, nil
	case keyEsc, keyQ, keyCtrlC:
		if s.OnCancel != nil {
			return nil, s.OnCancel()
		}
		return nil, nil
	case "up", "k", keyShiftTab:
		if s.Cursor > 0 {
			s.Cursor--
		}
	case "down", "j", keyTab:
		if s.Cursor < len(s.Items)-1 {
			s.Cursor++
		}
	case " ", "x":
		if s.Cursor >= 0 && s.Cursor < len(s.Items) {
			s.Items[s.Cursor].Checked = !s.Items[s.Cursor].Checked
		}
	}
	return s, nil
}

// Checked returns whether the item with id is checked.
func (s *ChecklistScreen) Checked(id string) bool {
	for _, item := range s.Items {
		if item.ID == id {
			return item.Checked
		}
	}
	return false
}

// View renders the checklist.
func (s *ChecklistScreen) View() string {
	width := modalWidth
	inner := width - 2

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.Thm.Accent).
		Width(width)

	title := lipgloss.NewStyle().
		Foreground(s.Thm.Accent).
		Bold(true).
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(s.Thm.BorderDim).
		Width(inner).
		Padding(0, 1).
		Render(s.Title)

	row := lipgloss.NewStyle().Padding(0, 1).Width(inner)
	selected := row.Background(s.Thm.Accent).Foreground(s.Thm.AccentFg).Bold(true)
	desc := lipgloss.NewStyle().Foreground(s.Thm.MutedFg)

	rows := make([]string, 0, len(s.Items)*2)
	for i, item := range s.Items {
		box := "[ ] "
		if item.Checked {
			box = "[x] "
		}
		if i == s.Cursor {
			rows = append(rows, selected.Render(box+item.Label))
		} else {
			rows = append(rows, row.Render(box+item.Label))
		}
		if item.Description != "" {
			rows = append(rows, row.Render(desc.Render("    "+item.Description)))
		}
	}

	count := 0
	for _, item := range s.Items {
		if item.Checked {
			count++
		}
	}
	footer := lipgloss.NewStyle().
		Foreground(s.Thm.MutedFg).
		Align(lipgloss.Right).
		Width(inner).
		PaddingTop(1).
		Render(fmt.Sprintf("%d enabled • Space toggle • Enter apply • Esc cancel", count))

	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(rows, "\n"), footer))
}
