package app

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// View renders the whole window.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.windowWidth == 0 || m.windowHeight == 0 {
		return "Loading..."
	}

	layout := m.computeLayout()
	m.applyLayout(layout)

	sections := []string{
		m.renderTabs(layout),
		m.renderControlBar(layout),
		m.renderBody(layout),
	}
	if layout.alertHeight > 0 {
		sections = append(sections, m.renderAlert(layout))
	}
	sections = append(sections, m.renderStatusBar(layout))
	view := truncateToHeight(lipgloss.JoinVertical(lipgloss.Left, sections...), layout.height)

	if m.state.Decorations {
		view = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(m.theme.Accent).
			Render(view)
	}

	if m.screens.IsActive() {
		return overlayPopup(view, m.screens.Current().View(), 3)
	}
	return view
}

// overlayPopup draws popup centered over base starting at row marginTop,
// keeping the base visible on both sides.
func overlayPopup(base, popup string, marginTop int) string {
	if base == "" || popup == "" {
		return base
	}
	baseLines := strings.Split(base, "\n")
	popupLines := strings.Split(popup, "\n")

	baseWidth := lipgloss.Width(baseLines[0])
	popupWidth := lipgloss.Width(popupLines[0])
	leftPad := max((baseWidth-popupWidth)/2, 0)

	for i, line := range popupLines {
		row := marginTop + i
		if row >= len(baseLines) {
			break
		}
		left := ansi.Truncate(baseLines[row], leftPad, "")
		if w := lipgloss.Width(left); w < leftPad {
			left += strings.Repeat(" ", leftPad-w)
		}
		right := ansi.TruncateLeft(baseLines[row], leftPad+popupWidth, "")
		newLine := left + line + right
		if w := lipgloss.Width(newLine); w < baseWidth {
			newLine += strings.Repeat(" ", baseWidth-w)
		}
		baseLines[row] = newLine
	}
	return strings.Join(baseLines, "\n")
}

func truncateToHeight(s string, maxLines int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	return strings.Join(lines, "\n")
}
