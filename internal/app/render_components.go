package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/chmouel/apollo/internal/models"
)

// renderTabs draws the app badge followed by one tab per open project.
func (m *Model) renderTabs(layout layoutDims) string {
	bar := lipgloss.NewStyle().Background(m.theme.Panel)
	badge := lipgloss.NewStyle().
		Foreground(m.theme.AccentFg).
		Background(m.theme.Accent).
		Bold(true).
		Padding(0, 1).
		Render("Apollo")

	active := lipgloss.NewStyle().
		Foreground(m.theme.TextFg).
		Background(m.theme.AccentDim).
		Bold(true).
		Padding(0, 1)
	inactive := lipgloss.NewStyle().
		Foreground(m.theme.MutedFg).
		Background(m.theme.Panel).
		Padding(0, 1)

	parts := []string{badge}
	for _, p := range m.state.Projects {
		label := p.DisplayName()
		if m.state.IsRunning(p.ID) {
			label += " " + m.spinner.View()
		} else if p.HasTests() && p.Summary().Failed > 0 {
			label += " " + lipgloss.NewStyle().Foreground(m.theme.ErrorFg).Render("✘")
		}
		if p.ID == m.state.ActiveProject {
			parts = append(parts, active.Render(label))
		} else {
			parts = append(parts, inactive.Render(label))
		}
	}
	line := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	return bar.Width(layout.width).MaxWidth(layout.width).Render(line)
}

// renderControlBar shows where the user is and the main actions.
func (m *Model) renderControlBar(layout layoutDims) string {
	crumb := lipgloss.NewStyle().Foreground(m.theme.MutedFg)
	current := lipgloss.NewStyle().Foreground(m.theme.TextFg).Bold(true)

	path := crumb.Render("No project")
	if p := m.state.ActiveProjectRef(); p != nil {
		path = crumb.Render(p.DisplayName())
		if t, ok := m.state.SelectedTest(); ok {
			if t.ModulePath != "" {
				path += crumb.Render(" › " + strings.ReplaceAll(t.ModulePath, "::", " › "))
			}
			path += crumb.Render(" › ") + current.Render(t.ShortName())
		}
	}

	var hints []string
	if p := m.state.ActiveProjectRef(); p != nil && m.state.IsRunning(p.ID) {
		hints = append(hints, m.renderKeyHint("^x", "Cancel"))
	} else {
		hints = append(hints, m.renderKeyHint("r", "Run"))
	}
	hints = append(hints,
		m.renderKeyHint("s", "Settings"),
		m.renderKeyHint("c", "Clear"),
		m.renderKeyHint("o", "Open"),
		m.renderKeyHint("?", "Help"),
	)
	right := strings.Join(hints, "  ")

	gap := layout.width - lipgloss.Width(path) - lipgloss.Width(right) - 2
	if gap < 1 {
		return lipgloss.NewStyle().Padding(0, 1).MaxWidth(layout.width).Render(right)
	}
	return lipgloss.NewStyle().Padding(0, 1).Render(path + strings.Repeat(" ", gap) + right)
}

func (m *Model) renderAlert(layout layoutDims) string {
	a := m.state.Alert
	if a == nil {
		return ""
	}
	var color lipgloss.Color
	switch a.Severity {
	case models.SeveritySuccess:
		color = m.theme.SuccessFg
	case models.SeverityInfo:
		color = m.theme.InfoFg
	case models.SeverityWarning:
		color = m.theme.WarnFg
	default:
		color = m.theme.ErrorFg
	}
	heading := lipgloss.NewStyle().Foreground(color).Bold(true).Render(a.Heading() + ":")
	msg := strings.Join(strings.Fields(a.Message), " ")
	line := heading + " " + lipgloss.NewStyle().Foreground(m.theme.TextFg).Render(msg)
	if a.UserMustClose() {
		line += "  " + lipgloss.NewStyle().Foreground(m.theme.MutedFg).Render("(esc to close)")
	}
	return lipgloss.NewStyle().
		Padding(0, 1).
		Width(layout.width).
		MaxWidth(layout.width).
		MaxHeight(1).
		Render(line)
}

func (m *Model) renderStatusBar(layout layoutDims) string {
	style := lipgloss.NewStyle().
		Foreground(m.theme.TextFg).
		Background(m.theme.Panel).
		Padding(0, 1)
	muted := lipgloss.NewStyle().Foreground(m.theme.MutedFg).Background(m.theme.Panel)

	status := "Idle"
	if m.state.AnyRunning() {
		status = m.spinner.View() + " Running tests"
	}
	parts := []string{status}

	if p := m.state.ActiveProjectRef(); p != nil && p.HasTests() {
		sum := p.Summary()
		parts = append(parts,
			fmt.Sprintf("%d Tests Run", sum.Total()),
			lipgloss.NewStyle().Foreground(m.theme.SuccessFg).Background(m.theme.Panel).
				Render(fmt.Sprintf("✔ %d", sum.Passed)),
			lipgloss.NewStyle().Foreground(m.theme.ErrorFg).Background(m.theme.Panel).
				Render(fmt.Sprintf("✘ %d", sum.Failed)),
			lipgloss.NewStyle().Foreground(m.theme.WarnFg).Background(m.theme.Panel).
				Render(fmt.Sprintf("○ %d", sum.Ignored)),
		)
	}
	left := strings.Join(parts, muted.Render(" │ "))
	right := muted.Render("cargo test " + strings.Join(m.state.RunArgs.Args(), " "))

	gap := layout.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		return style.Width(layout.width).MaxWidth(layout.width).Render(left)
	}
	return style.Width(layout.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (m *Model) renderKeyHint(key, label string) string {
	keyStyle := lipgloss.NewStyle().
		Foreground(m.theme.AccentFg).
		Background(m.theme.Accent).
		Bold(true).
		Padding(0, 1)
	labelStyle := lipgloss.NewStyle().Foreground(m.theme.Accent)
	return fmt.Sprintf("%s %s", keyStyle.Render(key), labelStyle.Render(label))
}
