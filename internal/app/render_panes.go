package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/chmouel/apollo/internal/cargo"
	"github.com/chmouel/apollo/internal/models"
	"github.com/muesli/reflow/wrap"
)

// listRow is one line of the test list: a group header or a test.
type listRow struct {
	group *models.ParsedTestGroup
	test  *models.ParsedTest
	index int // Position in TestsLinear(), -1 for headers
}

func listRows(p *models.Project) []listRow {
	if p == nil {
		return nil
	}
	rows := make([]listRow, 0)
	idx := 0
	for gi := range p.Tests {
		g := &p.Tests[gi]
		rows = append(rows, listRow{group: g, index: -1})
		for ti := range g.Tests {
			rows = append(rows, listRow{test: &g.Tests[ti], index: idx})
			idx++
		}
	}
	return rows
}

// rowOf returns the list row showing the test at linear index idx.
func rowOf(rows []listRow, idx int) int {
	for i, r := range rows {
		if r.test != nil && r.index == idx {
			return i
		}
	}
	return -1
}

// groupOf returns the group holding the test at linear index idx.
func groupOf(p *models.Project, idx int) *models.ParsedTestGroup {
	for gi := range p.Tests {
		if idx < len(p.Tests[gi].Tests) {
			return &p.Tests[gi]
		}
		idx -= len(p.Tests[gi].Tests)
	}
	return nil
}

func (m *Model) renderBody(layout layoutDims) string {
	// lipgloss widths include padding but not the border.
	pad := m.paneStyle(false).GetHorizontalPadding()
	list := m.paneStyle(true).
		Width(layout.listInnerWidth + pad).
		Height(layout.listInnerHeight).
		Render(m.renderTestList(layout))
	detail := m.paneStyle(false).
		Width(layout.detailInnerWidth + pad).
		Height(layout.detailInnerHeight).
		Render(m.detail.View())
	return lipgloss.JoinHorizontal(lipgloss.Top, list, detail)
}

func (m *Model) renderTestList(layout layoutDims) string {
	muted := lipgloss.NewStyle().Foreground(m.theme.MutedFg).Italic(true)
	p := m.state.ActiveProjectRef()
	switch {
	case p == nil:
		return muted.Render("No project open. Press o to open a folder.")
	case m.state.IsRunning(p.ID) && !p.HasTests():
		return fmt.Sprintf("%s %s", m.spinner.View(), muted.Render("Running tests..."))
	case !p.HasTests():
		return muted.Render("No results yet. Press r to run the tests.")
	case len(p.TestsLinear()) == 0:
		return muted.Render("The last run did not report any test.")
	}

	rows := listRows(p)
	height := layout.listInnerHeight
	m.listOffset = clampOffset(m.listOffset, len(rows), height)
	end := min(m.listOffset+height, len(rows))

	width := layout.listInnerWidth
	headerStyle := lipgloss.NewStyle().Foreground(m.theme.Accent).Bold(true)
	selectedStyle := lipgloss.NewStyle().
		Foreground(m.theme.AccentFg).
		Background(m.theme.Accent).
		Bold(true)
	selected := m.state.SelectedIndex()

	lines := make([]string, 0, end-m.listOffset)
	for _, r := range rows[m.listOffset:end] {
		if r.group != nil {
			lines = append(lines, headerStyle.Render(truncate(r.group.Name, width)))
			continue
		}
		glyph := m.statusGlyph(r.test.Status)
		name := truncate(r.test.ShortName(), max(width-4, 1))
		if r.index == selected {
			lines = append(lines, selectedStyle.Width(width).Render(fmt.Sprintf(" %s %s", statusRune(r.test.Status), name)))
			continue
		}
		lines = append(lines, fmt.Sprintf(" %s %s", glyph, name))
	}
	return strings.Join(lines, "\n")
}

func statusRune(s models.TestStatus) string {
	switch s {
	case models.StatusOK:
		return "✔"
	case models.StatusFailed:
		return "✘"
	default:
		return "○"
	}
}

func (m *Model) statusGlyph(s models.TestStatus) string {
	return lipgloss.NewStyle().Foreground(m.statusColor(s)).Render(statusRune(s))
}

func (m *Model) statusColor(s models.TestStatus) lipgloss.Color {
	switch s {
	case models.StatusOK:
		return m.theme.SuccessFg
	case models.StatusFailed:
		return m.theme.ErrorFg
	default:
		return m.theme.WarnFg
	}
}

func clampOffset(offset, rows, height int) int {
	maxOffset := max(rows-height, 0)
	return min(max(offset, 0), maxOffset)
}

// ensureSelectionVisible scrolls the list so the selected row is shown.
func (m *Model) ensureSelectionVisible() {
	p := m.state.ActiveProjectRef()
	idx := m.state.SelectedIndex()
	if p == nil || idx < 0 {
		return
	}
	row := rowOf(listRows(p), idx)
	if row < 0 {
		return
	}
	height := m.computeLayout().listInnerHeight
	switch {
	case row < m.listOffset:
		m.listOffset = row
		// Keep the group header in view when selecting its first test.
		if row > 0 && listRows(p)[row-1].group != nil {
			m.listOffset = row - 1
		}
	case row >= m.listOffset+height:
		m.listOffset = row - height + 1
	}
}

func (m *Model) scrollList(delta int) {
	p := m.state.ActiveProjectRef()
	if p == nil {
		return
	}
	m.listOffset = clampOffset(m.listOffset+delta, len(listRows(p)), m.computeLayout().listInnerHeight)
}

// refreshDetail rebuilds the detail panel for the current selection.
func (m *Model) refreshDetail() {
	m.detail.SetContent(m.detailContent(max(m.detail.Width, 1)))
	m.detail.GotoTop()
}

func (m *Model) detailContent(width int) string {
	p := m.state.ActiveProjectRef()
	if p == nil {
		return m.welcomeContent(width)
	}
	if t, ok := m.state.SelectedTest(); ok {
		return m.testDetail(p, t, width)
	}
	if out := m.runOutput[p.ID]; out != "" {
		title := lipgloss.NewStyle().Foreground(m.theme.ErrorFg).Bold(true).Render("cargo output")
		return title + "\n\n" + wrap.String(out, width)
	}
	return m.projectDetail(p, width)
}

func (m *Model) testDetail(p *models.Project, t models.ParsedTest, width int) string {
	label := lipgloss.NewStyle().Foreground(m.theme.MutedFg)
	title := lipgloss.NewStyle().Foreground(m.theme.TextFg).Bold(true)
	status := lipgloss.NewStyle().Foreground(m.statusColor(t.Status)).Bold(true)

	var b strings.Builder
	b.WriteString(title.Render(wrap.String(t.Name, width)))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "%s %s\n", label.Render("Status:"), status.Render(statusRune(t.Status)+" "+string(t.Status)))
	if g := groupOf(p, m.state.SelectedIndex()); g != nil {
		fmt.Fprintf(&b, "%s %s\n", label.Render("Group: "), g.Name)
	}
	if t.ModulePath != "" {
		fmt.Fprintf(&b, "%s %s\n", label.Render("Module:"), t.ModulePath)
	}
	if t.FilePath != "" {
		fmt.Fprintf(&b, "%s %s\n", label.Render("File:  "), t.FilePath)
	}
	if t.Reason != "" {
		heading := "Reason"
		if t.Status == models.StatusFailed {
			heading = "Output"
		}
		b.WriteString("\n")
		b.WriteString(label.Render(heading))
		b.WriteString("\n")
		b.WriteString(wrap.String(t.Reason, width))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) projectDetail(p *models.Project, width int) string {
	label := lipgloss.NewStyle().Foreground(m.theme.MutedFg)
	title := lipgloss.NewStyle().Foreground(m.theme.TextFg).Bold(true)

	var b strings.Builder
	b.WriteString(title.Render(p.DisplayName()))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "%s %s\n", label.Render("Path:   "), wrap.String(p.PathString(), max(width-9, 1)))
	if mf, err := cargo.ReadManifest(p.PathString()); err == nil {
		if mf.IsWorkspace {
			fmt.Fprintf(&b, "%s %d crates\n", label.Render("Members:"), len(mf.Members))
		}
		if mf.Name != "" {
			pkg := mf.Name
			if mf.Version != "" {
				pkg += " " + mf.Version
			}
			fmt.Fprintf(&b, "%s %s\n", label.Render("Package:"), pkg)
		}
	}
	if p.HasTests() {
		sum := p.Summary()
		fmt.Fprintf(&b, "%s %d passed, %d failed, %d ignored\n", label.Render("Results:"), sum.Passed, sum.Failed, sum.Ignored)
		fmt.Fprintf(&b, "%s %s (%s)\n", label.Render("Ran:    "),
			p.LastRun.Format(time.DateTime), p.LastDuration.Round(time.Millisecond))
		b.WriteString("\n")
		b.WriteString(label.Render("Select a test with j/k to see its details."))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) welcomeContent(width int) string {
	title := lipgloss.NewStyle().Foreground(m.theme.Accent).Bold(true).Render("Welcome to Apollo")
	body := "Open a Cargo project with o, then press r to run its tests. " +
		"Press ? for the list of keys."
	return title + "\n\n" + wrap.String(body, width)
}

func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	if width <= 1 {
		return "…"
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > width {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}
