package screen

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/chmouel/apollo/internal/theme"
)

const helpText = `**Projects**
- o: Open a Cargo project folder
- x: Close the active project
- Tab / ]: Next project
- Shift+Tab / [: Previous project
- O: Open the project folder with the system file manager

**Tests**
- r: Run cargo test for the active project
- Ctrl+x: Cancel the running tests
- c: Clear the results
- s: Run settings (--lib, --bins, --doc, --workspace, --no-fail-fast)
- j / k: Select the next / previous test
- g / G: First / last test
- Esc: Unselect the test, or dismiss the alert
- Enter: Show the whole alert message

**Detail panel**
- Ctrl+d / Ctrl+u: Scroll the failure output
- Mouse wheel: Scroll the test list

**General**
- ?: This screen
- a: About apollo
- q / Ctrl+c: Quit, saving the open projects`

// HelpScreen shows version information and the key bindings.
type HelpScreen struct {
	Viewport    viewport.Model
	Width       int
	Height      int
	About       string
	FullText    []string
	SearchInput textinput.Model
	Searching   bool
	SearchQuery string
	Thm         *theme.Theme
}

// NewHelpScreen sizes the screen from the terminal dimensions.
func NewHelpScreen(about string, maxWidth, maxHeight int, thm *theme.Theme) *HelpScreen {
	ti := textinput.New()
	ti.Placeholder = "Search help"
	ti.CharLimit = 64
	ti.Prompt = "/ "
	ti.Blur()

	s := &HelpScreen{
		About:       about,
		FullText:    strings.Split(helpText, "\n"),
		SearchInput: ti,
		Thm:         thm,
		Viewport:    viewport.New(0, 0),
	}
	s.SetSize(maxWidth, maxHeight)
	s.refreshContent()
	return s
}

// Type returns the screen type.
func (s *HelpScreen) Type() Type {
	return TypeHelp
}

// SetSize recomputes the dimensions after a resize.
func (s *HelpScreen) SetSize(maxWidth, maxHeight int) {
	s.Width, s.Height = 72, 28
	if maxWidth > 0 {
		s.Width = min(90, max(modalWidth, maxWidth*3/4))
	}
	if maxHeight > 0 {
		s.Height = min(36, max(16, maxHeight*7/10))
	}
	s.SearchInput.Width = max(20, s.Width-6)
	s.Viewport.Width = s.Width - 4
	s.Viewport.Height = max(5, s.Height-6)
}

// Update handles scrolling and search.
func (s *HelpScreen) Update(msg tea.KeyMsg) (Screen, tea.Cmd) {
	key := msg.String()
	switch key {
	case "/":
		if !s.Searching {
			s.Searching = true
			s.SearchInput.Focus()
			return s, textinput.Blink
		}
	case keyEnter:
		if s.Searching {
			s.Searching = false
			s.SearchInput.Blur()
			return s, nil
		}
	case keyEsc, keyCtrlC:
		if s.Searching || s.SearchQuery != "" {
			s.Searching = false
			s.SearchInput.SetValue("")
			s.SearchInput.Blur()
			s.SearchQuery = ""
			s.refreshContent()
			return s, nil
		}
		return nil, nil
	case keyQ, "?":
		if !s.Searching {
			return nil, nil
		}
	}

	if s.Searching {
		var cmd tea.Cmd
		s.SearchInput, cmd = s.SearchInput.Update(msg)
		if q := strings.TrimSpace(s.SearchInput.Value()); q != s.SearchQuery {
			s.SearchQuery = q
			s.refreshContent()
		}
		return s, cmd
	}

	switch key {
	case "j", "down":
		s.Viewport.ScrollDown(1)
	case "k", "up":
		s.Viewport.ScrollUp(1)
	case "ctrl+d", " ":
		s.Viewport.HalfPageDown()
	case "ctrl+u":
		s.Viewport.HalfPageUp()
	}
	return s, nil
}

func (s *HelpScreen) refreshContent() {
	s.Viewport.SetContent(s.renderContent())
	s.Viewport.GotoTop()
}

func (s *HelpScreen) renderContent() string {
	titleStyle := lipgloss.NewStyle().Foreground(s.Thm.Accent).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(s.Thm.SuccessFg).Bold(true)
	query := strings.ToLower(s.SearchQuery)

	var lines []string
	for _, line := range s.FullText {
		if query != "" && !strings.Contains(strings.ToLower(line), query) {
			continue
		}
		switch {
		case strings.HasPrefix(line, "**") && strings.HasSuffix(line, "**"):
			lines = append(lines, titleStyle.Render(strings.Trim(line, "*")))
		case strings.HasPrefix(line, "- "):
			keys, desc, ok := strings.Cut(strings.TrimPrefix(line, "- "), ": ")
			if ok {
				lines = append(lines, "  "+keyStyle.Render(keys)+": "+desc)
				continue
			}
			lines = append(lines, line)
		default:
			lines = append(lines, line)
		}
	}
	if query != "" && len(lines) == 0 {
		return fmt.Sprintf("No help entries match %q", s.SearchQuery)
	}
	if query == "" && s.About != "" {
		about := lipgloss.NewStyle().Foreground(s.Thm.MutedFg).Render(s.About)
		lines = append([]string{about, ""}, lines...)
	}
	return strings.Join(lines, "\n")
}

// View renders the help box.
func (s *HelpScreen) View() string {
	inner := s.Width - 2

	title := lipgloss.NewStyle().
		Foreground(s.Thm.Accent).
		Bold(true).
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(s.Thm.BorderDim).
		Width(inner).
		Padding(0, 1).
		Render("Apollo help")

	parts := []string{title}
	if s.Searching || s.SearchQuery != "" {
		parts = append(parts, lipgloss.NewStyle().Width(inner).Padding(0, 1).Render(s.SearchInput.View()))
	}
	parts = append(parts,
		lipgloss.NewStyle().Width(inner).Padding(0, 1).Render(s.Viewport.View()),
		lipgloss.NewStyle().Foreground(s.Thm.MutedFg).Width(inner).Padding(1, 1, 0).
			Render("j/k scroll • / search • esc close"),
	)

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.Thm.Accent).
		Width(s.Width).
		Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}
