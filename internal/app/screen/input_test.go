package screen

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/chmouel/apollo/internal/theme"
)

func typeText(s *InputScreen, text string) {
	for _, r := range text {
		s.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestInputValidationKeepsScreenOpen(t *testing.T) {
	s := NewInputScreen("Open folder", "/path/to/crate", "", theme.Apollo())
	s.Validate = func(v string) string {
		if v == "" {
			return "path required"
		}
		return ""
	}
	submitted := ""
	s.OnSubmit = func(v string) tea.Cmd {
		submitted = v
		return nil
	}

	next, _ := s.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if next == nil {
		t.Fatal("expected screen to stay open on validation error")
	}
	if s.ErrorMsg != "path required" {
		t.Fatalf("unexpected error message %q", s.ErrorMsg)
	}
	if !strings.Contains(s.View(), "path required") {
		t.Error("expected the error in the view")
	}

	typeText(s, " /tmp/crate ")
	if s.ErrorMsg != "" {
		t.Error("typing should clear the error")
	}
	next, _ = s.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if next != nil {
		t.Fatal("expected screen to close after a valid submit")
	}
	if submitted != "/tmp/crate" {
		t.Fatalf("expected trimmed value, got %q", submitted)
	}
}

func TestInputCompletion(t *testing.T) {
	s := NewInputScreen("Open folder", "", "/tm", theme.Apollo())
	s.Complete = func(v string) string { return v + "p/" }

	s.Update(tea.KeyMsg{Type: tea.KeyTab})
	if got := s.Input.Value(); got != "/tmp/" {
		t.Fatalf("expected completed value, got %q", got)
	}
	if !strings.Contains(s.View(), "Tab to complete") {
		t.Error("expected completion hint in footer")
	}
}

func TestInputCancel(t *testing.T) {
	s := NewInputScreen("Open folder", "", "", theme.Apollo())
	canceled := false
	s.OnCancel = func() tea.Cmd {
		canceled = true
		return nil
	}
	next, _ := s.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if next != nil || !canceled {
		t.Fatal("expected esc to cancel")
	}
}
