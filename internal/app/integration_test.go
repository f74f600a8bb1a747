package app

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/chmouel/apollo/internal/config"
	"github.com/chmouel/apollo/internal/models"
	"github.com/chmouel/apollo/internal/runner"
	"github.com/chmouel/apollo/internal/state"
)

// TestOpenRunQuitFlow drives the program through opening a project,
// running its tests and quitting.
func TestOpenRunQuitFlow(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.StateFile = filepath.Join(t.TempDir(), models.StateFilename)
	m := NewModel(cfg, nil)
	m.runner = runner.New(&fakeCargo{groups: sampleGroups()}, runner.PolicyReject)
	crate := makeCrate(t, "flowcrate")

	tm := teatest.NewTestModel(
		t,
		m,
		teatest.WithInitialTermSize(120, 40),
	)

	teatest.WaitFor(t, tm.Output(), func(b []byte) bool {
		return bytes.Contains(b, []byte("Welcome to Apollo"))
	}, teatest.WithDuration(2*time.Second))

	tm.Send(openProjectMsg{path: crate})
	teatest.WaitFor(t, tm.Output(), func(b []byte) bool {
		return bytes.Contains(b, []byte("flowcrate"))
	}, teatest.WithDuration(2*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	teatest.WaitFor(t, tm.Output(), func(b []byte) bool {
		return bytes.Contains(b, []byte("3 Tests Run"))
	}, teatest.WithDuration(3*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	tm.WaitFinished(t, teatest.WithFinalTimeout(2*time.Second))

	fm, ok := tm.FinalModel(t).(*Model)
	if !ok {
		t.Fatal("final model is not *Model")
	}
	if !fm.quitting {
		t.Error("model should be quitting after q")
	}
	p := fm.State().ActiveProjectRef()
	if p == nil || len(p.TestsLinear()) != 3 {
		t.Fatalf("expected 3 tests on the active project, got %+v", p)
	}

	loaded := state.Load(cfg.StatePath(), models.DefaultRunArgs())
	if len(loaded.Projects) != 1 || loaded.Projects[0].Path != crate {
		t.Errorf("state file not saved on quit: %+v", loaded.Projects)
	}
}

// TestHelpScreenFlow opens and closes the help screen.
func TestHelpScreenFlow(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.StateFile = filepath.Join(t.TempDir(), models.StateFilename)
	tm := teatest.NewTestModel(t, NewModel(cfg, nil), teatest.WithInitialTermSize(120, 40))

	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	teatest.WaitFor(t, tm.Output(), func(b []byte) bool {
		return bytes.Contains(b, []byte("apollo"))
	}, teatest.WithDuration(2*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyEsc})
	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	tm.WaitFinished(t, teatest.WithFinalTimeout(2*time.Second))

	fm := tm.FinalModel(t).(*Model)
	if fm.screens.IsActive() {
		t.Error("help screen should be closed")
	}
}
