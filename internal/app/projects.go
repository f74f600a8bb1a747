package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/chmouel/apollo/internal/cargo"
	"github.com/chmouel/apollo/internal/config"
	"github.com/chmouel/apollo/internal/state"
)

// normalizeFolder expands and absolutizes path and checks it is a directory.
func normalizeFolder(path string) (string, error) {
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a folder", abs)
	}
	return abs, nil
}

// validateFolder returns the error shown in the open folder prompt.
func (m *Model) validateFolder(path string) string {
	if path == "" {
		return "Enter a folder path"
	}
	abs, err := normalizeFolder(path)
	if err != nil {
		return err.Error()
	}
	if m.state.HasPath(abs) {
		return "That project is already open"
	}
	if _, err := cargo.ReadManifest(abs); err != nil {
		if errors.Is(err, cargo.ErrNoManifest) {
			return "No Cargo.toml in that folder"
		}
		return err.Error()
	}
	return ""
}

func (m *Model) openProject(path string) tea.Cmd {
	abs, err := normalizeFolder(path)
	if err != nil {
		return m.showError("Open folder", err.Error())
	}
	id := m.state.AddProjectByPath(abs)
	if id == state.NoProject {
		if p := m.state.ProjectByPath(abs); p != nil {
			m.state.SetActiveProject(p.ID)
		}
		m.refreshDetail()
		return m.showInfo(fmt.Sprintf("%s is already open", abs))
	}
	m.listOffset = 0
	m.watchProject(m.state.Project(id))
	m.refreshDetail()
	return m.persist()
}

func (m *Model) closeProject(id uint32) tea.Cmd {
	if m.state.Project(id) == nil {
		return nil
	}
	m.runner.Forget(id)
	if m.watcher != nil {
		m.watcher.Remove(id)
	}
	delete(m.runOutput, id)
	m.state.RemoveProject(id)
	m.listOffset = 0
	m.refreshDetail()
	return m.persist()
}

func (m *Model) switchProject(delta int) tea.Cmd {
	if len(m.state.Projects) < 2 {
		return nil
	}
	m.state.CycleActive(delta)
	m.listOffset = 0
	m.refreshDetail()
	return m.persist()
}
