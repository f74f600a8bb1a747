package app

import (
	"fmt"
	"runtime"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	osDarwin  = "darwin"
	osWindows = "windows"
)

// openInFileManager shows the active project folder with the desktop's
// default handler.
func (m *Model) openInFileManager() tea.Cmd {
	p := m.state.ActiveProjectRef()
	if p == nil {
		return nil
	}
	path := p.PathString()
	return func() tea.Msg {
		var name string
		var args []string
		switch runtime.GOOS {
		case osDarwin:
			name, args = "open", []string{path}
		case osWindows:
			name, args = "explorer", []string{path}
		default:
			name, args = "xdg-open", []string{path}
		}
		// #nosec G204 -- the folder is passed as a single argument
		cmd := m.commandRunner(m.ctx, name, args...)
		if err := m.startCommand(cmd); err != nil {
			return errMsg{err: fmt.Errorf("opening %s: %w", path, err)}
		}
		return nil
	}
}
