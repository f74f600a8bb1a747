package app

import (
	tea "github.com/charmbracelet/bubbletea"
)

const (
	keyEsc      = "esc"
	keyEnter    = "enter"
	keyTab      = "tab"
	keyShiftTab = "shift+tab"
	keyCtrlC    = "ctrl+c"
	keyUp       = "up"
	keyDown     = "down"

	wheelStep = 3
)

// handleKeyMsg processes keys when no modal screen is open.
func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", keyCtrlC:
		return m.quit()
	case "?":
		return m, m.showHelp()
	case "a":
		return m, m.showAbout()
	case keyEnter:
		return m, m.showAlertDetails()
	case "o":
		return m, m.showOpenFolder()
	case "O":
		return m, m.openInFileManager()
	case "x":
		return m, m.showCloseConfirm()
	case keyTab, "]":
		return m, m.switchProject(1)
	case keyShiftTab, "[":
		return m, m.switchProject(-1)
	case "r":
		if !m.state.HasActiveProject() {
			return m, m.showInfo("Open a project first")
		}
		return m, m.runProject(m.state.ActiveProject)
	case "ctrl+x":
		return m, m.cancelActiveRun()
	case "c":
		if p := m.state.ActiveProjectRef(); p != nil {
			m.state.ClearTests(p.ID)
			delete(m.runOutput, p.ID)
			m.listOffset = 0
			m.refreshDetail()
		}
		return m, nil
	case "s":
		return m, m.showRunSettings()
	case "j", keyDown:
		m.moveSelection(1)
	case "k", keyUp:
		m.moveSelection(-1)
	case "g", "home":
		m.selectIndex(0)
	case "G", "end":
		if p := m.state.ActiveProjectRef(); p != nil {
			m.selectIndex(len(p.TestsLinear()) - 1)
		}
	case "ctrl+d", "pgdown":
		m.detail.HalfPageDown()
	case "ctrl+u", "pgup":
		m.detail.HalfPageUp()
	case keyEsc:
		if m.state.Alert != nil {
			m.state.ClearAlert()
			return m, nil
		}
		m.state.UnselectTest()
		m.refreshDetail()
	}
	return m, nil
}

// moveSelection moves the selected test by delta. With no selection, down
// selects the first test and up the last.
func (m *Model) moveSelection(delta int) {
	p := m.state.ActiveProjectRef()
	if p == nil {
		return
	}
	n := len(p.TestsLinear())
	if n == 0 {
		return
	}
	idx := m.state.SelectedIndex()
	switch {
	case idx < 0 && delta > 0:
		idx = 0
	case idx < 0:
		idx = n - 1
	default:
		idx = min(max(idx+delta, 0), n-1)
	}
	m.selectIndex(idx)
}

func (m *Model) selectIndex(idx int) {
	if idx < 0 {
		return
	}
	m.state.SelectTest(idx)
	m.ensureSelectionVisible()
	m.refreshDetail()
}

// handleMouse scrolls the test list or the detail panel with the wheel.
func (m *Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.screens.IsActive() || msg.Action != tea.MouseActionPress {
		return m, nil
	}
	layout := m.computeLayout()
	overDetail := msg.X >= layout.listWidth

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if overDetail {
			m.detail.ScrollUp(wheelStep)
		} else {
			m.scrollList(-wheelStep)
		}
	case tea.MouseButtonWheelDown:
		if overDetail {
			m.detail.ScrollDown(wheelStep)
		} else {
			m.scrollList(wheelStep)
		}
	}
	return m, nil
}
