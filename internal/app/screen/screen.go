// Package screen provides the modal overlays drawn above the main panes.
package screen

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Screen is a modal overlay that handles keys and renders itself.
type Screen interface {
	// Update processes a key message. Returning a nil Screen closes it.
	Update(msg tea.KeyMsg) (Screen, tea.Cmd)

	View() string

	Type() Type
}

// Type identifies the kind of screen being displayed.
type Type int

// Screen types.
const (
	TypeNone Type = iota
	TypeConfirm
	TypeInfo
	TypeInput
	TypeChecklist
	TypeHelp
)

// String returns a human-readable name for the screen type.
func (t Type) String() string {
	switch t {
	case TypeNone:
		return "none"
	case TypeConfirm:
		return "confirm"
	case TypeInfo:
		return "info"
	case TypeInput:
		return "input"
	case TypeChecklist:
		return "checklist"
	case TypeHelp:
		return "help"
	default:
		return "unknown"
	}
}

const (
	keyEnter    = "enter"
	keyEsc      = "esc"
	keyTab      = "tab"
	keyShiftTab = "shift+tab"
	keyQ        = "q"
	keyCtrlC    = "ctrl+c"

	modalWidth = 60
)
