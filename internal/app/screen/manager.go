package screen

import tea "github.com/charmbracelet/bubbletea"

// Manager keeps a stack of modal screens. Only the top one receives keys.
type Manager struct {
	current Screen
	stack   []Screen
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{}
}

// Push shows s above the current screen.
func (m *Manager) Push(s Screen) {
	if s == nil {
		return
	}
	if m.current != nil {
		m.stack = append(m.stack, m.current)
	}
	m.current = s
}

// Pop closes the current screen, restoring the one below it, and returns
// what was removed.
func (m *Manager) Pop() Screen {
	removed := m.current
	if n := len(m.stack); n > 0 {
		m.current = m.stack[n-1]
		m.stack = m.stack[:n-1]
	} else {
		m.current = nil
	}
	return removed
}

// Current returns the top screen, or nil.
func (m *Manager) Current() Screen {
	return m.current
}

// IsActive reports whether any screen is shown.
func (m *Manager) IsActive() bool {
	return m.current != nil
}

// Type returns the top screen's type, or TypeNone.
func (m *Manager) Type() Type {
	if m.current == nil {
		return TypeNone
	}
	return m.current.Type()
}

// Set replaces the top screen without touching the stack.
func (m *Manager) Set(s Screen) {
	m.current = s
}

// Clear closes every screen.
func (m *Manager) Clear() {
	m.current = nil
	m.stack = m.stack[:0]
}

// StackDepth returns the number of screens below the current one.
func (m *Manager) StackDepth() int {
	return len(m.stack)
}

// Update routes a key to the top screen, popping it when it closes. A
// callback may push another screen while the current one closes.
func (m *Manager) Update(msg tea.KeyMsg) tea.Cmd {
	cur := m.current
	if cur == nil {
		return nil
	}
	next, cmd := cur.Update(msg)
	switch {
	case m.current == cur && next == nil:
		m.Pop()
	case m.current == cur:
		m.current = next
	case next == nil:
		for i, s := range m.stack {
			if s == cur {
				m.stack = append(m.stack[:i], m.stack[i+1:]...)
				break
			}
		}
	}
	return cmd
}
