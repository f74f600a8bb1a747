package app

import (
	tea "github.com/charmbracelet/bubbletea"
	log "github.com/chmouel/apollo/internal/log"
	"github.com/chmouel/apollo/internal/models"
	"github.com/chmouel/apollo/internal/watch"
)

func (m *Model) startWatcher() {
	w, err := watch.New(m.config.WatchDebounce)
	if err != nil {
		log.Warnf("auto run disabled: %v", err)
		return
	}
	m.watcher = w
	for _, p := range m.state.Projects {
		m.watchProject(p)
	}
}

func (m *Model) watchProject(p *models.Project) {
	if m.watcher == nil || p == nil {
		return
	}
	if err := m.watcher.Add(p.ID, p.PathString()); err != nil {
		log.Warnf("not watching %s: %v", p.Path, err)
	}
}

// listenWatch waits for the next changed project.
func (m *Model) listenWatch() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	events := m.watcher.Events()
	ctx := m.ctx
	return func() tea.Msg {
		select {
		case id := <-events:
			return watchEventMsg{projectID: id}
		case <-ctx.Done():
			return nil
		}
	}
}

// handleWatchEvent re-runs an idle project and keeps listening.
func (m *Model) handleWatchEvent(id uint32) tea.Cmd {
	cmds := []tea.Cmd{m.listenWatch()}
	if m.state.Project(id) != nil && !m.runner.Running(id) {
		log.Printf("auto run: sources of project %d changed", id)
		cmds = append(cmds, m.runProject(id))
	}
	return tea.Batch(cmds...)
}
