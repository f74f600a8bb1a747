package app

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/chmouel/apollo/internal/cargo"
	log "github.com/chmouel/apollo/internal/log"
	"github.com/chmouel/apollo/internal/models"
	"github.com/chmouel/apollo/internal/runner"
)

// runProject starts cargo test for project id. The result comes back as a
// runFinishedMsg.
func (m *Model) runProject(id uint32) tea.Cmd {
	p := m.state.Project(id)
	if p == nil {
		return nil
	}
	h, err := m.runner.Start(m.ctx, id, p.PathString(), m.state.RunArgs.Args())
	if err != nil {
		if errors.Is(err, runner.ErrAlreadyRunning) {
			return m.showWarning(fmt.Sprintf("Tests are already running for %s", p.DisplayName()))
		}
		return m.showError("Error", err.Error())
	}
	m.state.SetRunning(id, true)
	delete(m.runOutput, id)
	m.refreshDetail()
	log.Printf("run %s: %s with %v", h.RunID, p, m.state.RunArgs.Args())
	return tea.Batch(waitForRun(h), m.spinner.Tick)
}

func waitForRun(h *runner.Handle) tea.Cmd {
	return func() tea.Msg {
		return runFinishedMsg{result: h.Wait()}
	}
}

// handleRunFinished writes a result back into the state. Results of runs
// that were replaced or whose project was closed are dropped.
func (m *Model) handleRunFinished(res runner.Result) tea.Cmd {
	if !m.runner.IsCurrent(res) {
		log.Printf("discarding stale result of run %s for project %d", res.RunID, res.ProjectID)
		return nil
	}
	m.state.SetRunning(res.ProjectID, false)
	p := m.state.Project(res.ProjectID)
	if p == nil {
		return nil
	}
	defer m.refreshDetail()

	if res.Err != nil {
		kind := cargo.KindOf(res.Err)
		if kind == cargo.KindCanceled || errors.Is(res.Err, context.Canceled) {
			return m.showInfo(fmt.Sprintf("Test run canceled for %s", p.DisplayName()))
		}
		log.Warnf("run %s for %s failed: %v", res.RunID, p, res.Err)
		message := res.Err.Error()
		var runErr *cargo.RunError
		if errors.As(res.Err, &runErr) {
			message = runErr.Message
			if runErr.Output != "" {
				m.runOutput[p.ID] = runErr.Output
			}
		}
		title := "cargo"
		if kind != "" {
			title = "cargo: " + string(kind)
		}
		return m.showError(title, message)
	}

	m.state.SetTests(p.ID, res.Groups)
	p.LastRun = res.Started
	p.LastDuration = res.Duration
	if p.ID == m.state.ActiveProject {
		m.listOffset = 0
	}

	sum := p.Summary()
	if sum.Failed > 0 {
		return m.timedAlert(models.SeverityWarning, p.DisplayName(),
			fmt.Sprintf("%d of %d tests failed", sum.Failed, sum.Total()))
	}
	return m.timedAlert(models.SeveritySuccess, p.DisplayName(),
		fmt.Sprintf("%d tests passed", sum.Passed))
}

func (m *Model) cancelActiveRun() tea.Cmd {
	if err := m.runner.Cancel(m.state.ActiveProject); err != nil {
		return m.showInfo("No test run in progress")
	}
	return nil
}
