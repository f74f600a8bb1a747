package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/chmouel/apollo/internal/models"
)

// showAlert replaces the banner. Timed alerts schedule their own expiry;
// the sequence number keeps an older timer from dismissing a newer alert.
func (m *Model) showAlert(a models.Alert) tea.Cmd {
	m.alertSeq++
	m.state.SetAlert(a)
	if a.UserMustClose() {
		return nil
	}
	seq := m.alertSeq
	return tea.Tick(a.Timeout, func(time.Time) tea.Msg {
		return alertExpiredMsg{seq: seq}
	})
}

func (m *Model) timedAlert(severity models.AlertSeverity, title, message string) tea.Cmd {
	return m.showAlert(models.Alert{
		Title:    title,
		Message:  message,
		Severity: severity,
		Timeout:  m.config.AlertTimeout,
	})
}

func (m *Model) showInfo(message string) tea.Cmd {
	return m.timedAlert(models.SeverityInfo, "", message)
}

func (m *Model) showWarning(message string) tea.Cmd {
	return m.timedAlert(models.SeverityWarning, "", message)
}

func (m *Model) showError(title, message string) tea.Cmd {
	return m.timedAlert(models.SeverityError, title, message)
}

func alertSaveFailed(err error) models.Alert {
	return models.Alert{
		Title:    "Could not save open projects",
		Message:  err.Error(),
		Severity: models.SeverityError,
	}
}
