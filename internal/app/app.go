// Package app implements the apollo terminal UI.
package app

import (
	"context"
	"os/exec"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	appscreen "github.com/chmouel/apollo/internal/app/screen"
	"github.com/chmouel/apollo/internal/cargo"
	"github.com/chmouel/apollo/internal/config"
	log "github.com/chmouel/apollo/internal/log"
	"github.com/chmouel/apollo/internal/runner"
	"github.com/chmouel/apollo/internal/state"
	"github.com/chmouel/apollo/internal/theme"
	"github.com/chmouel/apollo/internal/watch"
)

// Model is the Bubble Tea model. It owns the application state; every
// mutation happens inside Update.
type Model struct {
	config    *config.AppConfig
	theme     *theme.Theme
	state     *state.State
	statePath string

	runner  *runner.Runner
	watcher *watch.Watcher

	ctx    context.Context
	cancel context.CancelFunc

	screens *appscreen.Manager
	detail  viewport.Model
	spinner spinner.Model

	// Rows scrolled off the top of the test list.
	listOffset int
	// Trailing cargo output of the last failed run, per project.
	runOutput map[uint32]string
	alertSeq  uint64

	windowWidth  int
	windowHeight int

	commandRunner func(ctx context.Context, name string, args ...string) *exec.Cmd
	startCommand  func(*exec.Cmd) error

	quitting bool
}

// NewModel builds the model for st, persisting it to cfg.StatePath().
func NewModel(cfg *config.AppConfig, st *state.State) *Model {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if st == nil {
		st = state.New(cfg.RunArgs)
	}
	st.Decorations = cfg.Decorations

	ctx, cancel := context.WithCancel(context.Background())
	thm := theme.GetTheme(cfg.Theme)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(thm.Accent)

	m := &Model{
		config:        cfg,
		theme:         thm,
		state:         st,
		statePath:     cfg.StatePath(),
		runner:        runner.New(cargo.NewRunner(cfg.CargoPath), runner.ParsePolicy(cfg.RunPolicy)),
		ctx:           ctx,
		cancel:        cancel,
		screens:       appscreen.NewManager(),
		detail:        viewport.New(40, 10),
		spinner:       sp,
		runOutput:     make(map[uint32]string),
		commandRunner: exec.CommandContext,
		startCommand:  startDetached,
	}
	if cfg.AutoRun {
		m.startWatcher()
	}
	return m
}

func startDetached(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

// State exposes the owned application state.
func (m *Model) State() *state.State {
	return m.state
}

// Init starts listening for source changes when auto run is enabled.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(tea.SetWindowTitle("Apollo"), m.listenWatch())
}

// Update dispatches every message to its handler.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.setWindowSize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		if m.screens.IsActive() {
			return m, m.screens.Update(msg)
		}
		return m.handleKeyMsg(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg)
	case spinner.TickMsg:
		if !m.state.AnyRunning() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case runFinishedMsg:
		return m, m.handleRunFinished(msg.result)
	case runProjectMsg:
		return m, m.runProject(msg.projectID)
	case alertExpiredMsg:
		if msg.seq == m.alertSeq {
			m.state.ClearAlert()
		}
		return m, nil
	case watchEventMsg:
		return m, m.handleWatchEvent(msg.projectID)
	case openProjectMsg:
		return m, m.openProject(msg.path)
	case closeProjectMsg:
		return m, m.closeProject(msg.projectID)
	case runArgsMsg:
		m.state.RunArgs = msg.args
		log.Printf("run args set to %v", msg.args.Args())
		return m, nil
	case errMsg:
		if msg.err == nil {
			return m, nil
		}
		return m, m.showError("Error", msg.err.Error())
	}
	return m, nil
}

// persist writes the open projects, surfacing failures as an alert the
// user has to close.
func (m *Model) persist() tea.Cmd {
	if err := state.Save(m.statePath, m.state); err != nil {
		log.Warnf("saving state: %v", err)
		return m.showAlert(alertSaveFailed(err))
	}
	return nil
}

func (m *Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.runner.CancelAll()
	if m.watcher != nil {
		_ = m.watcher.Close()
	}
	if err := state.Save(m.statePath, m.state); err != nil {
		log.Warnf("saving state on quit: %v", err)
	}
	m.cancel()
	return m, tea.Quit
}
