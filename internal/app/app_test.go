package app

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/chmouel/apollo/internal/cargo"
	"github.com/chmouel/apollo/internal/config"
	"github.com/chmouel/apollo/internal/models"
	"github.com/chmouel/apollo/internal/runner"
	"github.com/chmouel/apollo/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCargo stands in for cargo test. When gate is set, runs block until
// it is closed or the run is canceled.
type fakeCargo struct {
	groups []models.ParsedTestGroup
	err    error
	gate   chan struct{}
}

func (f *fakeCargo) Run(ctx context.Context, _ string, _ []string) ([]models.ParsedTestGroup, error) {
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.groups, f.err
}

func sampleGroups() []models.ParsedTestGroup {
	return []models.ParsedTestGroup{
		{Name: "unittests src/lib.rs (demo)", Kind: models.GroupUnit, Tests: []models.ParsedTest{
			{Name: "parse::tests::empty", Status: models.StatusOK, ModulePath: "parse::tests", FilePath: "src/lib.rs"},
			{Name: "parse::tests::broken", Status: models.StatusFailed, ModulePath: "parse::tests", FilePath: "src/lib.rs",
				Reason: "thread 'parse::tests::broken' panicked at src/parse.rs:10:9:\nassertion failed"},
		}},
		{Name: "tests/api.rs", Kind: models.GroupIntegration, Tests: []models.ParsedTest{
			{Name: "slow", Status: models.StatusIgnored, Reason: "needs network", FilePath: "tests/api.rs"},
		}},
	}
}

func newTestModel(t *testing.T, exec runner.Executor) *Model {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.StateFile = filepath.Join(t.TempDir(), models.StateFilename)
	cfg.AlertTimeout = time.Second
	m := NewModel(cfg, nil)
	m.runner = runner.New(exec, runner.PolicyReject)
	m.setWindowSize(120, 40)
	t.Cleanup(func() {
		m.runner.CancelAll()
		m.cancel()
	})
	return m
}

func makeCrate(t *testing.T, name string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	manifest := "[package]\nname = \"" + name + "\"\nversion = \"0.1.0\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, cargo.ManifestFile), []byte(manifest), 0o600))
	return dir
}

// collectRunFinished executes cmd and any batched commands until a run
// result shows up.
func collectRunFinished(t *testing.T, cmd tea.Cmd) runFinishedMsg {
	t.Helper()
	require.NotNil(t, cmd)
	switch msg := cmd().(type) {
	case runFinishedMsg:
		return msg
	case tea.BatchMsg:
		for _, c := range msg {
			if c == nil {
				continue
			}
			if res, ok := c().(runFinishedMsg); ok {
				return res
			}
		}
	}
	t.Fatal("command did not produce a run result")
	return runFinishedMsg{}
}

func TestOpenProjectPersists(t *testing.T) {
	m := newTestModel(t, &fakeCargo{})
	dir := makeCrate(t, "demo")

	_, _ = m.Update(openProjectMsg{path: dir})

	require.Len(t, m.state.Projects, 1)
	p := m.state.ActiveProjectRef()
	require.NotNil(t, p)
	assert.Equal(t, "demo", p.DisplayName())

	loaded := state.Load(m.statePath, models.DefaultRunArgs())
	require.Len(t, loaded.Projects, 1)
	assert.Equal(t, dir, loaded.Projects[0].Path)
	assert.Equal(t, p.ID, loaded.ActiveProject)
}

func TestOpenProjectAlreadyOpen(t *testing.T) {
	m := newTestModel(t, &fakeCargo{})
	first := makeCrate(t, "first")
	second := makeCrate(t, "second")
	m.openProject(first)
	m.openProject(second)
	require.Equal(t, uint32(2), m.state.ActiveProject)

	m.openProject(first)

	assert.Len(t, m.state.Projects, 2)
	assert.Equal(t, uint32(1), m.state.ActiveProject)
	require.NotNil(t, m.state.Alert)
	assert.Equal(t, models.SeverityInfo, m.state.Alert.Severity)
	assert.Contains(t, m.state.Alert.Message, "already open")
}

func TestValidateFolder(t *testing.T) {
	m := newTestModel(t, &fakeCargo{})
	crate := makeCrate(t, "demo")
	plain := t.TempDir()

	assert.Equal(t, "Enter a folder path", m.validateFolder(""))
	assert.NotEmpty(t, m.validateFolder(filepath.Join(plain, "missing")))
	assert.Equal(t, "No Cargo.toml in that folder", m.validateFolder(plain))
	assert.Empty(t, m.validateFolder(crate))

	m.openProject(crate)
	assert.Equal(t, "That project is already open", m.validateFolder(crate))
}

func TestRunStoresResults(t *testing.T) {
	m := newTestModel(t, &fakeCargo{groups: sampleGroups()})
	m.openProject(makeCrate(t, "demo"))
	id := m.state.ActiveProject

	cmd := m.runProject(id)
	assert.True(t, m.state.IsRunning(id))

	res := collectRunFinished(t, cmd)
	_, _ = m.Update(res)

	assert.False(t, m.state.IsRunning(id))
	p := m.state.Project(id)
	assert.Len(t, p.TestsLinear(), 3)
	assert.Nil(t, p.SelectedTest)
	assert.False(t, p.LastRun.IsZero())
	require.NotNil(t, m.state.Alert)
	assert.Equal(t, models.SeverityWarning, m.state.Alert.Severity)
	assert.Equal(t, "1 of 3 tests failed", m.state.Alert.Message)
}

func TestRunRejectedWhileRunning(t *testing.T) {
	fake := &fakeCargo{gate: make(chan struct{})}
	m := newTestModel(t, fake)
	m.openProject(makeCrate(t, "demo"))
	id := m.state.ActiveProject

	first := m.runProject(id)
	require.NotNil(t, first)
	_ = m.runProject(id)

	require.NotNil(t, m.state.Alert)
	assert.Equal(t, models.SeverityWarning, m.state.Alert.Severity)
	assert.Contains(t, m.state.Alert.Message, "already running")

	close(fake.gate)
	_, _ = m.Update(collectRunFinished(t, first))
	assert.False(t, m.state.IsRunning(id))
}

func TestRestartDropsStaleResult(t *testing.T) {
	fake := &fakeCargo{gate: make(chan struct{}), groups: sampleGroups()}
	m := newTestModel(t, fake)
	m.runner = runner.New(fake, runner.PolicyRestart)
	m.openProject(makeCrate(t, "demo"))
	id := m.state.ActiveProject

	first := m.runProject(id)
	second := m.runProject(id)

	// The replaced run finishes canceled and must not touch the state.
	_, _ = m.Update(collectRunFinished(t, first))
	assert.True(t, m.state.IsRunning(id))
	assert.Nil(t, m.state.Project(id).Tests)

	close(fake.gate)
	_, _ = m.Update(collectRunFinished(t, second))
	assert.False(t, m.state.IsRunning(id))
	assert.Len(t, m.state.Project(id).TestsLinear(), 3)
}

func TestResultAfterCloseIsDropped(t *testing.T) {
	fake := &fakeCargo{gate: make(chan struct{}), groups: sampleGroups()}
	m := newTestModel(t, fake)
	m.openProject(makeCrate(t, "demo"))
	id := m.state.ActiveProject

	cmd := m.runProject(id)
	_, _ = m.Update(closeProjectMsg{projectID: id})
	close(fake.gate)
	_, _ = m.Update(collectRunFinished(t, cmd))

	assert.Empty(t, m.state.Projects)
	assert.False(t, m.state.AnyRunning())
}

func TestRunErrorShowsAlert(t *testing.T) {
	fake := &fakeCargo{err: &cargo.RunError{
		Kind:    cargo.KindBuild,
		Message: "error[E0425]: cannot find value `x` in this scope",
		Output:  "   Compiling demo v0.1.0\nerror[E0425]: cannot find value `x` in this scope",
	}}
	m := newTestModel(t, fake)
	m.openProject(makeCrate(t, "demo"))
	id := m.state.ActiveProject

	_, _ = m.Update(collectRunFinished(t, m.runProject(id)))

	require.NotNil(t, m.state.Alert)
	assert.Equal(t, "cargo: build", m.state.Alert.Title)
	assert.Equal(t, models.SeverityError, m.state.Alert.Severity)
	assert.False(t, m.state.Alert.UserMustClose())
	assert.Nil(t, m.state.Project(id).Tests)
	assert.Contains(t, m.detailContent(80), "Compiling demo")
}

func TestCancelRun(t *testing.T) {
	fake := &fakeCargo{gate: make(chan struct{})}
	m := newTestModel(t, fake)
	m.openProject(makeCrate(t, "demo"))

	cmd := m.runProject(m.state.ActiveProject)
	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlX})
	_, _ = m.Update(collectRunFinished(t, cmd))

	assert.False(t, m.state.AnyRunning())
	require.NotNil(t, m.state.Alert)
	assert.Equal(t, models.SeverityInfo, m.state.Alert.Severity)
	assert.Contains(t, m.state.Alert.Message, "canceled")

	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlX})
	assert.Equal(t, "No test run in progress", m.state.Alert.Message)
}

func TestAlertExpiryUsesSequence(t *testing.T) {
	m := newTestModel(t, &fakeCargo{})

	require.NotNil(t, m.showInfo("first"))
	firstSeq := m.alertSeq
	require.NotNil(t, m.showInfo("second"))

	_, _ = m.Update(alertExpiredMsg{seq: firstSeq})
	require.NotNil(t, m.state.Alert)
	assert.Equal(t, "second", m.state.Alert.Message)

	_, _ = m.Update(alertExpiredMsg{seq: m.alertSeq})
	assert.Nil(t, m.state.Alert)
}

func TestSaveFailureMustBeClosed(t *testing.T) {
	m := newTestModel(t, &fakeCargo{})
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))
	m.statePath = filepath.Join(blocker, "sub", models.StateFilename)

	cmd := m.openProject(makeCrate(t, "demo"))

	assert.Nil(t, cmd)
	require.NotNil(t, m.state.Alert)
	assert.True(t, m.state.Alert.UserMustClose())
	assert.Equal(t, models.SeverityError, m.state.Alert.Severity)

	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, m.state.Alert)
}

func TestCloseAndSwitchProjects(t *testing.T) {
	m := newTestModel(t, &fakeCargo{})
	m.openProject(makeCrate(t, "one"))
	m.openProject(makeCrate(t, "two"))
	m.openProject(makeCrate(t, "three"))
	require.Equal(t, uint32(3), m.state.ActiveProject)

	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, uint32(1), m.state.ActiveProject)
	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("[")})
	assert.Equal(t, uint32(3), m.state.ActiveProject)

	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	require.True(t, m.screens.IsActive())
	cmd := m.screens.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	require.NotNil(t, cmd)
	_, _ = m.Update(cmd())

	assert.Len(t, m.state.Projects, 2)
	assert.Equal(t, uint32(1), m.state.ActiveProject)
	loaded := state.Load(m.statePath, models.DefaultRunArgs())
	assert.Len(t, loaded.Projects, 2)
}

func TestSelectionAndDetail(t *testing.T) {
	m := newTestModel(t, &fakeCargo{})
	m.openProject(makeCrate(t, "demo"))
	m.state.SetTests(m.state.ActiveProject, sampleGroups())

	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	assert.Equal(t, 0, m.state.SelectedIndex())
	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, m.state.SelectedIndex())

	detail := m.detailContent(80)
	assert.Contains(t, detail, "parse::tests::broken")
	assert.Contains(t, detail, "unittests src/lib.rs (demo)")
	assert.Contains(t, detail, "assertion failed")

	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("G")})
	assert.Equal(t, 2, m.state.SelectedIndex())
	assert.Contains(t, m.detailContent(80), "needs network")

	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, -1, m.state.SelectedIndex())
	assert.Contains(t, m.detailContent(80), "demo 0.1.0")

	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	assert.Nil(t, m.state.ActiveProjectRef().Tests)
}

func TestRunArgsSettings(t *testing.T) {
	m := newTestModel(t, &fakeCargo{})

	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	require.True(t, m.screens.IsActive())
	// Toggle --lib, then submit.
	m.screens.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")})
	cmd := m.screens.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	_, _ = m.Update(cmd())

	assert.False(t, m.screens.IsActive())
	assert.Equal(t, []string{"--lib", "--workspace", "--no-fail-fast"}, m.state.RunArgs.Args())
}

func TestCompleteDir(t *testing.T) {
	root := t.TempDir()
	for _, d := range []string{"crate-a", "crate-b", "other", ".hidden"} {
		require.NoError(t, os.Mkdir(filepath.Join(root, d), 0o755))
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, "cratefile"), nil, 0o600))
	sep := string(filepath.Separator)

	assert.Equal(t, root+sep+"crate-", completeDir(root+sep+"cr"))
	assert.Equal(t, root+sep+"other"+sep, completeDir(root+sep+"o"))
	assert.Equal(t, root+sep+".hidden"+sep, completeDir(root+sep+".h"))
	assert.Equal(t, root+sep+"zzz", completeDir(root+sep+"zzz"))
}

func TestOpenInFileManager(t *testing.T) {
	m := newTestModel(t, &fakeCargo{})
	assert.Nil(t, m.openInFileManager())

	dir := makeCrate(t, "demo")
	m.openProject(dir)

	var gotArgs []string
	m.commandRunner = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		gotArgs = append([]string{name}, args...)
		return exec.CommandContext(ctx, "true")
	}
	m.startCommand = func(*exec.Cmd) error { return nil }

	cmd := m.openInFileManager()
	require.NotNil(t, cmd)
	assert.Nil(t, cmd())
	require.Len(t, gotArgs, 2)
	assert.Equal(t, dir, gotArgs[1])
}

func TestViewRendersChrome(t *testing.T) {
	m := newTestModel(t, &fakeCargo{})
	assert.Contains(t, m.View(), "Welcome to Apollo")

	m.openProject(makeCrate(t, "demo"))
	m.state.SetTests(m.state.ActiveProject, sampleGroups())
	m.refreshDetail()

	view := m.View()
	assert.Contains(t, view, "Apollo")
	assert.Contains(t, view, "demo")
	assert.Contains(t, view, "Idle")
	assert.Contains(t, view, "3 Tests Run")
	assert.Contains(t, view, "cargo test --workspace --no-fail-fast")
	assert.Contains(t, view, "tests/api.rs")
	assert.LessOrEqual(t, len(strings.Split(view, "\n")), 40)

	m.state.Decorations = true
	assert.LessOrEqual(t, len(strings.Split(m.View(), "\n")), 40)
}

func TestViewBeforeSize(t *testing.T) {
	m := NewModel(config.DefaultConfig(), nil)
	t.Cleanup(m.cancel)
	assert.Equal(t, "Loading...", m.View())
}

func TestOverlayPopup(t *testing.T) {
	base := strings.Join([]string{
		"aaaaaaaaaa",
		"bbbbbbbbbb",
		"cccccccccc",
	}, "\n")

	out := overlayPopup(base, "XX\nYY", 1)

	assert.Equal(t, "aaaaaaaaaa\nbbbbXXbbbb\nccccYYcccc", out)
	assert.Equal(t, base, overlayPopup(base, "", 0))
}

func TestScrollListClamps(t *testing.T) {
	m := newTestModel(t, &fakeCargo{})
	m.openProject(makeCrate(t, "demo"))
	m.state.SetTests(m.state.ActiveProject, sampleGroups())

	m.scrollList(100)
	assert.Equal(t, 0, m.listOffset)

	_, _ = m.Update(tea.MouseMsg{X: 1, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelDown})
	assert.Equal(t, 0, m.listOffset)
}

func TestAboutAndAlertDetails(t *testing.T) {
	m := newTestModel(t, &fakeCargo{})

	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.screens.IsActive())

	m.showError("cargo: build", "error[E0308]: mismatched types")
	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, m.screens.IsActive())
	assert.Contains(t, m.View(), "mismatched types")
	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.screens.IsActive())

	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	require.True(t, m.screens.IsActive())
	assert.Contains(t, m.View(), "About Apollo")
}
