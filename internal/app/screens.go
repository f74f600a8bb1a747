package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	appscreen "github.com/chmouel/apollo/internal/app/screen"
	"github.com/chmouel/apollo/internal/buildinfo"
	"github.com/chmouel/apollo/internal/config"
	"github.com/chmouel/apollo/internal/models"
)

const (
	argLib        = "lib"
	argBins       = "bins"
	argDoc        = "doc"
	argWorkspace  = "workspace"
	argNoFailFast = "no-fail-fast"
)

func (m *Model) showOpenFolder() tea.Cmd {
	initial := ""
	if p := m.state.ActiveProjectRef(); p != nil {
		initial = filepath.Dir(p.PathString()) + string(filepath.Separator)
	} else if cwd, err := os.Getwd(); err == nil {
		initial = cwd + string(filepath.Separator)
	}

	scr := appscreen.NewInputScreen("Open Cargo project", "/path/to/crate", initial, m.theme)
	scr.Validate = m.validateFolder
	scr.Complete = completeDir
	scr.OnSubmit = func(value string) tea.Cmd {
		return func() tea.Msg { return openProjectMsg{path: value} }
	}
	m.screens.Push(scr)
	return textinput.Blink
}

func (m *Model) showCloseConfirm() tea.Cmd {
	p := m.state.ActiveProjectRef()
	if p == nil {
		return nil
	}
	message := fmt.Sprintf("Close %s?\n%s", p.DisplayName(), p.PathString())
	if m.runner.Running(p.ID) {
		message += "\n\nThe running tests will be canceled."
	}
	id := p.ID
	scr := appscreen.NewConfirmScreen(message, "Close", m.theme)
	scr.OnConfirm = func() tea.Cmd {
		return func() tea.Msg { return closeProjectMsg{projectID: id} }
	}
	m.screens.Push(scr)
	return nil
}

func (m *Model) showRunSettings() tea.Cmd {
	scr := appscreen.NewChecklistScreen("Run settings", runArgsItems(m.state.RunArgs), m.theme)
	scr.OnSubmit = func(items []appscreen.ChecklistItem) tea.Cmd {
		args := runArgsFromItems(items)
		return func() tea.Msg { return runArgsMsg{args: args} }
	}
	m.screens.Push(scr)
	return nil
}

func (m *Model) showHelp() tea.Cmd {
	m.screens.Push(appscreen.NewHelpScreen(buildinfo.Summary(), m.windowWidth, m.windowHeight, m.theme))
	return nil
}

func (m *Model) showAbout() tea.Cmd {
	message := buildinfo.Summary() + "\n\nRuns cargo test and browses the results."
	m.screens.Push(appscreen.NewInfoScreen("About Apollo", message, m.theme))
	return nil
}

// showAlertDetails opens the current alert in a modal, for messages that
// do not fit the banner.
func (m *Model) showAlertDetails() tea.Cmd {
	a := m.state.Alert
	if a == nil {
		return nil
	}
	m.screens.Push(appscreen.NewInfoScreen(a.Heading(), a.Message, m.theme))
	return nil
}

func runArgsItems(a models.RunArgs) []appscreen.ChecklistItem {
	return []appscreen.ChecklistItem{
		{ID: argLib, Label: "--lib", Description: "Only the library unit tests", Checked: a.Lib},
		{ID: argBins, Label: "--bins", Description: "Only the binary targets", Checked: a.Bin},
		{ID: argDoc, Label: "--doc", Description: "Only the documentation tests", Checked: a.Docs},
		{ID: argWorkspace, Label: "--workspace", Description: "Every member of the workspace", Checked: a.Workspace},
		{ID: argNoFailFast, Label: "--no-fail-fast", Description: "Keep going after a failing test binary", Checked: a.NoFailFast},
	}
}

func runArgsFromItems(items []appscreen.ChecklistItem) models.RunArgs {
	var a models.RunArgs
	for _, item := range items {
		switch item.ID {
		case argLib:
			a.Lib = item.Checked
		case argBins:
			a.Bin = item.Checked
		case argDoc:
			a.Docs = item.Checked
		case argWorkspace:
			a.Workspace = item.Checked
		case argNoFailFast:
			a.NoFailFast = item.Checked
		}
	}
	return a
}

// completeDir completes the last path element to a directory name, as far
// as the candidates agree.
func completeDir(value string) string {
	dir, prefix := filepath.Split(value)
	lookup := dir
	if lookup == "" {
		lookup = "."
	}
	if expanded, err := config.ExpandPath(lookup); err == nil {
		lookup = expanded
	}
	entries, err := os.ReadDir(lookup)
	if err != nil {
		return value
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() || !strings.HasPrefix(name, prefix) {
			continue
		}
		if strings.HasPrefix(name, ".") && !strings.HasPrefix(prefix, ".") {
			continue
		}
		names = append(names, name)
	}
	switch len(names) {
	case 0:
		return value
	case 1:
		return dir + names[0] + string(filepath.Separator)
	}
	common := names[0]
	for _, name := range names[1:] {
		for !strings.HasPrefix(name, common) {
			common = common[:len(common)-1]
		}
	}
	return dir + common
}
