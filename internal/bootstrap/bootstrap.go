package bootstrap

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/chmouel/apollo/internal/app"
	"github.com/chmouel/apollo/internal/buildinfo"
	"github.com/chmouel/apollo/internal/log"
	"github.com/chmouel/apollo/internal/state"
	urfavecli "github.com/urfave/cli/v3"
)

// ErrTestsFailed is returned by `apollo run` when a test failed or a
// project could not be tested. The summary has already been printed.
var ErrTestsFailed = errors.New("tests failed")

// NewCommand builds the root command.
func NewCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:                  "apollo",
		Usage:                 "Run and browse the tests of Cargo projects",
		Version:               buildinfo.Version(),
		EnableShellCompletion: true,
		Flags:                 globalFlags(),
		Commands: []*urfavecli.Command{
			runCommand(),
			projectsCommand(),
		},
		Action: runTUI,
	}
}

// Run executes the command line.
func Run(ctx context.Context, args []string) error {
	buildinfo.Enrich()
	urfavecli.VersionPrinter = func(cmd *urfavecli.Command) {
		fmt.Fprintln(outWriter(cmd), buildinfo.Summary())
	}
	return NewCommand().Run(ctx, args)
}

// runTUI is the default action: it launches the terminal UI.
func runTUI(_ context.Context, cmd *urfavecli.Command) error {
	if cmd.Bool("list-themes") {
		printThemes(outWriter(cmd))
		return nil
	}
	if cmd.Args().Present() {
		return fmt.Errorf("unknown command %q", cmd.Args().First())
	}

	cfg, err := loadCLIConfig(cmd)
	if err != nil {
		_ = log.Close()
		return err
	}
	setupDebugLog(cmd, cfg.DebugLog)
	defer func() {
		if err := log.Close(); err != nil {
			fmt.Fprintf(errWriter(cmd), "Error closing debug log: %v\n", err)
		}
	}()

	st := state.Load(cfg.StatePath(), cfg.RunArgs)
	model := app.NewModel(cfg, st)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running app: %w", err)
	}
	return nil
}
