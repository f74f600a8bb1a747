package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/chmouel/apollo/internal/cargo"
	"github.com/chmouel/apollo/internal/config"
	"github.com/chmouel/apollo/internal/log"
	"github.com/chmouel/apollo/internal/models"
	"github.com/chmouel/apollo/internal/runner"
	"github.com/chmouel/apollo/internal/state"
	"github.com/chmouel/apollo/internal/theme"
	urfavecli "github.com/urfave/cli/v3"
	"golang.org/x/term"
)

var newExecutor = func(cfg *config.AppConfig) runner.Executor {
	return cargo.NewRunner(cfg.CargoPath)
}

func runCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:      "run",
		Usage:     "Run the tests of one or more projects without the UI",
		ArgsUsage: "[project-path...]",
		Description: "Without paths, the open projects are run, or the current " +
			"folder when no project is open.",
		Action: handleRunAction,
		Flags: []urfavecli.Flag{
			&urfavecli.IntFlag{
				Name:    "concurrency",
				Aliases: []string{"j"},
				Usage:   "Projects tested in parallel (defaults to the concurrency setting)",
			},
			&urfavecli.BoolFlag{
				Name:  "lib",
				Usage: "Only run the library unit tests",
			},
			&urfavecli.BoolFlag{
				Name:  "bins",
				Usage: "Only run the binary targets",
			},
			&urfavecli.BoolFlag{
				Name:  "doc",
				Usage: "Only run the documentation tests",
			},
			&urfavecli.BoolFlag{
				Name:  "no-workspace",
				Usage: "Do not pass --workspace to cargo",
			},
			&urfavecli.BoolFlag{
				Name:  "fail-fast",
				Usage: "Stop at the first failing test binary",
			},
		},
	}
}

// runTarget pairs a folder with its manifest check.
type runTarget struct {
	path string
	err  error
}

func handleRunAction(ctx context.Context, cmd *urfavecli.Command) error {
	cfg, err := loadCLIConfig(cmd)
	if err != nil {
		return err
	}
	setupDebugLog(cmd, cfg.DebugLog)
	defer func() { _ = log.Close() }()

	args := runArgsFromFlags(cfg.RunArgs, cmd)
	concurrency := cfg.Concurrency
	if cmd.IsSet("concurrency") {
		concurrency = int(cmd.Int("concurrency"))
	}

	paths, err := runPaths(cmd, cfg)
	if err != nil {
		return err
	}
	targets := resolveTargets(paths)

	var runnable []runner.Target
	for i, t := range targets {
		if t.err != nil {
			continue
		}
		runnable = append(runnable, runner.Target{
			ProjectID: uint32(i + 1), // #nosec G115 -- bounded by the argument count
			Dir:       t.path,
			Args:      args.Args(),
		})
	}

	r := runner.New(newExecutor(cfg), runner.PolicyReject)
	results, runErr := r.RunAll(ctx, runnable, concurrency)
	byID := make(map[uint32]runner.Result, len(results))
	for _, res := range results {
		byID[res.ProjectID] = res
	}

	w := outWriter(cmd)
	p := newPrinter(w, cfg.Theme)
	failed := false
	for i, t := range targets {
		res, ok := byID[uint32(i+1)] // #nosec G115 -- bounded by the argument count
		if t.err == nil && !ok {
			continue
		}
		if !p.result(t, res) {
			failed = true
		}
	}
	if runErr != nil {
		return fmt.Errorf("run interrupted: %w", runErr)
	}
	if failed {
		return ErrTestsFailed
	}
	return nil
}

func runArgsFromFlags(base models.RunArgs, cmd *urfavecli.Command) models.RunArgs {
	args := base
	if cmd.Bool("lib") {
		args.Lib = true
	}
	if cmd.Bool("bins") {
		args.Bin = true
	}
	if cmd.Bool("doc") {
		args.Docs = true
	}
	if cmd.Bool("no-workspace") {
		args.Workspace = false
	}
	if cmd.Bool("fail-fast") {
		args.NoFailFast = false
	}
	return args
}

// runPaths returns the folders to test: the arguments, else the open
// projects, else the current folder.
func runPaths(cmd *urfavecli.Command, cfg *config.AppConfig) ([]string, error) {
	if cmd.Args().Present() {
		return cmd.Args().Slice(), nil
	}
	st := state.Load(cfg.StatePath(), cfg.RunArgs)
	if len(st.Projects) > 0 {
		paths := make([]string, 0, len(st.Projects))
		for _, p := range st.Projects {
			paths = append(paths, p.PathString())
		}
		return paths, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting current folder: %w", err)
	}
	return []string{cwd}, nil
}

func resolveTargets(paths []string) []runTarget {
	targets := make([]runTarget, 0, len(paths))
	for _, path := range paths {
		abs, err := absFolder(path)
		if err == nil {
			_, err = cargo.ReadManifest(abs)
		}
		if abs == "" {
			abs = path
		}
		targets = append(targets, runTarget{path: abs, err: err})
	}
	return targets
}

func absFolder(path string) (string, error) {
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return abs, err
	}
	if !info.IsDir() {
		return abs, fmt.Errorf("%s is not a folder", abs)
	}
	return abs, nil
}

// printer writes the run summary, coloured only on a terminal.
type printer struct {
	w     io.Writer
	color bool
	thm   *theme.Theme
}

func newPrinter(w io.Writer, themeName string) *printer {
	color := false
	if f, ok := w.(*os.File); ok {
		color = term.IsTerminal(int(f.Fd())) // #nosec G115 -- file descriptors fit in int
	}
	return &printer{w: w, color: color, thm: theme.GetTheme(themeName)}
}

func (p *printer) paint(c lipgloss.Color, s string) string {
	if !p.color {
		return s
	}
	return lipgloss.NewStyle().Foreground(c).Render(s)
}

// result prints one project and reports whether it passed.
func (p *printer) result(t runTarget, res runner.Result) bool {
	name := filepath.Base(t.path)
	err := t.err
	if err == nil {
		err = res.Err
	}
	if err != nil {
		if errors.Is(err, cargo.ErrNoManifest) {
			err = fmt.Errorf("no %s in %s", cargo.ManifestFile, t.path)
		}
		fmt.Fprintf(p.w, "%s %s  %s\n", p.paint(p.thm.ErrorFg, "✘"), name, err)
		return false
	}

	sum := models.Summarize(res.Groups)
	glyph := p.paint(p.thm.SuccessFg, "✔")
	if sum.Failed > 0 {
		glyph = p.paint(p.thm.ErrorFg, "✘")
	}
	fmt.Fprintf(p.w, "%s %s  %d passed, %d failed, %d ignored (%s)\n",
		glyph, name, sum.Passed, sum.Failed, sum.Ignored, res.Duration.Round(10*time.Millisecond))
	for _, g := range res.Groups {
		for _, test := range g.Tests {
			if test.Status == models.StatusFailed {
				fmt.Fprintf(p.w, "    %s %s\n", p.paint(p.thm.ErrorFg, "FAILED"), test.Name)
			}
		}
	}
	return sum.Failed == 0
}
