// Package cargo runs `cargo test` for a project and parses its output.
package cargo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	log "github.com/chmouel/apollo/internal/log"
	"github.com/chmouel/apollo/internal/models"
)

const (
	outputTailLines = 40
	killWaitDelay   = 2 * time.Second
)

// LookupPath is used to find the cargo binary. Tests replace it so they do
// not depend on a Rust toolchain.
var LookupPath = exec.LookPath

// CommandRunner builds the command for a cargo invocation.
type CommandRunner func(ctx context.Context, name string, args ...string) *exec.Cmd

// Runner invokes cargo test.
type Runner struct {
	CargoPath     string
	Env           []string // Extra environment, KEY=value
	CommandRunner CommandRunner
}

// NewRunner returns a Runner using cargoPath, "cargo" when empty.
func NewRunner(cargoPath string) *Runner {
	if strings.TrimSpace(cargoPath) == "" {
		cargoPath = "cargo"
	}
	return &Runner{
		CargoPath:     cargoPath,
		CommandRunner: exec.CommandContext,
	}
}

// Run executes `cargo test args...` inside dir and returns the parsed
// groups. Failing tests are reported through the groups; an error is only
// returned when no results could be collected.
func (r *Runner) Run(ctx context.Context, dir string, args []string) ([]models.ParsedTestGroup, error) {
	cargo, err := LookupPath(r.CargoPath)
	if err != nil {
		return nil, &RunError{Kind: KindCargoMissing, Message: fmt.Sprintf("%s not found in PATH", r.CargoPath), Err: err}
	}

	fullArgs := append([]string{"test"}, args...)
	newCmd := r.CommandRunner
	if newCmd == nil {
		newCmd = exec.CommandContext
	}
	// #nosec G204 -- cargo path comes from the user's config, args from the run settings
	cmd := newCmd(ctx, cargo, fullArgs...)
	cmd.Dir = dir
	cmd.Env = append(append(os.Environ(), "CARGO_TERM_COLOR=never"), r.Env...)
	cmd.WaitDelay = killWaitDelay

	// Sharing one writer keeps cargo's stderr headers ordered with the
	// libtest results printed on stdout.
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	log.Printf("cargo: run %s %s (cwd=%s)", cargo, strings.Join(fullArgs, " "), dir)
	start := time.Now()
	runErr := cmd.Run()
	output := out.String()
	log.Printf("cargo: finished in %s (err=%v)", time.Since(start).Round(time.Millisecond), runErr)

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, &RunError{Kind: KindCanceled, Message: "test run canceled", Err: ctxErr}
	}

	groups := Parse(output)
	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return nil, &RunError{Kind: KindExec, Message: runErr.Error(), Output: tail(output), Err: runErr}
		}
		if len(groups) > 0 {
			return groups, nil
		}
		if strings.Contains(output, "could not find `Cargo.toml`") {
			return nil, &RunError{Kind: KindManifest, Message: "no Cargo.toml in " + dir, Output: tail(output), Err: runErr}
		}
		return nil, &RunError{Kind: KindBuild, Message: firstError(output, exitErr), Output: tail(output), Err: runErr}
	}

	if len(groups) == 0 {
		return nil, &RunError{Kind: KindNoTests, Message: "cargo ran no test targets", Output: tail(output)}
	}
	return groups, nil
}

// firstError picks the first "error" line from cargo's diagnostics.
func firstError(output string, exitErr *exec.ExitError) string {
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "error") {
			return line
		}
	}
	return fmt.Sprintf("cargo exited with status %d", exitErr.ExitCode())
}

func tail(output string) string {
	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")
	if len(lines) > outputTailLines {
		lines = lines[len(lines)-outputTailLines:]
	}
	return strings.Join(lines, "\n")
}
