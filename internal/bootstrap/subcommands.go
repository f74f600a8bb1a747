package bootstrap

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/chmouel/apollo/internal/config"
	"github.com/chmouel/apollo/internal/log"
	"github.com/chmouel/apollo/internal/theme"
	urfavecli "github.com/urfave/cli/v3"
)

// loadCLIConfig loads the configuration file and applies the global flags
// on top of it. --config overrides have the highest precedence.
func loadCLIConfig(cmd *urfavecli.Command) (*config.AppConfig, error) {
	cfg, err := config.LoadConfig(cmd.String("config-file"))
	if err != nil {
		fmt.Fprintf(errWriter(cmd), "Error loading config: %v\n", err)
		cfg = config.DefaultConfig()
	}

	if err := applyThemeConfig(cfg, cmd.String("theme")); err != nil {
		return nil, err
	}
	if stateFile := cmd.String("state-file"); stateFile != "" {
		cfg.StateFile = stateFile
	}
	if debugLog := cmd.String("debug-log"); debugLog != "" {
		cfg.DebugLog = debugLog
	}
	if overrides := cmd.StringSlice("config"); len(overrides) > 0 {
		if err := cfg.ApplyCLIOverrides(overrides); err != nil {
			return nil, fmt.Errorf("error applying config overrides: %w", err)
		}
	}
	return cfg, nil
}

// setupDebugLog points the debug logger at the configured file, or
// discards the buffered messages when none is set.
func setupDebugLog(cmd *urfavecli.Command, path string) {
	if path == "" {
		_ = log.SetFile("")
		return
	}
	expanded, err := config.ExpandPath(path)
	if err != nil {
		expanded = path
	}
	if err := log.SetFile(expanded); err != nil {
		fmt.Fprintf(errWriter(cmd), "Error opening debug log file %q: %v\n", expanded, err)
	}
}

func applyThemeConfig(cfg *config.AppConfig, themeName string) error {
	if themeName == "" {
		return nil
	}
	if !theme.Exists(themeName) {
		return fmt.Errorf("unknown theme %q", themeName)
	}
	cfg.Theme = themeName
	return nil
}

func printThemes(w io.Writer) {
	names := theme.AvailableThemes()
	sort.Strings(names)
	fmt.Fprintln(w, "Available themes:")
	for _, name := range names {
		kind := "dark"
		if theme.IsLight(name) {
			kind = "light"
		}
		fmt.Fprintf(w, "  %-14s %s\n", name, kind)
	}
}

func outWriter(cmd *urfavecli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func errWriter(cmd *urfavecli.Command) io.Writer {
	if w := cmd.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}
