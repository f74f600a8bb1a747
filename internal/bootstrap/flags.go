// Package bootstrap wires the apollo command line: flags, subcommands and
// the launch of the terminal UI.
package bootstrap

import (
	urfavecli "github.com/urfave/cli/v3"
)

// globalFlags returns the flags shared by the UI and every subcommand.
// --version is provided by urfave/cli from Command.Version.
func globalFlags() []urfavecli.Flag {
	return []urfavecli.Flag{
		&urfavecli.StringFlag{
			Name:  "config-file",
			Usage: "Path to configuration file",
		},
		&urfavecli.StringSliceFlag{
			Name:    "config",
			Aliases: []string{"C"},
			Usage:   "Override config values (repeatable): --config=apollo.key=value",
		},
		&urfavecli.StringFlag{
			Name:  "debug-log",
			Usage: "Path to debug log file",
		},
		&urfavecli.StringFlag{
			Name:    "theme",
			Aliases: []string{"t"},
			Usage:   "Override the UI theme",
		},
		&urfavecli.StringFlag{
			Name:  "state-file",
			Usage: "Path of the open projects file",
		},
		&urfavecli.BoolFlag{
			Name:  "list-themes",
			Usage: "List available themes and exit",
		},
	}
}
