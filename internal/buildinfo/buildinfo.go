// Package buildinfo holds the version metadata of the apollo binary.
// cmd/apollo receives the values from the linker and forwards them here.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	builtBy = "unknown"
)

// Set stores linker-provided metadata.
func Set(v, c, d, b string) {
	version = v
	commit = c
	date = d
	builtBy = b
}

// Version returns the release version.
func Version() string { return version }

// Commit returns the VCS revision.
func Commit() string { return commit }

// Date returns the build date.
func Date() string { return date }

// BuiltBy returns the build agent.
func BuiltBy() string { return builtBy }

// Enrich fills the commit and builder from debug.ReadBuildInfo when the
// linker left them at their defaults.
func Enrich() {
	if commit != "none" && builtBy != "unknown" {
		return
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	if commit == "none" {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" {
				commit = setting.Value
			}
		}
	}
	if builtBy == "unknown" {
		builtBy = info.GoVersion
	}
}

// Summary renders the multi-line text shown by --version and the about screen.
func Summary() string {
	return fmt.Sprintf("apollo %s\ncommit: %s\nbuilt at: %s\nbuilt by: %s", version, commit, date, builtBy)
}
