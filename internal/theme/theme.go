// Package theme provides the colour palettes used by the TUI.
package theme

import (
	"sort"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines all colors used in the application UI.
type Theme struct {
	Background lipgloss.Color
	Panel      lipgloss.Color // Tab bar, control bar and status bar background
	Accent     lipgloss.Color
	AccentFg   lipgloss.Color // Foreground color for text on Accent background
	AccentDim  lipgloss.Color
	Border     lipgloss.Color
	BorderDim  lipgloss.Color
	MutedFg    lipgloss.Color
	TextFg     lipgloss.Color
	SuccessFg  lipgloss.Color
	InfoFg     lipgloss.Color
	WarnFg     lipgloss.Color
	ErrorFg    lipgloss.Color
}

// Theme names.
const (
	ApolloName     = "apollo"
	DraculaName    = "dracula"
	NordName       = "nord"
	GruvboxName    = "gruvbox-dark"
	CleanLightName = "clean-light"
)

// Apollo is the default dark palette: charcoal panels with a blue accent.
func Apollo() *Theme {
	return &Theme{
		Background: lipgloss.Color("#1E1F22"),
		Panel:      lipgloss.Color("#2B2D30"),
		Accent:     lipgloss.Color("#2563EB"),
		AccentFg:   lipgloss.Color("#FFFFFF"),
		AccentDim:  lipgloss.Color("#1B46A6"),
		Border:     lipgloss.Color("#535353"),
		BorderDim:  lipgloss.Color("#3A3B3E"),
		MutedFg:    lipgloss.Color("#9DA0A6"),
		TextFg:     lipgloss.Color("#FFFFFF"),
		SuccessFg:  lipgloss.Color("#4ADE80"),
		InfoFg:     lipgloss.Color("#60A5FA"),
		WarnFg:     lipgloss.Color("#FACC15"),
		ErrorFg:    lipgloss.Color("#F87171"),
	}
}

// Dracula returns the Dracula palette.
func Dracula() *Theme {
	return &Theme{
		Background: lipgloss.Color("#282A36"),
		Panel:      lipgloss.Color("#21222C"),
		Accent:     lipgloss.Color("#BD93F9"),
		AccentFg:   lipgloss.Color("#282A36"),
		AccentDim:  lipgloss.Color("#44475A"),
		Border:     lipgloss.Color("#6272A4"),
		BorderDim:  lipgloss.Color("#44475A"),
		MutedFg:    lipgloss.Color("#6272A4"),
		TextFg:     lipgloss.Color("#F8F8F2"),
		SuccessFg:  lipgloss.Color("#50FA7B"),
		InfoFg:     lipgloss.Color("#8BE9FD"),
		WarnFg:     lipgloss.Color("#FFB86C"),
		ErrorFg:    lipgloss.Color("#FF5555"),
	}
}

// Nord returns the Nord palette.
func Nord() *Theme {
	return &Theme{
		Background: lipgloss.Color("#2E3440"),
		Panel:      lipgloss.Color("#3B4252"),
		Accent:     lipgloss.Color("#88C0D0"),
		AccentFg:   lipgloss.Color("#2E3440"),
		AccentDim:  lipgloss.Color("#434C5E"),
		Border:     lipgloss.Color("#4C566A"),
		BorderDim:  lipgloss.Color("#3B4252"),
		MutedFg:    lipgloss.Color("#81A1C1"),
		TextFg:     lipgloss.Color("#ECEFF4"),
		SuccessFg:  lipgloss.Color("#A3BE8C"),
		InfoFg:     lipgloss.Color("#5E81AC"),
		WarnFg:     lipgloss.Color("#EBCB8B"),
		ErrorFg:    lipgloss.Color("#BF616A"),
	}
}

// GruvboxDark returns the Gruvbox dark palette.
func GruvboxDark() *Theme {
	return &Theme{
		Background: lipgloss.Color("#282828"),
		Panel:      lipgloss.Color("#32302F"),
		Accent:     lipgloss.Color("#FABD2F"),
		AccentFg:   lipgloss.Color("#282828"),
		AccentDim:  lipgloss.Color("#3C3836"),
		Border:     lipgloss.Color("#504945"),
		BorderDim:  lipgloss.Color("#3C3836"),
		MutedFg:    lipgloss.Color("#A89984"),
		TextFg:     lipgloss.Color("#EBDBB2"),
		SuccessFg:  lipgloss.Color("#B8BB26"),
		InfoFg:     lipgloss.Color("#83A598"),
		WarnFg:     lipgloss.Color("#FE8019"),
		ErrorFg:    lipgloss.Color("#FB4934"),
	}
}

// CleanLight is tuned for light terminal backgrounds.
func CleanLight() *Theme {
	return &Theme{
		Background: lipgloss.Color("#FFFFFF"),
		Panel:      lipgloss.Color("#F6F8FA"),
		Accent:     lipgloss.Color("#0969DA"),
		AccentFg:   lipgloss.Color("#FFFFFF"),
		AccentDim:  lipgloss.Color("#DDF4FF"),
		Border:     lipgloss.Color("#D0D7DE"),
		BorderDim:  lipgloss.Color("#E8E8E8"),
		MutedFg:    lipgloss.Color("#6E7781"),
		TextFg:     lipgloss.Color("#24292F"),
		SuccessFg:  lipgloss.Color("#1A7F37"),
		InfoFg:     lipgloss.Color("#0550AE"),
		WarnFg:     lipgloss.Color("#9A6700"),
		ErrorFg:    lipgloss.Color("#CF222E"),
	}
}

var registry = map[string]func() *Theme{
	ApolloName:     Apollo,
	DraculaName:    Dracula,
	NordName:       Nord,
	GruvboxName:    GruvboxDark,
	CleanLightName: CleanLight,
}

// GetTheme returns a theme by name, or the Apollo palette if not found.
func GetTheme(name string) *Theme {
	if fn, ok := registry[name]; ok {
		return fn()
	}
	return Apollo()
}

// Exists reports whether name is a registered theme.
func Exists(name string) bool {
	_, ok := registry[name]
	return ok
}

// IsLight returns true for palettes meant for light backgrounds.
func IsLight(name string) bool {
	return name == CleanLightName
}

// AvailableThemes returns the sorted theme names.
func AvailableThemes() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
