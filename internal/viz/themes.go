package viz

import "github.com/charmbracelet/lipgloss"

// Theme colours the parts of the live view that are not body tags.
type Theme struct {
	Name    string
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Muted   lipgloss.Color
	Trail   string
	Graph   lipgloss.Color
}

var (
	ThemeDeepSpace = Theme{
		Name:    "deepspace",
		Primary: lipgloss.Color("#00ffff"),
		Accent:  lipgloss.Color("#ff88ff"),
		Muted:   lipgloss.Color("#555566"),
		Trail:   "#3a3a5a",
		Graph:   lipgloss.Color("#00ff88"),
	}

	ThemeRetro = Theme{
		Name:    "retro",
		Primary: lipgloss.Color("#00ff00"),
		Accent:  lipgloss.Color("#88ff88"),
		Muted:   lipgloss.Color("#005500"),
		Trail:   "#006600",
		Graph:   lipgloss.Color("#00cc00"),
	}

	ThemeSunset = Theme{
		Name:    "sunset",
		Primary: lipgloss.Color("#ff6b6b"),
		Accent:  lipgloss.Color("#feca57"),
		Muted:   lipgloss.Color("#8b6b8c"),
		Trail:   "#5a3b4e",
		Graph:   lipgloss.Color("#ff9ff3"),
	}

	Themes = []Theme{ThemeDeepSpace, ThemeRetro, ThemeSunset}
)

// GetTheme returns a theme by name, or the first theme.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// nextTheme returns the theme after t, wrapping around.
func nextTheme(t Theme) Theme {
	for i, th := range Themes {
		if th.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}
