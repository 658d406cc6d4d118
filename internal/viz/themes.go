package viz

import "github.com/charmbracelet/lipgloss"

// Theme is the color scheme of the live view.
type Theme struct {
	Name     string
	Positive lipgloss.Color
	Negative lipgloss.Color
	Lines    lipgloss.Color
	Body     lipgloss.Color
	Cursor   lipgloss.Color
	Accent   lipgloss.Color
	Text     lipgloss.Color
	Muted    lipgloss.Color
	Warning  lipgloss.Color
}

var (
	ThemeClassic = Theme{
		Name:     "classic",
		Positive: lipgloss.Color("#ff5555"),
		Negative: lipgloss.Color("#5599ff"),
		Lines:    lipgloss.Color("#777777"),
		Body:     lipgloss.Color("#ffffff"),
		Cursor:   lipgloss.Color("#ffff00"),
		Accent:   lipgloss.Color("86"),
		Text:     lipgloss.Color("252"),
		Muted:    lipgloss.Color("240"),
		Warning:  lipgloss.Color("#ffaa00"),
	}

	ThemeRetroGreen = Theme{
		Name:     "retro",
		Positive: lipgloss.Color("#88ff88"),
		Negative: lipgloss.Color("#ffff00"),
		Lines:    lipgloss.Color("#00aa00"),
		Body:     lipgloss.Color("#ccffcc"),
		Cursor:   lipgloss.Color("#ffffff"),
		Accent:   lipgloss.Color("#00ff00"),
		Text:     lipgloss.Color("#00ff00"),
		Muted:    lipgloss.Color("#005500"),
		Warning:  lipgloss.Color("#ffff00"),
	}

	ThemeSunset = Theme{
		Name:     "sunset",
		Positive: lipgloss.Color("#ff6b6b"),
		Negative: lipgloss.Color("#48dbfb"),
		Lines:    lipgloss.Color("#8b6b8c"),
		Body:     lipgloss.Color("#feca57"),
		Cursor:   lipgloss.Color("#ff9ff3"),
		Accent:   lipgloss.Color("#feca57"),
		Text:     lipgloss.Color("#fff5f5"),
		Muted:    lipgloss.Color("#8b6b8c"),
		Warning:  lipgloss.Color("#ffc048"),
	}

	Themes = []Theme{ThemeClassic, ThemeRetroGreen, ThemeSunset}
)

// GetTheme returns a theme by name, falling back to the classic one.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeClassic
}

// NextTheme returns the theme after t in Themes, wrapping around.
func NextTheme(t Theme) Theme {
	for i, th := range Themes {
		if th.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
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
