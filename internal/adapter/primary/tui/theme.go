package tui

import "github.com/charmbracelet/lipgloss"

// Theme is the palette of the terminal timer.
type Theme struct {
	Name          string
	Title         lipgloss.Color
	Accent        lipgloss.Color
	Muted         lipgloss.Color
	Error         lipgloss.Color
	GradientStart string
	GradientEnd   string
}

var (
	lightTheme = Theme{
		Name:          "light",
		Title:         lipgloss.Color("#1F2937"),
		Accent:        lipgloss.Color("#2563EB"),
		Muted:         lipgloss.Color("#6B7280"),
		Error:         lipgloss.Color("#DC2626"),
		GradientStart: "#60A5FA",
		GradientEnd:   "#1D4ED8",
	}
	darkTheme = Theme{
		Name:          "dark",
		Title:         lipgloss.Color("#F9FAFB"),
		Accent:        lipgloss.Color("#34D399"),
		Muted:         lipgloss.Color("#9CA3AF"),
		Error:         lipgloss.Color("#F87171"),
		GradientStart: "#6EE7B7",
		GradientEnd:   "#059669",
	}
)

// ThemeByName returns the dark theme for "dark" and the light theme otherwise.
func ThemeByName(name string) Theme {
	if name == darkTheme.Name {
		return darkTheme
	}
	return lightTheme
}

func (t Theme) toggled() Theme {
	if t.Name == darkTheme.Name {
		return lightTheme
	}
	return darkTheme
}
