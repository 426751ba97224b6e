package tui

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual style for the chat interface.
type Theme struct {
	Title         lipgloss.Style
	Subtitle      lipgloss.Style
	UserLabel     lipgloss.Style
	BotLabel      lipgloss.Style
	Confirmation  lipgloss.Style
	Clarification lipgloss.Style
	QueryResult   lipgloss.Style
	Summary       lipgloss.Style
	Message       lipgloss.Style
	Timestamp     lipgloss.Style
	Help          lipgloss.Style
	InputBox      lipgloss.Style
	Spinner       lipgloss.Style
	Primary       lipgloss.Color
}

// Default is the default theme.
var Default = Theme{
	Primary: lipgloss.Color("#7c3aed"),

	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#fafafa")),
	Subtitle: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#a3a3a3")),
	UserLabel: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#7c3aed")),
	BotLabel: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#10b981")),
	Confirmation: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10b981")),
	Clarification: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#f59e0b")),
	QueryResult: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#3b82f6")),
	Summary: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#a78bfa")),
	Message: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#fafafa")),
	Timestamp: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#737373")),
	Help: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#737373")),
	InputBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#404040")).
		Padding(0, 1),
	Spinner: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#7c3aed")),
}

// CatppuccinMocha is the Catppuccin Mocha theme.
var CatppuccinMocha = Theme{
	Primary: lipgloss.Color("#cba6f7"),

	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#cdd6f4")),
	Subtitle: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#a6adc8")),
	UserLabel: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#cba6f7")),
	BotLabel: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#a6e3a1")),
	Confirmation: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#a6e3a1")),
	Clarification: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#f9e2af")),
	QueryResult: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#89dceb")),
	Summary: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#f5c2e7")),
	Message: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#cdd6f4")),
	Timestamp: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6c7086")),
	Help: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6c7086")),
	InputBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#45475a")).
		Padding(0, 1),
	Spinner: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#cba6f7")),
}

// GetTheme returns a theme by name.
func GetTheme(name string) Theme {
	switch name {
	case "catppuccin-mocha":
		return CatppuccinMocha
	default:
		return Default
	}
}
