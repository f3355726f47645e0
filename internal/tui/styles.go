package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	colorPrimary = lipgloss.Color("#7C3AED") // Purple
	colorGood    = lipgloss.Color("#10B981") // Green
	colorMuted   = lipgloss.Color("#6B7280") // Gray
	colorWarn    = lipgloss.Color("#F59E0B") // Amber
	colorBad     = lipgloss.Color("#EF4444") // Red

	// Base styles
	appStyle = lipgloss.NewStyle().
			Padding(1, 2)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Italic(true)

	// Input styles
	labelStyle = lipgloss.NewStyle().
			Foreground(colorGood).
			Bold(true)

	inputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(0, 1)

	inputFocusedStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorGood).
				Padding(0, 1)

	toggleStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	toggleFocusedStyle = lipgloss.NewStyle().
				Background(colorPrimary).
				Foreground(lipgloss.Color("#FFFFFF")).
				Bold(true).
				Padding(0, 1)

	// Help styles
	helpKeyStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	// Message styles
	errorStyle = lipgloss.NewStyle().
			Foreground(colorBad).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(colorGood).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(colorWarn).
			Bold(true)

	// Running view
	spinnerStyle = lipgloss.NewStyle().
			Foreground(colorPrimary)

	outcomeDimStyle = lipgloss.NewStyle().
			Foreground(colorMuted)
)
