package tui

import "github.com/charmbracelet/lipgloss"

// ANSI palette, readable on dark and light terminals.
const (
	colorTitle   lipgloss.Color = "6" // Cyan
	colorMuted   lipgloss.Color = "8" // Gray
	colorError   lipgloss.Color = "1" // Red
	colorValue   lipgloss.Color = "7" // White/default
	colorCold    lipgloss.Color = "4" // Blue
	colorWarm    lipgloss.Color = "1" // Red
	colorSection lipgloss.Color = "4" // Blue
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorTitle)
	mutedStyle = lipgloss.NewStyle().Foreground(colorMuted)
	errorStyle = lipgloss.NewStyle().Foreground(colorError)
	valueStyle = lipgloss.NewStyle().Bold(true).Foreground(colorValue)
	coldStyle  = lipgloss.NewStyle().Foreground(colorCold)
	warmStyle  = lipgloss.NewStyle().Foreground(colorWarm)

	sectionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSection).
			Padding(0, 1).
			Width(sectionWidth)
	sectionTitleStyle = lipgloss.NewStyle().Bold(true).Underline(true)
)

const sectionWidth = 36
