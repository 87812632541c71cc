// Package ui provides consistent styling and components for the twm CLI
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette - consistent across the application
var (
	// Primary colors, the accent matches the default cursor
	ColorPrimary   = lipgloss.Color("220") // Amber
	ColorSecondary = lipgloss.Color("39")  // Bright blue
	ColorSuccess   = lipgloss.Color("82")  // Green
	ColorError     = lipgloss.Color("196") // Red

	// Neutral colors
	ColorText   = lipgloss.Color("252") // Light gray
	ColorSubtle = lipgloss.Color("241") // Medium gray
	ColorMuted  = lipgloss.Color("238") // Dark gray

	// Status colors
	ColorRunning = ColorSuccess
	ColorStopped = ColorError
	ColorActive  = ColorPrimary
)

// Base styles - building blocks for other styles
var (
	TextStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	SubtleStyle = lipgloss.NewStyle().
			Foreground(ColorSubtle)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	SubheaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText)

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			Background(ColorMuted).
			Padding(0, 1)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorSubtle).
			Padding(0, 1)

	ListItemStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary)
)

// Indicators and control help
var (
	RunningIndicator = lipgloss.NewStyle().
				Foreground(ColorRunning).
				Render("●")

	StoppedIndicator = lipgloss.NewStyle().
				Foreground(ColorStopped).
				Render("○")

	ControlKeyStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	ControlDescStyle = lipgloss.NewStyle().
				Foreground(ColorText)
)

// Table styles
var (
	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorPrimary)

	TableRowStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	TableActiveRowStyle = lipgloss.NewStyle().
				Foreground(ColorActive).
				Bold(true)

	TableCellStyle = lipgloss.NewStyle().
			PaddingRight(2)
)

// Icons used across commands
var (
	IconSuccess = "✓"
	IconError   = "✗"
	IconFocus   = "»"
)

// SpinnerDot is the watch spinner.
var SpinnerDot = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

// FormatControl renders a key hint
func FormatControl(key, desc string) string {
	return ControlKeyStyle.Render(key) + " - " + ControlDescStyle.Render(desc)
}

// FormatStatus prefixes status with a running or stopped indicator
func FormatStatus(running bool, status string) string {
	indicator := StoppedIndicator
	if running {
		indicator = RunningIndicator
	}
	return indicator + " " + status
}

// FormatListItem renders a bullet item, highlighted when active
func FormatListItem(item string, active bool) string {
	style := ListItemStyle
	if active {
		style = style.Foreground(ColorActive)
	}
	return "  • " + style.Render(item)
}

// FormatResult renders a success or failure line
func FormatResult(ok bool, message string) string {
	if ok {
		return SuccessStyle.Render(IconSuccess) + " " + message
	}
	return ErrorStyle.Render(IconError) + " " + message
}

// CreateSeparator creates a horizontal line separator
func CreateSeparator(width int, char string) string {
	if width <= 0 {
		width = 50
	}
	if char == "" {
		char = "─"
	}
	return lipgloss.NewStyle().
		Foreground(ColorSubtle).
		Render(strings.Repeat(char, width))
}
