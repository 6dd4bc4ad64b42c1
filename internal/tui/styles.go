package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorWhite  = lipgloss.Color("255")
	colorDim    = lipgloss.Color("240")
)

var (
	// StyleTitle for headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
	StyleError   = lipgloss.NewStyle().Foreground(colorRed)

	stylePointer = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
)

// Board glyphs, two columns per cell so cells look square.
const (
	glyphForeground = "██"
	glyphCovered    = "▓▓"
	glyphBackground = "░░"
	glyphEmpty      = "··"
	glyphPointer    = "<>"
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
)
