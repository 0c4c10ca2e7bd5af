package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Color palette, matched to the report colours.
var (
	Primary   = lipgloss.Color("#3B82F6") // Blue
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F59E0B") // Amber
	Success   = lipgloss.Color("#22C55E") // Green
	Error     = lipgloss.Color("#F43F5E") // Rose
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	BgDark    = lipgloss.Color("#0F172A") // Deep Navy
	BgCard    = lipgloss.Color("#1E293B") // Dark Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		Align(lipgloss.Center)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim).
			Align(lipgloss.Center)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	ErrorText = lipgloss.NewStyle().
			Foreground(Error)
)

// Layout
var (
	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 2)
)

// States
var (
	Selected = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	Unselected = lipgloss.NewStyle().
			Foreground(Text)

	Chosen = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)
)

// Components
var (
	ButtonActive = lipgloss.NewStyle().
			Background(Primary).
			Foreground(Text).
			Bold(true).
			Padding(0, 2)

	ButtonInactive = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(0, 2)
)

// ScoreColor maps a 1-5 maturity score from red to green using the same
// thresholds as the maturity bands.
func ScoreColor(score float64) color.Color {
	switch {
	case score >= 4.5:
		return Success
	case score >= 3.5:
		return Secondary
	case score >= 2.5:
		return Primary
	case score >= 1.5:
		return Accent
	}
	return Error
}

// ScoreStyle renders text in the colour of a maturity score.
func ScoreStyle(score float64) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ScoreColor(score)).Bold(true)
}
