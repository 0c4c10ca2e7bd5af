package components

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/nashtech/odmat/internal/ui/theme"
)

const (
	fullBlock  = "█"
	lightShade = "░"
)

// ProgressBar draws "label  ████░░░░  42%" in a fixed width. Fraction is
// in [0,1]; values outside are clamped for the bar but not the percent.
type ProgressBar struct {
	Label       string
	LabelWidth  int
	Fraction    float64
	ShowPercent bool
	Width       int
	Fill        color.Color
}

func NewProgressBar(label string, fraction float64, showPercent bool, width int) ProgressBar {
	return ProgressBar{
		Label:       label,
		Fraction:    fraction,
		ShowPercent: showPercent,
		Width:       width,
		Fill:        theme.Secondary,
	}
}

func (p ProgressBar) View() string {
	var label, pct string
	if p.Label != "" {
		st := lipgloss.NewStyle().Foreground(theme.Text)
		if p.LabelWidth > 0 {
			st = st.Width(p.LabelWidth).MaxWidth(p.LabelWidth)
		}
		label = st.Render(p.Label) + "  "
	}
	if p.ShowPercent {
		pct = lipgloss.NewStyle().Foreground(theme.TextDim).
			Render(fmt.Sprintf("  %3d%%", int(p.Fraction*100+0.5)))
	}

	cells := max(p.Width-lipgloss.Width(label)-lipgloss.Width(pct), 4)
	filled := int(float64(cells) * min(max(p.Fraction, 0), 1))

	bar := lipgloss.NewStyle().Foreground(p.Fill).Render(strings.Repeat(fullBlock, filled)) +
		lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat(lightShade, cells-filled))
	return label + bar + pct
}
