// Package layout draws the frame shared by every terminal screen.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/nashtech/odmat/internal/ui/theme"
)

// Smallest terminal the wizard renders in.
const (
	MinWidth  = 80
	MinHeight = 24
)

// Brand is shown at the left of the header.
const Brand = "NashTech · Open Data Maturity"

// KeyHint is one key binding listed in the footer.
type KeyHint struct {
	Key         string
	Description string
}

// IsTooSmall reports whether a width x height terminal is below the minimum.
func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// RenderMinSizeMessage asks the user to enlarge the terminal.
func RenderMinSizeMessage(width, height int) string {
	msg := strings.Join([]string{
		lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render("Terminal too small"),
		"",
		fmt.Sprintf("Need %d x %d, have %d x %d.", MinWidth, MinHeight, width, height),
	}, "\n")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.Text).Render(msg))
}

var bar = lipgloss.NewStyle().
	Background(theme.BgCard).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(theme.Border).
	Padding(0, 1)

// RenderHeader draws the brand, the screen title and an optional status.
// The title is centred when there is room and follows the brand otherwise.
func RenderHeader(title, status string, width int) string {
	brand := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(Brand)
	name := lipgloss.NewStyle().Foreground(theme.Text).Render(title)
	stat := lipgloss.NewStyle().Foreground(theme.Accent).Render(status)

	inner := max(width-bar.GetHorizontalFrameSize(), 0)
	used := lipgloss.Width(brand) + lipgloss.Width(name) + lipgloss.Width(stat)
	free := max(inner-used, 2)

	before := max(inner/2-lipgloss.Width(brand)-lipgloss.Width(name)/2, 1)
	if before >= free {
		before = 1
	}
	line := brand + gap(before) + name + gap(free-before) + stat
	return bar.Width(width).Render(line)
}

// RenderFooter lists the key hints left to right.
func RenderFooter(hints []KeyHint, width int) string {
	key := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	desc := lipgloss.NewStyle().Foreground(theme.TextDim)

	var b strings.Builder
	for i, h := range hints {
		if i > 0 {
			b.WriteString(gap(3))
		}
		b.WriteString(key.Render(h.Key))
		b.WriteByte(' ')
		b.WriteString(desc.Render(h.Description))
	}
	return bar.Width(width).Render(b.String())
}

// RenderFrame stacks header, content and footer, giving content whatever
// height the bars leave.
func RenderFrame(header, content, footer string, width, height int) string {
	body := height - lipgloss.Height(header) - lipgloss.Height(footer)
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.NewStyle().Width(width).Height(max(body, 0)).Render(content),
		footer,
	)
}

func gap(n int) string {
	return strings.Repeat(" ", max(n, 0))
}
