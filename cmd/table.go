package cmd

import (
	"fmt"
	"io"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	"github.com/nashtech/odmat/internal/ui/theme"
)

// newTable returns a bordered table in the CLI style. Columns listed in
// numeric are right aligned.
func newTable(headers []string, numeric ...int) *table.Table {
	right := make(map[int]bool, len(numeric))
	for _, c := range numeric {
		right[c] = true
	}
	cell := lipgloss.NewStyle().Padding(0, 1)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.Border)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := cell
			if row == table.HeaderRow {
				s = s.Bold(true).Foreground(theme.Primary)
			}
			if right[col] {
				s = s.Align(lipgloss.Right)
			}
			return s
		})
}

func printTable(w io.Writer, t *table.Table) {
	fmt.Fprintln(w, t.Render())
}
