package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/nashtech/odmat/internal/ui/theme"
)

// MultiChoice is a single-select list of options. The cursor starts on a
// previously chosen option when one is given.
type MultiChoice struct {
	Options []string
	Cursor  int
	Chosen  int
	Width   int
}

// NewMultiChoice creates a selector over options. chosen is the index of
// an earlier selection, or -1 for none.
func NewMultiChoice(options []string, chosen int) MultiChoice {
	if chosen < -1 || chosen >= len(options) {
		chosen = -1
	}
	return MultiChoice{
		Options: options,
		Cursor:  max(chosen, 0),
		Chosen:  chosen,
	}
}

// Init returns nil.
func (m MultiChoice) Init() tea.Cmd {
	return nil
}

// Update handles keyboard navigation and selection. Digits pick an
// option directly.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key := kmsg.String(); key {
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Options)-1 {
			m.Cursor++
		}
	case "enter", "space":
		if len(m.Options) > 0 {
			m.Chosen = m.Cursor
		}
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			if i := int(key[0] - '1'); i < len(m.Options) {
				m.Cursor = i
				m.Chosen = i
			}
		}
	}

	return m, nil
}

// Value returns the chosen option text, or "" when nothing is chosen.
func (m MultiChoice) Value() string {
	if m.Chosen < 0 || m.Chosen >= len(m.Options) {
		return ""
	}
	return m.Options[m.Chosen]
}

// View renders the option list.
func (m MultiChoice) View() string {
	var b strings.Builder
	for i, opt := range m.Options {
		prefix := "  "
		if i == m.Cursor {
			prefix = "▸ "
		}
		mark := "○"
		if i == m.Chosen {
			mark = "●"
		}
		line := fmt.Sprintf("%s%s  %s", prefix, mark, opt)

		style := theme.Unselected
		switch {
		case i == m.Chosen:
			style = theme.Chosen
		case i == m.Cursor:
			style = theme.Selected
		}
		if m.Width > 0 {
			style = style.Width(m.Width)
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

// Hint renders the option count as a one-line legend.
func (m MultiChoice) Hint() string {
	if len(m.Options) == 0 {
		return ""
	}
	return lipgloss.NewStyle().Foreground(theme.TextDim).
		Render(fmt.Sprintf("press 1-%d or ↑↓ then Enter", len(m.Options)))
}
