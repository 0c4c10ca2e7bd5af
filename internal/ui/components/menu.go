package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/nashtech/odmat/internal/ui/theme"
)

// MenuItem represents a single item in a navigation menu.
type MenuItem struct {
	Label    string
	Detail   string
	Action   func() tea.Cmd
	Disabled bool
}

// Menu is a vertical navigation menu.
type Menu struct {
	Items    []MenuItem
	Selected int
}

// NewMenu creates a new menu with the first enabled item selected.
func NewMenu(items []MenuItem) Menu {
	m := Menu{Items: items}
	for i, item := range items {
		if !item.Disabled {
			m.Selected = i
			break
		}
	}
	return m
}

// Init returns nil (no initial command).
func (m Menu) Init() tea.Cmd {
	return nil
}

// Update handles keyboard navigation.
func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch kmsg.String() {
	case "up", "k":
		m.Selected = m.step(-1)
	case "down", "j":
		m.Selected = m.step(1)
	case "enter":
		if m.Selected >= 0 && m.Selected < len(m.Items) {
			item := m.Items[m.Selected]
			if item.Action != nil && !item.Disabled {
				return m, item.Action()
			}
		}
	}

	return m, nil
}

// step returns the next enabled index in direction dir, or the current
// one when there is none.
func (m Menu) step(dir int) int {
	for i := m.Selected + dir; i >= 0 && i < len(m.Items); i += dir {
		if !m.Items[i].Disabled {
			return i
		}
	}
	return m.Selected
}

// View renders the menu.
func (m Menu) View() string {
	var b strings.Builder
	for i, item := range m.Items {
		var line string
		switch {
		case item.Disabled:
			line = lipgloss.NewStyle().Foreground(theme.TextDim).Render("    " + item.Label)
		case i == m.Selected:
			line = theme.Selected.Render("  ▸ " + item.Label)
		default:
			line = theme.Unselected.Render("    " + item.Label)
		}
		if item.Detail != "" {
			line += "  " + theme.Hint.Render(item.Detail)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}
