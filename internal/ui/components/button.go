package components

import (
	tea "charm.land/bubbletea/v2"

	"github.com/nashtech/odmat/internal/ui/theme"
)

// Button is a focusable action. Enter presses it while it has focus.
type Button struct {
	Label    string
	Focused  bool
	Disabled bool
	OnPress  func() tea.Cmd
}

// NewButton creates a new unfocused button.
func NewButton(label string, onPress func() tea.Cmd) Button {
	return Button{Label: label, OnPress: onPress}
}

// Update handles key events.
func (b Button) Update(msg tea.Msg) (Button, tea.Cmd) {
	if !b.Focused || b.Disabled {
		return b, nil
	}

	if kmsg, ok := msg.(tea.KeyMsg); ok {
		if kmsg.String() == "enter" && b.OnPress != nil {
			return b, b.OnPress()
		}
	}

	return b, nil
}

// View renders the button.
func (b Button) View() string {
	switch {
	case b.Disabled:
		return theme.ButtonInactive.Foreground(theme.TextDim).Render(b.Label)
	case b.Focused:
		return theme.ButtonActive.Render("▸ " + b.Label)
	}
	return theme.ButtonInactive.Render(b.Label)
}
