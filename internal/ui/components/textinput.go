package components

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/nashtech/odmat/internal/ui/theme"
)

// TextInput wraps bubbles/textinput with a label and an inline error.
type TextInput struct {
	Model textinput.Model
	Label string
	Err   string
}

// NewTextInput creates a new styled text input. The input starts blurred.
func NewTextInput(label, placeholder string, limit int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	if limit > 0 {
		ti.CharLimit = limit
	}
	return TextInput{Model: ti, Label: label}
}

// Init returns nil.
func (t TextInput) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// Focus gives the input keyboard focus.
func (t *TextInput) Focus() tea.Cmd {
	return t.Model.Focus()
}

// Blur removes keyboard focus.
func (t *TextInput) Blur() {
	t.Model.Blur()
}

// Focused reports whether the input has focus.
func (t TextInput) Focused() bool {
	return t.Model.Focused()
}

// SetValue replaces the input text.
func (t *TextInput) SetValue(v string) {
	t.Model.SetValue(v)
}

// Value returns the current input value.
func (t TextInput) Value() string {
	return t.Model.Value()
}

// View renders the label, the input and any error underneath.
func (t TextInput) View() string {
	label := theme.Body
	if t.Focused() {
		label = theme.Selected
	}
	view := label.Render(t.Label) + "\n" + t.Model.View()
	if t.Err != "" {
		view += "\n" + lipgloss.NewStyle().Foreground(theme.Error).Render("✗ "+t.Err)
	}
	return view
}
