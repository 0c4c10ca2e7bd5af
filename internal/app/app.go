package app

import (
	"context"
	"errors"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/nashtech/odmat/internal/router"
	"github.com/nashtech/odmat/internal/screen"
	"github.com/nashtech/odmat/internal/ui/layout"
)

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	width  int
	height int
}

// newAppModel creates a new AppModel showing initial.
func newAppModel(initial screen.Screen) AppModel {
	return AppModel{
		router: router.New(initial),
	}
}

func (m AppModel) Init() tea.Cmd {
	if active := m.router.Active(); active != nil {
		return active.Init()
	}
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

// hints returns the active screen's key hints, or navigation defaults.
func (m AppModel) hints(active screen.Screen) []layout.KeyHint {
	if p, ok := active.(screen.KeyHintProvider); ok {
		if h := p.KeyHints(); len(h) > 0 {
			return h
		}
	}
	if m.router.Depth() > 1 {
		return []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (m AppModel) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

// render lays out the header, active screen and footer for the current
// window size.
func (m AppModel) render() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	var title, status string
	if active != nil {
		title = active.Title()
		if p, ok := active.(screen.StatusProvider); ok {
			status = p.Status()
		}
	}

	header := layout.RenderHeader(title, status, m.width)
	footer := layout.RenderFooter(m.hints(active), m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	content := m.router.View(m.width, contentHeight)

	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run starts the Bubble Tea program on initial and blocks until the user
// quits or ctx is cancelled.
func Run(ctx context.Context, initial screen.Screen) error {
	p := tea.NewProgram(newAppModel(initial), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run terminal ui: %w", err)
	}
	return nil
}
