package assess

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/nashtech/odmat/internal/router"
	"github.com/nashtech/odmat/internal/screen"
	"github.com/nashtech/odmat/internal/ui/components"
	"github.com/nashtech/odmat/internal/ui/layout"
	"github.com/nashtech/odmat/internal/ui/theme"
)

const intro = "This self-assessment uses the ODI Open Data Pathway to measure how " +
	"mature your organisation's open data practice is. Each question offers five " +
	"levels, from Initial to Optimising. Pick the one that best describes you today."

// WelcomeScreen introduces the themes and tells returning participants
// that their progress was restored.
type WelcomeScreen struct {
	deps    Deps
	snap    snapshot
	resumed bool
	menu    components.Menu
	busy    bool
	errMsg  string
}

var _ screen.Screen = (*WelcomeScreen)(nil)
var _ screen.KeyHintProvider = (*WelcomeScreen)(nil)
var _ screen.StatusProvider = (*WelcomeScreen)(nil)

func newWelcome(d Deps, snap snapshot, resumed bool) *WelcomeScreen {
	s := &WelcomeScreen{deps: d, resumed: resumed}
	s.refresh(snap)
	return s
}

func (s *WelcomeScreen) refresh(snap snapshot) {
	s.snap = snap
	label := "Begin assessment"
	if snap.Answered > 0 {
		label = "Continue assessment"
	}
	s.menu = components.NewMenu([]components.MenuItem{
		{Label: label, Detail: fmt.Sprintf("%d questions", snap.Total), Action: s.begin},
		{Label: "Edit my details", Action: func() tea.Cmd {
			return func() tea.Msg { return router.PopScreenMsg{} }
		}},
	})
}

func (s *WelcomeScreen) Init() tea.Cmd {
	return nil
}

func (s *WelcomeScreen) Title() string {
	return "Welcome"
}

func (s *WelcomeScreen) Status() string {
	return s.snap.status()
}

func (s *WelcomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case enteredMsg:
		s.busy = false
		if msg.err != nil {
			s.errMsg = msg.err.Error()
			return s, nil
		}
		s.snap = msg.snap
		next := newQuestion(s.deps, msg.snap)
		return s, func() tea.Msg {
			return router.PushScreenMsg{Screen: next}
		}

	case snapshotMsg:
		s.refresh(msg.snap)
		return s, nil

	case tea.KeyPressMsg:
		if s.busy {
			return s, nil
		}
		var cmd tea.Cmd
		s.menu, cmd = s.menu.Update(msg)
		return s, cmd
	}
	return s, nil
}

// begin moves the session onto its question pages.
func (s *WelcomeScreen) begin() tea.Cmd {
	s.busy = true
	s.errMsg = ""
	sess := s.deps.Session
	return func() tea.Msg {
		err := sess.Enter(context.Background())
		return enteredMsg{snap: take(sess), err: err}
	}
}

func (s *WelcomeScreen) View(width, height int) string {
	cw := min(width-8, 76)
	var sections []string

	name := ""
	if ud := s.snap.Data.UserDetails; ud != nil {
		name = ud.FullName
	}
	greeting := "Welcome"
	if s.resumed {
		greeting = "Welcome back"
	}
	if name != "" {
		greeting += ", " + name
	}
	sections = append(sections, theme.Title.Render(greeting))
	sections = append(sections, "")

	if s.resumed {
		notice := fmt.Sprintf("Your progress has been restored: %d of %d questions answered.", s.snap.Answered, s.snap.Total)
		sections = append(sections, lipgloss.NewStyle().Foreground(theme.Accent).Render(notice), "")
	}

	sections = append(sections, theme.Body.Width(cw).Render(intro), "")

	if s.snap.Bank != nil {
		for _, t := range s.snap.Bank.Themes() {
			n := len(s.snap.Bank.ByTheme(t.ID))
			head := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).
				Render(fmt.Sprintf("%s %s", t.Icon, t.Title))
			count := theme.Hint.Render(fmt.Sprintf(" %d questions", n))
			sections = append(sections, head+count)
			if t.Description != "" {
				sections = append(sections, lipgloss.NewStyle().
					Foreground(theme.TextDim).
					Width(cw).
					PaddingLeft(3).
					Render(t.Description))
			}
		}
		sections = append(sections, "")
	}

	sections = append(sections, strings.TrimRight(s.menu.View(), "\n"))

	switch {
	case s.busy:
		sections = append(sections, "", theme.Hint.Render("Loading..."))
	case s.errMsg != "":
		sections = append(sections, "", theme.ErrorText.Render(s.errMsg))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
