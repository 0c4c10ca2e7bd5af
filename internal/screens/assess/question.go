package assess

import (
	"context"
	"errors"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/nashtech/odmat/internal/assessment"
	"github.com/nashtech/odmat/internal/router"
	"github.com/nashtech/odmat/internal/screen"
	"github.com/nashtech/odmat/internal/ui/components"
	"github.com/nashtech/odmat/internal/ui/layout"
	"github.com/nashtech/odmat/internal/ui/markdown"
	"github.com/nashtech/odmat/internal/ui/theme"
)

const noAnswerMsg = "Please select an answer before continuing."

// QuestionScreen shows one question at a time and walks the session
// forwards and backwards.
type QuestionScreen struct {
	deps      Deps
	snap      snapshot
	choice    components.MultiChoice
	showTip   bool
	busy      bool
	finishing bool
	errMsg    string
}

var _ screen.Screen = (*QuestionScreen)(nil)
var _ screen.KeyHintProvider = (*QuestionScreen)(nil)
var _ screen.StatusProvider = (*QuestionScreen)(nil)

func newQuestion(d Deps, snap snapshot) *QuestionScreen {
	s := &QuestionScreen{deps: d}
	s.load(snap)
	return s
}

// load shows the question in snap with its saved answer preselected.
func (s *QuestionScreen) load(snap snapshot) {
	s.snap = snap
	s.choice = components.NewMultiChoice(snap.Question.Options, snap.Saved())
	s.showTip = false
}

func (s *QuestionScreen) Init() tea.Cmd {
	return nil
}

func (s *QuestionScreen) Title() string {
	return fmt.Sprintf("Question %d of %d", s.snap.Number(), s.snap.Total)
}

func (s *QuestionScreen) Status() string {
	return s.snap.status()
}

func (s *QuestionScreen) KeyHints() []layout.KeyHint {
	next := "Next"
	if s.snap.IsLast() {
		next = "Finish"
	}
	return []layout.KeyHint{
		{Key: "1-5", Description: "Choose"},
		{Key: "Enter", Description: "Choose + " + next},
		{Key: "→", Description: next},
		{Key: "←", Description: "Previous"},
		{Key: "t", Description: "Tip"},
	}
}

func (s *QuestionScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case movedMsg:
		return s.handleMoved(msg)

	case tea.KeyPressMsg:
		if s.busy {
			return s, nil
		}
		switch msg.String() {
		case "t":
			s.showTip = !s.showTip
			return s, nil
		case "right", "l":
			return s, s.next()
		case "left", "h":
			return s, s.prev()
		case "enter":
			s.choice, _ = s.choice.Update(msg)
			return s, s.next()
		}
		s.errMsg = ""
		var cmd tea.Cmd
		s.choice, cmd = s.choice.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *QuestionScreen) next() tea.Cmd {
	option := s.choice.Value()
	if option == "" {
		s.errMsg = noAnswerMsg
		return nil
	}
	s.busy = true
	s.finishing = s.snap.IsLast()
	s.errMsg = ""
	sess := s.deps.Session
	return func() tea.Msg {
		done, err := sess.Next(context.Background(), option)
		return movedMsg{snap: take(sess), done: done, err: err}
	}
}

func (s *QuestionScreen) prev() tea.Cmd {
	option := s.choice.Value()
	s.busy = true
	s.errMsg = ""
	sess := s.deps.Session
	return func() tea.Msg {
		err := sess.Previous(context.Background(), option)
		return movedMsg{snap: take(sess), err: err}
	}
}

func (s *QuestionScreen) handleMoved(msg movedMsg) (screen.Screen, tea.Cmd) {
	s.busy = false
	s.finishing = false
	switch {
	case errors.Is(msg.err, assessment.ErrNoAnswer):
		s.errMsg = noAnswerMsg
		return s, nil
	case msg.err != nil:
		s.deps.Logger.Error("move question", zap.Error(msg.err))
		s.errMsg = "Could not save your answer: " + msg.err.Error()
		return s, nil
	case msg.done:
		results := newResults(s.deps, msg.snap)
		return s, func() tea.Msg {
			return router.ResetScreenMsg{Screen: results}
		}
	case !msg.snap.OnQuestion:
		pop := router.PopScreenMsg{Notify: snapshotMsg{snap: msg.snap}}
		return s, func() tea.Msg { return pop }
	}
	s.load(msg.snap)
	return s, nil
}

func (s *QuestionScreen) View(width, height int) string {
	cw := min(width-8, 90)
	q := s.snap.Question
	var sections []string

	if s.snap.Bank != nil {
		if t, ok := s.snap.Bank.Theme(q.Theme); ok {
			sections = append(sections, lipgloss.NewStyle().
				Foreground(theme.Secondary).
				Bold(true).
				Render(fmt.Sprintf("%s %s", t.Icon, t.Title)))
		}
	}

	pct := assessment.ProgressPercent(s.snap.Answered, s.snap.Total)
	bar := components.NewProgressBar(assessment.ProgressText(s.snap.Answered, s.snap.Total), float64(pct)/100, true, cw)
	sections = append(sections, bar.View(), "")

	sections = append(sections, lipgloss.NewStyle().
		Foreground(theme.Text).
		Bold(true).
		Width(cw).
		Render(fmt.Sprintf("%d. %s", s.snap.Number(), q.Question)), "")

	s.choice.Width = cw
	sections = append(sections, s.choice.View())

	if q.Tip != "" {
		if s.showTip {
			tip := markdown.Render("**Tip:** "+q.Tip, cw-4, markdown.StyleDark)
			sections = append(sections, theme.Card.Width(cw).Render(tip))
		} else {
			sections = append(sections, theme.Hint.Render("press t for a tip"))
		}
	}

	switch {
	case s.finishing:
		sections = append(sections, "", theme.Hint.Render("Calculating your results and generating recommendations..."))
	case s.busy:
		sections = append(sections, "", theme.Hint.Render("Saving..."))
	case s.errMsg != "":
		sections = append(sections, "", theme.ErrorText.Render(s.errMsg))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
