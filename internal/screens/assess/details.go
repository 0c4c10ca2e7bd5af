package assess

import (
	"context"
	"errors"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/nashtech/odmat/internal/assessment"
	"github.com/nashtech/odmat/internal/router"
	"github.com/nashtech/odmat/internal/screen"
	"github.com/nashtech/odmat/internal/ui/components"
	"github.com/nashtech/odmat/internal/ui/layout"
	"github.com/nashtech/odmat/internal/ui/theme"
)

// detailFields are the form inputs in display order. key matches the
// field names used by assessment.ValidationError.
var detailFields = []struct {
	key, label, placeholder string
}{
	{"fullName", "Full Name", "Ada Lovelace"},
	{"phoneNumber", "Phone Number", "+44 20 7946 0000"},
	{"emailAddress", "Email Address", "ada@example.org"},
	{"organization", "Organization", "Analytical Engines Ltd"},
}

const detailLimit = 100

// DetailsScreen collects the participant's details and starts or resumes
// their assessment.
type DetailsScreen struct {
	deps   Deps
	inputs []components.TextInput
	focus  int
	busy   bool
	errMsg string
}

var _ screen.Screen = (*DetailsScreen)(nil)
var _ screen.KeyHintProvider = (*DetailsScreen)(nil)

func newDetails(d Deps) *DetailsScreen {
	s := &DetailsScreen{deps: d}
	for _, f := range detailFields {
		s.inputs = append(s.inputs, components.NewTextInput(f.label, f.placeholder, detailLimit))
	}
	if ud := d.Session.Data().UserDetails; ud != nil {
		values := []string{ud.FullName, ud.PhoneNumber, ud.EmailAddress, ud.Organization}
		for i, v := range values {
			s.inputs[i].SetValue(v)
		}
	}
	return s
}

func (s *DetailsScreen) Init() tea.Cmd {
	focus := s.inputs[0].Focus()
	if !s.deps.Session.HasUserDetails() {
		return focus
	}
	s.busy = true
	return tea.Batch(focus, s.resume())
}

func (s *DetailsScreen) Title() string {
	return "Your Details"
}

func (s *DetailsScreen) KeyHints() []layout.KeyHint {
	action := "Next field"
	if s.focus == len(s.inputs)-1 {
		action = "Start"
	}
	return []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Enter", Description: action},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (s *DetailsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case startedMsg:
		return s.handleStarted(msg)

	case tea.KeyPressMsg:
		if s.busy {
			return s, nil
		}
		switch msg.String() {
		case "tab", "down":
			return s, s.setFocus(s.focus + 1)
		case "shift+tab", "up":
			return s, s.setFocus(s.focus - 1)
		case "enter":
			if s.focus < len(s.inputs)-1 {
				return s, s.setFocus(s.focus + 1)
			}
			return s, s.submit()
		}
	}

	var cmd tea.Cmd
	s.inputs[s.focus], cmd = s.inputs[s.focus].Update(msg)
	return s, cmd
}

func (s *DetailsScreen) setFocus(i int) tea.Cmd {
	n := len(s.inputs)
	s.inputs[s.focus].Blur()
	s.focus = (i%n + n) % n
	return s.inputs[s.focus].Focus()
}

func (s *DetailsScreen) details() assessment.UserDetails {
	v := func(i int) string { return strings.TrimSpace(s.inputs[i].Value()) }
	return assessment.UserDetails{
		FullName:     v(0),
		PhoneNumber:  v(1),
		EmailAddress: v(2),
		Organization: v(3),
	}
}

// submit validates the form locally and starts the session in the
// background.
func (s *DetailsScreen) submit() tea.Cmd {
	for i := range s.inputs {
		s.inputs[i].Err = ""
	}
	d := s.details()

	var verr assessment.ValidationError
	if err := d.Validate(); errors.As(err, &verr) {
		first := -1
		for i, f := range detailFields {
			if m, bad := verr[f.key]; bad {
				s.inputs[i].Err = m
				if first < 0 {
					first = i
				}
			}
		}
		return s.setFocus(first)
	}

	s.busy = true
	s.errMsg = ""
	sess := s.deps.Session
	return func() tea.Msg {
		ctx := context.Background()
		resumed, err := sess.Start(ctx, d)
		if err == nil {
			err = enterWelcome(ctx, sess)
		}
		return startedMsg{snap: take(sess), resumed: resumed, err: err}
	}
}

// resume skips the form for a session restored with its details.
func (s *DetailsScreen) resume() tea.Cmd {
	sess := s.deps.Session
	return func() tea.Msg {
		err := enterWelcome(context.Background(), sess)
		return startedMsg{snap: take(sess), resumed: true, err: err}
	}
}

// enterWelcome records the welcome step unless the participant is
// already further along.
func enterWelcome(ctx context.Context, sess *assessment.Session) error {
	if sess.Data().CurrentStep >= assessment.StepWelcome {
		return nil
	}
	return sess.SetStep(ctx, assessment.StepWelcome)
}

func (s *DetailsScreen) handleStarted(msg startedMsg) (screen.Screen, tea.Cmd) {
	s.busy = false
	if msg.err != nil {
		s.deps.Logger.Error("start assessment", zap.Error(msg.err))
		s.errMsg = "Could not start the assessment: " + msg.err.Error()
		return s, nil
	}
	next := newWelcome(s.deps, msg.snap, msg.resumed)
	return s, func() tea.Msg {
		return router.PushScreenMsg{Screen: next}
	}
}

func (s *DetailsScreen) View(width, height int) string {
	var sections []string

	sections = append(sections, theme.Title.Render("Open Data Maturity Assessment"))
	sections = append(sections, "")
	sections = append(sections, lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Width(min(width-8, 60)).
		Render("Tell us about yourself to begin. Using the same email address later resumes an unfinished assessment."))
	sections = append(sections, "")

	for _, in := range s.inputs {
		sections = append(sections, in.View(), "")
	}

	switch {
	case s.busy:
		sections = append(sections, theme.Hint.Render("Looking up your assessment..."))
	case s.errMsg != "":
		sections = append(sections, theme.ErrorText.Render(s.errMsg))
	default:
		sections = append(sections, theme.Hint.Render("press Enter on the last field to start"))
	}

	card := theme.Card.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}
