// Package preview renders a survey the way a respondent would step
// through it.
package preview

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/nashtech/odmat/internal/screen"
	"github.com/nashtech/odmat/internal/survey"
	"github.com/nashtech/odmat/internal/ui/components"
	"github.com/nashtech/odmat/internal/ui/layout"
	"github.com/nashtech/odmat/internal/ui/theme"
)

var ratingChoices = []string{"1", "2", "3", "4", "5"}

// PreviewScreen steps through survey elements. Responses live only in
// memory.
type PreviewScreen struct {
	p       *survey.Preview
	choice  components.MultiChoice
	checked map[int]bool
	input   components.TextInput
	done    bool
	errMsg  string
}

var _ screen.Screen = (*PreviewScreen)(nil)
var _ screen.KeyHintProvider = (*PreviewScreen)(nil)
var _ screen.StatusProvider = (*PreviewScreen)(nil)

// New creates a preview of the survey titled title.
func New(title string, schema survey.Schema) *PreviewScreen {
	return &PreviewScreen{p: survey.NewPreview(title, schema)}
}

func (s *PreviewScreen) Init() tea.Cmd {
	return nil
}

func (s *PreviewScreen) Title() string {
	return "Preview: " + s.p.Title()
}

func (s *PreviewScreen) Status() string {
	if s.p.Welcome() || s.done {
		return ""
	}
	return s.p.Position()
}

func (s *PreviewScreen) KeyHints() []layout.KeyHint {
	if s.p.Welcome() || s.done {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Start"},
			{Key: "Esc", Description: "Back"},
		}
	}
	return []layout.KeyHint{
		{Key: "Tab", Description: "Next"},
		{Key: "Shift+Tab", Description: "Previous"},
		{Key: "Ctrl+R", Description: "Back to start"},
	}
}

// choices returns the option list an element is answered with, or nil
// for free-text elements.
func choices(el survey.Element) []string {
	switch el.Type {
	case survey.TypeRadioGroup, survey.TypeCheckbox, survey.TypeDropdown:
		return el.Choices
	case survey.TypeRating:
		return ratingChoices
	case survey.TypeBoolean:
		return []string{"Yes", "No"}
	}
	return nil
}

func textual(t survey.ElementType) bool {
	return t == survey.TypeText || t == survey.TypeComment || t == survey.TypeDate
}

// load prepares the inputs for the current element, restoring any
// earlier response.
func (s *PreviewScreen) load() tea.Cmd {
	s.errMsg = ""
	el, ok := s.p.Current()
	if !ok {
		return nil
	}
	prev, _ := s.p.Response(el.Name)

	opts := choices(el)
	chosen := -1
	s.checked = map[int]bool{}
	switch v := prev.(type) {
	case string:
		chosen = slices.Index(opts, v)
	case []string:
		for _, c := range v {
			if i := slices.Index(opts, c); i >= 0 {
				s.checked[i] = true
			}
		}
	}
	s.choice = components.NewMultiChoice(opts, chosen)

	if !textual(el.Type) {
		return nil
	}
	placeholder := "Your answer"
	if el.Type == survey.TypeDate {
		placeholder = "YYYY-MM-DD"
	}
	s.input = components.NewTextInput("", placeholder, 500)
	if v, ok := prev.(string); ok {
		s.input.SetValue(v)
	}
	return s.input.Focus()
}

// record stores the response for the current element and reports
// whether a required element was left empty.
func (s *PreviewScreen) record() bool {
	el, ok := s.p.Current()
	if !ok {
		return true
	}
	var value any
	switch {
	case el.Type == survey.TypeCheckbox:
		var picked []string
		for i, c := range el.Choices {
			if s.checked[i] {
				picked = append(picked, c)
			}
		}
		if len(picked) > 0 {
			value = picked
		}
	case textual(el.Type):
		if v := strings.TrimSpace(s.input.Value()); v != "" {
			value = v
		}
	case el.Type != survey.TypeFile:
		if v := s.choice.Value(); v != "" {
			value = v
		}
	}
	if value != nil {
		s.p.Respond(el.Name, value)
		return true
	}
	return !el.IsRequired
}

func (s *PreviewScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return s, nil
	}

	if s.p.Welcome() || s.done {
		if kmsg.String() == "enter" {
			s.done = false
			s.p.Restart()
			s.p.Begin()
			return s, s.load()
		}
		return s, nil
	}

	el, _ := s.p.Current()
	switch kmsg.String() {
	case "tab":
		return s, s.next()
	case "shift+tab":
		s.record()
		s.p.Prev()
		return s, s.load()
	case "ctrl+r":
		s.record()
		s.p.Restart()
		return s, nil
	case "enter":
		if !textual(el.Type) && el.Type != survey.TypeCheckbox {
			s.choice, _ = s.choice.Update(kmsg)
		}
		return s, s.next()
	case "space":
		if el.Type == survey.TypeCheckbox {
			s.checked[s.choice.Cursor] = !s.checked[s.choice.Cursor]
			return s, nil
		}
	}

	var cmd tea.Cmd
	if textual(el.Type) {
		s.input, cmd = s.input.Update(kmsg)
	} else {
		s.choice, cmd = s.choice.Update(kmsg)
	}
	return s, cmd
}

func (s *PreviewScreen) next() tea.Cmd {
	if !s.record() {
		s.errMsg = "This question requires an answer."
		return nil
	}
	if s.p.IsLast() {
		s.done = true
		return nil
	}
	s.p.Next()
	return s.load()
}

func (s *PreviewScreen) View(width, height int) string {
	cw := min(width-8, 80)
	var content string
	switch {
	case s.done:
		content = s.viewDone(cw)
	case s.p.Welcome():
		content = s.viewWelcome(cw)
	default:
		content = s.viewElement(cw)
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func (s *PreviewScreen) viewWelcome(cw int) string {
	lines := []string{theme.Title.Width(cw).Render(s.p.Title()), ""}
	if s.p.Len() == 0 {
		lines = append(lines, theme.Hint.Render("This survey has no questions yet."))
	} else {
		lines = append(lines,
			theme.Subtitle.Width(cw).Render(fmt.Sprintf("%d questions", s.p.Len())),
			"",
			theme.ButtonActive.Render("▸ Start survey"))
	}
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

func (s *PreviewScreen) viewElement(cw int) string {
	el, _ := s.p.Current()

	bar := components.NewProgressBar(s.p.Position(), s.p.Progress()/100, true, cw)
	title := el.Title
	if el.IsRequired {
		title += " *"
	}
	lines := []string{
		bar.View(),
		"",
		lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Width(cw).Render(title),
		"",
	}

	switch {
	case el.Type == survey.TypeFile:
		lines = append(lines, theme.Hint.Render("File upload is not available in the terminal preview."))
	case textual(el.Type):
		lines = append(lines, s.input.View())
	case el.Type == survey.TypeCheckbox:
		for i, c := range el.Choices {
			box := "[ ]"
			if s.checked[i] {
				box = "[x]"
			}
			style := theme.Unselected
			if i == s.choice.Cursor {
				style = theme.Selected
			}
			lines = append(lines, style.Render(box+" "+c))
		}
		lines = append(lines, "", theme.Hint.Render("space toggles, tab continues"))
	default:
		s.choice.Width = cw
		lines = append(lines, strings.TrimRight(s.choice.View(), "\n"))
	}

	if s.errMsg != "" {
		lines = append(lines, "", theme.ErrorText.Render(s.errMsg))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (s *PreviewScreen) viewDone(cw int) string {
	lines := []string{
		theme.Title.Width(cw).Render("Thank you!"),
		theme.Subtitle.Width(cw).Render("This was a preview. Responses are not saved."),
		"",
	}
	responses := s.p.Responses()
	names := make([]string, 0, len(responses))
	for n := range responses {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		v := responses[n]
		if list, ok := v.([]string); ok {
			v = strings.Join(list, ", ")
		}
		lines = append(lines, theme.Body.Render(fmt.Sprintf("%s: %v", n, v)))
	}
	lines = append(lines, "", theme.Hint.Render("press Enter to start again"))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
