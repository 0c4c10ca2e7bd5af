package assess

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/nashtech/odmat/internal/assessment"
	"github.com/nashtech/odmat/internal/export"
	"github.com/nashtech/odmat/internal/router"
	"github.com/nashtech/odmat/internal/screen"
	"github.com/nashtech/odmat/internal/ui/components"
	"github.com/nashtech/odmat/internal/ui/layout"
	"github.com/nashtech/odmat/internal/ui/markdown"
	"github.com/nashtech/odmat/internal/ui/theme"
)

// ResultsScreen shows the scored assessment and offers report export.
type ResultsScreen struct {
	deps   Deps
	snap   snapshot
	offset int
	busy   bool
	notice string
	errMsg string
}

var _ screen.Screen = (*ResultsScreen)(nil)
var _ screen.KeyHintProvider = (*ResultsScreen)(nil)
var _ screen.StatusProvider = (*ResultsScreen)(nil)

func newResults(d Deps, snap snapshot) *ResultsScreen {
	return &ResultsScreen{deps: d, snap: snap}
}

func (s *ResultsScreen) Init() tea.Cmd {
	return nil
}

func (s *ResultsScreen) Title() string {
	return "Results"
}

func (s *ResultsScreen) Status() string {
	if r := s.snap.Data.Results; r != nil {
		return fmt.Sprintf("%d%% %s", assessment.Percentage(r.OverallScore), r.MaturityLevel)
	}
	return ""
}

func (s *ResultsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Scroll"},
		{Key: "x", Description: "Export report"},
		{Key: "n", Description: "New assessment"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (s *ResultsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case exportedMsg:
		s.busy = false
		if msg.err != nil {
			s.errMsg = "Export failed: " + msg.err.Error()
			return s, nil
		}
		s.notice = "Saved " + strings.Join(msg.paths, ", ")
		return s, nil

	case tea.KeyPressMsg:
		if s.busy {
			return s, nil
		}
		switch msg.String() {
		case "up", "k":
			s.offset = max(s.offset-1, 0)
		case "down", "j":
			s.offset++
		case "pgup":
			s.offset = max(s.offset-10, 0)
		case "pgdown", "space":
			s.offset += 10
		case "home", "g":
			s.offset = 0
		case "x":
			return s, s.export()
		case "n":
			return s, s.restart()
		}
	}
	return s, nil
}

// export writes the report in every configured format.
func (s *ResultsScreen) export() tea.Cmd {
	s.busy = true
	s.notice, s.errMsg = "", ""
	d, snap := s.deps, s.snap
	return func() tea.Msg {
		r, err := export.NewReport(snap.Bank, snap.Data, d.Now())
		if err != nil {
			return exportedMsg{err: err}
		}
		paths, err := export.WriteAll(context.Background(), d.ExportDir, r, d.Formats, d.Logger)
		if err != nil {
			d.Logger.Error("export report", zap.Error(err))
		}
		return exportedMsg{paths: paths, err: err}
	}
}

// restart clears the session and returns to an empty details form.
func (s *ResultsScreen) restart() tea.Cmd {
	d := s.deps
	return func() tea.Msg {
		d.Session.Reset(context.Background())
		return router.ResetScreenMsg{Screen: newDetails(d)}
	}
}

func (s *ResultsScreen) View(width, height int) string {
	lines := strings.Split(s.render(min(width-4, 90)), "\n")

	maxOffset := max(len(lines)-height, 0)
	offset := min(s.offset, maxOffset)
	end := min(offset+height, len(lines))

	body := strings.Join(lines[offset:end], "\n")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top, body)
}

// render builds the full results page at content width cw.
func (s *ResultsScreen) render(cw int) string {
	r := s.snap.Data.Results
	if r == nil {
		return theme.ErrorText.Render("This assessment has no results yet.")
	}

	var sections []string
	sections = append(sections, theme.Title.Width(cw).Render("Your Open Data Maturity Results"))
	if ud := s.snap.Data.UserDetails; ud != nil {
		sections = append(sections, theme.Subtitle.Width(cw).Render(ud.FullName+" · "+ud.Organization))
	}
	sections = append(sections, "")

	score := theme.ScoreStyle(r.OverallScore)
	headline := score.Render(fmt.Sprintf("%d%%", assessment.Percentage(r.OverallScore))) + "  " +
		score.Render(string(r.MaturityLevel)) + " " +
		theme.Hint.Render("("+r.MaturityLevel.Description()+")")
	sections = append(sections, headline)
	sections = append(sections, theme.Body.Width(cw).Render(r.MaturityLevel.Explanation()))
	sections = append(sections, theme.Hint.Render(fmt.Sprintf("Overall %.1f / 5.0 · completed in %s · %d/%d answered",
		r.OverallScore,
		assessment.CompletionTime(s.snap.Data.StartTime, s.snap.Data.EndTime),
		s.snap.Answered, s.snap.Total)))
	sections = append(sections, "")

	sections = append(sections, theme.Selected.Render("Theme scores"))
	if s.snap.Bank != nil {
		for _, ts := range assessment.OrderedThemeScores(s.snap.Bank, *r) {
			bar := components.NewProgressBar(ts.Theme.Icon+" "+ts.Theme.Title, ts.Score/5, true, cw-14)
			bar.LabelWidth = 40
			bar.Fill = theme.ScoreColor(ts.Score)
			level := theme.ScoreStyle(ts.Score).Render(assessment.ThemeLevel(ts.Score))
			sections = append(sections, bar.View()+"  "+level)
		}
	}
	sections = append(sections, "")

	sections = append(sections, theme.Selected.Render("Recommendations"))
	sections = append(sections, markdown.Render(markdown.NumberedList(r.Recommendations), cw, markdown.StyleDark))
	sections = append(sections, "")
	sections = append(sections, theme.Hint.Width(cw).Render(assessment.ShareText(*r)))

	switch {
	case s.busy:
		sections = append(sections, "", theme.Hint.Render("Exporting report..."))
	case s.errMsg != "":
		sections = append(sections, "", theme.ErrorText.Render(s.errMsg))
	case s.notice != "":
		sections = append(sections, "", lipgloss.NewStyle().Foreground(theme.Success).Width(cw).Render(s.notice))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
