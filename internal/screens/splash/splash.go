// Package splash shows the animated start-up screen.
package splash

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/nashtech/odmat/internal/router"
	"github.com/nashtech/odmat/internal/screen"
	"github.com/nashtech/odmat/internal/ui/theme"
)

const (
	tickInterval = 100 * time.Millisecond
	barsEnd      = 800 * time.Millisecond
	bannerAt     = 1200 * time.Millisecond
	totalDur     = 2000 * time.Millisecond
)

// chartHeights are the five maturity bars drawn bottom-up, one per level.
var chartHeights = []int{1, 2, 3, 4, 5}

type tickMsg time.Time

// SplashScreen draws a growing maturity chart and the banner, then hands
// over to the screen produced by next on any key.
type SplashScreen struct {
	next         func() screen.Screen
	elapsed      time.Duration
	transitioned bool
}

var _ screen.Screen = (*SplashScreen)(nil)

// New creates a SplashScreen that replaces itself with next().
func New(next func() screen.Screen) *SplashScreen {
	return &SplashScreen{next: next}
}

func (s *SplashScreen) Title() string {
	return ""
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (s *SplashScreen) Init() tea.Cmd {
	return tick()
}

func (s *SplashScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg.(type) {
	case tickMsg:
		if s.transitioned || s.elapsed >= totalDur {
			return s, nil
		}
		s.elapsed += tickInterval
		return s, tick()

	case tea.KeyPressMsg:
		return s, s.transition()
	}
	return s, nil
}

// transition skips whatever is left of the animation.
func (s *SplashScreen) transition() tea.Cmd {
	if s.transitioned {
		return nil
	}
	s.transitioned = true
	next := s.next()
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: next}
	}
}

// chart renders the bars grown to the current animation frame.
func (s *SplashScreen) chart() string {
	grown := 5
	if s.elapsed < barsEnd {
		grown = int(s.elapsed * 5 / barsEnd)
	}
	colors := []lipgloss.Style{
		lipgloss.NewStyle().Foreground(theme.Error),
		lipgloss.NewStyle().Foreground(theme.Accent),
		lipgloss.NewStyle().Foreground(theme.Primary),
		lipgloss.NewStyle().Foreground(theme.Secondary),
		lipgloss.NewStyle().Foreground(theme.Success),
	}

	rows := make([]string, 0, 5)
	for level := 5; level >= 1; level-- {
		var row strings.Builder
		for i, h := range chartHeights {
			cell := "     "
			if i < grown && h >= level {
				cell = colors[i].Render(" ███ ")
			}
			row.WriteString(cell)
		}
		rows = append(rows, row.String())
	}
	rows = append(rows, lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", 5*len(chartHeights))))
	return strings.Join(rows, "\n")
}

func (s *SplashScreen) View(width, height int) string {
	sections := []string{s.chart()}

	if s.elapsed >= bannerAt {
		sections = append(sections,
			"",
			RenderBanner(width),
			"",
			lipgloss.NewStyle().
				Foreground(theme.Text).
				Bold(true).
				Render("How mature is your open data practice?"),
			"",
			theme.Hint.Render("press any key to continue"),
		)
	}

	content := lipgloss.JoinVertical(lipgloss.Center, sections...)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
