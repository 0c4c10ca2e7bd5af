package app

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/nashtech/odmat/internal/router"
	"github.com/nashtech/odmat/internal/screen"
	"github.com/nashtech/odmat/internal/ui/layout"
)

type stubScreen struct {
	title, status string
	initRan       bool
}

func (s *stubScreen) Init() tea.Cmd                           { s.initRan = true; return nil }
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                    { return "body of " + s.title }
func (s *stubScreen) Title() string                           { return s.title }
func (s *stubScreen) Status() string                          { return s.status }
func (s *stubScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{{Key: "x", Description: "Export"}}
}

func resize(m AppModel, w, h int) AppModel {
	updated, _ := m.Update(tea.WindowSizeMsg{Width: w, Height: h})
	return updated.(AppModel)
}

func TestInitRunsInitialScreen(t *testing.T) {
	s := &stubScreen{title: "Details"}
	m := newAppModel(s)
	m.Init()
	if !s.initRan {
		t.Error("expected Init() on the initial screen")
	}
}

func TestViewShowsHeaderStatusAndHints(t *testing.T) {
	m := resize(newAppModel(&stubScreen{title: "Results", status: "80% Leading"}), 100, 30)

	content := m.render()
	for _, want := range []string{"Open Data Maturity", "Results", "80% Leading", "body of Results", "Export"} {
		if !strings.Contains(content, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestViewTooSmall(t *testing.T) {
	m := resize(newAppModel(&stubScreen{title: "Results"}), 40, 10)
	if !strings.Contains(m.render(), "Terminal too small") {
		t.Error("expected the minimum size notice")
	}
}

func TestEscPopsOnlyAboveRoot(t *testing.T) {
	m := newAppModel(&stubScreen{title: "root"})

	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd != nil {
		t.Error("esc at the root should do nothing")
	}

	m.router.Push(&stubScreen{title: "child"})
	_, cmd = m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd == nil {
		t.Fatal("expected a pop command")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}
}
