package router

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nashtech/odmat/internal/screen"
)

type pingMsg struct{}

// fakeScreen records what the router did to it.
type fakeScreen struct {
	name  string
	inits int
	got   []tea.Msg
}

func (s *fakeScreen) Init() tea.Cmd {
	s.inits++
	return nil
}

func (s *fakeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	s.got = append(s.got, msg)
	return s, nil
}

func (s *fakeScreen) View(int, int) string { return s.name }
func (s *fakeScreen) Title() string        { return s.name }

func titles(r *Router) []string {
	out := make([]string, 0, len(r.stack))
	for _, s := range r.stack {
		out = append(out, s.Title())
	}
	return out
}

func TestNavigationMessages(t *testing.T) {
	tests := []struct {
		name string
		msgs []tea.Msg
		want []string
	}{
		{
			name: "push",
			msgs: []tea.Msg{PushScreenMsg{Screen: &fakeScreen{name: "welcome"}}},
			want: []string{"details", "welcome"},
		},
		{
			name: "pop",
			msgs: []tea.Msg{PushScreenMsg{Screen: &fakeScreen{name: "welcome"}}, PopScreenMsg{}},
			want: []string{"details"},
		},
		{
			name: "pop keeps the bottom screen",
			msgs: []tea.Msg{PopScreenMsg{}, PopScreenMsg{}},
			want: []string{"details"},
		},
		{
			name: "replace keeps depth",
			msgs: []tea.Msg{
				PushScreenMsg{Screen: &fakeScreen{name: "welcome"}},
				ReplaceScreenMsg{Screen: &fakeScreen{name: "question"}},
			},
			want: []string{"details", "question"},
		},
		{
			name: "reset",
			msgs: []tea.Msg{
				PushScreenMsg{Screen: &fakeScreen{name: "welcome"}},
				PushScreenMsg{Screen: &fakeScreen{name: "question"}},
				ResetScreenMsg{Screen: &fakeScreen{name: "results"}},
			},
			want: []string{"results"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(&fakeScreen{name: "details"})
			for _, m := range tt.msgs {
				r.Update(m)
			}
			assert.Equal(t, tt.want, titles(r))
			assert.Equal(t, len(tt.want), r.Depth())
			assert.Equal(t, tt.want[len(tt.want)-1], r.Active().Title())
		})
	}
}

func TestOpenedScreensAreInitialised(t *testing.T) {
	r := New(&fakeScreen{name: "details"})
	pushed := &fakeScreen{name: "welcome"}
	replaced := &fakeScreen{name: "question"}
	reset := &fakeScreen{name: "results"}

	r.Update(PushScreenMsg{Screen: pushed})
	r.Update(ReplaceScreenMsg{Screen: replaced})
	r.Update(ResetScreenMsg{Screen: reset})

	assert.Equal(t, 1, pushed.inits)
	assert.Equal(t, 1, replaced.inits)
	assert.Equal(t, 1, reset.inits)
}

func TestOtherMessagesGoToActiveScreen(t *testing.T) {
	bottom := &fakeScreen{name: "details"}
	top := &fakeScreen{name: "welcome"}
	r := New(bottom)
	r.Push(top)

	r.Update(pingMsg{})

	assert.Len(t, top.got, 1)
	assert.Empty(t, bottom.got)
	assert.Equal(t, "welcome", r.View(80, 24))
}

func TestPopNotifiesRevealedScreen(t *testing.T) {
	bottom := &fakeScreen{name: "welcome"}
	r := New(bottom)
	r.Push(&fakeScreen{name: "question"})

	r.Update(PopScreenMsg{Notify: pingMsg{}})

	require.Len(t, bottom.got, 1)
	assert.IsType(t, pingMsg{}, bottom.got[0])
}

func TestPopAtBottomDoesNotNotify(t *testing.T) {
	only := &fakeScreen{name: "details"}
	r := New(only)

	assert.False(t, r.Pop())
	r.Update(PopScreenMsg{Notify: pingMsg{}})

	assert.Empty(t, only.got)
	assert.Equal(t, 1, r.Depth())
}
