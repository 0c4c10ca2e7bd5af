// Package router keeps the stack of terminal screens and applies the
// navigation messages screens emit.
package router

import (
	tea "charm.land/bubbletea/v2"

	"github.com/nashtech/odmat/internal/screen"
)

// navigation is implemented by every message that changes the stack.
type navigation interface {
	apply(r *Router) tea.Cmd
}

// PushScreenMsg opens Screen on top of the current one.
type PushScreenMsg struct {
	Screen screen.Screen
}

// PopScreenMsg closes the top screen. Notify, when set, is delivered to
// the screen underneath so it can refresh before it is drawn again.
type PopScreenMsg struct {
	Notify tea.Msg
}

// ReplaceScreenMsg swaps the top screen for Screen.
type ReplaceScreenMsg struct {
	Screen screen.Screen
}

// ResetScreenMsg drops the whole stack and starts over from Screen.
type ResetScreenMsg struct {
	Screen screen.Screen
}

func (m PushScreenMsg) apply(r *Router) tea.Cmd    { return r.Push(m.Screen) }
func (m ReplaceScreenMsg) apply(r *Router) tea.Cmd { return r.Replace(m.Screen) }
func (m ResetScreenMsg) apply(r *Router) tea.Cmd   { return r.Reset(m.Screen) }

func (m PopScreenMsg) apply(r *Router) tea.Cmd {
	if !r.Pop() || m.Notify == nil {
		return nil
	}
	return r.forward(m.Notify)
}

// Router holds the screen stack. The bottom screen is never popped.
type Router struct {
	stack []screen.Screen
}

func New(initial screen.Screen) *Router {
	return &Router{stack: []screen.Screen{initial}}
}

// Push opens s and runs its Init.
func (r *Router) Push(s screen.Screen) tea.Cmd {
	r.stack = append(r.stack, s)
	return s.Init()
}

// Pop closes the top screen and reports whether one was closed.
func (r *Router) Pop() bool {
	if len(r.stack) < 2 {
		return false
	}
	r.stack[len(r.stack)-1] = nil
	r.stack = r.stack[:len(r.stack)-1]
	return true
}

// Replace swaps the top screen for s and runs its Init.
func (r *Router) Replace(s screen.Screen) tea.Cmd {
	if n := len(r.stack); n > 0 {
		r.stack[n-1] = s
	} else {
		r.stack = append(r.stack, s)
	}
	return s.Init()
}

// Reset makes s the only screen and runs its Init.
func (r *Router) Reset(s screen.Screen) tea.Cmd {
	clear(r.stack)
	r.stack = append(r.stack[:0], s)
	return s.Init()
}

func (r *Router) Active() screen.Screen {
	if len(r.stack) == 0 {
		return nil
	}
	return r.stack[len(r.stack)-1]
}

func (r *Router) Depth() int {
	return len(r.stack)
}

// Update applies navigation messages and hands everything else to the
// active screen.
func (r *Router) Update(msg tea.Msg) tea.Cmd {
	if nav, ok := msg.(navigation); ok {
		return nav.apply(r)
	}
	return r.forward(msg)
}

func (r *Router) forward(msg tea.Msg) tea.Cmd {
	n := len(r.stack)
	if n == 0 {
		return nil
	}
	next, cmd := r.stack[n-1].Update(msg)
	r.stack[n-1] = next
	return cmd
}

func (r *Router) View(width, height int) string {
	if s := r.Active(); s != nil {
		return s.View(width, height)
	}
	return ""
}
