// Package markdown renders recommendation and tip text for the terminal.
package markdown

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

// Style names accepted by Render.
const (
	StyleDark = "dark"
	StyleAuto = "auto"
)

// Render renders md wrapped at width. Rendering errors fall back to the
// raw text so callers always have something to show.
func Render(md string, width int, style string) string {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(max(width, 20))}
	if style == StyleAuto {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}

// NumberedList formats items as a markdown ordered list.
func NumberedList(items []string) string {
	var b strings.Builder
	for i, item := range items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, strings.TrimSpace(item))
	}
	return b.String()
}
