package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
)

// RenderMarkdown renders assistant text for a terminal of the given width.
// When styled is false the plain "notty" style is used, which keeps the
// output readable in pipes and log files. Rendering errors fall back to the
// raw text.
func RenderMarkdown(text string, width int, styled bool) string {
	style := styles.NoTTYStyle
	if styled {
		style = styles.DarkStyle
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(max(20, width-4)),
		glamour.WithEmoji(),
	)
	if err != nil {
		return text
	}

	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n") + "\n"
}
