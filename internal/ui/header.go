package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Detail is one key/value line. Details keep their order, unlike a map.
type Detail struct {
	Key   string
	Value string
}

// Header is the banner printed at the start of a command.
type Header struct {
	Title   string   // e.g., "ASK"
	Command string   // e.g., "kisan ask"
	Details []Detail // e.g., Provider: gemini
	Width   int
}

// NewHeader creates a header sized to the terminal
func NewHeader(title, command string, details []Detail) *Header {
	return &Header{
		Title:   title,
		Command: command,
		Details: details,
		Width:   GetTerminalWidth(),
	}
}

// SetWidth sets the width for rendering
func (h *Header) SetWidth(width int) *Header {
	h.Width = width
	return h
}

// Render returns the styled header
func (h *Header) Render() string {
	width := max(h.Width, MinTerminalWidth)

	top := lipgloss.JoinVertical(lipgloss.Left,
		HeaderTitleStyle.Render(strings.ToUpper(h.Title)),
		HeaderCommandStyle.Render(h.Command),
	)

	content := top
	if len(h.Details) > 0 {
		divider := lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Render(strings.Repeat("─", max(10, width-6)))
		content = lipgloss.JoinVertical(lipgloss.Left, top, divider, renderDetails("  ", h.Details))
	}

	return HeaderBorderStyle(width).Render(content)
}

// String implements fmt.Stringer
func (h *Header) String() string {
	return h.Render()
}

func renderDetails(indent string, details []Detail) string {
	lines := make([]string, 0, len(details))
	for _, d := range details {
		lines = append(lines, DetailKeyStyle.Render(indent+d.Key+":")+" "+DetailValueStyle.Render(d.Value))
	}
	return strings.Join(lines, "\n")
}
