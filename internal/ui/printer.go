package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Printer writes UI components to a writer.
type Printer struct {
	out    io.Writer
	width  int
	styled bool
}

// NewPrinter creates a Printer for w. If w is nil, os.Stdout is used.
// Markdown is styled only when w is a terminal.
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	styled := false
	if f, ok := w.(*os.File); ok {
		styled = IsTerminal(f)
	}
	return &Printer{
		out:    w,
		width:  GetTerminalWidth(),
		styled: styled,
	}
}

// Width returns the width used by this printer
func (p *Printer) Width() int {
	return p.width
}

// SetWidth overrides the detected width.
func (p *Printer) SetWidth(width int) *Printer {
	p.width = clampWidth(width)
	return p
}

// Print writes content to the output
func (p *Printer) Print(content string) {
	_, _ = fmt.Fprint(p.out, content)
}

// Println writes content with a newline
func (p *Printer) Println(content string) {
	_, _ = fmt.Fprintln(p.out, content)
}

// Newline prints an empty line
func (p *Printer) Newline() {
	_, _ = fmt.Fprintln(p.out)
}

// PrintHeader prints a command header box
func (p *Printer) PrintHeader(title, command string, details []Detail) {
	p.Println(NewHeader(title, command, details).SetWidth(p.width).Render())
	p.Newline()
}

// PrintSuccess prints a success result box
func (p *Printer) PrintSuccess(title string, details []Detail) {
	p.Println(NewSuccessResult(title, details).SetWidth(p.width).Render())
}

// PrintWarning prints a warning result box
func (p *Printer) PrintWarning(title string, details []Detail) {
	p.Println(NewWarningResult(title, details).SetWidth(p.width).Render())
}

// PrintError prints a failure box with suggestions
func (p *Printer) PrintError(title string, err error, tips []string) {
	p.Println(NewFailureResult(title, err, tips).SetWidth(p.width).Render())
}

// PrintMarkdown prints rendered markdown
func (p *Printer) PrintMarkdown(text string) {
	p.Print(RenderMarkdown(text, p.width, p.styled))
}

// PrintDetails prints key/value lines without a box
func (p *Printer) PrintDetails(details []Detail) {
	p.Println(renderDetails("  ", details))
}

// PrintMuted prints a dimmed line, such as a hint.
func (p *Printer) PrintMuted(text string) {
	p.Println(lipgloss.NewStyle().Foreground(MutedColor).PaddingLeft(2).Render(text))
}
