package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/kisan/internal/version"
)

// Layout constants
const (
	DefaultWidth     = 80
	DefaultHeight    = 24
	MinTerminalWidth = 60
	SidebarWidth     = 24
)

// Color palette
var (
	PrimaryColor   = lipgloss.Color("#22C55E") // Green
	SecondaryColor = lipgloss.Color("#16A34A") // Dark green
	AccentColor    = lipgloss.Color("#F59E0B") // Amber
	InfoColor      = lipgloss.Color("#3B82F6") // Blue
	ErrorColor     = lipgloss.Color("#EF4444") // Red

	TextColor      = lipgloss.Color("#FFFFFF")
	SubtleColor    = lipgloss.Color("#6B7280")
	BorderColor    = lipgloss.Color("#22C55E")
	HighlightColor = lipgloss.Color("#4ADE80")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true).
			MarginBottom(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Italic(true)

	SectionStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Bold(true).
			MarginTop(1)

	MenuItemStyle = lipgloss.NewStyle().
			PaddingLeft(4).
			Foreground(TextColor)

	SelectedMenuItemStyle = lipgloss.NewStyle().
				PaddingLeft(2).
				Foreground(HighlightColor).
				Bold(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	ErrorTextStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	WarningTextStyle = lipgloss.NewStyle().
				Foreground(AccentColor)

	// Cards on the content area
	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(SubtleColor).
			Padding(0, 1)

	FocusedCardStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(HighlightColor).
				Padding(0, 1)

	InfoBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(InfoColor).
			Padding(0, 1)

	WarningBoxStyle = lipgloss.NewStyle().
			Foreground(AccentColor).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(AccentColor).
			Padding(0, 1)

	ErrorBoxStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ErrorColor).
			Padding(0, 1)

	AlertStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(AccentColor).
			Padding(1, 2)

	BadgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#000000")).
			Background(HighlightColor).
			Padding(0, 1)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)

	SidebarStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.Border{Right: "│"}).
			BorderForeground(BorderColor).
			Width(SidebarWidth).
			PaddingRight(1)

	UserBubbleStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Background(SecondaryColor).
			Padding(0, 1)

	AssistantBubbleStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(SubtleColor).
				Padding(0, 1)
)

// RenderTitle renders a screen title
func RenderTitle(text string) string {
	return TitleStyle.Render(text)
}

// RenderSubtitle renders a screen subtitle
func RenderSubtitle(text string) string {
	return SubtitleStyle.Render(text)
}

// RenderMenuItem renders a menu item with selection indicator
func RenderMenuItem(text string, selected bool) string {
	if selected {
		return SelectedMenuItemStyle.Render("→ " + text)
	}
	return MenuItemStyle.Render(text)
}

// RenderCheckItem renders a toggleable menu item.
func RenderCheckItem(text string, checked, selected bool) string {
	box := "[ ] "
	if checked {
		box = "[✓] "
	}
	return RenderMenuItem(box+text, selected)
}

// RenderPagination renders one dot per page with the current page filled.
func RenderPagination(current, total int) string {
	dots := make([]string, total)
	for i := range dots {
		if i == current {
			dots[i] = lipgloss.NewStyle().Foreground(PrimaryColor).Render("●")
		} else {
			dots[i] = MutedStyle.Render("○")
		}
	}
	return strings.Join(dots, " ")
}

// HeaderInfo is what the header shows about the session.
type HeaderInfo struct {
	Title    string
	Subtitle string
	Language string
	UserID   string
}

// BuildHeaderContent renders the title on the left and the session on the right.
func BuildHeaderContent(info HeaderInfo, width int) string {
	left := lipgloss.NewStyle().
		Foreground(TextColor).
		Bold(true).
		Render("🌱 " + info.Title)
	if info.Subtitle != "" {
		left += "  " + MutedStyle.Render(info.Subtitle)
	}

	var session []string
	if info.Language != "" {
		session = append(session, info.Language)
	}
	if info.UserID != "" {
		session = append(session, info.UserID)
	}
	session = append(session, "v"+version.Version)
	right := MutedStyle.Render(strings.Join(session, " · "))

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return left
	}
	return left + strings.Repeat(" ", gap) + right
}

// BuildFooterContent styles the help line
func BuildFooterContent(helpText string) string {
	return MutedStyle.Render(helpText)
}

// RenderApplicationContainer wraps a screen's content with the header and the
// help footer inside a bordered panel that fills the terminal.
//
// Screens never render the frame themselves; AppModel.View calls this with
// the content of the current screen.
func RenderApplicationContainer(info HeaderInfo, content, footerText string, terminalWidth, terminalHeight int) string {
	if terminalWidth <= 0 {
		terminalWidth = DefaultWidth
	}
	if terminalHeight <= 0 {
		terminalHeight = DefaultHeight
	}
	inner := terminalWidth - 4

	headerStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Bottom: "─"}).
		BorderForeground(BorderColor).
		Width(inner).
		Padding(0, 1)
	styledHeader := headerStyle.Render(BuildHeaderContent(info, inner-2))

	footerStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Top: "─"}).
		BorderForeground(BorderColor).
		Width(inner).
		Padding(0, 1)
	styledFooter := footerStyle.Render(BuildFooterContent(footerText))

	// Content gets whatever height the header and footer leave.
	contentHeight := terminalHeight - 2 - lipgloss.Height(styledHeader) - lipgloss.Height(styledFooter)
	if contentHeight < 1 {
		contentHeight = 1
	}
	styledContent := lipgloss.NewStyle().
		Width(inner).
		Height(contentHeight).
		MaxHeight(contentHeight).
		Render(content)

	bordered := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(BorderColor).
		Width(terminalWidth - 2).
		Height(terminalHeight - 2).
		AlignVertical(lipgloss.Top).
		Render(lipgloss.JoinVertical(lipgloss.Left, styledHeader, styledContent, styledFooter))

	return lipgloss.Place(terminalWidth, terminalHeight, lipgloss.Left, lipgloss.Top, bordered)
}

// RenderModal centers modal content on a dimmed background.
func RenderModal(modalContent string, terminalWidth, terminalHeight int) string {
	if terminalWidth <= 0 {
		terminalWidth = DefaultWidth
	}
	if terminalHeight <= 0 {
		terminalHeight = DefaultHeight
	}
	return lipgloss.Place(
		terminalWidth,
		terminalHeight,
		lipgloss.Center,
		lipgloss.Center,
		modalContent,
		lipgloss.WithWhitespaceChars("░"),
		lipgloss.WithWhitespaceForeground(lipgloss.Color("240")),
	)
}

// SafeModalWidth keeps a modal inside the terminal.
func SafeModalWidth(requestedWidth, terminalWidth int) int {
	maxWidth := terminalWidth - 4
	if maxWidth < 40 {
		maxWidth = 40
	}
	return min(requestedWidth, maxWidth)
}

// contentWidth is the usable width inside the container, minus the sidebar
// when it is open.
func contentWidth(terminalWidth int, sidebar bool) int {
	if terminalWidth <= 0 {
		terminalWidth = DefaultWidth
	}
	w := terminalWidth - 4
	if sidebar {
		w -= SidebarWidth + 2
	}
	return max(w, 20)
}
