package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/kisan/internal/schemes"
	"github.com/muurk/kisan/internal/urls"
)

// Translation keys of the category filters
var categoryKeys = map[schemes.Category]string{
	schemes.All:       "allSchemes",
	schemes.Subsidy:   "subsidies",
	schemes.Insurance: "insurance",
	schemes.Loan:      "loans",
}

// schemesKeyMap defines key bindings for the government schemes screen
type schemesKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Apply    key.Binding
	Details  key.Binding
	Category key.Binding
	Search   key.Binding
	Done     key.Binding
}

// schemesModel lists the schemes with a search box and category filter.
type schemesModel struct {
	env *env

	search   textinput.Model
	category int
	cursor   int

	keys schemesKeyMap
}

func newSchemesModel(e *env) schemesModel {
	ti := textinput.New()
	ti.Placeholder = e.t("searchSchemes")
	ti.Prompt = "🔍 "
	ti.CharLimit = 100

	return schemesModel{
		env:    e,
		search: ti,
		keys: schemesKeyMap{
			Up:   keyUp,
			Down: keyDown,
			Apply: key.NewBinding(
				key.WithKeys("enter"),
				key.WithHelp("enter", "apply / track"),
			),
			Details: key.NewBinding(
				key.WithKeys("d"),
				key.WithHelp("d", "details"),
			),
			Category: key.NewBinding(
				key.WithKeys("tab"),
				key.WithHelp("tab", "category"),
			),
			Search: key.NewBinding(
				key.WithKeys("/"),
				key.WithHelp("/", "search"),
			),
			Done: key.NewBinding(
				key.WithKeys("enter", "esc"),
				key.WithHelp("enter", "done"),
			),
		},
	}
}

func (m schemesModel) Init() tea.Cmd { return nil }

func (m schemesModel) Capturing() bool { return m.search.Focused() }

func (m schemesModel) Keys() help.KeyMap {
	if m.search.Focused() {
		return keyMap{m.keys.Done}
	}
	return keyMap{m.keys.Up, m.keys.Down, m.keys.Apply, m.keys.Details, m.keys.Category, m.keys.Search}
}

// visible returns the schemes matching the search and category.
func (m schemesModel) visible() []schemes.Scheme {
	return schemes.Filter(m.search.Value(), schemes.Categories()[m.category])
}

func (m schemesModel) Update(msg tea.Msg) (screenModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}

	if m.search.Focused() {
		if key.Matches(keyMsg, m.keys.Done) {
			m.search.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		m.cursor = 0
		return m, cmd
	}

	list := m.visible()
	switch {
	case key.Matches(keyMsg, m.keys.Search):
		cmd := m.search.Focus()
		return m, cmd
	case key.Matches(keyMsg, m.keys.Category):
		m.category = (m.category + 1) % len(schemes.Categories())
		m.cursor = 0
	case key.Matches(keyMsg, m.keys.Up):
		m.cursor = max(0, m.cursor-1)
	case key.Matches(keyMsg, m.keys.Down):
		m.cursor = max(0, min(len(list)-1, m.cursor+1))
	case key.Matches(keyMsg, m.keys.Apply):
		if m.cursor < len(list) {
			return m, alert(schemeAction(list[m.cursor]))
		}
	case key.Matches(keyMsg, m.keys.Details):
		if m.cursor < len(list) {
			s := list[m.cursor]
			return m, alert(fmt.Sprintf("%s\n\n%s\n\n%s", s.Name, s.Description, s.PortalURL))
		}
	}
	return m, nil
}

// schemeAction is the alert shown for the primary button of a scheme: the
// application guide when the farmer can apply, the status otherwise.
func schemeAction(s schemes.Scheme) string {
	if s.CanApply() {
		return s.ApplicationGuide()
	}
	return fmt.Sprintf("Application status for %s: %s\n\n%s", s.Name, schemes.StatusText(s.Status), s.PortalURL)
}

func (m schemesModel) View() string {
	width := contentWidth(m.env.width, m.env.state().SidebarOpen)

	var b strings.Builder
	b.WriteString(RenderTitle("🏛️ " + m.env.t("governmentSchemes")))
	b.WriteString("\n")
	b.WriteString(RenderSubtitle(m.env.t("schemesDesc")))
	b.WriteString("\n\n")

	searchStyle := CardStyle
	if m.search.Focused() {
		searchStyle = FocusedCardStyle
	}
	b.WriteString(searchStyle.Width(min(width-2, 50)).Render(m.search.View()))
	b.WriteString("\n")

	tabs := make([]string, 0, len(schemes.Categories()))
	for i, c := range schemes.Categories() {
		label := m.env.t(categoryKeys[c])
		if i == m.category {
			tabs = append(tabs, BadgeStyle.Render(label))
		} else {
			tabs = append(tabs, MutedStyle.Padding(0, 1).Render(label))
		}
	}
	b.WriteString(strings.Join(tabs, " "))
	b.WriteString("\n")

	list := m.visible()
	b.WriteString(SectionStyle.Render(fmt.Sprintf("%s (%d)", m.env.t("availableSchemes"), len(list))))
	b.WriteString("\n")
	for i, s := range list {
		b.WriteString(m.renderScheme(s, i == m.cursor, width))
		b.WriteString("\n")
	}

	b.WriteString(MutedStyle.Render("Need help? Kisan Call Centre 1800-180-1551 · " + urls.KisanCallCentre))
	return b.String()
}

func (m schemesModel) renderScheme(s schemes.Scheme, selected bool, width int) string {
	style := CardStyle
	if selected {
		style = FocusedCardStyle
	}

	action := m.env.t("trackApplication")
	if s.CanApply() {
		action = m.env.t("applyNow")
	}

	title := lipgloss.NewStyle().Bold(true).Render(s.Name) + "  " + BadgeStyle.Render(m.env.t(statusKey(s.Status)))
	body := lipgloss.JoinVertical(lipgloss.Left,
		title,
		lipgloss.NewStyle().Foreground(InfoColor).Render(s.Amount),
		s.Description,
		fmt.Sprintf("%s: %s", m.env.t("eligibility"), s.Eligibility),
		fmt.Sprintf("%s: %s", m.env.t("deadline"), s.Deadline),
		RenderMenuItem(action, selected),
	)
	return style.Width(min(width-2, 90)).Render(body)
}

// statusKey maps a status to its translation key. Unknown statuses are
// shown raw, because a missing key resolves to itself.
func statusKey(s schemes.Status) string {
	switch s {
	case schemes.Eligible:
		return "eligible"
	case schemes.Applied:
		return "applied"
	case schemes.Approved:
		return "approved"
	case schemes.NotApplied:
		return "notApplied"
	}
	return schemes.StatusText(s)
}
