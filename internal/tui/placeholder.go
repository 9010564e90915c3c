package tui

import (
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/kisan/internal/router"
)

// placeholderModel renders the pages that are not built yet.
type placeholderModel struct {
	env    *env
	screen router.Screen
}

func newPlaceholderModel(e *env, screen router.Screen) placeholderModel {
	return placeholderModel{env: e, screen: screen}
}

func (m placeholderModel) Init() tea.Cmd { return nil }

func (m placeholderModel) Update(tea.Msg) (screenModel, tea.Cmd) { return m, nil }

func (m placeholderModel) Keys() help.KeyMap { return keyMap{} }

func (m placeholderModel) Capturing() bool { return false }

func (m placeholderModel) View() string {
	width := contentWidth(m.env.width, m.env.state().SidebarOpen)
	body := lipgloss.JoinVertical(lipgloss.Center,
		RenderTitle(router.Title(m.screen)),
		"🚧",
		"",
		lipgloss.NewStyle().Bold(true).Render(m.env.t("comingSoon")),
		MutedStyle.Render(m.env.t("featureUnderDevelopment")),
	)
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, "\n"+body)
}
