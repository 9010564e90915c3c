package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// splashModel shows the branding while the store initializes.
type splashModel struct {
	env     *env
	spinner spinner.Model
}

func newSplashModel(e *env) splashModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle
	return splashModel{env: e, spinner: s}
}

// Init starts the spinner and the initialization.
func (m splashModel) Init() tea.Cmd {
	st := m.env.store
	ctx := m.env.ctx
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return initDoneMsg{err: st.InitializeApp(ctx)}
	})
}

func (m splashModel) Update(msg tea.Msg) (screenModel, tea.Cmd) {
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

func (m splashModel) View() string {
	width := contentWidth(m.env.width, false)
	body := lipgloss.JoinVertical(lipgloss.Center,
		"🌱",
		"",
		RenderTitle(m.env.t("appTitle")),
		RenderSubtitle(m.env.t("appSubtitle")),
		"",
		m.spinner.View()+" "+MutedStyle.Render(m.env.t("loading")),
	)
	if msg := m.env.state().Error; msg != "" {
		body = lipgloss.JoinVertical(lipgloss.Center, body, "", ErrorBoxStyle.Render(msg))
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, "\n\n"+body)
}

func (m splashModel) Keys() help.KeyMap { return keyMap{} }

func (m splashModel) Capturing() bool { return false }
