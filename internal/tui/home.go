package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/kisan/internal/calendar"
	"github.com/muurk/kisan/internal/crops"
	"github.com/muurk/kisan/internal/router"
)

// Crops shown on the home screen before the add button.
const homeCropLimit = 5

type homeAction struct {
	icon   string
	label  string // translation key
	screen router.Screen
}

// The first action is the "add" button next to the crops; the last is
// "check now" on the crop health card.
var homeActions = []homeAction{
	{"➕", "addCrop", router.ScreenAddCrops},
	{"📷", "diagnosePlant", router.ScreenCropHealth},
	{"🎤", "askQuestion", router.ScreenVoiceInput},
	{"📈", "marketPrices", router.ScreenMarket},
	{"🏛️", "govSchemes", router.ScreenGovernmentSchemes},
	{"📅", "cropCalendar", router.ScreenCropCalendar},
	{"🔍", "checkNow", router.ScreenCropHealth},
}

type homeModel struct {
	env    *env
	cursor int
}

func newHomeModel(e *env) homeModel {
	return homeModel{env: e, cursor: 1}
}

func (m homeModel) Init() tea.Cmd { return nil }

func (m homeModel) Update(msg tea.Msg) (screenModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, keyUp, keyLeft):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, keyDown, keyRight, keyTab):
		if m.cursor < len(homeActions)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, keyEnter):
		return m, navigate(homeActions[m.cursor].screen)
	}
	return m, nil
}

func (m homeModel) Keys() help.KeyMap {
	return keyMap{keyUp, keyDown, keyEnter}
}

func (m homeModel) Capturing() bool { return false }

func (m homeModel) View() string {
	st := m.env.state()
	width := contentWidth(m.env.width, st.SidebarOpen)

	var b strings.Builder
	b.WriteString(RenderTitle("👋 " + m.env.t("welcomeBack")))
	if id := st.ShortUserID(); id != "" {
		b.WriteString("\n")
		b.WriteString(MutedStyle.Render(fmt.Sprintf("%s: %s", m.env.t("userId"), id)))
	}
	b.WriteString("\n")

	// Crops row
	b.WriteString(SectionStyle.Render(m.env.t("yourCrops")))
	b.WriteString("\n")
	shown := st.SelectedCrops
	if len(shown) > homeCropLimit {
		shown = shown[:homeCropLimit]
	}
	chips := make([]string, 0, len(shown)+1)
	for _, id := range shown {
		name := id
		if c, ok := crops.Lookup(id); ok {
			name = m.env.t(c.NameKey)
		}
		chips = append(chips, CardStyle.Render(crops.Emoji(id)+" "+name))
	}
	chips = append(chips, m.actionCard(0))
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, chips...))
	b.WriteString("\n")

	// Quick actions
	b.WriteString(SectionStyle.Render(m.env.t("quickActions")))
	b.WriteString("\n")
	for i := 1; i < len(homeActions)-1; i++ {
		a := homeActions[i]
		b.WriteString(RenderMenuItem(a.icon+" "+m.env.t(a.label), i == m.cursor))
		b.WriteString("\n")
	}

	// Weather note
	w := calendar.CurrentWeather()
	note := fmt.Sprintf("%s\n%s · %d°C · %d%% · %dmm",
		m.env.t("sprayingUnfavorable"), w.Condition, w.TemperatureC, w.HumidityPct, w.RainfallMM)
	b.WriteString("\n")
	b.WriteString(WarningBoxStyle.Width(min(width-2, 60)).Render(note))
	b.WriteString("\n")

	// Crop health card
	health := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Bold(true).Render(m.env.t("cropHealthStatus")),
		lipgloss.NewStyle().Foreground(PrimaryColor).Render("✓ "+m.env.t("overallHealthy")),
		MutedStyle.Render(m.env.t("lastCheckDesc")),
		m.actionLabel(len(homeActions)-1),
	)
	b.WriteString(InfoBoxStyle.Width(min(width-2, 60)).Render(health))

	return b.String()
}

func (m homeModel) actionLabel(i int) string {
	a := homeActions[i]
	return RenderMenuItem(a.icon+" "+m.env.t(a.label), i == m.cursor)
}

func (m homeModel) actionCard(i int) string {
	a := homeActions[i]
	style := CardStyle
	if i == m.cursor {
		style = FocusedCardStyle
	}
	return style.Render(a.icon + " " + m.env.t(a.label))
}
