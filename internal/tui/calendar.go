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
)

var keyNextCrop = key.NewBinding(
	key.WithKeys("c"),
	key.WithHelp("c", "next crop"),
)

// calendarModel shows the growth plan of one crop, one week at a time.
type calendarModel struct {
	env *env

	// options are the crops the farmer can switch between.
	options []string
	crop    int
	week    int
}

func newCalendarModel(e *env) calendarModel {
	selected := e.state().SelectedCrops
	options := append([]string{}, selected...)
	if len(options) == 0 {
		options = []string{calendar.CropFor(nil)}
	}
	return calendarModel{env: e, options: options, week: 1}
}

func (m calendarModel) Init() tea.Cmd { return nil }

func (m calendarModel) plan() (*calendar.Plan, bool) {
	return calendar.Lookup(m.options[m.crop])
}

func (m calendarModel) Update(msg tea.Msg) (screenModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, keyLeft):
		if plan, ok := m.plan(); ok {
			m.week = plan.ClampWeek(m.week - 1)
		}
	case key.Matches(keyMsg, keyRight):
		if plan, ok := m.plan(); ok {
			m.week = plan.ClampWeek(m.week + 1)
		}
	case key.Matches(keyMsg, keyNextCrop):
		m.crop = (m.crop + 1) % len(m.options)
		m.week = 1
	}
	return m, nil
}

func (m calendarModel) Keys() help.KeyMap {
	if len(m.options) > 1 {
		return keyMap{keyLeft, keyRight, keyNextCrop}
	}
	return keyMap{keyLeft, keyRight}
}

func (m calendarModel) Capturing() bool { return false }

func (m calendarModel) View() string {
	var b strings.Builder
	b.WriteString(RenderTitle("📅 " + m.env.t("cropCalendar")))
	b.WriteString("\n")
	b.WriteString(RenderSubtitle(m.env.t("calendarDesc")))
	b.WriteString("\n\n")

	id := m.options[m.crop]
	name := id
	if c, ok := crops.Lookup(id); ok {
		name = m.env.t(c.NameKey)
	}
	b.WriteString(MutedStyle.Render(m.env.t("selectedCrop")))
	b.WriteString("\n")
	b.WriteString(FocusedCardStyle.Render(crops.Emoji(id) + " " + name))
	b.WriteString("\n")

	plan, ok := m.plan()
	if !ok {
		b.WriteString("\n")
		b.WriteString(InfoBoxStyle.Render(m.env.t("noCalendar")))
		return b.String()
	}

	phase, inPhase := plan.PhaseAt(m.week)
	if inPhase {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(phase.Color)).Render("●")
		b.WriteString(CardStyle.Render(dot + " " + lipgloss.NewStyle().Bold(true).Render(phase.Name) +
			"\n" + MutedStyle.Render(fmt.Sprintf("Week %d of %d", m.week, plan.TotalWeeks))))
		b.WriteString("\n")
	}

	// Weather and tasks side by side
	w := calendar.CurrentWeather()
	weather := []string{
		lipgloss.NewStyle().Bold(true).Render(m.env.t("currentWeather")),
		fmt.Sprintf("🌡  %s: %d°C", m.env.t("temperature"), w.TemperatureC),
		fmt.Sprintf("💧 %s: %d%%", m.env.t("humidity"), w.HumidityPct),
		fmt.Sprintf("☀  %s: %dmm", m.env.t("rainfall"), w.RainfallMM),
	}
	if inPhase {
		weather = append(weather, "", WarningTextStyle.Render("⚠ "+calendar.Recommendation(w, phase)))
	}

	tasks := []string{lipgloss.NewStyle().Bold(true).Render(m.env.t("weeklyTasks"))}
	for _, task := range plan.TasksFor(m.week) {
		tasks = append(tasks, "• "+task)
	}

	half := max(24, (contentWidth(m.env.width, m.env.state().SidebarOpen)-4)/2)
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		InfoBoxStyle.Width(half).Render(strings.Join(weather, "\n")),
		" ",
		CardStyle.Width(half).Render(strings.Join(tasks, "\n")),
	))
	b.WriteString("\n")

	b.WriteString(SectionStyle.Render(m.env.t("cropTimeline")))
	b.WriteString("\n")
	b.WriteString(m.timeline(plan))
	b.WriteString("\n")

	b.WriteString(SectionStyle.Render(m.env.t("growthPhases")))
	b.WriteString("\n")
	for _, ph := range plan.Phases {
		if len(ph.Weeks) == 0 {
			continue
		}
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(ph.Color)).Render("●")
		weeks := fmt.Sprintf("%d-%d", ph.Weeks[0], ph.Weeks[len(ph.Weeks)-1])
		if len(ph.Weeks) == 1 {
			weeks = fmt.Sprint(ph.Weeks[0])
		}
		b.WriteString(fmt.Sprintf("%s %s %s\n", dot, ph.Name, MutedStyle.Render("(weeks "+weeks+")")))
	}
	return b.String()
}

// timeline renders one cell per week, colored by phase, with the current
// week highlighted.
func (m calendarModel) timeline(plan *calendar.Plan) string {
	cells := make([]string, 0, plan.TotalWeeks)
	for week := 1; week <= plan.TotalWeeks; week++ {
		label := fmt.Sprintf("%2d", week)
		style := lipgloss.NewStyle().Padding(0, 0, 0, 1)
		if ph, ok := plan.PhaseAt(week); ok {
			style = style.Foreground(lipgloss.Color(ph.Color))
		}
		if week == m.week {
			style = style.Reverse(true).Bold(true)
		}
		cells = append(cells, style.Render(label))
	}
	return strings.Join(cells, "")
}
