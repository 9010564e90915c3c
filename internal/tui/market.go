package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/muurk/kisan/internal/crops"
	"github.com/muurk/kisan/internal/logging"
	"github.com/muurk/kisan/internal/market"
	"github.com/muurk/kisan/internal/ui"
)

// insightsMsg carries the assistant's market analysis for a crop.
type insightsMsg struct {
	cropID string
	text   string
	err    error
}

// marketModel shows a simulated quote and the assistant's insights for the
// selected crop.
type marketModel struct {
	env *env

	crops  []crops.Crop
	cursor int

	quote    market.Quote
	loading  bool
	insights string
	failed   bool

	spinner spinner.Model
}

func newMarketModel(e *env) marketModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	m := marketModel{
		env:     e,
		crops:   market.Crops(),
		spinner: s,
	}
	m.load()
	return m
}

func (m marketModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.insightsCmd())
}

func (m marketModel) selected() crops.Crop {
	return m.crops[m.cursor]
}

// load draws a new quote for the selected crop and clears the insights.
func (m *marketModel) load() {
	m.quote = m.env.quotes.Quote(m.selected().ID)
	m.loading = true
	m.insights = ""
	m.failed = false
}

// insightsCmd asks the assistant about the selected crop.
func (m marketModel) insightsCmd() tea.Cmd {
	id := m.selected().ID
	a := m.env.assistant
	ctx := m.env.ctx
	return func() tea.Msg {
		text, err := a.Ask(ctx, market.InsightPrompt(id), nil)
		return insightsMsg{cropID: id, text: text, err: err}
	}
}

// fetch reloads after the selection changed.
func (m *marketModel) fetch() tea.Cmd {
	m.load()
	return tea.Batch(m.spinner.Tick, m.insightsCmd())
}

func (m marketModel) Update(msg tea.Msg) (screenModel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case insightsMsg:
		if msg.cropID != m.selected().ID {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			logging.Debug("Market insights failed", zap.Error(msg.err))
			m.failed = true
			m.insights = market.InsightsUnavailableText
			return m, nil
		}
		m.insights = ui.RenderMarkdown(msg.text, contentWidth(m.env.width, m.env.state().SidebarOpen), true)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keyLeft, keyUp):
			if m.cursor > 0 {
				m.cursor--
				cmd := m.fetch()
				return m, cmd
			}
		case key.Matches(msg, keyRight, keyDown):
			if m.cursor < len(m.crops)-1 {
				m.cursor++
				cmd := m.fetch()
				return m, cmd
			}
		}
	}
	return m, nil
}

func (m marketModel) Keys() help.KeyMap {
	return keyMap{keyLeft, keyRight}
}

func (m marketModel) Capturing() bool { return false }

func (m marketModel) View() string {
	var b strings.Builder
	b.WriteString(RenderTitle("📈 " + m.env.t("marketPrices")))
	b.WriteString("\n")
	b.WriteString(RenderSubtitle(m.env.t("marketDesc")))
	b.WriteString("\n\n")

	b.WriteString(m.env.t("selectCrop"))
	b.WriteString("\n")
	tabs := make([]string, len(m.crops))
	for i, c := range m.crops {
		style := CardStyle
		if i == m.cursor {
			style = FocusedCardStyle
		}
		tabs[i] = style.Render(c.Emoji + " " + m.env.t(c.NameKey))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n")

	q := m.quote
	changeStyle := lipgloss.NewStyle().Foreground(PrimaryColor)
	arrow := "▲"
	if !q.Rising() {
		changeStyle = ErrorTextStyle
		arrow = "▼"
	}
	price := lipgloss.JoinVertical(lipgloss.Left,
		MutedStyle.Render(m.env.t("todaysPrice")),
		lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("₹%d/%s", q.Price, q.Unit))+"  "+
			changeStyle.Render(arrow+" "+q.ChangeText()),
		MutedStyle.Render(fmt.Sprintf("%s: %s", m.env.t("lastUpdated"), q.UpdatedAt.Format("15:04"))),
	)
	stats := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Bold(true).Render(m.env.t("quickStats")),
		fmt.Sprintf("%s: ₹%d", m.env.t("yesterday"), q.Yesterday()),
		fmt.Sprintf("%s: ₹%d", m.env.t("weekHigh"), q.WeekHigh()),
		fmt.Sprintf("%s: ₹%d", m.env.t("weekLow"), q.WeekLow()),
	)
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, CardStyle.Render(price), " ", CardStyle.Render(stats)))
	b.WriteString("\n")

	b.WriteString(SectionStyle.Render("🤖 " + m.env.t("aiMarketInsights")))
	b.WriteString("\n")
	switch {
	case m.loading:
		b.WriteString(m.spinner.View() + " " + m.env.t("loading"))
	case m.failed:
		b.WriteString(ErrorTextStyle.Render(m.insights))
	default:
		b.WriteString(m.insights)
	}
	return b.String()
}
