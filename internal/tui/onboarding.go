package tui

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/kisan/internal/crops"
	"github.com/muurk/kisan/internal/i18n"
	"github.com/muurk/kisan/internal/onboarding"
	"github.com/muurk/kisan/internal/store"
)

// Columns of the crop picker grid.
const cropGridColumns = 3

type featurePage struct {
	icon  string
	title string
	desc  string
}

var featurePages = [onboarding.FeaturePages]featurePage{
	{"🔬", "instantDiseaseDetection", "diseaseDetectionDesc"},
	{"🛒", "greatProductDeals", "productDealsDesc"},
	{"🤝", "supportiveCommunity", "communityDesc"},
}

type farmingOption struct {
	icon  string
	kind  store.FarmingType
	title string
	desc  string
}

var farmingCards = map[store.FarmingType]farmingOption{
	store.FarmingPots:   {icon: "🪴", title: "growInPots", desc: "potsDesc"},
	store.FarmingGarden: {icon: "🏡", title: "growInGarden", desc: "gardenDesc"},
	store.FarmingFields: {icon: "🚜", title: "growInFields", desc: "fieldsDesc"},
}

// farmingOptions are the cards of the farming type step, in store order.
var farmingOptions = func() []farmingOption {
	var opts []farmingOption
	for _, kind := range store.FarmingTypes() {
		opt := farmingCards[kind]
		opt.kind = kind
		opts = append(opts, opt)
	}
	return opts
}()

// permissionDoneMsg reports the end of a permission request.
type permissionDoneMsg struct {
	err error
}

// onboardingKeyMap defines key bindings for the onboarding walkthrough
type onboardingKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Left   key.Binding
	Right  key.Binding
	Toggle key.Binding
	Next   key.Binding
	Allow  key.Binding
	Save   key.Binding
	Skip   key.Binding
}

// onboardingModel drives an onboarding.Flow.
type onboardingModel struct {
	env  *env
	flow *onboarding.Flow

	cursor int
	// busy is set while a permission request runs; the flow is not touched
	// until it reports back.
	busy bool

	spinner  spinner.Model
	progress progress.Model
	keys     onboardingKeyMap
}

func newOnboardingModel(e *env) onboardingModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	p := progress.New(progress.WithSolidFill(string(PrimaryColor)), progress.WithoutPercentage())
	p.Width = 40

	flow := onboarding.New(e.store, e.platform)
	cursor := max(0, slices.Index(i18n.Languages(), flow.Language()))

	return onboardingModel{
		env:      e,
		flow:     flow,
		cursor:   cursor,
		spinner:  s,
		progress: p,
		keys: onboardingKeyMap{
			Up:     keyUp,
			Down:   keyDown,
			Left:   keyLeft,
			Right:  keyRight,
			Toggle: keyToggle,
			Next: key.NewBinding(
				key.WithKeys("enter", "right", "l"),
				key.WithHelp("enter", "next"),
			),
			Allow: key.NewBinding(
				key.WithKeys("enter", "a"),
				key.WithHelp("enter", "allow"),
			),
			Save: key.NewBinding(
				key.WithKeys("enter"),
				key.WithHelp("enter", "save"),
			),
			Skip: key.NewBinding(
				key.WithKeys("s"),
				key.WithHelp("s", "skip"),
			),
		},
	}
}

func (m onboardingModel) Init() tea.Cmd {
	return nil
}

// language is the language the walkthrough is shown in: the pending choice.
func (m onboardingModel) language() string {
	return m.flow.Language()
}

func (m onboardingModel) t(key string) string {
	return i18n.T(m.language(), key)
}

func (m onboardingModel) Update(msg tea.Msg) (screenModel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case permissionDoneMsg:
		m.busy = false
		m.cursor = 0
		if msg.err != nil {
			return m, alert(msg.err.Error())
		}
		return m, refresh

	case tea.KeyMsg:
		if m.busy || m.flow.Done() {
			return m, nil
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m onboardingModel) handleKey(msg tea.KeyMsg) (screenModel, tea.Cmd) {
	step := m.flow.Step()

	if m.flow.CanSkip() && key.Matches(msg, m.keys.Skip) {
		return m.commit(m.flow.Skip(m.env.ctx))
	}

	switch step {
	case onboarding.StepLanguage:
		languages := i18n.Languages()
		switch {
		case key.Matches(msg, m.keys.Up):
			m.cursor = max(0, m.cursor-1)
		case key.Matches(msg, m.keys.Down):
			m.cursor = min(len(languages)-1, m.cursor+1)
		case key.Matches(msg, keyEnter):
			if err := m.flow.SelectLanguage(languages[m.cursor]); err != nil {
				return m, alert(err.Error())
			}
			return m.commit(m.flow.Advance(m.env.ctx))
		}

	case onboarding.StepFeature1, onboarding.StepFeature2, onboarding.StepFeature3:
		if key.Matches(msg, m.keys.Next) {
			return m.commit(m.flow.Advance(m.env.ctx))
		}

	case onboarding.StepPermissionNotify, onboarding.StepPermissionLocation:
		if key.Matches(msg, m.keys.Allow) {
			m.busy = true
			flow := m.flow
			ctx := m.env.ctx
			return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
				return permissionDoneMsg{err: flow.Advance(ctx)}
			})
		}

	case onboarding.StepFarmingType:
		switch {
		case key.Matches(msg, m.keys.Up):
			m.cursor = max(0, m.cursor-1)
		case key.Matches(msg, m.keys.Down):
			m.cursor = min(len(farmingOptions)-1, m.cursor+1)
		case key.Matches(msg, keyEnter):
			if err := m.flow.SelectFarmingType(farmingOptions[m.cursor].kind); err != nil {
				return m, alert(err.Error())
			}
			return m.commit(m.flow.Advance(m.env.ctx))
		}

	case onboarding.StepCropPicker:
		return m.handleCropPicker(msg)
	}

	return m, nil
}

func (m onboardingModel) handleCropPicker(msg tea.KeyMsg) (screenModel, tea.Cmd) {
	catalog := crops.Catalog()
	switch {
	case key.Matches(msg, m.keys.Left):
		m.cursor = max(0, m.cursor-1)
	case key.Matches(msg, m.keys.Right):
		m.cursor = min(len(catalog)-1, m.cursor+1)
	case key.Matches(msg, m.keys.Up):
		if m.cursor-cropGridColumns >= 0 {
			m.cursor -= cropGridColumns
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor+cropGridColumns < len(catalog) {
			m.cursor += cropGridColumns
		}
	case key.Matches(msg, m.keys.Toggle):
		// A full selection ignores further additions.
		_, _ = m.flow.ToggleCrop(catalog[m.cursor].ID)
	case key.Matches(msg, m.keys.Save):
		err := m.flow.SaveCrops(m.env.ctx)
		if errors.Is(err, onboarding.ErrNoCropsSelected) {
			return m, alert(m.t("selectCropsDesc"))
		}
		return m.commit(err)
	}
	return m, nil
}

// commit finishes a synchronous flow operation.
func (m onboardingModel) commit(err error) (screenModel, tea.Cmd) {
	if err != nil {
		return m, alert(err.Error())
	}
	m.cursor = 0
	return m, refresh
}

func (m onboardingModel) Keys() help.KeyMap {
	if m.busy || m.flow.Done() {
		return keyMap{}
	}
	k := m.keys
	switch m.flow.Step() {
	case onboarding.StepLanguage:
		return keyMap{k.Up, k.Down, keyEnter}
	case onboarding.StepFeature1, onboarding.StepFeature2, onboarding.StepFeature3:
		return keyMap{k.Next, k.Skip}
	case onboarding.StepPermissionNotify, onboarding.StepPermissionLocation:
		return keyMap{k.Allow, k.Skip}
	case onboarding.StepFarmingType:
		return keyMap{k.Up, k.Down, keyEnter, k.Skip}
	case onboarding.StepCropPicker:
		return keyMap{k.Up, k.Down, k.Left, k.Right, k.Toggle, k.Save}
	}
	return keyMap{}
}

func (m onboardingModel) Capturing() bool { return false }

func (m onboardingModel) View() string {
	if m.busy {
		return "\n" + m.spinner.View() + " " + MutedStyle.Render(m.t("loading"))
	}
	if m.flow.Done() {
		return ""
	}

	step := m.flow.Step()
	var body string
	switch step {
	case onboarding.StepLanguage:
		body = m.viewLanguage()
	case onboarding.StepFeature1, onboarding.StepFeature2, onboarding.StepFeature3:
		body = m.viewFeature()
	case onboarding.StepPermissionNotify:
		body = m.viewPermission("🔔", "allowNotifications", "notificationDesc")
	case onboarding.StepPermissionLocation:
		body = m.viewPermission("📍", "allowLocation", "locationDesc")
	case onboarding.StepFarmingType:
		body = m.viewFarmingType()
	case onboarding.StepCropPicker:
		body = m.viewCropPicker()
	}

	m.progress.Width = min(40, contentWidth(m.env.width, false))
	bar := m.progress.ViewAs(float64(int(step)+1) / float64(onboarding.TotalSteps))
	counter := MutedStyle.Render(fmt.Sprintf(" %d/%d", int(step)+1, onboarding.TotalSteps))

	return bar + counter + "\n\n" + body
}

func (m onboardingModel) viewLanguage() string {
	var b strings.Builder
	b.WriteString(RenderTitle("🙏 " + m.t("selectLanguage")))
	b.WriteString("\n")
	for i, language := range i18n.Languages() {
		label := language
		if language == m.flow.Language() {
			label += " ✓"
		}
		b.WriteString(RenderMenuItem(label, i == m.cursor))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(MutedStyle.Render(fmt.Sprintf("%s %s %s %s",
		m.t("termsText"), m.t("termsOfUse"), m.t("and"), m.t("privacyPolicy"))))
	return b.String()
}

func (m onboardingModel) viewFeature() string {
	page, _ := m.flow.Position()
	feature := featurePages[page]
	width := contentWidth(m.env.width, false)

	return lipgloss.JoinVertical(lipgloss.Left,
		RenderTitle(feature.icon+"  "+m.t(feature.title)),
		lipgloss.NewStyle().Width(min(width, 70)).Render(m.t(feature.desc)),
		"",
		RenderPagination(page, onboarding.FeaturePages),
	)
}

func (m onboardingModel) viewPermission(icon, title, desc string) string {
	width := contentWidth(m.env.width, false)
	return lipgloss.JoinVertical(lipgloss.Left,
		RenderTitle(icon+"  "+m.t(title)),
		lipgloss.NewStyle().Width(min(width, 70)).Render(m.t(desc)),
		"",
		RenderMenuItem(m.t("allow"), true),
		RenderMenuItem(m.t("skip"), false),
	)
}

func (m onboardingModel) viewFarmingType() string {
	var b strings.Builder
	b.WriteString(RenderTitle(m.t("chooseFarmingType")))
	b.WriteString("\n")
	b.WriteString(RenderSubtitle(m.t("farmingTypeDesc")))
	b.WriteString("\n\n")
	for i, opt := range farmingOptions {
		style := CardStyle
		if i == m.cursor {
			style = FocusedCardStyle
		}
		card := opt.icon + " " + lipgloss.NewStyle().Bold(true).Render(m.t(opt.title)) +
			"\n" + MutedStyle.Render(m.t(opt.desc))
		b.WriteString(style.Render(card))
		b.WriteString("\n")
	}
	return b.String()
}

func (m onboardingModel) viewCropPicker() string {
	var b strings.Builder
	b.WriteString(RenderTitle(m.t("selectCrops")))
	b.WriteString("\n")
	b.WriteString(RenderSubtitle(m.t("selectCropsDesc")))
	b.WriteString("\n\n")
	b.WriteString(renderCropGrid(m.language(), m.flow.Selection(), m.cursor))
	b.WriteString("\n\n")
	b.WriteString(MutedStyle.Render(fmt.Sprintf("%d/%d", m.flow.Selection().Len(), crops.MaxSelected)))
	return b.String()
}

// renderCropGrid renders the catalog as a grid of toggles.
func renderCropGrid(language string, sel *crops.Selection, cursor int) string {
	catalog := crops.Catalog()
	rows := make([]string, 0, (len(catalog)+cropGridColumns-1)/cropGridColumns)
	cell := lipgloss.NewStyle().Width(22)

	for start := 0; start < len(catalog); start += cropGridColumns {
		end := min(start+cropGridColumns, len(catalog))
		cells := make([]string, 0, cropGridColumns)
		for i := start; i < end; i++ {
			c := catalog[i]
			label := c.Emoji + " " + i18n.T(language, c.NameKey)
			cells = append(cells, cell.Render(RenderCheckItem(label, sel.Contains(c.ID), i == cursor)))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
