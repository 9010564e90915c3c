package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/muurk/kisan/internal/assistant"
	"github.com/muurk/kisan/internal/logging"
	"github.com/muurk/kisan/internal/market"
	"github.com/muurk/kisan/internal/router"
	"github.com/muurk/kisan/internal/store"
)

// Deps are the services the interface drives.
type Deps struct {
	Store     *store.Store
	Assistant assistant.Assistant
	Platform  Platform
	// Quotes generates market prices. Defaults to market.NewSource().
	Quotes *market.Source
}

// shellKeyMap defines the bindings available once onboarding is done
type shellKeyMap struct {
	Menu key.Binding
	Home key.Binding
	Quit key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k shellKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Menu, k.Home, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k shellKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Menu, k.Home, k.Quit}}
}

// combinedKeys shows the screen's bindings followed by the shell's.
type combinedKeys struct {
	screen help.KeyMap
	shell  help.KeyMap
}

func (c combinedKeys) ShortHelp() []key.Binding {
	var out []key.Binding
	if c.screen != nil {
		out = append(out, c.screen.ShortHelp()...)
	}
	if c.shell != nil {
		out = append(out, c.shell.ShortHelp()...)
	}
	return out
}

func (c combinedKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{c.ShortHelp()}
}

// AppModel is the top-level coordinator model that follows the store and
// switches screens.
type AppModel struct {
	CurrentScreen  router.Screen
	PreviousScreen router.Screen

	screen  screenModel
	sidebar sidebarModel
	env     *env
	state   store.State

	// Alert is the text of the open blocking alert, if any.
	Alert string

	Help      help.Model
	ShellKeys shellKeyMap
	AlertKeys keyMap
}

// NewAppModel creates the coordinator. The first screen is resolved from the
// current store state, which is the splash screen on a fresh start.
func NewAppModel(ctx context.Context, deps Deps) AppModel {
	quotes := deps.Quotes
	if quotes == nil {
		quotes = market.NewSource()
	}

	e := &env{
		ctx:       ctx,
		store:     deps.Store,
		assistant: deps.Assistant,
		platform:  deps.Platform,
		quotes:    quotes,
		width:     DefaultWidth,
		height:    DefaultHeight,
	}

	m := AppModel{
		env:     e,
		sidebar: newSidebarModel(e),
		Help:    help.New(),
		ShellKeys: shellKeyMap{
			Menu: key.NewBinding(
				key.WithKeys("ctrl+b"),
				key.WithHelp("ctrl+b", "menu"),
			),
			Home: key.NewBinding(
				key.WithKeys("esc"),
				key.WithHelp("esc", "home"),
			),
			Quit: key.NewBinding(
				key.WithKeys("q", "ctrl+c"),
				key.WithHelp("q", "quit"),
			),
		},
		AlertKeys: keyMap{
			key.NewBinding(
				key.WithKeys("enter", "esc"),
				key.WithHelp("enter", "ok"),
			),
		},
	}

	m, _ = m.sync(deps.Store.State())
	return m
}

// Init initializes the current screen
func (m AppModel) Init() tea.Cmd {
	if m.screen == nil {
		return nil
	}
	return m.screen.Init()
}

// shellActive reports whether the header session, sidebar and navigation
// shortcuts are available.
func (m AppModel) shellActive() bool {
	return !m.state.Loading && m.state.OnboardingCompleted
}

// Update handles all messages and routes them to the appropriate screen
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.env.width = msg.Width
		m.env.height = msg.Height
		m.Help.Width = msg.Width - 6
		return m, nil

	case stateMsg:
		// Notifications may arrive late; the store is the source of truth.
		return m.sync(m.env.store.State())

	case initDoneMsg:
		if msg.err != nil && !errors.Is(msg.err, store.ErrAlreadyInitialized) {
			if errors.Is(msg.err, context.Canceled) {
				return m, tea.Quit
			}
			logging.Error("Initialization failed", zap.Error(msg.err))
			m.env.store.SetError(msg.err.Error())
		}
		return m.sync(m.env.store.State())

	case navigateMsg:
		return m.navigate(msg.screen)

	case alertMsg:
		m.Alert = msg.text
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.Alert != "" {
			if key.Matches(msg, m.AlertKeys...) {
				m.Alert = ""
			}
			return m, nil
		}
		if m.shellActive() {
			if model, cmd, handled := m.handleShellKey(msg); handled {
				return model, cmd
			}
		}
	}

	return m.updateCurrentScreen(msg)
}

// handleShellKey handles the sidebar and the navigation shortcuts.
func (m AppModel) handleShellKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	if key.Matches(msg, m.ShellKeys.Menu) {
		m.env.store.ToggleSidebar()
		model, cmd := m.sync(m.env.store.State())
		return model, cmd, true
	}

	if m.state.SidebarOpen {
		if key.Matches(msg, keyBack) {
			m.env.store.SetSidebarOpen(false)
			model, cmd := m.sync(m.env.store.State())
			return model, cmd, true
		}
		var cmd tea.Cmd
		m.sidebar, cmd = m.sidebar.Update(msg)
		return m, cmd, true
	}

	if m.screen != nil && m.screen.Capturing() {
		return m, nil, false
	}

	switch {
	case key.Matches(msg, m.ShellKeys.Quit):
		return m, tea.Quit, true
	case key.Matches(msg, m.ShellKeys.Home) && m.CurrentScreen != router.ScreenHome:
		model, cmd := m.navigate(router.ScreenHome)
		return model, cmd, true
	}
	return m, nil, false
}

// updateCurrentScreen routes updates to the currently active screen
func (m AppModel) updateCurrentScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.screen == nil {
		return m, nil
	}
	var cmd tea.Cmd
	m.screen, cmd = m.screen.Update(msg)
	return m, cmd
}

// navigate records the screen in the store and follows it.
func (m AppModel) navigate(screen router.Screen) (AppModel, tea.Cmd) {
	if err := m.env.store.SetScreen(screen); err != nil {
		logging.Warn("Navigation refused",
			zap.String("screen", string(screen)),
			zap.Error(err))
		return m, nil
	}
	if m.state.SidebarOpen {
		m.env.store.SetSidebarOpen(false)
	}
	return m.sync(m.env.store.State())
}

// sync adopts a store state and switches screens when the resolved screen
// changed.
func (m AppModel) sync(st store.State) (AppModel, tea.Cmd) {
	m.state = st
	target := router.Resolve(st.Loading, st.OnboardingCompleted, router.PathFor(st.CurrentScreen))
	if m.screen != nil && target == m.CurrentScreen {
		return m, nil
	}
	return m.transitionTo(target)
}

// transitionTo builds the model of a screen and initializes it
func (m AppModel) transitionTo(screen router.Screen) (AppModel, tea.Cmd) {
	m.PreviousScreen = m.CurrentScreen
	m.CurrentScreen = screen

	switch screen {
	case router.ScreenSplash:
		m.screen = newSplashModel(m.env)
	case router.ScreenOnboarding:
		m.screen = newOnboardingModel(m.env)
	case router.ScreenHome:
		m.screen = newHomeModel(m.env)
	case router.ScreenVoiceInput:
		m.screen = newChatModel(m.env)
	case router.ScreenCropHealth:
		m.screen = newCropHealthModel(m.env)
	case router.ScreenMarket:
		m.screen = newMarketModel(m.env)
	case router.ScreenCropCalendar:
		m.screen = newCalendarModel(m.env)
	case router.ScreenGovernmentSchemes:
		m.screen = newSchemesModel(m.env)
	case router.ScreenAddCrops:
		m.screen = newAddCropsModel(m.env)
	default:
		m.screen = newPlaceholderModel(m.env, screen)
	}

	logging.LogStateChange("screen", string(m.CurrentScreen))
	return m, m.screen.Init()
}

// View renders the current screen inside the application container
func (m AppModel) View() string {
	if m.screen == nil {
		return ""
	}

	info := HeaderInfo{
		Title:    m.env.t("appTitle"),
		Subtitle: m.env.t("appSubtitle"),
	}

	content := m.screen.View()
	var keys help.KeyMap = m.screen.Keys()

	if m.shellActive() {
		info.Language = m.state.SelectedLanguage
		if id := m.state.ShortUserID(); id != "" {
			info.UserID = fmt.Sprintf("%s: %s", m.env.t("userId"), id)
		}
		if m.state.SidebarOpen {
			content = lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar.View(m.CurrentScreen), " ", content)
			keys = m.sidebar.Keys()
		}
		keys = combinedKeys{screen: keys, shell: m.ShellKeys}
	}

	if m.Alert != "" {
		box := AlertStyle.
			Width(SafeModalWidth(60, m.env.width)).
			Render(m.Alert + "\n\n" + m.Help.View(m.AlertKeys))
		return RenderModal(box, m.env.width, m.env.height)
	}

	return RenderApplicationContainer(info, content, m.Help.View(keys), m.env.width, m.env.height)
}

// Run starts the program and blocks until the user quits or ctx is done.
// Store notifications are forwarded to the program for the duration.
func Run(ctx context.Context, m AppModel) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	unsubscribe := m.env.store.Subscribe(func(store.State) {
		// Subscribers run synchronously inside Update; Send would block.
		go p.Send(stateMsg{})
	})
	defer unsubscribe()

	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
