package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/kisan/internal/assistant"
	"github.com/muurk/kisan/internal/i18n"
	"github.com/muurk/kisan/internal/market"
	"github.com/muurk/kisan/internal/onboarding"
	"github.com/muurk/kisan/internal/platform"
	"github.com/muurk/kisan/internal/router"
	"github.com/muurk/kisan/internal/store"
)

// Platform is the host integration used by the screens.
type Platform interface {
	onboarding.Permissions
	Available(c platform.Capability) bool
	Listen(ctx context.Context, language string) (string, error)
	SpeakAsync(ctx context.Context, text, language string)
}

// screenModel is implemented by every screen. View returns the content only;
// the frame is drawn by AppModel.
type screenModel interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (screenModel, tea.Cmd)
	View() string
	Keys() help.KeyMap
	// Capturing reports whether a text input has focus, in which case the
	// shell's single-letter shortcuts are passed to the screen.
	Capturing() bool
}

// env is shared by the screens of one program.
type env struct {
	ctx       context.Context
	store     *store.Store
	assistant assistant.Assistant
	platform  Platform
	quotes    *market.Source

	width  int
	height int
}

func (e *env) state() store.State {
	return e.store.State()
}

func (e *env) language() string {
	return e.store.State().SelectedLanguage
}

func (e *env) t(key string) string {
	return i18n.T(e.language(), key)
}

// Messages shared between the screens and the coordinator
type (
	// stateMsg tells the coordinator that the store changed.
	stateMsg struct{}

	// navigateMsg asks the coordinator to open a screen.
	navigateMsg struct {
		screen router.Screen
	}

	// alertMsg opens the blocking alert.
	alertMsg struct {
		text string
	}

	initDoneMsg struct {
		err error
	}
)

func navigate(screen router.Screen) tea.Cmd {
	return func() tea.Msg { return navigateMsg{screen: screen} }
}

func alert(text string) tea.Cmd {
	return func() tea.Msg { return alertMsg{text: text} }
}

func refresh() tea.Msg {
	return stateMsg{}
}

// keyMap is a flat help.KeyMap for screens that need nothing fancier.
type keyMap []key.Binding

// ShortHelp returns keybindings to be shown in the mini help view
func (k keyMap) ShortHelp() []key.Binding {
	return k
}

// FullHelp returns keybindings for the expanded help view
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k}
}

// Bindings reused across screens
var (
	keyUp = key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	)
	keyDown = key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	)
	keyLeft = key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/h", "prev"),
	)
	keyRight = key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→/l", "next"),
	)
	keyEnter = key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "select"),
	)
	keyToggle = key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "toggle"),
	)
	keyBack = key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	)
	keyTab = key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "focus"),
	)
)
