package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/kisan/internal/router"
)

type sidebarItem struct {
	icon   string
	label  string // translation key
	screen router.Screen
}

// Navigation entries, then the quick actions after sidebarQuickStart.
var sidebarItems = []sidebarItem{
	{"🏠", "home", router.ScreenHome},
	{"👥", "community", router.ScreenCommunity},
	{"📈", "market", router.ScreenMarket},
	{"👤", "profile", router.ScreenProfile},
	{"📷", "diagnosePlant", router.ScreenCropHealth},
	{"🎤", "askQuestion", router.ScreenVoiceInput},
}

const sidebarQuickStart = 4

type sidebarModel struct {
	env    *env
	cursor int
}

func newSidebarModel(e *env) sidebarModel {
	return sidebarModel{env: e}
}

func (m sidebarModel) Keys() help.KeyMap {
	return keyMap{keyUp, keyDown, keyEnter, keyBack}
}

func (m sidebarModel) Update(msg tea.Msg) (sidebarModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, keyUp):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, keyDown):
		if m.cursor < len(sidebarItems)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, keyEnter):
		return m, navigate(sidebarItems[m.cursor].screen)
	}
	return m, nil
}

// View renders the menu. The entry of the current screen is marked.
func (m sidebarModel) View(current router.Screen) string {
	var b strings.Builder
	for i, item := range sidebarItems {
		if i == sidebarQuickStart {
			b.WriteString("\n")
			b.WriteString(MutedStyle.Render(m.env.t("quickActions")))
			b.WriteString("\n")
		}
		label := item.icon + " " + m.env.t(item.label)
		if item.screen == current {
			label += " •"
		}
		b.WriteString(RenderMenuItem(label, i == m.cursor))
		b.WriteString("\n")
	}
	return SidebarStyle.Render(b.String())
}
