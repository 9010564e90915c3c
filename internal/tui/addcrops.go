package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/kisan/internal/crops"
	"github.com/muurk/kisan/internal/router"
)

var keySaveCrops = key.NewBinding(
	key.WithKeys("enter"),
	key.WithHelp("enter", "save"),
)

// addCropsModel edits the crop selection after onboarding.
type addCropsModel struct {
	env       *env
	selection *crops.Selection
	cursor    int
}

func newAddCropsModel(e *env) addCropsModel {
	return addCropsModel{
		env:       e,
		selection: crops.NewSelection(e.state().SelectedCrops),
	}
}

func (m addCropsModel) Init() tea.Cmd { return nil }

func (m addCropsModel) Capturing() bool { return false }

func (m addCropsModel) Keys() help.KeyMap {
	return keyMap{keyUp, keyDown, keyLeft, keyRight, keyToggle, keySaveCrops}
}

func (m addCropsModel) Update(msg tea.Msg) (screenModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	n := len(crops.Catalog())
	switch {
	case key.Matches(keyMsg, keyLeft):
		m.cursor = max(0, m.cursor-1)
	case key.Matches(keyMsg, keyRight):
		m.cursor = min(n-1, m.cursor+1)
	case key.Matches(keyMsg, keyUp):
		if m.cursor-cropGridColumns >= 0 {
			m.cursor -= cropGridColumns
		}
	case key.Matches(keyMsg, keyDown):
		if m.cursor+cropGridColumns < n {
			m.cursor += cropGridColumns
		}
	case key.Matches(keyMsg, keyToggle):
		m.selection.Toggle(crops.Catalog()[m.cursor].ID)
	case key.Matches(keyMsg, keySaveCrops):
		if err := m.env.store.SetCrops(m.selection.IDs()); err != nil {
			return m, alert(err.Error())
		}
		return m, navigate(router.ScreenHome)
	}
	return m, nil
}

func (m addCropsModel) View() string {
	var b strings.Builder
	b.WriteString(RenderTitle("🌾 " + m.env.t("selectCrops")))
	b.WriteString("\n")
	b.WriteString(RenderSubtitle(m.env.t("selectCropsDesc")))
	b.WriteString("\n\n")
	b.WriteString(renderCropGrid(m.env.language(), m.selection, m.cursor))
	b.WriteString("\n\n")
	b.WriteString(MutedStyle.Render(fmt.Sprintf("%d/%d", m.selection.Len(), crops.MaxSelected)))
	return b.String()
}
