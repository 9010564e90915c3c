package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/muurk/kisan/internal/diagnosis"
	"github.com/muurk/kisan/internal/logging"
	"github.com/muurk/kisan/internal/ui"
)

// diagnosisMsg carries the answer to analysis number seq.
type diagnosisMsg struct {
	seq  int
	text string
	err  error
}

// cropHealthKeyMap defines key bindings for the crop health screen
type cropHealthKeyMap struct {
	Load    key.Binding
	Ask     key.Binding
	Focus   key.Binding
	Listen  key.Binding
	Another key.Binding
	Blur    key.Binding
}

// Input focus on the crop health screen
const (
	focusPath = iota
	focusQuestion
	focusNone
)

// cropHealthModel loads a photo, sends it for analysis and shows the
// diagnosis.
type cropHealthModel struct {
	env *env

	path     textinput.Model
	question textinput.Model
	focus    int

	image     *diagnosis.Image
	analyzing bool
	// seq numbers the analyses so a late answer for a discarded image is
	// dropped.
	seq    int
	result string
	failed bool

	listening bool
	spinner   spinner.Model
	keys      cropHealthKeyMap
}

func newCropHealthModel(e *env) cropHealthModel {
	path := textinput.New()
	path.Placeholder = "~/Pictures/leaf.jpg"
	path.Prompt = "📷 "
	path.CharLimit = 1024
	path.Focus()

	question := textinput.New()
	question.Placeholder = e.t("questionPlaceholder")
	question.Prompt = "❓ "
	question.CharLimit = 300

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	return cropHealthModel{
		env:      e,
		path:     path,
		question: question,
		focus:    focusPath,
		spinner:  s,
		keys: cropHealthKeyMap{
			Load: key.NewBinding(
				key.WithKeys("enter"),
				key.WithHelp("enter", "upload"),
			),
			Ask: key.NewBinding(
				key.WithKeys("enter"),
				key.WithHelp("enter", "ask"),
			),
			Focus: key.NewBinding(
				key.WithKeys("tab"),
				key.WithHelp("tab", "switch field"),
			),
			Listen: key.NewBinding(
				key.WithKeys("ctrl+l"),
				key.WithHelp("ctrl+l", "voice"),
			),
			Another: key.NewBinding(
				key.WithKeys("ctrl+n"),
				key.WithHelp("ctrl+n", "analyze another"),
			),
			Blur: key.NewBinding(
				key.WithKeys("esc"),
				key.WithHelp("esc", "leave input"),
			),
		},
	}
}

func (m cropHealthModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m cropHealthModel) Capturing() bool {
	return m.focus != focusNone
}

func (m cropHealthModel) Keys() help.KeyMap {
	switch m.focus {
	case focusPath:
		return keyMap{m.keys.Load, m.keys.Focus, m.keys.Another, m.keys.Blur}
	case focusQuestion:
		return keyMap{m.keys.Ask, m.keys.Focus, m.keys.Listen, m.keys.Another, m.keys.Blur}
	}
	return keyMap{m.keys.Focus, m.keys.Listen, m.keys.Another}
}

func (m cropHealthModel) Update(msg tea.Msg) (screenModel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.analyzing && !m.listening {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case diagnosisMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.analyzing = false
		m.failed = msg.err != nil
		if msg.err != nil {
			logging.Debug("Crop analysis failed", zap.Error(msg.err))
			m.result = msg.text
		} else {
			m.result = ui.RenderMarkdown(msg.text, contentWidth(m.env.width, m.env.state().SidebarOpen), true)
		}
		return m, nil

	case listenDoneMsg:
		if msg.owner != "crophealth" {
			return m, nil
		}
		m.listening = false
		if msg.err != nil {
			return m, speechFailed(m.env, msg.err)
		}
		m.question.SetValue(msg.text)
		m.question.CursorEnd()
		cmd := m.setFocus(focusQuestion)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateInputs(msg)
}

func (m cropHealthModel) handleKey(msg tea.KeyMsg) (screenModel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Another):
		return m.reset()

	case key.Matches(msg, m.keys.Focus):
		next := focusQuestion
		if m.focus == focusQuestion {
			next = focusPath
		}
		cmd := m.setFocus(next)
		return m, cmd

	case key.Matches(msg, m.keys.Listen):
		if m.listening {
			return m, nil
		}
		cmd := listen(m.env, "crophealth")
		if cmd == nil {
			return m, alert(m.env.t("speechUnsupported"))
		}
		m.listening = true
		return m, tea.Batch(cmd, m.spinner.Tick)

	case key.Matches(msg, m.keys.Blur) && m.focus != focusNone:
		m.setFocus(focusNone)
		return m, nil

	case key.Matches(msg, keyEnter) && m.focus == focusPath:
		img, err := diagnosis.LoadImage(m.path.Value())
		if err != nil {
			return m, alert(err.Error())
		}
		m.image = img
		m.result = ""
		return m.analyze()

	case key.Matches(msg, keyEnter) && m.focus == focusQuestion:
		if m.image == nil {
			return m, alert(diagnosis.NoImageText)
		}
		return m.analyze()
	}

	return m.updateInputs(msg)
}

func (m cropHealthModel) updateInputs(msg tea.Msg) (screenModel, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case focusPath:
		m.path, cmd = m.path.Update(msg)
	case focusQuestion:
		m.question, cmd = m.question.Update(msg)
	}
	return m, cmd
}

func (m *cropHealthModel) setFocus(f int) tea.Cmd {
	m.focus = f
	m.path.Blur()
	m.question.Blur()
	switch f {
	case focusPath:
		return m.path.Focus()
	case focusQuestion:
		return m.question.Focus()
	}
	return nil
}

// analyze sends the loaded image with the current question. A running
// analysis is superseded.
func (m cropHealthModel) analyze() (screenModel, tea.Cmd) {
	m.seq++
	m.analyzing = true
	m.failed = false
	m.result = ""

	seq := m.seq
	img := m.image
	question := strings.TrimSpace(m.question.Value())
	a := m.env.assistant
	ctx := m.env.ctx
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		text, err := diagnosis.Analyze(ctx, a, img, question)
		return diagnosisMsg{seq: seq, text: text, err: err}
	})
}

// reset clears the image, the result and the question.
func (m cropHealthModel) reset() (screenModel, tea.Cmd) {
	m.seq++
	m.image = nil
	m.analyzing = false
	m.result = ""
	m.failed = false
	m.path.Reset()
	m.question.Reset()
	cmd := m.setFocus(focusPath)
	return m, cmd
}

func (m cropHealthModel) View() string {
	var b strings.Builder
	b.WriteString(RenderTitle("🌿 " + m.env.t("identifyCropProblem")))
	b.WriteString("\n")
	b.WriteString(RenderSubtitle(m.env.t("cropHealthDesc")))
	b.WriteString("\n\n")

	pathStyle := CardStyle
	if m.focus == focusPath {
		pathStyle = FocusedCardStyle
	}
	b.WriteString(m.env.t("uploadImage"))
	b.WriteString("\n")
	b.WriteString(pathStyle.Render(m.path.View()))
	b.WriteString("\n")
	if m.image != nil {
		b.WriteString(MutedStyle.Render("✓ " + m.image.Name() + " (" + m.image.MIME + ")"))
	} else {
		b.WriteString(MutedStyle.Render(m.env.t("noImageSelected")))
	}
	b.WriteString("\n\n")

	questionStyle := CardStyle
	if m.focus == focusQuestion {
		questionStyle = FocusedCardStyle
	}
	b.WriteString(m.env.t("askSpecificQuestion"))
	if m.listening {
		b.WriteString("  " + m.spinner.View() + " " + WarningTextStyle.Render(m.env.t("listening")))
	}
	b.WriteString("\n")
	b.WriteString(questionStyle.Render(m.question.View()))
	b.WriteString("\n\n")

	switch {
	case m.analyzing:
		b.WriteString(m.spinner.View() + " " + m.env.t("analyzingCrop"))
	case m.failed:
		b.WriteString(ErrorBoxStyle.Render(m.result))
	case m.result != "":
		b.WriteString(SectionStyle.Render("🩺 " + m.env.t("diagnosisAndTreatment")))
		b.WriteString("\n")
		b.WriteString(m.result)
	default:
		b.WriteString(InfoBoxStyle.Render(strings.Join([]string{
			m.env.t("bestResults"),
			m.env.t("instruction1"),
			m.env.t("instruction2"),
			m.env.t("instruction3"),
			m.env.t("instruction4"),
			m.env.t("instruction5"),
		}, "\n")))
	}
	return b.String()
}
