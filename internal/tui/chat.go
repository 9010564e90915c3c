package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/muurk/kisan/internal/chat"
	"github.com/muurk/kisan/internal/logging"
	"github.com/muurk/kisan/internal/platform"
	"github.com/muurk/kisan/internal/ui"
)

// Messages for the assistant round trip and speech recognition
type (
	replyMsg struct {
		id   string
		text string
		err  error
	}

	// listenDoneMsg carries a transcript for the input with the given owner.
	listenDoneMsg struct {
		owner string
		text  string
		err   error
	}
)

// Rows taken by everything on the chat screen except the transcript.
const chatChromeHeight = 14

// chatKeyMap defines key bindings for the assistant screen
type chatKeyMap struct {
	Send   key.Binding
	Focus  key.Binding
	Up     key.Binding
	Down   key.Binding
	Listen key.Binding
	Speak  key.Binding
	Blur   key.Binding
}

// chatModel is the assistant conversation at /voice-input.
type chatModel struct {
	env        *env
	transcript *chat.Transcript

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	// quick is the highlighted quick question while the input is blurred.
	quick     int
	listening bool
	// rendered caches the markdown of answered messages by id.
	rendered map[string]string

	keys chatKeyMap
}

func newChatModel(e *env) chatModel {
	ti := textinput.New()
	ti.Placeholder = e.t("typeMessage")
	ti.CharLimit = 500
	ti.Prompt = "› "
	ti.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	m := chatModel{
		env:        e,
		transcript: chat.NewTranscript(),
		input:      ti,
		viewport:   viewport.New(contentWidth(e.width, false), max(3, e.height-chatChromeHeight)),
		spinner:    s,
		rendered:   make(map[string]string),
		keys: chatKeyMap{
			Send: key.NewBinding(
				key.WithKeys("enter"),
				key.WithHelp("enter", "send"),
			),
			Focus: key.NewBinding(
				key.WithKeys("tab"),
				key.WithHelp("tab", "quick questions"),
			),
			Up:   keyUp,
			Down: keyDown,
			Listen: key.NewBinding(
				key.WithKeys("ctrl+l"),
				key.WithHelp("ctrl+l", "voice"),
			),
			Speak: key.NewBinding(
				key.WithKeys("ctrl+s"),
				key.WithHelp("ctrl+s", "read aloud"),
			),
			Blur: key.NewBinding(
				key.WithKeys("esc"),
				key.WithHelp("esc", "leave input"),
			),
		},
	}
	m.refreshViewport()
	return m
}

func (m chatModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

func (m chatModel) Capturing() bool {
	return m.input.Focused()
}

func (m chatModel) Keys() help.KeyMap {
	if m.input.Focused() {
		return keyMap{m.keys.Send, m.keys.Focus, m.keys.Listen, m.keys.Speak, m.keys.Blur}
	}
	return keyMap{m.keys.Up, m.keys.Down, m.keys.Send, m.keys.Focus, m.keys.Listen, m.keys.Speak}
}

func (m chatModel) Update(msg tea.Msg) (screenModel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.transcript.Pending() {
			m.refreshViewport()
		}
		return m, cmd

	case replyMsg:
		if msg.err != nil {
			logging.Debug("Assistant reply failed", zap.Error(msg.err))
			if err := m.transcript.Fail(msg.id); err != nil {
				return m, nil
			}
		} else {
			// Replies to an earlier visit of this screen are dropped.
			if err := m.transcript.Resolve(msg.id, msg.text); err != nil {
				logging.Debug("Dropping stale reply", zap.String("id", msg.id))
				return m, nil
			}
			m.speak(msg.text)
		}
		m.refreshViewport()
		return m, nil

	case listenDoneMsg:
		if msg.owner != "chat" {
			return m, nil
		}
		m.listening = false
		if msg.err != nil {
			return m, speechFailed(m.env, msg.err)
		}
		m.input.SetValue(msg.text)
		m.input.CursorEnd()
		cmd := m.input.Focus()
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m chatModel) handleKey(msg tea.KeyMsg) (screenModel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Listen):
		if m.listening {
			return m, nil
		}
		cmd := listen(m.env, "chat")
		if cmd == nil {
			return m, alert(m.env.t("speechUnsupported"))
		}
		m.listening = true
		return m, cmd

	case key.Matches(msg, m.keys.Speak):
		if last := m.lastAnswer(); last != "" {
			m.speak(last)
		}
		return m, nil

	case key.Matches(msg, m.keys.Focus):
		if m.input.Focused() {
			m.input.Blur()
			return m, nil
		}
		cmd := m.input.Focus()
		return m, cmd
	}

	if m.input.Focused() {
		switch {
		case key.Matches(msg, m.keys.Blur):
			m.input.Blur()
			return m, nil
		case key.Matches(msg, m.keys.Send):
			var cmd tea.Cmd
			m, cmd = m.send(m.input.Value())
			if cmd != nil {
				m.input.Reset()
			}
			return m, cmd
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		m.quick = max(0, m.quick-1)
	case key.Matches(msg, m.keys.Down):
		m.quick = min(len(chat.QuickQuestions)-1, m.quick+1)
	case key.Matches(msg, m.keys.Send):
		return m.send(chat.QuickQuestions[m.quick])
	}
	return m, nil
}

// send appends the user's message and asks the assistant. Nothing is sent
// while a reply is pending or when text is blank.
func (m chatModel) send(text string) (chatModel, tea.Cmd) {
	text = strings.TrimSpace(text)
	if text == "" || m.transcript.Pending() {
		return m, nil
	}

	m.transcript.AddUser(text)
	id := m.transcript.BeginReply()
	m.refreshViewport()

	a := m.env.assistant
	ctx := m.env.ctx
	return m, func() tea.Msg {
		reply, err := a.Ask(ctx, text, nil)
		return replyMsg{id: id, text: reply, err: err}
	}
}

func (m chatModel) speak(text string) {
	if m.env.platform.Available(platform.TextToSpeech) {
		m.env.platform.SpeakAsync(m.env.ctx, text, m.env.language())
	}
}

func (m chatModel) lastAnswer() string {
	msgs := m.transcript.Messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == chat.RoleAssistant && !msgs[i].IsTyping && !msgs[i].IsError {
			return msgs[i].Text
		}
	}
	return ""
}

// refreshViewport re-renders the transcript and scrolls to the newest message.
func (m *chatModel) refreshViewport() {
	width := contentWidth(m.env.width, m.env.state().SidebarOpen)
	m.viewport.Width = width
	m.viewport.Height = max(3, m.env.height-chatChromeHeight)

	var b strings.Builder
	for _, msg := range m.transcript.Messages() {
		b.WriteString(m.renderMessage(msg, width))
		b.WriteString("\n")
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

func (m *chatModel) renderMessage(msg chat.Message, width int) string {
	bubbleWidth := max(20, width*3/4)

	switch {
	case msg.Role == chat.RoleUser:
		bubble := UserBubbleStyle.Width(min(lipgloss.Width(msg.Text)+2, bubbleWidth)).Render(msg.Text)
		return lipgloss.PlaceHorizontal(width, lipgloss.Right, bubble)
	case msg.IsTyping:
		return AssistantBubbleStyle.Render(m.spinner.View() + " " + MutedStyle.Render(m.env.t("aiTyping")))
	case msg.IsError:
		return AssistantBubbleStyle.Render(ErrorTextStyle.Render(msg.Text))
	}

	out, ok := m.rendered[msg.ID]
	if !ok {
		out = strings.TrimRight(ui.RenderMarkdown(msg.Text, bubbleWidth, true), "\n")
		m.rendered[msg.ID] = out
	}
	return AssistantBubbleStyle.Render(out)
}

func (m chatModel) View() string {
	var b strings.Builder
	b.WriteString(RenderTitle("🤖 " + m.env.t("aiAssistant")))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n\n")

	if m.listening {
		b.WriteString(m.spinner.View() + " " + WarningTextStyle.Render("🎤 "+m.env.t("listening")))
		b.WriteString("\n")
	}
	b.WriteString(CardStyle.Render(m.input.View()))
	b.WriteString("\n")

	b.WriteString(MutedStyle.Render(m.env.t("quickQuestions")))
	b.WriteString("\n")
	for i, q := range chat.QuickQuestions {
		b.WriteString(RenderMenuItem(q, !m.input.Focused() && i == m.quick))
		b.WriteString("\n")
	}
	return b.String()
}

// listen starts speech recognition for the input of owner. It returns nil
// when speech-to-text is not available.
func listen(e *env, owner string) tea.Cmd {
	if !e.platform.Available(platform.SpeechToText) {
		return nil
	}
	ctx := e.ctx
	p := e.platform
	language := e.language()
	return func() tea.Msg {
		text, err := p.Listen(ctx, language)
		return listenDoneMsg{owner: owner, text: text, err: err}
	}
}

// speechFailed reports a failed recognition. Missing support gets the
// standard alert; other failures show the error.
func speechFailed(e *env, err error) tea.Cmd {
	if errors.Is(err, platform.ErrUnsupported) {
		return alert(e.t("speechUnsupported"))
	}
	logging.Warn("Speech recognition failed", zap.Error(err))
	return alert(err.Error())
}
