package tui

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/muurk/kisan/internal/assistant"
	"github.com/muurk/kisan/internal/i18n"
	"github.com/muurk/kisan/internal/platform"
	"github.com/muurk/kisan/internal/store"
)

const testUserID = "demo-user-abc123xyz"

// fakePlatform grants every permission and plays back a fixed transcript.
type fakePlatform struct {
	stt       bool
	tts       bool
	heard     string
	listenErr error

	mu       sync.Mutex
	spoken   []string
	notified int
}

func (p *fakePlatform) RequestNotifications(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notified++
	return nil
}

func (p *fakePlatform) RequestLocation(context.Context) (platform.Place, error) {
	return platform.Place{District: "Mysuru", State: "Karnataka"}, nil
}

func (p *fakePlatform) Available(c platform.Capability) bool {
	switch c {
	case platform.SpeechToText:
		return p.stt
	case platform.TextToSpeech:
		return p.tts
	}
	return true
}

func (p *fakePlatform) Listen(context.Context, string) (string, error) {
	if !p.stt {
		return "", platform.ErrUnsupported
	}
	return p.heard, p.listenErr
}

func (p *fakePlatform) SpeakAsync(_ context.Context, text, _ string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.spoken = append(p.spoken, text)
}

func (p *fakePlatform) Spoken() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.spoken...)
}

type askCall struct {
	prompt string
	image  []byte
}

// harness drives an AppModel the way the program loop would, running
// commands synchronously and feeding their messages back.
type harness struct {
	store    *store.Store
	platform *fakePlatform
	app      AppModel
	quit     bool

	mu    sync.Mutex
	asks  []askCall
	reply string
	err   error
}

func newHarness(t *testing.T, snap *store.Snapshot) *harness {
	t.Helper()

	st := store.New(
		store.WithPersister(store.NewMemoryPersister(snap)),
		store.WithStartupDelay(0),
		store.WithUserIDGenerator(func() string { return testUserID }),
	)
	h := &harness{
		store:    st,
		platform: &fakePlatform{},
		reply:    "Water the plants in the morning.",
	}
	h.app = NewAppModel(context.Background(), Deps{
		Store:     st,
		Assistant: assistant.Func(h.ask),
		Platform:  h.platform,
	})
	// Tall enough that no screen is clipped.
	h.send(tea.WindowSizeMsg{Width: 120, Height: 80})
	return h
}

// newReadyHarness starts on the home screen with onboarding done.
func newReadyHarness(t *testing.T) *harness {
	t.Helper()
	h := newHarness(t, &store.Snapshot{
		SelectedLanguage:    i18n.English,
		SelectedCrops:       []string{"tomato"},
		FarmingType:         store.FarmingGarden,
		OnboardingCompleted: true,
	})
	h.start()
	require.Equal(t, "home", string(h.app.CurrentScreen))
	return h
}

func (h *harness) ask(_ context.Context, prompt string, image []byte) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.asks = append(h.asks, askCall{prompt: prompt, image: image})
	return h.reply, h.err
}

func (h *harness) fail(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.err = err
}

func (h *harness) calls() []askCall {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]askCall(nil), h.asks...)
}

// start runs the splash screen's initialization.
func (h *harness) start() {
	h.drain(h.app.Init())
}

func (h *harness) send(msg tea.Msg) {
	model, cmd := h.app.Update(msg)
	h.app = model.(AppModel)
	h.drain(cmd)
}

// press sends one key per name.
func (h *harness) press(names ...string) {
	for _, name := range names {
		h.send(keyPress(name))
	}
}

// typeText sends text as a single runes event.
func (h *harness) typeText(text string) {
	h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

// drain runs cmd and feeds back the messages the screens produce. Timer
// driven messages (spinner ticks, cursor blinks) are dropped.
func (h *harness) drain(cmd tea.Cmd) {
	for _, msg := range collect(cmd) {
		switch msg.(type) {
		case tea.QuitMsg:
			h.quit = true
		case stateMsg, alertMsg, navigateMsg, initDoneMsg, permissionDoneMsg,
			replyMsg, diagnosisMsg, insightsMsg, listenDoneMsg:
			h.send(msg)
		}
	}
}

func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()

	select {
	case msg := <-ch:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, c := range batch {
				out = append(out, collect(c)...)
			}
			return out
		}
		return []tea.Msg{msg}
	case <-time.After(250 * time.Millisecond):
		return nil
	}
}

func keyPress(name string) tea.KeyMsg {
	switch name {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "ctrl+b":
		return tea.KeyMsg{Type: tea.KeyCtrlB}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "ctrl+l":
		return tea.KeyMsg{Type: tea.KeyCtrlL}
	case "ctrl+n":
		return tea.KeyMsg{Type: tea.KeyCtrlN}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(name)}
}
