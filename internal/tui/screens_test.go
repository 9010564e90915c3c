package tui

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/kisan/internal/chat"
	"github.com/muurk/kisan/internal/diagnosis"
	"github.com/muurk/kisan/internal/i18n"
	"github.com/muurk/kisan/internal/market"
	"github.com/muurk/kisan/internal/router"
	"github.com/muurk/kisan/internal/schemes"
)

var errOffline = errors.New("assistant offline")

func TestChatSendAndReply(t *testing.T) {
	h := newReadyHarness(t)
	h.platform.tts = true
	h.send(navigateMsg{screen: router.ScreenVoiceInput})
	require.Equal(t, router.ScreenVoiceInput, h.app.CurrentScreen)

	// Letters typed into the focused input are not shortcuts.
	h.typeText("quick question about tomato blight")
	assert.False(t, h.quit)
	h.press("enter")

	calls := h.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "quick question about tomato blight", calls[0].prompt)
	assert.Nil(t, calls[0].image)

	m, ok := h.app.screen.(chatModel)
	require.True(t, ok)
	msgs := m.transcript.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, chat.RoleUser, msgs[1].Role)
	assert.Equal(t, "Water the plants in the morning.", msgs[2].Text)
	assert.False(t, msgs[2].IsTyping)
	assert.Empty(t, m.input.Value())
	assert.Equal(t, []string{"Water the plants in the morning."}, h.platform.Spoken())
}

func TestChatIgnoresBlankInput(t *testing.T) {
	h := newReadyHarness(t)
	h.send(navigateMsg{screen: router.ScreenVoiceInput})

	h.typeText("   ")
	h.press("enter")

	assert.Empty(t, h.calls())
	m := h.app.screen.(chatModel)
	assert.Equal(t, 1, m.transcript.Len())
}

func TestChatQuickQuestion(t *testing.T) {
	h := newReadyHarness(t)
	h.send(navigateMsg{screen: router.ScreenVoiceInput})

	h.press("tab", "down", "enter")

	calls := h.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, chat.QuickQuestions[1], calls[0].prompt)
}

func TestChatReplyFailure(t *testing.T) {
	h := newReadyHarness(t)
	h.fail(errOffline)
	h.send(navigateMsg{screen: router.ScreenVoiceInput})

	h.typeText("hello")
	h.press("enter")

	msgs := h.app.screen.(chatModel).transcript.Messages()
	require.Len(t, msgs, 3)
	assert.True(t, msgs[2].IsError)
	assert.Equal(t, chat.ErrorText, msgs[2].Text)
	assert.Empty(t, h.platform.Spoken())
}

func TestChatDropsStaleReply(t *testing.T) {
	h := newReadyHarness(t)
	h.platform.tts = true
	h.send(navigateMsg{screen: router.ScreenVoiceInput})

	h.send(replyMsg{id: "reply-from-earlier-visit", text: "Old answer."})

	m := h.app.screen.(chatModel)
	assert.Equal(t, 1, m.transcript.Len())
	assert.Empty(t, h.platform.Spoken())

	h.send(replyMsg{id: "reply-from-earlier-visit", err: errOffline})
	m = h.app.screen.(chatModel)
	assert.Equal(t, 1, m.transcript.Len())
}

func TestVoiceInputUnsupported(t *testing.T) {
	h := newReadyHarness(t)
	h.send(navigateMsg{screen: router.ScreenVoiceInput})

	h.press("ctrl+l")
	assert.Equal(t, i18n.T(i18n.English, "speechUnsupported"), h.app.Alert)
}

func TestVoiceInputFillsMessage(t *testing.T) {
	h := newReadyHarness(t)
	h.platform.stt = true
	h.platform.heard = "when should I sow wheat"
	h.send(navigateMsg{screen: router.ScreenVoiceInput})

	h.typeText("draft")
	h.press("ctrl+l")

	m := h.app.screen.(chatModel)
	assert.Equal(t, "when should I sow wheat", m.input.Value())
	assert.False(t, m.listening)
	assert.Empty(t, h.calls())
}

func TestVoiceInputFailure(t *testing.T) {
	h := newReadyHarness(t)
	h.platform.stt = true
	h.platform.listenErr = errors.New("microphone busy")
	h.send(navigateMsg{screen: router.ScreenVoiceInput})

	h.press("ctrl+l")
	assert.Equal(t, "microphone busy", h.app.Alert)
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

var pngData = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)

func TestCropHealthAnalysis(t *testing.T) {
	h := newReadyHarness(t)
	h.reply = "Early blight. Remove the affected leaves."
	path := writeFile(t, "leaf.png", pngData)

	h.send(navigateMsg{screen: router.ScreenCropHealth})
	h.typeText(path)
	h.press("enter")

	calls := h.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, diagnosis.Prompt(""), calls[0].prompt)
	assert.Equal(t, pngData, calls[0].image)

	m := h.app.screen.(cropHealthModel)
	assert.False(t, m.analyzing)
	assert.False(t, m.failed)
	assert.Contains(t, m.result, "blight")
	assert.Contains(t, h.app.View(), "leaf.png")

	// A question asks again about the same image.
	h.press("tab")
	h.typeText("Is it spreading?")
	h.press("enter")

	calls = h.calls()
	require.Len(t, calls, 2)
	assert.Equal(t, diagnosis.Prompt("Is it spreading?"), calls[1].prompt)

	// Starting over clears everything.
	h.press("ctrl+n")
	m = h.app.screen.(cropHealthModel)
	assert.Nil(t, m.image)
	assert.Empty(t, m.result)
	assert.Empty(t, m.question.Value())
}

func TestCropHealthFailure(t *testing.T) {
	h := newReadyHarness(t)
	h.fail(errOffline)
	path := writeFile(t, "leaf.png", pngData)

	h.send(navigateMsg{screen: router.ScreenCropHealth})
	h.typeText(path)
	h.press("enter")

	m := h.app.screen.(cropHealthModel)
	assert.True(t, m.failed)
	assert.Equal(t, diagnosis.FailureText, m.result)
}

func TestCropHealthRejectsNonImage(t *testing.T) {
	h := newReadyHarness(t)
	path := writeFile(t, "notes.txt", []byte("not a photo at all"))

	h.send(navigateMsg{screen: router.ScreenCropHealth})
	h.typeText(path)
	h.press("enter")

	assert.Contains(t, h.app.Alert, diagnosis.ErrNotImage.Error())
	assert.Empty(t, h.calls())
}

func TestCropHealthQuestionNeedsImage(t *testing.T) {
	h := newReadyHarness(t)
	h.send(navigateMsg{screen: router.ScreenCropHealth})

	h.press("tab")
	h.typeText("yellow leaves")
	h.press("enter")

	assert.Equal(t, diagnosis.NoImageText, h.app.Alert)
	assert.Empty(t, h.calls())
}

func TestMarketSwitchesCrop(t *testing.T) {
	h := newReadyHarness(t)
	h.reply = "Hold until prices recover."
	h.send(navigateMsg{screen: router.ScreenMarket})

	h.press("right")

	calls := h.calls()
	require.Len(t, calls, 2)
	assert.Equal(t, market.InsightPrompt(market.Crops()[1].ID), calls[1].prompt)

	m := h.app.screen.(marketModel)
	assert.Equal(t, 1, m.cursor)
	assert.False(t, m.loading)
	assert.Contains(t, m.insights, "recover")
	assert.Equal(t, market.Crops()[1].ID, m.quote.CropID)
}

func TestMarketInsightsFailure(t *testing.T) {
	h := newReadyHarness(t)
	h.fail(errOffline)
	h.send(navigateMsg{screen: router.ScreenMarket})

	m := h.app.screen.(marketModel)
	assert.True(t, m.failed)
	assert.Equal(t, market.InsightsUnavailableText, m.insights)
	assert.Contains(t, h.app.View(), market.InsightsUnavailableText)
}

func TestSchemesApply(t *testing.T) {
	h := newReadyHarness(t)
	h.send(navigateMsg{screen: router.ScreenGovernmentSchemes})

	h.press("enter")
	assert.Equal(t, schemes.Catalog()[0].ApplicationGuide(), h.app.Alert)
	h.press("enter")

	// The second scheme is already applied for.
	h.press("down", "enter")
	assert.Contains(t, h.app.Alert, "Application status for "+schemes.Catalog()[1].Name)
}

func TestSchemesSearch(t *testing.T) {
	h := newReadyHarness(t)
	h.send(navigateMsg{screen: router.ScreenGovernmentSchemes})

	h.press("/")
	h.typeText("credit")
	// q goes to the search box while it has focus.
	h.press("q")
	assert.False(t, h.quit)
	h.press("enter")

	m := h.app.screen.(schemesModel)
	assert.Equal(t, "creditq", m.search.Value())
	assert.False(t, m.Capturing())
	assert.Empty(t, m.visible())
}

func TestSchemesCategoryFilter(t *testing.T) {
	h := newReadyHarness(t)
	h.send(navigateMsg{screen: router.ScreenGovernmentSchemes})

	h.press("tab")
	m := h.app.screen.(schemesModel)
	for _, s := range m.visible() {
		assert.Equal(t, schemes.Categories()[1], s.Category)
	}
	assert.NotEmpty(t, m.visible())
}

func TestAddCropsSaves(t *testing.T) {
	h := newReadyHarness(t)
	h.send(navigateMsg{screen: router.ScreenAddCrops})

	h.press("right", "space", "enter")

	assert.Equal(t, []string{"tomato", "wheat"}, h.store.State().SelectedCrops)
	assert.Equal(t, router.ScreenHome, h.app.CurrentScreen)
}

func TestCalendarWeeks(t *testing.T) {
	h := newReadyHarness(t)
	h.send(navigateMsg{screen: router.ScreenCropCalendar})

	h.press("left")
	m := h.app.screen.(calendarModel)
	assert.Equal(t, 1, m.week)

	h.press("right", "right")
	m = h.app.screen.(calendarModel)
	assert.Equal(t, 3, m.week)
	assert.Contains(t, h.app.View(), "Week 3 of")
}

func TestPlaceholderScreens(t *testing.T) {
	for _, screen := range []router.Screen{router.ScreenCommunity, router.ScreenProfile} {
		t.Run(string(screen), func(t *testing.T) {
			h := newReadyHarness(t)
			h.send(navigateMsg{screen: screen})

			assert.Equal(t, screen, h.app.CurrentScreen)
			assert.Contains(t, h.app.View(), i18n.T(i18n.English, "comingSoon"))
		})
	}
}
