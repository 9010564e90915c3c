package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/kisan/internal/i18n"
	"github.com/muurk/kisan/internal/market"
	"github.com/muurk/kisan/internal/router"
	"github.com/muurk/kisan/internal/store"
)

func TestStartsOnSplash(t *testing.T) {
	h := newHarness(t, nil)

	assert.Equal(t, router.ScreenSplash, h.app.CurrentScreen)
	assert.True(t, h.store.State().Loading)
	assert.Contains(t, h.app.View(), "Project Kisan")

	h.start()

	assert.Equal(t, router.ScreenOnboarding, h.app.CurrentScreen)
	assert.Equal(t, router.ScreenSplash, h.app.PreviousScreen)
	assert.False(t, h.store.State().Loading)
}

func TestCompletedProfileOpensHome(t *testing.T) {
	h := newReadyHarness(t)

	st := h.store.State()
	require.NotNil(t, st.User)
	assert.Equal(t, testUserID, st.User.ID)
	assert.Equal(t, []string{"tomato"}, st.SelectedCrops)
}

func TestOnboardingWalkthrough(t *testing.T) {
	h := newHarness(t, nil)
	h.start()
	require.Equal(t, router.ScreenOnboarding, h.app.CurrentScreen)

	// Language, then the three feature pages.
	h.press("down", "enter")
	assert.Equal(t, i18n.Kannada, h.store.State().SelectedLanguage)
	h.press("enter", "right", "enter")

	// Notifications are requested, location is skipped.
	h.press("enter")
	assert.Equal(t, 1, h.platform.notified)
	h.press("s")

	// Garden, then the crop picker.
	h.press("down", "enter")
	assert.Equal(t, store.FarmingGarden, h.store.State().FarmingType)

	h.press("enter")
	assert.Equal(t, i18n.T(i18n.Kannada, "selectCropsDesc"), h.app.Alert)
	assert.False(t, h.store.State().OnboardingCompleted)

	h.press("enter")
	assert.Empty(t, h.app.Alert)

	h.press("space", "right", "space", "enter")

	st := h.store.State()
	assert.True(t, st.OnboardingCompleted)
	assert.Equal(t, []string{"tomato", "wheat"}, st.SelectedCrops)
	assert.Equal(t, router.ScreenHome, h.app.CurrentScreen)
}

func TestNavigationRefusedDuringOnboarding(t *testing.T) {
	h := newHarness(t, nil)
	h.start()

	h.send(navigateMsg{screen: router.ScreenMarket})
	assert.Equal(t, router.ScreenOnboarding, h.app.CurrentScreen)

	// Shell shortcuts are not active yet.
	h.press("ctrl+b", "q")
	assert.False(t, h.store.State().SidebarOpen)
	assert.False(t, h.quit)
}

func TestSidebarNavigation(t *testing.T) {
	h := newReadyHarness(t)

	h.press("ctrl+b")
	require.True(t, h.store.State().SidebarOpen)
	assert.Contains(t, h.app.View(), i18n.T(i18n.English, "community"))

	h.press("down", "down", "enter")

	assert.Equal(t, router.ScreenMarket, h.app.CurrentScreen)
	assert.False(t, h.store.State().SidebarOpen)

	calls := h.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, market.InsightPrompt("tomato"), calls[0].prompt)
}

func TestSidebarClosesOnEscape(t *testing.T) {
	h := newReadyHarness(t)

	h.press("ctrl+b")
	require.True(t, h.store.State().SidebarOpen)
	h.press("esc")

	assert.False(t, h.store.State().SidebarOpen)
	assert.Equal(t, router.ScreenHome, h.app.CurrentScreen)
}

func TestEscapeReturnsHomeAndQuit(t *testing.T) {
	h := newReadyHarness(t)

	h.send(navigateMsg{screen: router.ScreenCropCalendar})
	require.Equal(t, router.ScreenCropCalendar, h.app.CurrentScreen)

	h.press("esc")
	assert.Equal(t, router.ScreenHome, h.app.CurrentScreen)
	assert.Equal(t, router.ScreenCropCalendar, h.app.PreviousScreen)
	assert.False(t, h.quit)

	h.press("q")
	assert.True(t, h.quit)
}

func TestHomeActionsNavigate(t *testing.T) {
	h := newReadyHarness(t)

	// The cursor starts on "diagnose".
	h.press("enter")
	assert.Equal(t, router.ScreenCropHealth, h.app.CurrentScreen)

	h.press("esc", "esc")
	assert.Equal(t, router.ScreenHome, h.app.CurrentScreen)

	h.press("left", "enter")
	assert.Equal(t, router.ScreenAddCrops, h.app.CurrentScreen)
}

func TestAlertBlocksShortcuts(t *testing.T) {
	h := newReadyHarness(t)

	h.send(alertMsg{text: "Something happened"})
	assert.Contains(t, h.app.View(), "Something happened")

	h.press("q", "ctrl+b")
	assert.False(t, h.quit)
	assert.False(t, h.store.State().SidebarOpen)
	assert.Equal(t, "Something happened", h.app.Alert)

	h.press("esc")
	assert.Empty(t, h.app.Alert)
	assert.Equal(t, router.ScreenHome, h.app.CurrentScreen)
}

func TestCtrlCAlwaysQuits(t *testing.T) {
	h := newHarness(t, nil)
	h.send(alertMsg{text: "blocking"})

	h.press("ctrl+c")
	assert.True(t, h.quit)
}

func TestCanceledInitQuits(t *testing.T) {
	h := newHarness(t, nil)

	h.send(initDoneMsg{err: context.Canceled})
	assert.True(t, h.quit)
}

func TestRepeatedInitIgnored(t *testing.T) {
	h := newReadyHarness(t)

	h.send(initDoneMsg{err: store.ErrAlreadyInitialized})
	assert.Empty(t, h.store.State().Error)
	assert.Equal(t, router.ScreenHome, h.app.CurrentScreen)
}

func TestHeaderShowsSession(t *testing.T) {
	h := newReadyHarness(t)
	h.send(tea.WindowSizeMsg{Width: 120, Height: 40})

	view := h.app.View()
	assert.Contains(t, view, "Project Kisan")
	assert.Contains(t, view, h.store.State().ShortUserID())
	assert.Contains(t, view, "English")
}

func TestStateNotificationFollowsStore(t *testing.T) {
	h := newReadyHarness(t)

	require.NoError(t, h.store.SetScreen(router.ScreenGovernmentSchemes))
	h.send(stateMsg{})
	assert.Equal(t, router.ScreenGovernmentSchemes, h.app.CurrentScreen)
}
