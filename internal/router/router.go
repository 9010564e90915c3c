// Package router maps navigation paths to screens.
//
// Which screen is visible is a pure function of the loading flag, the
// onboarding flag and the current path. Keeping it pure means the TUI can
// recompute it after every state change without tracking transitions.
package router

import "strings"

// Screen identifies a full-screen view.
type Screen string

const (
	ScreenSplash            Screen = "splash"
	ScreenOnboarding        Screen = "onboarding"
	ScreenHome              Screen = "home"
	ScreenVoiceInput        Screen = "voice-input"
	ScreenCropHealth        Screen = "crop-health"
	ScreenMarket            Screen = "market"
	ScreenCropCalendar      Screen = "crop-calendar"
	ScreenGovernmentSchemes Screen = "government-schemes"
	ScreenCommunity         Screen = "community"
	ScreenProfile           Screen = "profile"
	ScreenAddCrops          Screen = "add-crops"
)

// Path constants for the routed screens.
const (
	PathHome              = "/"
	PathVoiceInput        = "/voice-input"
	PathCropHealth        = "/crop-health"
	PathMarket            = "/market"
	PathCropCalendar      = "/crop-calendar"
	PathGovernmentSchemes = "/government-schemes"
	PathCommunity         = "/community"
	PathProfile           = "/profile"
	PathAddCrops          = "/add-crops"
)

var pathScreens = map[string]Screen{
	PathHome:              ScreenHome,
	PathVoiceInput:        ScreenVoiceInput,
	PathCropHealth:        ScreenCropHealth,
	PathMarket:            ScreenMarket,
	PathCropCalendar:      ScreenCropCalendar,
	PathGovernmentSchemes: ScreenGovernmentSchemes,
	PathCommunity:         ScreenCommunity,
	PathProfile:           ScreenProfile,
	PathAddCrops:          ScreenAddCrops,
}

// Titles of the screens that only render a placeholder.
var placeholderTitles = map[Screen]string{
	ScreenCommunity: "Community",
	ScreenProfile:   "Profile",
}

// Resolve returns the screen to show.
//
// While loading the splash screen wins; until onboarding is complete the
// onboarding flow wins; otherwise the path decides. Unknown paths resolve to
// home.
func Resolve(loading, onboardingCompleted bool, path string) Screen {
	if loading {
		return ScreenSplash
	}
	if !onboardingCompleted {
		return ScreenOnboarding
	}
	return ScreenForPath(path)
}

// ScreenForPath returns the screen routed at path, ignoring trailing slashes.
func ScreenForPath(path string) Screen {
	if screen, ok := pathScreens[normalize(path)]; ok {
		return screen
	}
	return ScreenHome
}

// PathFor returns the path of a routed screen. Screens that are not routed
// (splash, onboarding) map to the home path.
func PathFor(screen Screen) string {
	for path, s := range pathScreens {
		if s == screen {
			return path
		}
	}
	return PathHome
}

// IsRouted reports whether screen has its own path.
func IsRouted(screen Screen) bool {
	for _, s := range pathScreens {
		if s == screen {
			return true
		}
	}
	return false
}

// IsPlaceholder reports whether screen only renders a placeholder page.
func IsPlaceholder(screen Screen) bool {
	_, ok := placeholderTitles[screen]
	return ok
}

// Title returns the heading of a placeholder screen, or the screen name
// for everything else.
func Title(screen Screen) string {
	if title, ok := placeholderTitles[screen]; ok {
		return title
	}
	return string(screen)
}

func normalize(path string) string {
	path = strings.TrimSpace(path)
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimRight(path, "/")
	if path == "" {
		return PathHome
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}
