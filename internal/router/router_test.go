package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		loading   bool
		completed bool
		path      string
		want      Screen
	}{
		{"loading wins over everything", true, true, "/market", ScreenSplash},
		{"loading before onboarding", true, false, "/", ScreenSplash},
		{"onboarding gate", false, false, "/market", ScreenOnboarding},
		{"home", false, true, "/", ScreenHome},
		{"market", false, true, "/market", ScreenMarket},
		{"trailing slash", false, true, "/market/", ScreenMarket},
		{"schemes", false, true, "/government-schemes", ScreenGovernmentSchemes},
		{"voice input", false, true, "/voice-input", ScreenVoiceInput},
		{"unknown path", false, true, "/nowhere", ScreenHome},
		{"empty path", false, true, "", ScreenHome},
		{"query string", false, true, "/crop-health?x=1", ScreenCropHealth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.loading, tt.completed, tt.path))
		})
	}
}

func TestPathForRoundTrip(t *testing.T) {
	for path, screen := range pathScreens {
		assert.Equal(t, path, PathFor(screen))
		assert.Equal(t, screen, ScreenForPath(PathFor(screen)))
	}

	assert.Equal(t, PathHome, PathFor(ScreenSplash))
	assert.Equal(t, PathHome, PathFor(ScreenOnboarding))
	assert.False(t, IsRouted(ScreenSplash))
	assert.True(t, IsRouted(ScreenAddCrops))
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Community", Title(ScreenCommunity))
	assert.Equal(t, "Profile", Title(ScreenProfile))
	assert.True(t, IsPlaceholder(ScreenProfile))
	assert.False(t, IsPlaceholder(ScreenMarket))
	assert.Equal(t, "market", Title(ScreenMarket))
}
