package store

import (
	"github.com/muurk/kisan/internal/i18n"
	"github.com/muurk/kisan/internal/router"
)

// FarmingType is where the farmer grows crops.
type FarmingType string

const (
	FarmingUnset  FarmingType = ""
	FarmingPots   FarmingType = "pots"
	FarmingGarden FarmingType = "garden"
	FarmingFields FarmingType = "fields"
)

// FarmingTypes lists the selectable farming types in display order.
func FarmingTypes() []FarmingType {
	return []FarmingType{FarmingPots, FarmingGarden, FarmingFields}
}

// Valid reports whether t is unset or one of the selectable types.
func (t FarmingType) Valid() bool {
	switch t {
	case FarmingUnset, FarmingPots, FarmingGarden, FarmingFields:
		return true
	}
	return false
}

// User is the anonymous identity created at startup.
type User struct {
	ID        string
	Anonymous bool
}

// State is a snapshot of the application state. Values returned by the
// store are copies and may be kept by the caller.
type State struct {
	IsAuthenticated     bool
	User                *User
	SelectedLanguage    string
	SelectedCrops       []string
	FarmingType         FarmingType
	OnboardingCompleted bool
	CurrentScreen       router.Screen
	Loading             bool
	SidebarOpen         bool
	Error               string
}

// DefaultState is the state of a fresh install before initialization.
func DefaultState() State {
	return State{
		SelectedLanguage: i18n.English,
		SelectedCrops:    []string{},
		CurrentScreen:    router.ScreenSplash,
		Loading:          true,
	}
}

// ShortUserID returns the last eight characters of the user id, for the header.
func (s State) ShortUserID() string {
	if s.User == nil {
		return ""
	}
	id := s.User.ID
	if len(id) > 8 {
		return id[len(id)-8:]
	}
	return id
}

func (s State) clone() State {
	out := s
	out.SelectedCrops = append([]string{}, s.SelectedCrops...)
	if s.User != nil {
		u := *s.User
		out.User = &u
	}
	return out
}

// Snapshot is the persisted subset of State.
type Snapshot struct {
	SelectedLanguage    string      `yaml:"selected_language"`
	SelectedCrops       []string    `yaml:"selected_crops"`
	FarmingType         FarmingType `yaml:"farming_type"`
	OnboardingCompleted bool        `yaml:"onboarding_completed"`
}

func (s State) snapshot() Snapshot {
	return Snapshot{
		SelectedLanguage:    s.SelectedLanguage,
		SelectedCrops:       append([]string{}, s.SelectedCrops...),
		FarmingType:         s.FarmingType,
		OnboardingCompleted: s.OnboardingCompleted,
	}
}
