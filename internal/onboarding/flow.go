// Package onboarding drives the first-run flow: language, a three page
// feature walkthrough, two permission prompts, farming type and crops.
//
// The flow keeps pending choices (language, farming type, crop buffer) and
// commits them to the store only when the farmer advances past the step
// that owns them. Skipping never commits or requests anything.
package onboarding

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/muurk/kisan/internal/crops"
	"github.com/muurk/kisan/internal/i18n"
	"github.com/muurk/kisan/internal/logging"
	"github.com/muurk/kisan/internal/platform"
	"github.com/muurk/kisan/internal/router"
	"github.com/muurk/kisan/internal/store"
)

// Step is a page of the flow.
type Step int

const (
	StepLanguage Step = iota
	StepFeature1
	StepFeature2
	StepFeature3
	StepPermissionNotify
	StepPermissionLocation
	StepFarmingType
	StepCropPicker
)

// String returns the step name.
func (s Step) String() string {
	switch s {
	case StepLanguage:
		return "language"
	case StepFeature1:
		return "feature-1"
	case StepFeature2:
		return "feature-2"
	case StepFeature3:
		return "feature-3"
	case StepPermissionNotify:
		return "permission-notifications"
	case StepPermissionLocation:
		return "permission-location"
	case StepFarmingType:
		return "farming-type"
	case StepCropPicker:
		return "crop-picker"
	default:
		return fmt.Sprintf("Step(%d)", int(s))
	}
}

// next is the transition table. The crop picker has no successor.
var next = map[Step]Step{
	StepLanguage:           StepFeature1,
	StepFeature1:           StepFeature2,
	StepFeature2:           StepFeature3,
	StepFeature3:           StepPermissionNotify,
	StepPermissionNotify:   StepPermissionLocation,
	StepPermissionLocation: StepFarmingType,
	StepFarmingType:        StepCropPicker,
}

// TotalSteps is the number of pages.
const TotalSteps = int(StepCropPicker) + 1

// FeaturePages is the number of walkthrough pages.
const FeaturePages = 3

var (
	// ErrCannotSkip is returned by Skip on the first and last steps.
	ErrCannotSkip = errors.New("this step cannot be skipped")
	// ErrNoCropsSelected is returned by SaveCrops with an empty selection.
	ErrNoCropsSelected = errors.New("select at least one crop")
	// ErrFlowComplete is returned once onboarding has finished.
	ErrFlowComplete = errors.New("onboarding already completed")
	// ErrWrongStep is returned when a choice is made on a step that does not own it.
	ErrWrongStep = errors.New("not available on this step")
)

// StateStore is the part of the store the flow commits to.
type StateStore interface {
	State() store.State
	SetLanguage(language string) error
	SetFarmingType(t store.FarmingType) error
	SetCrops(ids []string) error
	CompleteOnboarding()
	SetScreen(screen router.Screen) error
}

// Permissions requests the capabilities offered during onboarding.
type Permissions interface {
	RequestNotifications(ctx context.Context) error
	RequestLocation(ctx context.Context) (platform.Place, error)
}

// Flow is the onboarding state machine. It is not safe for concurrent use;
// the TUI drives it from its update loop.
type Flow struct {
	store StateStore
	perms Permissions

	step Step
	done bool

	language    string
	farmingType store.FarmingType
	selection   *crops.Selection
}

// New starts a flow on the language step, seeded from the current state.
func New(st StateStore, perms Permissions) *Flow {
	state := st.State()
	return &Flow{
		store:     st,
		perms:     perms,
		step:      StepLanguage,
		language:  state.SelectedLanguage,
		selection: crops.NewSelection(state.SelectedCrops),
	}
}

// Step returns the current step.
func (f *Flow) Step() Step { return f.step }

// Done reports whether the flow has completed.
func (f *Flow) Done() bool { return f.done }

// Language returns the pending language.
func (f *Flow) Language() string { return f.language }

// FarmingType returns the pending farming type.
func (f *Flow) FarmingType() store.FarmingType { return f.farmingType }

// Selection returns the crop buffer.
func (f *Flow) Selection() *crops.Selection { return f.selection }

// CanSkip reports whether Skip is allowed on the current step.
func (f *Flow) CanSkip() bool {
	return !f.done && f.step != StepLanguage && f.step != StepCropPicker
}

// Position returns the walkthrough page index (0 to FeaturePages-1) and
// true on feature steps, for the pagination dots.
func (f *Flow) Position() (int, bool) {
	switch f.step {
	case StepFeature1, StepFeature2, StepFeature3:
		return int(f.step - StepFeature1), true
	}
	return 0, false
}

// SelectLanguage sets the pending language on the language step.
func (f *Flow) SelectLanguage(language string) error {
	if err := f.require(StepLanguage); err != nil {
		return err
	}
	if !i18n.IsSupported(language) {
		return fmt.Errorf("%w: %q", store.ErrUnsupportedLanguage, language)
	}
	f.language = language
	return nil
}

// SelectFarmingType sets the pending farming type on the farming type step.
func (f *Flow) SelectFarmingType(t store.FarmingType) error {
	if err := f.require(StepFarmingType); err != nil {
		return err
	}
	if t == store.FarmingUnset || !t.Valid() {
		return fmt.Errorf("%w: %q", store.ErrInvalidFarmingType, t)
	}
	f.farmingType = t
	return nil
}

// ToggleCrop toggles a crop in the buffer on the crop picker step.
func (f *Flow) ToggleCrop(id string) (bool, error) {
	if err := f.require(StepCropPicker); err != nil {
		return false, err
	}
	return f.selection.Toggle(id), nil
}

func (f *Flow) require(step Step) error {
	if f.done {
		return ErrFlowComplete
	}
	if f.step != step {
		return fmt.Errorf("%w: %s", ErrWrongStep, f.step)
	}
	return nil
}

// Advance commits the current step and moves forward. On the crop picker it
// finishes onboarding.
func (f *Flow) Advance(ctx context.Context) error {
	if f.done {
		return ErrFlowComplete
	}

	switch f.step {
	case StepLanguage:
		if err := f.store.SetLanguage(f.language); err != nil {
			return err
		}
	case StepPermissionNotify:
		if err := f.perms.RequestNotifications(ctx); err != nil {
			logging.Info("Notification permission not granted", zap.Error(err))
		}
	case StepPermissionLocation:
		if place, err := f.perms.RequestLocation(ctx); err != nil {
			logging.Info("Location permission not granted", zap.Error(err))
		} else {
			logging.Info("Location permission granted", zap.String("place", place.String()))
		}
	case StepFarmingType:
		if f.farmingType != store.FarmingUnset {
			if err := f.store.SetFarmingType(f.farmingType); err != nil {
				return err
			}
		}
	case StepCropPicker:
		return f.finish()
	}

	f.step = next[f.step]
	return nil
}

// Skip moves forward without committing or requesting anything.
func (f *Flow) Skip(ctx context.Context) error {
	if f.done {
		return ErrFlowComplete
	}
	if !f.CanSkip() {
		return fmt.Errorf("%w: %s", ErrCannotSkip, f.step)
	}
	f.step = next[f.step]
	return nil
}

// SaveCrops is the crop picker's save action: it finishes onboarding like
// Advance but refuses an empty selection.
func (f *Flow) SaveCrops(ctx context.Context) error {
	if err := f.require(StepCropPicker); err != nil {
		return err
	}
	if f.selection.Len() == 0 {
		return ErrNoCropsSelected
	}
	return f.finish()
}

func (f *Flow) finish() error {
	if err := f.store.SetCrops(f.selection.IDs()); err != nil {
		return err
	}
	f.store.CompleteOnboarding()
	if err := f.store.SetScreen(router.ScreenHome); err != nil {
		return err
	}
	f.done = true
	logging.Info("Onboarding completed",
		zap.String("language", f.language),
		zap.String("farming_type", string(f.farmingType)),
		zap.Int("crops", f.selection.Len()),
	)
	return nil
}
