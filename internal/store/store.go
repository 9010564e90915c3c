package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/muurk/kisan/internal/crops"
	"github.com/muurk/kisan/internal/i18n"
	"github.com/muurk/kisan/internal/logging"
	"github.com/muurk/kisan/internal/router"
)

// DefaultStartupDelay is the splash duration used by InitializeApp.
const DefaultStartupDelay = 2 * time.Second

var (
	// ErrAlreadyInitialized is returned by a second InitializeApp call.
	ErrAlreadyInitialized = errors.New("app already initialized")
	// ErrTooManyCrops is returned when more than crops.MaxSelected crops are set.
	ErrTooManyCrops = fmt.Errorf("at most %d crops can be selected: %w", crops.MaxSelected, crops.ErrTooMany)
	// ErrDuplicateCrop is returned when the crop list repeats an id.
	ErrDuplicateCrop = fmt.Errorf("crop selected twice: %w", crops.ErrDuplicate)
	// ErrUnsupportedLanguage is returned for a language outside i18n.Languages.
	ErrUnsupportedLanguage = errors.New("unsupported language")
	// ErrInvalidFarmingType is returned for an unknown farming type.
	ErrInvalidFarmingType = errors.New("invalid farming type")
	// ErrOnboardingIncomplete is returned when navigating to an app screen
	// before onboarding is complete.
	ErrOnboardingIncomplete = errors.New("onboarding not completed")
)

// Store owns the application state.
type Store struct {
	mu          sync.Mutex
	state       State
	initialized bool

	persister    Persister
	startupDelay time.Duration
	newUserID    func() string

	subs    map[int]func(State)
	nextSub int

	// Committed states waiting to be saved and announced, oldest first.
	// One caller at a time drains the queue.
	pending  []commit
	draining bool
}

type commit struct {
	state   State
	persist bool
}

// Option configures a Store.
type Option func(*Store)

// WithPersister sets where the snapshot is loaded from and saved to.
func WithPersister(p Persister) Option {
	return func(s *Store) { s.persister = p }
}

// WithStartupDelay sets the splash duration of InitializeApp.
func WithStartupDelay(d time.Duration) Option {
	return func(s *Store) { s.startupDelay = d }
}

// WithUserIDGenerator overrides the anonymous user id source.
func WithUserIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newUserID = fn }
}

// New creates a store and restores the persisted snapshot. Without a
// persister the store starts from defaults and saves nothing.
func New(opts ...Option) *Store {
	s := &Store{
		state:        DefaultState(),
		startupDelay: DefaultStartupDelay,
		newUserID:    demoUserID,
		subs:         make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.restore()
	return s
}

func demoUserID() string {
	return "demo-user-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
}

// restore applies the stored snapshot. Invalid fields are dropped so a
// hand-edited or stale file cannot break the invariants.
func (s *Store) restore() {
	if s.persister == nil {
		return
	}

	snap, err := s.persister.Load()
	if err != nil {
		logging.Warn("Failed to load snapshot, starting fresh", zap.Error(err))
		return
	}
	if snap == nil {
		return
	}

	if i18n.IsSupported(snap.SelectedLanguage) {
		s.state.SelectedLanguage = snap.SelectedLanguage
	}
	s.state.SelectedCrops = crops.NewSelection(snap.SelectedCrops).IDs()
	if snap.FarmingType.Valid() {
		s.state.FarmingType = snap.FarmingType
	}
	s.state.OnboardingCompleted = snap.OnboardingCompleted

	logging.Info("Snapshot restored",
		zap.String("language", s.state.SelectedLanguage),
		zap.Int("crops", len(s.state.SelectedCrops)),
		zap.Bool("onboarding_completed", s.state.OnboardingCompleted),
	)
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Snapshot returns the persisted subset of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.snapshot()
}

// Subscribe registers fn to be called with the new state after every
// mutation. The returned function removes the subscription.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// update applies fn to a copy of the state. When fn succeeds the copy
// replaces the state, the snapshot is saved if persist is set, and
// subscribers are notified. Saves and notifications happen in commit order;
// a mutation committed while another caller is saving is handed to that
// caller and update returns without waiting for it.
func (s *Store) update(field string, persist bool, fn func(*State) error) error {
	s.mu.Lock()
	next := s.state.clone()
	if err := fn(&next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.state = next
	s.pending = append(s.pending, commit{state: next.clone(), persist: persist})
	if s.draining {
		s.mu.Unlock()
		logging.LogStateChange(field, fieldValue(next, field))
		return nil
	}
	s.draining = true
	s.mu.Unlock()

	logging.LogStateChange(field, fieldValue(next, field))
	s.drain()
	return nil
}

// drain saves and announces queued commits until the queue is empty.
func (s *Store) drain() {
	for {
		s.mu.Lock()
		if len(s.pending) == 0 {
			s.draining = false
			s.mu.Unlock()
			return
		}
		c := s.pending[0]
		s.pending[0] = commit{}
		s.pending = s.pending[1:]
		subs := make([]func(State), 0, len(s.subs))
		for _, sub := range s.subs {
			subs = append(subs, sub)
		}
		s.mu.Unlock()

		if c.persist && s.persister != nil {
			if err := s.persister.Save(c.state.snapshot()); err != nil {
				logging.Warn("Failed to save snapshot", zap.Error(err))
			}
		}
		for _, sub := range subs {
			sub(c.state.clone())
		}
	}
}

func fieldValue(st State, field string) any {
	switch field {
	case "selected_language":
		return st.SelectedLanguage
	case "selected_crops":
		return st.SelectedCrops
	case "farming_type":
		return st.FarmingType
	case "onboarding_completed":
		return st.OnboardingCompleted
	case "current_screen":
		return st.CurrentScreen
	case "loading":
		return st.Loading
	case "sidebar_open":
		return st.SidebarOpen
	case "error":
		return st.Error
	default:
		return nil
	}
}

// SetUser sets the user and marks the session authenticated.
func (s *Store) SetUser(u User) {
	_ = s.update("user", false, func(st *State) error {
		st.User = &u
		st.IsAuthenticated = true
		return nil
	})
}

// SetLanguage selects the display language.
func (s *Store) SetLanguage(language string) error {
	if !i18n.IsSupported(language) {
		return fmt.Errorf("%w: %q", ErrUnsupportedLanguage, language)
	}
	return s.update("selected_language", true, func(st *State) error {
		st.SelectedLanguage = language
		return nil
	})
}

// SetCrops replaces the crop list. The list must satisfy the selection
// invariants.
func (s *Store) SetCrops(ids []string) error {
	switch err := crops.Validate(ids); {
	case errors.Is(err, crops.ErrTooMany):
		return ErrTooManyCrops
	case errors.Is(err, crops.ErrDuplicate):
		return ErrDuplicateCrop
	}
	return s.update("selected_crops", true, func(st *State) error {
		st.SelectedCrops = append([]string{}, ids...)
		return nil
	})
}

// SetFarmingType records where the farmer grows crops.
func (s *Store) SetFarmingType(t FarmingType) error {
	if !t.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidFarmingType, t)
	}
	return s.update("farming_type", true, func(st *State) error {
		st.FarmingType = t
		return nil
	})
}

// CompleteOnboarding marks onboarding done.
func (s *Store) CompleteOnboarding() {
	_ = s.update("onboarding_completed", true, func(st *State) error {
		st.OnboardingCompleted = true
		return nil
	})
}

// SetScreen records the visible screen. App screens are refused until
// onboarding is complete.
func (s *Store) SetScreen(screen router.Screen) error {
	return s.update("current_screen", false, func(st *State) error {
		if router.IsRouted(screen) && !st.OnboardingCompleted {
			return fmt.Errorf("%w: cannot show %s", ErrOnboardingIncomplete, screen)
		}
		st.CurrentScreen = screen
		return nil
	})
}

// SetLoading sets the loading flag.
func (s *Store) SetLoading(loading bool) {
	_ = s.update("loading", false, func(st *State) error {
		st.Loading = loading
		return nil
	})
}

// SetSidebarOpen shows or hides the sidebar.
func (s *Store) SetSidebarOpen(open bool) {
	_ = s.update("sidebar_open", false, func(st *State) error {
		st.SidebarOpen = open
		return nil
	})
}

// ToggleSidebar flips the sidebar visibility.
func (s *Store) ToggleSidebar() {
	_ = s.update("sidebar_open", false, func(st *State) error {
		st.SidebarOpen = !st.SidebarOpen
		return nil
	})
}

// SetError records a user-visible error message. An empty message clears it.
func (s *Store) SetError(msg string) {
	_ = s.update("error", false, func(st *State) error {
		st.Error = msg
		return nil
	})
}

// Reset restores the defaults, with loading off, and saves the default
// snapshot.
func (s *Store) Reset() {
	_ = s.update("reset", true, func(st *State) error {
		*st = DefaultState()
		st.Loading = false
		return nil
	})
}

// InitializeApp shows the splash for the startup delay, creates the
// anonymous user, and moves to home or onboarding. It runs once per store;
// if ctx ends during the delay the state is left untouched and a later call
// may try again.
func (s *Store) InitializeApp(ctx context.Context) error {
	s.mu.Lock()
	if s.initialized {
		s.mu.Unlock()
		return ErrAlreadyInitialized
	}
	s.initialized = true
	s.mu.Unlock()

	if !s.State().Loading {
		s.SetLoading(true)
	}

	if s.startupDelay > 0 {
		timer := time.NewTimer(s.startupDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			s.mu.Lock()
			s.initialized = false
			s.mu.Unlock()
			return ctx.Err()
		case <-timer.C:
		}
	}

	user := User{ID: s.newUserID(), Anonymous: true}
	err := s.update("initialized", false, func(st *State) error {
		st.User = &user
		st.IsAuthenticated = true
		st.Loading = false
		if st.OnboardingCompleted {
			st.CurrentScreen = router.ScreenHome
		} else {
			st.CurrentScreen = router.ScreenOnboarding
		}
		return nil
	})
	if err == nil {
		logging.Info("App initialized", zap.String("user_id", user.ID))
	}
	return err
}
