// Package store holds the application state.
//
// A Store is the single source of truth for the client: the selected
// language, crops and farming type, onboarding progress, the visible screen,
// and transient UI flags. Every command replaces the state atomically under
// a mutex and then notifies subscribers synchronously, outside the lock.
//
// The language, crops, farming type and onboarding flag are also written to
// a Persister after each change, and read back when the store is created.
// Persistence failures are logged and never returned to the caller.
//
// # Usage
//
//	s := store.New(store.WithPersister(store.NewFilePersister(path)))
//	unsubscribe := s.Subscribe(func(st store.State) {
//	    // react to changes
//	})
//	defer unsubscribe()
//
//	if err := s.InitializeApp(ctx); err != nil {
//	    return err
//	}
package store
