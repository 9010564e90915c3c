// Package config manages the kisan configuration file and the paths of the
// files kisan keeps next to it.
//
// # File Locations
//
// Everything lives in one platform-appropriate directory:
//   - Linux: $XDG_CONFIG_HOME/kisan or $HOME/.config/kisan
//   - macOS: $HOME/.config/kisan
//   - Windows: %LOCALAPPDATA%\kisan
//
// That directory holds config.yaml (this package), the persisted app
// snapshot farming-app-storage.yaml (written by the store package) and
// kisan.log when the TUI runs with logging enabled.
//
// # Secrets
//
// API keys are never written to config.yaml. The file names the environment
// variable that holds the key (assistant.api_key_env), and the binaries load
// .env files at startup.
//
// # Usage Example
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	a, err := assistant.New(ctx, cfg.AssistantConfig())
//
// # Thread Safety
//
// Load caches the parsed file with sync.Once. Saves are serialized by a mutex
// and written atomically (temporary file plus rename).
package config
