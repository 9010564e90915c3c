// Kisan is a terminal farming assistant for small farmers.
//
// It guides a first-time user through language, farming type and crop
// selection, then offers crop disease diagnosis from a photo, a chat
// assistant with optional speech, simulated market prices, a crop calendar
// and a catalogue of government schemes.
//
// Usage:
//
//	kisan [command] [flags]
//
// Running without arguments launches the interactive interface.
// See 'kisan --help' for available commands.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/kisan/internal/assistant"
	"github.com/muurk/kisan/internal/config"
	"github.com/muurk/kisan/internal/logging"
	"github.com/muurk/kisan/internal/platform"
	"github.com/muurk/kisan/internal/store"
	"github.com/muurk/kisan/internal/tui"
	"github.com/muurk/kisan/internal/version"
)

func main() {
	// A missing .env is normal.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Global flags
var (
	logLevel    string
	providerArg string
	urlArg      string
)

var rootCmd = &cobra.Command{
	Use:   "kisan",
	Short: "Project Kisan farming assistant",
	Long: `A terminal farming assistant for small farmers.

Diagnose crop diseases from a photo, ask farming questions by text or voice,
follow market prices and crop calendars, and browse government schemes.
Available in English, Kannada and Hindi.

If no command is specified, the interactive interface launches.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTUI,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); empty is silent")
	rootCmd.PersistentFlags().StringVar(&providerArg, "provider", "", "Assistant provider (stub, http, ws, gemini); overrides the config file")
	rootCmd.PersistentFlags().StringVar(&urlArg, "url", "", "kisan-server base URL for the http and ws providers")

	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the config file and applies the global flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if providerArg != "" {
		cfg.Assistant.Provider = providerArg
	}
	if urlArg != "" {
		cfg.Assistant.URL = urlArg
	}
	return cfg, nil
}

// newStore opens the persisted profile. delay is the splash duration.
func newStore(delay time.Duration) (*store.Store, *store.FilePersister, error) {
	path, err := config.GetSnapshotPath()
	if err != nil {
		return nil, nil, err
	}
	persister := store.NewFilePersister(path)
	st := store.New(store.WithPersister(persister), store.WithStartupDelay(delay))
	return st, persister, nil
}

func newPlatform(cfg *config.Config) *platform.System {
	pc := platform.Config{
		STTCommand: cfg.Speech.STTCommand,
		TTSCommand: cfg.Speech.TTSCommand,
		Rate:       cfg.Speech.Rate,
	}
	if cfg.HasLocation() {
		pc.Place = &platform.Place{
			District:  cfg.Location.District,
			State:     cfg.Location.State,
			Latitude:  cfg.Location.Latitude,
			Longitude: cfg.Location.Longitude,
		}
	}
	return platform.New(pc)
}

func runTUI(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// The screen owns stdout, so logs go to a file.
	if _, err := config.EnsureConfigDir(); err != nil {
		return err
	}
	logPath, err := config.GetLogPath()
	if err != nil {
		return err
	}
	if err := logging.InitializeToFile(logLevel, logPath); err != nil {
		return err
	}
	defer logging.Sync()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, _, err := newStore(cfg.StartupDelay)
	if err != nil {
		return err
	}

	a, err := assistant.New(ctx, cfg.AssistantConfig())
	if err != nil {
		return fmt.Errorf("failed to create assistant: %w", err)
	}
	defer func() {
		if err := assistant.Close(a); err != nil {
			logging.Warn("Failed to close assistant", zap.Error(err))
		}
	}()

	logging.Info("Starting kisan",
		zap.String("version", version.Version),
		zap.String("provider", cfg.Assistant.Provider),
	)

	app := tui.NewAppModel(ctx, tui.Deps{
		Store:     st,
		Assistant: a,
		Platform:  newPlatform(cfg),
	})
	return tui.Run(ctx, app)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("kisan %s (commit: %s)\n", version.Version, version.Commit)
	},
}
