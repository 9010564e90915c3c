package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/kisan/internal/assistant"
	"github.com/muurk/kisan/internal/config"
	"github.com/muurk/kisan/internal/diagnosis"
	"github.com/muurk/kisan/internal/discovery"
	"github.com/muurk/kisan/internal/logging"
	"github.com/muurk/kisan/internal/ui"
)

// Command flags
var (
	imagePath   string
	scanTimeout int
	assumeYes   bool
)

func init() {
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(configCmd)

	askCmd.Flags().StringVar(&imagePath, "image", "", "Crop photo to analyze")
	scanCmd.Flags().IntVar(&scanTimeout, "timeout", 5, "Scan timeout in seconds")
	resetCmd.Flags().BoolVar(&assumeYes, "yes", false, "Reset without asking")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}

// initLogging sets up logging on stdout for the non-interactive commands.
func initLogging() error {
	return logging.Initialize(logLevel)
}

// askCmd sends one question to the assistant
var askCmd = &cobra.Command{
	Use:   "ask [prompt]",
	Short: "Ask the farming assistant a single question",
	Long: `Send one question to the configured assistant and print the answer.

With --image the photo is analyzed for crop diseases; the prompt then becomes
the specific question about the photo and may be omitted.`,
	Example: `  # Ask the built-in assistant
  kisan ask "When should I sow wheat?"

  # Diagnose a photo
  kisan ask --image ~/Pictures/leaf.jpg

  # Ask a kisan-server on the network
  kisan ask --provider http --url http://192.168.1.20:8080 "Tomato prices?"`,
	RunE: runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	if err := initLogging(); err != nil {
		return err
	}
	defer logging.Sync()

	prompt := strings.TrimSpace(strings.Join(args, " "))
	if prompt == "" && imagePath == "" {
		return errors.New("a prompt or --image is required")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := assistant.New(ctx, cfg.AssistantConfig())
	if err != nil {
		return fmt.Errorf("failed to create assistant: %w", err)
	}
	defer func() { _ = assistant.Close(a) }()

	printer := ui.NewPrinter(os.Stdout)
	details := []ui.Detail{{Key: "Provider", Value: cfg.Assistant.Provider}}

	var op ui.Operation
	if imagePath != "" {
		img, err := diagnosis.LoadImage(imagePath)
		if err != nil {
			return err
		}
		details = append(details, ui.Detail{Key: "Image", Value: img.Name() + " (" + img.MIME + ")"})
		op = func(ctx context.Context) (string, error) {
			return diagnosis.Analyze(ctx, a, img, prompt)
		}
	} else {
		op = func(ctx context.Context) (string, error) {
			return a.Ask(ctx, prompt, nil)
		}
	}

	printer.PrintHeader("ASK", "kisan ask", details)

	answer, err := ui.RunWithSpinner(ctx, os.Stdout, "Thinking", op)
	if err != nil {
		printer.PrintError("The assistant could not answer", err, askTips(err))
		return err
	}
	printer.PrintMarkdown(answer)
	return nil
}

func askTips(err error) []string {
	switch {
	case assistant.IsTimeout(err):
		return []string{"Try again; the backend may be busy", "Raise assistant.timeout in the config file"}
	case assistant.IsNetworkError(err):
		return []string{"Check that kisan-server is running", "Use 'kisan scan' to find servers on the network"}
	case assistant.IsHTTPError(err):
		return []string{"Check the server logs for details"}
	}
	return nil
}

// statusCmd prints the saved profile and the active configuration
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the saved profile and configuration",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	if err := initLogging(); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, persister, err := newStore(0)
	if err != nil {
		return err
	}
	snap := st.Snapshot()

	configPath, _ := config.GetConfigPath()

	crops := "none"
	if len(snap.SelectedCrops) > 0 {
		crops = strings.Join(snap.SelectedCrops, ", ")
	}
	farming := string(snap.FarmingType)
	if farming == "" {
		farming = "not set"
	}

	printer := ui.NewPrinter(os.Stdout)
	printer.PrintHeader("STATUS", "kisan status", nil)
	printer.PrintDetails([]ui.Detail{
		{Key: "Language", Value: snap.SelectedLanguage},
		{Key: "Crops", Value: crops},
		{Key: "Farming type", Value: farming},
		{Key: "Onboarding", Value: strconv.FormatBool(snap.OnboardingCompleted)},
	})
	printer.Newline()

	details := []ui.Detail{
		{Key: "Provider", Value: cfg.Assistant.Provider},
	}
	if cfg.Assistant.URL != "" {
		details = append(details, ui.Detail{Key: "Server", Value: cfg.Assistant.URL})
	}
	details = append(details,
		ui.Detail{Key: "Config", Value: configPath},
		ui.Detail{Key: "Profile", Value: persister.Path},
	)
	printer.PrintDetails(details)
	return nil
}

// resetCmd forgets the saved profile
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget the saved profile and run onboarding again",
	Example: `  # Ask for confirmation
  kisan reset

  # Scripted reset
  kisan reset --yes`,
	RunE: runReset,
}

func runReset(cmd *cobra.Command, args []string) error {
	if err := initLogging(); err != nil {
		return err
	}

	_, persister, err := newStore(0)
	if err != nil {
		return err
	}

	if !assumeYes && !ui.ConfirmReset(os.Stdin, os.Stdout, persister.Path) {
		return nil
	}

	if err := persister.Remove(); err != nil {
		return fmt.Errorf("failed to reset profile: %w", err)
	}
	ui.NewPrinter(os.Stdout).PrintSuccess("Profile reset", []ui.Detail{
		{Key: "Next start", Value: "onboarding"},
	})
	return nil
}

// scanCmd discovers assistant servers on the network
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for kisan-server instances on the network",
	Long: `Scan for kisan-server instances using mDNS/DNS-SD discovery.

Each server advertises its assistant provider and version. Use the printed
URL with --provider http or --provider ws.`,
	Example: `  # Scan for 5 seconds (default)
  kisan scan

  # Longer scan for slow networks
  kisan scan --timeout 15`,
	RunE: runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	if err := initLogging(); err != nil {
		return err
	}

	fmt.Printf("Scanning for kisan servers (timeout: %ds)...\n\n", scanTimeout)

	services, err := discovery.Scan(cmd.Context(), time.Duration(scanTimeout)*time.Second)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(services) == 0 {
		fmt.Println("No servers found.")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Ensure kisan-server is running without --no-advertise")
		fmt.Println("  - Check that both machines are on the same network")
		fmt.Println("  - Try increasing --timeout")
		return nil
	}

	fmt.Printf("Found %d server(s):\n\n", len(services))
	for i, s := range services {
		fmt.Printf("%d. %s\n", i+1, s.Instance)
		fmt.Printf("   URL:      %s\n", s.BaseURL())
		fmt.Printf("   Provider: %s\n", s.Provider())
		fmt.Printf("   Version:  %s\n", s.Version())
		fmt.Println()
	}

	fmt.Println("Use 'kisan --provider http --url <url>' to connect")
	return nil
}

// configCmd manages the configuration file
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.CreateDefaultConfig()
		if err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GetConfigPath()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}
