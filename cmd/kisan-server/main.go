// Kisan-server serves a farming assistant to kisan clients on the network.
//
// It exposes the assistant over HTTP (POST /api/ask) and WebSocket
// (/ws/chat), and advertises itself over mDNS so that 'kisan scan' can find
// it. TLS is enabled when a certificate and key are given.
//
// Usage:
//
//	kisan-server [flags]
//
// See 'kisan-server --help' for available options.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/muurk/kisan/internal/assistant"
	"github.com/muurk/kisan/internal/config"
	"github.com/muurk/kisan/internal/logging"
	"github.com/muurk/kisan/internal/server"
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

// Server flags
var (
	host        string
	port        int
	provider    string
	model       string
	noAdvertise bool
	certPath    string
	keyPath     string
	logLevel    string
)

var rootCmd = &cobra.Command{
	Use:   "kisan-server",
	Short: "Kisan assistant server",
	Long: `Serve a farming assistant to kisan clients on the local network.

Clients connect with 'kisan --provider http --url <url>' for single requests
or '--provider ws' for a persistent chat socket. The server advertises itself
over mDNS unless --no-advertise is given.

The gemini provider reads its API key from GEMINI_API_KEY, which may be set
in a .env file in the working directory.`,
	Example: `  # Built-in keyword assistant on port 8080
  kisan-server

  # Gemini on a custom port with debug logging
  kisan-server --provider gemini --port 9000 --log-level debug

  # TLS with your own certificate
  kisan-server --cert fullchain.pem --key privkey.pem`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServer,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.Flags().StringVar(&host, "host", "", "Listen address (empty = all interfaces)")
	rootCmd.Flags().IntVar(&port, "port", server.DefaultPort, "Listen port")
	rootCmd.Flags().StringVar(&provider, "provider", "", "Assistant provider (stub, gemini); defaults to the config file")
	rootCmd.Flags().StringVar(&model, "model", "", "Gemini model name")
	rootCmd.Flags().BoolVar(&noAdvertise, "no-advertise", false, "Do not advertise over mDNS")
	rootCmd.Flags().StringVar(&certPath, "cert", "", "Path to TLS certificate file")
	rootCmd.Flags().StringVar(&keyPath, "key", "", "Path to TLS private key file")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
}

func runServer(cmd *cobra.Command, args []string) error {
	if err := logging.Initialize(logLevel); err != nil {
		return err
	}
	defer logging.Sync()

	// Validate: Either both cert and key are provided, or neither
	if (certPath != "") != (keyPath != "") {
		return fmt.Errorf("both --cert and --key must be provided together, or neither")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	ac := cfg.AssistantConfig()
	if provider != "" {
		ac.Provider = provider
	}
	if model != "" {
		ac.Model = model
	}

	// A server backed by another server would only forward requests.
	switch strings.ToLower(ac.Provider) {
	case assistant.ProviderHTTP, assistant.ProviderWebSocket:
		if provider != "" {
			return fmt.Errorf("provider %q cannot back a server; use stub or gemini", provider)
		}
		ac.Provider = assistant.ProviderStub
	}

	ctx := cmd.Context()
	a, err := assistant.New(ctx, ac)
	if err != nil {
		return fmt.Errorf("failed to create assistant: %w", err)
	}
	defer func() { _ = assistant.Close(a) }()

	srv, err := server.New(&server.Config{
		Host:      host,
		Port:      port,
		Provider:  ac.Provider,
		Advertise: !noAdvertise,
		CertPath:  certPath,
		KeyPath:   keyPath,
	}, a)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start(ctx)
}

// Version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("kisan-server %s (commit: %s)\n", version.Version, version.Commit)
	},
}
