// Package logging provides structured logging for the kisan binaries.
//
// This package wraps a global zap logger with convenience functions and a few
// domain-specific helpers. Logging is silent unless a level is requested,
// either explicitly or through the KISAN_LOG_LEVEL environment variable, so
// CLI output and the TUI stay clean by default.
//
// # Log Levels
//
//   - Debug: frame and state-change detail
//   - Info: normal operations (requests served, assistant calls)
//   - Warn: non-fatal issues (snapshot write failures, unavailable capabilities)
//   - Error: startup failures and upstream errors
//
// # Structured Logging
//
//	logging.Info("Snapshot loaded",
//	    zap.String("path", path),
//	    zap.Int("crops", len(crops)),
//	)
//
// # Specialized Logging
//
//	logging.LogHTTPRequest(r, status, size, elapsed)
//	logging.LogAssistantCall("http", len(prompt), hasImage, elapsed, err)
//	logging.LogStateChange("selected_language", "English")
//	logging.LogWebSocketMessage(remoteAddr, "received", frameID, size)
//
// # Configuration
//
// The server logs to stdout:
//
//	if err := logging.Initialize("info"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// The TUI owns the terminal, so it logs to a file instead:
//
//	_ = logging.InitializeToFile("", filepath.Join(dir, "kisan.log"))
//
// # Thread Safety
//
// All logging functions are safe for concurrent use.
package logging
