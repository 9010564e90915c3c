// Package ui renders styled terminal output for the kisan command line.
//
// These components follow a "print and exit" pattern: a header naming the
// command, a spinner while the assistant is working, then a result box or a
// markdown-rendered answer. The interactive application lives in the tui
// package; this package only serves one-shot commands such as "kisan ask"
// and "kisan status".
//
// # Components
//
//   - Header: command banner with ordered details
//   - Result: success, failure, or warning box
//   - Markdown: assistant answers rendered with glamour
//   - Spinner: runs one operation while showing progress
//   - Confirm: typed confirmation before destructive commands
//
// Example:
//
//	p := ui.NewPrinter(os.Stdout)
//	p.PrintHeader("Ask", "kisan ask", []ui.Detail{{Key: "Provider", Value: "stub"}})
//	answer, err := ui.RunWithSpinner(ctx, os.Stdout, "Asking the assistant", ask)
//	if err != nil {
//	    p.PrintError("Request failed", err, tips)
//	    return err
//	}
//	p.PrintMarkdown(answer)
//
// # Logging
//
// Logging is controlled by KISAN_LOG_LEVEL. When it is unset zap is silent,
// so the styled output here is all the user sees.
package ui
