// Package assistant answers farming questions.
//
// Every backend implements the Assistant interface:
//
//	answer, err := a.Ask(ctx, "Best time to sow rice", nil)
//
// # Backends
//
//   - Keyword: an offline stub that classifies the prompt by keyword and
//     returns canned answers after a short, randomized delay. It is the
//     default so the application works without network access.
//   - HTTPClient: posts to the /api/ask endpoint of a kisan-server.
//   - WebSocketClient: keeps one connection to /ws/chat on a kisan-server.
//   - Gemini: calls the Gemini API directly.
//
// New builds the backend named in the configuration and wraps it with
// WithTimeout.
//
// # Errors
//
// Network backends return *Error values. Use the Is* helpers or errors.As to
// inspect the category:
//
//	if assistant.IsTimeout(err) {
//	    // show a retry hint
//	}
//
// Failed calls are never retried automatically.
package assistant
