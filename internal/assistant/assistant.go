package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Assistant answers a prompt, optionally about an image.
type Assistant interface {
	Ask(ctx context.Context, prompt string, image []byte) (string, error)
}

// Func adapts an ordinary function to the Assistant interface.
type Func func(ctx context.Context, prompt string, image []byte) (string, error)

// Ask calls f.
func (f Func) Ask(ctx context.Context, prompt string, image []byte) (string, error) {
	return f(ctx, prompt, image)
}

// Provider names accepted by New.
const (
	ProviderStub      = "stub"
	ProviderHTTP      = "http"
	ProviderWebSocket = "ws"
	ProviderGemini    = "gemini"
)

// DefaultTimeout bounds a single Ask call made through New.
const DefaultTimeout = 30 * time.Second

// Config selects and configures a backend.
type Config struct {
	Provider string
	// URL is the kisan-server base URL for the http and ws providers.
	URL string
	// Model and APIKey are used by the gemini provider.
	Model   string
	APIKey  string
	Timeout time.Duration
}

// New builds the configured backend wrapped with a timeout. An empty
// provider selects the keyword stub.
func New(ctx context.Context, cfg Config) (Assistant, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	var a Assistant
	switch strings.ToLower(cfg.Provider) {
	case "", ProviderStub:
		a = NewKeyword()
	case ProviderHTTP:
		if cfg.URL == "" {
			return nil, fmt.Errorf("assistant provider %q requires a url", cfg.Provider)
		}
		a = NewHTTPClient(cfg.URL)
	case ProviderWebSocket:
		if cfg.URL == "" {
			return nil, fmt.Errorf("assistant provider %q requires a url", cfg.Provider)
		}
		a = NewWebSocketClient(cfg.URL)
	case ProviderGemini:
		g, err := NewGemini(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, err
		}
		a = g
	default:
		return nil, fmt.Errorf("unknown assistant provider %q", cfg.Provider)
	}

	return WithTimeout(a, timeout), nil
}

type timeoutAssistant struct {
	next    Assistant
	timeout time.Duration
}

// WithTimeout bounds every call to a by d. A call that runs out of time
// returns an *Error of type ErrTypeTimeout.
func WithTimeout(a Assistant, d time.Duration) Assistant {
	return &timeoutAssistant{next: a, timeout: d}
}

func (t *timeoutAssistant) Ask(ctx context.Context, prompt string, image []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	start := time.Now()
	answer, err := t.next.Ask(ctx, prompt, image)
	if err != nil && ctx.Err() == context.DeadlineExceeded && !IsTimeout(err) {
		return "", NewTimeoutError(fmt.Sprintf("no answer after %s", time.Since(start).Round(time.Millisecond)), err)
	}
	return answer, err
}

// Close releases resources held by a, if it holds any.
func Close(a Assistant) error {
	switch v := a.(type) {
	case *timeoutAssistant:
		return Close(v.next)
	case interface{ Close() error }:
		return v.Close()
	}
	return nil
}
