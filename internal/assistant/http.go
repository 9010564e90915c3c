package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/muurk/kisan/internal/logging"
	"github.com/muurk/kisan/internal/version"
)

// DefaultHTTPTimeout is the transport-level timeout of HTTPClient. Callers
// normally bound calls tighter through the context.
const DefaultHTTPTimeout = 60 * time.Second

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 1 << 20

// HTTPClient asks a kisan-server over its JSON API.
type HTTPClient struct {
	// BaseURL is the server root (e.g., "http://192.168.1.20:8080")
	BaseURL string

	// HTTPClient is the underlying HTTP client
	HTTPClient *http.Client
}

// NewHTTPClient creates a client for the server at baseURL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: DefaultHTTPTimeout},
	}
}

// Ask posts the prompt to /api/ask.
func (c *HTTPClient) Ask(ctx context.Context, prompt string, image []byte) (string, error) {
	body, err := json.Marshal(AskRequest{Prompt: prompt, Image: EncodeImage(image)})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	url := c.BaseURL + AskPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		logging.LogAssistantCall("http", len(prompt), len(image) > 0, time.Since(start), err)
		return "", NewNetworkError(fmt.Sprintf("failed to reach %s", c.BaseURL), err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", NewNetworkError("failed to read response", err)
	}

	var out AskResponse
	decodeErr := json.Unmarshal(data, &out)

	if resp.StatusCode != http.StatusOK {
		msg := resp.Status
		if decodeErr == nil && out.Error != "" {
			msg = out.Error
		}
		err := NewHTTPError(resp.StatusCode, msg)
		logging.LogAssistantCall("http", len(prompt), len(image) > 0, time.Since(start), err)
		return "", err
	}

	if decodeErr != nil {
		return "", NewParseError("malformed response body", decodeErr)
	}
	if strings.TrimSpace(out.Response) == "" {
		return "", NewUnavailableError("empty response", nil)
	}

	logging.LogAssistantCall("http", len(prompt), len(image) > 0, time.Since(start), nil)
	return out.Response, nil
}

// Health checks that the server answers GET /health.
func (c *HTTPClient) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+HealthPath, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return NewNetworkError(fmt.Sprintf("failed to reach %s", c.BaseURL), err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return NewHTTPError(resp.StatusCode, resp.Status)
	}
	return nil
}
