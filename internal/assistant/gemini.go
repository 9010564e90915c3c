package assistant

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/muurk/kisan/internal/logging"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

// APIKeyEnvVar is the conventional environment variable for the Gemini key.
const APIKeyEnvVar = "GEMINI_API_KEY"

const systemInstruction = "You are Kisan, an assistant for small farmers in India. " +
	"Answer briefly and practically. Prefer organic and low-cost remedies, " +
	"mention quantities and timing, and use Indian units and rupee prices."

// Gemini answers through the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini backend.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required (set %s)", APIKeyEnvVar)
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Gemini{client: client, model: model}, nil
}

// Model returns the model name in use.
func (g *Gemini) Model() string { return g.model }

// Ask sends the prompt, and the image as an inline part when present.
func (g *Gemini) Ask(ctx context.Context, prompt string, image []byte) (string, error) {
	parts := []*genai.Part{genai.NewPartFromText(prompt)}
	if len(image) > 0 {
		parts = append(parts, genai.NewPartFromBytes(image, http.DetectContentType(image)))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
	}

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		err = classifyGeminiError(err)
		logging.LogAssistantCall("gemini", len(prompt), len(image) > 0, time.Since(start), err)
		return "", err
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		err := NewUnavailableError("model returned no text", nil)
		logging.LogAssistantCall("gemini", len(prompt), len(image) > 0, time.Since(start), err)
		return "", err
	}

	logging.LogAssistantCall("gemini", len(prompt), len(image) > 0, time.Since(start), nil)
	return text, nil
}

func classifyGeminiError(err error) error {
	if isTimeout(err) {
		return NewTimeoutError("gemini request timed out", err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		e := NewHTTPError(apiErr.Code, apiErr.Message)
		e.Err = err
		return e
	}
	return NewNetworkError("gemini request failed", err)
}
