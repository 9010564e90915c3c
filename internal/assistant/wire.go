package assistant

import (
	"encoding/base64"
	"fmt"
)

// Wire formats of the kisan-server API.

// Endpoint paths served by kisan-server.
const (
	AskPath    = "/api/ask"
	ChatPath   = "/ws/chat"
	HealthPath = "/health"
)

// AskRequest is the body of POST /api/ask.
type AskRequest struct {
	Prompt string `json:"prompt"`
	// Image is base64 (standard encoding) when present.
	Image string `json:"image,omitempty"`
}

// AskResponse is the body returned by POST /api/ask.
type AskResponse struct {
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

// ChatRequest is a client frame on /ws/chat.
type ChatRequest struct {
	ID     string `json:"id"`
	Prompt string `json:"prompt"`
	Image  string `json:"image,omitempty"`
}

// ChatResponse is a server frame on /ws/chat. Exactly one of Response and
// Error is set.
type ChatResponse struct {
	ID       string `json:"id"`
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

// EncodeImage encodes image bytes for the wire. Empty input yields "".
func EncodeImage(image []byte) string {
	if len(image) == 0 {
		return ""
	}
	return base64.StdEncoding.EncodeToString(image)
}

// DecodeImage decodes a wire image. Empty input yields nil.
func DecodeImage(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid image encoding: %w", err)
	}
	return b, nil
}
