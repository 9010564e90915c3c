package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/muurk/kisan/internal/logging"
	"github.com/muurk/kisan/internal/version"
)

const (
	// Time allowed to write a frame to the server
	wsWriteWait = 10 * time.Second

	// Upper bound for a reply when the context carries no deadline
	wsReadWait = 2 * time.Minute
)

// WebSocketClient asks a kisan-server over /ws/chat. It dials lazily, keeps
// the connection open between calls and redials after any failure. Calls
// are serialized: one request is in flight at a time.
type WebSocketClient struct {
	// URL is the chat endpoint (ws:// or wss://)
	URL string

	// Dialer is the underlying websocket dialer
	Dialer *websocket.Dialer

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewWebSocketClient creates a client for the server at baseURL. http and
// https base URLs are mapped to ws and wss.
func NewWebSocketClient(baseURL string) *WebSocketClient {
	return &WebSocketClient{
		URL:    chatURL(baseURL),
		Dialer: websocket.DefaultDialer,
	}
}

func chatURL(baseURL string) string {
	u := strings.TrimRight(baseURL, "/")
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	case !strings.HasPrefix(u, "ws://") && !strings.HasPrefix(u, "wss://"):
		u = "ws://" + u
	}
	if !strings.HasSuffix(u, ChatPath) {
		u += ChatPath
	}
	return u
}

// Ask sends one chat frame and waits for the reply with the same id.
func (c *WebSocketClient) Ask(ctx context.Context, prompt string, image []byte) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := time.Now()
	answer, err := c.roundTrip(ctx, prompt, image)
	if err != nil {
		c.closeLocked()
	}
	logging.LogAssistantCall("ws", len(prompt), len(image) > 0, time.Since(start), err)
	return answer, err
}

func (c *WebSocketClient) roundTrip(ctx context.Context, prompt string, image []byte) (string, error) {
	conn, err := c.connLocked(ctx)
	if err != nil {
		return "", err
	}

	// Unblock the read when the context ends.
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetReadDeadline(time.Now())
	})
	defer stop()

	req := ChatRequest{ID: uuid.NewString(), Prompt: prompt, Image: EncodeImage(image)}
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	if err := conn.WriteJSON(req); err != nil {
		return "", c.wrapErr(ctx, "failed to send chat frame", err)
	}
	logging.LogWebSocketMessage(c.URL, "sent", req.ID, len(prompt))

	readDeadline := time.Now().Add(wsReadWait)
	if d, ok := ctx.Deadline(); ok {
		readDeadline = d
	}
	_ = conn.SetReadDeadline(readDeadline)

	for {
		var resp ChatResponse
		if err := conn.ReadJSON(&resp); err != nil {
			if isJSONError(err) {
				return "", NewParseError("malformed chat frame", err)
			}
			return "", c.wrapErr(ctx, "failed to read chat frame", err)
		}
		logging.LogWebSocketMessage(c.URL, "received", resp.ID, len(resp.Response))

		// Replies to abandoned requests are skipped.
		if resp.ID != req.ID {
			continue
		}
		if resp.Error != "" {
			return "", NewUnavailableError(resp.Error, nil)
		}
		if strings.TrimSpace(resp.Response) == "" {
			return "", NewUnavailableError("empty response", nil)
		}
		return resp.Response, nil
	}
}

func (c *WebSocketClient) connLocked(ctx context.Context) (*websocket.Conn, error) {
	if c.conn != nil {
		return c.conn, nil
	}

	header := http.Header{}
	header.Set("User-Agent", version.UserAgent())

	conn, resp, err := c.Dialer.DialContext(ctx, c.URL, header)
	if err != nil {
		if resp != nil {
			_ = resp.Body.Close()
			return nil, NewHTTPError(resp.StatusCode, fmt.Sprintf("websocket handshake with %s failed", c.URL))
		}
		return nil, c.wrapErr(ctx, fmt.Sprintf("failed to connect to %s", c.URL), err)
	}
	c.conn = conn
	return conn, nil
}

func (c *WebSocketClient) wrapErr(ctx context.Context, message string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return NewTimeoutError(message, ctxErr)
		}
		return ctxErr
	}
	return NewNetworkError(message, err)
}

// isJSONError reports whether ReadJSON failed decoding rather than reading.
func isJSONError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}

// Close closes the connection, if one is open.
func (c *WebSocketClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeLocked()
}

func (c *WebSocketClient) closeLocked() error {
	if c.conn == nil {
		return nil
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	err := c.conn.Close()
	c.conn = nil
	return err
}
