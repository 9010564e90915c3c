package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/kisan/internal/assistant"
	"github.com/muurk/kisan/internal/logging"
)

const (
	// Time allowed to write a frame to the peer
	writeWait = 10 * time.Second

	// Time allowed between frames or pongs from the peer
	pongWait = 60 * time.Second

	// Send pings with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum frame size accepted from the peer
	maxMessageSize = maxRequestBytes
)

// chatSession is one open /ws/chat socket.
type chatSession struct {
	remote string
	cancel context.CancelFunc

	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *chatSession) writeJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteJSON(v)
}

func (c *chatSession) ping() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

func (c *chatSession) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.ping(); err != nil {
				logging.Debug("Ping failed", zap.String("remote_addr", c.remote), zap.Error(err))
				return
			}
		}
	}
}

// handleChat upgrades to a WebSocket and answers chat frames in order.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error.
		logging.Warn("WebSocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	session := &chatSession{remote: r.RemoteAddr, cancel: cancel, conn: conn}
	if !s.track(conn, session) {
		cancel()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		_ = conn.Close()
		return
	}

	pingDone := make(chan struct{})
	defer func() {
		cancel()
		<-pingDone
		s.untrack(conn)
		_ = conn.Close()
		logging.LogConnection(session.remote, "chat_closed")
	}()

	logging.LogConnection(session.remote, "chat_opened")

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	go func() {
		defer close(pingDone)
		session.pingLoop(ctx)
	}()

	for {
		var req assistant.ChatRequest
		err := conn.ReadJSON(&req)
		if err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				if werr := session.writeJSON(assistant.ChatResponse{Error: "invalid frame"}); werr != nil {
					return
				}
				continue
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Info("Chat connection closed unexpectedly",
					zap.String("remote_addr", session.remote),
					zap.Error(err),
				)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		logging.LogWebSocketMessage(session.remote, "received", req.ID, len(req.Prompt))

		resp := s.answerFrame(ctx, req)
		if err := session.writeJSON(resp); err != nil {
			logging.Debug("Chat write failed", zap.String("remote_addr", session.remote), zap.Error(err))
			return
		}
		logging.LogWebSocketMessage(session.remote, "sent", resp.ID, len(resp.Response))
	}
}

// answerFrame produces the reply frame for one request. Validation and
// assistant failures become error frames; the socket stays open.
func (s *Server) answerFrame(ctx context.Context, req assistant.ChatRequest) assistant.ChatResponse {
	prompt, image, err := decodeAsk(req.Prompt, req.Image)
	if err != nil {
		return assistant.ChatResponse{ID: req.ID, Error: err.Error()}
	}

	start := time.Now()
	reply, err := s.assistant.Ask(ctx, prompt, image)
	logging.LogAssistantCall(s.config.Provider, len(prompt), len(image) > 0, time.Since(start), err)
	if err != nil {
		return assistant.ChatResponse{ID: req.ID, Error: assistant.ShortMessage(err)}
	}
	return assistant.ChatResponse{ID: req.ID, Response: reply}
}
