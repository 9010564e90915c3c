package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/muurk/kisan/internal/assistant"
	"github.com/muurk/kisan/internal/logging"
	"github.com/muurk/kisan/internal/version"
)

// maxRequestBytes bounds an /api/ask body. Images arrive base64 encoded.
const maxRequestBytes = 16 << 20

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Provider string `json:"provider"`
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get(assistant.HealthPath, s.handleHealth)
	r.Post(assistant.AskPath, s.handleAsk)
	r.Get(assistant.ChatPath, s.handleChat)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, assistant.AskResponse{Error: "not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, assistant.AskResponse{Error: "method not allowed"})
	})

	return r
}

// requestLogger logs every request through the shared logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logging.LogHTTPRequest(r, ww.Status(), ww.BytesWritten(), time.Since(start))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:   "ok",
		Version:  version.Version,
		Provider: s.config.Provider,
	})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req assistant.AskRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes))
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, assistant.AskResponse{Error: "invalid JSON body"})
		return
	}

	prompt, image, err := decodeAsk(req.Prompt, req.Image)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, assistant.AskResponse{Error: err.Error()})
		return
	}

	reply, err := s.ask(r, prompt, image)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, assistant.AskResponse{Error: assistant.ShortMessage(err)})
		return
	}

	writeJSON(w, http.StatusOK, assistant.AskResponse{Response: reply})
}

// decodeAsk validates a prompt and decodes its image.
func decodeAsk(prompt, encodedImage string) (string, []byte, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", nil, errors.New("prompt is required")
	}
	image, err := assistant.DecodeImage(encodedImage)
	if err != nil {
		return "", nil, err
	}
	return prompt, image, nil
}

func (s *Server) ask(r *http.Request, prompt string, image []byte) (string, error) {
	start := time.Now()
	reply, err := s.assistant.Ask(r.Context(), prompt, image)
	logging.LogAssistantCall(s.config.Provider, len(prompt), len(image) > 0, time.Since(start), err)
	if err != nil {
		logging.Debug("Upstream assistant failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
	}
	return reply, err
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
