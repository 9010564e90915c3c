package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/muurk/kisan/internal/assistant"
)

func echoAssistant() assistant.Assistant {
	return assistant.Func(func(ctx context.Context, prompt string, image []byte) (string, error) {
		if len(image) > 0 {
			return "image:" + string(image) + " " + prompt, nil
		}
		return "echo: " + prompt, nil
	})
}

func newTestServer(t *testing.T, a assistant.Assistant) (*Server, *httptest.Server) {
	t.Helper()
	srv, err := New(&Config{Provider: "test"}, a)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func postAsk(t *testing.T, url, body string) (int, assistant.AskResponse) {
	t.Helper()
	resp, err := http.Post(url+assistant.AskPath, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out assistant.AskResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	return resp.StatusCode, out
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t, echoAssistant())

	resp, err := http.Get(ts.URL + assistant.HealthPath)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "test", body.Provider)
	assert.NotEmpty(t, body.Version)
}

func TestAsk(t *testing.T) {
	failing := assistant.Func(func(context.Context, string, []byte) (string, error) {
		return "", assistant.NewUnavailableError("quota exhausted", nil)
	})

	tests := []struct {
		name       string
		a          assistant.Assistant
		body       string
		wantStatus int
		wantReply  string
		wantError  string
	}{
		{
			name:       "text prompt",
			a:          echoAssistant(),
			body:       `{"prompt":"  when to sow wheat  "}`,
			wantStatus: http.StatusOK,
			wantReply:  "echo: when to sow wheat",
		},
		{
			name:       "prompt with image",
			a:          echoAssistant(),
			body:       `{"prompt":"what is this","image":"` + assistant.EncodeImage([]byte("leaf")) + `"}`,
			wantStatus: http.StatusOK,
			wantReply:  "image:leaf what is this",
		},
		{
			name:       "empty prompt",
			a:          echoAssistant(),
			body:       `{"prompt":"   "}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "prompt is required",
		},
		{
			name:       "bad image encoding",
			a:          echoAssistant(),
			body:       `{"prompt":"x","image":"%%%"}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid image encoding",
		},
		{
			name:       "not JSON",
			a:          echoAssistant(),
			body:       `prompt=x`,
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid JSON body",
		},
		{
			name:       "upstream failure",
			a:          failing,
			body:       `{"prompt":"x"}`,
			wantStatus: http.StatusBadGateway,
			wantError:  "quota exhausted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ts := newTestServer(t, tt.a)

			status, out := postAsk(t, ts.URL, tt.body)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantReply, out.Response)
			if tt.wantError != "" {
				assert.Contains(t, out.Error, tt.wantError)
			} else {
				assert.Empty(t, out.Error)
			}
		})
	}
}

func TestUnknownRoute(t *testing.T) {
	_, ts := newTestServer(t, echoAssistant())

	resp, err := http.Get(ts.URL + "/nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Post(ts.URL+assistant.HealthPath, "application/json", bytes.NewReader(nil))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestHTTPClientAgainstServer(t *testing.T) {
	_, ts := newTestServer(t, echoAssistant())
	client := assistant.NewHTTPClient(ts.URL)

	reply, err := client.Ask(context.Background(), "market price of onion", nil)
	require.NoError(t, err)
	assert.Equal(t, "echo: market price of onion", reply)

	reply, err = client.Ask(context.Background(), "diagnose", []byte("png"))
	require.NoError(t, err)
	assert.Equal(t, "image:png diagnose", reply)

	require.NoError(t, client.Health(context.Background()))

	_, err = client.Ask(context.Background(), "", nil)
	assert.True(t, assistant.IsHTTPError(err), "got %v", err)
}

func TestChat(t *testing.T) {
	_, ts := newTestServer(t, echoAssistant())

	client := assistant.NewWebSocketClient(ts.URL)
	defer client.Close()

	for _, prompt := range []string{"first question", "second question"} {
		reply, err := client.Ask(context.Background(), prompt, nil)
		require.NoError(t, err)
		assert.Equal(t, "echo: "+prompt, reply)
	}

	reply, err := client.Ask(context.Background(), "see photo", []byte("leaf"))
	require.NoError(t, err)
	assert.Equal(t, "image:leaf see photo", reply)
}

func dialChat(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + assistant.ChatPath
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	resp.Body.Close()
	return conn
}

func TestChatErrorFramesKeepSocketOpen(t *testing.T) {
	_, ts := newTestServer(t, echoAssistant())
	conn := dialChat(t, ts)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	var resp assistant.ChatResponse
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, "invalid frame", resp.Error)

	require.NoError(t, conn.WriteJSON(assistant.ChatRequest{ID: "a", Prompt: ""}))
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, "a", resp.ID)
	assert.Equal(t, "prompt is required", resp.Error)

	require.NoError(t, conn.WriteJSON(assistant.ChatRequest{ID: "b", Prompt: "hello"}))
	resp = assistant.ChatResponse{}
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, assistant.ChatResponse{ID: "b", Response: "echo: hello"}, resp)
}

func TestChatUpstreamError(t *testing.T) {
	a := assistant.Func(func(context.Context, string, []byte) (string, error) {
		return "", errors.New("model overloaded")
	})
	_, ts := newTestServer(t, a)

	client := assistant.NewWebSocketClient(ts.URL)
	defer client.Close()

	_, err := client.Ask(context.Background(), "hi", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model overloaded")
}

func TestNewValidation(t *testing.T) {
	_, err := New(&Config{}, nil)
	assert.Error(t, err)

	_, err = New(&Config{Port: 70000}, echoAssistant())
	assert.Error(t, err)

	_, err = New(&Config{CertPath: "/nonexistent/cert.pem"}, echoAssistant())
	assert.Error(t, err)

	srv, err := New(&Config{}, echoAssistant())
	require.NoError(t, err)
	assert.Equal(t, DefaultShutdownTimeout, srv.config.ShutdownTimeout)
}

func TestStartAndShutdown(t *testing.T) {
	defer goleak.VerifyNone(t)

	var calls atomic.Int32
	a := assistant.Func(func(ctx context.Context, prompt string, _ []byte) (string, error) {
		calls.Add(1)
		return "ok", nil
	})

	srv, err := New(&Config{Host: "127.0.0.1", Port: 0, Provider: "test", ShutdownTimeout: 2 * time.Second}, a)
	require.NoError(t, err)

	addr, err := srv.Listen()
	require.NoError(t, err)
	base := "http://" + addr.String()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(ctx) }()

	client := assistant.NewHTTPClient(base)
	require.Eventually(t, func() bool {
		return client.Health(context.Background()) == nil
	}, 2*time.Second, 20*time.Millisecond)

	chat := assistant.NewWebSocketClient(base)
	reply, err := chat.Ask(context.Background(), "ping", nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", reply)
	assert.Equal(t, 1, srv.GetActiveConnections())

	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after cancel")
	}

	assert.Equal(t, 0, srv.GetActiveConnections())
	assert.Equal(t, int32(1), calls.Load())

	require.NoError(t, chat.Close())
	client.HTTPClient.CloseIdleConnections()
}
