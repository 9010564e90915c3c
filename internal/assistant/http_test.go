package assistant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClientAsk(t *testing.T) {
	var got AskRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, AskPath, r.URL.Path)
		assert.True(t, strings.HasPrefix(r.Header.Get("User-Agent"), "kisan/"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(AskResponse{Response: "Sow in June"})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL + "/")
	answer, err := c.Ask(context.Background(), "Best time to sow rice", []byte("img"))
	require.NoError(t, err)
	assert.Equal(t, "Sow in June", answer)
	assert.Equal(t, "Best time to sow rice", got.Prompt)

	img, err := DecodeImage(got.Image)
	require.NoError(t, err)
	assert.Equal(t, []byte("img"), img)
}

func TestHTTPClientErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		check   func(t *testing.T, err error)
	}{
		{
			name: "upstream failure",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				_ = json.NewEncoder(w).Encode(AskResponse{Error: "assistant failed"})
			},
			check: func(t *testing.T, err error) {
				var e *Error
				require.ErrorAs(t, err, &e)
				assert.Equal(t, ErrTypeHTTP, e.Type)
				assert.Equal(t, http.StatusBadGateway, e.StatusCode)
				assert.Equal(t, "assistant failed", e.Message)
				assert.True(t, e.Retryable)
			},
		},
		{
			name: "bad request",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", http.StatusBadRequest)
			},
			check: func(t *testing.T, err error) {
				assert.True(t, IsHTTPError(err))
				assert.False(t, IsRetryable(err))
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("{not json"))
			},
			check: func(t *testing.T, err error) {
				assert.True(t, IsParseError(err))
			},
		},
		{
			name: "empty answer",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(AskResponse{Response: "  "})
			},
			check: func(t *testing.T, err error) {
				var e *Error
				require.ErrorAs(t, err, &e)
				assert.Equal(t, ErrTypeUnavailable, e.Type)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := NewHTTPClient(srv.URL).Ask(context.Background(), "q", nil)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestHTTPClientUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewHTTPClient(url).Ask(context.Background(), "q", nil)
	require.Error(t, err)
	assert.True(t, IsNetworkError(err))
}

func TestHTTPClientTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewHTTPClient(srv.URL).Ask(ctx, "q", nil)
	require.Error(t, err)
	assert.True(t, IsTimeout(err))
}

func TestHTTPClientHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == HealthPath {
			_, _ = w.Write([]byte("."))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	assert.NoError(t, NewHTTPClient(srv.URL).Health(context.Background()))
}

func TestImageEncoding(t *testing.T) {
	assert.Equal(t, "", EncodeImage(nil))

	b, err := DecodeImage("")
	require.NoError(t, err)
	assert.Nil(t, b)

	_, err = DecodeImage("%%%")
	assert.Error(t, err)
}
