package assistant

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithTimeout(t *testing.T) {
	slow := Func(func(ctx context.Context, prompt string, image []byte) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})

	_, err := WithTimeout(slow, 10*time.Millisecond).Ask(context.Background(), "q", nil)
	require.Error(t, err)
	assert.True(t, IsTimeout(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWithTimeoutPassesThrough(t *testing.T) {
	boom := errors.New("boom")
	fast := Func(func(ctx context.Context, prompt string, image []byte) (string, error) {
		if prompt == "fail" {
			return "", boom
		}
		return "answer:" + prompt, nil
	})
	a := WithTimeout(fast, time.Second)

	got, err := a.Ask(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.Equal(t, "answer:q", got)

	_, err = a.Ask(context.Background(), "fail", nil)
	assert.ErrorIs(t, err, boom)
	assert.False(t, IsTimeout(err))
}

func TestWithTimeoutCallerCancel(t *testing.T) {
	a := WithTimeout(&Keyword{Delay: time.Hour}, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Ask(ctx, "q", nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, IsTimeout(err))
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	a, err := New(ctx, Config{})
	require.NoError(t, err)
	require.IsType(t, &timeoutAssistant{}, a)
	assert.IsType(t, &Keyword{}, a.(*timeoutAssistant).next)
	assert.Equal(t, DefaultTimeout, a.(*timeoutAssistant).timeout)

	a, err = New(ctx, Config{Provider: "HTTP", URL: "http://localhost:8080/", Timeout: time.Second})
	require.NoError(t, err)
	hc, ok := a.(*timeoutAssistant).next.(*HTTPClient)
	require.True(t, ok)
	assert.Equal(t, "http://localhost:8080", hc.BaseURL)

	a, err = New(ctx, Config{Provider: ProviderWebSocket, URL: "https://kisan.local"})
	require.NoError(t, err)
	wc, ok := a.(*timeoutAssistant).next.(*WebSocketClient)
	require.True(t, ok)
	assert.Equal(t, "wss://kisan.local/ws/chat", wc.URL)
	assert.NoError(t, Close(a))

	_, err = New(ctx, Config{Provider: ProviderHTTP})
	assert.Error(t, err)

	_, err = New(ctx, Config{Provider: ProviderGemini})
	assert.ErrorContains(t, err, APIKeyEnvVar)

	_, err = New(ctx, Config{Provider: "carrier-pigeon"})
	assert.Error(t, err)
}

func TestErrors(t *testing.T) {
	httpErr := NewHTTPError(502, "upstream failed")
	assert.True(t, IsHTTPError(httpErr))
	assert.True(t, IsRetryable(httpErr))
	assert.Equal(t, "Assistant error (HTTP 502)", ShortMessage(httpErr))
	assert.False(t, IsRetryable(NewHTTPError(400, "bad")))

	wrapped := errors.Join(errors.New("context"), NewParseError("bad json", errors.New("eof")))
	assert.True(t, IsParseError(wrapped))
	assert.False(t, IsNetworkError(wrapped))

	timeout := NewNetworkError("slow", context.DeadlineExceeded)
	assert.True(t, IsTimeout(timeout))
	assert.True(t, IsNetworkError(timeout))
	assert.Equal(t, "Timeout: slow (caused by: context deadline exceeded)", timeout.Error())

	plain := errors.New("plain")
	assert.Equal(t, "plain", ShortMessage(plain))
	assert.False(t, IsRetryable(plain))
}

func TestErrorTypeString(t *testing.T) {
	assert.Equal(t, "Network Error", ErrTypeNetwork.String())
	assert.Equal(t, "Assistant Unavailable", ErrTypeUnavailable.String())
	assert.Equal(t, "ErrorType(42)", ErrorType(42).String())
}
