package assistant

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"syscall"
)

// ErrorType represents the category of an assistant failure.
type ErrorType int

const (
	// ErrTypeNetwork indicates the backend could not be reached.
	ErrTypeNetwork ErrorType = iota
	// ErrTypeTimeout indicates the backend did not answer in time.
	ErrTypeTimeout
	// ErrTypeHTTP indicates a non-2xx response.
	ErrTypeHTTP
	// ErrTypeParse indicates a malformed response.
	ErrTypeParse
	// ErrTypeUnavailable indicates the backend answered but produced nothing usable.
	ErrTypeUnavailable
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeNetwork:
		return "Network Error"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeHTTP:
		return "HTTP Error"
	case ErrTypeParse:
		return "Parse Error"
	case ErrTypeUnavailable:
		return "Assistant Unavailable"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// Error is returned by the network backends.
type Error struct {
	Type       ErrorType // Category of error
	Message    string    // Human-readable error message
	StatusCode int       // HTTP status code (if applicable)
	Err        error     // Underlying error (if any)
	Retryable  bool      // Whether a manual retry may succeed
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// NewNetworkError classifies err as a network or timeout failure.
func NewNetworkError(message string, err error) *Error {
	if isTimeout(err) {
		return NewTimeoutError(message, err)
	}
	return &Error{
		Type:      ErrTypeNetwork,
		Message:   message,
		Err:       err,
		Retryable: true,
	}
}

// NewTimeoutError creates a timeout error
func NewTimeoutError(message string, err error) *Error {
	return &Error{
		Type:      ErrTypeTimeout,
		Message:   message,
		Err:       err,
		Retryable: true,
	}
}

// NewHTTPError creates an HTTP-level error
func NewHTTPError(statusCode int, message string) *Error {
	return &Error{
		Type:       ErrTypeHTTP,
		Message:    message,
		StatusCode: statusCode,
		Retryable:  statusCode >= http.StatusInternalServerError,
	}
}

// NewParseError creates a parsing error
func NewParseError(message string, err error) *Error {
	return &Error{
		Type:    ErrTypeParse,
		Message: message,
		Err:     err,
	}
}

// NewUnavailableError creates an error for an empty or refused answer
func NewUnavailableError(message string, err error) *Error {
	return &Error{
		Type:      ErrTypeUnavailable,
		Message:   message,
		Err:       err,
		Retryable: true,
	}
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr) && urlErr.Timeout()
}

func typeOf(err error) (ErrorType, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Type, true
	}
	return 0, false
}

// IsNetworkError checks if an error is a network error (including timeouts)
func IsNetworkError(err error) bool {
	t, ok := typeOf(err)
	return ok && (t == ErrTypeNetwork || t == ErrTypeTimeout)
}

// IsTimeout checks if an error is a timeout error
func IsTimeout(err error) bool {
	t, ok := typeOf(err)
	return ok && t == ErrTypeTimeout
}

// IsHTTPError checks if an error is an HTTP error
func IsHTTPError(err error) bool {
	t, ok := typeOf(err)
	return ok && t == ErrTypeHTTP
}

// IsParseError checks if an error is a parse error
func IsParseError(err error) bool {
	t, ok := typeOf(err)
	return ok && t == ErrTypeParse
}

// IsRetryable checks if an error may succeed on a manual retry
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable
	}
	return false
}

// ShortMessage returns a concise, user-friendly description of err.
func ShortMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}

	switch e.Type {
	case ErrTypeTimeout:
		return "Assistant not responding (timeout)"
	case ErrTypeNetwork:
		if errors.Is(e.Err, syscall.ECONNREFUSED) {
			return "Assistant server refused the connection - is kisan-server running?"
		}
		return "Network error - check connection"
	case ErrTypeHTTP:
		return fmt.Sprintf("Assistant error (HTTP %d)", e.StatusCode)
	case ErrTypeParse:
		return "Failed to parse assistant response"
	default:
		return e.Message
	}
}
