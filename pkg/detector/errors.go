package detector

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors.
var (
	// ErrNoBaseURL is returned by NewClient without a base URL.
	ErrNoBaseURL = errors.New("detector: base URL required")

	// ErrMalformedResponse is returned when the body is not a detection result.
	ErrMalformedResponse = errors.New("detector: malformed response")

	// ErrNoImage is returned when asked to send an empty image.
	ErrNoImage = errors.New("detector: no image provided")
)

// APIError is a failure reported by the backend. A response carrying an
// "error" field is an APIError even when the HTTP status is 200.
type APIError struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Message is the server-provided error text, or the status text when
	// the body carried none.
	Message string

	// FromServer is true when Message came from the body's error field.
	FromServer bool

	// RequestID is the X-Request-ID sent with the failing request.
	RequestID string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("detector: API error %d: %s", e.StatusCode, e.Message)
}

// IsServerError returns true for HTTP 5xx.
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}

// TransportError wraps a network-level failure (connection refused,
// timeout, DNS).
type TransportError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("detector: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// ServerMessage returns the backend's own error text when err carries
// one. It reports false for transport failures and bare status errors.
func ServerMessage(err error) (string, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.FromServer && apiErr.Message != "" {
		return apiErr.Message, true
	}
	return "", false
}

func statusMessage(code int) string {
	if text := http.StatusText(code); text != "" {
		return text
	}
	return fmt.Sprintf("status %d", code)
}
