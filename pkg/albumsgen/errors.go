package albumsgen

import (
	"fmt"
	"net/http"
	"strings"
)

// Error represents a non-2xx response from the API.
type Error struct {
	StatusCode int    // HTTP status code
	Status     string // HTTP status line
	Message    string // Trimmed response body, if any
}

// Error returns the error message.
func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("albumsgen: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("albumsgen: unexpected status %d: %s", e.StatusCode, e.Message)
}

// Is checks if the target error is an API error with the same status code.
//
// This allows errors.Is() to work with *Error types.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.StatusCode == t.StatusCode
}

// NotFound reports whether the project does not exist.
func (e *Error) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// Temporary returns true if the server signalled a condition that may
// clear up on its own (rate limiting or a 5xx).
func (e *Error) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// DecodeError is returned when a 2xx response body is not valid JSON for
// the expected shape.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("albumsgen: failed to decode response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ErrNotFound matches any 404 response with errors.Is.
var ErrNotFound = &Error{StatusCode: http.StatusNotFound}

const maxErrorMessage = 200

func newError(resp *http.Response, body []byte) *Error {
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxErrorMessage {
		msg = msg[:maxErrorMessage] + "..."
	}
	return &Error{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Message:    msg,
	}
}
