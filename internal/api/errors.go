package api

import "errors"

// Sentinel errors for the normalised response taxonomy. Domain services
// branch on these with errors.Is and never see raw status codes.
var (
	ErrAuthentication  = errors.New("authentication required")
	ErrAuthorization   = errors.New("access denied")
	ErrNotFound        = errors.New("resource not found")
	ErrServer          = errors.New("server error occurred")
	ErrRequestFailed   = errors.New("an error occurred")
	ErrInvalidResponse = errors.New("invalid response format")
	ErrNetwork         = errors.New("network error")
)

// StatusError carries the user-facing message for a non-2xx response. The
// message is the server-provided one when the error body parses, otherwise
// the generic message for the status class. Raw response bodies are never
// exposed.
type StatusError struct {
	StatusCode int
	Message    string
	kind       error
}

func (e *StatusError) Error() string { return e.Message }

func (e *StatusError) Unwrap() error { return e.kind }

func statusError(code int, message string, kind error) *StatusError {
	if message == "" {
		message = kind.Error()
	}
	return &StatusError{StatusCode: code, Message: message, kind: kind}
}
