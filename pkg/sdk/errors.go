package doorpilot

import (
	"errors"
	"fmt"
)

// Sentinel errors. Use errors.Is() to check; errors.As() with *APIError
// exposes the full response body.
var (
	// ErrUnauthorized is returned for 401 responses (missing or invalid token).
	ErrUnauthorized = errors.New("doorpilot: unauthorized")
	// ErrForbidden is returned for 403 responses (technician role required).
	ErrForbidden = errors.New("doorpilot: forbidden")
	// ErrBadRequest is returned for 400 responses (validation failures).
	ErrBadRequest = errors.New("doorpilot: bad request")
	// ErrUpstream is returned for 502 responses (inference or index failure).
	ErrUpstream = errors.New("doorpilot: upstream service error")
)

// APIError carries the error body of a non-2xx response.
type APIError struct {
	StatusCode int
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("doorpilot: api error %d (%s): %s", e.StatusCode, e.Code, e.Message)
}

// Unwrap maps the HTTP status onto a sentinel error.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case 400:
		return ErrBadRequest
	case 401:
		return ErrUnauthorized
	case 403:
		return ErrForbidden
	case 502:
		return ErrUpstream
	default:
		return nil
	}
}
