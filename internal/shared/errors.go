package shared

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrAuthDenied       = fmt.Errorf("authorization denied")
	ErrInvalidState     = fmt.Errorf("invalid state parameter")
	ErrTokenExpired     = fmt.Errorf("access token expired")
	ErrRefreshFailed    = fmt.Errorf("token refresh failed")
	ErrNoRefreshToken   = fmt.Errorf("no refresh token available")
	ErrTimeout          = fmt.Errorf("operation timed out")
	ErrCallbackConsumed = fmt.Errorf("callback already processed")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrNotATerminal    = fmt.Errorf("not a terminal")
)

// APIError is returned for any non-2xx response from a Spotify endpoint.
//
// Body holds the provider's diagnostic payload verbatim.
type APIError struct {
	StatusCode int
	Body       string
	Err        error
}

// NewAPIError builds an [APIError], picking the sentinel from the status code.
// base is used for every status other than 401.
func NewAPIError(status int, body string, base error) *APIError {
	err := base
	if status == http.StatusUnauthorized {
		err = ErrTokenExpired
	}
	if err == nil {
		err = ErrAPIRequest
	}
	return &APIError{StatusCode: status, Body: strings.TrimSpace(body), Err: err}
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%v: status %d", e.Err, e.StatusCode)
	}
	return fmt.Sprintf("%v: status %d: %s", e.Err, e.StatusCode, e.Body)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// IsUnauthorized reports whether err carries an HTTP 401 from the provider.
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

// StatusCode extracts the HTTP status from an [APIError] chain, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
