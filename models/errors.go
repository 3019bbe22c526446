package models

import "fmt"

// Error codes used in API responses and internal error handling.
const (
	ErrCodeTimeout      = "FETCH_TIMEOUT"
	ErrCodeUpstream     = "UPSTREAM_HTTP_ERROR"
	ErrCodeNetwork      = "NETWORK_ERROR"
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeRateLimited  = "RATE_LIMITED"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// ErrorResponse is the JSON body of every non-2xx API response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// FetchError is the internal error type for a failed page fetch.
// It implements the error interface and supports error wrapping via Unwrap.
type FetchError struct {
	Code    string
	Message string

	// StatusCode is the upstream HTTP status for ErrCodeUpstream, 0 otherwise.
	StatusCode int

	Err error // wrapped original error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError creates a new FetchError.
func NewFetchError(code, message string, err error) *FetchError {
	return &FetchError{Code: code, Message: message, Err: err}
}

// NewUpstreamError creates a FetchError for a non-success upstream status.
func NewUpstreamError(status int, targetURL string) *FetchError {
	return &FetchError{
		Code:       ErrCodeUpstream,
		Message:    fmt.Sprintf("HTTP %d for %s", status, targetURL),
		StatusCode: status,
	}
}
