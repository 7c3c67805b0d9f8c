package datasource

import (
	"errors"
	"fmt"
)

// SourceError represents errors from remote data source operations
type SourceError struct {
	Source  string // Data source name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e SourceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s (%v)", e.Source, e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Source, e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e SourceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
)

var (
	ErrRateLimitExceeded    = errors.New("rate limit exceeded")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrServerError          = errors.New("server error")
)

// NewSourceError creates a new data source error
func NewSourceError(source, code, message string, err error) SourceError {
	return SourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// statusError maps a non-2xx HTTP status to a SourceError
func statusError(source string, status int) SourceError {
	switch {
	case status == 401 || status == 403:
		return NewSourceError(source, ErrCodeAuthenticationFailed, fmt.Sprintf("status %d", status), ErrAuthenticationFailed)
	case status == 429:
		return NewSourceError(source, ErrCodeRateLimitExceeded, fmt.Sprintf("status %d", status), ErrRateLimitExceeded)
	case status >= 500:
		return NewSourceError(source, ErrCodeServerError, fmt.Sprintf("status %d", status), ErrServerError)
	default:
		return NewSourceError(source, ErrCodeInvalidData, fmt.Sprintf("unexpected status %d", status), nil)
	}
}
