// internal/engine/errors.go
package engine

import (
	"errors"
	"fmt"
	"net/http"
)

// Common engine errors
var (
	ErrInvalidURL   = errors.New("invalid URL")
	ErrNetworkError = errors.New("network error")
	ErrParseError   = errors.New("failed to parse response")
	ErrNoNewsBlock  = errors.New("news block not found")
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeHTTPStatus   ErrorCode = "HTTP_STATUS"
	ErrCodeTimeout      ErrorCode = "TIMEOUT"
	ErrCodeValidation   ErrorCode = "VALIDATION"
	ErrCodeNetworkError ErrorCode = "NETWORK_ERROR"
	ErrCodeParseError   ErrorCode = "PARSE_ERROR"
)

// EngineError wraps errors with additional context
type EngineError struct {
	Code       ErrorCode
	Message    string
	StatusCode int
	Underlying error
	Retry      bool
	Details    map[string]interface{}
}

// Error implements the error interface
func (e *EngineError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *EngineError) Unwrap() error {
	return e.Underlying
}

// Is checks if the error matches the target
func (e *EngineError) Is(target error) bool {
	if t, ok := target.(*EngineError); ok {
		return e.Code == t.Code
	}
	return errors.Is(e.Underlying, target)
}

// GetStatusCode exposes the HTTP status to the retry package (0 when none)
func (e *EngineError) GetStatusCode() int {
	return e.StatusCode
}

// NewEngineError creates a new EngineError
func NewEngineError(code ErrorCode, message string, err error) *EngineError {
	return &EngineError{
		Code:       code,
		Message:    message,
		Underlying: err,
		Details:    make(map[string]interface{}),
	}
}

// NewStatusError builds the error for a non-2xx response
func NewStatusError(url string, resp *http.Response) *EngineError {
	code := ErrCodeHTTPStatus
	if resp.StatusCode == http.StatusNotFound {
		code = ErrCodeNotFound
	}
	e := NewEngineError(code, fmt.Sprintf("unexpected status %s", resp.Status), nil).
		WithDetail("url", url)
	e.StatusCode = resp.StatusCode
	return e
}

// WithRetry marks the error as retryable
func (e *EngineError) WithRetry() *EngineError {
	e.Retry = true
	return e
}

// Retryable tells the retry package whether another attempt can help.
// Errors carrying an HTTP status are classified by that status instead.
func (e *EngineError) Retryable() bool {
	return e.Retry
}

// WithDetail adds a detail to the error
func (e *EngineError) WithDetail(key string, value interface{}) *EngineError {
	e.Details[key] = value
	return e
}

// ErrorDetails returns the details of the first EngineError in err's chain
func ErrorDetails(err error) map[string]interface{} {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee.Details
	}
	return nil
}

// IsNotFound reports whether err is a 404 from the portal
func IsNotFound(err error) bool {
	var ee *EngineError
	return errors.As(err, &ee) && ee.Code == ErrCodeNotFound
}
