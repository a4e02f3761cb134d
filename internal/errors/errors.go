// Package errors provides custom error types for the dagchat client.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	ErrNoSession       = errors.New("no chat session")
	ErrInvalidResponse = errors.New("invalid response format")
	ErrNotFound        = errors.New("not found")
	ErrNoCookies       = errors.New("no cookies found")
)

// APIError represents a server reply that could not be interpreted as a
// plugin response (non-JSON body, unexpected status).
type APIError struct {
	StatusCode int
	Endpoint   string
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("API error [%d] at %s: %s", e.StatusCode, e.Endpoint, e.Message)
	}
	return fmt.Sprintf("API error at %s: %s", e.Endpoint, e.Message)
}

// Is matches ErrNotFound for 404 replies and any other *APIError.
func (e *APIError) Is(target error) bool {
	if target == ErrNotFound {
		return e.StatusCode == 404
	}
	_, ok := target.(*APIError)
	return ok
}

// NewAPIError creates a new APIError
func NewAPIError(statusCode int, endpoint, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    message,
	}
}

// WithBody attaches a (truncated) response body for diagnostics.
func (e *APIError) WithBody(body string) *APIError {
	const maxBody = 2048
	if len(body) > maxBody {
		body = body[:maxBody]
	}
	e.Body = body
	return e
}

// NetworkError represents a transport failure: the request never produced
// a response.
type NetworkError struct {
	Endpoint string
	Op       string
	Cause    error
}

func (e *NetworkError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("network error during %s at %s", e.Op, e.Endpoint)
	}
	return fmt.Sprintf("network error during %s at %s: %v", e.Op, e.Endpoint, e.Cause)
}

func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// NewNetworkError creates a new NetworkError
func NewNetworkError(op, endpoint string, cause error) *NetworkError {
	return &NetworkError{Op: op, Endpoint: endpoint, Cause: cause}
}

// ParseError represents a response parsing error
type ParseError struct {
	Message  string
	Endpoint string
	Cause    error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error at %s: %s: %v", e.Endpoint, e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error at %s: %s", e.Endpoint, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Is allows comparison with sentinel errors
func (e *ParseError) Is(target error) bool {
	if target == ErrInvalidResponse {
		return true
	}
	_, ok := target.(*ParseError)
	return ok
}

// NewParseError creates a new ParseError
func NewParseError(endpoint, message string, cause error) *ParseError {
	return &ParseError{Endpoint: endpoint, Message: message, Cause: cause}
}

// ValidationError is returned before any request is made when user input
// is rejected locally.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// GetHTTPStatus returns the HTTP status carried by err, or 0.
func GetHTTPStatus(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// GetEndpoint returns the endpoint carried by err, or "".
func GetEndpoint(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Endpoint
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return netErr.Endpoint
	}
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return parseErr.Endpoint
	}
	return ""
}

// GetResponseBody returns the diagnostic body carried by err, or "".
func GetResponseBody(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Body
	}
	return ""
}

// IsNetworkError reports whether err is a transport failure.
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// IsAPIError reports whether err is an uninterpretable server reply.
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

// IsValidationError reports whether err was produced by local input checks.
func IsValidationError(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr)
}
