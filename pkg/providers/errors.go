package providers

import (
	"errors"
	"fmt"
	"time"
)

// ProviderError represents a non-2xx response from a provider.
// It includes the provider name, HTTP status code, and the upstream body.
type ProviderError struct {
	// Provider is the name of the provider that returned the error
	Provider string

	// StatusCode is the upstream HTTP status code
	StatusCode int

	// Status is the upstream status line text (e.g. "401 Unauthorized")
	Status string

	// Message is the upstream response body
	Message string

	// PassThrough asks the HTTP layer to answer with StatusCode and Message
	// instead of a generic 500.
	PassThrough bool
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %q error (status %d): %s", e.Provider, e.StatusCode, e.Message)
}

// Summary returns the lowest-level diagnostic suitable for the client:
// the upstream status text when present, else the error text.
func (e *ProviderError) Summary() string {
	if e.Status != "" {
		return e.Status
	}
	return e.Error()
}

// TimeoutError represents a connect/first-byte timeout.
type TimeoutError struct {
	// Provider is the name of the provider where the timeout occurred
	Provider string

	// Timeout is the configured connect timeout
	Timeout time.Duration

	// Message overrides the client-facing message when set
	Message string
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("provider %q request timeout after %s", e.Provider, e.Timeout)
}

// ConnectError represents a failure to reach a provider before any response.
type ConnectError struct {
	Provider string
	Cause    error
}

// Error implements the error interface.
func (e *ConnectError) Error() string {
	return fmt.Sprintf("provider %q unreachable: %v", e.Provider, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *ConnectError) Unwrap() error {
	return e.Cause
}

// ParseError represents a malformed provider response.
type ParseError struct {
	// Provider is the name of the provider that returned the malformed response
	Provider string

	// RawResponse is the raw response body that failed to parse
	RawResponse string

	// Cause is the underlying parse error
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("provider %q response parse error: %v", e.Provider, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// ValidationError represents a client payload the relay refuses to forward.
type ValidationError struct {
	// Field is the name of the invalid field
	Field string

	// Message is returned to the client as-is
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field %q: %s", e.Field, e.Message)
}

// StreamError represents a failure after streaming has begun.
type StreamError struct {
	// Provider is the name of the provider where the error occurred
	Provider string

	// Message is the error message
	Message string

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface.
func (e *StreamError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("provider %q stream error: %s: %v", e.Provider, e.Message, e.Cause)
	}
	return fmt.Sprintf("provider %q stream error: %s", e.Provider, e.Message)
}

// Unwrap returns the underlying error for error chain support.
func (e *StreamError) Unwrap() error {
	return e.Cause
}

// ConfigError represents a missing or invalid credential for a provider.
type ConfigError struct {
	// Provider is the name of the provider with invalid configuration
	Provider string

	// Field is the configuration field that is invalid
	Field string

	// Message is returned to the client as-is
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("provider %q configuration error for field %q: %s",
		e.Provider, e.Field, e.Message)
}

// Diagnostic returns the lowest-level message available for err: the upstream
// status text for provider errors, the upstream message for in-band stream
// errors, else the error text itself.
func Diagnostic(err error) string {
	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.Summary()
	}
	var streamErr *StreamError
	if errors.As(err, &streamErr) {
		if streamErr.Cause != nil {
			return streamErr.Cause.Error()
		}
		if streamErr.Message != "" {
			return streamErr.Message
		}
	}
	return err.Error()
}
