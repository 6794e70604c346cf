package types

import "net/http"

// ErrorResponse is the body of every non-streaming error response.
type ErrorResponse struct {
	// Message is shown to the browser.
	Message string `json:"error"`

	// StatusCode is the HTTP status written with the body.
	StatusCode int `json:"-"`
}

// Client-facing messages shared by several services.
const (
	// MessageRequestFailed is the generic message for upstream and internal failures.
	MessageRequestFailed = "Errore nella richiesta API"

	// MessageTimeout is returned when a provider did not answer within the connect timeout.
	MessageTimeout = "Timeout nella richiesta API"

	// MessageInvalidService is returned for an unknown service identifier.
	MessageInvalidService = "invalid service"

	// MessageBodyTooLarge is returned when the request body exceeds the configured limit.
	MessageBodyTooLarge = "request entity too large"
)

// NewErrorResponse creates a new error response with the given status.
func NewErrorResponse(statusCode int, message string) *ErrorResponse {
	return &ErrorResponse{
		Message:    message,
		StatusCode: statusCode,
	}
}

// NewInvalidRequestError creates a 400 Bad Request error.
func NewInvalidRequestError(message string) *ErrorResponse {
	return NewErrorResponse(http.StatusBadRequest, message)
}

// NewRequestTooLargeError creates a 413 Request Entity Too Large error.
func NewRequestTooLargeError() *ErrorResponse {
	return NewErrorResponse(http.StatusRequestEntityTooLarge, MessageBodyTooLarge)
}

// NewServerError creates a 500 Internal Server Error.
func NewServerError(message string) *ErrorResponse {
	if message == "" {
		message = MessageRequestFailed
	}
	return NewErrorResponse(http.StatusInternalServerError, message)
}

// NewGatewayTimeoutError creates a 504 Gateway Timeout error.
func NewGatewayTimeoutError(message string) *ErrorResponse {
	if message == "" {
		message = MessageTimeout
	}
	return NewErrorResponse(http.StatusGatewayTimeout, message)
}
