package proxy

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"simulateur-hq/relay/pkg/proxy/types"
)

const (
	// MaxRequestBodySize is the default request body limit (10MB).
	MaxRequestBodySize = 10 * 1024 * 1024

	// RequestIDHeader is the HTTP header for request ID propagation.
	RequestIDHeader = "X-Request-ID"
)

// ReadBody reads the request body up to maxBytes. The body is returned
// unparsed; each provider adapter validates the fields it needs.
//
// A limit of zero or less uses MaxRequestBodySize. An empty body is read as
// an empty JSON object so adapters report the missing field instead of a
// syntax error.
//
// Example usage:
//
//	body, err := ReadBody(w, r, cfg.Server.MaxBodyBytes)
//	if err != nil {
//	    WriteError(w, r, err)
//	    return
//	}
func ReadBody(w http.ResponseWriter, r *http.Request, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		maxBytes = MaxRequestBodySize
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &RequestError{
				Message:    types.MessageBodyTooLarge,
				Param:      "body",
				StatusCode: http.StatusRequestEntityTooLarge,
			}
		}
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}

	if len(body) == 0 {
		return []byte("{}"), nil
	}
	return body, nil
}

// ExtractRequestID extracts the request ID from the X-Request-ID header.
func ExtractRequestID(r *http.Request) string {
	return r.Header.Get(RequestIDHeader)
}

// RequestError represents a request the relay refuses before any provider
// is involved.
type RequestError struct {
	Message    string
	Param      string
	StatusCode int
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	return e.Message
}

// ToErrorResponse converts a RequestError to an error response.
func (e *RequestError) ToErrorResponse() *types.ErrorResponse {
	if e.StatusCode == 0 {
		return types.NewInvalidRequestError(e.Message)
	}
	return types.NewErrorResponse(e.StatusCode, e.Message)
}
