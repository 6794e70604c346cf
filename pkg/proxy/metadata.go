package proxy

import (
	"log/slog"
	"net/http"
	"time"
)

// RequestMetadata contains extracted metadata from an HTTP request.
// This is used for logging.
type RequestMetadata struct {
	// RequestID is a unique identifier for the request.
	RequestID string

	// Service is the routed service name.
	Service string

	// Method is the HTTP method (GET, POST, etc.).
	Method string

	// Path is the HTTP request path.
	Path string

	// UserAgent is the client's user agent string.
	UserAgent string

	// RemoteAddr is the client's IP address.
	RemoteAddr string

	// BodySize is the size of the request body in bytes.
	BodySize int

	// Timestamp is when the request was received.
	Timestamp time.Time
}

// ExtractRequestMetadata extracts metadata from an HTTP request.
func ExtractRequestMetadata(r *http.Request, service string, bodySize int) *RequestMetadata {
	return &RequestMetadata{
		RequestID:  ExtractRequestID(r),
		Service:    service,
		Method:     r.Method,
		Path:       r.URL.Path,
		UserAgent:  r.UserAgent(),
		RemoteAddr: r.RemoteAddr,
		BodySize:   bodySize,
		Timestamp:  time.Now(),
	}
}

// LogAttrs returns the metadata as structured log attributes. The request ID
// and service are left to the context-aware log handler.
func (m *RequestMetadata) LogAttrs() []any {
	return []any{
		slog.String("method", m.Method),
		slog.String("path", m.Path),
		slog.String("remote_addr", m.RemoteAddr),
		slog.String("user_agent", m.UserAgent),
		slog.Int("body_size", m.BodySize),
	}
}

// Elapsed returns the time since the request was received.
func (m *RequestMetadata) Elapsed() time.Duration {
	return time.Since(m.Timestamp)
}
