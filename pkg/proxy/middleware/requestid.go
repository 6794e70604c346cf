package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"simulateur-hq/relay/pkg/proxy"
	"simulateur-hq/relay/pkg/telemetry/logging"
)

// maxRequestIDLength bounds client-supplied request IDs.
const maxRequestIDLength = 128

// RequestIDMiddleware generates a unique request ID for each request and adds it to
// the context and response headers. If the client provides a usable request ID in
// the X-Request-ID header, it will be used instead of generating a new one.
//
// The request ID is:
//   - Added to the request context, where the log handler picks it up
//   - Included in the X-Request-ID response header
//
// Example usage:
//
//	handler = RequestIDMiddleware(handler)
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(proxy.RequestIDHeader)
		if !validRequestID(requestID) {
			requestID = uuid.NewString()
			r.Header.Set(proxy.RequestIDHeader, requestID)
		}

		ctx := logging.WithRequestID(r.Context(), requestID)
		w.Header().Set(proxy.RequestIDHeader, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// validRequestID accepts short printable ASCII identifiers.
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}

// GetRequestID extracts the request ID from the context.
// Returns empty string if not found.
func GetRequestID(ctx context.Context) string {
	return logging.GetRequestID(ctx)
}
