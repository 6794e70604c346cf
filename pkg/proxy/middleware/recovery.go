package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"simulateur-hq/relay/pkg/proxy"
	"simulateur-hq/relay/pkg/proxy/types"
)

// headerWriter reports whether the response status has been sent.
type headerWriter interface {
	HeaderWritten() bool
}

// RecoveryMiddleware recovers from panics in HTTP handlers and returns a 500
// Internal Server Error response with a flat JSON body. It logs the panic
// with stack trace but does not expose internal details to clients.
//
// http.ErrAbortHandler is re-raised so the server aborts the connection
// silently, as it does without this middleware. A panic after the response
// has started is turned into ErrAbortHandler too: nothing may follow a
// stream's end marker, so the connection is dropped instead.
//
// Example usage:
//
//	handler = RecoveryMiddleware(handler)
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tracked, ok := w.(headerWriter)
		if !ok {
			rw := newResponseWriter(w)
			w, tracked = rw, rw
		}

		defer func() {
			err := recover()
			if err == nil {
				return
			}
			if err == http.ErrAbortHandler {
				panic(err)
			}

			slog.ErrorContext(r.Context(), "panic in handler",
				"error", err,
				"method", r.Method,
				"path", r.URL.Path,
				"stack", string(debug.Stack()),
			)

			if tracked.HeaderWritten() {
				panic(http.ErrAbortHandler)
			}
			_ = proxy.WriteErrorResponse(w, types.NewServerError(""))
		}()

		next.ServeHTTP(w, r)
	})
}
