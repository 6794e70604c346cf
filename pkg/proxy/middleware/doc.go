// Package middleware provides HTTP middleware for cross-cutting concerns.
//
// # Middleware Chain
//
// The server installs the middleware in this order:
//
//	r.Use(chimw.RealIP)
//	r.Use(middleware.RequestIDMiddleware)
//	r.Use(middleware.LoggingMiddleware)
//	r.Use(middleware.RecoveryMiddleware)
//
// Recovery sits innermost so the logging middleware still records the 500.
// CORS is handled by github.com/go-chi/cors in package server.
//
// There is no per-request timeout middleware: only the upstream connect phase
// is bounded, and streams may last as long as the provider keeps sending.
//
// # Request ID
//
// RequestIDMiddleware keeps a client-supplied X-Request-ID when it is short
// printable ASCII, and generates a UUID v4 otherwise:
//
//	X-Request-ID: 550e8400-e29b-41d4-a716-446655440000
//
// The ID is stored with logging.WithRequestID, so every slog.*Context call
// made while handling the request carries it.
//
// # Streaming
//
// The logging wrapper implements Flush and Unwrap so SSE events written
// through http.ResponseController reach the client immediately.
package middleware
