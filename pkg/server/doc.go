// Package server provides the HTTP server of the relay.
//
// The server mounts every route on a chi router behind the middleware chain
// RealIP, RequestID, Logging, Recovery and CORS:
//
//	POST /api/{service}      relay to the registered service (SSE or buffered)
//	GET  /get-azure-key      short-lived Azure speech token and region
//	GET  /get-openai-key     analyse key for browser-side calls
//	GET  /health             liveness
//	GET  /ready              readiness, lists services missing credentials
//	GET  /health/providers   per-service upstream counters
//	GET  /metrics            Prometheus exposition (when enabled)
//
// # Basic Usage
//
//	srv := server.NewServer(cfg, registry, issuer, collector)
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Start blocks until ctx is canceled, then shuts down gracefully. The HTTP
// write timeout defaults to zero so long-lived streams are not cut; open
// streams end when the shutdown timeout expires.
package server
