package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"simulateur-hq/relay/pkg/config"
	"simulateur-hq/relay/pkg/proxy/handlers"
	"simulateur-hq/relay/pkg/proxy/middleware"
	"simulateur-hq/relay/pkg/relay"
	"simulateur-hq/relay/pkg/telemetry/metrics"
)

// Server is the HTTP front of the relay.
type Server struct {
	config     *config.Config
	registry   *handlers.Registry
	tokens     handlers.TokenSource
	collector  *metrics.Collector
	relay      *relay.Relay
	httpServer *http.Server
	listener   net.Listener
	mu         sync.RWMutex
	isRunning  bool
}

// NewServer creates a new relay server. collector may be nil.
func NewServer(cfg *config.Config, registry *handlers.Registry, tokens handlers.TokenSource, collector *metrics.Collector) *Server {
	return &Server{
		config:    cfg,
		registry:  registry,
		tokens:    tokens,
		collector: collector,
		relay:     relay.New(collector),
	}
}

// Start listens on the configured address and serves until ctx is canceled
// or the listener fails. Cancellation triggers a graceful shutdown bounded by
// ShutdownTimeout.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return errors.New("server is already running")
	}

	listener, err := net.Listen("tcp", s.config.Server.ListenAddress)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", s.config.Server.ListenAddress, err)
	}

	s.listener = listener
	s.httpServer = &http.Server{
		Handler:        s.Handler(),
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		IdleTimeout:    s.config.Server.IdleTimeout,
		MaxHeaderBytes: s.config.Server.MaxHeaderBytes,
	}
	s.isRunning = true
	httpServer := s.httpServer
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting relay server",
			"address", listener.Addr().String(),
			"services", s.registry.Names(),
		)
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
		close(errChan)
	}()

	select {
	case <-ctx.Done():
		slog.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err, ok := <-errChan:
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		if ok {
			return err
		}
		return nil
	}
}

// Shutdown stops accepting connections and waits for in-flight requests.
// Open streams see their request context canceled when the timeout expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	httpServer := s.httpServer
	s.mu.Unlock()

	slog.Info("initiating graceful shutdown", "timeout", s.config.Server.ShutdownTimeout.String())

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("error during server shutdown", "error", err)
		_ = httpServer.Close()
		return fmt.Errorf("server shutdown error: %w", err)
	}

	slog.Info("relay server stopped")
	return nil
}

// Addr returns the bound listen address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the router with the full middleware chain.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.LoggingMiddleware)
	r.Use(middleware.RecoveryMiddleware)
	if s.config.Server.CORS.Enabled {
		r.Use(cors.Handler(s.corsOptions()))
	}

	r.Post("/api/{"+handlers.ServiceParam+"}", handlers.NewAPIHandler(s.registry, s.relay, s.config.Server.MaxBodyBytes).ServeHTTP)
	r.Method(http.MethodGet, "/get-azure-key", handlers.NewAzureKeyHandler(s.tokens))
	r.Method(http.MethodGet, "/get-openai-key", handlers.NewOpenAIKeyHandler(s.config.Providers.OpenAI.AnalyseKey))

	r.Method(http.MethodGet, "/health", handlers.NewHealthHandler())
	r.Method(http.MethodGet, "/ready", handlers.NewReadyHandler(s.registry, s.config.Providers.Unconfigured))
	r.Method(http.MethodGet, "/health/providers", handlers.NewProviderHealthHandler(s.registry))

	if s.config.Telemetry.Metrics.Enabled && s.collector != nil {
		r.Method(http.MethodGet, s.config.Telemetry.Metrics.Path, s.collector.Handler())
	}

	return r
}

func (s *Server) corsOptions() cors.Options {
	c := s.config.Server.CORS
	return cors.Options{
		AllowedOrigins:   c.AllowedOrigins,
		AllowedMethods:   c.AllowedMethods,
		AllowedHeaders:   c.AllowedHeaders,
		ExposedHeaders:   c.ExposedHeaders,
		AllowCredentials: c.AllowCredentials,
		MaxAge:           c.MaxAge,
	}
}
