package handlers

import (
	"net/http"
	"time"

	"simulateur-hq/relay/pkg/proxy"
)

// HealthHandler handles health check requests for liveness probes.
type HealthHandler struct{}

// NewHealthHandler creates a new health check handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// ServeHTTP implements http.Handler for liveness checks.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
	}

	_ = proxy.WriteJSONResponse(w, http.StatusOK, response)
}

// ReadyHandler handles readiness check requests.
//
// The relay is ready once services are registered. Services whose
// credentials are missing are listed but do not make the relay unready:
// they fail their own requests with a 500.
type ReadyHandler struct {
	Registry     *Registry
	Unconfigured func() []string
}

// NewReadyHandler creates a new readiness check handler.
func NewReadyHandler(registry *Registry, unconfigured func() []string) *ReadyHandler {
	return &ReadyHandler{Registry: registry, Unconfigured: unconfigured}
}

// ServeHTTP implements http.Handler for readiness checks.
func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	services := h.Registry.Names()

	status := "ready"
	statusCode := http.StatusOK
	if len(services) == 0 {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	unconfigured := []string{}
	if h.Unconfigured != nil {
		unconfigured = append(unconfigured, h.Unconfigured()...)
	}

	response := map[string]interface{}{
		"status":       status,
		"services":     services,
		"unconfigured": unconfigured,
		"timestamp":    time.Now().Unix(),
	}

	_ = proxy.WriteJSONResponse(w, statusCode, response)
}

// ProviderHealthHandler provides per-service upstream counters.
type ProviderHealthHandler struct {
	Registry *Registry
}

// NewProviderHealthHandler creates a new provider health handler.
func NewProviderHealthHandler(registry *Registry) *ProviderHealthHandler {
	return &ProviderHealthHandler{Registry: registry}
}

// ServeHTTP implements http.Handler for detailed provider health.
func (h *ProviderHealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	providersHealth := make(map[string]interface{})
	for name, health := range h.Registry.Health() {
		var lastError interface{}
		if health.LastError != nil {
			lastError = health.LastError.Error()
		}

		var lastSuccess interface{}
		if !health.LastSuccessfulRequest.IsZero() {
			lastSuccess = health.LastSuccessfulRequest.Unix()
		}

		providersHealth[name] = map[string]interface{}{
			"total_requests":  health.TotalRequests,
			"failed_requests": health.FailedRequests,
			"last_success":    lastSuccess,
			"last_error":      lastError,
		}
	}

	response := map[string]interface{}{
		"providers": providersHealth,
	}

	_ = proxy.WriteJSONResponse(w, http.StatusOK, response)
}
