package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"simulateur-hq/relay/pkg/proxy"
	"simulateur-hq/relay/pkg/proxy/types"
	"simulateur-hq/relay/pkg/relay"
	"simulateur-hq/relay/pkg/telemetry/logging"
)

// ServiceParam is the chi URL parameter holding the service identifier.
const ServiceParam = "service"

// APIHandler serves POST /api/{service}.
type APIHandler struct {
	Registry     *Registry
	Relay        *relay.Relay
	MaxBodyBytes int64
}

// NewAPIHandler creates a new service dispatch handler.
func NewAPIHandler(registry *Registry, rl *relay.Relay, maxBodyBytes int64) *APIHandler {
	return &APIHandler{
		Registry:     registry,
		Relay:        rl,
		MaxBodyBytes: maxBodyBytes,
	}
}

// ServeHTTP dispatches the request to the service's provider. Unknown
// services are refused before the body is read.
func (h *APIHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, ServiceParam)
	ctx := logging.WithService(r.Context(), name)
	r = r.WithContext(ctx)

	service, ok := h.Registry.Lookup(name)
	if !ok {
		slog.WarnContext(ctx, "unknown service requested")
		if err := proxy.WriteErrorResponse(w, types.NewInvalidRequestError(types.MessageInvalidService)); err != nil {
			slog.ErrorContext(ctx, "failed to write error response", "error", err)
		}
		return
	}

	body, err := proxy.ReadBody(w, r, h.MaxBodyBytes)
	if err != nil {
		slog.WarnContext(ctx, "failed to read request body", "error", err)
		proxy.WriteError(w, r, err)
		return
	}

	metadata := proxy.ExtractRequestMetadata(r, name, len(body))
	slog.InfoContext(ctx, "processing service request",
		append(metadata.LogAttrs(), "kind", service.Kind.String())...,
	)

	switch service.Kind {
	case KindStream:
		h.Relay.Stream(w, r, name, service.Stream, body)
	case KindBuffered:
		h.Relay.Forward(w, r, name, service.Buffered, body)
	}
}
