package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"simulateur-hq/relay/pkg/providers"
	"simulateur-hq/relay/pkg/providers/azure"
	"simulateur-hq/relay/pkg/proxy"
	"simulateur-hq/relay/pkg/proxy/types"
	"simulateur-hq/relay/pkg/telemetry/logging"
)

// Client-facing messages of the key endpoints.
const (
	// MessageTokenFailed is returned when Azure refuses to issue a token.
	MessageTokenFailed = "Failed to generate token"

	// MessageOpenAIKeyMissing is returned when the analyse key is not configured.
	MessageOpenAIKeyMissing = "Chiave API OpenAI mancante nel backend"
)

// TokenSource issues Azure speech tokens.
type TokenSource interface {
	Token(ctx context.Context) (*azure.Token, error)
}

// AzureKeyHandler serves GET /get-azure-key.
type AzureKeyHandler struct {
	Tokens TokenSource
}

// NewAzureKeyHandler creates a new Azure token handler.
func NewAzureKeyHandler(tokens TokenSource) *AzureKeyHandler {
	return &AzureKeyHandler{Tokens: tokens}
}

// ServeHTTP returns a short-lived speech token and its region.
func (h *AzureKeyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := logging.WithService(r.Context(), "azure")

	token, err := h.Tokens.Token(ctx)
	if err != nil {
		if proxy.IsClientDisconnect(err) && ctx.Err() != nil {
			return
		}

		var configErr *providers.ConfigError
		errResp := types.NewServerError(MessageTokenFailed)
		if errors.As(err, &configErr) {
			errResp = types.NewServerError(configErr.Message)
		}
		slog.ErrorContext(ctx, "failed to issue speech token",
			"error", err,
			"diagnostic", providers.Diagnostic(err),
		)
		if err := proxy.WriteErrorResponse(w, errResp); err != nil {
			slog.ErrorContext(ctx, "failed to write error response", "error", err)
		}
		return
	}

	resp := types.AzureKeyResponse{Token: token.Value, Region: token.Region}
	if err := proxy.WriteJSONResponse(w, http.StatusOK, resp); err != nil {
		slog.ErrorContext(ctx, "failed to write response", "error", err)
	}
}

// OpenAIKeyHandler serves GET /get-openai-key. It hands the analyse key to
// the browser, which calls OpenAI directly with it.
type OpenAIKeyHandler struct {
	APIKey string
}

// NewOpenAIKeyHandler creates a new OpenAI key handler.
func NewOpenAIKeyHandler(apiKey string) *OpenAIKeyHandler {
	return &OpenAIKeyHandler{APIKey: apiKey}
}

// ServeHTTP returns the configured key.
func (h *OpenAIKeyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.APIKey == "" {
		slog.ErrorContext(ctx, "openai analyse key is not configured")
		if err := proxy.WriteErrorResponse(w, types.NewServerError(MessageOpenAIKeyMissing)); err != nil {
			slog.ErrorContext(ctx, "failed to write error response", "error", err)
		}
		return
	}

	if err := proxy.WriteJSONResponse(w, http.StatusOK, types.OpenAIKeyResponse{APIKey: h.APIKey}); err != nil {
		slog.ErrorContext(ctx, "failed to write response", "error", err)
	}
}
