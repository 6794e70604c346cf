package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"simulateur-hq/relay/pkg/providers"
)

// DefaultBaseURL is the OpenAI API root.
const DefaultBaseURL = "https://api.openai.com/v1"

// Provider streams chat completions from OpenAI.
type Provider struct {
	*providers.HTTPProvider
}

// NewProvider creates a new OpenAI streaming provider.
func NewProvider(config providers.ProviderConfig) *Provider {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	return &Provider{HTTPProvider: providers.NewHTTPProvider(config)}
}

// Open validates the browser payload and opens a streaming completion.
func (p *Provider) Open(ctx context.Context, body []byte) (*providers.UpstreamCall, error) {
	config := p.GetConfig()

	var req ChatRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, &providers.ValidationError{Field: "body", Message: "invalid JSON body"}
	}
	if req.Model == "" {
		req.Model = config.Model
	}
	if req.Model == "" {
		return nil, &providers.ValidationError{Field: "model", Message: "model is required"}
	}
	if err := req.Messages.Validate(); err != nil {
		return nil, err
	}

	if config.APIKey == "" {
		return nil, &providers.ConfigError{
			Provider: config.Name,
			Field:    "api_key",
			Message:  "Chiave API OpenAI mancante",
		}
	}

	payload, err := json.Marshal(transformRequest(&req))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	headers := map[string]string{
		"Authorization": "Bearer " + config.APIKey,
		"Accept":        "text/event-stream",
	}

	resp, cancel, err := p.Call(ctx, "POST", config.BaseURL+"/chat/completions", payload, headers)
	if err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "openai stream opened",
		"provider", config.Name,
		"model", req.Model,
		"messages", len(req.Messages),
	)

	return providers.NewEventCall(config.Name, newStreamReader(config.Name, resp.Body), cancel), nil
}
