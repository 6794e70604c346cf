package openai

import (
	"context"
	"encoding/json"
	"errors"

	"simulateur-hq/relay/pkg/providers"
)

// AnalyseTimeoutMessage is returned to the browser when the analysis call
// does not answer within the connect timeout.
const AnalyseTimeoutMessage = "Timeout nella richiesta a OpenAI Analyse."

// AnalyseProvider forwards a complete chat completion request to OpenAI and
// returns the JSON response unchanged.
type AnalyseProvider struct {
	*providers.HTTPProvider
}

// NewAnalyseProvider creates a buffered OpenAI provider.
func NewAnalyseProvider(config providers.ProviderConfig) *AnalyseProvider {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	return &AnalyseProvider{HTTPProvider: providers.NewHTTPProvider(config)}
}

// Forward sends body as-is with the server-held credential.
func (p *AnalyseProvider) Forward(ctx context.Context, body []byte) (*providers.BufferedResponse, error) {
	config := p.GetConfig()

	if !json.Valid(body) {
		return nil, &providers.ValidationError{Field: "body", Message: "invalid JSON body"}
	}
	if config.APIKey == "" {
		return nil, &providers.ConfigError{
			Provider: config.Name,
			Field:    "api_key",
			Message:  "Chiave API OpenAI mancante nel backend",
		}
	}

	headers := map[string]string{
		"Authorization": "Bearer " + config.APIKey,
	}

	resp, payload, err := p.CallBuffered(ctx, "POST", config.BaseURL+"/chat/completions", body, headers)
	if err != nil {
		var timeoutErr *providers.TimeoutError
		if errors.As(err, &timeoutErr) {
			timeoutErr.Message = AnalyseTimeoutMessage
		}
		return nil, err
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}

	return &providers.BufferedResponse{
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		Body:        payload,
	}, nil
}
