// Package chatbase implements the Chatbase chat-bot adapter.
//
// Chatbase answers a streaming chat request with a raw byte stream whose
// framing is loose: lines may or may not carry a "data:" prefix, chunks do not
// respect line or codepoint boundaries, and the end marker may share a line
// with other text. The adapter therefore hands the body over unparsed
// (providers.StrategyLines) and leaves framing to the relay's line decoder.
package chatbase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"simulateur-hq/relay/pkg/providers"
)

// DefaultBaseURL is the Chatbase API root.
const DefaultBaseURL = "https://www.chatbase.co/api/v1"

// ChatRequest is the payload the browser sends to the chat bot.
type ChatRequest struct {
	Messages providers.Messages `json:"messages"`
}

// chatbaseRequest is the upstream request body.
type chatbaseRequest struct {
	Messages    providers.Messages `json:"messages"`
	ChatID      string             `json:"chatId"`
	Stream      bool               `json:"stream"`
	Temperature float64            `json:"temperature"`
}

// Provider streams chat-bot replies from Chatbase.
type Provider struct {
	*providers.HTTPProvider
}

// NewProvider creates a new Chatbase provider. config.AccountID holds the
// agent (chatbot) identifier.
func NewProvider(config providers.ProviderConfig) *Provider {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	return &Provider{HTTPProvider: providers.NewHTTPProvider(config)}
}

// Open validates the browser payload and opens the upstream chat stream.
func (p *Provider) Open(ctx context.Context, body []byte) (*providers.UpstreamCall, error) {
	config := p.GetConfig()

	var req ChatRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, &providers.ValidationError{Field: "body", Message: "invalid JSON body"}
	}
	if err := req.Messages.Validate(); err != nil {
		return nil, err
	}

	if config.APIKey == "" || config.AccountID == "" {
		field := "api_key"
		if config.APIKey != "" {
			field = "agent_id"
		}
		return nil, &providers.ConfigError{
			Provider: config.Name,
			Field:    field,
			Message:  "Configurazione Chatbase mancante",
		}
	}

	payload, err := json.Marshal(chatbaseRequest{
		Messages:    req.Messages,
		ChatID:      config.AccountID,
		Stream:      true,
		Temperature: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	headers := map[string]string{
		"Authorization": "Bearer " + config.APIKey,
	}

	resp, cancel, err := p.Call(ctx, "POST", config.BaseURL+"/chat", payload, headers)
	if err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "chatbase stream opened",
		"provider", config.Name,
		"messages", len(req.Messages),
	)

	return providers.NewLineCall(config.Name, resp.Body, cancel), nil
}
