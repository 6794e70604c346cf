// Package elevenlabs implements the ElevenLabs text-to-speech adapter.
//
// Synthesis is buffered: the complete MPEG audio is read from upstream and
// returned to the browser in one response. The browser selects a voice by
// language name; only the languages in Voices are accepted, and an unknown
// language is rejected before any upstream call.
package elevenlabs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"simulateur-hq/relay/pkg/providers"
)

// DefaultBaseURL is the ElevenLabs API root.
const DefaultBaseURL = "https://api.elevenlabs.io/v1"

// ModelID is the synthesis model used for every request.
const ModelID = "eleven_flash_v2_5"

// UnsupportedLanguageMessage is returned for a language outside Voices.
const UnsupportedLanguageMessage = "Lingua non supportata"

// Voices maps a normalized language selector to its voice identifier.
var Voices = map[string]string{
	"espagnol": "l1zE9xgNpUTaQCZzpNJa",
	"français": "1a3lMdKLUcfcMtvN772u",
	"anglais":  "7tRwuZTD1EWi6nydVerp",
}

// SpeechRequest is the payload the browser sends for synthesis.
type SpeechRequest struct {
	Text             string `json:"text"`
	SelectedLanguage string `json:"selectedLanguage"`
}

// VoiceSettings tunes the synthesized voice.
type VoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
}

// DefaultVoiceSettings are applied to every request.
var DefaultVoiceSettings = VoiceSettings{
	Stability:       0.6,
	SimilarityBoost: 0.7,
	Style:           0.1,
}

type synthesisRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings VoiceSettings `json:"voice_settings"`
}

// VoiceFor returns the voice identifier for a language selector. The selector
// is trimmed and lower-cased before lookup.
func VoiceFor(language string) (string, bool) {
	voiceID, ok := Voices[strings.ToLower(strings.TrimSpace(language))]
	return voiceID, ok
}

// Provider synthesizes speech through ElevenLabs.
type Provider struct {
	*providers.HTTPProvider
}

// NewProvider creates a new ElevenLabs provider.
func NewProvider(config providers.ProviderConfig) *Provider {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	return &Provider{HTTPProvider: providers.NewHTTPProvider(config)}
}

// Forward synthesizes the requested text and returns the audio.
//
// Upstream error statuses are passed through to the browser together with
// the upstream body text.
func (p *Provider) Forward(ctx context.Context, body []byte) (*providers.BufferedResponse, error) {
	config := p.GetConfig()

	if config.APIKey == "" {
		return nil, &providers.ConfigError{
			Provider: config.Name,
			Field:    "api_key",
			Message:  "Chiave API ElevenLabs mancante",
		}
	}

	var req SpeechRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, &providers.ValidationError{Field: "body", Message: "invalid JSON body"}
	}

	voiceID, ok := VoiceFor(req.SelectedLanguage)
	if !ok {
		slog.WarnContext(ctx, "unsupported voice language",
			"provider", config.Name,
			"language", req.SelectedLanguage,
		)
		return nil, &providers.ValidationError{Field: "selectedLanguage", Message: UnsupportedLanguageMessage}
	}

	payload, err := json.Marshal(synthesisRequest{
		Text:          req.Text,
		ModelID:       ModelID,
		VoiceSettings: DefaultVoiceSettings,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/text-to-speech/%s/stream", config.BaseURL, url.PathEscape(voiceID))
	headers := map[string]string{
		"xi-api-key": config.APIKey,
	}

	_, audio, err := p.CallBuffered(ctx, "POST", endpoint, payload, headers)
	if err != nil {
		var providerErr *providers.ProviderError
		if errors.As(err, &providerErr) {
			providerErr.PassThrough = true
		}
		return nil, err
	}

	slog.DebugContext(ctx, "speech synthesized",
		"provider", config.Name,
		"voice_id", voiceID,
		"bytes", len(audio),
	)

	return &providers.BufferedResponse{
		StatusCode:  200,
		ContentType: "audio/mpeg",
		Body:        audio,
	}, nil
}
