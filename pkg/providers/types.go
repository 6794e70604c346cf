package providers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Messages is the chat history sent by the browser. Entries are forwarded
// to the provider byte for byte, so extra fields and multimodal content
// arrays reach the upstream unchanged.
type Messages []json.RawMessage

// Validate checks that the history is not empty and that every entry is a
// JSON object.
func (m Messages) Validate() error {
	if len(m) == 0 {
		return &ValidationError{Field: "messages", Message: "messages is required"}
	}
	for i, msg := range m {
		if trimmed := bytes.TrimSpace(msg); len(trimmed) == 0 || trimmed[0] != '{' {
			return &ValidationError{
				Field:   fmt.Sprintf("messages[%d]", i),
				Message: "each message must be a JSON object",
			}
		}
	}
	return nil
}

// TokenUsage tracks token consumption reported by a completion-style provider.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// StreamChunk is one discrete event yielded by a completion-style provider.
// Delta is empty for pure control events (role announcements, finish markers,
// the trailing usage event).
type StreamChunk struct {
	// ID is the response identifier (same across all chunks)
	ID string `json:"id"`

	// Model is the model generating the response
	Model string `json:"model"`

	// Delta is the content of the first choice in this chunk
	Delta string `json:"delta"`

	// FinishReason is set in the final content chunk
	FinishReason string `json:"finish_reason,omitempty"`

	// Usage is only present on the trailing chunk, when the provider reports it
	Usage *TokenUsage `json:"usage,omitempty"`
}

// FragmentKind tags the variants of Fragment.
type FragmentKind int

const (
	// FragmentDelta carries a content delta extracted from a structured event.
	FragmentDelta FragmentKind = iota

	// FragmentUsage carries the final token usage of a completion.
	FragmentUsage

	// FragmentPayload carries a provider line that is already a JSON blob and
	// is forwarded without being re-parsed.
	FragmentPayload
)

// String returns the fragment kind name.
func (k FragmentKind) String() string {
	switch k {
	case FragmentDelta:
		return "delta"
	case FragmentUsage:
		return "usage"
	case FragmentPayload:
		return "payload"
	default:
		return "unknown"
	}
}

// Fragment is one unit of incremental output, produced by a decoder and
// consumed by the SSE encoder. Fragments are values and are never mutated
// after construction.
type Fragment struct {
	Kind FragmentKind

	// Text is the delta content (FragmentDelta) or the raw payload line
	// (FragmentPayload).
	Text string

	// Usage is set on FragmentUsage only.
	Usage *TokenUsage
}

// DeltaFragment returns a content delta fragment.
func DeltaFragment(text string) Fragment {
	return Fragment{Kind: FragmentDelta, Text: text}
}

// UsageFragment returns a usage fragment. A nil usage reports zero tokens.
func UsageFragment(usage *TokenUsage) Fragment {
	if usage == nil {
		usage = &TokenUsage{}
	}
	u := *usage
	return Fragment{Kind: FragmentUsage, Usage: &u}
}

// PayloadFragment returns a pass-through payload fragment.
func PayloadFragment(payload string) Fragment {
	return Fragment{Kind: FragmentPayload, Text: payload}
}

// DecodeStrategy selects how the relay decodes an UpstreamCall.
type DecodeStrategy int

const (
	// StrategyEvents reads discrete StreamChunk values from a StreamReader.
	StrategyEvents DecodeStrategy = iota

	// StrategyLines reads raw bytes and splits them into pseudo-SSE lines.
	StrategyLines
)

// String returns the strategy name as used in configuration.
func (s DecodeStrategy) String() string {
	switch s {
	case StrategyEvents:
		return "events"
	case StrategyLines:
		return "lines"
	default:
		return "unknown"
	}
}

// BufferedResponse is the complete payload returned by a non-streaming provider.
type BufferedResponse struct {
	// StatusCode is the HTTP status to send to the browser
	StatusCode int

	// ContentType is the payload media type (application/json, audio/mpeg)
	ContentType string

	// Body is the complete payload
	Body []byte
}

// ProviderConfig contains the static configuration of one provider adapter.
// It is built once at startup and never modified afterwards.
type ProviderConfig struct {
	// Name is the provider identifier (e.g., "openai", "chatbase")
	Name string

	// BaseURL is the API endpoint base URL
	BaseURL string

	// APIKey is the server-held credential injected into upstream calls
	APIKey string

	// AccountID is a secondary identifier some providers require
	// (chatbase agent ID, azure region)
	AccountID string

	// Model is the upstream model identifier used when the client does not
	// choose one
	Model string

	// ConnectTimeout bounds the connect/response-header phase of a call
	ConnectTimeout time.Duration

	// MaxIdleConns is the maximum number of idle connections in the pool
	MaxIdleConns int

	// MaxIdleConnsPerHost is the maximum idle connections per host
	MaxIdleConnsPerHost int

	// IdleConnTimeout is how long an idle connection remains in the pool
	IdleConnTimeout time.Duration
}

// Message role constants
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultConnectTimeout is the connect/first-byte bound applied to upstream calls.
const DefaultConnectTimeout = 320 * time.Second
