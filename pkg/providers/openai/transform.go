package openai

import (
	"simulateur-hq/relay/pkg/providers"
)

// ChatRequest is the payload the browser sends for a completion stream.
type ChatRequest struct {
	Model    string             `json:"model"`
	Messages providers.Messages `json:"messages"`
}

// OpenAIRequest represents an OpenAI chat completion request.
type OpenAIRequest struct {
	Model         string               `json:"model"`
	Messages      providers.Messages   `json:"messages"`
	Stream        bool                 `json:"stream,omitempty"`
	StreamOptions *OpenAIStreamOptions `json:"stream_options,omitempty"`
}

// OpenAIStreamOptions asks OpenAI to append a usage event to the stream.
type OpenAIStreamOptions struct {
	IncludeUsage bool `json:"include_usage"`
}

// OpenAIUsage represents token usage in OpenAI format.
type OpenAIUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// OpenAI streaming response types

// OpenAIStreamResponse represents a chunk in OpenAI's SSE stream.
type OpenAIStreamResponse struct {
	ID      string               `json:"id"`
	Object  string               `json:"object"`
	Created int64                `json:"created"`
	Model   string               `json:"model"`
	Choices []OpenAIStreamChoice `json:"choices"`
	Usage   *OpenAIUsage         `json:"usage,omitempty"`
	Error   *OpenAIStreamError   `json:"error,omitempty"`
}

// OpenAIStreamError is an error event sent in place of a chunk once the
// stream has started.
type OpenAIStreamError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// OpenAIStreamChoice represents a choice in a stream chunk.
type OpenAIStreamChoice struct {
	Index        int               `json:"index"`
	Delta        OpenAIStreamDelta `json:"delta"`
	FinishReason string            `json:"finish_reason,omitempty"`
}

// OpenAIStreamDelta represents the incremental content in a stream chunk.
type OpenAIStreamDelta struct {
	Role    string `json:"role,omitempty"`
	Content string `json:"content,omitempty"`
}

// transformRequest builds the upstream streaming request from the browser payload.
func transformRequest(req *ChatRequest) *OpenAIRequest {
	return &OpenAIRequest{
		Model:         req.Model,
		Messages:      req.Messages,
		Stream:        true,
		StreamOptions: &OpenAIStreamOptions{IncludeUsage: true},
	}
}

// transformStreamChunk transforms an OpenAI stream chunk to provider-agnostic format.
// The trailing usage chunk carries no choices; it yields an empty Delta.
func transformStreamChunk(chunk *OpenAIStreamResponse) *providers.StreamChunk {
	result := &providers.StreamChunk{
		ID:    chunk.ID,
		Model: chunk.Model,
	}

	if len(chunk.Choices) > 0 {
		choice := chunk.Choices[0]
		result.Delta = choice.Delta.Content
		result.FinishReason = choice.FinishReason
	}

	if chunk.Usage != nil {
		result.Usage = &providers.TokenUsage{
			PromptTokens:     chunk.Usage.PromptTokens,
			CompletionTokens: chunk.Usage.CompletionTokens,
			TotalTokens:      chunk.Usage.TotalTokens,
		}
	}

	return result
}
