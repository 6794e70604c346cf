package openai

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"simulateur-hq/relay/pkg/providers"
)

// maxEventSize bounds a single SSE line from OpenAI.
const maxEventSize = 1 << 20

// streamReader reads Server-Sent Events (SSE) from OpenAI's streaming API.
type streamReader struct {
	provider string
	resp     io.ReadCloser
	scanner  *bufio.Scanner
	closed   bool
}

// newStreamReader creates a new stream reader over an OpenAI SSE body.
func newStreamReader(provider string, body io.ReadCloser) *streamReader {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64<<10), maxEventSize)

	return &streamReader{
		provider: provider,
		resp:     body,
		scanner:  scanner,
	}
}

// Read reads the next chunk from the stream.
// Returns nil, io.EOF when the stream ends normally.
// Returns nil, error if an error occurs.
func (s *streamReader) Read(ctx context.Context) (*providers.StreamChunk, error) {
	if s.closed {
		return nil, io.EOF
	}

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				return nil, &providers.StreamError{
					Provider: s.provider,
					Message:  "failed to read stream",
					Cause:    err,
				}
			}
			return nil, io.EOF
		}

		line := s.scanner.Text()

		// Skip non-data lines (blank separators, comments, event types)
		if !strings.HasPrefix(line, "data:") {
			continue
		}

		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" {
			continue
		}

		if data == "[DONE]" {
			return nil, io.EOF
		}

		var openaiChunk OpenAIStreamResponse
		if err := json.Unmarshal([]byte(data), &openaiChunk); err != nil {
			return nil, &providers.ParseError{
				Provider:    s.provider,
				RawResponse: data,
				Cause:       fmt.Errorf("failed to parse stream chunk: %w", err),
			}
		}

		if openaiChunk.Error != nil {
			return nil, &providers.StreamError{
				Provider: s.provider,
				Message:  openaiChunk.Error.Message,
			}
		}

		return transformStreamChunk(&openaiChunk), nil
	}
}

// Close closes the stream and releases resources.
func (s *streamReader) Close() error {
	if s.closed {
		return nil
	}

	s.closed = true
	return s.resp.Close()
}
