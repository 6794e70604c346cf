package providers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"
)

// MockServer is a mock upstream provider for testing adapters and the relay.
// It can answer with buffered bodies, raw streamed chunks, slow headers, or a
// stream that stays open until the client goes away.
type MockServer struct {
	server       *httptest.Server
	responses    map[string]MockResponse
	requests     []RecordedRequest
	requestCount int
	disconnected chan struct{}
	disconnOnce  sync.Once
	mu           sync.Mutex
}

// MockResponse defines a mock response configuration.
type MockResponse struct {
	StatusCode int
	Body       interface{}
	Headers    map[string]string

	// HeaderDelay is waited before any header is written
	HeaderDelay time.Duration

	// Chunks are written verbatim and flushed one by one
	Chunks []string

	// ChunkDelay is waited between chunks
	ChunkDelay time.Duration

	// HoldOpen keeps the stream open after the last chunk until the client
	// disconnects
	HoldOpen bool
}

// RecordedRequest is a request received by the mock server.
type RecordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// NewMockServer creates a new mock server.
func NewMockServer() *MockServer {
	ms := &MockServer{
		responses:    make(map[string]MockResponse),
		disconnected: make(chan struct{}),
	}
	ms.server = httptest.NewServer(http.HandlerFunc(ms.handler))
	return ms
}

// URL returns the mock server's base URL.
func (ms *MockServer) URL() string {
	return ms.server.URL
}

// Close closes the mock server.
func (ms *MockServer) Close() {
	ms.server.CloseClientConnections()
	ms.server.Close()
}

// SetResponse sets a mock response for a specific path.
func (ms *MockServer) SetResponse(path string, response MockResponse) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.responses[path] = response
}

// GetRequestCount returns the number of requests received.
func (ms *MockServer) GetRequestCount() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.requestCount
}

// LastRequest returns the most recent request, or false if none arrived.
func (ms *MockServer) LastRequest() (RecordedRequest, bool) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if len(ms.requests) == 0 {
		return RecordedRequest{}, false
	}
	return ms.requests[len(ms.requests)-1], true
}

// Disconnected is closed once a HoldOpen stream observes its client going away.
func (ms *MockServer) Disconnected() <-chan struct{} {
	return ms.disconnected
}

func (ms *MockServer) handler(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	ms.mu.Lock()
	ms.requestCount++
	ms.requests = append(ms.requests, RecordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Header: r.Header.Clone(),
		Body:   body,
	})
	response, ok := ms.responses[r.URL.Path]
	ms.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}

	if response.HeaderDelay > 0 {
		select {
		case <-time.After(response.HeaderDelay):
		case <-r.Context().Done():
			return
		}
	}

	for key, value := range response.Headers {
		w.Header().Set(key, value)
	}

	if len(response.Chunks) > 0 || response.HoldOpen {
		ms.handleStream(w, r, response)
		return
	}

	statusCode := response.StatusCode
	if statusCode == 0 {
		statusCode = http.StatusOK
	}
	w.WriteHeader(statusCode)

	switch v := response.Body.(type) {
	case nil:
	case string:
		_, _ = w.Write([]byte(v))
	case []byte:
		_, _ = w.Write(v)
	default:
		_ = json.NewEncoder(w).Encode(v)
	}
}

// handleStream writes each chunk verbatim and flushes it.
func (ms *MockServer) handleStream(w http.ResponseWriter, r *http.Request, response MockResponse) {
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "text/event-stream")
	}
	w.WriteHeader(http.StatusOK)

	flusher, ok := w.(http.Flusher)
	if !ok {
		return
	}
	flusher.Flush()

	for i, chunk := range response.Chunks {
		if i > 0 && response.ChunkDelay > 0 {
			select {
			case <-time.After(response.ChunkDelay):
			case <-r.Context().Done():
				ms.markDisconnected()
				return
			}
		}
		if _, err := io.WriteString(w, chunk); err != nil {
			ms.markDisconnected()
			return
		}
		flusher.Flush()
	}

	if response.HoldOpen {
		<-r.Context().Done()
		ms.markDisconnected()
	}
}

func (ms *MockServer) markDisconnected() {
	ms.disconnOnce.Do(func() { close(ms.disconnected) })
}

// OpenAIStreamChunk creates an OpenAI chat completion chunk event.
func OpenAIStreamChunk(delta string) string {
	chunk := map[string]interface{}{
		"id":      "chatcmpl-123",
		"object":  "chat.completion.chunk",
		"created": 1700000000,
		"model":   "gpt-4o-mini",
		"choices": []map[string]interface{}{
			{
				"index": 0,
				"delta": map[string]interface{}{
					"content": delta,
				},
			},
		},
	}

	data, _ := json.Marshal(chunk)
	return fmt.Sprintf("data: %s\n\n", data)
}

// OpenAIUsageChunk creates the trailing usage event sent when include_usage is set.
func OpenAIUsageChunk(totalTokens int) string {
	chunk := map[string]interface{}{
		"id":      "chatcmpl-123",
		"object":  "chat.completion.chunk",
		"created": 1700000000,
		"model":   "gpt-4o-mini",
		"choices": []interface{}{},
		"usage": map[string]interface{}{
			"prompt_tokens":     totalTokens / 2,
			"completion_tokens": totalTokens - totalTokens/2,
			"total_tokens":      totalTokens,
		},
	}

	data, _ := json.Marshal(chunk)
	return fmt.Sprintf("data: %s\n\n", data)
}

// OpenAIDone is the end marker of an OpenAI stream.
const OpenAIDone = "data: [DONE]\n\n"

// ExpectHeader checks if a request has a specific header value.
func ExpectHeader(r RecordedRequest, key, value string) error {
	actual := r.Header.Get(key)
	if !strings.Contains(actual, value) {
		return fmt.Errorf("header %q mismatch: expected %q, got %q", key, value, actual)
	}
	return nil
}
