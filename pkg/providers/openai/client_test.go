package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	testhelpers "simulateur-hq/relay/internal/providers"
	"simulateur-hq/relay/pkg/providers"
)

func TestProvider_Open(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()

	mock.SetResponse("/v1/chat/completions", testhelpers.MockResponse{
		Chunks: []string{
			testhelpers.OpenAIStreamChunk("Hel"),
			testhelpers.OpenAIStreamChunk("lo"),
			testhelpers.OpenAIUsageChunk(12),
			testhelpers.OpenAIDone,
		},
	})

	provider := NewProvider(testhelpers.TestConfig("openai", mock.URL()+"/v1"))
	defer provider.Close()

	body := `{"model":"gpt-4o-mini","messages":[{"role":"user","content":"Hello"}]}`
	call, err := provider.Open(context.Background(), []byte(body))
	testhelpers.AssertNoError(t, err)
	defer call.Close()

	if call.Strategy != providers.StrategyEvents {
		t.Fatalf("expected events strategy, got %s", call.Strategy)
	}

	var deltas string
	var usage *providers.TokenUsage
	for {
		chunk, err := call.Events.Read(context.Background())
		if err == io.EOF {
			break
		}
		testhelpers.AssertNoError(t, err)
		deltas += chunk.Delta
		if chunk.Usage != nil {
			usage = chunk.Usage
		}
	}

	if deltas != "Hello" {
		t.Errorf("expected %q, got %q", "Hello", deltas)
	}
	if usage == nil || usage.TotalTokens != 12 {
		t.Errorf("expected usage total 12, got %+v", usage)
	}

	req, ok := mock.LastRequest()
	if !ok {
		t.Fatal("expected a recorded request")
	}
	if err := testhelpers.ExpectHeader(req, "Authorization", "Bearer test-key"); err != nil {
		t.Error(err)
	}
	if err := testhelpers.ExpectHeader(req, "Accept", "text/event-stream"); err != nil {
		t.Error(err)
	}

	var sent OpenAIRequest
	if err := json.Unmarshal(req.Body, &sent); err != nil {
		t.Fatalf("failed to decode upstream request: %v", err)
	}
	if !sent.Stream {
		t.Error("expected stream:true")
	}
	if sent.StreamOptions == nil || !sent.StreamOptions.IncludeUsage {
		t.Error("expected stream_options.include_usage:true")
	}
	if sent.Model != "gpt-4o-mini" || len(sent.Messages) != 1 {
		t.Errorf("unexpected upstream request %+v", sent)
	}
}

func TestProvider_OpenValidation(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()

	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"invalid json", `{"model":`, "body"},
		{"missing model", `{"messages":[{"role":"user","content":"hi"}]}`, "model"},
		{"missing messages", `{"model":"gpt-4o"}`, "messages"},
		{"empty messages", `{"model":"gpt-4o","messages":[]}`, "messages"},
		{"message not an object", `{"model":"gpt-4o","messages":["hi"]}`, "messages[0]"},
	}

	provider := NewProvider(testhelpers.TestConfig("openai", mock.URL()))
	defer provider.Close()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := provider.Open(context.Background(), []byte(tt.body))
			var validationErr *providers.ValidationError
			testhelpers.AssertErrorAs(t, err, &validationErr)
			if validationErr.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, validationErr.Field)
			}
		})
	}

	if mock.GetRequestCount() != 0 {
		t.Errorf("expected no upstream request, got %d", mock.GetRequestCount())
	}
}

func TestProvider_OpenDefaultModel(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()
	mock.SetResponse("/chat/completions", testhelpers.MockResponse{
		Chunks: []string{testhelpers.OpenAIDone},
	})

	config := testhelpers.TestConfig("openai", mock.URL())
	config.Model = "gpt-4o-mini"
	provider := NewProvider(config)
	defer provider.Close()

	call, err := provider.Open(context.Background(), []byte(`{"messages":[{"role":"user","content":"hi"}]}`))
	testhelpers.AssertNoError(t, err)
	call.Close()

	req, _ := mock.LastRequest()
	var sent OpenAIRequest
	if err := json.Unmarshal(req.Body, &sent); err != nil {
		t.Fatalf("failed to decode upstream request: %v", err)
	}
	if sent.Model != "gpt-4o-mini" {
		t.Errorf("expected configured model, got %q", sent.Model)
	}
}

func TestProvider_OpenMissingKey(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()

	config := testhelpers.TestConfig("openai", mock.URL())
	config.APIKey = ""
	provider := NewProvider(config)
	defer provider.Close()

	_, err := provider.Open(context.Background(), []byte(`{"model":"gpt-4o","messages":[{"role":"user","content":"hi"}]}`))
	var configErr *providers.ConfigError
	testhelpers.AssertErrorAs(t, err, &configErr)

	if mock.GetRequestCount() != 0 {
		t.Errorf("expected no upstream request, got %d", mock.GetRequestCount())
	}
}

func TestProvider_OpenUpstreamError(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()
	mock.SetResponse("/chat/completions", testhelpers.MockResponse{
		StatusCode: 401,
		Body:       `{"error":{"message":"Incorrect API key provided"}}`,
	})

	provider := NewProvider(testhelpers.TestConfig("openai", mock.URL()))
	defer provider.Close()

	_, err := provider.Open(context.Background(), []byte(`{"model":"gpt-4o","messages":[{"role":"user","content":"hi"}]}`))
	var providerErr *providers.ProviderError
	testhelpers.AssertErrorAs(t, err, &providerErr)

	if providerErr.StatusCode != 401 {
		t.Errorf("expected status 401, got %d", providerErr.StatusCode)
	}
	if providerErr.Summary() != "401 Unauthorized" {
		t.Errorf("unexpected summary %q", providerErr.Summary())
	}

	health := provider.GetHealth()
	if health.TotalRequests != 1 || health.FailedRequests != 1 {
		t.Errorf("unexpected health counters %+v", health)
	}
}

func TestProvider_OpenConnectTimeout(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()
	mock.SetResponse("/chat/completions", testhelpers.MockResponse{
		HeaderDelay: 2 * time.Second,
		Chunks:      []string{testhelpers.OpenAIDone},
	})

	config := testhelpers.TestConfig("openai", mock.URL())
	config.ConnectTimeout = 50 * time.Millisecond
	provider := NewProvider(config)
	defer provider.Close()

	start := time.Now()
	_, err := provider.Open(context.Background(), []byte(`{"model":"gpt-4o","messages":[{"role":"user","content":"hi"}]}`))
	var timeoutErr *providers.TimeoutError
	testhelpers.AssertErrorAs(t, err, &timeoutErr)

	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("connect timeout took %s", elapsed)
	}
}

func TestProvider_StreamOutlivesConnectTimeout(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()
	mock.SetResponse("/chat/completions", testhelpers.MockResponse{
		Chunks: []string{
			testhelpers.OpenAIStreamChunk("slow"),
			testhelpers.OpenAIStreamChunk(" answer"),
			testhelpers.OpenAIDone,
		},
		ChunkDelay: 150 * time.Millisecond,
	})

	config := testhelpers.TestConfig("openai", mock.URL())
	config.ConnectTimeout = 100 * time.Millisecond
	provider := NewProvider(config)
	defer provider.Close()

	call, err := provider.Open(context.Background(), []byte(`{"model":"gpt-4o","messages":[{"role":"user","content":"hi"}]}`))
	testhelpers.AssertNoError(t, err)
	defer call.Close()

	var text string
	for {
		chunk, err := call.Events.Read(context.Background())
		if errors.Is(err, io.EOF) {
			break
		}
		testhelpers.AssertNoError(t, err)
		text += chunk.Delta
	}
	if text != "slow answer" {
		t.Errorf("expected full stream, got %q", text)
	}
}

func TestAnalyseProvider_Forward(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()
	mock.SetResponse("/chat/completions", testhelpers.MockResponse{
		Body:    `{"id":"chatcmpl-9","choices":[{"message":{"role":"assistant","content":"ok"}}]}`,
		Headers: map[string]string{"Content-Type": "application/json"},
	})

	provider := NewAnalyseProvider(testhelpers.TestConfig("openai-analyse", mock.URL()))
	defer provider.Close()

	body := `{"model":"gpt-4o","messages":[{"role":"user","content":"analyse"}],"temperature":0.2}`
	resp, err := provider.Forward(context.Background(), []byte(body))
	testhelpers.AssertNoError(t, err)

	if resp.StatusCode != 200 || resp.ContentType != "application/json" {
		t.Errorf("unexpected response %d %q", resp.StatusCode, resp.ContentType)
	}
	if string(resp.Body) != `{"id":"chatcmpl-9","choices":[{"message":{"role":"assistant","content":"ok"}}]}` {
		t.Errorf("unexpected body %s", resp.Body)
	}

	req, _ := mock.LastRequest()
	if string(req.Body) != body {
		t.Errorf("expected body forwarded unchanged, got %s", req.Body)
	}
}

func TestAnalyseProvider_Timeout(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()
	mock.SetResponse("/chat/completions", testhelpers.MockResponse{
		HeaderDelay: 2 * time.Second,
		Body:        `{}`,
	})

	config := testhelpers.TestConfig("openai-analyse", mock.URL())
	config.ConnectTimeout = 50 * time.Millisecond
	provider := NewAnalyseProvider(config)
	defer provider.Close()

	_, err := provider.Forward(context.Background(), []byte(`{"model":"gpt-4o"}`))
	var timeoutErr *providers.TimeoutError
	testhelpers.AssertErrorAs(t, err, &timeoutErr)
	if timeoutErr.Message != AnalyseTimeoutMessage {
		t.Errorf("unexpected timeout message %q", timeoutErr.Message)
	}
}

func TestProvider_OpenForwardsMessagesVerbatim(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()
	mock.SetResponse("/chat/completions", testhelpers.MockResponse{
		Chunks: []string{testhelpers.OpenAIDone},
	})

	provider := NewProvider(testhelpers.TestConfig("openai", mock.URL()))
	defer provider.Close()

	messages := []string{
		`{"role":"system","content":"Tu es un patient.","name":"scenario"}`,
		`{"role":"user","content":[{"type":"text","text":"Regarde"},{"type":"image_url","image_url":{"url":"https://example.com/x.png"}}]}`,
	}
	body := `{"model":"gpt-4o-mini","messages":[` + strings.Join(messages, ",") + `]}`

	call, err := provider.Open(context.Background(), []byte(body))
	testhelpers.AssertNoError(t, err)
	call.Close()

	req, _ := mock.LastRequest()
	var sent struct {
		Messages []json.RawMessage `json:"messages"`
	}
	if err := json.Unmarshal(req.Body, &sent); err != nil {
		t.Fatalf("failed to decode upstream request: %v", err)
	}
	if len(sent.Messages) != len(messages) {
		t.Fatalf("expected %d messages upstream, got %d", len(messages), len(sent.Messages))
	}
	for i, want := range messages {
		if string(sent.Messages[i]) != want {
			t.Errorf("message %d = %s, want %s", i, sent.Messages[i], want)
		}
	}
}
