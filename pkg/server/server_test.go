package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	testhelpers "simulateur-hq/relay/internal/providers"
	"simulateur-hq/relay/pkg/config"
	"simulateur-hq/relay/pkg/providers/azure"
	"simulateur-hq/relay/pkg/providers/elevenlabs"
	"simulateur-hq/relay/pkg/proxy/handlers"
	"simulateur-hq/relay/pkg/telemetry/metrics"
)

type staticTokens struct{}

func (staticTokens) Token(ctx context.Context) (*azure.Token, error) {
	return &azure.Token{Value: "tok", Region: "westeurope"}, nil
}

func newTestServer(t *testing.T) (*Server, *testhelpers.MockServer) {
	t.Helper()

	mock := testhelpers.NewMockServer()
	t.Cleanup(mock.Close)

	cfg := config.NewDefault()
	cfg.Server.ListenAddress = "127.0.0.1:0"
	cfg.Server.ShutdownTimeout = 2 * time.Second
	cfg.Providers.OpenAI.AnalyseKey = "sk-analyse-key"

	registry := handlers.NewRegistry()
	if err := registry.RegisterBuffered(config.ServiceElevenLabs, elevenlabs.NewProvider(testhelpers.TestConfig("elevenlabs", mock.URL()))); err != nil {
		t.Fatalf("register: %v", err)
	}
	t.Cleanup(func() { _ = registry.Close() })

	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, prometheus.NewRegistry())
	return NewServer(cfg, registry, staticTokens{}, collector), mock
}

func TestHandler_Routes(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantBody   string
	}{
		{"health", http.MethodGet, "/health", "", http.StatusOK, `"status":"ok"`},
		{"ready", http.MethodGet, "/ready", "", http.StatusOK, `"elevenlabs"`},
		{"provider health", http.MethodGet, "/health/providers", "", http.StatusOK, `"providers"`},
		{"azure key", http.MethodGet, "/get-azure-key", "", http.StatusOK, `{"token":"tok","region":"westeurope"}`},
		{"openai key", http.MethodGet, "/get-openai-key", "", http.StatusOK, `{"apiKey":"sk-analyse-key"}`},
		{"unknown service", http.MethodPost, "/api/unknown", `{}`, http.StatusBadRequest, `{"error":"invalid service"}`},
		{"unsupported language", http.MethodPost, "/api/elevenlabs", `{"text":"x","selectedLanguage":"klingon"}`, http.StatusBadRequest, `{"error":"Lingua non supportata"}`},
		{"api requires POST", http.MethodGet, "/api/elevenlabs", "", http.StatusMethodNotAllowed, ""},
		{"unknown route", http.MethodGet, "/v1/chat/completions", "", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, body))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantBody != "" && !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body = %s, want it to contain %s", rec.Body.String(), tt.wantBody)
			}
			if rec.Header().Get("X-Request-ID") == "" {
				t.Error("missing X-Request-ID response header")
			}
		})
	}
}

func TestHandler_CORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/openaiSimulateur", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
	if rec.Code >= 300 {
		t.Errorf("preflight status = %d", rec.Code)
	}
}

func TestHandler_CORSDisabled(t *testing.T) {
	srv, _ := newTestServer(t)
	srv.config.Server.CORS.Enabled = false

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Access-Control-Allow-Origin = %q, want none", got)
	}
}

func TestHandler_Metrics(t *testing.T) {
	srv, mock := newTestServer(t)
	mock.SetResponse("/text-to-speech/7tRwuZTD1EWi6nydVerp/stream", testhelpers.MockResponse{
		Body:    "ID3audio",
		Headers: map[string]string{"Content-Type": "audio/mpeg"},
	})
	h := srv.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/elevenlabs",
		strings.NewReader(`{"text":"Hello","selectedLanguage":"anglais"}`)))
	if rec.Code != http.StatusOK || rec.Body.String() != "ID3audio" {
		t.Fatalf("speech = %d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `simulateur_relay_forward_requests_total{service="elevenlabs",status="200"} 1`) {
		t.Errorf("forward counter missing from:\n%s", rec.Body.String())
	}
}

func TestHandler_MetricsDisabled(t *testing.T) {
	srv, _ := newTestServer(t)
	srv.config.Telemetry.Metrics.Enabled = false

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestServer_StartShutdown(t *testing.T) {
	srv, _ := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for srv.Addr() == "" && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if !srv.IsRunning() {
		t.Fatal("server did not start")
	}

	resp, err := http.Get("http://" + srv.Addr() + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	var health map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&health)
	resp.Body.Close()
	if health["status"] != "ok" {
		t.Errorf("health = %v", health)
	}

	if err := srv.Start(ctx); err == nil {
		t.Error("expected error starting a running server")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start() returned %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
	if srv.IsRunning() {
		t.Error("server still running after shutdown")
	}
}
