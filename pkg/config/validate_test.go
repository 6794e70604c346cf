package config

import (
	"strings"
	"testing"
)

func TestValidate_ValidConfig(t *testing.T) {
	if err := Validate(NewDefault()); err != nil {
		t.Errorf("expected valid config to pass validation, got error: %v", err)
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	cfg := &Config{}

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation to fail")
	}

	validationErr, ok := err.(ValidationError)
	if !ok {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if len(validationErr.Errors) < 2 {
		t.Errorf("expected multiple errors, got %d", len(validationErr.Errors))
	}
	if !strings.Contains(validationErr.Error(), "validation failed with") {
		t.Errorf("error message should mention multiple errors: %s", validationErr.Error())
	}
}

func TestValidate_Fields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"empty listen address", func(c *Config) { c.Server.ListenAddress = "" }, "server.listen_address"},
		{"negative read timeout", func(c *Config) { c.Server.ReadTimeout = -1 }, "server.read_timeout"},
		{"negative body limit", func(c *Config) { c.Server.MaxBodyBytes = -1 }, "server.max_body_bytes"},
		{"credentials with wildcard", func(c *Config) { c.Server.CORS.AllowCredentials = true }, "server.cors.allow_credentials"},
		{"zero connect timeout", func(c *Config) { c.Providers.ConnectTimeout = 0 }, "providers.connect_timeout"},
		{"bad base url", func(c *Config) { c.Providers.Chatbase.BaseURL = "chatbase" }, "providers.chatbase.base_url"},
		{"bad schedule", func(c *Config) { c.Providers.Azure.RefreshSchedule = "soon" }, "providers.azure.refresh_schedule"},
		{"bad format", func(c *Config) { c.Telemetry.Logging.Format = "xml" }, "telemetry.logging.format"},
		{"bad redact pattern", func(c *Config) {
			c.Telemetry.Logging.RedactPatterns = []RedactPattern{{Name: "broken", Pattern: "("}}
		}, "telemetry.logging.redact_patterns[0].pattern"},
		{"relative metrics path", func(c *Config) { c.Telemetry.Metrics.Path = "metrics" }, "telemetry.metrics.path"},
		{"unsorted buckets", func(c *Config) { c.Telemetry.Metrics.LatencyBuckets = []float64{1, 0.5} }, "telemetry.metrics.latency_buckets"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefault()
			tt.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("expected error on %s, got %v", tt.field, err)
			}
		})
	}
}

func TestValidate_MissingCredentialsAreAccepted(t *testing.T) {
	cfg := NewDefault()
	if len(cfg.Providers.Unconfigured()) == 0 {
		t.Fatal("expected default config to lack credentials")
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("missing credentials must not fail validation: %v", err)
	}
}
