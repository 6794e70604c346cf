package providers

import (
	"errors"
	"testing"
	"time"

	"simulateur-hq/relay/pkg/providers"
)

// TestConfig returns a test provider configuration pointing at baseURL.
func TestConfig(name, baseURL string) providers.ProviderConfig {
	return providers.ProviderConfig{
		Name:                name,
		BaseURL:             baseURL,
		APIKey:              "test-key",
		ConnectTimeout:      5 * time.Second,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     30 * time.Second,
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertErrorAs fails the test unless err matches target via errors.As.
func AssertErrorAs(t *testing.T, err error, target interface{}) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.As(err, target) {
		t.Fatalf("expected error of type %T, got %T: %v", target, err, err)
	}
}
