package azure

import (
	"context"
	"testing"
	"time"

	testhelpers "simulateur-hq/relay/internal/providers"
	"simulateur-hq/relay/pkg/providers"
)

func newTestIssuer(baseURL string) *Issuer {
	config := testhelpers.TestConfig("azure", baseURL)
	config.AccountID = "westeurope"
	return NewIssuer(config)
}

func TestNewIssuer_RegionalEndpoint(t *testing.T) {
	issuer := NewIssuer(providers.ProviderConfig{Name: "azure", APIKey: "k", AccountID: "francecentral"})
	defer issuer.Close()

	want := "https://francecentral.api.cognitive.microsoft.com"
	if got := issuer.GetConfig().BaseURL; got != want {
		t.Errorf("expected base URL %q, got %q", want, got)
	}
}

func TestIssuer_Token(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()
	mock.SetResponse("/sts/v1.0/issueToken", testhelpers.MockResponse{Body: "eyJ0b2tlbiI6MX0"})

	issuer := newTestIssuer(mock.URL())
	defer issuer.Close()

	token, err := issuer.Token(context.Background())
	testhelpers.AssertNoError(t, err)

	if token.Value != "eyJ0b2tlbiI6MX0" || token.Region != "westeurope" {
		t.Errorf("unexpected token %+v", token)
	}

	req, _ := mock.LastRequest()
	if req.Method != "POST" {
		t.Errorf("expected POST, got %s", req.Method)
	}
	if err := testhelpers.ExpectHeader(req, "Ocp-Apim-Subscription-Key", "test-key"); err != nil {
		t.Error(err)
	}
}

func TestIssuer_TokenIsCached(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()
	mock.SetResponse("/sts/v1.0/issueToken", testhelpers.MockResponse{Body: "token-1"})

	issuer := newTestIssuer(mock.URL())
	defer issuer.Close()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	issuer.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		_, err := issuer.Token(context.Background())
		testhelpers.AssertNoError(t, err)
	}
	if got := mock.GetRequestCount(); got != 1 {
		t.Fatalf("expected 1 upstream call, got %d", got)
	}

	now = now.Add(TokenTTL + time.Second)
	mock.SetResponse("/sts/v1.0/issueToken", testhelpers.MockResponse{Body: "token-2"})

	token, err := issuer.Token(context.Background())
	testhelpers.AssertNoError(t, err)
	if token.Value != "token-2" {
		t.Errorf("expected refreshed token, got %q", token.Value)
	}
	if got := mock.GetRequestCount(); got != 2 {
		t.Errorf("expected 2 upstream calls, got %d", got)
	}
}

func TestIssuer_MissingConfig(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		region string
		field  string
	}{
		{"missing key", "", "westeurope", "speech_key"},
		{"missing region", "key", "", "region"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issuer := NewIssuer(providers.ProviderConfig{Name: "azure", APIKey: tt.key, AccountID: tt.region})
			defer issuer.Close()

			_, err := issuer.Token(context.Background())
			var configErr *providers.ConfigError
			testhelpers.AssertErrorAs(t, err, &configErr)
			if configErr.Field != tt.field || configErr.Message != MissingConfigMessage {
				t.Errorf("unexpected config error %+v", configErr)
			}
		})
	}
}

func TestIssuer_UpstreamError(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()
	mock.SetResponse("/sts/v1.0/issueToken", testhelpers.MockResponse{StatusCode: 401, Body: "Access denied"})

	issuer := newTestIssuer(mock.URL())
	defer issuer.Close()

	_, err := issuer.Token(context.Background())
	var providerErr *providers.ProviderError
	testhelpers.AssertErrorAs(t, err, &providerErr)
}

func TestRefresher_Lifecycle(t *testing.T) {
	issuer := newTestIssuer("http://127.0.0.1:0")
	defer issuer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	idle := NewRefresher(issuer, "")
	if err := idle.Start(ctx); err != nil {
		t.Fatalf("empty schedule: %v", err)
	}
	if idle.IsRunning() {
		t.Error("expected refresher without schedule to stay idle")
	}

	if err := NewRefresher(issuer, "not a schedule").Start(ctx); err == nil {
		t.Error("expected invalid schedule error")
	}

	r := NewRefresher(issuer, "*/8 * * * *")
	if err := r.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !r.IsRunning() {
		t.Fatal("expected refresher to run")
	}
	r.Stop()
	if r.IsRunning() {
		t.Error("expected refresher to stop")
	}
}

func TestRefresher_RenewsToken(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()
	mock.SetResponse("/sts/v1.0/issueToken", testhelpers.MockResponse{Body: "scheduled"})

	issuer := newTestIssuer(mock.URL())
	defer issuer.Close()

	r := NewRefresher(issuer, "")
	r.refresh(context.Background())

	if mock.GetRequestCount() != 1 {
		t.Fatalf("expected one renewal, got %d", mock.GetRequestCount())
	}
	token, err := issuer.Token(context.Background())
	testhelpers.AssertNoError(t, err)
	if token.Value != "scheduled" || mock.GetRequestCount() != 1 {
		t.Errorf("expected cached scheduled token, got %q after %d calls", token.Value, mock.GetRequestCount())
	}
}
