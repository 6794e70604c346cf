// Package azure issues short-lived Azure Speech tokens for the browser.
//
// The subscription key never leaves the server: the browser receives a token
// valid for ten minutes together with the region it belongs to. Tokens are
// cached for TokenTTL so a burst of page loads costs one upstream call, and a
// Refresher can renew the cached token on a cron schedule.
package azure

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"simulateur-hq/relay/pkg/providers"
)

// TokenTTL is how long an issued token is served from cache. Azure tokens
// are valid for ten minutes.
const TokenTTL = 9 * time.Minute

// MissingConfigMessage is returned when the key or the region is not configured.
const MissingConfigMessage = "Azure keys missing in the backend"

// Token is an issued speech token.
type Token struct {
	// Value is the opaque token text
	Value string `json:"token"`

	// Region is the Azure region the token is valid for
	Region string `json:"region"`

	// ExpiresAt is when the cached token stops being served
	ExpiresAt time.Time `json:"-"`
}

// Issuer obtains speech tokens from the Azure STS endpoint.
// config.APIKey holds the subscription key and config.AccountID the region.
type Issuer struct {
	*providers.HTTPProvider

	ttl time.Duration
	now func() time.Time

	mu     sync.Mutex
	cached *Token
}

// NewIssuer creates a new token issuer.
func NewIssuer(config providers.ProviderConfig) *Issuer {
	if config.BaseURL == "" && config.AccountID != "" {
		config.BaseURL = fmt.Sprintf("https://%s.api.cognitive.microsoft.com", config.AccountID)
	}
	return &Issuer{
		HTTPProvider: providers.NewHTTPProvider(config),
		ttl:          TokenTTL,
		now:          time.Now,
	}
}

// Token returns a cached token if still fresh, else issues a new one.
func (i *Issuer) Token(ctx context.Context) (*Token, error) {
	if err := i.checkConfig(); err != nil {
		return nil, err
	}

	i.mu.Lock()
	cached := i.cached
	i.mu.Unlock()

	if cached != nil && i.now().Before(cached.ExpiresAt) {
		return cached, nil
	}
	return i.Refresh(ctx)
}

// Refresh issues a new token unconditionally and caches it.
func (i *Issuer) Refresh(ctx context.Context) (*Token, error) {
	if err := i.checkConfig(); err != nil {
		return nil, err
	}
	config := i.GetConfig()

	headers := map[string]string{
		"Ocp-Apim-Subscription-Key": config.APIKey,
	}

	_, body, err := i.CallBuffered(ctx, "POST", config.BaseURL+"/sts/v1.0/issueToken", nil, headers)
	if err != nil {
		return nil, err
	}

	token := &Token{
		Value:     strings.TrimSpace(string(body)),
		Region:    config.AccountID,
		ExpiresAt: i.now().Add(i.ttl),
	}

	i.mu.Lock()
	i.cached = token
	i.mu.Unlock()

	slog.DebugContext(ctx, "azure speech token issued",
		"provider", config.Name,
		"region", config.AccountID,
		"expires_at", token.ExpiresAt,
	)

	return token, nil
}

func (i *Issuer) checkConfig() error {
	config := i.GetConfig()
	switch {
	case config.APIKey == "":
		return &providers.ConfigError{Provider: config.Name, Field: "speech_key", Message: MissingConfigMessage}
	case config.AccountID == "":
		return &providers.ConfigError{Provider: config.Name, Field: "region", Message: MissingConfigMessage}
	}
	return nil
}
