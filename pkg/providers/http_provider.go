package providers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"
)

// maxErrorBody bounds how much of a non-2xx upstream body is kept.
const maxErrorBody = 64 << 10

var errConnectTimeout = errors.New("upstream connect timeout")

// ProviderHealth tracks request counters of a provider.
type ProviderHealth struct {
	// TotalRequests is the total number of upstream calls attempted
	TotalRequests int64

	// FailedRequests is the number of calls that did not reach a 2xx response
	FailedRequests int64

	// LastError is the most recent error encountered (nil if none)
	LastError error

	// LastSuccessfulRequest is the timestamp of the last 2xx response
	LastSuccessfulRequest time.Time
}

// HTTPProvider is the base implementation for HTTP-based provider adapters.
// It provides connection pooling and the connect-phase timeout.
//
// Concrete adapters embed this struct and add Open or Forward.
type HTTPProvider struct {
	// config contains the provider configuration
	config ProviderConfig

	// client is the HTTP client with connection pooling
	client *http.Client

	// health tracks request counters
	health ProviderHealth

	// healthMu protects concurrent access to health
	healthMu sync.RWMutex
}

// NewHTTPProvider creates a new base HTTP provider with connection pooling.
//
// The client carries no overall timeout: http.Client.Timeout would also bound
// reading the body and truncate long streams. The connect phase is bounded
// per call in Call instead.
func NewHTTPProvider(config ProviderConfig) *HTTPProvider {
	if config.ConnectTimeout <= 0 {
		config.ConnectTimeout = DefaultConnectTimeout
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        config.MaxIdleConns,
		MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
		IdleConnTimeout:     config.IdleConnTimeout,
		ForceAttemptHTTP2:   true,
	}

	return &HTTPProvider{
		config: config,
		client: &http.Client{Transport: transport},
	}
}

// GetName returns the provider's configured name.
func (p *HTTPProvider) GetName() string {
	return p.config.Name
}

// GetConfig returns the provider's configuration.
func (p *HTTPProvider) GetConfig() ProviderConfig {
	return p.config
}

// GetHealth returns request counters.
func (p *HTTPProvider) GetHealth() ProviderHealth {
	p.healthMu.RLock()
	defer p.healthMu.RUnlock()
	return p.health
}

// recordRequest records the outcome of one upstream call.
func (p *HTTPProvider) recordRequest(err error) {
	p.healthMu.Lock()
	defer p.healthMu.Unlock()

	p.health.TotalRequests++
	if err != nil {
		p.health.FailedRequests++
		p.health.LastError = err
		return
	}
	p.health.LastSuccessfulRequest = time.Now()
}

// Call performs one upstream request and returns once response headers have
// arrived. Only that phase is bounded by ConnectTimeout.
//
// On success the returned cancel func must be called once the body is no
// longer needed; it aborts the request if it is still streaming. On error the
// request is already released.
//
// Errors:
//   - *TimeoutError when ConnectTimeout elapses first
//   - the context error when ctx is cancelled (client disconnect)
//   - *ConnectError for network failures
//   - *ProviderError for non-2xx statuses
func (p *HTTPProvider) Call(ctx context.Context, method, url string, body []byte, headers map[string]string) (*http.Response, context.CancelFunc, error) {
	callCtx, cancel := context.WithCancelCause(ctx)
	timer := time.AfterFunc(p.config.ConnectTimeout, func() {
		cancel(errConnectTimeout)
	})

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(callCtx, method, url, bodyReader)
	if err != nil {
		timer.Stop()
		cancel(nil)
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}
	if req.Header.Get("Content-Type") == "" && body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	slog.DebugContext(ctx, "sending request to provider",
		"provider", p.config.Name,
		"method", method,
		"url", url,
	)

	resp, err := p.client.Do(req)
	fired := !timer.Stop()

	if fired {
		// The timer may still be running its cancel; make the cause certain.
		// A response that raced the timer is unusable since its context is gone.
		if err == nil {
			resp.Body.Close()
		}
		cancel(errConnectTimeout)
		err = errConnectTimeout
	}

	if err != nil {
		cancel(nil)
		switch {
		case errors.Is(context.Cause(callCtx), errConnectTimeout):
			err = &TimeoutError{Provider: p.config.Name, Timeout: p.config.ConnectTimeout}
		case ctx.Err() != nil:
			err = ctx.Err()
		default:
			err = &ConnectError{Provider: p.config.Name, Cause: err}
		}
		p.recordRequest(err)
		return nil, nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		resp.Body.Close()
		cancel(nil)

		providerErr := &ProviderError{
			Provider:   p.config.Name,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Message:    string(errorBody),
		}
		slog.WarnContext(ctx, "provider returned error status",
			"provider", p.config.Name,
			"status", resp.StatusCode,
			"body", providerErr.Message,
		)
		p.recordRequest(providerErr)
		return nil, nil, providerErr
	}

	p.recordRequest(nil)
	return resp, func() { cancel(context.Canceled) }, nil
}

// CallBuffered performs a request and reads the complete response body.
func (p *HTTPProvider) CallBuffered(ctx context.Context, method, url string, body []byte, headers map[string]string) (*http.Response, []byte, error) {
	resp, cancel, err := p.Call(ctx, method, url, body, headers)
	if err != nil {
		return nil, nil, err
	}
	defer cancel()
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		return nil, nil, &ParseError{
			Provider: p.config.Name,
			Cause:    fmt.Errorf("failed to read response: %w", err),
		}
	}
	return resp, payload, nil
}

// Close closes idle connections.
func (p *HTTPProvider) Close() error {
	p.client.CloseIdleConnections()
	slog.Debug("provider closed", "provider", p.config.Name)
	return nil
}
