package providers

import (
	"context"
	"io"
	"sync"
)

// Provider is the part of an adapter shared by streaming and buffered
// providers.
type Provider interface {
	// GetName returns the provider's configured name (e.g., "openai", "chatbase").
	GetName() string

	// GetConfig returns the provider's configuration.
	GetConfig() ProviderConfig

	// GetHealth returns request counters and the last upstream error.
	GetHealth() ProviderHealth

	// Close releases idle connections. After calling Close, the provider
	// should not be used.
	Close() error
}

// StreamingProvider opens upstream calls whose output is relayed incrementally.
//
// Open validates the client payload, checks that the credentials it needs are
// configured, and performs the upstream request up to the response headers.
// Every error returned by Open happens before a single byte is written to the
// client, so the HTTP layer can still choose a status code.
//
// Example:
//
//	call, err := provider.Open(ctx, body)
//	if err != nil {
//	    return err
//	}
//	defer call.Close()
type StreamingProvider interface {
	Provider
	Open(ctx context.Context, body []byte) (*UpstreamCall, error)
}

// BufferedProvider forwards a request and returns the complete upstream payload.
type BufferedProvider interface {
	Provider
	Forward(ctx context.Context, body []byte) (*BufferedResponse, error)
}

// StreamReader yields the discrete events of a completion-style provider.
type StreamReader interface {
	// Read reads the next chunk from the stream.
	// Returns nil and io.EOF when the stream ends normally.
	Read(ctx context.Context) (*StreamChunk, error)

	// Close closes the stream and releases resources.
	Close() error
}

// UpstreamCall is an opened connection to a provider. Its lifetime is bounded
// by one client request; Close must be called on every exit path.
type UpstreamCall struct {
	// Provider is the name of the provider that opened the call
	Provider string

	// Strategy tags which of Events or Body is set
	Strategy DecodeStrategy

	// Events is set for StrategyEvents
	Events StreamReader

	// Body is set for StrategyLines
	Body io.ReadCloser

	cancel    context.CancelFunc
	closeOnce sync.Once
	closeErr  error
}

// NewEventCall wraps a StreamReader into an UpstreamCall.
func NewEventCall(provider string, events StreamReader, cancel context.CancelFunc) *UpstreamCall {
	return &UpstreamCall{
		Provider: provider,
		Strategy: StrategyEvents,
		Events:   events,
		cancel:   cancel,
	}
}

// NewLineCall wraps a raw response body into an UpstreamCall.
func NewLineCall(provider string, body io.ReadCloser, cancel context.CancelFunc) *UpstreamCall {
	return &UpstreamCall{
		Provider: provider,
		Strategy: StrategyLines,
		Body:     body,
		cancel:   cancel,
	}
}

// Close aborts the upstream request if it is still in flight and releases
// the underlying socket. Only the first call has an effect.
func (c *UpstreamCall) Close() error {
	c.closeOnce.Do(func() {
		// Cancel first so a blocked body read returns immediately.
		if c.cancel != nil {
			c.cancel()
		}
		switch c.Strategy {
		case StrategyEvents:
			if c.Events != nil {
				c.closeErr = c.Events.Close()
			}
		case StrategyLines:
			if c.Body != nil {
				c.closeErr = c.Body.Close()
			}
		}
	})
	return c.closeErr
}
