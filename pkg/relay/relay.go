package relay

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"simulateur-hq/relay/pkg/providers"
	"simulateur-hq/relay/pkg/proxy"
	"simulateur-hq/relay/pkg/telemetry/metrics"
)

// Relay drives one client connection per call. It holds no per-request
// state and is safe for concurrent use.
type Relay struct {
	metrics *metrics.Collector
}

// New creates a relay. collector may be nil.
func New(collector *metrics.Collector) *Relay {
	return &Relay{metrics: collector}
}

// Stream relays a streaming provider to the client as SSE.
//
// The upstream call is opened before anything is written, so every failure
// up to the upstream response headers is answered with a JSON error and a
// real HTTP status. Once the stream is open, exactly one terminal event is
// written, and it is the last write. When the client disconnects nothing
// more is written and the upstream call is aborted.
func (rl *Relay) Stream(w http.ResponseWriter, r *http.Request, service string, provider providers.StreamingProvider, body []byte) {
	ctx := r.Context()
	start := time.Now()

	call, err := provider.Open(ctx, body)
	if err != nil {
		rl.reject(w, r, service, err)
		return
	}
	defer func() {
		if err := call.Close(); err != nil {
			slog.DebugContext(ctx, "failed to close upstream call", "error", err)
		}
	}()
	rl.metrics.RecordConnect(service, time.Since(start))

	source, err := NewDecoder(call)
	if err != nil {
		rl.reject(w, r, service, err)
		return
	}

	enc := NewEncoder(w)
	if err := enc.Open(); err != nil {
		slog.WarnContext(ctx, "client disconnected before stream opened", "error", err)
		rl.metrics.StreamRejected(service)
		return
	}
	rl.metrics.StreamStarted(service)

	outcome, fragments := rl.pump(ctx, service, source, enc, start)
	rl.metrics.StreamFinished(service, outcome, fragments)

	slog.InfoContext(ctx, "stream finished",
		"provider", call.Provider,
		"outcome", outcome,
		"fragments", fragments,
		"total_latency_ms", time.Since(start).Milliseconds(),
	)
}

// pump copies fragments from source to enc until a terminal is written or
// the client goes away.
func (rl *Relay) pump(ctx context.Context, service string, source FragmentSource, enc *Encoder, start time.Time) (string, int) {
	fragments := 0
	for {
		f, err := source.Next(ctx)
		if errors.Is(err, io.EOF) {
			if err := enc.Done(); err != nil {
				return rl.disconnected(ctx, fragments, err)
			}
			return metrics.OutcomeDone, fragments
		}
		if err != nil {
			if ctx.Err() != nil {
				return rl.disconnected(ctx, fragments, err)
			}

			slog.ErrorContext(ctx, "upstream stream failed",
				"fragments", fragments,
				"error", err,
			)
			rl.metrics.RecordProviderError(service, errorType(err))

			if err := enc.Fail(providers.Diagnostic(err)); err != nil {
				return rl.disconnected(ctx, fragments, err)
			}
			return metrics.OutcomeFailed, fragments
		}

		if err := enc.WriteFragment(f); err != nil {
			return rl.disconnected(ctx, fragments, err)
		}
		fragments++

		if fragments == 1 {
			rl.metrics.RecordFirstFragment(service, time.Since(start))
		}
		if f.Kind == providers.FragmentUsage && f.Usage != nil {
			rl.metrics.RecordTokens(service, f.Usage.TotalTokens)
		}
	}
}

func (rl *Relay) disconnected(ctx context.Context, fragments int, err error) (string, int) {
	slog.WarnContext(ctx, "client disconnected during streaming",
		"fragments", fragments,
		"error", err,
	)
	return metrics.OutcomeDisconnected, fragments
}

// reject answers a stream that could not be opened.
func (rl *Relay) reject(w http.ResponseWriter, r *http.Request, service string, err error) {
	ctx := r.Context()
	rl.metrics.StreamRejected(service)

	if ctx.Err() != nil {
		slog.WarnContext(ctx, "client disconnected before upstream answered", "error", err)
		return
	}

	logRejection(ctx, err)
	if t := errorType(err); t != "" {
		rl.metrics.RecordProviderError(service, t)
	}
	proxy.WriteError(w, r, err)
}

// Forward relays a buffered provider: the complete upstream payload is
// written with the status and content type the adapter chose.
func (rl *Relay) Forward(w http.ResponseWriter, r *http.Request, service string, provider providers.BufferedProvider, body []byte) {
	ctx := r.Context()
	start := time.Now()

	resp, err := provider.Forward(ctx, body)
	if err != nil {
		if ctx.Err() != nil {
			slog.WarnContext(ctx, "client disconnected before upstream answered", "error", err)
			return
		}

		logRejection(ctx, err)
		if t := errorType(err); t != "" {
			rl.metrics.RecordProviderError(service, t)
		}
		errResp := proxy.HandleError(err)
		rl.metrics.RecordForward(service, errResp.StatusCode)
		if err := proxy.WriteErrorResponse(w, errResp); err != nil {
			slog.ErrorContext(ctx, "failed to write error response", "error", err)
		}
		return
	}

	rl.metrics.RecordForward(service, resp.StatusCode)
	if err := proxy.WriteRaw(w, resp.StatusCode, resp.ContentType, resp.Body); err != nil {
		slog.WarnContext(ctx, "failed to write response", "error", err)
		return
	}

	slog.InfoContext(ctx, "forward finished",
		"status", resp.StatusCode,
		"bytes", len(resp.Body),
		"total_latency_ms", time.Since(start).Milliseconds(),
	)
}

// logRejection logs a pre-stream failure. Client mistakes are not errors.
func logRejection(ctx context.Context, err error) {
	var validationErr *providers.ValidationError
	var reqErr *proxy.RequestError
	if errors.As(err, &validationErr) || errors.As(err, &reqErr) {
		slog.InfoContext(ctx, "request rejected", "error", err)
		return
	}
	slog.ErrorContext(ctx, "provider request failed",
		"error", err,
		"diagnostic", providers.Diagnostic(err),
	)
}

// errorType classifies upstream failures for metrics. It returns "" for
// errors that did not involve the upstream.
func errorType(err error) string {
	var (
		timeoutErr  *providers.TimeoutError
		connectErr  *providers.ConnectError
		providerErr *providers.ProviderError
		parseErr    *providers.ParseError
		streamErr   *providers.StreamError
	)
	switch {
	case errors.As(err, &timeoutErr):
		return "timeout"
	case errors.As(err, &connectErr):
		return "network"
	case errors.As(err, &providerErr):
		return "status"
	case errors.As(err, &parseErr):
		return "parse"
	case errors.As(err, &streamErr):
		return "stream"
	default:
		return ""
	}
}
