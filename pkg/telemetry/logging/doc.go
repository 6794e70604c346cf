// Package logging builds the process logger: log/slog with secret redaction
// and request-scoped fields.
//
// # Overview
//
// New returns a *slog.Logger whose handler
//   - writes JSON or text at the configured level
//   - masks API keys, bearer tokens and the configured credential values in
//     messages and string attributes
//   - adds request_id and service from the context to every record logged
//     with a *Context method
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:         "info",
//	    Format:        "json",
//	    RedactSecrets: true,
//	    Secrets:       cfg.Providers.Secrets(),
//	})
//	if err != nil {
//	    return err
//	}
//	slog.SetDefault(logger)
//
//	ctx = logging.WithRequestID(ctx, "req-123")
//	slog.InfoContext(ctx, "stream completed", "fragments", 42)
//	// {"level":"INFO","msg":"stream completed","fragments":42,"request_id":"req-123"}
//
// # Redaction
//
//   - Configured secrets: the exact value → ***
//   - API keys: sk-abc123xyz → sk-***
//   - Bearer tokens: Bearer abc.def → Bearer ***
//   - Sensitive keys (api_key, token, secret, authorization, ...): value → abcd***
package logging
