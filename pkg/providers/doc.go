// Package providers implements the upstream side of the relay: one adapter per
// external AI/voice provider, all sharing a single HTTP client base.
//
// # Overview
//
// The browser never talks to a provider directly. Each request arrives at the
// relay, is matched to an adapter by service name, and the adapter opens an
// upstream call with the server-held credential injected. Adapters come in two
// shapes:
//
//  1. StreamingProvider - opens an UpstreamCall whose body is decoded into
//     Fragments by the relay package
//  2. BufferedProvider - forwards the request and returns the complete payload
//
// # Upstream Calls
//
// An UpstreamCall carries a DecodeStrategy tag that tells the relay how to read
// it:
//
//   - StrategyEvents: the adapter already yields discrete StreamChunk values
//     through a StreamReader (completion-style providers)
//   - StrategyLines: the adapter hands over the raw response body and the relay
//     decodes newline-delimited pseudo-SSE itself (chat-bot style providers)
//
// The call owns the response body and the cancel func of its request context.
// Close releases both exactly once and is safe to call from every exit path.
//
// # Timeouts
//
// Only the connect/response-header phase of a call is bounded (ConnectTimeout,
// 320s by default). Once headers arrive, the body may stream for as long as the
// provider keeps it open; long completions are never truncated by the relay.
//
// # Errors
//
// Adapters return typed errors so the HTTP layer can pick a status without
// string matching:
//
//	ConfigError      missing credential          -> 500
//	ValidationError  bad client parameter        -> 400
//	TimeoutError     connect timeout             -> 504
//	ConnectError     network failure             -> 500
//	ProviderError    non-2xx upstream status     -> 500 (or passed through)
//	StreamError      failure after streaming     -> in-band SSE error
package providers
