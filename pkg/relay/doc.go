// Package relay turns an upstream provider call into the single SSE stream
// shape the browser reads.
//
// A stream is built from three parts:
//
//   - a FragmentSource decoding the upstream call (EventDecoder for
//     completion events, LineDecoder for newline-framed bytes)
//   - an Encoder writing each fragment as one "data: ...\n\n" event
//   - Relay.Stream, which opens the upstream, pumps fragments in order and
//     writes exactly one terminal event
//
// The client always sees the stream end with "data: [DONE]". A failure after
// the stream started is reported in-band first:
//
//	data: {"choices":[{"delta":{"content":"Hel"}}]}
//
//	data: {"error":"unexpected EOF"}
//
//	data: [DONE]
//
// Buffered providers go through Relay.Forward and share the JSON error
// contract of package proxy.
package relay
