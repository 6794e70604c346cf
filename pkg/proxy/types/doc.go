// Package types defines the JSON bodies exchanged with the browser outside
// of SSE streams.
//
// Every error leaving the relay as a plain HTTP response has the same flat
// shape:
//
//	{"error": "Lingua non supportata"}
//
// The HTTP status travels next to the body in ErrorResponse.StatusCode and is
// never serialized.
package types
