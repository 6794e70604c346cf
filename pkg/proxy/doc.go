// Package proxy holds the HTTP plumbing shared by the relay handlers: body
// reading, error mapping and JSON responses.
//
// # Error Contract
//
// Errors that happen before a stream starts become a plain JSON response:
//
//	{"error": "Configurazione Chatbase mancante"}
//
// HandleError chooses the status from the error type (400 validation,
// 500 configuration or upstream failure, 504 connect timeout). Errors after
// a stream started are reported in-band by package relay.
//
// # Subpackages
//
//   - handlers: the service registry and the route handlers
//   - middleware: request IDs, logging, panic recovery
//   - types: JSON response bodies
package proxy
