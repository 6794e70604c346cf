// Package handlers implements the relay's HTTP routes.
//
// # Routes
//
//	POST /api/{service}   APIHandler, dispatched through the Registry
//	GET  /get-azure-key   AzureKeyHandler, {"token","region"}
//	GET  /get-openai-key  OpenAIKeyHandler, {"apiKey"}
//	GET  /health          HealthHandler
//	GET  /ready           ReadyHandler
//	GET  /health/providers ProviderHealthHandler
//
// # Registry
//
// Each service identifier maps to one provider adapter and a Kind. Stream
// services go through relay.Relay.Stream, buffered services through
// relay.Relay.Forward:
//
//	registry := handlers.NewRegistry()
//	registry.RegisterStream("openaiSimulateur", openai.NewProvider(cfg.Providers.OpenAISimulateur()))
//	registry.RegisterBuffered("elevenlabs", elevenlabs.NewProvider(cfg.Providers.ElevenLabsSpeech()))
//
// A request for an identifier that is not registered gets
// 400 {"error":"invalid service"} and no provider is contacted.
package handlers
