// Relay is the streaming backend of the conversation simulator.
//
// It keeps provider credentials on the server and exposes the browser-facing
// endpoints:
//   - POST /api/{service} relays OpenAI and Chatbase streams as SSE and
//     forwards ElevenLabs speech and OpenAI analysis calls
//   - GET /get-azure-key issues short-lived Azure speech tokens
//   - GET /get-openai-key hands out the analysis key
//
// Usage:
//
//	# Start with configuration from the environment and .env
//	relay serve
//
//	# Start with a YAML file, environment variables still win
//	relay serve --config relay.yaml
//
//	# Check the effective configuration
//	relay check-config
//
//	# Show version information
//	relay version
package main

func main() {
	Execute()
}
