// Package config provides configuration management for the relay.
//
// This package handles loading, validating, and managing configuration from
// an optional YAML file, a .env file and environment variable overrides.
//
// # Configuration Loading
//
//	if err := config.LoadDotEnv(); err != nil {
//	    return err
//	}
//	cfg, err := config.LoadConfigWithEnvOverrides(path) // path may be empty
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention RELAY_SECTION_FIELD,
// for example RELAY_SERVER_LISTEN_ADDRESS or RELAY_TELEMETRY_LOGGING_LEVEL.
// The names used by the previous deployment are also honored and take
// precedence over their RELAY_ equivalent:
//
//   - PORT                       -> server.listen_address (":" + PORT)
//   - OPENAI_API_KEY_SIMULATEUR  -> providers.openai.simulateur_api_key
//   - OPENAI_API_KEY_ANALYSE     -> providers.openai.analyse_api_key
//   - CHATBASE_SECRET_KEY        -> providers.chatbase.secret_key
//   - CHATBASE_AGENT_ID          -> providers.chatbase.agent_id
//   - ELEVENLAB_API_KEY          -> providers.elevenlabs.api_key
//   - AZURE_SPEECH_API_KEY       -> providers.azure.speech_key
//   - AZURE_REGION               -> providers.azure.region
//
// # Configuration Precedence
//
//  1. Default values (defined in defaults.go)
//  2. Values from the YAML file
//  3. Variables from .env (never overwriting the real environment)
//  4. Environment variable overrides
//  5. Validation (fails fast if invalid)
//
// # Credentials
//
// A missing credential is not a configuration error. The relay starts, and
// the service that needs the credential answers 500 until it is set.
// ProvidersConfig.Unconfigured lists such services for startup warnings and
// the check-config command.
//
// # Example Configuration
//
//	server:
//	  listen_address: ":3000"
//	  cors:
//	    allowed_origins: ["https://simulateur.example.com"]
//
//	providers:
//	  connect_timeout: "320s"
//	  azure:
//	    region: "westeurope"
//	    refresh_schedule: "*/8 * * * *"
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "json"
//
// The resulting Config is immutable after loading and is shared read-only by
// all request handlers.
package config
