package config

import (
	"time"

	"simulateur-hq/relay/pkg/providers"
)

// Config is the root configuration structure of the relay.
// It is loaded once at startup and passed by pointer; nothing in the request
// path reads configuration from the environment.
type Config struct {
	// Server contains HTTP server configuration including listen address,
	// timeouts and CORS.
	Server ServerConfig `yaml:"server"`

	// Providers contains the upstream endpoints and the server-held
	// credentials injected into upstream calls.
	Providers ProvidersConfig `yaml:"providers"`

	// Telemetry contains logging and metrics configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Format: "host:port" (e.g., ":3000", "127.0.0.1:8080").
	// Default: ":3000"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout bounds writing the response. Streams may last for minutes,
	// so zero (no timeout) is the default.
	// Default: 0
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for in-flight requests
	// during graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits the size of request headers.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// MaxBodyBytes limits the size of a request body.
	// Default: 10485760 (10MB)
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// CORS contains Cross-Origin Resource Sharing configuration.
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig contains CORS (Cross-Origin Resource Sharing) configuration.
type CORSConfig struct {
	// Enabled controls whether CORS is enabled.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// AllowedOrigins is a list of allowed origins for CORS requests.
	// Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AllowedMethods is a list of allowed HTTP methods for CORS requests.
	// Default: ["GET", "POST", "OPTIONS"]
	AllowedMethods []string `yaml:"allowed_methods"`

	// AllowedHeaders is a list of allowed HTTP headers for CORS requests.
	// Default: ["Accept", "Authorization", "Content-Type", "X-Request-ID"]
	AllowedHeaders []string `yaml:"allowed_headers"`

	// ExposedHeaders is a list of headers that are exposed to the client.
	// Default: ["X-Request-ID"]
	ExposedHeaders []string `yaml:"exposed_headers"`

	// MaxAge is the maximum age (in seconds) for preflight request cache.
	// Default: 3600 (1 hour)
	MaxAge int `yaml:"max_age"`

	// AllowCredentials controls whether credentials are allowed in CORS requests.
	// Default: false
	AllowCredentials bool `yaml:"allow_credentials"`
}

// ProvidersConfig contains the upstream provider configuration.
// Missing credentials are not a load error: the service that needs them
// answers 500 until they are configured.
type ProvidersConfig struct {
	// ConnectTimeout bounds the connect/response-header phase of every
	// upstream call. Streaming bodies are not bounded.
	// Default: 320s
	ConnectTimeout time.Duration `yaml:"connect_timeout"`

	// MaxIdleConns is the maximum number of idle upstream connections per provider.
	// Default: 100
	MaxIdleConns int `yaml:"max_idle_conns"`

	// MaxIdleConnsPerHost is the maximum number of idle connections per host.
	// Default: 10
	MaxIdleConnsPerHost int `yaml:"max_idle_conns_per_host"`

	// IdleConnTimeout is how long an idle upstream connection is kept.
	// Default: 90s
	IdleConnTimeout time.Duration `yaml:"idle_conn_timeout"`

	OpenAI     OpenAIConfig     `yaml:"openai"`
	Chatbase   ChatbaseConfig   `yaml:"chatbase"`
	ElevenLabs ElevenLabsConfig `yaml:"elevenlabs"`
	Azure      AzureConfig      `yaml:"azure"`
}

// OpenAIConfig configures both OpenAI services.
type OpenAIConfig struct {
	// BaseURL is the API root.
	// Default: "https://api.openai.com/v1"
	BaseURL string `yaml:"base_url"`

	// SimulateurKey authenticates completion streams.
	// Env: OPENAI_API_KEY_SIMULATEUR
	SimulateurKey string `yaml:"simulateur_api_key"`

	// AnalyseKey authenticates analysis calls and is handed to the browser
	// by GET /get-openai-key.
	// Env: OPENAI_API_KEY_ANALYSE
	AnalyseKey string `yaml:"analyse_api_key"`

	// Model is used when the browser does not choose one.
	Model string `yaml:"model"`
}

// ChatbaseConfig configures the chat-bot service.
type ChatbaseConfig struct {
	// BaseURL is the API root.
	// Default: "https://www.chatbase.co/api/v1"
	BaseURL string `yaml:"base_url"`

	// SecretKey is the bearer credential.
	// Env: CHATBASE_SECRET_KEY
	SecretKey string `yaml:"secret_key"`

	// AgentID identifies the chatbot.
	// Env: CHATBASE_AGENT_ID
	AgentID string `yaml:"agent_id"`
}

// ElevenLabsConfig configures speech synthesis.
type ElevenLabsConfig struct {
	// BaseURL is the API root.
	// Default: "https://api.elevenlabs.io/v1"
	BaseURL string `yaml:"base_url"`

	// APIKey is sent as xi-api-key.
	// Env: ELEVENLAB_API_KEY
	APIKey string `yaml:"api_key"`
}

// AzureConfig configures speech token issuance.
type AzureConfig struct {
	// BaseURL overrides the regional STS root. Empty derives it from Region.
	BaseURL string `yaml:"base_url"`

	// SpeechKey is the subscription key.
	// Env: AZURE_SPEECH_API_KEY
	SpeechKey string `yaml:"speech_key"`

	// Region is the Azure region (e.g., "westeurope").
	// Env: AZURE_REGION
	Region string `yaml:"region"`

	// RefreshSchedule is a cron expression renewing the cached token.
	// Empty disables background renewal.
	// Example: "*/8 * * * *"
	RefreshSchedule string `yaml:"refresh_schedule"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactSecrets masks API keys and bearer tokens in log output.
	// Default: true
	RedactSecrets bool `yaml:"redact_secrets"`

	// RedactPatterns contains custom redaction patterns.
	RedactPatterns []RedactPattern `yaml:"redact_patterns"`
}

// RedactPattern defines a custom redaction pattern.
type RedactPattern struct {
	// Name is a descriptive name for the pattern.
	Name string `yaml:"name"`

	// Pattern is the regular expression to match.
	Pattern string `yaml:"pattern"`

	// Replacement is the string to replace matches with.
	Replacement string `yaml:"replacement"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "simulateur"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "relay"
	Subsystem string `yaml:"subsystem"`

	// LatencyBuckets defines histogram buckets for connect and first-fragment
	// latency (seconds).
	// Default: [0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 320]
	LatencyBuckets []float64 `yaml:"latency_buckets"`
}

// Service names as routed under /api/{service}.
const (
	ServiceOpenAISimulateur   = "openaiSimulateur"
	ServiceOpenAIAnalyse      = "openaiAnalyse"
	ServiceChatbaseSimulateur = "chatbaseSimulateur"
	ServiceElevenLabs         = "elevenlabs"
	ServiceAzureToken         = "azure"
)

// base returns the pool settings shared by every provider.
func (c *ProvidersConfig) base(name, baseURL string) providers.ProviderConfig {
	return providers.ProviderConfig{
		Name:                name,
		BaseURL:             baseURL,
		ConnectTimeout:      c.ConnectTimeout,
		MaxIdleConns:        c.MaxIdleConns,
		MaxIdleConnsPerHost: c.MaxIdleConnsPerHost,
		IdleConnTimeout:     c.IdleConnTimeout,
	}
}

// OpenAISimulateur returns the provider configuration of the completion stream.
func (c *ProvidersConfig) OpenAISimulateur() providers.ProviderConfig {
	pc := c.base(ServiceOpenAISimulateur, c.OpenAI.BaseURL)
	pc.APIKey = c.OpenAI.SimulateurKey
	pc.Model = c.OpenAI.Model
	return pc
}

// OpenAIAnalyse returns the provider configuration of the analysis call.
func (c *ProvidersConfig) OpenAIAnalyse() providers.ProviderConfig {
	pc := c.base(ServiceOpenAIAnalyse, c.OpenAI.BaseURL)
	pc.APIKey = c.OpenAI.AnalyseKey
	return pc
}

// ChatbaseSimulateur returns the provider configuration of the chat-bot stream.
func (c *ProvidersConfig) ChatbaseSimulateur() providers.ProviderConfig {
	pc := c.base(ServiceChatbaseSimulateur, c.Chatbase.BaseURL)
	pc.APIKey = c.Chatbase.SecretKey
	pc.AccountID = c.Chatbase.AgentID
	return pc
}

// ElevenLabsSpeech returns the provider configuration of speech synthesis.
func (c *ProvidersConfig) ElevenLabsSpeech() providers.ProviderConfig {
	pc := c.base(ServiceElevenLabs, c.ElevenLabs.BaseURL)
	pc.APIKey = c.ElevenLabs.APIKey
	return pc
}

// AzureToken returns the provider configuration of speech token issuance.
func (c *ProvidersConfig) AzureToken() providers.ProviderConfig {
	pc := c.base(ServiceAzureToken, c.Azure.BaseURL)
	pc.APIKey = c.Azure.SpeechKey
	pc.AccountID = c.Azure.Region
	return pc
}

// Unconfigured returns the services whose credentials are missing, in a
// stable order. Those services fail their requests with 500.
func (c *ProvidersConfig) Unconfigured() []string {
	var missing []string
	if c.OpenAI.SimulateurKey == "" {
		missing = append(missing, ServiceOpenAISimulateur)
	}
	if c.OpenAI.AnalyseKey == "" {
		missing = append(missing, ServiceOpenAIAnalyse)
	}
	if c.Chatbase.SecretKey == "" || c.Chatbase.AgentID == "" {
		missing = append(missing, ServiceChatbaseSimulateur)
	}
	if c.ElevenLabs.APIKey == "" {
		missing = append(missing, ServiceElevenLabs)
	}
	if c.Azure.SpeechKey == "" || c.Azure.Region == "" {
		missing = append(missing, ServiceAzureToken)
	}
	return missing
}

// Secrets returns every configured credential value, for log redaction.
func (c *ProvidersConfig) Secrets() []string {
	var secrets []string
	for _, s := range []string{
		c.OpenAI.SimulateurKey,
		c.OpenAI.AnalyseKey,
		c.Chatbase.SecretKey,
		c.ElevenLabs.APIKey,
		c.Azure.SpeechKey,
	} {
		if s != "" {
			secrets = append(secrets, s)
		}
	}
	return secrets
}
