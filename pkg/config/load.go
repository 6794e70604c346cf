package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any errors.
// The configuration is not modified by environment variables; use LoadConfigWithEnvOverrides
// for that functionality.
func LoadConfig(path string) (*Config, error) {
	cfg, err := loadFile(path)
	if err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration and applies environment
// variable overrides. An empty path skips the file and starts from defaults,
// which is how the relay runs when configured from the environment only.
//
// The loading sequence is:
// 1. Load YAML from file (optional) on top of defaults
// 2. Apply environment variable overrides
// 3. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg := NewDefault()
	if path != "" {
		var err error
		cfg, err = loadFile(path)
		if err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)
	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// LoadDotEnv loads KEY=value pairs from the given files into the process
// environment. Variables already set are not overwritten and missing files
// are skipped. With no arguments it reads ".env".
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load env file %q: %w", path, err)
		}
	}
	return nil
}

func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg := NewDefault()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(cfg)
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// RELAY_SECTION_FIELD names are read first; the legacy names used by the
// previous deployment (PORT, OPENAI_API_KEY_SIMULATEUR, ...) win when both are set.
func applyEnvOverrides(cfg *Config) {
	// Server overrides
	if val := os.Getenv("RELAY_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv("PORT"); val != "" {
		cfg.Server.ListenAddress = ":" + val
	}
	if val := os.Getenv("RELAY_SERVER_READ_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if val := os.Getenv("RELAY_SERVER_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}
	if val := os.Getenv("RELAY_SERVER_SHUTDOWN_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ShutdownTimeout = d
		}
	}
	if val := os.Getenv("RELAY_SERVER_MAX_BODY_BYTES"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Server.MaxBodyBytes = i
		}
	}
	if val := os.Getenv("RELAY_SERVER_CORS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Server.CORS.Enabled = b
		}
	}

	// Provider overrides
	if val := os.Getenv("RELAY_PROVIDERS_CONNECT_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Providers.ConnectTimeout = d
		}
	}
	setString(&cfg.Providers.OpenAI.BaseURL, "RELAY_PROVIDERS_OPENAI_BASE_URL")
	setString(&cfg.Providers.OpenAI.Model, "RELAY_PROVIDERS_OPENAI_MODEL")
	setString(&cfg.Providers.OpenAI.SimulateurKey, "RELAY_PROVIDERS_OPENAI_SIMULATEUR_API_KEY", "OPENAI_API_KEY_SIMULATEUR")
	setString(&cfg.Providers.OpenAI.AnalyseKey, "RELAY_PROVIDERS_OPENAI_ANALYSE_API_KEY", "OPENAI_API_KEY_ANALYSE")
	setString(&cfg.Providers.Chatbase.BaseURL, "RELAY_PROVIDERS_CHATBASE_BASE_URL")
	setString(&cfg.Providers.Chatbase.SecretKey, "RELAY_PROVIDERS_CHATBASE_SECRET_KEY", "CHATBASE_SECRET_KEY")
	setString(&cfg.Providers.Chatbase.AgentID, "RELAY_PROVIDERS_CHATBASE_AGENT_ID", "CHATBASE_AGENT_ID")
	setString(&cfg.Providers.ElevenLabs.BaseURL, "RELAY_PROVIDERS_ELEVENLABS_BASE_URL")
	setString(&cfg.Providers.ElevenLabs.APIKey, "RELAY_PROVIDERS_ELEVENLABS_API_KEY", "ELEVENLAB_API_KEY")
	setString(&cfg.Providers.Azure.BaseURL, "RELAY_PROVIDERS_AZURE_BASE_URL")
	setString(&cfg.Providers.Azure.SpeechKey, "RELAY_PROVIDERS_AZURE_SPEECH_KEY", "AZURE_SPEECH_API_KEY")
	setString(&cfg.Providers.Azure.Region, "RELAY_PROVIDERS_AZURE_REGION", "AZURE_REGION")
	setString(&cfg.Providers.Azure.RefreshSchedule, "RELAY_PROVIDERS_AZURE_REFRESH_SCHEDULE")

	// Telemetry overrides
	setString(&cfg.Telemetry.Logging.Level, "RELAY_TELEMETRY_LOGGING_LEVEL")
	setString(&cfg.Telemetry.Logging.Format, "RELAY_TELEMETRY_LOGGING_FORMAT")
	if val := os.Getenv("RELAY_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	setString(&cfg.Telemetry.Metrics.Path, "RELAY_TELEMETRY_METRICS_PATH")
}

// setString assigns the value of the last non-empty variable among names.
func setString(dst *string, names ...string) {
	for _, name := range names {
		if val := os.Getenv(name); val != "" {
			*dst = val
		}
	}
}
