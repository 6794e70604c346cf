package config

import (
	"reflect"
	"testing"
	"time"
)

func TestNewDefault(t *testing.T) {
	cfg := NewDefault()

	if cfg.Server.ListenAddress != DefaultListenAddress {
		t.Errorf("expected listen address %q, got %q", DefaultListenAddress, cfg.Server.ListenAddress)
	}
	if cfg.Server.WriteTimeout != 0 {
		t.Errorf("expected no write timeout, got %v", cfg.Server.WriteTimeout)
	}
	if cfg.Providers.ConnectTimeout != 320*time.Second {
		t.Errorf("expected connect timeout 320s, got %v", cfg.Providers.ConnectTimeout)
	}
	if !cfg.Server.CORS.Enabled || !cfg.Telemetry.Metrics.Enabled || !cfg.Telemetry.Logging.RedactSecrets {
		t.Error("expected boolean switches to default to true")
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
}

func TestApplyDefaults_Idempotent(t *testing.T) {
	cfg := NewDefault()
	before := *cfg
	ApplyDefaults(cfg)

	if !reflect.DeepEqual(before, *cfg) {
		t.Error("ApplyDefaults changed an already defaulted config")
	}
}

func TestProvidersConfig_ProviderConfigs(t *testing.T) {
	cfg := NewDefault()
	cfg.Providers.OpenAI.SimulateurKey = "sk-sim"
	cfg.Providers.OpenAI.AnalyseKey = "sk-ana"
	cfg.Providers.OpenAI.Model = "gpt-4o-mini"
	cfg.Providers.Chatbase.SecretKey = "cb-secret"
	cfg.Providers.Chatbase.AgentID = "agent-1"
	cfg.Providers.ElevenLabs.APIKey = "xi-key"
	cfg.Providers.Azure.SpeechKey = "az-key"
	cfg.Providers.Azure.Region = "westeurope"

	sim := cfg.Providers.OpenAISimulateur()
	if sim.Name != ServiceOpenAISimulateur || sim.APIKey != "sk-sim" || sim.Model != "gpt-4o-mini" {
		t.Errorf("unexpected simulateur config %+v", sim)
	}
	if sim.ConnectTimeout != cfg.Providers.ConnectTimeout {
		t.Errorf("expected shared connect timeout, got %v", sim.ConnectTimeout)
	}

	if ana := cfg.Providers.OpenAIAnalyse(); ana.APIKey != "sk-ana" {
		t.Errorf("unexpected analyse key %q", ana.APIKey)
	}
	if cb := cfg.Providers.ChatbaseSimulateur(); cb.APIKey != "cb-secret" || cb.AccountID != "agent-1" {
		t.Errorf("unexpected chatbase config %+v", cb)
	}
	if el := cfg.Providers.ElevenLabsSpeech(); el.APIKey != "xi-key" {
		t.Errorf("unexpected elevenlabs key %q", el.APIKey)
	}
	if az := cfg.Providers.AzureToken(); az.APIKey != "az-key" || az.AccountID != "westeurope" {
		t.Errorf("unexpected azure config %+v", az)
	}

	if missing := cfg.Providers.Unconfigured(); len(missing) != 0 {
		t.Errorf("expected every service configured, missing %v", missing)
	}
	if secrets := cfg.Providers.Secrets(); len(secrets) != 5 {
		t.Errorf("expected 5 secrets, got %d", len(secrets))
	}
}

func TestProvidersConfig_Unconfigured(t *testing.T) {
	cfg := NewDefault()
	cfg.Providers.Chatbase.SecretKey = "cb-secret"
	cfg.Providers.Azure.Region = "westeurope"

	want := []string{
		ServiceOpenAISimulateur,
		ServiceOpenAIAnalyse,
		ServiceChatbaseSimulateur,
		ServiceElevenLabs,
		ServiceAzureToken,
	}
	if got := cfg.Providers.Unconfigured(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}
