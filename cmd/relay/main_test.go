package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"simulateur-hq/relay/pkg/cli"
	"simulateur-hq/relay/pkg/config"
	"simulateur-hq/relay/pkg/proxy/handlers"
)

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		cfgFile = ""
		envFile = ".env"
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func missingEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestVersionCommand(t *testing.T) {
	orig := Version
	Version = "1.2.3-test"
	defer func() { Version = orig }()

	t.Run("text", func(t *testing.T) {
		out, err := execute(t, "version", "-o", "text")
		if err != nil {
			t.Fatalf("version: %v", err)
		}
		if !strings.HasPrefix(out, "Relay 1.2.3-test\n") {
			t.Errorf("output = %q", out)
		}
		if !strings.Contains(out, runtime.GOOS+"/"+runtime.GOARCH) {
			t.Errorf("platform missing from %q", out)
		}
	})

	t.Run("json", func(t *testing.T) {
		out, err := execute(t, "version", "-o", "json")
		if err != nil {
			t.Fatalf("version: %v", err)
		}
		var info versionInfo
		if err := json.Unmarshal([]byte(out), &info); err != nil {
			t.Fatalf("invalid JSON %q: %v", out, err)
		}
		if info.Version != "1.2.3-test" || info.GoVersion != runtime.Version() {
			t.Errorf("info = %+v", info)
		}
	})

	t.Run("bad format", func(t *testing.T) {
		if _, err := execute(t, "version", "-o", "yaml"); err == nil {
			t.Error("expected error for unsupported format")
		}
	})
}

func TestCheckConfigCommand(t *testing.T) {
	t.Setenv("PORT", "4123")
	t.Setenv("OPENAI_API_KEY_SIMULATEUR", "sk-simulateur-secret")
	t.Setenv("ELEVENLAB_API_KEY", "eleven-secret")

	out, err := execute(t, "check-config", "--env-file", missingEnvFile(t), "-o", "json")
	if err != nil {
		t.Fatalf("check-config: %v", err)
	}
	if strings.Contains(out, "sk-simulateur-secret") || strings.Contains(out, "eleven-secret") {
		t.Fatalf("credentials leaked into report: %s", out)
	}

	var report configReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if report.ListenAddress != ":4123" {
		t.Errorf("ListenAddress = %q, want :4123", report.ListenAddress)
	}
	wantConfigured := []string{config.ServiceOpenAISimulateur, config.ServiceElevenLabs}
	if strings.Join(report.Configured, ",") != strings.Join(wantConfigured, ",") {
		t.Errorf("Configured = %v, want %v", report.Configured, wantConfigured)
	}
	if len(report.Unconfigured) != 3 {
		t.Errorf("Unconfigured = %v", report.Unconfigured)
	}
}

func TestCheckConfigCommand_InvalidFile(t *testing.T) {
	_, err := execute(t, "check-config", "--env-file", missingEnvFile(t), "-o", "text",
		"--config", filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for a missing config file")
	}
	if cli.ExitCode(err) != cli.ExitConfig {
		t.Errorf("ExitCode = %d, want %d", cli.ExitCode(err), cli.ExitConfig)
	}
}

func TestBuildRegistry(t *testing.T) {
	registry, err := buildRegistry(config.NewDefault())
	if err != nil {
		t.Fatalf("buildRegistry: %v", err)
	}
	defer registry.Close()

	want := map[string]handlers.Kind{
		config.ServiceOpenAISimulateur:   handlers.KindStream,
		config.ServiceChatbaseSimulateur: handlers.KindStream,
		config.ServiceElevenLabs:         handlers.KindBuffered,
		config.ServiceOpenAIAnalyse:      handlers.KindBuffered,
	}
	if len(registry.Names()) != len(want) {
		t.Fatalf("Names() = %v", registry.Names())
	}
	for name, kind := range want {
		service, ok := registry.Lookup(name)
		if !ok {
			t.Errorf("service %s not registered", name)
			continue
		}
		if service.Kind != kind {
			t.Errorf("%s kind = %s, want %s", name, service.Kind, kind)
		}
	}
}
