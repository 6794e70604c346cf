package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestConfigError(t *testing.T) {
	cause := errors.New("missing required field")

	tests := []struct {
		name string
		err  *ConfigError
		want string
	}{
		{"with path", NewConfigError("relay.yaml", cause), "config error in relay.yaml: missing required field"},
		{"without path", NewConfigError("", cause), "config error: missing required field"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.want {
				t.Errorf("Error() = %q, want %q", tt.err.Error(), tt.want)
			}
			if !errors.Is(tt.err, cause) {
				t.Error("ConfigError should unwrap to its cause")
			}
		})
	}
}

func TestCommandError(t *testing.T) {
	underlyingErr := errors.New("underlying error")
	err := NewCommandError("serve", underlyingErr)

	expected := "command serve failed: underlying error"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
	if !errors.Is(err, underlyingErr) {
		t.Error("CommandError should unwrap to the underlying error")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"plain", errors.New("boom"), ExitError},
		{"config", NewConfigError("x", errors.New("bad")), ExitConfig},
		{"wrapped config", fmt.Errorf("serve: %w", NewConfigError("x", errors.New("bad"))), ExitConfig},
		{"command", NewCommandError("serve", errors.New("listen")), ExitError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"json", FormatJSON, false},
		{"csv", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseOutputFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseOutputFormat(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseOutputFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

type report struct {
	Name string `json:"name"`
}

func (r report) String() string { return "name: " + r.Name + "\n" }

func TestFormatters(t *testing.T) {
	var buf bytes.Buffer

	if err := NewFormatter(FormatText).FormatTo(&buf, report{Name: "relay"}); err != nil {
		t.Fatalf("text: %v", err)
	}
	if buf.String() != "name: relay\n" {
		t.Errorf("text = %q", buf.String())
	}

	buf.Reset()
	if err := NewFormatter(FormatJSON).FormatTo(&buf, report{Name: "relay"}); err != nil {
		t.Fatalf("json: %v", err)
	}
	if buf.String() != "{\n  \"name\": \"relay\"\n}\n" {
		t.Errorf("json = %q", buf.String())
	}

	buf.Reset()
	_ = NewFormatter(FormatText).FormatTo(&buf, 42)
	if buf.String() != "42\n" {
		t.Errorf("plain text = %q", buf.String())
	}
}

func TestShutdownContext(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	ctx, stop := ShutdownContext(parent)
	defer stop()

	select {
	case <-ctx.Done():
		t.Fatal("context canceled before any signal")
	default:
	}

	cancel()
	<-ctx.Done()
}
