package config

import (
	"os"
	"path/filepath"
	"testing"
)

type testOptions struct {
	Config string

	Port           string  `toml:"server.port" env:"SERVER_PORT"`
	RecordingsDir  string  `toml:"recording.dir" env:"RECORDINGS_DIR"`
	ResolveTimeout float64 `toml:"resolve.timeout" env:"RESOLVE_TIMEOUT"`
	MetricsEnabled bool    `toml:"metrics.enabled" env:"METRICS_ENABLED"`
	LoggingLevel   string  `toml:"logging.level" env:"LOGGING_LEVEL"`
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigFromTOML(t *testing.T) {
	path := writeConfig(t, `
[server]
port = ":9000"

[recording]
dir = "/data/recordings"

[resolve]
timeout = 3.5

[metrics]
enabled = false

[logging]
level = "debug"
`)

	opts := &testOptions{Config: path, Port: ":8090", MetricsEnabled: true}
	if err := LoadConfig(opts, nil); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if opts.Port != ":9000" {
		t.Errorf("Port = %q, want :9000", opts.Port)
	}
	if opts.RecordingsDir != "/data/recordings" {
		t.Errorf("RecordingsDir = %q", opts.RecordingsDir)
	}
	if opts.ResolveTimeout != 3.5 {
		t.Errorf("ResolveTimeout = %v, want 3.5", opts.ResolveTimeout)
	}
	if opts.MetricsEnabled {
		t.Error("MetricsEnabled not overridden by file")
	}
	if opts.LoggingLevel != "debug" {
		t.Errorf("LoggingLevel = %q, want debug", opts.LoggingLevel)
	}
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
[server]
port = ":9000"
`)
	t.Setenv("LSLVIEW_SERVER_PORT", ":7777")
	t.Setenv("LSLVIEW_RESOLVE_TIMEOUT", "1.25")

	opts := &testOptions{Config: path}
	if err := LoadConfig(opts, nil); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if opts.Port != ":7777" {
		t.Errorf("Port = %q, want env value :7777", opts.Port)
	}
	if opts.ResolveTimeout != 1.25 {
		t.Errorf("ResolveTimeout = %v, want 1.25", opts.ResolveTimeout)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	opts := &testOptions{Config: "/nonexistent/config.toml", Port: ":8090"}
	if err := LoadConfig(opts, nil); err != nil {
		t.Fatalf("LoadConfig on missing file: %v", err)
	}
	if opts.Port != ":8090" {
		t.Errorf("Port = %q, defaults should survive a missing file", opts.Port)
	}
}

func TestLoadConfigInvalidTOML(t *testing.T) {
	path := writeConfig(t, "this is not [valid toml")
	opts := &testOptions{Config: path}
	if err := LoadConfig(opts, nil); err == nil {
		t.Error("LoadConfig should fail on malformed TOML")
	}
}

func TestLoadLoggingConfig(t *testing.T) {
	path := writeConfig(t, `
[logging]
level = "warn"
format = "json"
relay = "debug"
record = "error"
`)

	cfg := LoadLoggingConfig(path)
	if cfg.Level != "warn" {
		t.Errorf("Level = %q, want warn", cfg.Level)
	}
	if cfg.Format != "json" {
		t.Errorf("Format = %q, want json", cfg.Format)
	}
	if cfg.Modules["relay"] != "debug" || cfg.Modules["record"] != "error" {
		t.Errorf("Modules = %v", cfg.Modules)
	}
}

func TestLoadLoggingConfigDefaults(t *testing.T) {
	cfg := LoadLoggingConfig("/nonexistent/config.toml")
	if cfg.Level != "info" || cfg.Format != "text" {
		t.Errorf("defaults = %q/%q, want info/text", cfg.Level, cfg.Format)
	}
}

func TestFlagName(t *testing.T) {
	tests := []struct {
		field string
		want  string
	}{
		{"Port", "port"},
		{"RecordingsDir", "recordings-dir"},
		{"LoggingLevel", "logging-level"},
		{"ResolveTimeout", "resolve-timeout"},
	}
	for _, tt := range tests {
		if got := flagName(tt.field); got != tt.want {
			t.Errorf("flagName(%q) = %q, want %q", tt.field, got, tt.want)
		}
	}
}
