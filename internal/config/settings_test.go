package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.APIAddress() != defaultAPIAddress {
		t.Fatalf("unexpected default address: %s", cfg.APIAddress())
	}
	if cfg.APIBaseURL() != "http://"+defaultAPIAddress {
		t.Fatalf("unexpected default base url: %s", cfg.APIBaseURL())
	}
	if got := cfg.Transports(); len(got) != 2 || got[0] != "websocket" || got[1] != "polling" {
		t.Fatalf("unexpected default transports: %v", got)
	}
	if cfg.PageSize() != defaultPageSize {
		t.Fatalf("unexpected default page size: %d", cfg.PageSize())
	}
	if cfg.LogLevel() != "info" {
		t.Fatalf("unexpected default log level: %s", cfg.LogLevel())
	}
}

func TestAPIAddressNormalization(t *testing.T) {
	cases := []struct {
		raw, addr, base string
	}{
		{"http://api.example.com/", "api.example.com", "http://api.example.com"},
		{"https://api.example.com", "api.example.com", "https://api.example.com"},
		{"  ", defaultAPIAddress, "http://" + defaultAPIAddress},
		{"localhost:9000", "localhost:9000", "http://localhost:9000"},
	}
	for _, tc := range cases {
		cfg := Config{API: APIConfig{Address: tc.raw}}
		if got := cfg.APIAddress(); got != tc.addr {
			t.Fatalf("address %q: expected %q, got %q", tc.raw, tc.addr, got)
		}
		if got := cfg.APIBaseURL(); got != tc.base {
			t.Fatalf("address %q: expected base %q, got %q", tc.raw, tc.base, got)
		}
	}
}

func TestTransportsDropUnknownNames(t *testing.T) {
	cfg := Config{Realtime: RealtimeConfig{Transports: []string{"carrier-pigeon", " Polling ", "WEBSOCKET"}}}
	got := cfg.Transports()
	if len(got) != 2 || got[0] != "polling" || got[1] != "websocket" {
		t.Fatalf("unexpected transports: %v", got)
	}

	cfg = Config{Realtime: RealtimeConfig{Transports: []string{"smoke-signals"}}}
	if got := cfg.Transports(); len(got) != 2 {
		t.Fatalf("all-unknown list must fall back to defaults, got %v", got)
	}
}

func TestLoadFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[api]
address = "https://chat.example.com"

[chat]
page_size = 10

[logging]
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := loadFromPath(path)
	if err != nil {
		t.Fatalf("loadFromPath error: %v", err)
	}
	if cfg.APIBaseURL() != "https://chat.example.com" {
		t.Fatalf("unexpected base url: %s", cfg.APIBaseURL())
	}
	if cfg.PageSize() != 10 {
		t.Fatalf("unexpected page size: %d", cfg.PageSize())
	}
	if cfg.LogLevel() != "debug" {
		t.Fatalf("unexpected log level: %s", cfg.LogLevel())
	}
	// Sections absent from the file keep their defaults.
	if got := cfg.Transports(); len(got) != 2 {
		t.Fatalf("unexpected transports: %v", got)
	}
}

func TestLoadFromMissingPathUsesDefaults(t *testing.T) {
	cfg, err := loadFromPath(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("missing config must not error: %v", err)
	}
	if cfg.APIAddress() != defaultAPIAddress {
		t.Fatalf("unexpected address: %s", cfg.APIAddress())
	}
}
