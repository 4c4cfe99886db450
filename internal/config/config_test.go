package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	for _, k := range []string{"PODTAIL_SERVER_URL", "PODTAIL_API_TOKEN", "PODTAIL_TRANSPORT", "PODTAIL_DIRECTORY_FILE", "PODTAIL_LOG_LEVEL"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ServerURL != DefaultServerURL || cfg.Transport != TransportSSE {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.FollowThreshold != 1 || cfg.RetryInitial != time.Second || cfg.RetryMax != 30*time.Second {
		t.Errorf("unexpected tuning defaults: %+v", cfg)
	}
	if cfg.IsAuthenticated() {
		t.Error("expected no auth by default")
	}
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	doc := `server_url = "https://logs.example.com/"
transport = "websocket"
follow_threshold = 4
max_lines = 5000
retry_limit = 3
`
	if err := os.WriteFile(path, []byte(doc), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PODTAIL_SERVER_URL", "")
	t.Setenv("PODTAIL_TRANSPORT", "")
	t.Setenv("PODTAIL_DIRECTORY_FILE", "")
	t.Setenv("PODTAIL_LOG_LEVEL", "debug")
	t.Setenv("PODTAIL_API_TOKEN", "secret")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Transport != TransportWebSocket || cfg.FollowThreshold != 4 || cfg.MaxLines != 5000 || cfg.RetryLimit != 3 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	if cfg.AuthMethod != AuthMethodAPIToken || !cfg.IsAuthenticated() {
		t.Errorf("token should infer apitoken auth: %+v", cfg)
	}

	if got := cfg.ApplicationsURL(); got != "https://logs.example.com/api/applications" {
		t.Errorf("ApplicationsURL = %q", got)
	}
	key := `{"name":"api"}`
	if got := cfg.StreamURL(key); got != "https://logs.example.com/api/logs/stream?application=%7B%22name%22%3A%22api%22%7D" {
		t.Errorf("StreamURL = %q", got)
	}
	if got := cfg.WebSocketURL(key); !strings.HasPrefix(got, "wss://logs.example.com/api/logs/stream?") {
		t.Errorf("WebSocketURL = %q", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errSub string
	}{
		{"defaults ok", func(*Config) {}, ""},
		{"bad transport", func(c *Config) { c.Transport = "grpc" }, "unknown transport"},
		{"bad scheme", func(c *Config) { c.ServerURL = "ftp://x" }, "http or https"},
		{"no host", func(c *Config) { c.ServerURL = "http://" }, "no host"},
		{"token missing", func(c *Config) { c.AuthMethod = AuthMethodAPIToken }, "requires api_token"},
		{"negative threshold", func(c *Config) { c.FollowThreshold = -1 }, "follow_threshold"},
		{"negative max lines", func(c *Config) { c.MaxLines = -1 }, "max_lines"},
		{"negative retry", func(c *Config) { c.RetryLimit = -2 }, "retry_limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errSub == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errSub) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tt.errSub)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("PODTAIL_API_TOKEN", "")
	t.Setenv("PODTAIL_SERVER_URL", "")
	t.Setenv("PODTAIL_TRANSPORT", "")
	t.Setenv("PODTAIL_DIRECTORY_FILE", "")
	t.Setenv("PODTAIL_LOG_LEVEL", "")

	cfg := Default()
	cfg.ServerURL = "http://logs:9000"
	cfg.RetryMax = 10 * time.Second
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.ServerURL != "http://logs:9000" || got.RetryMax != 10*time.Second {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestWriteDefaultDoesNotOverwrite(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("PODTAIL_SERVER_URL", "")

	path, err := WriteDefault()
	if err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}
	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if got.ServerURL != DefaultServerURL || got.FollowThreshold != DefaultFollowThreshold {
		t.Errorf("unexpected defaults: %+v", got)
	}

	if _, err := WriteDefault(); !errors.Is(err, ErrConfigExists) {
		t.Errorf("second WriteDefault err = %v, want ErrConfigExists", err)
	}
}
