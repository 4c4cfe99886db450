package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// AuthMethod represents the type of authentication being used.
type AuthMethod string

const (
	AuthMethodAPIToken AuthMethod = "apitoken"
	AuthMethodNone     AuthMethod = ""
)

// TransportKind selects how log streams are received.
type TransportKind string

const (
	TransportSSE       TransportKind = "sse"
	TransportWebSocket TransportKind = "websocket"
)

const (
	DefaultServerURL        = "http://localhost:8080"
	DefaultApplicationsPath = "/api/applications"
	DefaultStreamPath       = "/api/logs/stream"
	DefaultStreamParam      = "application"
	DefaultFollowThreshold  = 1
	DefaultRetryInitial     = time.Second
	DefaultRetryMax         = 30 * time.Second
	DefaultLogLevel         = "info"
)

// Config holds all persistent configuration for podtail.
type Config struct {
	// Log server
	ServerURL        string        `toml:"server_url"`
	ApplicationsPath string        `toml:"applications_path,omitempty"`
	StreamPath       string        `toml:"stream_path,omitempty"`
	StreamParam      string        `toml:"stream_param,omitempty"`
	Transport        TransportKind `toml:"transport,omitempty"`

	// Auth settings
	AuthMethod AuthMethod `toml:"auth_method,omitempty"`
	APIToken   string     `toml:"api_token,omitempty"`

	// Optional local application list (JSONC) used instead of the HTTP directory
	DirectoryFile string `toml:"directory_file,omitempty"`

	// Terminal behaviour
	FollowThreshold int `toml:"follow_threshold,omitempty"`
	MaxLines        int `toml:"max_lines,omitempty"`

	// Reconnect backoff
	RetryInitial time.Duration `toml:"retry_initial,omitempty"`
	RetryMax     time.Duration `toml:"retry_max,omitempty"`
	RetryLimit   int           `toml:"retry_limit,omitempty"`

	// Logging
	LogLevel string `toml:"log_level,omitempty"`
	LogFile  string `toml:"log_file,omitempty"`
}

// Default returns a Config populated with built-in defaults.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// configDir returns the path to ~/.podtail/
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".podtail"), nil
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// DefaultLogPath returns ~/.podtail/podtail.log.
func DefaultLogPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "podtail.log"), nil
}

// Load reads the config from disk and applies environment variable overrides.
// If the config file does not exist, it returns the defaults (not an error).
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile is Load for an explicit path.
func LoadFile(path string) (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config at %s: %w", path, err)
		}
	}

	// Environment variable overrides (highest priority)
	if v := os.Getenv("PODTAIL_SERVER_URL"); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv("PODTAIL_API_TOKEN"); v != "" {
		cfg.APIToken = v
	}
	if v := os.Getenv("PODTAIL_TRANSPORT"); v != "" {
		cfg.Transport = TransportKind(strings.ToLower(v))
	}
	if v := os.Getenv("PODTAIL_DIRECTORY_FILE"); v != "" {
		cfg.DirectoryFile = v
	}
	if v := os.Getenv("PODTAIL_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	// Infer auth method from the token if not set in config
	if cfg.AuthMethod == AuthMethodNone && cfg.APIToken != "" {
		cfg.AuthMethod = AuthMethodAPIToken
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config at %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.ServerURL == "" {
		c.ServerURL = DefaultServerURL
	}
	if c.ApplicationsPath == "" {
		c.ApplicationsPath = DefaultApplicationsPath
	}
	if c.StreamPath == "" {
		c.StreamPath = DefaultStreamPath
	}
	if c.StreamParam == "" {
		c.StreamParam = DefaultStreamParam
	}
	if c.Transport == "" {
		c.Transport = TransportSSE
	}
	if c.FollowThreshold == 0 {
		c.FollowThreshold = DefaultFollowThreshold
	}
	if c.RetryInitial == 0 {
		c.RetryInitial = DefaultRetryInitial
	}
	if c.RetryMax == 0 {
		c.RetryMax = DefaultRetryMax
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}

// Validate reports the first structural problem with the config.
func (c *Config) Validate() error {
	switch c.Transport {
	case TransportSSE, TransportWebSocket:
	default:
		return fmt.Errorf("unknown transport %q (expected %q or %q)", c.Transport, TransportSSE, TransportWebSocket)
	}

	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return fmt.Errorf("server_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("server_url must be http or https, got %q", c.ServerURL)
	}
	if u.Host == "" {
		return fmt.Errorf("server_url has no host: %q", c.ServerURL)
	}

	switch c.AuthMethod {
	case AuthMethodNone:
	case AuthMethodAPIToken:
		if c.APIToken == "" {
			return fmt.Errorf("auth_method %q requires api_token", c.AuthMethod)
		}
	default:
		return fmt.Errorf("unknown auth_method %q", c.AuthMethod)
	}

	if c.FollowThreshold < 0 {
		return fmt.Errorf("follow_threshold must not be negative")
	}
	if c.MaxLines < 0 {
		return fmt.Errorf("max_lines must not be negative")
	}
	if c.RetryLimit < 0 {
		return fmt.Errorf("retry_limit must not be negative")
	}
	if c.RetryInitial < 0 || c.RetryMax < 0 {
		return fmt.Errorf("retry durations must not be negative")
	}
	return nil
}

// Save writes the config to disk, creating the directory if needed.
func (c *Config) Save() error {
	dir, err := configDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	path := filepath.Join(dir, "config.toml")
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

// ErrConfigExists is returned by WriteDefault when a config file is already present.
var ErrConfigExists = errors.New("config file already exists")

// WriteDefault saves the default config to ConfigPath unless a file is already
// there. It returns the path written.
func WriteDefault() (string, error) {
	path, err := ConfigPath()
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err == nil {
		return path, ErrConfigExists
	}
	if err := Default().Save(); err != nil {
		return "", err
	}
	return path, nil
}

// IsAuthenticated returns true if requests will carry credentials.
func (c *Config) IsAuthenticated() bool {
	return c.AuthMethod == AuthMethodAPIToken && c.APIToken != ""
}

// ApplicationsURL returns the directory endpoint.
func (c *Config) ApplicationsURL() string {
	return strings.TrimRight(c.ServerURL, "/") + c.ApplicationsPath
}

// StreamURL returns the event-stream endpoint scoped to the given application key.
func (c *Config) StreamURL(key string) string {
	q := url.Values{}
	q.Set(c.StreamParam, key)
	return strings.TrimRight(c.ServerURL, "/") + c.StreamPath + "?" + q.Encode()
}

// WebSocketURL is StreamURL with the scheme switched to ws/wss.
func (c *Config) WebSocketURL(key string) string {
	s := c.StreamURL(key)
	switch {
	case strings.HasPrefix(s, "https://"):
		return "wss://" + strings.TrimPrefix(s, "https://")
	case strings.HasPrefix(s, "http://"):
		return "ws://" + strings.TrimPrefix(s, "http://")
	}
	return s
}
