// Package config provides configuration loading and validation for the web client.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied by MergeWithDefaults.
const (
	DefaultPort    = 3000
	DefaultViewTTL = 30 * time.Minute
)

// Config represents the web client configuration. It can be loaded from a
// JSON or YAML file and is then overridden by environment variables.
type Config struct {
	ParserAPIURL   string    `json:"parser_api_url,omitempty" yaml:"parser_api_url,omitempty"`   // Base URL of the parsing service
	Port           int       `json:"port,omitempty" yaml:"port,omitempty"`                       // HTTP listen port
	AdminUserIDs   []string  `json:"admin_user_ids,omitempty" yaml:"admin_user_ids,omitempty"`   // Users allowed to list every resume
	SignInURL      string    `json:"sign_in_url,omitempty" yaml:"sign_in_url,omitempty"`         // Hosted sign-in page
	SignUpURL      string    `json:"sign_up_url,omitempty" yaml:"sign_up_url,omitempty"`         // Hosted sign-up page
	ViewTTL        Duration  `json:"view_ttl,omitempty" yaml:"view_ttl,omitempty"`               // Idle lifetime of a dashboard view
	RequestTimeout Duration  `json:"request_timeout,omitempty" yaml:"request_timeout,omitempty"` // Parser API timeout, zero means none
	AllowedOrigins []string  `json:"allowed_origins,omitempty" yaml:"allowed_origins,omitempty"` // CORS origins for the JSON API
	Session        JWTConfig `json:"session" yaml:"session,omitempty"`                           // Session token verification
}

// Duration is a time.Duration written as a Go duration string ("90s", "30m")
// in config files.
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}
	return d.set(s)
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	return d.set(node.Value)
}

func (d *Duration) set(s string) error {
	if s == "" {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by extension.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	case ".json", "":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file extension %q", ext)
	}

	return &cfg, nil
}

// ApplyEnv overrides fields from environment variables that are set:
// PARSER_API_URL, PORT, ADMIN_USER_IDS (comma-separated), SIGN_IN_URL,
// SIGN_UP_URL, VIEW_TTL, PARSER_API_TIMEOUT, ALLOWED_ORIGINS and SESSION_JWT_*.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if getenv == nil {
		getenv = os.Getenv
	}

	if v := getenv("PARSER_API_URL"); v != "" {
		c.ParserAPIURL = v
	}
	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT: %v", err)
		}
		c.Port = port
	}
	if v := getenv("ADMIN_USER_IDS"); v != "" {
		c.AdminUserIDs = splitList(v)
	}
	if v := getenv("SIGN_IN_URL"); v != "" {
		c.SignInURL = v
	}
	if v := getenv("SIGN_UP_URL"); v != "" {
		c.SignUpURL = v
	}
	if v := getenv("VIEW_TTL"); v != "" {
		if err := c.ViewTTL.set(v); err != nil {
			return fmt.Errorf("invalid VIEW_TTL: %w", err)
		}
	}
	if v := getenv("PARSER_API_TIMEOUT"); v != "" {
		if err := c.RequestTimeout.set(v); err != nil {
			return fmt.Errorf("invalid PARSER_API_TIMEOUT: %w", err)
		}
	}
	if v := getenv("ALLOWED_ORIGINS"); v != "" {
		c.AllowedOrigins = splitList(v)
	}
	return c.Session.applyEnv(getenv)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.ParserAPIURL == "" {
		return fmt.Errorf("config error: 'parser_api_url' is required")
	}
	u, err := url.Parse(c.ParserAPIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config error: 'parser_api_url' must be an absolute URL: %q", c.ParserAPIURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("config error: 'parser_api_url' must use http or https")
	}

	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535, got %d", c.Port)
	}
	if c.ViewTTL < 0 {
		return fmt.Errorf("config error: 'view_ttl' must be non-negative")
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("config error: 'request_timeout' must be non-negative")
	}

	return c.Session.Validate()
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// Fields still empty afterwards get the package defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.ParserAPIURL == "" {
		result.ParserAPIURL = defaults.ParserAPIURL
	}
	if result.SignInURL == "" {
		result.SignInURL = defaults.SignInURL
	}
	if result.SignUpURL == "" {
		result.SignUpURL = defaults.SignUpURL
	}
	if len(result.AdminUserIDs) == 0 {
		result.AdminUserIDs = defaults.AdminUserIDs
	}
	if len(result.AllowedOrigins) == 0 {
		result.AllowedOrigins = defaults.AllowedOrigins
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.ViewTTL == 0 {
		result.ViewTTL = defaults.ViewTTL
	}
	// Zero timeout is meaningful, so only an explicit default replaces it.
	if result.RequestTimeout == 0 {
		result.RequestTimeout = defaults.RequestTimeout
	}

	result.Session = result.Session.mergeWithDefaults(defaults.Session)

	if result.Port == 0 {
		result.Port = DefaultPort
	}
	if result.ViewTTL == 0 {
		result.ViewTTL = Duration(DefaultViewTTL)
	}
	return result
}

// Load builds the effective configuration: the optional file at path, then
// environment overrides, then defaults. The result is validated.
func Load(path string, getenv func(string) string) (*Config, error) {
	cfg, err := loadMerged(path, getenv)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadMerged(path string, getenv func(string) string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := cfg.ApplyEnv(getenv); err != nil {
		return nil, err
	}

	merged := cfg.MergeWithDefaults(Config{})
	return &merged, nil
}
