package config

import (
	"fmt"
	"strconv"
)

// DefaultSessionExpirationHours is the lifetime of development tokens minted by this client.
const DefaultSessionExpirationHours = 24

// JWTConfig holds the settings used to verify session tokens issued by the
// identity provider, and to mint development tokens. Secret is only read from
// the environment.
type JWTConfig struct {
	Secret          string `json:"-" yaml:"-"`
	Issuer          string `json:"issuer,omitempty" yaml:"issuer,omitempty"`
	ExpirationHours int    `json:"expiration_hours,omitempty" yaml:"expiration_hours,omitempty"`
}

// applyEnv reads SESSION_JWT_SECRET, SESSION_JWT_ISSUER and SESSION_JWT_EXPIRATION_HOURS.
func (c *JWTConfig) applyEnv(getenv func(string) string) error {
	if v := getenv("SESSION_JWT_SECRET"); v != "" {
		c.Secret = v
	}
	if v := getenv("SESSION_JWT_ISSUER"); v != "" {
		c.Issuer = v
	}
	if v := getenv("SESSION_JWT_EXPIRATION_HOURS"); v != "" {
		hours, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SESSION_JWT_EXPIRATION_HOURS: %v", err)
		}
		c.ExpirationHours = hours
	}
	return nil
}

func (c JWTConfig) mergeWithDefaults(defaults JWTConfig) JWTConfig {
	if c.Secret == "" {
		c.Secret = defaults.Secret
	}
	if c.Issuer == "" {
		c.Issuer = defaults.Issuer
	}
	if c.ExpirationHours == 0 {
		c.ExpirationHours = defaults.ExpirationHours
	}
	if c.ExpirationHours == 0 {
		c.ExpirationHours = DefaultSessionExpirationHours
	}
	return c
}

// Validate checks the session token settings.
func (c *JWTConfig) Validate() error {
	if c.Secret == "" {
		return fmt.Errorf("SESSION_JWT_SECRET is required but not set")
	}
	if c.ExpirationHours < 1 {
		return fmt.Errorf("config error: 'session.expiration_hours' must be at least 1 hour, got: %d", c.ExpirationHours)
	}
	return nil
}

// LoadSession builds only the session token settings, from the same file and
// environment as Load. It suits commands that never call the parsing API.
func LoadSession(path string, getenv func(string) string) (*JWTConfig, error) {
	cfg, err := loadMerged(path, getenv)
	if err != nil {
		return nil, err
	}
	if err := cfg.Session.Validate(); err != nil {
		return nil, err
	}
	return &cfg.Session, nil
}
