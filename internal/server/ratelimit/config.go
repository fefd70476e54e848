package ratelimit

import (
	"strconv"
	"strings"
	"time"
)

// Rule limits one route. Paths ending in "/" match by prefix.
type Rule struct {
	Method string
	Path   string
	Limit  int           // requests per window, 0 means unlimited
	Window time.Duration
	Burst  int // defaults to Limit
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int // 0 leaves unmatched routes unlimited
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	IdleTimeout     time.Duration
	Exempt          map[string]bool // client keys never limited
	Rules           []Rule
}

// DefaultRules limits the routes that call the parsing service.
func DefaultRules() []Rule {
	return []Rule{
		// each upload triggers a remote parse
		{Method: "POST", Path: "/api/upload", Limit: 30, Window: time.Hour, Burst: 5},
		{Method: "POST", Path: "/parser", Limit: 30, Window: time.Hour, Burst: 5},

		// fetches of the resume list
		{Method: "GET", Path: "/dashboard", Limit: 120, Window: time.Minute, Burst: 20},
		{Method: "GET", Path: "/api/resumes", Limit: 120, Window: time.Minute, Burst: 20},
	}
}

// LoadConfig reads rate limiting configuration through getenv.
func LoadConfig(getenv func(string) string) *Config {
	if !envBool(getenv, "RATE_LIMIT_ENABLED", true) {
		return &Config{Enabled: false}
	}

	rules := DefaultRules()
	if n := envInt(getenv, "RATE_LIMIT_UPLOADS_PER_HOUR", 0); n > 0 {
		for i := range rules {
			if rules[i].Method == "POST" {
				rules[i].Limit = n
			}
		}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    envInt(getenv, "RATE_LIMIT_DEFAULT_LIMIT", 0),
		DefaultWindow:   envDuration(getenv, "RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: envDuration(getenv, "RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		IdleTimeout:     time.Hour,
		Exempt:          parseList(getenv("RATE_LIMIT_EXEMPT")),
		Rules:           rules,
	}
}

// match returns the rule for method and path, or nil.
func match(method, path string, rules []Rule) *Rule {
	for i := range rules {
		if rules[i].Method == method && rules[i].Path == path {
			return &rules[i]
		}
	}
	for i := range rules {
		r := &rules[i]
		if r.Method == method && strings.HasSuffix(r.Path, "/") && strings.HasPrefix(path, r.Path) {
			return r
		}
	}
	return nil
}

func envInt(getenv func(string) string, key string, def int) int {
	if v := getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envBool(getenv func(string) string, key string, def bool) bool {
	if v := getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envDuration(getenv func(string) string, key string, def time.Duration) time.Duration {
	if v := getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// parseList parses a comma-separated list into a set.
func parseList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, item := range strings.Split(list, ",") {
		if item = strings.TrimSpace(item); item != "" {
			result[item] = true
		}
	}
	return result
}
