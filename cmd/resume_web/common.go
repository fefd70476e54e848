package main

import (
	"fmt"
	"os"

	"github.com/jonathan/resume-parser-web/internal/config"
	"github.com/jonathan/resume-parser-web/internal/parserapi"
	"github.com/jonathan/resume-parser-web/internal/server"
	"github.com/jonathan/resume-parser-web/internal/types"
)

// loadConfig reads the config file named by --config, if any, and the environment.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath, os.Getenv)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func newParserClient(cfg *config.Config) (*parserapi.Client, error) {
	opts := parserapi.DefaultOptions()
	opts.Timeout = cfg.RequestTimeout.Std()
	return parserapi.NewClient(cfg.ParserAPIURL, opts)
}

// loadSession reads only the session token settings, for commands that never
// call the parsing API.
func loadSession() (*config.JWTConfig, error) {
	session, err := config.LoadSession(configPath, os.Getenv)
	if err != nil {
		return nil, fmt.Errorf("failed to load session config: %w", err)
	}
	return session, nil
}

// identityFromToken verifies a session token the same way the server does.
// An empty token falls back to SESSION_TOKEN.
func identityFromToken(token string, session *config.JWTConfig) (types.Identity, error) {
	if token == "" {
		token = os.Getenv("SESSION_TOKEN")
	}
	if token == "" {
		return types.Identity{}, fmt.Errorf("a session token is required (use --token or set SESSION_TOKEN)")
	}

	claims, err := server.NewJWTService(session).ValidateToken(token)
	if err != nil {
		return types.Identity{}, fmt.Errorf("invalid session token: %w", err)
	}
	return claims.Identity(), nil
}
