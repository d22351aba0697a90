package config

import (
	"fmt"
	"time"
)

// Config holds runtime settings for the FilmRate CLI.
//
// RequestLogThreshold is the duration after which a remote call is logged
// as slow. It never cancels a request; zero disables the warning.
type Config struct {
	ServerURL           string
	DatabasePath        string
	LogLevel            string
	RequestLogThreshold time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:3000"
	c.DatabasePath = "filmrate.db"
	c.LogLevel = "info"
	c.RequestLogThreshold = 2 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), FILMRATE_* environment variables and command-line
// flags. Later sources take precedence. args are the program arguments
// without the program name.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJSON(cfg, args); err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}
	lookup, err := envLookup(dotEnvFile)
	if err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	if err := parseEnv(cfg, lookup); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}
	return cfg, nil
}
