package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables overlaying the JSON file.
const (
	EnvServerURL           = "FILMRATE_SERVER_URL"
	EnvDatabasePath        = "FILMRATE_DATABASE_PATH"
	EnvLogLevel            = "FILMRATE_LOG_LEVEL"
	EnvRequestLogThreshold = "FILMRATE_REQUEST_LOG_THRESHOLD"
)

// dotEnvFile is read for variables missing from the process environment.
var dotEnvFile = ".env"

type lookupFunc func(key string) (string, bool)

// envLookup consults the process environment first, then the variables of
// the .env file at path. A missing file is not an error.
func envLookup(path string) (lookupFunc, error) {
	vars, err := godotenv.Read(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := vars[key]
		return v, ok
	}, nil
}

// parseEnv overlays cfg with the FILMRATE_* variables that are set and
// non-empty.
func parseEnv(cfg *Config, lookup lookupFunc) error {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	set(EnvServerURL, &cfg.ServerURL)
	set(EnvDatabasePath, &cfg.DatabasePath)
	set(EnvLogLevel, &cfg.LogLevel)

	if v, ok := lookup(EnvRequestLogThreshold); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRequestLogThreshold, err)
		}
		cfg.RequestLogThreshold = d
	}
	return nil
}
