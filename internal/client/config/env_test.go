package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapLookup(m map[string]string) lookupFunc {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestParseEnv(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	err := parseEnv(cfg, mapLookup(map[string]string{
		EnvServerURL:           "https://films.example",
		EnvLogLevel:            "",
		EnvRequestLogThreshold: "750ms",
	}))
	require.NoError(t, err)

	want := &Config{
		ServerURL:           "https://films.example",
		DatabasePath:        "filmrate.db",
		LogLevel:            "info",
		RequestLogThreshold: 750 * time.Millisecond,
	}
	assert.Empty(t, cmp.Diff(want, cfg))
}

func TestParseEnv_BadDuration(t *testing.T) {
	cfg := &Config{}
	err := parseEnv(cfg, mapLookup(map[string]string{EnvRequestLogThreshold: "soon"}))
	assert.ErrorContains(t, err, EnvRequestLogThreshold)
}

func TestEnvLookup_ProcessEnvWinsOverDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("FILMRATE_SERVER_URL=http://from-file:3000\nFILMRATE_LOG_LEVEL=debug\n"), 0o600))
	t.Setenv(EnvLogLevel, "error")

	lookup, err := envLookup(path)
	require.NoError(t, err)

	v, ok := lookup(EnvServerURL)
	assert.True(t, ok)
	assert.Equal(t, "http://from-file:3000", v)

	v, _ = lookup(EnvLogLevel)
	assert.Equal(t, "error", v)

	_, ok = lookup(EnvDatabasePath)
	assert.False(t, ok)
}

func TestEnvLookup_MissingFileIsFine(t *testing.T) {
	lookup, err := envLookup(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
	_, ok := lookup("FILMRATE_NOT_SET_ANYWHERE")
	assert.False(t, ok)
}

func TestLoadConfig_EnvBetweenJSONAndFlags(t *testing.T) {
	path := writeTempJSON(t, map[string]any{
		"server_url":    "http://from-json:3000",
		"database_path": "/tmp/from-json.db",
	})
	t.Setenv(EnvServerURL, "http://from-env:3000")
	t.Setenv(EnvDatabasePath, "/tmp/from-env.db")

	cfg, err := LoadConfig([]string{"-c", path, "-d", "/tmp/from-flag.db"})
	require.NoError(t, err)
	assert.Equal(t, "http://from-env:3000", cfg.ServerURL)
	assert.Equal(t, "/tmp/from-flag.db", cfg.DatabasePath)
}
