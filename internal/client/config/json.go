package config

import (
	"os"

	"github.com/goccy/go-json"

	"github.com/dmitrijs2005/filmrate/internal/flagx"
	"github.com/dmitrijs2005/filmrate/internal/timex"
)

// JSONConfig is the on-disk shape of the config file. Pointer fields tell
// an absent key apart from an empty one.
type JSONConfig struct {
	ServerURL           *string         `json:"server_url"`
	DatabasePath        *string         `json:"database_path"`
	LogLevel            *string         `json:"log_level"`
	RequestLogThreshold *timex.Duration `json:"request_log_threshold"`
}

func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var jc JSONConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return err
	}

	if jc.ServerURL != nil {
		cfg.ServerURL = *jc.ServerURL
	}
	if jc.DatabasePath != nil {
		cfg.DatabasePath = *jc.DatabasePath
	}
	if jc.LogLevel != nil {
		cfg.LogLevel = *jc.LogLevel
	}
	if jc.RequestLogThreshold != nil {
		cfg.RequestLogThreshold = jc.RequestLogThreshold.Duration
	}
	return nil
}
