// Package config loads runtime configuration for the FilmRate CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via flags: -c or -config.
//  3. FILMRATE_SERVER_URL, FILMRATE_DATABASE_PATH, FILMRATE_LOG_LEVEL and
//     FILMRATE_REQUEST_LOG_THRESHOLD from the environment, or from a .env
//     file in the working directory when unset.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the remote film store
//	-d string   path of the local SQLite database
//	-l string   log level (debug, info, warn, error)
//
// # JSON schema
//
// Durations use timex.Duration, so values can be either strings like "500ms"
// or integer nanoseconds:
//
//	{
//	  "server_url": "http://localhost:3000",
//	  "database_path": "filmrate.db",
//	  "log_level": "info",
//	  "request_log_threshold": "2s"
//	}
//
// Keys missing from the file keep their previous value.
package config
