package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application-level configuration.
type Config struct {
	Format     string // Output format: table, json, yaml or plain ("" picks by TTY)
	LogLevel   string // debug, info, warn, error
	LogFormat  string // text or json
	DBDriver   string // sqlite or postgres
	DBDSN      string // Data source for the relational sink
	ListenAddr string // Address of the MCP/metrics server
}

// Supported values.
var (
	formats    = []string{"", "table", "json", "yaml", "plain"}
	logLevels  = []string{"debug", "info", "warn", "warning", "error"}
	logFormats = []string{"text", "json"}
	dbDrivers  = []string{"sqlite", "postgres"}
)

// LoadDotEnv loads variables from path into the process environment without
// overriding ones that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Load reads configuration from environment variables.
//
//	MASTOSQL_FORMAT       output format (default: table on a terminal, json otherwise)
//	MASTOSQL_LOG_LEVEL    log level (default: warn)
//	MASTOSQL_LOG_FORMAT   text or json (default: text)
//	MASTOSQL_DB_DRIVER    sqlite or postgres (default: sqlite)
//	MASTOSQL_DB_DSN       sink data source (default: mastosql.db)
//	MASTOSQL_LISTEN_ADDR  MCP server address (default: 127.0.0.1:8765)
func Load() (Config, error) {
	cfg := Config{
		Format:     strings.ToLower(strings.TrimSpace(os.Getenv("MASTOSQL_FORMAT"))),
		LogLevel:   strings.ToLower(envOr("MASTOSQL_LOG_LEVEL", "warn")),
		LogFormat:  strings.ToLower(envOr("MASTOSQL_LOG_FORMAT", "text")),
		DBDriver:   strings.ToLower(envOr("MASTOSQL_DB_DRIVER", "sqlite")),
		DBDSN:      envOr("MASTOSQL_DB_DSN", "mastosql.db"),
		ListenAddr: envOr("MASTOSQL_LISTEN_ADDR", "127.0.0.1:8765"),
	}

	if !oneOf(cfg.Format, formats) {
		return Config{}, fmt.Errorf("invalid MASTOSQL_FORMAT %q: want one of table, json, yaml, plain", cfg.Format)
	}
	if !oneOf(cfg.LogLevel, logLevels) {
		return Config{}, fmt.Errorf("invalid MASTOSQL_LOG_LEVEL %q", cfg.LogLevel)
	}
	if !oneOf(cfg.LogFormat, logFormats) {
		return Config{}, fmt.Errorf("invalid MASTOSQL_LOG_FORMAT %q: want text or json", cfg.LogFormat)
	}
	if !oneOf(cfg.DBDriver, dbDrivers) {
		return Config{}, fmt.Errorf("invalid MASTOSQL_DB_DRIVER %q: want sqlite or postgres", cfg.DBDriver)
	}

	return cfg, nil
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
