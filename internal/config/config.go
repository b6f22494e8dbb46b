// Package config loads importer configuration from environment variables,
// applies defaults and validates the result so misconfiguration fails before
// any file is touched.
package config

import (
	"time"
	"unicode/utf8"
)

// Config holds all application configuration.
// Every setting can be given via environment variables; CLI flags override them.
type Config struct {
	Database DatabaseConfig
	Import   ImportConfig
	Logging  LoggingConfig
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string, required unless Import.DryRun is set.
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 4)
	MaxConns int `env:"DB_MAX_CONNS" default:"4"`

	// MinConns is the minimum number of connections to keep open (default: 1)
	MinConns int `env:"DB_MIN_CONNS" default:"1"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// ConnectTimeout bounds the initial connect and ping (default: 10s)
	ConnectTimeout time.Duration `env:"DB_CONNECT_TIMEOUT" default:"10s"`
}

// ImportConfig holds file import settings.
type ImportConfig struct {
	// Delimiter is the single-character field delimiter (default: ,)
	Delimiter string `env:"IMPORT_DELIMITER" default:","`

	// Flush deletes existing catalogue data before importing (default: false)
	Flush bool `env:"IMPORT_FLUSH" default:"false"`

	// ScopeAttributesByClass looks attribute definitions up by (class, name)
	// instead of by name alone (default: false)
	ScopeAttributesByClass bool `env:"IMPORT_SCOPE_ATTRIBUTES_BY_CLASS" default:"false"`

	// BreadcrumbSeparator separates category names in a breadcrumb (default: >)
	BreadcrumbSeparator string `env:"IMPORT_BREADCRUMB_SEPARATOR" default:">"`

	// DryRun imports into an in-memory store and discards the result (default: false)
	DryRun bool `env:"IMPORT_DRY_RUN" default:"false"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// DelimiterRune returns the delimiter as a rune, or ',' when it is not
// exactly one character.
func (c *ImportConfig) DelimiterRune() rune {
	if utf8.RuneCountInString(c.Delimiter) != 1 {
		return ','
	}
	r, _ := utf8.DecodeRuneInString(c.Delimiter)
	return r
}
