// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package config loads shoplist settings from a YAML file and command-line
// flags.
package config

import (
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/holomush/shoplist/internal/auth"
)

// DatabaseURLEnv is read when no database URL is configured.
const DatabaseURLEnv = "DATABASE_URL"

// Default values.
const (
	DefaultLogFormat = "json"
	DefaultLogLevel  = "info"
	DefaultTimeout   = 30 * time.Second
)

// Config holds every setting the CLI uses.
type Config struct {
	DatabaseURL     string        `koanf:"database_url"`
	LockMinutes     int           `koanf:"lock_minutes"`
	LogFormat       string        `koanf:"log_format"`
	LogLevel        string        `koanf:"log_level"`
	Timeout         time.Duration `koanf:"timeout"`
	MetricsTextfile string        `koanf:"metrics_textfile"`
}

// flagKeys maps flag names to config keys. Flags not listed here are not
// configuration.
var flagKeys = map[string]string{
	"database-url":     "database_url",
	"lock-minutes":     "lock_minutes",
	"log-format":       "log_format",
	"log-level":        "log_level",
	"timeout":          "timeout",
	"metrics-textfile": "metrics_textfile",
}

// RegisterFlags adds the configuration flags, with their defaults, to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("database-url", "", "PostgreSQL URL (default: $"+DatabaseURLEnv+")")
	fs.Int("lock-minutes", auth.DefaultLockMinutes, "minutes an account stays locked after 3 failed logins")
	fs.String("log-format", DefaultLogFormat, "log format (json or text)")
	fs.String("log-level", DefaultLogLevel, "log level (debug, info, warn, error)")
	fs.Duration("timeout", DefaultTimeout, "timeout for database operations (e.g., 30s, 1m)")
	fs.String("metrics-textfile", "", "write Prometheus metrics to this file on exit (empty = disabled)")
}

// Load builds the configuration. Values come from, in increasing priority:
// flag defaults, the YAML file at path (if path is not empty), and flags set
// on the command line. getenv supplies DATABASE_URL when no URL is configured.
func Load(path string, fs *pflag.FlagSet, getenv func(string) string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").
				With("operation", "read config file").
				With("path", path).
				Wrap(err)
		}
	}

	// Passing k makes unchanged flags fill only keys the file did not set.
	provider := posflag.ProviderWithFlag(fs, ".", k, func(f *pflag.Flag) (string, any) {
		key, ok := flagKeys[f.Name]
		if !ok {
			return "", nil
		}
		return key, posflag.FlagVal(fs, f)
	})
	if err := k.Load(provider, nil); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").With("operation", "read flags").Wrap(err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").With("operation", "decode config").Wrap(err)
	}

	if cfg.DatabaseURL == "" && getenv != nil {
		cfg.DatabaseURL = getenv(DatabaseURLEnv)
	}
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.LockMinutes <= 0 {
		return oops.Code("CONFIG_INVALID").
			With("lock_minutes", c.LockMinutes).
			Errorf("lock_minutes must be positive, got %d", c.LockMinutes)
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return oops.Code("CONFIG_INVALID").
			With("log_format", c.LogFormat).
			Errorf("log_format must be 'json' or 'text', got %q", c.LogFormat)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return oops.Code("CONFIG_INVALID").
			With("log_level", c.LogLevel).
			Errorf("log_level must be one of debug, info, warn, error, got %q", c.LogLevel)
	}
	if c.Timeout <= 0 {
		return oops.Code("CONFIG_INVALID").
			With("timeout", c.Timeout.String()).
			Errorf("timeout must be positive, got %s", c.Timeout)
	}
	return nil
}

// RequireDatabase reports a configuration error when no database URL is set.
func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return oops.Code("CONFIG_INVALID").
			Errorf("database URL is required: set database_url, --database-url or %s", DatabaseURLEnv)
	}
	return nil
}
