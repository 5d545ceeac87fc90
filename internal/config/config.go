// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Equanimity Contributors

// Package config loads server configuration from a YAML file, command-line
// flags, and the environment. Precedence is flags over file over defaults;
// the database URL additionally falls back to the DATABASE_URL environment
// variable so deployments never have to put credentials in a file.
package config

import (
	"os"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Defaults.
const (
	DefaultAddr        = ":3000"
	DefaultMetricsAddr = ":9100"
	DefaultLogFormat   = "json"
	DefaultLogLevel    = "info"
)

// Config holds the server configuration.
type Config struct {
	// Addr is the HTTP API listen address.
	Addr string `koanf:"addr"`

	// MetricsAddr is the observability listen address.
	MetricsAddr string `koanf:"metrics_addr"`

	// DatabaseURL is the PostgreSQL connection string.
	DatabaseURL string `koanf:"database_url"`

	// LogFormat selects log encoding: "json" or "text".
	LogFormat string `koanf:"log_format"`

	// LogLevel sets the minimum log level: "debug", "info", "warn", "error".
	LogLevel string `koanf:"log_level"`
}

// Load builds a Config from defaults, an optional YAML file, and flags.
// An empty path skips the file layer. A missing file at an explicit path is
// an error; silently running on defaults hides misconfiguration.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	cfg := Config{
		Addr:        DefaultAddr,
		MetricsAddr: DefaultMetricsAddr,
		LogFormat:   DefaultLogFormat,
		LogLevel:    DefaultLogLevel,
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_FILE_FAILED").
				With("path", path).
				Wrap(err)
		}
	}

	if flags != nil {
		// posflag skips unchanged flags for keys the file already set, so
		// explicit flags win without clobbering file values with defaults.
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
		}
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_UNMARSHAL_FAILED").Wrap(err)
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the configuration for values the server cannot run with.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return oops.Code("CONFIG_INVALID").Errorf("listen address cannot be empty")
	}
	if c.DatabaseURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database URL is required (set database_url or DATABASE_URL)")
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return oops.Code("CONFIG_INVALID").
			With("log_format", c.LogFormat).
			Errorf("log format must be json or text")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return oops.Code("CONFIG_INVALID").
			With("log_level", c.LogLevel).
			Errorf("log level must be debug, info, warn, or error")
	}
	return nil
}
