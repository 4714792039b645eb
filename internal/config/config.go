// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

// Package config loads service configuration from an optional YAML
// file with command-line flag overrides. The resulting Config is
// immutable after Load.
package config

import (
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Config holds all service configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Log      LogConfig      `koanf:"log"`
	Auth     AuthConfig     `koanf:"auth"`
}

// ServerConfig holds the HTTP listener addresses.
type ServerConfig struct {
	Listen  string `koanf:"listen"`
	Metrics string `koanf:"metrics"`
}

// DatabaseConfig holds the postgres connection settings. An empty URL
// selects the in-memory stores, useful for development.
type DatabaseConfig struct {
	URL string `koanf:"url"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Format string `koanf:"format"` // "json" or "text"
	Level  string `koanf:"level"`  // "debug", "info", "warn", "error"
}

// AuthConfig holds the session and exemption settings.
type AuthConfig struct {
	// CookieName names the session cookie. Never hardcoded elsewhere;
	// the gate and the HTTP handlers both read it from here.
	CookieName  string        `koanf:"cookie_name"`
	SessionTTL  time.Duration `koanf:"session_ttl"`
	ExemptPaths []string      `koanf:"exempt_paths"`
}

// Default returns the configuration defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Listen:  ":8080",
			Metrics: ":9090",
		},
		Log: LogConfig{
			Format: "json",
			Level:  "info",
		},
		Auth: AuthConfig{
			CookieName: "_gatehouse_session",
			SessionTTL: 24 * time.Hour,
			ExemptPaths: []string{
				"/",
				"/api/users",
				"/api/auth_session/login",
				"/api/reset_password",
			},
		},
	}
}

// flagKeys maps command-line flag names to config keys. Flags not
// listed here are ignored by the loader.
var flagKeys = map[string]string{
	"listen":       "server.listen",
	"metrics":      "server.metrics",
	"database-url": "database.url",
	"log-format":   "log.format",
	"log-level":    "log.level",
	"cookie-name":  "auth.cookie_name",
	"session-ttl":  "auth.session_ttl",
	"exempt-path":  "auth.exempt_paths",
}

// RegisterFlags declares the config override flags on a flag set.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("listen", "", "HTTP listen address")
	fs.String("metrics", "", "observability listen address")
	fs.String("database-url", "", "postgres connection URL (empty selects in-memory stores)")
	fs.String("log-format", "", "log format: json or text")
	fs.String("log-level", "", "log level: debug, info, warn, error")
	fs.String("cookie-name", "", "session cookie name")
	fs.Duration("session-ttl", 0, "session lifetime")
	fs.StringSlice("exempt-path", nil, "path pattern exempt from authentication (repeatable)")
}

// Load builds the configuration from defaults, then the YAML file at
// path (if non-empty), then any explicitly set flags.
func Load(path string, fs *pflag.FlagSet) (Config, error) {
	cfg := Default()
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, oops.Code("CONFIG_FILE_FAILED").
				With("path", path).
				Wrap(err)
		}
	}

	if fs != nil {
		provider := posflag.ProviderWithFlag(fs, ".", k, func(f *pflag.Flag) (string, any) {
			// Only explicitly set flags override file values.
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(fs, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return Config{}, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
		}
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, oops.Code("CONFIG_UNMARSHAL_FAILED").Wrap(err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Server.Listen == "" {
		return oops.Code("CONFIG_INVALID").Errorf("server.listen cannot be empty")
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return oops.Code("CONFIG_INVALID").
			With("format", c.Log.Format).
			Errorf("log.format must be json or text")
	}
	if c.Auth.CookieName == "" {
		return oops.Code("CONFIG_INVALID").Errorf("auth.cookie_name cannot be empty")
	}
	if c.Auth.SessionTTL <= 0 {
		return oops.Code("CONFIG_INVALID").
			With("session_ttl", c.Auth.SessionTTL.String()).
			Errorf("auth.session_ttl must be positive")
	}
	return nil
}
