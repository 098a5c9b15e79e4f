// Package config loads tool configuration from environment variables and the
// optional project-level blitz.yaml file.
package config

import (
	"fmt"
	"log/slog"

	"github.com/kelseyhightower/envconfig"
)

// AppConfig holds process-level configuration read from environment variables.
type AppConfig struct {
	// Port is the declared application server port. Zero when PORT is not
	// set; resolution falls through to the project config and the built-in
	// default. The client asset dev server always listens on the resolved
	// port + 1.
	Port int `envconfig:"PORT"`

	// Host is the bind host for dev serving. Empty when HOST is not set.
	Host string `envconfig:"HOST"`

	// NodeEnv is the build environment flag. When empty the commands pick
	// the value matching their mode (development for start, production for
	// build).
	NodeEnv string `envconfig:"NODE_ENV"`

	// LogLevel sets the minimum log level (debug, info, warn, error).
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads AppConfig from environment variables.
func Load() (*AppConfig, error) {
	var c AppConfig
	if err := envconfig.Process("", &c); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &c, nil
}

// SlogLevel converts the LogLevel string to a slog.Level.
// Unknown values default to slog.LevelInfo.
func (c *AppConfig) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
