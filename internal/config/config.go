// Package config loads tactica settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds settings shared by every command. Command-line flags take
// precedence over these values.
type Config struct {
	// DB is the evaluation log path used by eval and history.
	DB string `env:"TACTICA_DB"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"TACTICA_LOG_LEVEL" envDefault:"info"`

	// Workers bounds the reachability evaluator.
	Workers int `env:"TACTICA_WORKERS" envDefault:"4"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses Config from the environment and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return Config{}, err
	}
	if cfg.Workers < 1 {
		return Config{}, fmt.Errorf("TACTICA_WORKERS must be at least 1, got %d", cfg.Workers)
	}
	return cfg, nil
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}
