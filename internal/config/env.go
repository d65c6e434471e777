// Package config loads process settings from the environment and the table
// setup from an optional YAML file.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds process settings.
type Config struct {
	Seed       int64  `env:"HEXBARTER_SEED" envDefault:"0"` // 0 draws a random seed
	DBPath     string `env:"HEXBARTER_DB" envDefault:"data/hexbarter.db"`
	JournalDir string `env:"HEXBARTER_JOURNAL_DIR"`
	APIPort    int    `env:"HEXBARTER_API_PORT" envDefault:"0"` // 0 disables the observer API
	LogLevel   string `env:"HEXBARTER_LOG_LEVEL" envDefault:"info"`
	TablePath  string `env:"HEXBARTER_TABLE"`
	MaxRounds  int    `env:"HEXBARTER_MAX_ROUNDS" envDefault:"0"`
	Human      bool   `env:"HEXBARTER_HUMAN" envDefault:"true"` // false turns every human seat into an agent
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads and validates Config from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return Config{}, err
	}
	if cfg.APIPort < 0 || cfg.APIPort > 65535 {
		return Config{}, fmt.Errorf("api port out of range: %d", cfg.APIPort)
	}
	if cfg.MaxRounds < 0 {
		return Config{}, fmt.Errorf("max rounds must be >= 0, got %d", cfg.MaxRounds)
	}
	return cfg, nil
}

// ParseLevel maps debug, info, warn or error to a slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}
