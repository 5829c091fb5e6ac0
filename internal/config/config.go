// Package config defines process configuration and its loading order:
// defaults, then an optional YAML file, then GUESSD_* environment variables.
package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// WordLength is the default target word length for new sessions.
	WordLength int `koanf:"word_length"`

	// MaxAttempts is the default guess budget for new sessions.
	MaxAttempts int `koanf:"max_attempts"`

	// Retention is how long sessions stay in the in-memory store.
	Retention time.Duration `koanf:"retention"`

	// SQLiteDSN points at the durable store; empty runs memory-only.
	SQLiteDSN string `koanf:"sqlite_dsn"`

	// MigrationsDir holds *.sql files applied at startup.
	MigrationsDir string `koanf:"migrations_dir"`

	// WordsFile overrides the embedded vocabulary (one word per line).
	WordsFile string `koanf:"words_file"`

	// StrictWords rejects guesses that are not in the vocabulary.
	StrictWords bool `koanf:"strict_words"`

	// CORSOrigin is the single allowed browser origin.
	CORSOrigin string `koanf:"cors_origin"`

	// DailySalt seeds the deterministic daily word selection.
	DailySalt string `koanf:"daily_salt"`
}

// Defaults returns a Config with production-sane values.
func Defaults() *Config {
	return &Config{
		LogLevel:      "info",
		Addr:          ":8080",
		WordLength:    5,
		MaxAttempts:   6,
		Retention:     24 * time.Hour,
		SQLiteDSN:     "./data/guessd.db",
		MigrationsDir: "sql",
		CORSOrigin:    "http://localhost:5173",
		DailySalt:     "guessd-daily",
	}
}

// Load builds a Config by layering defaults, an optional file, and env vars.
// Order of precedence (low -> high):
//  1. Defaults()
//  2. file (YAML) if GUESSD_CONFIG is set
//  3. env (prefix GUESSD_, e.g. GUESSD_ADDR, GUESSD_MAX_ATTEMPTS)
func Load() (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv("GUESSD_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// GUESSD_WORD_LENGTH -> word_length, flat keys matching koanf tags.
	envProvider := env.Provider("GUESSD_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "guessd_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := *Defaults()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if cfg.Addr == "" {
		return nil, errors.New("addr must not be empty")
	}
	if cfg.WordLength <= 0 || cfg.MaxAttempts <= 0 {
		return nil, errors.New("word_length and max_attempts must be positive")
	}
	return &cfg, nil
}
