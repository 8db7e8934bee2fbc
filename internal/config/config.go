// Package config loads application configuration from environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the application configuration. All variables carry the
// MAILVET_ prefix.
type Config struct {
	ListenAddr string `env:"LISTEN_ADDR" envDefault:"127.0.0.1:8080"`
	DBPath     string `env:"DB_PATH" envDefault:"mailvet.db"`

	// OpenAIAPIKey is optional at startup: a key stored through the
	// credential store takes priority over this one.
	OpenAIAPIKey string `env:"OPENAI_API_KEY"`
	OpenAIModel  string `env:"OPENAI_MODEL"`

	// SecretKey encrypts stored credentials. Optional; without it the
	// credential store refuses reads and writes but everything else runs.
	SecretKey string `env:"SECRET_KEY"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"` // "json" or "text"
}

// Load reads configuration from the environment, after loading a .env file
// when one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "MAILVET_"}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.SecretKey != "" && len(cfg.SecretKey) != 32 {
		return nil, fmt.Errorf("MAILVET_SECRET_KEY must be exactly 32 bytes for AES-256, got %d", len(cfg.SecretKey))
	}

	return cfg, nil
}

// EncryptionKey returns the secret key as bytes, or nil when unset.
func (c *Config) EncryptionKey() []byte {
	if c.SecretKey == "" {
		return nil
	}
	return []byte(c.SecretKey)
}
