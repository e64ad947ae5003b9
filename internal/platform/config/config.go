// Package config provides environment-based configuration.
//
// Loads from .env file (godotenv), maps to Config struct via go-simpler/env struct tags.
// Validates required fields, the session backend choice, and encryption key format.
package config

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv string `env:"APP_ENV" default:"development"`

	// Backend API
	APIBaseURL     string `env:"API_BASE_URL"`
	APIAuthScheme  string `env:"API_AUTH_SCHEME" default:"Token"`
	APIStaticToken string `env:"API_STATIC_TOKEN"`

	// Session persistence
	SessionBackend       string        `env:"SESSION_BACKEND" default:"file"`
	SessionPath          string        `env:"SESSION_PATH"`
	RedisURL             string        `env:"REDIS_URL"`
	SessionEncryptionKey string        `env:"SESSION_ENCRYPTION_KEY"`
	SessionDefaultTTL    time.Duration `env:"SESSION_DEFAULT_TTL" default:"12h"`

	// Dev proxy
	ProxyPort string `env:"PROXY_PORT" default:"8090"`

	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if cfg.SessionPath == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("cannot determine default session path: %w", err)
		}
		cfg.SessionPath = filepath.Join(dir, "autoteile")
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.APIBaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	if _, err := url.ParseRequestURI(cfg.APIBaseURL); err != nil {
		return fmt.Errorf("API_BASE_URL must be a valid URL: %w", err)
	}

	switch cfg.SessionBackend {
	case "file":
	case "redis":
		if cfg.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when SESSION_BACKEND=redis")
		}
	default:
		return fmt.Errorf("SESSION_BACKEND must be \"file\" or \"redis\", got %q", cfg.SessionBackend)
	}

	if cfg.SessionEncryptionKey != "" {
		keyBytes, err := hex.DecodeString(cfg.SessionEncryptionKey)
		if err != nil {
			return fmt.Errorf("SESSION_ENCRYPTION_KEY must be valid hex: %w", err)
		}
		if len(keyBytes) != 32 {
			return fmt.Errorf("SESSION_ENCRYPTION_KEY must be exactly 64 hex characters (32 bytes), got %d bytes", len(keyBytes))
		}
	}

	return nil
}
