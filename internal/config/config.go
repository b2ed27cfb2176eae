// Package config loads process configuration from QAFORUM_* environment
// variables (and a .env file, when present) and validates it.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "QAFORUM_"

type Config struct {
	Primary  Primary        `koanf:"primary" validate:"required"`
	Database DatabaseConfig `koanf:"database" validate:"required"`
	Server   ServerConfig   `koanf:"server" validate:"required"`
	Logging  LoggingConfig  `koanf:"logging" validate:"required"`
}

type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// DatabaseConfig selects the driver and DSN of the backing store.
// Migrate only applies to sqlite3.
type DatabaseConfig struct {
	Driver     string `koanf:"driver" validate:"required,oneof=sqlite3 pgx postgres mysql"`
	DSN        string `koanf:"dsn" validate:"required"`
	Migrate    bool   `koanf:"migrate"`
	LogQueries bool   `koanf:"log_queries"`
}

// ServerConfig timeouts are in seconds.
type ServerConfig struct {
	Port         string  `koanf:"port" validate:"required,numeric"`
	ReadTimeout  int     `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout int     `koanf:"write_timeout" validate:"gt=0"`
	RateLimit    float64 `koanf:"rate_limit" validate:"gt=0"`
	RateBurst    int     `koanf:"rate_burst" validate:"gt=0"`
}

type LoggingConfig struct {
	Level  string `koanf:"level" validate:"required,oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"required,oneof=console json"`
}

func (s ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Second
}

func (s ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(s.WriteTimeout) * time.Second
}

// Default returns the configuration used for any key the environment leaves unset.
func Default() *Config {
	return &Config{
		Primary: Primary{Env: "local"},
		Database: DatabaseConfig{
			Driver:  "sqlite3",
			DSN:     "questions.db",
			Migrate: true,
		},
		Server: ServerConfig{
			Port:         "8080",
			ReadTimeout:  10,
			WriteTimeout: 10,
			RateLimit:    20,
			RateBurst:    40,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads QAFORUM_* variables on top of Default and validates the result.
// QAFORUM_DATABASE_LOG_QUERIES maps to database.log_queries: only the first
// underscore after the prefix separates section from key.
func Load() (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.Provider(envPrefix, ".", envKey), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load env variables: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func envKey(s string) string {
	return strings.Replace(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".", 1)
}

// IsLocal reports whether the process runs in the local environment.
func (c *Config) IsLocal() bool {
	return c.Primary.Env == "local"
}
