package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Database.Driver != "sqlite3" {
		t.Errorf("Database.Driver = %q, want %q", cfg.Database.Driver, "sqlite3")
	}
	if cfg.Database.DSN != "questions.db" {
		t.Errorf("Database.DSN = %q, want %q", cfg.Database.DSN, "questions.db")
	}
	if !cfg.Database.Migrate {
		t.Error("Database.Migrate should default to true")
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("Server.Port = %q, want %q", cfg.Server.Port, "8080")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
	if !cfg.IsLocal() {
		t.Error("default env should be local")
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("QAFORUM_PRIMARY_ENV", "production")
	t.Setenv("QAFORUM_DATABASE_DRIVER", "pgx")
	t.Setenv("QAFORUM_DATABASE_DSN", "postgres://u:p@localhost:5432/questions")
	t.Setenv("QAFORUM_DATABASE_MIGRATE", "false")
	t.Setenv("QAFORUM_DATABASE_LOG_QUERIES", "true")
	t.Setenv("QAFORUM_SERVER_PORT", "9090")
	t.Setenv("QAFORUM_SERVER_READ_TIMEOUT", "30")
	t.Setenv("QAFORUM_SERVER_RATE_LIMIT", "2.5")
	t.Setenv("QAFORUM_LOGGING_FORMAT", "json")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.IsLocal() {
		t.Error("expected non-local env")
	}
	if cfg.Database.Driver != "pgx" {
		t.Errorf("Database.Driver = %q, want %q", cfg.Database.Driver, "pgx")
	}
	if cfg.Database.Migrate {
		t.Error("Database.Migrate should be false")
	}
	if !cfg.Database.LogQueries {
		t.Error("Database.LogQueries should be true")
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("Server.Port = %q, want %q", cfg.Server.Port, "9090")
	}
	if got := cfg.Server.ReadTimeoutDuration(); got != 30*time.Second {
		t.Errorf("ReadTimeoutDuration = %v, want %v", got, 30*time.Second)
	}
	if cfg.Server.RateLimit != 2.5 {
		t.Errorf("Server.RateLimit = %v, want 2.5", cfg.Server.RateLimit)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want %q", cfg.Logging.Format, "json")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"unknown driver", "QAFORUM_DATABASE_DRIVER", "oracle"},
		{"non-numeric port", "QAFORUM_SERVER_PORT", "http"},
		{"bad log level", "QAFORUM_LOGGING_LEVEL", "verbose"},
		{"zero burst", "QAFORUM_SERVER_RATE_BURST", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", tt.key, tt.val)
			}
		})
	}
}

func TestEnvKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"QAFORUM_DATABASE_DSN", "database.dsn"},
		{"QAFORUM_DATABASE_LOG_QUERIES", "database.log_queries"},
		{"QAFORUM_SERVER_READ_TIMEOUT", "server.read_timeout"},
	}

	for _, tt := range tests {
		if got := envKey(tt.in); got != tt.want {
			t.Errorf("envKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
