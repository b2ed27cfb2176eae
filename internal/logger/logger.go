// Package logger builds the process zerolog.Logger.
package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"

	"qaforum/internal/config"
)

const serviceName = "qaforum"

// New returns a logger writing to w (os.Stdout when nil). An unparsable
// level falls back to info.
func New(cfg config.LoggingConfig, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stdout
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	if cfg.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}

	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()
}
