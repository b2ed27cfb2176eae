// Package db owns the one shared handle to the backing store.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"qaforum/internal/config"
)

var (
	ErrUnsupportedDriver  = errors.New("unsupported database driver")
	ErrMigrateUnsupported = errors.New("embedded migrations only support sqlite3")
)

// QueryObserver is notified after every statement the Handle executes.
type QueryObserver interface {
	ObserveQuery(d time.Duration, err error)
}

// Handle wraps *sql.DB with the driver's Dialect, query logging and an
// optional QueryObserver. It is safe for concurrent use.
type Handle struct {
	raw        *sql.DB
	driver     string
	dialect    Dialect
	log        zerolog.Logger
	logQueries bool
	observer   QueryObserver
}

type Option func(*Handle)

func WithLogger(l zerolog.Logger) Option {
	return func(h *Handle) { h.log = l }
}

func WithObserver(o QueryObserver) Option {
	return func(h *Handle) { h.observer = o }
}

// Open connects to the store described by cfg, verifies the connection
// and, when cfg.Migrate is set, applies the embedded schema.
func Open(ctx context.Context, cfg config.DatabaseConfig, opts ...Option) (*Handle, error) {
	d, err := dialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}
	if cfg.Migrate && cfg.Driver != "sqlite3" {
		return nil, fmt.Errorf("%w: driver %q", ErrMigrateUnsupported, cfg.Driver)
	}

	if cfg.Driver == "sqlite3" {
		if err := ensureDir(cfg.DSN); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	raw, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	memory := cfg.Driver == "sqlite3" && isMemoryDSN(cfg.DSN)
	if memory {
		// every pooled connection to :memory: is its own database
		raw.SetMaxOpenConns(1)
	}
	if err := raw.PingContext(ctx); err != nil {
		raw.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Migrate {
		migrateFn := func() error { return RunMigrations(cfg.DSN) }
		if memory {
			migrateFn = func() error { return migrateInstance(raw) }
		}
		if err := migrateFn(); err != nil {
			raw.Close()
			return nil, err
		}
	}

	h := &Handle{
		raw:        raw,
		driver:     cfg.Driver,
		dialect:    d,
		log:        zerolog.Nop(),
		logQueries: cfg.LogQueries,
	}
	for _, opt := range opts {
		opt(h)
	}

	h.log.Info().Str("driver", cfg.Driver).Bool("migrated", cfg.Migrate).Msg("database opened")

	return h, nil
}

func ensureDir(dsn string) error {
	if isMemoryDSN(dsn) || strings.HasPrefix(dsn, "file:") {
		return nil
	}
	return os.MkdirAll(filepath.Dir(dsn), 0755)
}

func isMemoryDSN(dsn string) bool {
	if dsn == ":memory:" || strings.HasPrefix(dsn, ":memory:?") {
		return true
	}
	if strings.HasPrefix(dsn, "file::memory:") {
		return true
	}
	return strings.HasPrefix(dsn, "file:") && strings.Contains(dsn, "mode=memory")
}

func (h *Handle) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	query = Rebind(h.dialect, query)
	start := time.Now()
	rows, err := h.raw.QueryContext(ctx, query, args...)
	h.record(query, args, start, err)
	return rows, err
}

func (h *Handle) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	query = Rebind(h.dialect, query)
	start := time.Now()
	res, err := h.raw.ExecContext(ctx, query, args...)
	h.record(query, args, start, err)
	return res, err
}

func (h *Handle) record(query string, args []any, start time.Time, err error) {
	elapsed := time.Since(start)
	if h.observer != nil {
		h.observer.ObserveQuery(elapsed, err)
	}
	if h.logQueries {
		h.log.Debug().
			Str("query", query).
			Interface("args", args).
			Dur("elapsed", elapsed).
			Err(err).
			Msg("query")
	}
}

// Ping checks the store is still reachable.
func (h *Handle) Ping(ctx context.Context) error {
	return h.raw.PingContext(ctx)
}

func (h *Handle) Driver() string { return h.driver }

// Close releases the underlying pool. The Handle must not be used afterwards.
func (h *Handle) Close() error {
	h.log.Info().Msg("database closed")
	return h.raw.Close()
}
