package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"qaforum/internal/config"
	"qaforum/internal/db"
	"qaforum/internal/logger"
	"qaforum/internal/metrics"
	"qaforum/internal/models"
	"qaforum/internal/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New(config.Default().Logging, os.Stderr)
		fallback.Fatal().Err(err).Msg("could not load config")
	}

	log := logger.New(cfg.Logging, os.Stdout)
	if !cfg.IsLocal() && cfg.Logging.Format == "console" {
		log.Warn().Str("env", cfg.Primary.Env).Msg("console log format outside the local environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	database, err := db.Open(ctx, cfg.Database, db.WithLogger(log), db.WithObserver(collector))
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("could not open database")
	}
	defer database.Close()

	srv := server.New(models.NewStore(database), server.Options{
		Logger:    log,
		Pinger:    database,
		Metrics:   collector,
		Gatherer:  reg,
		RateLimit: cfg.Server.RateLimit,
		RateBurst: cfg.Server.RateBurst,
	})

	httpServer := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      srv,
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", httpServer.Addr).
			Str("env", cfg.Primary.Env).
			Str("driver", database.Driver()).
			Msg("listening")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped")
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("graceful shutdown failed")
		}
	}
}
