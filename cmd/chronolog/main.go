// Chronolog - Audit Event Logging and Retrieval Engine
// Copyright 2026 Chronolog contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chronologhq/chronolog

// Command chronolog runs the audit event engine: DuckDB-backed storage,
// the capture/query HTTP API, Prometheus metrics, and retention cleanup.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/chronologhq/chronolog/internal/api"
	"github.com/chronologhq/chronolog/internal/config"
	"github.com/chronologhq/chronolog/internal/engine"
	"github.com/chronologhq/chronolog/internal/logging"
	"github.com/chronologhq/chronolog/internal/registry"
	"github.com/chronologhq/chronolog/internal/store"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("Startup failed")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("database", cfg.Database.Path).
		Int("port", cfg.Server.Port).
		Msg("Starting chronolog")

	db, err := openDatabase(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st := store.NewDuckDBStore(db)
	if err := st.CreateTable(ctx); err != nil {
		return fmt.Errorf("initialize schema: %w", err)
	}

	reg := registry.NewRegistry()
	if err := registry.RegisterBuiltin(reg); err != nil {
		return fmt.Errorf("register builtin loggers: %w", err)
	}

	eng := engine.New(cfg.Engine, st, reg)
	eng.StartRetentionRoutine(ctx, cfg.Retention)

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: api.NewRouter(eng, api.RouterConfig{
			CaptureRateLimit: cfg.Server.CaptureRateLimit,
			CORSOrigins:      cfg.Server.CORSOrigins,
		}),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  2 * cfg.Server.Timeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logging.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("HTTP server shutdown error")
	}

	logging.Info().Msg("Shutdown complete")
	return nil
}

// openDatabase opens the DuckDB database with the configured limits and
// verifies connectivity.
func openDatabase(cfg config.DatabaseConfig) (*sql.DB, error) {
	connStr := cfg.Path
	if cfg.MaxMemory != "" && cfg.Path != ":memory:" {
		connStr = fmt.Sprintf("%s?max_memory=%s", cfg.Path, cfg.MaxMemory)
	}

	db, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", cfg.Path, err)
	}

	pingCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database %s: %w", cfg.Path, err)
	}

	return db, nil
}
