// Chronolog - Audit Event Logging and Retrieval Engine
// Copyright 2026 Chronolog contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chronologhq/chronolog

// Package config loads the layered application configuration: built-in
// defaults, then an optional YAML file, then environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/chronologhq/chronolog/internal/engine"
	"github.com/chronologhq/chronolog/internal/occasion"
)

// Config is the full application configuration.
type Config struct {
	Server    ServerConfig           `koanf:"server"`
	Database  DatabaseConfig         `koanf:"database"`
	Engine    engine.Config          `koanf:"engine"`
	Retention engine.RetentionConfig `koanf:"retention"`
	Logging   LoggingConfig          `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port" validate:"gte=1,lte=65535"`
	Timeout time.Duration `koanf:"timeout"`

	// CaptureRateLimit is the per-client request budget per minute on the
	// capture endpoint. Zero disables rate limiting.
	CaptureRateLimit int `koanf:"capture_rate_limit"`

	// CORSOrigins lists the browser origins allowed to call the API.
	// "*" allows all origins.
	CORSOrigins []string `koanf:"cors_origins"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	// Path is the database file; ":memory:" runs without persistence.
	Path string `koanf:"path"`

	// MaxMemory caps DuckDB's memory usage, e.g. "1GB".
	MaxMemory string `koanf:"max_memory"`
}

// LoggingConfig holds application log settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config with all defaults applied. File and
// environment layers override these.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             8642,
			Timeout:          30 * time.Second,
			CaptureRateLimit: 300,
			CORSOrigins:      []string{"*"},
		},
		Database: DatabaseConfig{
			Path:      "/data/chronolog.duckdb",
			MaxMemory: "1GB",
		},
		Engine: engine.Config{
			Occasion: occasion.Config{
				Window:       30 * time.Second,
				IdentityKeys: nil,
			},
			MaxPageSize: 100,
		},
		Retention: engine.DefaultRetentionConfig(),
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Validate checks cross-field constraints the struct tags can't express.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 1-65535, got %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Engine.Occasion.Window < 0 {
		return fmt.Errorf("engine.occasion.window must not be negative")
	}
	if c.Engine.MaxPageSize < 1 {
		return fmt.Errorf("engine.max_page_size must be positive, got %d", c.Engine.MaxPageSize)
	}
	if c.Retention.Days < 0 {
		return fmt.Errorf("retention.days must not be negative")
	}
	return nil
}
