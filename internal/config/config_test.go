// Chronolog - Audit Event Logging and Retrieval Engine
// Copyright 2026 Chronolog contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chronologhq/chronolog

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	// Run from a directory with no config file so only defaults apply.
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8642 {
		t.Errorf("Server.Port = %d, want 8642", cfg.Server.Port)
	}
	if cfg.Engine.Occasion.Window != 30*time.Second {
		t.Errorf("Occasion window = %v, want 30s", cfg.Engine.Occasion.Window)
	}
	if cfg.Engine.MaxPageSize != 100 {
		t.Errorf("MaxPageSize = %d, want 100", cfg.Engine.MaxPageSize)
	}
	if cfg.Retention.Days != 60 {
		t.Errorf("Retention.Days = %d, want 60", cfg.Retention.Days)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want json", cfg.Logging.Format)
	}
	if len(cfg.Server.CORSOrigins) != 1 || cfg.Server.CORSOrigins[0] != "*" {
		t.Errorf("Server.CORSOrigins = %v, want [*]", cfg.Server.CORSOrigins)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	yaml := `
server:
  port: 9100
engine:
  max_page_size: 250
  occasion:
    window: 45s
    identity_keys:
      - server_ip
retention:
  days: 14
`
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 9100 {
		t.Errorf("Server.Port = %d, want 9100", cfg.Server.Port)
	}
	if cfg.Engine.MaxPageSize != 250 {
		t.Errorf("MaxPageSize = %d, want 250", cfg.Engine.MaxPageSize)
	}
	if cfg.Engine.Occasion.Window != 45*time.Second {
		t.Errorf("Occasion window = %v, want 45s", cfg.Engine.Occasion.Window)
	}
	if len(cfg.Engine.Occasion.IdentityKeys) != 1 || cfg.Engine.Occasion.IdentityKeys[0] != "server_ip" {
		t.Errorf("IdentityKeys = %v", cfg.Engine.Occasion.IdentityKeys)
	}
	if cfg.Retention.Days != 14 {
		t.Errorf("Retention.Days = %d, want 14", cfg.Retention.Days)
	}
	// Unset sections keep their defaults.
	if cfg.Database.Path != "/data/chronolog.duckdb" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	yaml := "server:\n  port: 9100\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	t.Setenv("CHRONOLOG_SERVER__PORT", "9200")
	t.Setenv("CHRONOLOG_LOGGING__LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 9200 {
		t.Errorf("Server.Port = %d, want env override 9200", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"empty database path", func(c *Config) { c.Database.Path = "" }},
		{"negative window", func(c *Config) { c.Engine.Occasion.Window = -time.Second }},
		{"zero page size", func(c *Config) { c.Engine.MaxPageSize = 0 }},
		{"negative retention", func(c *Config) { c.Retention.Days = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Expected validation error, got nil")
			}
		})
	}

	if err := defaultConfig().Validate(); err != nil {
		t.Errorf("Default config must validate: %v", err)
	}
}
