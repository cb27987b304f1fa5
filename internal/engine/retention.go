// Chronolog - Audit Event Logging and Retrieval Engine
// Copyright 2026 Chronolog contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chronologhq/chronolog

package engine

import (
	"context"
	"time"

	"github.com/chronologhq/chronolog/internal/logging"
	"github.com/chronologhq/chronolog/internal/metrics"
)

// RetentionConfig controls the periodic cleanup of old events.
type RetentionConfig struct {
	// Days is how long events are kept, measured from their last
	// occurrence. Zero or negative disables cleanup.
	Days int `koanf:"days"`

	// Interval is how often the cleanup runs.
	Interval time.Duration `koanf:"interval"`
}

// DefaultRetentionConfig keeps 60 days of history, checked hourly.
func DefaultRetentionConfig() RetentionConfig {
	return RetentionConfig{
		Days:     60,
		Interval: time.Hour,
	}
}

// StartRetentionRoutine starts the periodic retention cleanup. It returns
// immediately; the routine stops when ctx is cancelled. Disabled retention
// starts nothing.
func (e *Engine) StartRetentionRoutine(ctx context.Context, cfg RetentionConfig) {
	if cfg.Days <= 0 {
		logging.Info().Msg("Event retention cleanup disabled")
		return
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultRetentionConfig().Interval
	}

	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cutoff := time.Now().UTC().AddDate(0, 0, -cfg.Days)
				count, err := e.store.DeleteOlderThan(ctx, cutoff)
				if err != nil {
					logging.Error().Err(err).Msg("Event retention cleanup error")
				} else if count > 0 {
					metrics.RecordRetention(count)
					logging.Info().Int64("count", count).Msg("Cleaned up old events")
				}
			}
		}
	}()
}
