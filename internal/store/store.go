// Chronolog - Audit Event Logging and Retrieval Engine
// Copyright 2026 Chronolog contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chronologhq/chronolog

// Package store provides durable event persistence with merge-or-insert
// capture semantics and the filtered, paginated query engine over the
// stored history. DuckDBStore is the production implementation; MemoryStore
// backs tests and development.
package store

import (
	"context"
	"time"

	"github.com/chronologhq/chronolog/internal/event"
)

// CaptureRequest carries one occurrence into the store. The fingerprint and
// window are computed by the engine; the store only applies the merge rule.
type CaptureRequest struct {
	// Timestamp of this occurrence. The engine stamps time.Now().UTC()
	// when the producer leaves it zero.
	Timestamp time.Time

	LoggerSlug string
	MessageKey string
	Severity   event.Severity
	Initiator  event.Initiator
	Context    event.Context

	// Fingerprint is the occasion identity. Empty means this occurrence
	// never merges.
	Fingerprint string

	// Window is how recent the merge candidate's last occurrence must be.
	Window time.Duration
}

// CaptureResult reports which row absorbed the occurrence.
type CaptureResult struct {
	ID     int64
	Merged bool
}

// QueryResult is one page of matching events plus pagination totals.
type QueryResult struct {
	Events     []event.Event `json:"events"`
	TotalCount int64         `json:"total_count"`
	TotalPages int           `json:"total_pages"`
}

// Stats summarizes the stored history for dashboards.
type Stats struct {
	TotalEvents      int64            `json:"total_events"`
	TotalOccurrences int64            `json:"total_occurrences"`
	EventsBySeverity map[string]int64 `json:"events_by_severity"`
	EventsByLogger   map[string]int64 `json:"events_by_logger"`
	OldestEvent      *time.Time       `json:"oldest_event,omitempty"`
	NewestEvent      *time.Time       `json:"newest_event,omitempty"`
}

// Store defines the persistence interface for audit events.
//
// Capture's merge-or-insert decision is atomic per fingerprint: two
// concurrent captures sharing a fingerprint end up in one merged row, never
// two. Reads run fully concurrently with writes and never observe a
// half-applied merge.
type Store interface {
	// Capture merges the occurrence into the most recent row with the
	// same fingerprint if that row is still inside the window, otherwise
	// inserts a new row. Either way the affected row's id is returned.
	// A failed Capture leaves no partial state behind.
	Capture(ctx context.Context, req CaptureRequest) (CaptureResult, error)

	// GetByID returns the event with the given id, or an error matching
	// event.ErrNotFound.
	GetByID(ctx context.Context, id int64) (*event.Event, error)

	// Query returns one page of events matching the filter, ordered
	// strictly descending by id. Pages are 1-based; a page beyond the
	// last returns an empty slice with correct totals.
	Query(ctx context.Context, filter Filter, page, pageSize int) (QueryResult, error)

	// CountNewerThan counts events matching the filter with id > maxID.
	// It applies exactly the predicate Query applies, so live-update
	// polling and the subsequent fetch agree.
	CountNewerThan(ctx context.Context, filter Filter, maxID int64) (int64, error)

	// DeleteOlderThan removes rows whose last occurrence predates the
	// cutoff and returns how many were removed. Retention scheduling
	// lives outside the store.
	DeleteOlderThan(ctx context.Context, olderThan time.Time) (int64, error)

	// Stats returns aggregate statistics over the stored history.
	Stats(ctx context.Context) (*Stats, error)

	// Close releases underlying resources.
	Close() error
}
