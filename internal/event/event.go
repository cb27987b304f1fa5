// Chronolog - Audit Event Logging and Retrieval Engine
// Copyright 2026 Chronolog contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chronologhq/chronolog

// Package event defines the audit event data model: the Event row, the
// severity taxonomy, the initiator variant, and the flat string context
// with its reserved-key and diff conventions.
package event

import "time"

// Event is one stored activity record. A single row can cover several
// occurrences of the same repeated activity; OccurrenceCount, FirstTimestamp,
// and LastTimestamp describe the covered range.
//
// Rows are created by Capture and mutated only by a merge within the
// occasion window. Display-time transformations (template rendering, diff
// tables) are pure functions over the stored row, never written back.
type Event struct {
	// ID is assigned at insert, unique and strictly increasing in
	// insertion order. Immutable.
	ID int64 `json:"id"`

	// FirstTimestamp and LastTimestamp bound the occurrences covered by
	// this row. FirstTimestamp <= LastTimestamp always holds.
	FirstTimestamp time.Time `json:"timestamp_first"`
	LastTimestamp  time.Time `json:"timestamp_last"`

	// LoggerSlug identifies the producing logger and namespaces MessageKey.
	LoggerSlug string `json:"logger_slug"`

	// MessageKey identifies the semantic event type within a logger.
	// Opaque to the engine; the producer's registry maps it to a template.
	MessageKey string `json:"message_key"`

	Severity  Severity  `json:"severity"`
	Initiator Initiator `json:"initiator"`

	// OccasionFingerprint identifies "the same repeatable event" for merge
	// decisions. Empty means the row never merges.
	OccasionFingerprint string `json:"occasion_fingerprint,omitempty"`

	// OccurrenceCount is >= 1 and only ever grows.
	OccurrenceCount int64 `json:"occurrence_count"`

	// Context holds all event-specific data. On merge it reflects the
	// latest occurrence's values.
	Context Context `json:"context"`
}
