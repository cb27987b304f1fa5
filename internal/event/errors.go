// Chronolog - Audit Event Logging and Retrieval Engine
// Copyright 2026 Chronolog contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chronologhq/chronolog

package event

import "errors"

// Sentinel errors shared across the engine. Callers match with errors.Is.
var (
	// ErrReservedKey indicates a producer tried to set an engine-reserved
	// context key (prefix "_"). Recoverable: strip or rename the key.
	ErrReservedKey = errors.New("context key uses reserved prefix")

	// ErrNotFound indicates a lookup for a nonexistent event id.
	// A normal outcome, not a system failure.
	ErrNotFound = errors.New("event not found")

	// ErrValidation indicates a malformed filter or page request,
	// rejected before touching storage.
	ErrValidation = errors.New("validation failed")

	// ErrStore indicates the underlying persistence failed (I/O, constraint).
	// Retry policy belongs to the caller.
	ErrStore = errors.New("store failure")
)
