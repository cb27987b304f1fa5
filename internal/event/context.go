// Chronolog - Audit Event Logging and Retrieval Engine
// Copyright 2026 Chronolog contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chronologhq/chronolog

package event

import (
	"fmt"
	"strings"
)

// ReservedPrefix marks context keys owned by the engine. Producers must not
// set keys with this prefix; initiator, occasion id, and similar meta data
// are explicit Capture arguments instead.
const ReservedPrefix = "_"

// Engine-written meta context keys.
const (
	KeyInitiator  = "_initiator"
	KeyUserID     = "_user_id"
	KeyUserLogin  = "_user_login"
	KeyUserEmail  = "_user_email"
	KeyMessageKey = "_message_key"
	KeyOccasionID = "_occasionsID"
)

// Suffixes used by Diff to record field changes.
const (
	DiffPrevSuffix = "_prev"
	DiffNewSuffix  = "_new"
)

// Context is the flat string-keyed data attached to an event. Values are
// always strings; nesting is deliberately unsupported to keep storage and
// rendering trivial.
type Context map[string]string

// NewContext returns an empty context.
func NewContext() Context {
	return make(Context)
}

// Set stores a producer-supplied value. Keys with the reserved prefix are
// rejected before any mutation happens.
func (c Context) Set(key, value string) error {
	if strings.HasPrefix(key, ReservedPrefix) {
		return fmt.Errorf("set %q: %w", key, ErrReservedKey)
	}
	c[key] = value
	return nil
}

// SetMeta stores an engine-reserved value, bypassing the reserved-prefix
// check. Only the engine itself calls this; producers go through Set.
func (c Context) SetMeta(key, value string) {
	c[key] = value
}

// Diff records a field change as two derived keys, {key}_prev and {key}_new.
// Equal values are a no-op, so callers can feed every field through without
// filtering first. This is the single mechanism by which update-style events
// record what changed.
func (c Context) Diff(key, oldValue, newValue string) error {
	if oldValue == newValue {
		return nil
	}
	if strings.HasPrefix(key, ReservedPrefix) {
		return fmt.Errorf("diff %q: %w", key, ErrReservedKey)
	}
	c[key+DiffPrevSuffix] = oldValue
	c[key+DiffNewSuffix] = newValue
	return nil
}

// Get returns the value for key and whether it was present.
func (c Context) Get(key string) (string, bool) {
	v, ok := c[key]
	return v, ok
}

// Clone returns an independent copy of the context.
func (c Context) Clone() Context {
	out := make(Context, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}
