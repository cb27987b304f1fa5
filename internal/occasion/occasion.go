// Chronolog - Audit Event Logging and Retrieval Engine
// Copyright 2026 Chronolog contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chronologhq/chronolog

// Package occasion computes the stable identity used to decide whether a
// newly captured event repeats recent activity and should merge into the
// most recent stored row, or start a new one.
package occasion

import (
	"encoding/hex"
	"sort"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/chronologhq/chronolog/internal/event"
)

// Config controls the fingerprint derivation and the merge window.
// Both are configuration rather than constants; the right values depend on
// how bursty the producers are.
type Config struct {
	// Window is how recent the candidate row's last occurrence must be for
	// a merge. Outside the window a new row is inserted even with an
	// identical fingerprint, which bounds count growth from long-lived
	// repeated behavior while still collapsing bursts.
	Window time.Duration `koanf:"window"`

	// IdentityKeys lists context keys folded into the implicit fingerprint.
	// Context keys not listed here never affect the fingerprint.
	IdentityKeys []string `koanf:"identity_keys"`
}

// DefaultConfig returns the default fingerprint configuration:
// a 30 second window and no identity context keys, so the implicit
// fingerprint is derived from logger slug, message key, and actor only.
func DefaultConfig() Config {
	return Config{
		Window:       30 * time.Second,
		IdentityKeys: nil,
	}
}

// fieldSep separates hash inputs so adjacent fields cannot collide
// ("ab"+"c" vs "a"+"bc").
const fieldSep = "\x1f"

// Fingerprint computes the occasion identity for a capture.
//
// An explicit id supplied by the producer is used verbatim; this is how
// producers intentionally collapse semantically-equivalent events that vary
// in detail (e.g. failed logins against rotating usernames) into one counted
// row. Without an explicit id the fingerprint is a deterministic hash of
// (loggerSlug, messageKey, initiator identity, configured identity context
// keys): identical inputs always hash identically, and context fields
// outside IdentityKeys never influence the result.
func (c Config) Fingerprint(loggerSlug, messageKey, explicitID string, initiator event.Initiator, ctx event.Context) string {
	if explicitID != "" {
		return explicitID
	}

	h := xxhash.New()
	_, _ = h.WriteString(loggerSlug)
	_, _ = h.WriteString(fieldSep)
	_, _ = h.WriteString(messageKey)
	_, _ = h.WriteString(fieldSep)
	_, _ = h.WriteString(initiator.Identity())

	// Identity keys are hashed in sorted order so config ordering and map
	// iteration order cannot change the result.
	if len(c.IdentityKeys) > 0 {
		keys := make([]string, len(c.IdentityKeys))
		copy(keys, c.IdentityKeys)
		sort.Strings(keys)
		for _, k := range keys {
			v, ok := ctx.Get(k)
			if !ok {
				continue
			}
			_, _ = h.WriteString(fieldSep)
			_, _ = h.WriteString(k)
			_, _ = h.WriteString(fieldSep)
			_, _ = h.WriteString(v)
		}
	}

	var sum [8]byte
	hv := h.Sum64()
	for i := 0; i < 8; i++ {
		sum[i] = byte(hv >> (8 * (7 - i)))
	}
	return hex.EncodeToString(sum[:])
}

// WithinWindow reports whether a candidate row whose last occurrence was at
// last can still absorb an occurrence happening at now. The check is
// symmetric: concurrent producers stamp timestamps before the store
// serializes them, so an occurrence may carry a timestamp slightly before
// the candidate's and must still merge.
func (c Config) WithinWindow(last, now time.Time) bool {
	if c.Window <= 0 {
		return false
	}
	d := now.Sub(last)
	if d < 0 {
		d = -d
	}
	return d <= c.Window
}
