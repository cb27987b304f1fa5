// Chronolog - Audit Event Logging and Retrieval Engine
// Copyright 2026 Chronolog contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chronologhq/chronolog

package occasion

import (
	"testing"
	"time"

	"github.com/chronologhq/chronolog/internal/event"
)

func TestFingerprint_ExplicitIDPassesThrough(t *testing.T) {
	cfg := DefaultConfig()
	got := cfg.Fingerprint("UserLogger", "user_login_failed", "UserLogger/failed_user_login", event.WebUser(), event.NewContext())
	if got != "UserLogger/failed_user_login" {
		t.Errorf("Fingerprint with explicit id = %q, want pass-through", got)
	}
}

func TestFingerprint_Deterministic(t *testing.T) {
	cfg := DefaultConfig()
	init := event.User(42, "alice", "alice@example.com")

	a := cfg.Fingerprint("UserLogger", "user_logged_in", "", init, event.NewContext())
	b := cfg.Fingerprint("UserLogger", "user_logged_in", "", init, event.NewContext())
	if a != b {
		t.Errorf("Identical inputs produced different fingerprints: %q vs %q", a, b)
	}
	if a == "" {
		t.Error("Implicit fingerprint should not be empty")
	}
}

func TestFingerprint_VariesWithIdentityInputs(t *testing.T) {
	cfg := DefaultConfig()
	base := cfg.Fingerprint("UserLogger", "user_logged_in", "", event.User(1, "a", ""), event.NewContext())

	otherKey := cfg.Fingerprint("UserLogger", "user_logged_out", "", event.User(1, "a", ""), event.NewContext())
	if base == otherKey {
		t.Error("Different message keys should produce different fingerprints")
	}

	otherUser := cfg.Fingerprint("UserLogger", "user_logged_in", "", event.User(2, "b", ""), event.NewContext())
	if base == otherUser {
		t.Error("Different actors should produce different fingerprints")
	}

	otherSlug := cfg.Fingerprint("PostLogger", "user_logged_in", "", event.User(1, "a", ""), event.NewContext())
	if base == otherSlug {
		t.Error("Different logger slugs should produce different fingerprints")
	}
}

func TestFingerprint_IgnoresNonIdentityContext(t *testing.T) {
	cfg := DefaultConfig()
	init := event.WebUser()

	ctx1 := event.NewContext()
	_ = ctx1.Set("server_http_user_agent", "curl/8.0")
	ctx2 := event.NewContext()
	_ = ctx2.Set("server_http_user_agent", "Mozilla/5.0")
	_ = ctx2.Set("extra", "noise")

	a := cfg.Fingerprint("UserLogger", "user_login_failed", "", init, ctx1)
	b := cfg.Fingerprint("UserLogger", "user_login_failed", "", init, ctx2)
	if a != b {
		t.Error("Context fields outside IdentityKeys must not change the fingerprint")
	}
}

func TestFingerprint_IdentityKeysParticipate(t *testing.T) {
	cfg := Config{Window: 30 * time.Second, IdentityKeys: []string{"login"}}
	init := event.WebUser()

	ctxA := event.NewContext()
	_ = ctxA.Set("login", "alice")
	ctxB := event.NewContext()
	_ = ctxB.Set("login", "bob")

	a := cfg.Fingerprint("UserLogger", "user_login_failed", "", init, ctxA)
	b := cfg.Fingerprint("UserLogger", "user_login_failed", "", init, ctxB)
	if a == b {
		t.Error("Configured identity keys should influence the fingerprint")
	}

	// Key-set order must not matter.
	cfg2 := Config{Window: 30 * time.Second, IdentityKeys: []string{"login", "role"}}
	cfg3 := Config{Window: 30 * time.Second, IdentityKeys: []string{"role", "login"}}
	ctx := event.NewContext()
	_ = ctx.Set("login", "alice")
	_ = ctx.Set("role", "editor")
	if cfg2.Fingerprint("L", "k", "", init, ctx) != cfg3.Fingerprint("L", "k", "", init, ctx) {
		t.Error("IdentityKeys ordering changed the fingerprint")
	}
}

func TestWithinWindow(t *testing.T) {
	cfg := Config{Window: 10 * time.Second}
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		last time.Time
		want bool
	}{
		{"just inside", now.Add(-9 * time.Second), true},
		{"exactly at boundary", now.Add(-10 * time.Second), true},
		{"outside", now.Add(-11 * time.Second), false},
		{"slightly ahead still merges", now.Add(2 * time.Second), true},
		{"ahead at boundary", now.Add(10 * time.Second), true},
		{"ahead beyond window", now.Add(11 * time.Second), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cfg.WithinWindow(tt.last, now); got != tt.want {
				t.Errorf("WithinWindow = %v, want %v", got, tt.want)
			}
		})
	}

	zero := Config{Window: 0}
	if zero.WithinWindow(now, now) {
		t.Error("Zero window should never merge")
	}
}
