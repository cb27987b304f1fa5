// Chronolog - Audit Event Logging and Retrieval Engine
// Copyright 2026 Chronolog contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chronologhq/chronolog

package event

import (
	"errors"
	"testing"
)

func TestContext_SetRejectsReservedKeys(t *testing.T) {
	ctx := NewContext()
	if err := ctx.Set("login", "alice"); err != nil {
		t.Fatalf("Set failed for plain key: %v", err)
	}

	err := ctx.Set("_message_key", "user_created")
	if !errors.Is(err, ErrReservedKey) {
		t.Fatalf("Expected ErrReservedKey, got %v", err)
	}

	// The failed Set must not have mutated the context.
	if len(ctx) != 1 {
		t.Errorf("Expected 1 key after rejected Set, got %d", len(ctx))
	}
	if _, ok := ctx.Get("_message_key"); ok {
		t.Error("Reserved key was stored despite error")
	}
}

func TestContext_SetMetaBypassesReservedCheck(t *testing.T) {
	ctx := NewContext()
	ctx.SetMeta(KeyInitiator, string(InitiatorUser))

	if v, ok := ctx.Get(KeyInitiator); !ok || v != string(InitiatorUser) {
		t.Errorf("SetMeta did not store reserved key, got %q ok=%v", v, ok)
	}
}

func TestContext_Diff(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		old, new string
		wantKeys int
	}{
		{"changed value stores both sides", "user_email", "a@example.com", "b@example.com", 2},
		{"equal values are a no-op", "locale", "sv_SE", "sv_SE", 0},
		{"empty to value is a change", "first_name", "", "Anna", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := NewContext()
			if err := ctx.Diff(tt.key, tt.old, tt.new); err != nil {
				t.Fatalf("Diff failed: %v", err)
			}
			if len(ctx) != tt.wantKeys {
				t.Fatalf("Expected %d stored keys, got %d", tt.wantKeys, len(ctx))
			}
			if tt.wantKeys == 2 {
				if v, _ := ctx.Get(tt.key + DiffPrevSuffix); v != tt.old {
					t.Errorf("prev = %q, want %q", v, tt.old)
				}
				if v, _ := ctx.Get(tt.key + DiffNewSuffix); v != tt.new {
					t.Errorf("new = %q, want %q", v, tt.new)
				}
			}
		})
	}
}

func TestContext_DiffRejectsReservedKey(t *testing.T) {
	ctx := NewContext()
	if err := ctx.Diff("_user_id", "1", "2"); !errors.Is(err, ErrReservedKey) {
		t.Fatalf("Expected ErrReservedKey, got %v", err)
	}
	if len(ctx) != 0 {
		t.Error("Rejected Diff mutated the context")
	}
}

func TestContext_Clone(t *testing.T) {
	ctx := NewContext()
	_ = ctx.Set("login", "alice")

	clone := ctx.Clone()
	_ = clone.Set("login", "bob")

	if v, _ := ctx.Get("login"); v != "alice" {
		t.Errorf("Clone shares storage with original: %q", v)
	}
}

func TestSeverity_Ordering(t *testing.T) {
	if !SeverityEmergency.AtLeast(SeverityDebug) {
		t.Error("emergency should rank at least debug")
	}
	if SeverityInfo.AtLeast(SeverityWarning) {
		t.Error("info should rank below warning")
	}
	if !SeverityWarning.Valid() {
		t.Error("warning should be valid")
	}
	if Severity("verbose").Valid() {
		t.Error("unknown severity should be invalid")
	}
	if got := len(Severities()); got != 8 {
		t.Errorf("Expected 8 severities, got %d", got)
	}
}

func TestInitiator_Identity(t *testing.T) {
	tests := []struct {
		name string
		init Initiator
		want string
	}{
		{"authenticated user", User(42, "alice", "alice@example.com"), "wp_user:42"},
		{"web visitor", WebUser(), "web_user"},
		{"automation with tool", Automation("wp-cli"), "wp_cli:wp-cli"},
		{"unknown", Unknown(), "other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.init.Identity(); got != tt.want {
				t.Errorf("Identity() = %q, want %q", got, tt.want)
			}
			parsed, err := ParseIdentity(tt.init.Identity())
			if err != nil {
				t.Fatalf("ParseIdentity failed: %v", err)
			}
			if parsed.Identity() != tt.want {
				t.Errorf("Round-trip identity = %q, want %q", parsed.Identity(), tt.want)
			}
		})
	}
}

func TestInitiator_Label(t *testing.T) {
	if got := User(1, "alice", "alice@example.com").Label(); got != "alice (alice@example.com)" {
		t.Errorf("Label() = %q", got)
	}
	if got := WebUser().Label(); got != "Anonymous web user" {
		t.Errorf("Label() = %q", got)
	}
	if got := Automation("").Label(); got != "WP-CLI" {
		t.Errorf("Label() = %q", got)
	}
	if got := Unknown().Label(); got != "Unknown" {
		t.Errorf("Label() = %q", got)
	}
}
