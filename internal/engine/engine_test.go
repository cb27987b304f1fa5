// Chronolog - Audit Event Logging and Retrieval Engine
// Copyright 2026 Chronolog contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chronologhq/chronolog

package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/chronologhq/chronolog/internal/event"
	"github.com/chronologhq/chronolog/internal/registry"
	"github.com/chronologhq/chronolog/internal/store"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()

	r := registry.NewRegistry()
	if err := registry.RegisterBuiltin(r); err != nil {
		t.Fatalf("RegisterBuiltin failed: %v", err)
	}
	return New(DefaultConfig(), store.NewMemoryStore(), r)
}

func TestEngine_RepeatedFailedLoginsCollapse(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	// Three failed logins within two seconds, reported under one explicit
	// occasion id the way a login producer does.
	for i := 0; i < 3; i++ {
		evCtx := event.NewContext()
		_ = evCtx.Set("login", "admin")

		_, err := e.Capture(ctx, Capture{
			Timestamp:  base.Add(time.Duration(i) * time.Second),
			LoggerSlug: "user",
			MessageKey: "user_login_failed",
			Severity:   event.SeverityWarning,
			Initiator:  event.WebUser(),
			Context:    evCtx,
			OccasionID: "failed_user_login_attempts",
		})
		if err != nil {
			t.Fatalf("Capture %d failed: %v", i, err)
		}
	}

	result, err := e.Query(ctx, store.Filter{}, 1, 10)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if result.TotalCount != 1 {
		t.Fatalf("Expected one collapsed row, got %d", result.TotalCount)
	}
	if result.Events[0].OccurrenceCount != 3 {
		t.Errorf("OccurrenceCount = %d, want 3", result.Events[0].OccurrenceCount)
	}
}

func TestEngine_ConcurrentCapturesCollapse(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	// A burst of identical captures from concurrent request handlers. Each
	// goroutine stamps its own timestamp before the store serializes them,
	// so they reach the store slightly out of order and must still collapse
	// into one counted row.
	const n = 50
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			evCtx := event.NewContext()
			_ = evCtx.Set("login", "admin")
			_, err := e.Capture(ctx, Capture{
				LoggerSlug: "user",
				MessageKey: "user_login_failed",
				Severity:   event.SeverityWarning,
				Initiator:  event.WebUser(),
				Context:    evCtx,
				OccasionID: "failed_user_login_attempts",
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Capture failed: %v", err)
		}
	}

	result, err := e.Query(ctx, store.Filter{}, 1, n)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if result.TotalCount != 1 {
		t.Fatalf("Concurrent burst split into %d rows, want 1", result.TotalCount)
	}
	if got := result.Events[0].OccurrenceCount; got != n {
		t.Errorf("OccurrenceCount = %d, want %d", got, n)
	}
}

func TestEngine_CaptureStampsMetaContext(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	res, err := e.Capture(ctx, Capture{
		LoggerSlug: "user",
		MessageKey: "user_logged_in",
		Initiator:  event.User(42, "alice", "alice@example.com"),
	})
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}

	ev, err := e.GetByID(ctx, res.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}

	for key, want := range map[string]string{
		event.KeyInitiator:  "wp_user",
		event.KeyUserID:     "42",
		event.KeyUserLogin:  "alice",
		event.KeyUserEmail:  "alice@example.com",
		event.KeyMessageKey: "user_logged_in",
	} {
		if got, _ := ev.Context.Get(key); got != want {
			t.Errorf("Context[%s] = %q, want %q", key, got, want)
		}
	}
}

func TestEngine_CaptureDefaults(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	before := time.Now().UTC()
	res, err := e.Capture(ctx, Capture{LoggerSlug: "simple", MessageKey: "Something happened"})
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}

	ev, err := e.GetByID(ctx, res.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if ev.Severity != event.SeverityInfo {
		t.Errorf("Default severity = %q, want info", ev.Severity)
	}
	if ev.Initiator.Kind != event.InitiatorOther {
		t.Errorf("Default initiator = %q, want other", ev.Initiator.Kind)
	}
	if ev.FirstTimestamp.Before(before) || ev.FirstTimestamp.After(time.Now().UTC()) {
		t.Errorf("Timestamp not defaulted to now: %v", ev.FirstTimestamp)
	}
}

func TestEngine_CaptureValidation(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	tests := []struct {
		name string
		c    Capture
	}{
		{"missing logger slug", Capture{MessageKey: "user_logged_in"}},
		{"missing message key", Capture{LoggerSlug: "user"}},
		{"unknown severity", Capture{LoggerSlug: "user", MessageKey: "k", Severity: "loud"}},
		{"unknown initiator kind", Capture{LoggerSlug: "user", MessageKey: "k", Initiator: event.Initiator{Kind: "robot"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := e.Capture(ctx, tt.c); !errors.Is(err, event.ErrValidation) {
				t.Errorf("Expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestEngine_CaptureDoesNotMutateCallerContext(t *testing.T) {
	e := newTestEngine(t)
	evCtx := event.NewContext()
	_ = evCtx.Set("login", "bob")

	if _, err := e.Capture(context.Background(), Capture{
		LoggerSlug: "user",
		MessageKey: "user_logged_in",
		Context:    evCtx,
	}); err != nil {
		t.Fatalf("Capture failed: %v", err)
	}

	if _, ok := evCtx.Get(event.KeyMessageKey); ok {
		t.Error("Capture wrote meta keys into the caller's context")
	}
}

func TestEngine_QueryByTypeAndRender(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	evCtx := event.NewContext()
	_ = evCtx.Set("created_user_login", "bob")
	_ = evCtx.Set("created_user_email", "bob@example.com")
	_ = evCtx.Set("created_user_role", "editor")

	if _, err := e.Capture(ctx, Capture{
		LoggerSlug: "user",
		MessageKey: "user_created",
		Initiator:  event.User(1, "alice", "alice@example.com"),
		Context:    evCtx,
	}); err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if _, err := e.Capture(ctx, Capture{
		LoggerSlug: "user",
		MessageKey: "user_logged_out",
		Initiator:  event.User(1, "alice", "alice@example.com"),
	}); err != nil {
		t.Fatalf("Capture failed: %v", err)
	}

	filter := store.Filter{MessageTypes: []store.MessageType{{LoggerSlug: "user", MessageKey: "user_created"}}}
	result, err := e.Query(ctx, filter, 1, 10)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if result.TotalCount != 1 {
		t.Fatalf("Expected 1 match, got %d", result.TotalCount)
	}

	got := e.RenderMessage(&result.Events[0])
	want := "Created user bob (bob@example.com) with role editor"
	if got != want {
		t.Errorf("RenderMessage = %q, want %q", got, want)
	}
}

func TestEngine_QueryClampsPageSize(t *testing.T) {
	r := registry.NewRegistry()
	cfg := DefaultConfig()
	cfg.MaxPageSize = 5
	e := New(cfg, store.NewMemoryStore(), r)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		// Distinct message keys so the occasions never merge.
		if _, err := e.Capture(ctx, Capture{
			LoggerSlug: "simple",
			MessageKey: fmt.Sprintf("tick %d", i),
			Timestamp:  time.Date(2026, 8, 1, 12, 0, i, 0, time.UTC),
		}); err != nil {
			t.Fatalf("Capture failed: %v", err)
		}
	}

	result, err := e.Query(ctx, store.Filter{}, 1, 1000)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(result.Events) != 5 {
		t.Errorf("Page size not clamped: got %d events", len(result.Events))
	}

	// Zero page size falls back to the default, not an error.
	if _, err := e.Query(ctx, store.Filter{}, 1, 0); err != nil {
		t.Errorf("Zero page size should default, got %v", err)
	}
}

func TestEngine_CountNewerThan(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	res, err := e.Capture(ctx, Capture{LoggerSlug: "simple", MessageKey: "first"})
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if _, err := e.Capture(ctx, Capture{LoggerSlug: "simple", MessageKey: "second"}); err != nil {
		t.Fatalf("Capture failed: %v", err)
	}

	count, err := e.CountNewerThan(ctx, store.Filter{}, res.ID)
	if err != nil {
		t.Fatalf("CountNewerThan failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 newer event, got %d", count)
	}
}

func TestProducer_SeverityMethods(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	p := e.Producer("user")

	res, err := p.Warning(ctx, Entry{
		MessageKey: "user_login_failed",
		Initiator:  event.WebUser(),
		OccasionID: "failed_user_login_attempts",
	})
	if err != nil {
		t.Fatalf("Warning failed: %v", err)
	}

	ev, err := e.GetByID(ctx, res.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if ev.Severity != event.SeverityWarning {
		t.Errorf("Severity = %q, want warning", ev.Severity)
	}
	if ev.LoggerSlug != "user" {
		t.Errorf("LoggerSlug = %q, want user", ev.LoggerSlug)
	}
	if ev.OccasionFingerprint != "failed_user_login_attempts" {
		t.Errorf("Explicit occasion id not passed through: %q", ev.OccasionFingerprint)
	}

	if _, err := p.Info(ctx, Entry{MessageKey: "user_logged_in"}); err != nil {
		t.Fatalf("Info failed: %v", err)
	}
}

func TestEngine_RetentionRoutine(t *testing.T) {
	e := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	old := Capture{
		LoggerSlug: "simple",
		MessageKey: "ancient",
		Timestamp:  time.Now().UTC().AddDate(0, 0, -90),
	}
	if _, err := e.Capture(ctx, old); err != nil {
		t.Fatalf("Capture failed: %v", err)
	}

	e.StartRetentionRoutine(ctx, RetentionConfig{Days: 60, Interval: 10 * time.Millisecond})

	deadline := time.After(2 * time.Second)
	for {
		result, err := e.Query(ctx, store.Filter{}, 1, 10)
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		if result.TotalCount == 0 {
			return
		}
		select {
		case <-deadline:
			t.Fatal("Retention routine did not remove the old event")
		case <-time.After(20 * time.Millisecond):
		}
	}
}
