// Chronolog - Audit Event Logging and Retrieval Engine
// Copyright 2026 Chronolog contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chronologhq/chronolog

// Package engine ties capture together: it validates and defaults incoming
// occurrences, stamps the engine-owned meta context, computes the occasion
// fingerprint, and hands the result to the store. It also fronts queries
// with page-size clamping and rendering with the registry vocabulary.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/chronologhq/chronolog/internal/event"
	"github.com/chronologhq/chronolog/internal/logging"
	"github.com/chronologhq/chronolog/internal/metrics"
	"github.com/chronologhq/chronolog/internal/occasion"
	"github.com/chronologhq/chronolog/internal/registry"
	"github.com/chronologhq/chronolog/internal/store"
	"github.com/chronologhq/chronolog/internal/validation"
)

// defaultPageSize applies when a query asks for no particular page size.
const defaultPageSize = 20

// Config holds engine-level tunables.
type Config struct {
	Occasion occasion.Config `koanf:"occasion"`

	// MaxPageSize caps requested page sizes; larger requests are clamped,
	// not rejected.
	MaxPageSize int `koanf:"max_page_size"`
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		Occasion:    occasion.DefaultConfig(),
		MaxPageSize: 100,
	}
}

// Capture is one occurrence as handed in by a producer.
type Capture struct {
	// Timestamp defaults to now when zero.
	Timestamp time.Time

	LoggerSlug string `validate:"required"`
	MessageKey string `validate:"required"`

	// Severity defaults to info when empty.
	Severity event.Severity

	// Initiator defaults to the unknown actor when its kind is empty.
	Initiator event.Initiator

	Context event.Context

	// OccasionID optionally overrides the implicit fingerprint, letting a
	// producer collapse semantically-equivalent events that differ in
	// detail.
	OccasionID string
}

// Engine is the synchronous capture and query front.
type Engine struct {
	cfg      Config
	store    store.Store
	registry *registry.Registry
}

// New creates an engine over the given store and registry.
func New(cfg Config, s store.Store, r *registry.Registry) *Engine {
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = DefaultConfig().MaxPageSize
	}
	return &Engine{cfg: cfg, store: s, registry: r}
}

// Registry exposes the vocabulary registry for API listing endpoints.
func (e *Engine) Registry() *registry.Registry {
	return e.registry
}

// Capture validates, defaults, fingerprints, and stores one occurrence.
// It is synchronous: when it returns without error the occurrence is
// durably either merged or inserted.
func (e *Engine) Capture(ctx context.Context, c Capture) (store.CaptureResult, error) {
	start := time.Now()

	if err := validation.ValidateStruct(&c); err != nil {
		return store.CaptureResult{}, fmt.Errorf("%w: %s", event.ErrValidation, err.Error())
	}

	if c.Timestamp.IsZero() {
		c.Timestamp = time.Now().UTC()
	}
	if c.Severity == "" {
		c.Severity = event.SeverityInfo
	}
	if !c.Severity.Valid() {
		return store.CaptureResult{}, fmt.Errorf("%w: unknown severity %q", event.ErrValidation, c.Severity)
	}
	if c.Initiator.Kind == "" {
		c.Initiator = event.Unknown()
	}
	if !c.Initiator.Valid() {
		return store.CaptureResult{}, fmt.Errorf("%w: unknown initiator kind %q", event.ErrValidation, c.Initiator.Kind)
	}

	evCtx := c.Context.Clone()
	e.stampMeta(evCtx, c)

	fingerprint := e.cfg.Occasion.Fingerprint(c.LoggerSlug, c.MessageKey, c.OccasionID, c.Initiator, evCtx)

	result, err := e.store.Capture(ctx, store.CaptureRequest{
		Timestamp:   c.Timestamp,
		LoggerSlug:  c.LoggerSlug,
		MessageKey:  c.MessageKey,
		Severity:    c.Severity,
		Initiator:   c.Initiator,
		Context:     evCtx,
		Fingerprint: fingerprint,
		Window:      e.cfg.Occasion.Window,
	})
	metrics.RecordCapture(c.LoggerSlug, result.Merged, time.Since(start), err)
	if err != nil {
		logging.Error().Err(err).
			Str("logger", c.LoggerSlug).
			Str("message_key", c.MessageKey).
			Msg("Failed to capture event")
		return store.CaptureResult{}, err
	}

	logging.Debug().
		Str("logger", c.LoggerSlug).
		Str("message_key", c.MessageKey).
		Int64("event_id", result.ID).
		Bool("merged", result.Merged).
		Msg("Event captured")

	return result, nil
}

// stampMeta writes the engine-owned meta keys into the stored context so a
// row remains self-describing even when read outside this system.
func (e *Engine) stampMeta(ctx event.Context, c Capture) {
	ctx.SetMeta(event.KeyInitiator, string(c.Initiator.Kind))
	ctx.SetMeta(event.KeyMessageKey, c.MessageKey)
	if c.Initiator.Kind == event.InitiatorUser {
		ctx.SetMeta(event.KeyUserID, fmt.Sprintf("%d", c.Initiator.UserID))
		ctx.SetMeta(event.KeyUserLogin, c.Initiator.Login)
		ctx.SetMeta(event.KeyUserEmail, c.Initiator.Email)
	}
	if c.OccasionID != "" {
		ctx.SetMeta(event.KeyOccasionID, c.OccasionID)
	}
}

// Query returns one page of matching events. A non-positive page size gets
// the default; an oversized one is clamped to the configured maximum.
func (e *Engine) Query(ctx context.Context, filter store.Filter, page, pageSize int) (store.QueryResult, error) {
	start := time.Now()

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > e.cfg.MaxPageSize {
		pageSize = e.cfg.MaxPageSize
	}

	result, err := e.store.Query(ctx, filter, page, pageSize)
	metrics.RecordQuery(time.Since(start), err)
	return result, err
}

// GetByID returns a single stored event.
func (e *Engine) GetByID(ctx context.Context, id int64) (*event.Event, error) {
	return e.store.GetByID(ctx, id)
}

// CountNewerThan counts events matching the filter beyond the given id,
// backing live-update polling.
func (e *Engine) CountNewerThan(ctx context.Context, filter store.Filter, maxID int64) (int64, error) {
	return e.store.CountNewerThan(ctx, filter, maxID)
}

// Stats returns aggregate statistics over the stored history.
func (e *Engine) Stats(ctx context.Context) (*store.Stats, error) {
	return e.store.Stats(ctx)
}

// RenderMessage renders an event's display message from the registry
// vocabulary, falling back to the raw message key.
func (e *Engine) RenderMessage(ev *event.Event) string {
	return e.registry.RenderMessage(ev)
}

// RenderDetails renders an event's diff table, if its logger declares
// diff fields and the event carries diffed context.
func (e *Engine) RenderDetails(ev *event.Event) string {
	return e.registry.RenderDetails(ev)
}
