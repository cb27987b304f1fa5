// Chronolog - Audit Event Logging and Retrieval Engine
// Copyright 2026 Chronolog contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chronologhq/chronolog

package engine

import (
	"context"

	"github.com/chronologhq/chronolog/internal/event"
	"github.com/chronologhq/chronolog/internal/store"
)

// Entry is a producer-side occurrence: everything in a Capture except the
// logger slug and severity, which the Producer methods supply.
type Entry struct {
	MessageKey string
	Initiator  event.Initiator
	Context    event.Context
	OccasionID string
}

// Producer is a convenience handle bound to one logger slug, giving
// in-process producers per-severity methods instead of assembling Capture
// structs by hand.
type Producer struct {
	engine *Engine
	slug   string
}

// Producer returns a capture handle bound to the given logger slug.
func (e *Engine) Producer(slug string) *Producer {
	return &Producer{engine: e, slug: slug}
}

func (p *Producer) log(ctx context.Context, severity event.Severity, entry Entry) (store.CaptureResult, error) {
	return p.engine.Capture(ctx, Capture{
		LoggerSlug: p.slug,
		MessageKey: entry.MessageKey,
		Severity:   severity,
		Initiator:  entry.Initiator,
		Context:    entry.Context,
		OccasionID: entry.OccasionID,
	})
}

// Debug captures an occurrence with debug severity.
func (p *Producer) Debug(ctx context.Context, entry Entry) (store.CaptureResult, error) {
	return p.log(ctx, event.SeverityDebug, entry)
}

// Info captures an occurrence with info severity.
func (p *Producer) Info(ctx context.Context, entry Entry) (store.CaptureResult, error) {
	return p.log(ctx, event.SeverityInfo, entry)
}

// Notice captures an occurrence with notice severity.
func (p *Producer) Notice(ctx context.Context, entry Entry) (store.CaptureResult, error) {
	return p.log(ctx, event.SeverityNotice, entry)
}

// Warning captures an occurrence with warning severity.
func (p *Producer) Warning(ctx context.Context, entry Entry) (store.CaptureResult, error) {
	return p.log(ctx, event.SeverityWarning, entry)
}

// Error captures an occurrence with error severity.
func (p *Producer) Error(ctx context.Context, entry Entry) (store.CaptureResult, error) {
	return p.log(ctx, event.SeverityError, entry)
}

// Critical captures an occurrence with critical severity.
func (p *Producer) Critical(ctx context.Context, entry Entry) (store.CaptureResult, error) {
	return p.log(ctx, event.SeverityCritical, entry)
}

// Alert captures an occurrence with alert severity.
func (p *Producer) Alert(ctx context.Context, entry Entry) (store.CaptureResult, error) {
	return p.log(ctx, event.SeverityAlert, entry)
}

// Emergency captures an occurrence with emergency severity.
func (p *Producer) Emergency(ctx context.Context, entry Entry) (store.CaptureResult, error) {
	return p.log(ctx, event.SeverityEmergency, entry)
}
