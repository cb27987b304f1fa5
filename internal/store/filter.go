// Chronolog - Audit Event Logging and Retrieval Engine
// Copyright 2026 Chronolog contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chronologhq/chronolog

package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/chronologhq/chronolog/internal/event"
)

// MessageType selects events by producer vocabulary. An empty MessageKey
// matches every message the logger emits.
type MessageType struct {
	LoggerSlug string `json:"logger_slug"`
	MessageKey string `json:"message_key,omitempty"`
}

// ParseMessageType parses "slug:key" or bare "slug" selector syntax.
func ParseMessageType(s string) (MessageType, error) {
	slug, key, _ := strings.Cut(s, ":")
	if slug == "" {
		return MessageType{}, fmt.Errorf("%w: empty logger slug in message type %q", event.ErrValidation, s)
	}
	return MessageType{LoggerSlug: slug, MessageKey: key}, nil
}

// DateRange restricts events by occurrence time. Exactly one mode may be
// set: an explicit From/To pair (either side optional), a trailing LastDays
// count, or a calendar Month ("2006-01"). A zero DateRange matches all time.
type DateRange struct {
	From     *time.Time `json:"from,omitempty"`
	To       *time.Time `json:"to,omitempty"`
	LastDays int        `json:"last_days,omitempty"`
	Month    string     `json:"month,omitempty"`
}

// IsZero reports whether no date restriction is set.
func (d DateRange) IsZero() bool {
	return d.From == nil && d.To == nil && d.LastDays == 0 && d.Month == ""
}

// Validate checks internal consistency without resolving relative modes.
func (d DateRange) Validate() error {
	modes := 0
	if d.From != nil || d.To != nil {
		modes++
	}
	if d.LastDays != 0 {
		modes++
	}
	if d.Month != "" {
		modes++
	}
	if modes > 1 {
		return fmt.Errorf("%w: date range modes are mutually exclusive", event.ErrValidation)
	}

	if d.From != nil && d.To != nil && d.From.After(*d.To) {
		return fmt.Errorf("%w: date range start %s is after end %s", event.ErrValidation,
			d.From.Format(time.RFC3339), d.To.Format(time.RFC3339))
	}
	if d.LastDays < 0 {
		return fmt.Errorf("%w: last_days must be positive, got %d", event.ErrValidation, d.LastDays)
	}
	if d.Month != "" {
		if _, err := time.Parse("2006-01", d.Month); err != nil {
			return fmt.Errorf("%w: month must be formatted as YYYY-MM, got %q", event.ErrValidation, d.Month)
		}
	}
	return nil
}

// Resolve turns the range into concrete bounds relative to now. Either
// bound may come back nil, meaning unbounded on that side.
func (d DateRange) Resolve(now time.Time) (from, to *time.Time, err error) {
	if err := d.Validate(); err != nil {
		return nil, nil, err
	}

	switch {
	case d.LastDays > 0:
		f := now.AddDate(0, 0, -d.LastDays)
		return &f, nil, nil
	case d.Month != "":
		start, _ := time.Parse("2006-01", d.Month)
		end := start.AddDate(0, 1, 0)
		return &start, &end, nil
	default:
		return d.From, d.To, nil
	}
}

// Filter selects a subset of the stored history. All dimensions combine
// with AND; within a dimension, values combine with OR. A zero Filter
// matches everything.
type Filter struct {
	Date         DateRange        `json:"date,omitempty"`
	Severities   []event.Severity `json:"severities,omitempty"`
	MessageTypes []MessageType    `json:"message_types,omitempty"`

	// Actors holds initiator identity strings ("wp_user:42", "web_user").
	Actors []string `json:"actors,omitempty"`

	// FreeText matches case-insensitively against message keys, context
	// values, and initiator login/email.
	FreeText string `json:"free_text,omitempty"`
}

// Validate rejects malformed filters before any storage work happens.
func (f Filter) Validate() error {
	if err := f.Date.Validate(); err != nil {
		return err
	}
	for _, s := range f.Severities {
		if !s.Valid() {
			return fmt.Errorf("%w: unknown severity %q", event.ErrValidation, s)
		}
	}
	for _, mt := range f.MessageTypes {
		if mt.LoggerSlug == "" {
			return fmt.Errorf("%w: message type with empty logger slug", event.ErrValidation)
		}
	}
	return nil
}
