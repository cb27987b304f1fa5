// Chronolog - Audit Event Logging and Retrieval Engine
// Copyright 2026 Chronolog contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chronologhq/chronolog

package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chronologhq/chronolog/internal/event"
)

// MemoryStore is an in-memory Store for tests and development. It applies
// the same merge and filter semantics as DuckDBStore.
type MemoryStore struct {
	mu     sync.RWMutex
	events []event.Event // ascending id order
	nextID int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

// Capture implements Store.
func (s *MemoryStore) Capture(_ context.Context, req CaptureRequest) (CaptureResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if req.Fingerprint != "" && req.Window > 0 {
		// Only the most recent row for the logger is a merge candidate;
		// any interleaved event from the same logger breaks the run.
		for i := len(s.events) - 1; i >= 0; i-- {
			candidate := &s.events[i]
			if candidate.LoggerSlug != req.LoggerSlug {
				continue
			}
			if candidate.OccasionFingerprint == req.Fingerprint && withinWindow(candidate.LastTimestamp, req.Timestamp, req.Window) {
				candidate.OccurrenceCount++
				if req.Timestamp.After(candidate.LastTimestamp) {
					candidate.LastTimestamp = req.Timestamp
				}
				if req.Timestamp.Before(candidate.FirstTimestamp) {
					candidate.FirstTimestamp = req.Timestamp
				}
				candidate.Context = req.Context.Clone()
				return CaptureResult{ID: candidate.ID, Merged: true}, nil
			}
			break
		}
	}

	ev := event.Event{
		ID:                  s.nextID,
		FirstTimestamp:      req.Timestamp,
		LastTimestamp:       req.Timestamp,
		LoggerSlug:          req.LoggerSlug,
		MessageKey:          req.MessageKey,
		Severity:            req.Severity,
		Initiator:           req.Initiator,
		OccasionFingerprint: req.Fingerprint,
		OccurrenceCount:     1,
		Context:             req.Context.Clone(),
	}
	s.nextID++
	s.events = append(s.events, ev)

	return CaptureResult{ID: ev.ID, Merged: false}, nil
}

// GetByID implements Store.
func (s *MemoryStore) GetByID(_ context.Context, id int64) (*event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.events {
		if s.events[i].ID == id {
			ev := cloneEvent(s.events[i])
			return &ev, nil
		}
	}
	return nil, fmt.Errorf("%w: event %d", event.ErrNotFound, id)
}

// Query implements Store.
func (s *MemoryStore) Query(_ context.Context, filter Filter, page, pageSize int) (QueryResult, error) {
	if err := filter.Validate(); err != nil {
		return QueryResult{}, err
	}
	if page < 1 || pageSize < 1 {
		return QueryResult{}, fmt.Errorf("%w: page and page_size must be positive", event.ErrValidation)
	}

	from, to, err := filter.Date.Resolve(time.Now().UTC())
	if err != nil {
		return QueryResult{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []event.Event
	for i := len(s.events) - 1; i >= 0; i-- {
		if matchesFilter(&s.events[i], filter, from, to) {
			matched = append(matched, cloneEvent(s.events[i]))
		}
	}

	total := int64(len(matched))
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))

	start := (page - 1) * pageSize
	if start >= len(matched) {
		return QueryResult{Events: []event.Event{}, TotalCount: total, TotalPages: totalPages}, nil
	}
	end := start + pageSize
	if end > len(matched) {
		end = len(matched)
	}

	return QueryResult{Events: matched[start:end], TotalCount: total, TotalPages: totalPages}, nil
}

// CountNewerThan implements Store.
func (s *MemoryStore) CountNewerThan(_ context.Context, filter Filter, maxID int64) (int64, error) {
	if err := filter.Validate(); err != nil {
		return 0, err
	}

	from, to, err := filter.Date.Resolve(time.Now().UTC())
	if err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for i := range s.events {
		if s.events[i].ID > maxID && matchesFilter(&s.events[i], filter, from, to) {
			count++
		}
	}
	return count, nil
}

// DeleteOlderThan implements Store.
func (s *MemoryStore) DeleteOlderThan(_ context.Context, olderThan time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.events[:0]
	var removed int64
	for i := range s.events {
		if s.events[i].LastTimestamp.Before(olderThan) {
			removed++
			continue
		}
		kept = append(kept, s.events[i])
	}
	s.events = kept
	return removed, nil
}

// Stats implements Store.
func (s *MemoryStore) Stats(_ context.Context) (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &Stats{
		EventsBySeverity: make(map[string]int64),
		EventsByLogger:   make(map[string]int64),
	}
	for i := range s.events {
		ev := &s.events[i]
		stats.TotalEvents++
		stats.TotalOccurrences += ev.OccurrenceCount
		stats.EventsBySeverity[string(ev.Severity)]++
		stats.EventsByLogger[ev.LoggerSlug]++

		if stats.OldestEvent == nil || ev.FirstTimestamp.Before(*stats.OldestEvent) {
			t := ev.FirstTimestamp
			stats.OldestEvent = &t
		}
		if stats.NewestEvent == nil || ev.LastTimestamp.After(*stats.NewestEvent) {
			t := ev.LastTimestamp
			stats.NewestEvent = &t
		}
	}
	return stats, nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	return nil
}

// withinWindow is symmetric: producers stamp timestamps before the store
// serializes captures, so an occurrence belonging to the same burst may
// carry a timestamp slightly before the candidate row's.
func withinWindow(last, now time.Time, window time.Duration) bool {
	d := now.Sub(last)
	if d < 0 {
		d = -d
	}
	return d <= window
}

func cloneEvent(ev event.Event) event.Event {
	ev.Context = ev.Context.Clone()
	return ev
}

// matchesFilter applies the query predicate to one event. Date bounds use
// overlap semantics: an event matches if any of its occurrence span
// [first, last] falls inside the range.
func matchesFilter(ev *event.Event, f Filter, from, to *time.Time) bool {
	if from != nil && ev.LastTimestamp.Before(*from) {
		return false
	}
	if to != nil && ev.FirstTimestamp.After(*to) {
		return false
	}

	if len(f.Severities) > 0 && !containsSeverity(f.Severities, ev.Severity) {
		return false
	}

	if len(f.MessageTypes) > 0 {
		ok := false
		for _, mt := range f.MessageTypes {
			if mt.LoggerSlug == ev.LoggerSlug && (mt.MessageKey == "" || mt.MessageKey == ev.MessageKey) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}

	if len(f.Actors) > 0 {
		identity := ev.Initiator.Identity()
		ok := false
		for _, a := range f.Actors {
			if a == identity {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}

	if f.FreeText != "" && !matchesFreeText(ev, f.FreeText) {
		return false
	}

	return true
}

func containsSeverity(severities []event.Severity, s event.Severity) bool {
	for _, sev := range severities {
		if sev == s {
			return true
		}
	}
	return false
}

func matchesFreeText(ev *event.Event, text string) bool {
	needle := strings.ToLower(text)

	if strings.Contains(strings.ToLower(ev.MessageKey), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(ev.Initiator.Login), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(ev.Initiator.Email), needle) {
		return true
	}
	// Keys and values both match, mirroring the LIKE over the persisted
	// JSON text in the DuckDB store.
	for k, v := range ev.Context {
		if strings.Contains(strings.ToLower(k), needle) {
			return true
		}
		if strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return false
}
