// Chronolog - Audit Event Logging and Retrieval Engine
// Copyright 2026 Chronolog contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chronologhq/chronolog

// Package registry holds the message vocabulary of every known event
// producer: which message keys a logger emits, the templates that render
// them, and the diff fields it surfaces. Rendering looks templates up here;
// events whose logger or key is unknown still store and query fine, they
// just render from the raw message key.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/chronologhq/chronolog/internal/event"
	"github.com/chronologhq/chronolog/internal/render"
)

// SearchGroup is a labeled subset of a logger's message keys, used to build
// the "types" filter UI without clients hardcoding vocabularies.
type SearchGroup struct {
	Label       string   `json:"label"`
	MessageKeys []string `json:"message_keys"`
}

// LoggerInfo describes one producer's vocabulary.
type LoggerInfo struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	// Messages maps message keys to their display templates.
	Messages map[string]string `json:"messages"`

	SearchGroups []SearchGroup `json:"search_groups,omitempty"`

	// DiffFields describes the context fields this logger diffs, in
	// display order.
	DiffFields []render.Field `json:"-"`

	// SafeKeys lists context keys whose values render without escaping.
	// Only keys the producer fully controls belong here.
	SafeKeys []string `json:"-"`
}

// Registry is a concurrency-safe collection of logger vocabularies.
type Registry struct {
	mu      sync.RWMutex
	loggers map[string]LoggerInfo
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{loggers: make(map[string]LoggerInfo)}
}

// Register adds a logger vocabulary. Registering a slug twice is a
// programming error and fails loudly.
func (r *Registry) Register(info LoggerInfo) error {
	if info.Slug == "" {
		return fmt.Errorf("%w: logger slug is required", event.ErrValidation)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.loggers[info.Slug]; exists {
		return fmt.Errorf("%w: logger %q already registered", event.ErrValidation, info.Slug)
	}
	r.loggers[info.Slug] = info
	return nil
}

// Get returns the vocabulary for a slug.
func (r *Registry) Get(slug string) (LoggerInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	info, ok := r.loggers[slug]
	return info, ok
}

// List returns all registered loggers sorted by slug.
func (r *Registry) List() []LoggerInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	loggers := make([]LoggerInfo, 0, len(r.loggers))
	for _, info := range r.loggers {
		loggers = append(loggers, info)
	}
	sort.Slice(loggers, func(i, j int) bool { return loggers[i].Slug < loggers[j].Slug })
	return loggers
}

// Template returns the display template for a logger's message key.
func (r *Registry) Template(slug, messageKey string) (string, bool) {
	info, ok := r.Get(slug)
	if !ok {
		return "", false
	}
	template, ok := info.Messages[messageKey]
	return template, ok
}

// RenderMessage renders an event's display message. Unknown loggers or keys
// fall back to the raw message key so old stored events always render
// something meaningful.
func (r *Registry) RenderMessage(ev *event.Event) string {
	info, ok := r.Get(ev.LoggerSlug)
	if !ok {
		return render.Render(ev.MessageKey, ev.Context)
	}

	template, ok := info.Messages[ev.MessageKey]
	if !ok {
		return render.Render(ev.MessageKey, ev.Context)
	}

	if len(info.SafeKeys) > 0 {
		safe := make(map[string]struct{}, len(info.SafeKeys))
		for _, k := range info.SafeKeys {
			safe[k] = struct{}{}
		}
		return render.RenderWithSafeKeys(template, ev.Context, safe)
	}
	return render.Render(template, ev.Context)
}

// RenderDetails renders an event's diff table from the logger's declared
// diff fields. Events without diffed context render to an empty string.
func (r *Registry) RenderDetails(ev *event.Event) string {
	info, ok := r.Get(ev.LoggerSlug)
	if !ok || len(info.DiffFields) == 0 {
		return ""
	}
	return render.RenderDiffTable(render.Rows(ev.Context, info.DiffFields))
}
