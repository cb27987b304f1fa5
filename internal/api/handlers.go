// Chronolog - Audit Event Logging and Retrieval Engine
// Copyright 2026 Chronolog contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chronologhq/chronolog

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/chronologhq/chronolog/internal/engine"
	"github.com/chronologhq/chronolog/internal/event"
	"github.com/chronologhq/chronolog/internal/store"
	"github.com/chronologhq/chronolog/internal/validation"
)

// Handler serves the event API over an engine.
type Handler struct {
	engine *engine.Engine
}

// NewHandler creates a Handler.
func NewHandler(e *engine.Engine) *Handler {
	return &Handler{engine: e}
}

// captureRequest is the POST /events body.
type captureRequest struct {
	LoggerSlug string `json:"logger_slug" validate:"required"`
	MessageKey string `json:"message_key" validate:"required"`
	Severity   string `json:"severity" validate:"omitempty,oneof=debug info notice warning error critical alert emergency"`
	Timestamp  string `json:"timestamp" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`

	Initiator struct {
		Kind   string `json:"kind"`
		UserID int64  `json:"user_id"`
		Login  string `json:"login"`
		Email  string `json:"email"`
		Tool   string `json:"tool"`
	} `json:"initiator"`

	Context    map[string]string `json:"context"`
	OccasionID string            `json:"occasion_id"`
}

// captureResponse reports where the occurrence landed.
type captureResponse struct {
	ID     int64 `json:"id"`
	Merged bool  `json:"merged"`
}

// CaptureEvent handles POST /api/v1/events.
func (h *Handler) CaptureEvent(w http.ResponseWriter, r *http.Request) {
	var req captureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, codeValidation, "invalid JSON body", nil)
		return
	}

	if err := validation.ValidateStruct(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, codeValidation, err.Error(), nil)
		return
	}

	var timestamp time.Time
	if req.Timestamp != "" {
		// Format already validated by the datetime tag.
		timestamp, _ = time.Parse(time.RFC3339, req.Timestamp)
	}

	evCtx := event.NewContext()
	for key, value := range req.Context {
		if err := evCtx.Set(key, value); err != nil {
			respondDomainError(w, r, err)
			return
		}
	}

	result, err := h.engine.Capture(r.Context(), engine.Capture{
		Timestamp:  timestamp,
		LoggerSlug: req.LoggerSlug,
		MessageKey: req.MessageKey,
		Severity:   event.Severity(req.Severity),
		Initiator: event.Initiator{
			Kind:   event.InitiatorKind(req.Initiator.Kind),
			UserID: req.Initiator.UserID,
			Login:  req.Initiator.Login,
			Email:  req.Initiator.Email,
			Tool:   req.Initiator.Tool,
		},
		Context:    evCtx,
		OccasionID: req.OccasionID,
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	status := http.StatusCreated
	if result.Merged {
		status = http.StatusOK
	}
	respondData(w, r, status, captureResponse{ID: result.ID, Merged: result.Merged})
}

// eventView decorates a stored event with its rendered display forms.
type eventView struct {
	event.Event
	Message        string `json:"message"`
	Details        string `json:"details,omitempty"`
	InitiatorLabel string `json:"initiator_label"`
}

// listResponse is one page of rendered events.
type listResponse struct {
	Events     []eventView `json:"events"`
	TotalCount int64       `json:"total_count"`
	TotalPages int         `json:"total_pages"`
	Page       int         `json:"page"`
}

func (h *Handler) view(ev *event.Event) eventView {
	return eventView{
		Event:          *ev,
		Message:        h.engine.RenderMessage(ev),
		Details:        h.engine.RenderDetails(ev),
		InitiatorLabel: ev.Initiator.Label(),
	}
}

// ListEvents handles GET /api/v1/events.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	page := parseIntParam(r, "page", 1)
	pageSize := parseIntParam(r, "page_size", 0)

	result, err := h.engine.Query(r.Context(), filter, page, pageSize)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	views := make([]eventView, len(result.Events))
	for i := range result.Events {
		views[i] = h.view(&result.Events[i])
	}

	respondData(w, r, http.StatusOK, listResponse{
		Events:     views,
		TotalCount: result.TotalCount,
		TotalPages: result.TotalPages,
		Page:       page,
	})
}

// GetEvent handles GET /api/v1/events/{id}.
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, codeValidation, "event id must be an integer", nil)
		return
	}

	ev, err := h.engine.GetByID(r.Context(), id)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, h.view(ev))
}

// CountNewer handles GET /api/v1/events/count-newer, the live-update poll:
// how many events matching the filter arrived after since_id.
func (h *Handler) CountNewer(w http.ResponseWriter, r *http.Request) {
	sinceID, err := strconv.ParseInt(r.URL.Query().Get("since_id"), 10, 64)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, codeValidation, "since_id must be an integer", nil)
		return
	}

	filter, err := parseFilter(r)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	count, err := h.engine.CountNewerThan(r.Context(), filter, sinceID)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, map[string]int64{"count": count})
}

// ListLoggers handles GET /api/v1/loggers, exposing registered vocabularies
// so clients can build type filters without hardcoding message keys.
func (h *Handler) ListLoggers(w http.ResponseWriter, r *http.Request) {
	respondData(w, r, http.StatusOK, h.engine.Registry().List())
}

// Stats handles GET /api/v1/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.engine.Stats(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, stats)
}

// Health handles GET /healthz.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondData(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// parseFilter builds a store.Filter from query parameters. Repeatable
// params: severity, type, actor.
func parseFilter(r *http.Request) (store.Filter, error) {
	q := r.URL.Query()
	var filter store.Filter

	for _, s := range q["severity"] {
		filter.Severities = append(filter.Severities, event.Severity(s))
	}
	for _, t := range q["type"] {
		mt, err := store.ParseMessageType(t)
		if err != nil {
			return store.Filter{}, err
		}
		filter.MessageTypes = append(filter.MessageTypes, mt)
	}
	filter.Actors = q["actor"]
	filter.FreeText = q.Get("search")

	if v := q.Get("date_from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return store.Filter{}, fmt.Errorf("%w: date_from must be RFC3339", event.ErrValidation)
		}
		filter.Date.From = &t
	}
	if v := q.Get("date_to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return store.Filter{}, fmt.Errorf("%w: date_to must be RFC3339", event.ErrValidation)
		}
		filter.Date.To = &t
	}
	if v := q.Get("last_days"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			return store.Filter{}, fmt.Errorf("%w: last_days must be an integer", event.ErrValidation)
		}
		filter.Date.LastDays = days
	}
	filter.Date.Month = q.Get("month")

	if err := filter.Validate(); err != nil {
		return store.Filter{}, err
	}
	return filter, nil
}

// parseIntParam reads an integer query param, falling back on absence or
// garbage. Range checks happen downstream.
func parseIntParam(r *http.Request, name string, fallback int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
