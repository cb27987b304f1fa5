// Chronolog - Audit Event Logging and Retrieval Engine
// Copyright 2026 Chronolog contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chronologhq/chronolog

// Package api exposes the HTTP surface: event capture, filtered queries,
// live-update counts, vocabulary listing, and stats.
package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/chronologhq/chronolog/internal/event"
	"github.com/chronologhq/chronolog/internal/logging"
)

// Error codes returned in the response envelope.
const (
	codeValidation  = "VALIDATION_ERROR"
	codeReservedKey = "RESERVED_KEY"
	codeNotFound    = "NOT_FOUND"
	codeStore       = "STORE_ERROR"
	codeInternal    = "INTERNAL_ERROR"
)

// apiResponse is the envelope for every JSON response.
type apiResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data,omitempty"`
	Error    *apiError   `json:"error,omitempty"`
	Metadata metadata    `json:"metadata"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type metadata struct {
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// respondJSON sends a success or error envelope with proper headers.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, response *apiResponse) {
	response.Metadata.Timestamp = time.Now().UTC()
	response.Metadata.RequestID = logging.RequestIDFromContext(r.Context())

	w.Header().Set("Content-Type", "application/json")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondData sends a success envelope.
func respondData(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	respondJSON(w, r, status, &apiResponse{Status: "success", Data: data})
}

// respondError sends an error envelope.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	if err != nil {
		logging.Error().
			Str("code", code).
			Str("error", sanitizeLogValue(err.Error())).
			Msg("API Error")
	}
	respondJSON(w, r, status, &apiResponse{
		Status: "error",
		Error:  &apiError{Code: code, Message: message},
	})
}

// respondDomainError maps engine/store error kinds onto HTTP statuses.
func respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, event.ErrReservedKey):
		respondError(w, r, http.StatusBadRequest, codeReservedKey, err.Error(), nil)
	case errors.Is(err, event.ErrValidation):
		respondError(w, r, http.StatusBadRequest, codeValidation, err.Error(), nil)
	case errors.Is(err, event.ErrNotFound):
		respondError(w, r, http.StatusNotFound, codeNotFound, err.Error(), nil)
	case errors.Is(err, event.ErrStore):
		respondError(w, r, http.StatusInternalServerError, codeStore, "storage operation failed", err)
	default:
		respondError(w, r, http.StatusInternalServerError, codeInternal, "internal error", err)
	}
}

// sanitizeLogValue replaces control characters so request-derived strings
// cannot forge log entries.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}
