// Chronolog - Audit Event Logging and Retrieval Engine
// Copyright 2026 Chronolog contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chronologhq/chronolog

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/chronologhq/chronolog/internal/event"
	"github.com/chronologhq/chronolog/internal/logging"
)

// DuckDBStore implements Store using DuckDB for persistent storage.
type DuckDBStore struct {
	db    *sql.DB
	locks stripedLock
	now   func() time.Time
}

// NewDuckDBStore creates a DuckDB-backed event store. The caller is
// responsible for calling CreateTable during initialization.
func NewDuckDBStore(db *sql.DB) *DuckDBStore {
	return &DuckDBStore{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// CreateTable creates the events table and indexes if they don't exist.
func (s *DuckDBStore) CreateTable(ctx context.Context) error {
	query := `
		CREATE SEQUENCE IF NOT EXISTS events_id_seq;

		CREATE TABLE IF NOT EXISTS events (
			id BIGINT PRIMARY KEY,
			timestamp_first TIMESTAMPTZ NOT NULL,
			timestamp_last TIMESTAMPTZ NOT NULL,
			logger_slug TEXT NOT NULL,
			message_key TEXT NOT NULL,
			severity TEXT NOT NULL,

			-- Initiator
			initiator_kind TEXT NOT NULL,
			initiator_identity TEXT NOT NULL,
			initiator_user_id BIGINT,
			initiator_login TEXT,
			initiator_email TEXT,
			initiator_tool TEXT,

			-- Occasion grouping
			occasion_fingerprint TEXT,
			occurrence_count BIGINT NOT NULL DEFAULT 1,

			context JSON
		);

		-- Merge candidate lookup and common query patterns
		CREATE INDEX IF NOT EXISTS idx_events_logger ON events(logger_slug, id DESC);
		CREATE INDEX IF NOT EXISTS idx_events_message ON events(logger_slug, message_key);
		CREATE INDEX IF NOT EXISTS idx_events_severity ON events(severity);
		CREATE INDEX IF NOT EXISTS idx_events_identity ON events(initiator_identity);
		CREATE INDEX IF NOT EXISTS idx_events_last ON events(timestamp_last DESC);
	`

	statements := strings.Split(query, ";")
	for _, stmt := range statements {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}

	logging.Info().Msg("Events table created/verified")
	return nil
}

// Capture implements Store. The lookup-then-merge-or-insert sequence is
// serialized per fingerprint via striped locks, so concurrent captures of
// the same occasion cannot both insert.
func (s *DuckDBStore) Capture(ctx context.Context, req CaptureRequest) (CaptureResult, error) {
	lockKey := req.Fingerprint
	if lockKey == "" {
		lockKey = req.LoggerSlug
	}
	unlock := s.locks.Lock(lockKey)
	defer unlock()

	if req.Fingerprint != "" && req.Window > 0 {
		id, merged, err := s.tryMerge(ctx, req)
		if err != nil {
			return CaptureResult{}, err
		}
		if merged {
			return CaptureResult{ID: id, Merged: true}, nil
		}
	}

	id, err := s.insert(ctx, req)
	if err != nil {
		return CaptureResult{}, err
	}
	return CaptureResult{ID: id, Merged: false}, nil
}

// tryMerge checks whether the most recent row for the logger is a merge
// candidate and applies the merge in a single UPDATE if so. Only the most
// recent row is considered; an interleaved event breaks the run.
func (s *DuckDBStore) tryMerge(ctx context.Context, req CaptureRequest) (int64, bool, error) {
	query := `
		SELECT id, occasion_fingerprint, timestamp_last
		FROM events
		WHERE logger_slug = ?
		ORDER BY id DESC
		LIMIT 1
	`

	var (
		id          int64
		fingerprint sql.NullString
		last        time.Time
	)
	err := s.db.QueryRowContext(ctx, query, req.LoggerSlug).Scan(&id, &fingerprint, &last)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("%w: merge candidate lookup: %w", event.ErrStore, err)
	}

	if !fingerprint.Valid || fingerprint.String != req.Fingerprint {
		return 0, false, nil
	}
	if !withinWindow(last.UTC(), req.Timestamp, req.Window) {
		return 0, false, nil
	}

	contextJSON, err := marshalContext(req.Context)
	if err != nil {
		return 0, false, err
	}

	// Count, timestamps, and context move together in one statement so
	// readers never observe a half-applied merge. GREATEST/LEAST keep
	// timestamp_first <= timestamp_last when occurrences arrive slightly
	// out of order.
	update := `
		UPDATE events
		SET occurrence_count = occurrence_count + 1,
		    timestamp_last = GREATEST(timestamp_last, ?),
		    timestamp_first = LEAST(timestamp_first, ?),
		    context = ?
		WHERE id = ?
	`
	if _, err := s.db.ExecContext(ctx, update, req.Timestamp, req.Timestamp, contextJSON, id); err != nil {
		return 0, false, fmt.Errorf("%w: merge occurrence into event %d: %w", event.ErrStore, id, err)
	}

	return id, true, nil
}

// insert adds a new row and returns its sequence-assigned id.
func (s *DuckDBStore) insert(ctx context.Context, req CaptureRequest) (int64, error) {
	contextJSON, err := marshalContext(req.Context)
	if err != nil {
		return 0, err
	}

	query := `
		INSERT INTO events (
			id, timestamp_first, timestamp_last, logger_slug, message_key, severity,
			initiator_kind, initiator_identity, initiator_user_id, initiator_login, initiator_email, initiator_tool,
			occasion_fingerprint, occurrence_count, context
		) VALUES (
			nextval('events_id_seq'), ?, ?, ?, ?, ?,
			?, ?, ?, ?, ?, ?,
			?, 1, ?
		)
		RETURNING id
	`

	var id int64
	err = s.db.QueryRowContext(ctx, query,
		req.Timestamp,
		req.Timestamp,
		req.LoggerSlug,
		req.MessageKey,
		string(req.Severity),
		string(req.Initiator.Kind),
		req.Initiator.Identity(),
		nullableInt64(req.Initiator.UserID),
		nullableString(req.Initiator.Login),
		nullableString(req.Initiator.Email),
		nullableString(req.Initiator.Tool),
		nullableString(req.Fingerprint),
		contextJSON,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%w: insert event: %w", event.ErrStore, err)
	}

	return id, nil
}

// GetByID implements Store.
func (s *DuckDBStore) GetByID(ctx context.Context, id int64) (*event.Event, error) {
	query := selectColumns + ` FROM events WHERE id = ?`

	row := s.db.QueryRowContext(ctx, query, id)
	ev, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: event %d", event.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: get event %d: %w", event.ErrStore, id, err)
	}

	return ev, nil
}

// Query implements Store.
func (s *DuckDBStore) Query(ctx context.Context, filter Filter, page, pageSize int) (QueryResult, error) {
	if err := filter.Validate(); err != nil {
		return QueryResult{}, err
	}
	if page < 1 || pageSize < 1 {
		return QueryResult{}, fmt.Errorf("%w: page and page_size must be positive", event.ErrValidation)
	}

	where, args, err := s.buildFilterConditions(filter)
	if err != nil {
		return QueryResult{}, err
	}

	var total int64
	countQuery := "SELECT COUNT(*) FROM events" + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return QueryResult{}, fmt.Errorf("%w: count events: %w", event.ErrStore, err)
	}

	// Descending id is the capture order; stable across pages because ids
	// never change once assigned.
	query := selectColumns + " FROM events" + where + " ORDER BY id DESC LIMIT ? OFFSET ?"
	pageArgs := append(append([]interface{}{}, args...), pageSize, (page-1)*pageSize)

	rows, err := s.db.QueryContext(ctx, query, pageArgs...)
	if err != nil {
		return QueryResult{}, fmt.Errorf("%w: query events: %w", event.ErrStore, err)
	}
	defer rows.Close()

	events := []event.Event{}
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			logging.Warn().Err(err).Msg("Failed to scan event row")
			continue
		}
		events = append(events, *ev)
	}
	if err := rows.Err(); err != nil {
		return QueryResult{}, fmt.Errorf("%w: iterate events: %w", event.ErrStore, err)
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return QueryResult{Events: events, TotalCount: total, TotalPages: totalPages}, nil
}

// CountNewerThan implements Store.
func (s *DuckDBStore) CountNewerThan(ctx context.Context, filter Filter, maxID int64) (int64, error) {
	if err := filter.Validate(); err != nil {
		return 0, err
	}

	where, args, err := s.buildFilterConditions(filter)
	if err != nil {
		return 0, err
	}

	if where == "" {
		where = " WHERE id > ?"
	} else {
		where += " AND id > ?"
	}
	args = append(args, maxID)

	var count int64
	query := "SELECT COUNT(*) FROM events" + where
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: count newer events: %w", event.ErrStore, err)
	}
	return count, nil
}

// DeleteOlderThan implements Store.
func (s *DuckDBStore) DeleteOlderThan(ctx context.Context, olderThan time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM events WHERE timestamp_last < ?", olderThan)
	if err != nil {
		return 0, fmt.Errorf("%w: delete old events: %w", event.ErrStore, err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: rows affected: %w", event.ErrStore, err)
	}
	return removed, nil
}

// Stats implements Store.
func (s *DuckDBStore) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		EventsBySeverity: make(map[string]int64),
		EventsByLogger:   make(map[string]int64),
	}

	query := `
		SELECT COUNT(*), COALESCE(SUM(occurrence_count), 0),
		       MIN(timestamp_first), MAX(timestamp_last)
		FROM events
	`
	var oldest, newest sql.NullTime
	err := s.db.QueryRowContext(ctx, query).Scan(&stats.TotalEvents, &stats.TotalOccurrences, &oldest, &newest)
	if err != nil {
		return nil, fmt.Errorf("%w: event totals: %w", event.ErrStore, err)
	}
	if oldest.Valid {
		t := oldest.Time.UTC()
		stats.OldestEvent = &t
	}
	if newest.Valid {
		t := newest.Time.UTC()
		stats.NewestEvent = &t
	}

	if stats.EventsBySeverity, err = s.countByColumn(ctx, "severity"); err != nil {
		return nil, err
	}
	if stats.EventsByLogger, err = s.countByColumn(ctx, "logger_slug"); err != nil {
		return nil, err
	}

	return stats, nil
}

// Close implements Store. The *sql.DB is shared, so closing is the owner's
// responsibility; this only exists to satisfy the interface symmetrically
// with MemoryStore.
func (s *DuckDBStore) Close() error {
	return nil
}

// countByColumn executes a GROUP BY query and returns counts per value.
func (s *DuckDBStore) countByColumn(ctx context.Context, column string) (map[string]int64, error) {
	result := make(map[string]int64)
	query := fmt.Sprintf("SELECT %s, COUNT(*) FROM events GROUP BY %s", column, column)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %s counts: %w", event.ErrStore, column, err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var count int64
		if err := rows.Scan(&key, &count); err == nil {
			result[key] = count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating %s counts: %w", event.ErrStore, column, err)
	}
	return result, nil
}

// buildFilterConditions translates a Filter into a WHERE clause. The same
// clause backs Query and CountNewerThan so both apply an identical predicate.
func (s *DuckDBStore) buildFilterConditions(filter Filter) (string, []interface{}, error) {
	var conditions []string
	var args []interface{}

	from, to, err := filter.Date.Resolve(s.now())
	if err != nil {
		return "", nil, err
	}
	// Overlap semantics: the occurrence span [first, last] must intersect
	// the requested range.
	if from != nil {
		conditions = append(conditions, "timestamp_last >= ?")
		args = append(args, *from)
	}
	if to != nil {
		conditions = append(conditions, "timestamp_first <= ?")
		args = append(args, *to)
	}

	if cond := buildSliceCondition("severity", filter.Severities, &args); cond != "" {
		conditions = append(conditions, cond)
	}
	if cond := buildSliceCondition("initiator_identity", filter.Actors, &args); cond != "" {
		conditions = append(conditions, cond)
	}

	if len(filter.MessageTypes) > 0 {
		var alternatives []string
		for _, mt := range filter.MessageTypes {
			if mt.MessageKey == "" {
				alternatives = append(alternatives, "logger_slug = ?")
				args = append(args, mt.LoggerSlug)
			} else {
				alternatives = append(alternatives, "(logger_slug = ? AND message_key = ?)")
				args = append(args, mt.LoggerSlug, mt.MessageKey)
			}
		}
		conditions = append(conditions, "("+strings.Join(alternatives, " OR ")+")")
	}

	if filter.FreeText != "" {
		needle := "%" + strings.ToLower(filter.FreeText) + "%"
		conditions = append(conditions, `(
			LOWER(message_key) LIKE ?
			OR LOWER(COALESCE(initiator_login, '')) LIKE ?
			OR LOWER(COALESCE(initiator_email, '')) LIKE ?
			OR LOWER(CAST(context AS VARCHAR)) LIKE ?
		)`)
		args = append(args, needle, needle, needle, needle)
	}

	if len(conditions) == 0 {
		return "", args, nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args, nil
}

// buildSliceCondition creates a SQL IN condition for a slice of string values.
func buildSliceCondition[T ~string](column string, values []T, args *[]interface{}) string {
	if len(values) == 0 {
		return ""
	}
	placeholders := make([]string, len(values))
	for i, v := range values {
		placeholders[i] = "?"
		*args = append(*args, string(v))
	}
	return fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ","))
}

// selectColumns is the shared SELECT list; JSON columns are cast to VARCHAR
// for proper scanning.
const selectColumns = `
	SELECT
		id, timestamp_first, timestamp_last, logger_slug, message_key, severity,
		initiator_kind, initiator_user_id, initiator_login, initiator_email, initiator_tool,
		occasion_fingerprint, occurrence_count,
		CAST(context AS VARCHAR) as context`

// rowScanner abstracts *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanEvent reconstructs an event from a row produced by selectColumns.
func scanEvent(row rowScanner) (*event.Event, error) {
	var (
		ev          event.Event
		kind        string
		userID      sql.NullInt64
		login       sql.NullString
		email       sql.NullString
		tool        sql.NullString
		fingerprint sql.NullString
		contextJSON sql.NullString
	)

	err := row.Scan(
		&ev.ID,
		&ev.FirstTimestamp,
		&ev.LastTimestamp,
		&ev.LoggerSlug,
		&ev.MessageKey,
		&ev.Severity,
		&kind,
		&userID,
		&login,
		&email,
		&tool,
		&fingerprint,
		&ev.OccurrenceCount,
		&contextJSON,
	)
	if err != nil {
		return nil, err
	}

	ev.FirstTimestamp = ev.FirstTimestamp.UTC()
	ev.LastTimestamp = ev.LastTimestamp.UTC()
	ev.Initiator = event.Initiator{
		Kind:   event.InitiatorKind(kind),
		UserID: userID.Int64,
		Login:  login.String,
		Email:  email.String,
		Tool:   tool.String,
	}
	ev.OccasionFingerprint = fingerprint.String

	ev.Context = event.NewContext()
	if contextJSON.Valid && contextJSON.String != "" {
		if err := json.Unmarshal([]byte(contextJSON.String), &ev.Context); err != nil {
			return nil, fmt.Errorf("unmarshal event context: %w", err)
		}
	}

	return &ev, nil
}

// marshalContext serializes a context to its JSON column representation.
func marshalContext(ctx event.Context) (string, error) {
	if len(ctx) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: marshal event context: %w", event.ErrStore, err)
	}
	return string(data), nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullableInt64(v int64) interface{} {
	if v == 0 {
		return nil
	}
	return v
}
