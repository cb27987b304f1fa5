// Chronolog - Audit Event Logging and Retrieval Engine
// Copyright 2026 Chronolog contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chronologhq/chronolog

// Package metrics provides Prometheus instrumentation for event capture
// and query operations.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Capture Metrics
	CapturesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chronolog_captures_total",
			Help: "Total number of captured occurrences",
		},
		[]string{"logger", "result"}, // result: "insert" or "merge"
	)

	CaptureErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chronolog_capture_errors_total",
			Help: "Total number of failed captures",
		},
		[]string{"logger"},
	)

	CaptureDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chronolog_capture_duration_seconds",
			Help:    "Duration of capture operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Query Metrics
	QueriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chronolog_queries_total",
			Help: "Total number of event queries",
		},
	)

	QueryErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chronolog_query_errors_total",
			Help: "Total number of failed event queries",
		},
	)

	QueryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chronolog_query_duration_seconds",
			Help:    "Duration of event queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Retention Metrics
	RetentionDeletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chronolog_retention_deleted_total",
			Help: "Total number of events removed by retention cleanup",
		},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chronolog_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chronolog_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
)

// RecordCapture records the outcome of one capture operation.
func RecordCapture(logger string, merged bool, duration time.Duration, err error) {
	if err != nil {
		CaptureErrors.WithLabelValues(logger).Inc()
		return
	}
	result := "insert"
	if merged {
		result = "merge"
	}
	CapturesTotal.WithLabelValues(logger, result).Inc()
	CaptureDuration.Observe(duration.Seconds())
}

// RecordQuery records the outcome of one query operation.
func RecordQuery(duration time.Duration, err error) {
	QueriesTotal.Inc()
	if err != nil {
		QueryErrors.Inc()
		return
	}
	QueryDuration.Observe(duration.Seconds())
}

// RecordRetention records events removed by a retention cleanup run.
func RecordRetention(removed int64) {
	RetentionDeletedTotal.Add(float64(removed))
}

// RecordAPIRequest records latency and status of one HTTP request.
func RecordAPIRequest(method, endpoint, status string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
