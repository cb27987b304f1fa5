// Chronolog - Audit Event Logging and Retrieval Engine
// Copyright 2026 Chronolog contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chronologhq/chronolog

package event

// Severity is the log-level classification of an event, following the
// syslog levels from RFC 5424.
type Severity string

const (
	SeverityDebug     Severity = "debug"
	SeverityInfo      Severity = "info"
	SeverityNotice    Severity = "notice"
	SeverityWarning   Severity = "warning"
	SeverityError     Severity = "error"
	SeverityCritical  Severity = "critical"
	SeverityAlert     Severity = "alert"
	SeverityEmergency Severity = "emergency"
)

// severityOrder maps each severity to its rank, debug lowest.
var severityOrder = map[Severity]int{
	SeverityDebug:     0,
	SeverityInfo:      1,
	SeverityNotice:    2,
	SeverityWarning:   3,
	SeverityError:     4,
	SeverityCritical:  5,
	SeverityAlert:     6,
	SeverityEmergency: 7,
}

// Valid reports whether s is one of the eight recognized severities.
func (s Severity) Valid() bool {
	_, ok := severityOrder[s]
	return ok
}

// AtLeast reports whether s is at least as severe as min.
// Unknown severities rank below debug.
func (s Severity) AtLeast(min Severity) bool {
	return severityOrder[s] >= severityOrder[min]
}

// Severities returns all valid severities in ascending order.
func Severities() []Severity {
	return []Severity{
		SeverityDebug, SeverityInfo, SeverityNotice, SeverityWarning,
		SeverityError, SeverityCritical, SeverityAlert, SeverityEmergency,
	}
}
