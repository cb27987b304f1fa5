// Chronolog - Audit Event Logging and Retrieval Engine
// Copyright 2026 Chronolog contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chronologhq/chronolog

package event

import (
	"fmt"
	"strconv"
	"strings"
)

// InitiatorKind is the closed set of actor categories.
type InitiatorKind string

const (
	// InitiatorWebUser is an anonymous (unauthenticated) web visitor.
	InitiatorWebUser InitiatorKind = "web_user"

	// InitiatorUser is an authenticated actor with id, login, and email.
	InitiatorUser InitiatorKind = "wp_user"

	// InitiatorAutomation is a CLI or automation tool (wp-cli analogue).
	InitiatorAutomation InitiatorKind = "wp_cli"

	// InitiatorOther is used when the actor cannot be determined.
	InitiatorOther InitiatorKind = "other"
)

// Initiator is the actor responsible for an event.
// Kind selects the variant; the remaining fields are only meaningful for
// the variants documented on each one.
type Initiator struct {
	Kind InitiatorKind `json:"kind"`

	// UserID, Login, and Email identify an authenticated actor (InitiatorUser).
	UserID int64  `json:"user_id,omitempty"`
	Login  string `json:"login,omitempty"`
	Email  string `json:"email,omitempty"`

	// Tool names the automation tool (InitiatorAutomation).
	Tool string `json:"tool,omitempty"`
}

// WebUser returns an anonymous web visitor initiator.
func WebUser() Initiator {
	return Initiator{Kind: InitiatorWebUser}
}

// User returns an authenticated actor initiator.
func User(id int64, login, email string) Initiator {
	return Initiator{Kind: InitiatorUser, UserID: id, Login: login, Email: email}
}

// Automation returns a CLI/automation initiator.
func Automation(tool string) Initiator {
	return Initiator{Kind: InitiatorAutomation, Tool: tool}
}

// Unknown returns an initiator for events whose actor cannot be determined.
func Unknown() Initiator {
	return Initiator{Kind: InitiatorOther}
}

// Valid reports whether the initiator kind is one of the closed set.
func (i Initiator) Valid() bool {
	switch i.Kind {
	case InitiatorWebUser, InitiatorUser, InitiatorAutomation, InitiatorOther:
		return true
	default:
		return false
	}
}

// Identity returns the stable string identity used for actor filtering and
// implicit fingerprinting. Authenticated actors are identified by user id so
// renames do not split their history.
func (i Initiator) Identity() string {
	switch i.Kind {
	case InitiatorUser:
		return string(InitiatorUser) + ":" + strconv.FormatInt(i.UserID, 10)
	case InitiatorAutomation:
		if i.Tool != "" {
			return string(InitiatorAutomation) + ":" + i.Tool
		}
		return string(InitiatorAutomation)
	case InitiatorWebUser:
		return string(InitiatorWebUser)
	default:
		return string(InitiatorOther)
	}
}

// Label returns the human-readable form used when rendering events.
func (i Initiator) Label() string {
	switch i.Kind {
	case InitiatorUser:
		if i.Login != "" && i.Email != "" {
			return fmt.Sprintf("%s (%s)", i.Login, i.Email)
		}
		if i.Login != "" {
			return i.Login
		}
		return fmt.Sprintf("User %d", i.UserID)
	case InitiatorAutomation:
		if i.Tool != "" {
			return i.Tool
		}
		return "WP-CLI"
	case InitiatorWebUser:
		return "Anonymous web user"
	default:
		return "Unknown"
	}
}

// ParseIdentity parses an identity string produced by Identity back into a
// minimal Initiator. Details beyond the identity (login, email) are lost.
func ParseIdentity(s string) (Initiator, error) {
	kind, rest, _ := strings.Cut(s, ":")
	switch InitiatorKind(kind) {
	case InitiatorWebUser:
		return WebUser(), nil
	case InitiatorOther:
		return Unknown(), nil
	case InitiatorAutomation:
		return Automation(rest), nil
	case InitiatorUser:
		id, err := strconv.ParseInt(rest, 10, 64)
		if err != nil {
			return Initiator{}, fmt.Errorf("parse initiator identity %q: %w", s, err)
		}
		return Initiator{Kind: InitiatorUser, UserID: id}, nil
	default:
		return Initiator{}, fmt.Errorf("parse initiator identity %q: unknown kind", s)
	}
}
