// Chronolog - Audit Event Logging and Retrieval Engine
// Copyright 2026 Chronolog contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chronologhq/chronolog

package registry

import "github.com/chronologhq/chronolog/internal/render"

// RegisterBuiltin adds the vocabularies that ship with the engine: the user
// account logger and the freeform simple logger.
func RegisterBuiltin(r *Registry) error {
	for _, info := range []LoggerInfo{userLogger(), simpleLogger()} {
		if err := r.Register(info); err != nil {
			return err
		}
	}
	return nil
}

// userLogger covers logins, profile edits, and account lifecycle events.
func userLogger() LoggerInfo {
	return LoggerInfo{
		Slug:        "user",
		Name:        "User Logger",
		Description: "Logs user logins, logouts, profile edits, and account changes",
		Messages: map[string]string{
			"user_login_failed":                  `Failed to login with username "{login}" (incorrect password entered)`,
			"user_unknown_login_failed":          `Failed to login with username "{failed_login}" (username does not exist)`,
			"user_logged_in":                     "Logged in",
			"user_unknown_logged_in":             "Unknown user logged in",
			"user_logged_out":                    "Logged out",
			"user_created":                       "Created user {created_user_login} ({created_user_email}) with role {created_user_role}",
			"user_updated_profile":               "Edited the profile for user {edited_user_login} ({edited_user_email})",
			"user_deleted":                       "Deleted user {deleted_user_login} ({deleted_user_email})",
			"user_password_reset":                "Reset their password",
			"user_requested_password_reset_link": `Requested a password reset link for user with login "{user_login}" and email "{user_email}"`,
			"user_session_destroy_others":        "Destroyed all login sessions except the current one",
			"user_session_destroy_everywhere":    `Destroyed all login sessions for user "{user_display_name}" ({user_email})`,
			"user_role_updated":                  `Changed role for user "{edited_user_login}" to "{new_role}" from "{old_role}"`,
			"user_application_password_created":  `Added application password "{application_password_name}"`,
			"user_application_password_deleted":  `Deleted application password "{application_password_name}"`,
		},
		SearchGroups: []SearchGroup{
			{
				Label: "User logins",
				MessageKeys: []string{
					"user_logged_in", "user_unknown_logged_in",
					"user_login_failed", "user_unknown_login_failed",
					"user_logged_out",
				},
			},
			{
				Label:       "User profiles updated",
				MessageKeys: []string{"user_updated_profile", "user_role_updated"},
			},
			{
				Label:       "Users created",
				MessageKeys: []string{"user_created"},
			},
			{
				Label:       "Users deleted",
				MessageKeys: []string{"user_deleted"},
			},
			{
				Label: "Password resets",
				MessageKeys: []string{
					"user_password_reset", "user_requested_password_reset_link",
				},
			},
			{
				Label: "Sessions destroyed",
				MessageKeys: []string{
					"user_session_destroy_others", "user_session_destroy_everywhere",
				},
			},
		},
		DiffFields: []render.Field{
			{Key: "user_email", Title: "Email", Kind: render.FieldText},
			{Key: "user_url", Title: "Website", Kind: render.FieldText},
			{Key: "display_name", Title: "Display name", Kind: render.FieldText},
			{Key: "first_name", Title: "First name", Kind: render.FieldText},
			{Key: "last_name", Title: "Last name", Kind: render.FieldText},
			{Key: "nickname", Title: "Nickname", Kind: render.FieldText},
			{Key: "description", Title: "Description", Kind: render.FieldText},
			{Key: "role", Title: "Role", Kind: render.FieldText},
			{
				Key: "rich_editing", Title: "Visual editor", Kind: render.FieldCheckbox,
				TrueLabel: "Enable", FalseLabel: "Disable",
			},
			{
				Key: "comment_shortcuts", Title: "Keyboard shortcuts", Kind: render.FieldCheckbox,
				TrueLabel: "Enable", FalseLabel: "Disable",
			},
			{
				Key: "show_admin_bar_front", Title: "Toolbar", Kind: render.FieldCheckbox,
				TrueLabel: "Show", FalseLabel: "Don't show",
			},
			{Key: "admin_color", Title: "Admin color scheme", Kind: render.FieldText},
			{Key: "locale", Title: "Language", Kind: render.FieldLocale},
			{
				Key: "password_changed", Title: "Password", Kind: render.FieldFlag,
				TrueLabel: "Changed",
			},
		},
	}
}

// simpleLogger accepts freeform messages; the message key itself is the
// display text, so no templates are registered.
func simpleLogger() LoggerInfo {
	return LoggerInfo{
		Slug:        "simple",
		Name:        "Simple Logger",
		Description: "Logs freeform messages from producers without a registered vocabulary",
		Messages:    map[string]string{},
	}
}
