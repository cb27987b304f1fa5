// Chronolog - Audit Event Logging and Retrieval Engine
// Copyright 2026 Chronolog contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chronologhq/chronolog

package render

import (
	"strings"
	"testing"

	"github.com/chronologhq/chronolog/internal/event"
)

func TestRender(t *testing.T) {
	ctx := event.NewContext()
	_ = ctx.Set("created_user_login", "bob")
	_ = ctx.Set("created_user_role", "editor")

	tests := []struct {
		name     string
		template string
		want     string
	}{
		{
			"basic interpolation",
			"Created user {created_user_login} with role {created_user_role}",
			"Created user bob with role editor",
		},
		{
			"unresolved placeholder renders empty",
			"Deleted user {deleted_user_login}",
			"Deleted user ",
		},
		{
			"no placeholders",
			"Logged out",
			"Logged out",
		},
		{
			"stray brace is literal",
			"a { b } c",
			"a { b } c",
		},
		{
			"unterminated placeholder is literal",
			"broken {login",
			"broken {login",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Render(tt.template, ctx); got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRender_EscapesValues(t *testing.T) {
	ctx := event.NewContext()
	_ = ctx.Set("login", `<script>alert("x")</script>`)

	got := Render("Failed to login with username {login}", ctx)
	if strings.Contains(got, "<script>") {
		t.Errorf("Value was not escaped: %q", got)
	}
	if !strings.Contains(got, "&lt;script&gt;") {
		t.Errorf("Expected escaped markup, got %q", got)
	}
}

func TestRenderWithSafeKeys(t *testing.T) {
	ctx := event.NewContext()
	ctx.SetMeta("_edit_profile_link", `<a href="/users/1">alice</a>`)

	safe := map[string]struct{}{"_edit_profile_link": {}}
	got := RenderWithSafeKeys("Edited {_edit_profile_link}", ctx, safe)
	if got != `Edited <a href="/users/1">alice</a>` {
		t.Errorf("Safe key was escaped: %q", got)
	}

	// Without the allow-list the same value must be escaped.
	got = Render("Edited {_edit_profile_link}", ctx)
	if strings.Contains(got, "<a ") {
		t.Errorf("Unsafe render emitted raw markup: %q", got)
	}
}
