// Chronolog - Audit Event Logging and Retrieval Engine
// Copyright 2026 Chronolog contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chronologhq/chronolog

// Package render turns stored events into human-readable output: message
// template interpolation and before/after diff tables. Everything here is a
// pure function of the stored event; rendering is re-run on every read and
// never written back.
package render

import (
	"html"
	"strings"

	"github.com/chronologhq/chronolog/internal/event"
)

// Render replaces {key} placeholders in template with the corresponding
// context values. Values are HTML-escaped; placeholders absent from the
// context render as empty string so missing data degrades output instead of
// failing it.
func Render(template string, ctx event.Context) string {
	return RenderWithSafeKeys(template, ctx, nil)
}

// RenderWithSafeKeys is Render with an allow-list of context keys whose
// values are inserted without escaping. Used for engine-built fragments such
// as pre-rendered profile links; producer-supplied values are never safe.
func RenderWithSafeKeys(template string, ctx event.Context, safeKeys map[string]struct{}) string {
	var b strings.Builder
	b.Grow(len(template))

	for i := 0; i < len(template); {
		open := strings.IndexByte(template[i:], '{')
		if open < 0 {
			b.WriteString(template[i:])
			break
		}
		open += i
		b.WriteString(template[i:open])

		key, next, ok := scanPlaceholder(template, open)
		if !ok {
			// Not a placeholder; emit the brace literally.
			b.WriteByte('{')
			i = open + 1
			continue
		}

		if value, present := ctx.Get(key); present {
			if _, safe := safeKeys[key]; safe {
				b.WriteString(value)
			} else {
				b.WriteString(html.EscapeString(value))
			}
		}
		i = next
	}

	return b.String()
}

// scanPlaceholder reads a {key} placeholder starting at the brace at
// position open. Returns the key, the position after the closing brace, and
// whether a well-formed placeholder was found.
func scanPlaceholder(template string, open int) (string, int, bool) {
	i := open + 1
	for i < len(template) && isKeyChar(template[i]) {
		i++
	}
	if i == open+1 || i >= len(template) || template[i] != '}' {
		return "", 0, false
	}
	return template[open+1 : i], i + 1, true
}

func isKeyChar(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}
