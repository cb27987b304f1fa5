// Chronolog - Audit Event Logging and Retrieval Engine
// Copyright 2026 Chronolog contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chronologhq/chronolog

package render

import (
	"html"
	"strings"

	"github.com/chronologhq/chronolog/internal/event"
)

// FieldKind selects how a diffed field's values are translated for display.
type FieldKind string

const (
	// FieldText renders stored values as-is.
	FieldText FieldKind = "text"

	// FieldCheckbox translates "true"/"false" into the field's labels
	// (Enable/Disable, Show/Don't show, ...).
	FieldCheckbox FieldKind = "checkbox"

	// FieldLocale translates locale codes into English language names and
	// the SITE_DEFAULT sentinel into "Site Default".
	FieldLocale FieldKind = "locale"

	// FieldFlag renders a single marker row when the key is present,
	// without showing values. Used for password changes.
	FieldFlag FieldKind = "flag"
)

// Field describes one context field a logger wants surfaced in diff output.
type Field struct {
	// Key is the context key; the diff values live at {Key}_prev / {Key}_new.
	// For FieldFlag, Key itself is checked for presence.
	Key string

	// Title is the row label.
	Title string

	Kind FieldKind

	// TrueLabel and FalseLabel replace checkbox values; TrueLabel doubles
	// as the marker text for FieldFlag rows.
	TrueLabel  string
	FalseLabel string
}

// Row is one rendered diff entry. Old may be empty for value-less rows
// (flags, created-user attributes).
type Row struct {
	Label string
	Old   string
	New   string
}

// Rows extracts displayable diff rows from a context given the logger's
// field descriptions. Fields whose diff keys are absent produce no row, so
// a logger can describe every field it ever diffs and only changed ones
// show up.
func Rows(ctx event.Context, fields []Field) []Row {
	var rows []Row

	for _, f := range fields {
		if f.Kind == FieldFlag {
			if v, ok := ctx.Get(f.Key); ok && v != "" && v != "0" {
				label := f.TrueLabel
				if label == "" {
					label = "Changed"
				}
				rows = append(rows, Row{Label: f.Title, New: label})
			}
			continue
		}

		oldValue, okOld := ctx.Get(f.Key + event.DiffPrevSuffix)
		newValue, okNew := ctx.Get(f.Key + event.DiffNewSuffix)
		if !okOld || !okNew {
			continue
		}

		rows = append(rows, Row{
			Label: f.Title,
			Old:   translate(f, oldValue),
			New:   translate(f, newValue),
		})
	}

	return rows
}

// translate applies the field's value-class translation. Total: every input
// maps to some label, the raw value being the fallback.
func translate(f Field, value string) string {
	switch f.Kind {
	case FieldCheckbox:
		return translateCheckbox(value, f.TrueLabel, f.FalseLabel)
	case FieldLocale:
		return translateLocale(value)
	default:
		return value
	}
}

// RenderDiffTable produces the two-column added/removed HTML table for a set
// of diff rows. Rows whose old and new values are equal are omitted; an
// empty result means no table markup at all.
func RenderDiffTable(rows []Row) string {
	var b strings.Builder

	for _, row := range rows {
		if row.Old == row.New && row.Old != "" {
			continue
		}

		b.WriteString("<tr><td>")
		b.WriteString(html.EscapeString(row.Label))
		b.WriteString("</td><td>")
		if row.New != "" {
			b.WriteString(`<ins class="chronolog-diff__added">`)
			b.WriteString(html.EscapeString(row.New))
			b.WriteString("</ins>")
		}
		if row.Old != "" {
			if row.New != "" {
				b.WriteByte(' ')
			}
			b.WriteString(`<del class="chronolog-diff__removed">`)
			b.WriteString(html.EscapeString(row.Old))
			b.WriteString("</del>")
		}
		b.WriteString("</td></tr>")
	}

	if b.Len() == 0 {
		return ""
	}
	return `<table class="chronolog-diff">` + b.String() + "</table>"
}
