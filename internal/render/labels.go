// Chronolog - Audit Event Logging and Retrieval Engine
// Copyright 2026 Chronolog contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chronologhq/chronolog

package render

// Value-to-label translation for diff rendering. This is a pure lookup
// table, not business logic: every input maps to some label, falling back
// to the raw value.

// SiteDefaultSentinel marks a value inheriting the site-wide default.
// Producers store it when a per-user setting is cleared.
const SiteDefaultSentinel = "SITE_DEFAULT"

// siteDefaultLabel is the human form of the sentinel.
const siteDefaultLabel = "Site Default"

// localeNames maps locale codes to their English language names.
// Codes outside the table render as-is.
var localeNames = map[string]string{
	"da_DK": "Danish",
	"de_DE": "German",
	"en_AU": "English (Australia)",
	"en_GB": "English (UK)",
	"en_US": "English",
	"es_ES": "Spanish",
	"fi":    "Finnish",
	"fr_FR": "French",
	"it_IT": "Italian",
	"ja":    "Japanese",
	"nb_NO": "Norwegian",
	"nl_NL": "Dutch",
	"pl_PL": "Polish",
	"pt_BR": "Portuguese (Brazil)",
	"ru_RU": "Russian",
	"sv_SE": "Swedish",
	"zh_CN": "Chinese (China)",
}

// translateLocale turns a locale code into "Language (code)", the sentinel
// into its label, and anything unknown into the raw value.
func translateLocale(value string) string {
	if value == SiteDefaultSentinel {
		return siteDefaultLabel
	}
	if name, ok := localeNames[value]; ok {
		return name + " (" + value + ")"
	}
	return value
}

// translateCheckbox maps boolean-like stored values to the field's labels.
// Anything that is not exactly "true" counts as false, matching how the
// producers store unchecked boxes.
func translateCheckbox(value, trueLabel, falseLabel string) string {
	if value == "true" {
		if trueLabel != "" {
			return trueLabel
		}
		return "Enabled"
	}
	if falseLabel != "" {
		return falseLabel
	}
	return "Disabled"
}
