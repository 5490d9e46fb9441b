// Package sanitize provides text sanitization utilities for inbound payloads.
package sanitize

import (
	"regexp"
	"strings"
)

// htmlTagRegex matches HTML tags
var htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

// StripHTML removes all HTML tags from a string, making it safe for text-only storage.
func StripHTML(s string) string {
	result := htmlTagRegex.ReplaceAllString(s, "")
	// Decode common HTML entities
	result = strings.ReplaceAll(result, "&lt;", "<")
	result = strings.ReplaceAll(result, "&gt;", ">")
	result = strings.ReplaceAll(result, "&amp;", "&")
	result = strings.ReplaceAll(result, "&quot;", "\"")
	result = strings.ReplaceAll(result, "&#39;", "'")
	// Re-strip after entity decode to catch encoded tags
	result = htmlTagRegex.ReplaceAllString(result, "")
	return strings.TrimSpace(result)
}

// Text sanitizes a string for safe text storage by stripping HTML
// and trimming whitespace. Use for user-provided free-form fields.
func Text(s string) string {
	return StripHTML(s)
}

// FirstName reduces a name to its first whitespace-delimited token. Inbound
// CRM payloads can carry full names with surnames or clinical context; only
// the first token is retained.
func FirstName(name string) string {
	fields := strings.Fields(StripHTML(name))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
