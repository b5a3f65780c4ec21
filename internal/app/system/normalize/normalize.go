// Package normalize holds the canonical trimming and casing rules for
// submitted values, so every handler cleans input the same way.
package normalize

import "strings"

// Email trims whitespace and lowercases an address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Text trims surrounding whitespace from free text.
func Text(s string) string {
	return strings.TrimSpace(s)
}

// Status trims and lowercases an enumerated status value.
func Status(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Username trims a login name. Usernames are case-sensitive.
func Username(s string) string {
	return strings.TrimSpace(s)
}
