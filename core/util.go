package core

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// CleanString trims all leading and trailing whitespace in `s`, NFC-normalizes it and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = norm.NFC.String(strings.TrimSpace(s))
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool { return &b }
