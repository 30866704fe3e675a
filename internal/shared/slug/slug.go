package slug

import (
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// maxLen keeps slugs short enough for object keys.
const maxLen = 48

// FromName lower-cases s and joins its alphanumeric runs with dashes.
// fallback is returned when nothing usable is left.
func FromName(s, fallback string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonAlnum.ReplaceAllString(s, "-")
	if len(s) > maxLen {
		s = s[:maxLen]
	}
	s = strings.Trim(s, "-")
	if s == "" {
		return fallback
	}
	return s
}
