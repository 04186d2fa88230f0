package services

import "strings"

// NormalizeQuery lower-cases and trims free-text input
func NormalizeQuery(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// IsBlank reports whether raw has nothing to search for. Callers skip the
// matcher and composer entirely for blank input.
func IsBlank(raw string) bool {
	return strings.TrimSpace(raw) == ""
}

func containsAny(s string, keywords ...string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
