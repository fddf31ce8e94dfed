// Package strings provides string slice helpers shared by batch operations.
package strings

import (
	"strings"
)

// DedupeAndTrim removes duplicates and empty strings from a slice,
// trimming whitespace from each element. Order is preserved.
//
// Example:
//
//	DedupeAndTrim([]string{"  XUsf1 ", "XUsf2", "XUsf1", "", "  "})
//	// Returns: []string{"XUsf1", "XUsf2"}
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; !ok {
			seen[trimmed] = struct{}{}
			result = append(result, trimmed)
		}
	}

	return result
}

// Missing returns the elements of requested that are not in found, preserving
// the order of requested. Comparison is exact (scheme identifiers are case
// sensitive).
//
// Example:
//
//	Missing([]string{"a", "b", "c"}, []string{"b"})
//	// Returns: []string{"a", "c"}
func Missing(requested, found []string) []string {
	present := make(map[string]struct{}, len(found))
	for _, v := range found {
		present[v] = struct{}{}
	}

	var result []string
	for _, v := range requested {
		if _, ok := present[v]; !ok {
			result = append(result, v)
		}
	}
	return result
}
