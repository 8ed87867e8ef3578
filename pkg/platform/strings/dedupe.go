// Package strings provides string manipulation utilities.
package strings

import (
	"strings"
)

// DedupeAndTrim trims each value and drops blanks and repeats, keeping the
// first occurrence. Case is preserved, so "京都" and "Kyoto" stay distinct
// while "京都 " collapses into "京都".
//
// A nil input stays nil; callers that need a JSON array must handle that.
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
		if _, dup := seen[trimmed]; dup {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	return result
}

// AppendUnique appends the trimmed value unless it is blank or already present.
// It reports whether values changed.
func AppendUnique(values []string, value string) ([]string, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return values, false
	}
	for _, v := range values {
		if v == trimmed {
			return values, false
		}
	}
	return append(values, trimmed), true
}
