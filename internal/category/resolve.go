// Package category holds the built-in bilingual catalog and the pure
// three-way resolution of a category's effective item set.
package category

import (
	"sort"
	"strings"
)

// Resolve computes the effective item set for a category:
// (static ∪ dynamic) − tombstoned. Matching is case-insensitive; when the
// same name appears more than once the first-seen casing wins. The result
// is sorted lexicographically.
func Resolve(static, dynamic, tombstoned []string) []string {
	tomb := make(map[string]struct{}, len(tombstoned))
	for _, name := range tombstoned {
		tomb[fold(name)] = struct{}{}
	}

	seen := make(map[string]struct{})
	var out []string
	for _, name := range append(append([]string{}, static...), dynamic...) {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		key := fold(name)
		if _, dead := tomb[key]; dead {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, name)
	}

	sort.Strings(out)
	return out
}

// Contains reports whether name resolves as present in the effective set,
// case-insensitively.
func Contains(effective []string, name string) bool {
	key := fold(name)
	for _, n := range effective {
		if fold(n) == key {
			return true
		}
	}
	return false
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
