package utils

import (
	"sort"
	"strings"
)

// IsBlank reports whether value is empty or only whitespace
func IsBlank(value string) bool {
	return strings.TrimSpace(value) == ""
}

// AllBlank reports whether every value is blank
func AllBlank(values ...string) bool {
	for _, value := range values {
		if !IsBlank(value) {
			return false
		}
	}
	return true
}

// UpperTrim trims and upper-cases value
func UpperTrim(value string) string {
	return strings.ToUpper(strings.TrimSpace(value))
}

// SortCaseInsensitive sorts items by a case-folded key, keeping the input
// order of items whose keys compare equal.
func SortCaseInsensitive[T any](items []T, key func(T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		return strings.ToLower(key(items[i])) < strings.ToLower(key(items[j]))
	})
}
