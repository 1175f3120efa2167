// Package util holds small generic helpers shared across the module.
package util

import (
	"slices"
	"strings"
)

// Exclude returns all elements that exist in source but not exclude
func Exclude[T comparable](source, exclude []T) []T {
	list := make([]T, 0, len(source))
	for _, item := range source {
		if slices.Contains(exclude, item) {
			continue
		}
		list = append(list, item)
	}

	return list
}

// SplitList splits a comma separated list, trimming blanks and dropping empty entries.
func SplitList(s string) []string {
	var list []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}

	return list
}
