package pipeline

import (
	"sort"
	"strings"
)

// TransformFunc is a pure text-to-text function applied by map steps.
type TransformFunc func(string) string

var transforms = map[string]TransformFunc{
	"identity":            func(s string) string { return s },
	"trim":                strings.TrimSpace,
	"lowercase":           strings.ToLower,
	"uppercase":           strings.ToUpper,
	"collapse-whitespace": func(s string) string { return strings.Join(strings.Fields(s), " ") },
}

// Transforms lists the registered transform names.
func Transforms() []string {
	names := make([]string, 0, len(transforms))
	for name := range transforms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
