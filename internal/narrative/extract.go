// internal/narrative/extract.go
package narrative

import (
	"strings"
)

// Outline documents arrive in several known shapes depending on which
// upstream generator produced them. Each extractor tries the shapes in
// priority order and the first non-empty one wins; shapes are never merged.

var threadKeys = []string{"threads", "narrative_threads", "arcs", "plot_threads"}
var characterKeys = []string{"main_characters", "cast", "characters"}

// ExtractThreads pulls narrative thread names from an outline document.
func ExtractThreads(outline map[string]any) []string {
	for _, key := range threadKeys {
		if threads := namedStrings(outline[key], "name", "title", "thread"); len(threads) > 0 {
			return threads
		}
	}
	return nil
}

// ExtractCharacters pulls character names from an outline document.
func ExtractCharacters(outline map[string]any) []string {
	for _, key := range characterKeys {
		if names := namedStrings(outline[key], "name"); len(names) > 0 {
			return names
		}
	}
	return nil
}

// namedStrings coerces a slice of strings or objects into names, trying the
// given object fields in order.
func namedStrings(v any, fields ...string) []string {
	items, _ := v.([]any)
	var out []string
	for _, item := range items {
		switch entry := item.(type) {
		case string:
			if s := strings.TrimSpace(entry); s != "" {
				out = append(out, s)
			}
		case map[string]any:
			for _, field := range fields {
				if s, _ := entry[field].(string); strings.TrimSpace(s) != "" {
					out = append(out, strings.TrimSpace(s))
					break
				}
			}
		}
	}
	return out
}

// topThreads keeps the first n threads for the active set.
func topThreads(threads []string, n int) []string {
	if len(threads) <= n {
		return threads
	}
	return threads[:n]
}
