// internal/llm/jsonclean.go
package llm

import (
	"strings"
	"unicode"
)

// CleanJSONResponse extracts the JSON payload from a raw model response.
// Models wrap JSON in markdown fences, prepend prose, append commentary and
// leak zero-width characters; this strips all of it down to the first
// balanced JSON object or array.
func CleanJSONResponse(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return s
	}

	// Drop zero-width characters and control characters other than
	// newline/tab.
	s = strings.Map(func(r rune) rune {
		switch r {
		case '\u200b', '\u200c', '\u200d', '\u2060', '\ufeff':
			return -1
		}
		if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			return -1
		}
		return r
	}, s)

	// Everything before the first { or [ is prose or a fence marker.
	start := strings.IndexAny(s, "[{")
	if start == -1 {
		return strings.TrimSpace(s)
	}
	s = strings.TrimSpace(s[start:])
	if s == "" {
		return s
	}

	isArray := s[0] == '['

	// Bracket-balance scan, string-aware.
	balance := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		char := s[i]

		if escaped {
			escaped = false
			continue
		}
		if char == '\\' {
			escaped = true
			continue
		}
		if char == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		if isArray {
			if char == '[' {
				balance++
			} else if char == ']' {
				balance--
			}
		} else {
			if char == '{' {
				balance++
			} else if char == '}' {
				balance--
			}
		}

		if balance == 0 {
			return strings.TrimSpace(s[:i+1])
		}
	}

	// No balanced close found; fall back to the last closing bracket.
	end := strings.LastIndex(s, "}")
	if isArray {
		end = strings.LastIndex(s, "]")
	}
	if end != -1 {
		return strings.TrimSpace(s[:end+1])
	}
	return strings.TrimSpace(s)
}
