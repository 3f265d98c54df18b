// internal/breakdown/input.go
package breakdown

import (
	"encoding/json"
	"math"
	"strings"
)

// Upstream LLM JSON arrives in arbitrary shapes. These coercions degrade to
// zero values instead of panicking so the canonicalizer can never throw on
// malformed input.

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	default:
		return ""
	}
}

func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0
		}
		return int(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
		return 0
	default:
		return 0
	}
}

// stringSlice coerces a value into a slice of non-empty strings, accepting
// both plain strings and objects carrying a name field.
func stringSlice(v any) []string {
	var out []string
	for _, item := range asSlice(v) {
		switch entry := item.(type) {
		case string:
			if s := strings.TrimSpace(entry); s != "" {
				out = append(out, s)
			}
		case map[string]any:
			if s := asString(entry["name"]); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
