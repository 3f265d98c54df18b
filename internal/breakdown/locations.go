// internal/breakdown/locations.go
package breakdown

import (
	"regexp"
	"sort"
	"strings"

	"github.com/aclaborda1010101/labordacousinsproductions-sub005/internal/models"
)

var intExtRe = regexp.MustCompile(`(?i)^\s*(INT\s*/\s*EXT|EXT\s*/\s*INT|I/E|INT|EXT)\b\.?\s*`)

// Recognized trailing time-of-day tokens. The last dash-separated segment of
// a heading is only treated as a time if it is one of these.
var timeOfDayTokens = map[string]bool{
	"DAY":           true,
	"NIGHT":         true,
	"DAWN":          true,
	"DUSK":          true,
	"MORNING":       true,
	"AFTERNOON":     true,
	"EVENING":       true,
	"SUNSET":        true,
	"SUNRISE":       true,
	"TWILIGHT":      true,
	"CONTINUOUS":    true,
	"LATER":         true,
	"SAME":          true,
	"SAME TIME":     true,
	"MOMENTS LATER": true,
	"MAGIC HOUR":    true,
}

// ParsedHeading is one scene heading split into its parts.
type ParsedHeading struct {
	Prefix    string // INT, EXT or INT/EXT
	Base      string // location base name, original casing
	TimeOfDay string
}

// Reconstructed returns the canonical "{PREFIX}. {BASE} - {TIME}" form.
func (h ParsedHeading) Reconstructed() string {
	return h.Prefix + ". " + h.Base + " - " + h.TimeOfDay
}

// ParseHeading splits a raw scene heading into prefix, base name and time of
// day. Returns false when the heading has no INT/EXT prefix.
func ParseHeading(raw string) (ParsedHeading, bool) {
	m := intExtRe.FindStringSubmatch(raw)
	if m == nil {
		return ParsedHeading{}, false
	}

	prefix := strings.ToUpper(strings.ReplaceAll(m[1], " ", ""))
	switch prefix {
	case "EXT/INT", "I/E":
		// Tolerate reversed ordering; canonical form is INT/EXT.
		prefix = "INT/EXT"
	}

	rest := strings.TrimSpace(raw[len(m[0]):])

	timeOfDay := "DAY"
	if idx := strings.LastIndex(rest, "-"); idx >= 0 {
		candidate := strings.ToUpper(strings.TrimSpace(rest[idx+1:]))
		candidate = strings.TrimSuffix(candidate, ".")
		if timeOfDayTokens[candidate] {
			timeOfDay = candidate
			rest = rest[:idx]
		}
	}

	base := strings.TrimSpace(strings.TrimRight(strings.TrimSpace(rest), "-"))
	base = strings.TrimSpace(base)
	if base == "" {
		return ParsedHeading{}, false
	}

	return ParsedHeading{Prefix: prefix, Base: base, TimeOfDay: timeOfDay}, true
}

// ExtractLocations groups scene headings into base locations with their
// variant sets. Base locations are unique by uppercased name and sorted by
// variant count, most used first.
func ExtractLocations(headings []string) models.LocationSet {
	type group struct {
		name     string
		variants []string
		seen     map[string]bool
	}

	groups := make(map[string]*group)
	var order []string
	var allVariants []string
	allSeen := make(map[string]bool)

	for _, raw := range headings {
		parsed, ok := ParseHeading(raw)
		if !ok {
			continue
		}

		key := strings.ToUpper(parsed.Base)
		g, exists := groups[key]
		if !exists {
			g = &group{name: key, seen: make(map[string]bool)}
			groups[key] = g
			order = append(order, key)
		}

		variant := parsed.Prefix + ". " + key + " - " + parsed.TimeOfDay
		if !g.seen[variant] {
			g.seen[variant] = true
			g.variants = append(g.variants, variant)
		}
		if !allSeen[variant] {
			allSeen[variant] = true
			allVariants = append(allVariants, variant)
		}
	}

	result := models.LocationSet{Base: []models.Location{}, Variants: []string{}}
	for _, key := range order {
		g := groups[key]
		result.Base = append(result.Base, models.Location{Name: g.name, Variants: g.variants})
	}

	// Most-used locations first; ties keep a stable name order.
	sort.SliceStable(result.Base, func(i, j int) bool {
		if len(result.Base[i].Variants) != len(result.Base[j].Variants) {
			return len(result.Base[i].Variants) > len(result.Base[j].Variants)
		}
		return result.Base[i].Name < result.Base[j].Name
	})

	result.Variants = allVariants
	return result
}

// CollectHeadings gathers raw scene headings from the first non-empty of the
// known input shapes: scene list entries, then episode_beats scene entries,
// then scene_headings_raw, then scene_headings. Sources are never merged.
func CollectHeadings(input map[string]any) []string {
	if scenes := asMap(input["scenes"]); scenes != nil {
		if headings := headingsFromEntries(asSlice(scenes["list"])); len(headings) > 0 {
			return headings
		}
	}
	if headings := headingsFromEntries(beatScenes(input)); len(headings) > 0 {
		return headings
	}

	if headings := stringSlice(input["scene_headings_raw"]); len(headings) > 0 {
		return headings
	}
	return stringSlice(input["scene_headings"])
}

func headingsFromEntries(items []any) []string {
	var headings []string
	for _, item := range items {
		entry := asMap(item)
		if entry == nil {
			continue
		}
		if h := asString(entry["heading"]); h != "" {
			headings = append(headings, h)
			continue
		}
		if h := asString(entry["slugline"]); h != "" {
			headings = append(headings, h)
		}
	}
	return headings
}

// beatScenes flattens episode_beats[].scenes into one scene-entry list, the
// shape outline documents carry before a flat scene list exists.
func beatScenes(input map[string]any) []any {
	var out []any
	for _, beat := range asSlice(input["episode_beats"]) {
		b := asMap(beat)
		if b == nil {
			continue
		}
		out = append(out, asSlice(b["scenes"])...)
	}
	return out
}
