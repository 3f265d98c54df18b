// internal/breakdown/normalize.go
package breakdown

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aclaborda1010101/labordacousinsproductions-sub005/internal/config"
	"github.com/aclaborda1010101/labordacousinsproductions-sub005/internal/models"
)

// Warning codes emitted by the canonicalizer.
const (
	WarnTitleFallback       = "TITLE_FALLBACK"
	WarnNoSceneHeadings     = "NO_SCENE_HEADINGS"
	WarnLocationsRebuilt    = "LOCATIONS_REBUILT"
	WarnCharactersAugmented = "CHARACTERS_AUGMENTED_FROM_CANDIDATES"
	WarnPropsBelowMinimum   = "PROPS_BELOW_MINIMUM"
	WarnCharactersDiscarded = "CHARACTER_NOISE_DISCARDED"
	WarnMalformedCharacters = "MALFORMED_CHARACTERS_FIELD"
)

// Normalizer turns raw, inconsistent script data into a NormalizedBreakdown.
// It is a pure function over its arguments: no I/O, no retained state.
type Normalizer struct {
	tuning config.BreakdownTuning
}

func NewNormalizer(tuning config.BreakdownTuning) *Normalizer {
	return &Normalizer{tuning: tuning}
}

// Normalize reconciles a raw breakdown document. Existing non-empty data is
// never overwritten by a derived-empty result, counts are recomputed from
// final state, and warnings accumulate without ever being cleared.
func (n *Normalizer) Normalize(raw map[string]any, filename, projectTitle string, lock models.TitleLock) models.NormalizedBreakdown {
	if raw == nil {
		raw = map[string]any{}
	}

	out := models.NormalizedBreakdown{
		Props:     []any{},
		Setpieces: []any{},
		Warnings:  carriedWarnings(raw),
	}

	// 1. Title: resolve once, lock forever.
	resolved := ResolveTitle(TitleInput{
		ProjectTitle:  projectTitle,
		MetadataTitle: firstString(raw, "metadata_title", "title"),
		Filename:      filename,
		RawText:       asString(raw["raw_text"]),
		Lock:          lock,
	})
	out.Title = resolved.Canonical
	out.TitleLock = models.TitleLock{Value: resolved.Canonical, Locked: !IsPlaceholderTitle(resolved.Canonical)}
	if resolved.Source == TitleSourceFallback {
		out.Warnings = appendWarning(out.Warnings, WarnTitleFallback,
			"no usable title found in project, metadata, filename or text; using fallback")
	}

	// 2. Scenes.
	out.Scenes = normalizeScenes(raw)

	// 3. Locations: keep supplied data, derive from headings only when the
	// supplied list is empty and the script clearly has scenes.
	out.Locations = n.normalizeLocations(raw, out.Scenes.Total, &out.Warnings)

	// 4. Characters: merge, classify, and augment when implausibly few.
	out.Characters = n.normalizeCharacters(raw, out.Scenes.Total, &out.Warnings)

	// 5. Props and setpieces pass through; shortfall is a warning, never a
	// fabrication.
	out.Props = asSlice(raw["props"])
	if out.Props == nil {
		out.Props = []any{}
	}
	out.Setpieces = asSlice(raw["setpieces"])
	if out.Setpieces == nil {
		out.Setpieces = []any{}
	}
	if minProps := n.tuning.MinPropsFor(out.Scenes.Total); len(out.Props) < minProps {
		out.Warnings = appendWarning(out.Warnings, WarnPropsBelowMinimum,
			fmt.Sprintf("only %d props for %d scenes (minimum %d)", len(out.Props), out.Scenes.Total, minProps))
	}

	// 6. Counts: always recomputed, never trusted from input.
	out.Counts = recomputeCounts(&out)

	return out
}

func carriedWarnings(raw map[string]any) []models.Warning {
	warnings := []models.Warning{}
	for _, item := range asSlice(raw["_warnings"]) {
		entry := asMap(item)
		if entry == nil {
			continue
		}
		code := asString(entry["code"])
		if code == "" {
			continue
		}
		warnings = append(warnings, models.Warning{Code: code, Message: asString(entry["message"])})
	}
	return warnings
}

func appendWarning(warnings []models.Warning, code, message string) []models.Warning {
	return append(warnings, models.Warning{Code: code, Message: message})
}

func firstString(raw map[string]any, keys ...string) string {
	for _, key := range keys {
		if s := asString(raw[key]); s != "" {
			return s
		}
	}
	return ""
}

func normalizeScenes(raw map[string]any) models.SceneSection {
	section := models.SceneSection{List: []models.Scene{}}

	var entries []any
	var declaredTotal any
	if scenes := asMap(raw["scenes"]); scenes != nil {
		entries = asSlice(scenes["list"])
		declaredTotal = scenes["total"]
	}
	// Outline documents nest scenes under episode_beats before a flat scene
	// list exists. First non-empty shape wins; shapes are never merged.
	if len(entries) == 0 {
		entries = beatScenes(raw)
	}

	for _, item := range entries {
		entry := asMap(item)
		if entry == nil {
			continue
		}
		section.List = append(section.List, models.Scene{
			Number:   asInt(entry["number"]),
			Heading:  asString(entry["heading"]),
			Slugline: asString(entry["slugline"]),
			Synopsis: asString(entry["synopsis"]),
		})
	}

	if len(section.List) > 0 {
		section.Total = len(section.List)
	} else {
		section.Total = asInt(declaredTotal)
	}
	return section
}

func (n *Normalizer) normalizeLocations(raw map[string]any, sceneCount int, warnings *[]models.Warning) models.LocationSet {
	// Never regress: supplied non-empty locations win outright.
	if supplied := parseSuppliedLocations(raw); len(supplied.Base) > 0 {
		return supplied
	}

	result := models.LocationSet{Base: []models.Location{}, Variants: []string{}}
	if sceneCount <= 0 {
		return result
	}

	headings := CollectHeadings(raw)
	if len(headings) == 0 {
		*warnings = appendWarning(*warnings, WarnNoSceneHeadings,
			fmt.Sprintf("%d scenes but no scene headings available; locations left empty", sceneCount))
		return result
	}

	derived := ExtractLocations(headings)
	if len(derived.Base) > 0 {
		*warnings = appendWarning(*warnings, WarnLocationsRebuilt,
			fmt.Sprintf("rebuilt %d base locations from %d scene headings", len(derived.Base), len(headings)))
		return derived
	}

	*warnings = appendWarning(*warnings, WarnNoSceneHeadings,
		fmt.Sprintf("%d scenes but no parseable scene headings; locations left empty", sceneCount))
	return result
}

func parseSuppliedLocations(raw map[string]any) models.LocationSet {
	result := models.LocationSet{Base: []models.Location{}, Variants: []string{}}
	locations := asMap(raw["locations"])
	if locations == nil {
		return result
	}

	seen := make(map[string]bool)
	for _, item := range asSlice(locations["base"]) {
		entry := asMap(item)
		if entry == nil {
			continue
		}
		name := strings.ToUpper(asString(entry["name"]))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		result.Base = append(result.Base, models.Location{
			Name:     name,
			Variants: stringSlice(entry["variants"]),
		})
	}
	result.Variants = stringSlice(locations["variants"])
	return result
}

// mergedCharacter carries the best-known attributes across duplicates.
type mergedCharacter struct {
	character models.Character
	order     int
}

func (n *Normalizer) normalizeCharacters(raw map[string]any, sceneCount int, warnings *[]models.Warning) models.CharacterBuckets {
	merged := make(map[string]*mergedCharacter)
	var keys []string
	discarded := 0

	merge := func(c models.Character) {
		name := normalizeCueName(c.Name)
		if name == "" {
			return
		}
		if _, rejected := IsActionOrInsert(name); rejected {
			discarded++
			return
		}
		key := strings.ToUpper(name)
		existing, ok := merged[key]
		if !ok {
			c.Name = name
			merged[key] = &mergedCharacter{character: c, order: len(keys)}
			keys = append(keys, key)
			return
		}
		// Carry forward the best-known attributes: max scenes_count,
		// lexicographically smallest priority code, first-seen role.
		if c.ScenesCount > existing.character.ScenesCount {
			existing.character.ScenesCount = c.ScenesCount
		}
		if c.Priority != "" && (existing.character.Priority == "" || c.Priority < existing.character.Priority) {
			existing.character.Priority = c.Priority
		}
		if existing.character.Role == "" {
			existing.character.Role = c.Role
		}
	}

	for _, c := range collectRawCharacters(raw, warnings) {
		merge(c)
	}

	if discarded > 0 {
		*warnings = appendWarning(*warnings, WarnCharactersDiscarded,
			fmt.Sprintf("discarded %d non-character cues during normalization", discarded))
	}

	// Scaled-tolerance augmentation: pull candidates when the roster is
	// implausibly small for the scene count.
	minCharacters := n.tuning.MinCharactersFor(sceneCount)
	if len(merged) < minCharacters {
		candidates := stringSlice(raw["character_candidates"])
		if len(candidates) == 0 {
			candidates = extractCandidatesFromText(asString(raw["raw_text"]))
		}
		injected := 0
		for _, candidate := range candidates {
			name := normalizeCueName(candidate)
			if name == "" {
				continue
			}
			if _, rejected := IsActionOrInsert(name); rejected {
				continue
			}
			if coveredByExisting(name, merged) {
				continue
			}
			key := strings.ToUpper(name)
			merged[key] = &mergedCharacter{character: models.Character{Name: name}, order: len(keys)}
			keys = append(keys, key)
			injected++
		}
		if injected > 0 {
			*warnings = appendWarning(*warnings, WarnCharactersAugmented,
				fmt.Sprintf("roster of %d below minimum %d for %d scenes; injected %d candidates",
					len(merged)-injected, minCharacters, sceneCount, injected))
		}
	}

	buckets := models.CharacterBuckets{
		Cast:                    []models.Character{},
		FeaturedExtrasWithLines: []models.Character{},
		VoicesAndFunctional:     []models.Character{},
	}

	ordered := make([]*mergedCharacter, 0, len(merged))
	for _, m := range merged {
		ordered = append(ordered, m)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].order < ordered[j].order })

	for _, m := range ordered {
		switch Classify(m.character.Name) {
		case ClassVoice:
			buckets.VoicesAndFunctional = append(buckets.VoicesAndFunctional, m.character)
		case ClassFeaturedExtra:
			buckets.FeaturedExtrasWithLines = append(buckets.FeaturedExtrasWithLines, m.character)
		default:
			buckets.Cast = append(buckets.Cast, m.character)
		}
	}

	return buckets
}

// collectRawCharacters reads the character list from the known input shapes:
// a bucketed object, or a flat array of objects/strings. First non-empty
// shape wins; shapes are never merged.
func collectRawCharacters(raw map[string]any, warnings *[]models.Warning) []models.Character {
	var out []models.Character

	appendEntry := func(item any) {
		switch entry := item.(type) {
		case string:
			if s := strings.TrimSpace(entry); s != "" {
				out = append(out, models.Character{Name: s})
			}
		case map[string]any:
			name := asString(entry["name"])
			if name == "" {
				return
			}
			out = append(out, models.Character{
				Name:        name,
				Role:        asString(entry["role"]),
				ScenesCount: asInt(entry["scenes_count"]),
				Priority:    asString(entry["priority"]),
			})
		}
	}

	switch characters := raw["characters"].(type) {
	case map[string]any:
		for _, bucket := range []string{"cast", "featured_extras_with_lines", "voices_and_functional"} {
			for _, item := range asSlice(characters[bucket]) {
				appendEntry(item)
			}
		}
	case []any:
		for _, item := range characters {
			appendEntry(item)
		}
	case nil:
	default:
		*warnings = appendWarning(*warnings, WarnMalformedCharacters,
			fmt.Sprintf("characters field has unexpected type %T; treated as empty", characters))
	}

	return out
}

// extractCandidatesFromText scans raw script text for dialogue cue lines:
// short all-caps lines that survive the noise cascade.
func extractCandidatesFromText(text string) []string {
	if text == "" {
		return nil
	}
	var out []string
	seen := make(map[string]bool)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line != strings.ToUpper(line) {
			continue
		}
		if _, rejected := IsActionOrInsert(line); rejected {
			continue
		}
		key := strings.ToUpper(normalizeCueName(line))
		if !seen[key] {
			seen[key] = true
			out = append(out, line)
		}
	}
	return out
}

// coveredByExisting reports whether a candidate is already represented:
// exact key match always counts; a substring match only counts when the
// candidate carries no digits or hash, so numbered extras are never
// collapsed into each other.
func coveredByExisting(name string, merged map[string]*mergedCharacter) bool {
	key := strings.ToUpper(name)
	if _, ok := merged[key]; ok {
		return true
	}
	if strings.ContainsAny(key, "#0123456789") {
		return false
	}
	for existing := range merged {
		if strings.Contains(existing, key) || strings.Contains(key, existing) {
			return true
		}
	}
	return false
}

func recomputeCounts(b *models.NormalizedBreakdown) models.BreakdownCounts {
	return models.BreakdownCounts{
		ScenesTotal:           b.Scenes.Total,
		CastTotal:             len(b.Characters.Cast),
		FeaturedExtrasTotal:   len(b.Characters.FeaturedExtrasWithLines),
		VoicesTotal:           len(b.Characters.VoicesAndFunctional),
		LocationsBaseTotal:    len(b.Locations.Base),
		LocationVariantsTotal: len(b.Locations.Variants),
		PropsTotal:            len(b.Props),
		SetpiecesTotal:        len(b.Setpieces),
	}
}
