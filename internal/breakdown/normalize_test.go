// internal/breakdown/normalize_test.go
package breakdown

import (
	"reflect"
	"testing"

	"github.com/aclaborda1010101/labordacousinsproductions-sub005/internal/config"
	"github.com/aclaborda1010101/labordacousinsproductions-sub005/internal/models"
)

func testTuning() config.BreakdownTuning {
	return config.BreakdownTuning{
		AugmentThresholds: []config.AugmentThreshold{
			{MinScenes: 50, MinCharacters: 10},
			{MinScenes: 0, MinCharacters: 2},
		},
		FeatureSceneCount: 80,
		PropMinFeature:    8,
		PropMinShort:      1,
	}
}

func hasWarning(warnings []models.Warning, code string) bool {
	for _, w := range warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}

func TestNormalizePartitionsAndCounts(t *testing.T) {
	n := NewNormalizer(testTuning())

	raw := map[string]any{
		"scenes": map[string]any{
			"list": []any{
				map[string]any{"number": float64(1), "heading": "INT. KITCHEN - DAY"},
				map[string]any{"number": float64(2), "heading": "EXT. YARD - NIGHT"},
				map[string]any{"number": float64(3), "heading": "INT. KITCHEN - NIGHT"},
			},
			"total": float64(99), // stale; must be recomputed from the list
		},
		"characters": []any{
			map[string]any{"name": "JOHN SMITH", "scenes_count": float64(3)},
			"SOLDIER #2",
			"NARRATOR",
			"CUT TO:",             // noise
			"BLAMMMMMM",           // noise
			"JOHN SMITH (CONT'D)", // duplicate of JOHN SMITH
		},
		"props": []any{"revolver", "map"},
	}

	got := n.Normalize(raw, "heist_night.pdf", "", models.TitleLock{})

	if got.Scenes.Total != 3 {
		t.Errorf("Scenes.Total = %d, want 3", got.Scenes.Total)
	}
	if len(got.Characters.Cast) != 1 || got.Characters.Cast[0].Name != "JOHN SMITH" {
		t.Errorf("Cast = %+v, want exactly JOHN SMITH", got.Characters.Cast)
	}
	if got.Characters.Cast[0].ScenesCount != 3 {
		t.Errorf("merged ScenesCount = %d, want 3", got.Characters.Cast[0].ScenesCount)
	}
	if len(got.Characters.FeaturedExtrasWithLines) != 1 || got.Characters.FeaturedExtrasWithLines[0].Name != "SOLDIER #2" {
		t.Errorf("FeaturedExtras = %+v, want exactly SOLDIER #2", got.Characters.FeaturedExtrasWithLines)
	}
	if len(got.Characters.VoicesAndFunctional) != 1 || got.Characters.VoicesAndFunctional[0].Name != "NARRATOR" {
		t.Errorf("Voices = %+v, want exactly NARRATOR", got.Characters.VoicesAndFunctional)
	}

	want := models.BreakdownCounts{
		ScenesTotal:           3,
		CastTotal:             1,
		FeaturedExtrasTotal:   1,
		VoicesTotal:           1,
		LocationsBaseTotal:    2,
		LocationVariantsTotal: 3,
		PropsTotal:            2,
	}
	if got.Counts != want {
		t.Errorf("Counts = %+v, want %+v", got.Counts, want)
	}

	if !hasWarning(got.Warnings, WarnCharactersDiscarded) {
		t.Errorf("expected %s warning, got %+v", WarnCharactersDiscarded, got.Warnings)
	}
	if !hasWarning(got.Warnings, WarnLocationsRebuilt) {
		t.Errorf("expected %s warning, got %+v", WarnLocationsRebuilt, got.Warnings)
	}
}

func TestNormalizeRebuildsLocationsFromEpisodeBeats(t *testing.T) {
	n := NewNormalizer(testTuning())

	headings := []string{"INT. KITCHEN - NIGHT", "EXT. KITCHEN - NIGHT", "INT. KITCHEN - NIGHT"}
	var scenes []any
	for i := 0; i < 12; i++ {
		scenes = append(scenes, map[string]any{
			"number":  float64(i + 1),
			"heading": headings[i%len(headings)],
		})
	}
	raw := map[string]any{
		"episode_beats": []any{
			map[string]any{"beat": "act one", "scenes": scenes},
		},
		"characters": []any{"JOHN", "SARAH"},
	}

	got := n.Normalize(raw, "", "The Keeper", models.TitleLock{})

	if got.Scenes.Total != 12 {
		t.Fatalf("Scenes.Total = %d, want 12", got.Scenes.Total)
	}
	if len(got.Locations.Base) != 1 || got.Locations.Base[0].Name != "KITCHEN" {
		t.Fatalf("Locations.Base = %+v, want exactly KITCHEN", got.Locations.Base)
	}
	wantVariants := []string{"INT. KITCHEN - NIGHT", "EXT. KITCHEN - NIGHT"}
	if !reflect.DeepEqual(got.Locations.Base[0].Variants, wantVariants) {
		t.Errorf("variants = %v, want %v", got.Locations.Base[0].Variants, wantVariants)
	}
	if got.Counts.LocationsBaseTotal != 1 {
		t.Errorf("Counts.LocationsBaseTotal = %d, want 1", got.Counts.LocationsBaseTotal)
	}
	if !hasWarning(got.Warnings, WarnLocationsRebuilt) {
		t.Errorf("expected %s warning, got %+v", WarnLocationsRebuilt, got.Warnings)
	}
}

func TestNormalizeNeverRegressesSuppliedLocations(t *testing.T) {
	n := NewNormalizer(testTuning())

	raw := map[string]any{
		"scenes": map[string]any{
			"list": []any{
				map[string]any{"heading": "INT. SOMEWHERE ELSE - DAY"},
			},
		},
		"locations": map[string]any{
			"base": []any{
				map[string]any{"name": "LIGHTHOUSE", "variants": []any{"INT. LIGHTHOUSE - NIGHT"}},
			},
			"variants": []any{"INT. LIGHTHOUSE - NIGHT"},
		},
		"characters": []any{"JOHN", "SARAH"},
	}

	got := n.Normalize(raw, "", "The Keeper", models.TitleLock{})

	if len(got.Locations.Base) != 1 || got.Locations.Base[0].Name != "LIGHTHOUSE" {
		t.Fatalf("supplied locations were replaced: %+v", got.Locations.Base)
	}
	if hasWarning(got.Warnings, WarnLocationsRebuilt) {
		t.Errorf("unexpected %s warning when locations were supplied", WarnLocationsRebuilt)
	}
}

func TestNormalizeWarnsWhenHeadingsMissing(t *testing.T) {
	n := NewNormalizer(testTuning())

	raw := map[string]any{
		"scenes":     map[string]any{"total": float64(12), "list": []any{}},
		"characters": []any{"JOHN", "SARAH"},
	}

	got := n.Normalize(raw, "", "The Keeper", models.TitleLock{})

	if len(got.Locations.Base) != 0 {
		t.Errorf("Locations.Base = %+v, want empty", got.Locations.Base)
	}
	if !hasWarning(got.Warnings, WarnNoSceneHeadings) {
		t.Errorf("expected %s warning, got %+v", WarnNoSceneHeadings, got.Warnings)
	}
}

func TestNormalizeAugmentsFromCandidates(t *testing.T) {
	tuning := testTuning()
	tuning.AugmentThresholds = []config.AugmentThreshold{{MinScenes: 0, MinCharacters: 4}}
	n := NewNormalizer(tuning)

	raw := map[string]any{
		"scenes": map[string]any{
			"list": []any{map[string]any{"heading": "INT. LAB - DAY"}},
		},
		"characters": []any{"ELENA"},
		"character_candidates": []any{
			"MARCUS",
			"ELENA (CONT'D)", // already covered
			"GUARD #1",
			"GUARD #2", // numbered: must not collapse into GUARD #1
			"CUT TO:",  // noise stays out even during augmentation
		},
	}

	got := n.Normalize(raw, "", "Cold Lab", models.TitleLock{})

	total := len(got.Characters.Cast) + len(got.Characters.FeaturedExtrasWithLines) + len(got.Characters.VoicesAndFunctional)
	if total != 4 {
		t.Fatalf("roster size = %d, want 4 (ELENA, MARCUS, GUARD #1, GUARD #2): %+v", total, got.Characters)
	}
	if !hasWarning(got.Warnings, WarnCharactersAugmented) {
		t.Errorf("expected %s warning, got %+v", WarnCharactersAugmented, got.Warnings)
	}
	if len(got.Characters.FeaturedExtrasWithLines) != 2 {
		t.Errorf("featured extras = %+v, want GUARD #1 and GUARD #2", got.Characters.FeaturedExtrasWithLines)
	}
}

func TestNormalizeWarningsAreCarriedAndAppended(t *testing.T) {
	n := NewNormalizer(testTuning())

	raw := map[string]any{
		"_warnings": []any{
			map[string]any{"code": "UPSTREAM_TRUNCATED", "message": "earlier pass was cut short"},
		},
		"scenes":     map[string]any{"total": float64(5), "list": []any{}},
		"characters": []any{"JOHN", "SARAH"},
	}

	got := n.Normalize(raw, "", "The Keeper", models.TitleLock{})

	if len(got.Warnings) < 2 {
		t.Fatalf("warnings = %+v, want carried warning plus new ones", got.Warnings)
	}
	if got.Warnings[0].Code != "UPSTREAM_TRUNCATED" {
		t.Errorf("first warning = %+v, want the carried UPSTREAM_TRUNCATED", got.Warnings[0])
	}
}

func TestNormalizeTitleLockRoundTrip(t *testing.T) {
	n := NewNormalizer(testTuning())

	first := n.Normalize(map[string]any{}, "midnight_run.pdf", "", models.TitleLock{})
	if first.Title != "Midnight Run" {
		t.Fatalf("first title = %q, want Midnight Run", first.Title)
	}
	if !first.TitleLock.Locked {
		t.Fatal("expected title to lock after first resolution")
	}

	// A second pass with conflicting inputs echoes the locked title.
	second := n.Normalize(map[string]any{"metadata_title": "Renamed"}, "other_file.pdf", "Different Project", first.TitleLock)
	if second.Title != "Midnight Run" {
		t.Errorf("second title = %q, want locked Midnight Run", second.Title)
	}
}

func TestNormalizeFallbackTitleDoesNotLock(t *testing.T) {
	n := NewNormalizer(testTuning())

	got := n.Normalize(map[string]any{}, "", "", models.TitleLock{})
	if got.Title != FallbackTitle {
		t.Fatalf("title = %q, want %q", got.Title, FallbackTitle)
	}
	if got.TitleLock.Locked {
		t.Error("fallback title must not lock")
	}
	if !hasWarning(got.Warnings, WarnTitleFallback) {
		t.Errorf("expected %s warning, got %+v", WarnTitleFallback, got.Warnings)
	}
}

func TestNormalizeMalformedCharactersField(t *testing.T) {
	n := NewNormalizer(testTuning())

	raw := map[string]any{
		"characters": "JOHN, SARAH", // wrong type entirely
	}
	got := n.Normalize(raw, "", "The Keeper", models.TitleLock{})

	if !hasWarning(got.Warnings, WarnMalformedCharacters) {
		t.Errorf("expected %s warning, got %+v", WarnMalformedCharacters, got.Warnings)
	}
}

func TestNormalizePropsBelowMinimum(t *testing.T) {
	tuning := testTuning()
	tuning.PropMinShort = 4
	n := NewNormalizer(tuning)

	raw := map[string]any{
		"scenes":     map[string]any{"total": float64(10), "list": []any{}},
		"props":      []any{"knife"},
		"characters": []any{"JOHN", "SARAH"},
	}
	got := n.Normalize(raw, "", "The Keeper", models.TitleLock{})

	if !hasWarning(got.Warnings, WarnPropsBelowMinimum) {
		t.Errorf("expected %s warning, got %+v", WarnPropsBelowMinimum, got.Warnings)
	}
	if len(got.Props) != 1 {
		t.Errorf("props must pass through unchanged, got %+v", got.Props)
	}
}
