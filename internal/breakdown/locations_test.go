// internal/breakdown/locations_test.go
package breakdown

import (
	"reflect"
	"testing"
)

func TestParseHeading(t *testing.T) {
	tests := []struct {
		raw    string
		want   ParsedHeading
		wantOK bool
	}{
		{
			raw:    "INT. KITCHEN - DAY",
			want:   ParsedHeading{Prefix: "INT", Base: "KITCHEN", TimeOfDay: "DAY"},
			wantOK: true,
		},
		{
			raw:    "ext. beach - sunset",
			want:   ParsedHeading{Prefix: "EXT", Base: "beach", TimeOfDay: "SUNSET"},
			wantOK: true,
		},
		{
			raw:    "I/E CAR - CONTINUOUS",
			want:   ParsedHeading{Prefix: "INT/EXT", Base: "CAR", TimeOfDay: "CONTINUOUS"},
			wantOK: true,
		},
		{
			raw:    "EXT/INT WAREHOUSE - NIGHT",
			want:   ParsedHeading{Prefix: "INT/EXT", Base: "WAREHOUSE", TimeOfDay: "NIGHT"},
			wantOK: true,
		},
		{
			// Missing time defaults to DAY.
			raw:    "EXT HOUSE",
			want:   ParsedHeading{Prefix: "EXT", Base: "HOUSE", TimeOfDay: "DAY"},
			wantOK: true,
		},
		{
			// Inner dashes belong to the base; only a recognized trailing
			// token is a time of day.
			raw:    "INT. MALL - FOOD COURT - NIGHT",
			want:   ParsedHeading{Prefix: "INT", Base: "MALL - FOOD COURT", TimeOfDay: "NIGHT"},
			wantOK: true,
		},
		{
			raw:    "EXT. HIGHWAY 1 - THE ROCKS",
			want:   ParsedHeading{Prefix: "EXT", Base: "HIGHWAY 1 - THE ROCKS", TimeOfDay: "DAY"},
			wantOK: true,
		},
		{raw: "FADE IN:", wantOK: false},
		{raw: "JOHN", wantOK: false},
		{raw: "INT.", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseHeading(tt.raw)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestExtractLocationsGroupsAndDedupes(t *testing.T) {
	headings := []string{
		"INT. KITCHEN - DAY",
		"INT. KITCHEN - NIGHT",
		"INT. KITCHEN - DAY", // duplicate variant
		"EXT. KITCHEN - DAY",
		"INT. GARAGE - NIGHT",
		"CUT TO:", // not a heading
	}

	got := ExtractLocations(headings)

	if len(got.Base) != 2 {
		t.Fatalf("base locations = %d, want 2", len(got.Base))
	}

	// KITCHEN has more variants so it sorts first.
	kitchen := got.Base[0]
	if kitchen.Name != "KITCHEN" {
		t.Fatalf("first base = %q, want KITCHEN", kitchen.Name)
	}
	wantVariants := []string{
		"INT. KITCHEN - DAY",
		"INT. KITCHEN - NIGHT",
		"EXT. KITCHEN - DAY",
	}
	if !reflect.DeepEqual(kitchen.Variants, wantVariants) {
		t.Errorf("kitchen variants = %v, want %v", kitchen.Variants, wantVariants)
	}

	if got.Base[1].Name != "GARAGE" {
		t.Errorf("second base = %q, want GARAGE", got.Base[1].Name)
	}
	if len(got.Variants) != 4 {
		t.Errorf("total variants = %d, want 4", len(got.Variants))
	}
}

func TestExtractLocationsTieBreaksByName(t *testing.T) {
	got := ExtractLocations([]string{
		"INT. ZOO - DAY",
		"INT. ATTIC - DAY",
	})
	if len(got.Base) != 2 {
		t.Fatalf("base locations = %d, want 2", len(got.Base))
	}
	if got.Base[0].Name != "ATTIC" || got.Base[1].Name != "ZOO" {
		t.Errorf("tie order = %q, %q; want ATTIC, ZOO", got.Base[0].Name, got.Base[1].Name)
	}
}

func TestCollectHeadingsPrefersSceneList(t *testing.T) {
	input := map[string]any{
		"scenes": map[string]any{
			"list": []any{
				map[string]any{"heading": "INT. KITCHEN - DAY"},
				map[string]any{"slugline": "EXT. YARD - NIGHT"},
				map[string]any{"synopsis": "no heading here"},
			},
		},
		"scene_headings_raw": []any{"INT. IGNORED - DAY"},
	}

	got := CollectHeadings(input)
	want := []string{"INT. KITCHEN - DAY", "EXT. YARD - NIGHT"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCollectHeadingsReadsEpisodeBeats(t *testing.T) {
	input := map[string]any{
		"episode_beats": []any{
			map[string]any{
				"beat": "opening",
				"scenes": []any{
					map[string]any{"heading": "INT. KITCHEN - NIGHT"},
					map[string]any{"heading": "EXT. KITCHEN - NIGHT"},
				},
			},
			map[string]any{
				"beat": "midpoint",
				"scenes": []any{
					map[string]any{"slugline": "INT. GARAGE - DAY"},
				},
			},
		},
		"scene_headings_raw": []any{"INT. IGNORED - DAY"},
	}

	got := CollectHeadings(input)
	want := []string{"INT. KITCHEN - NIGHT", "EXT. KITCHEN - NIGHT", "INT. GARAGE - DAY"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCollectHeadingsSceneListBeatsEpisodeBeats(t *testing.T) {
	input := map[string]any{
		"scenes": map[string]any{
			"list": []any{map[string]any{"heading": "INT. LAB - NIGHT"}},
		},
		"episode_beats": []any{
			map[string]any{"scenes": []any{map[string]any{"heading": "EXT. IGNORED - DAY"}}},
		},
	}

	got := CollectHeadings(input)
	want := []string{"INT. LAB - NIGHT"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCollectHeadingsFallsBackWithoutMerging(t *testing.T) {
	input := map[string]any{
		"scenes":             map[string]any{"list": []any{}},
		"scene_headings_raw": []any{"INT. LAB - NIGHT"},
		"scene_headings":     []any{"EXT. IGNORED - DAY"},
	}

	got := CollectHeadings(input)
	want := []string{"INT. LAB - NIGHT"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
