// internal/breakdown/characters_test.go
package breakdown

import (
	"testing"
)

func TestNormalizeCueName(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"JOHN", "JOHN"},
		{"  JOHN  SMITH ", "JOHN SMITH"},
		{"JOHN (CONT'D)", "JOHN"},
		{"JOHN (CONTD)", "JOHN"},
		{"SARAH (V.O.)", "SARAH"},
		{"SARAH (O.S.)", "SARAH"},
		// Stacked suffixes strip iteratively.
		{"SARAH (V.O.) (CONT'D)", "SARAH"},
		{"MIKE (ON PHONE)", "MIKE"},
		{"MIKE (INTO RADIO)", "MIKE"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := NormalizeCharacterName(tt.raw); got != tt.want {
				t.Errorf("NormalizeCharacterName(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestIsActionOrInsert(t *testing.T) {
	tests := []struct {
		raw      string
		wantRule string
		rejected bool
	}{
		// Legitimate cues survive the whole cascade.
		{raw: "JOHN SMITH"},
		{raw: "SOLDIER #2"},
		{raw: "MALE V.O."},
		{raw: "DR. GREY"},
		{raw: "O'BRIEN"},

		// Rejections, with the rule that fires.
		{raw: "BLAMMMMMM", wantRule: "repeated_run", rejected: true},
		{raw: "32 INT. HALLWAY", wantRule: "scene_heading", rejected: true},
		{raw: "32 INT", wantRule: "scene_heading", rejected: true},
		{raw: "WAREHOUSE - NIGHT", wantRule: "scene_heading", rejected: true},
		{raw: "123", wantRule: "pure_number", rejected: true},
		{raw: "CUT TO", wantRule: "action_verb", rejected: true},
		{raw: "ANGLE ON JOHN", wantRule: "camera_term", rejected: true},
		{raw: "the door opens", wantRule: "sentence_fragment", rejected: true},
		{raw: "whispers softly", wantRule: "lowercase_prose", rejected: true},
		{raw: "DON'T MOVE", wantRule: "dialogue_grammar", rejected: true},
		{raw: "YOU THERE", wantRule: "dialogue_grammar", rejected: true},
		// An ellipsis is three equal runes, so the run rule fires first.
		{raw: "WAIT...", wantRule: "repeated_run", rejected: true},
		{raw: "WAIT — NO", wantRule: "dialogue_dash", rejected: true},
		{raw: "AAAH", wantRule: "repeated_run", rejected: true},
		// Double letters alone never trip the run rule.
		{raw: "ANNE", rejected: false},
		{raw: "MONTAGE", wantRule: "camera_term", rejected: true},
		{raw: "SMASH CUT TO:", wantRule: "punctuation_shape", rejected: true},
		{raw: "BANG", wantRule: "onomatopoeia", rejected: true},
		{raw: "!!", wantRule: "punctuation_shape", rejected: true},
		{raw: "X", wantRule: "length_bounds", rejected: true},
		{raw: "ONE TWO THREE FOUR", wantRule: "length_bounds", rejected: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			rule, rejected := IsActionOrInsert(tt.raw)
			if rejected != tt.rejected {
				t.Fatalf("rejected = %v (rule %q), want %v", rejected, rule, tt.rejected)
			}
			if tt.rejected && rule != tt.wantRule {
				t.Errorf("rule = %q, want %q", rule, tt.wantRule)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		want CharacterClass
	}{
		{"JOHN SMITH", ClassCast},
		{"DJANGO", ClassCast},
		{"ELENA", ClassCast},

		// Numbered or generic roles are featured extras.
		{"SOLDIER #2", ClassFeaturedExtra},
		{"GUARD 1", ClassFeaturedExtra},
		{"MAN", ClassFeaturedExtra},
		{"WOMAN #3", ClassFeaturedExtra},
		{"BOY A", ClassFeaturedExtra},
		{"NURSE", ClassFeaturedExtra},
		{"TAXI DRIVER", ClassFeaturedExtra},

		// Voice and functional roles.
		{"NARRATOR", ClassVoice},
		{"MALE V.O.", ClassVoice},
		{"RADIO ANNOUNCER", ClassVoice},
		{"COMPUTER VOICE", ClassVoice},
		{"911 DISPATCHER", ClassVoice},

		// A comma plus capitalized continuation marks a full proper name.
		{"WILSON, Junior Senator", ClassCast},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.name); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}
