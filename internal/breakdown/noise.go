// internal/breakdown/noise.go
package breakdown

import (
	"strings"
	"unicode"
)

// NoiseRule is one predicate of the rejection cascade. Rules are evaluated
// in a fixed priority order and a name is rejected as soon as any rule
// fires, so each rule stays independently auditable.
type NoiseRule struct {
	Name  string
	Fires func(name, upper string) bool
}

var noiseRules = []NoiseRule{
	{
		Name: "length_bounds",
		Fires: func(name, upper string) bool {
			if len(name) < 2 || len(name) > 35 {
				return true
			}
			return len(strings.Fields(name)) > 3
		},
	},
	{
		Name: "scene_heading",
		Fires: func(name, upper string) bool {
			return sceneHeadStart.MatchString(name) ||
				sceneNumPrefixRe.MatchString(name) ||
				trailingTimeRe.MatchString(name)
		},
	},
	{
		Name: "pure_number",
		Fires: func(name, upper string) bool {
			return pureNumberRe.MatchString(name)
		},
	},
	{
		Name: "repeated_run",
		Fires: func(name, upper string) bool {
			// BLAMMMM, AAAAH and friends.
			return hasRepeatedRun(upper, 3)
		},
	},
	{
		Name: "dialogue_dash",
		Fires: func(name, upper string) bool {
			return strings.ContainsAny(name, "—–…") || strings.Contains(name, "...")
		},
	},
	{
		Name: "punctuation_shape",
		Fires: func(name, upper string) bool {
			if punctOnlyRe.MatchString(name) {
				return true
			}
			runes := []rune(name)
			last := runes[len(runes)-1]
			// A trailing period is allowed: abbreviated cues like
			// "MALE V.O." are legitimate.
			return isPunct(runes[0]) || (isPunct(last) && last != '.')
		},
	},
	{
		Name: "camera_term",
		Fires: func(name, upper string) bool {
			return hasAnyPrefix(upper, cameraTermPrefixes)
		},
	},
	{
		Name: "action_verb",
		Fires: func(name, upper string) bool {
			return hasAnyPrefix(upper, actionVerbPrefixes)
		},
	},
	{
		Name: "sentence_fragment",
		Fires: func(name, upper string) bool {
			words := strings.Fields(upper)
			return len(words) >= 3 && sentenceStarters[words[0]]
		},
	},
	{
		Name: "dialogue_grammar",
		Fires: func(name, upper string) bool {
			if contractionRe.MatchString(name) {
				return true
			}
			return containsWord(upper, "YOU") || containsWord(upper, "YOUR")
		},
	},
	{
		Name: "blacklist",
		Fires: func(name, upper string) bool {
			if characterBlacklist[upper] {
				return true
			}
			for entry := range characterBlacklist {
				// Multi-word jargon also disqualifies as a substring
				// ("ANGLE ON JOHN", "SMASH CUT TO:").
				if strings.Contains(entry, " ") && strings.Contains(upper, entry) {
					return true
				}
			}
			return false
		},
	},
	{
		Name: "lowercase_prose",
		Fires: func(name, upper string) bool {
			return name == strings.ToLower(name) && name != upper
		},
	},
	{
		Name: "onomatopoeia",
		Fires: func(name, upper string) bool {
			return len(strings.Fields(upper)) == 1 && onomatopoeiaWords[upper]
		},
	},
}

// IsActionOrInsert reports whether a raw cue is noise rather than a
// character, and names the rule that rejected it.
func IsActionOrInsert(raw string) (rule string, rejected bool) {
	name := normalizeCueName(raw)
	if name == "" {
		return "empty", true
	}
	upper := strings.ToUpper(name)

	for _, r := range noiseRules {
		if r.Fires(name, upper) {
			return r.Name, true
		}
	}
	return "", false
}

// Classify buckets an already-accepted character cue. Order matters:
// voice/functional wins over generic-extra wins over cast.
func Classify(name string) CharacterClass {
	upper := strings.ToUpper(normalizeCueName(name))

	for _, kw := range voiceKeywords {
		if strings.Contains(upper, kw) {
			return ClassVoice
		}
	}

	// A comma followed by a capitalized continuation marks a full proper
	// name ("WILSON, Junior Senator"), never a generic extra.
	if commaProperRe.MatchString(normalizeCueName(name)) {
		return ClassCast
	}

	if genericPatternRe.MatchString(upper) {
		return ClassFeaturedExtra
	}
	if numberedSuffixRe.MatchString(upper) {
		return ClassFeaturedExtra
	}
	for _, kw := range extraKeywords {
		if containsWord(upper, kw) {
			return ClassFeaturedExtra
		}
	}

	return ClassCast
}

func hasAnyPrefix(upper string, prefixes []string) bool {
	for _, p := range prefixes {
		if upper == p || strings.HasPrefix(upper, p+" ") || strings.HasPrefix(upper, p+":") {
			return true
		}
	}
	return false
}

func containsWord(upper, word string) bool {
	idx := 0
	for {
		i := strings.Index(upper[idx:], word)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(word)
		beforeOK := start == 0 || !isWordRune(rune(upper[start-1]))
		afterOK := end == len(upper) || !isWordRune(rune(upper[end]))
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

// hasRepeatedRun reports whether s contains at least n equal runes in a row.
func hasRepeatedRun(s string, n int) bool {
	var prev rune
	run := 0
	for _, r := range s {
		if r == prev {
			run++
		} else {
			prev = r
			run = 1
		}
		if run >= n {
			return true
		}
	}
	return false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isPunct(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}
