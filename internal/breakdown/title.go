// internal/breakdown/title.go
package breakdown

import (
	"regexp"
	"strings"

	"github.com/aclaborda1010101/labordacousinsproductions-sub005/internal/models"
)

// TitleSource records which input won the resolution.
type TitleSource string

const (
	TitleSourceLocked   TitleSource = "locked"
	TitleSourceProject  TitleSource = "project_title"
	TitleSourceMetadata TitleSource = "metadata"
	TitleSourceFilename TitleSource = "filename"
	TitleSourceTextScan TitleSource = "text_scan"
	TitleSourceFallback TitleSource = "fallback"
)

// FallbackTitle is the last-resort title when nothing usable is found.
const FallbackTitle = "Untitled Script"

type TitleInput struct {
	ProjectTitle  string
	MetadataTitle string
	Filename      string
	RawText       string
	Lock          models.TitleLock
}

type ResolvedTitle struct {
	Canonical    string
	WorkingTitle string
	Source       TitleSource
}

// Placeholder strings that studios, draft trackers and parsers leave where a
// title should be. Matched case-insensitively, whole string.
var titlePlaceholders = map[string]bool{
	"untitled":         true,
	"untitled script":  true,
	"untitled project": true,
	"working title":    true,
	"screenplay":       true,
	"script":           true,
	"draft":            true,
	"first draft":      true,
	"final draft":      true,
	"shooting script":  true,
	"shooting draft":   true,
	"production draft": true,
	"revised draft":    true,
	"spec script":      true,
	"treatment":        true,
	"white":            true,
	"blue":             true,
	"pink":             true,
	"yellow":           true,
	"green":            true,
	"goldenrod":        true,
	"buff":             true,
	"salmon":           true,
	"cherry":           true,
	"white revision":   true,
	"blue revision":    true,
	"pink revision":    true,
	"document":         true,
	"new document":     true,
	"tbd":              true,
	"n/a":              true,
	"none":             true,
	"unknown":          true,
}

var (
	copyrightRe     = regexp.MustCompile(`(?i)(©|\(c\)\s*\d{4}|copyright\s+\d{4})`)
	trailingDraftRe = regexp.MustCompile(`(?i)\b(draft|rev(ision)?)\s*#?\d*\s*$`)
	punctOnlyRe     = regexp.MustCompile(`^[\s\p{P}\p{S}]+$`)
	terminalPunctRe = regexp.MustCompile(`[.!?]\s*$`)
	dateLineRe      = regexp.MustCompile(`(?i)^\s*\(?\d{1,2}[/.-]\d{1,2}[/.-]\d{2,4}\)?\s*$|^\s*(january|february|march|april|may|june|july|august|september|october|november|december)\s+\d{1,2},?\s+\d{4}\s*$`)
	pageNumberRe    = regexp.MustCompile(`^\s*-?\s*\d+\.?\s*-?\s*$`)
	sceneHeadStart  = regexp.MustCompile(`(?i)^\s*\d*\s*(INT|EXT)[./\s]`)
	separatorRe     = regexp.MustCompile(`[_\-.]+`)
)

// Non-title lines commonly found on screenplay title pages.
var nonTitleLinePrefixes = []string{
	"FADE IN", "FADE OUT", "WRITTEN BY", "STORY BY", "SCREENPLAY BY",
	"TELEPLAY BY", "CREATED BY", "BASED ON", "AN ORIGINAL", "ADAPTED",
	"REVISED", "REVISION", "EPISODE", "PILOT", "FOR EDUCATIONAL",
	"ALL RIGHTS", "CONTACT", "AGENT", "WGA", "REGISTERED",
}

// ResolveTitle resolves the canonical title for a document following the
// strict precedence order: locked value, project title, metadata title,
// cleaned filename, title-page scan, fallback literal.
//
// A locked non-placeholder title short-circuits everything: downstream LLM
// re-runs must never silently rename a project.
func ResolveTitle(in TitleInput) ResolvedTitle {
	if in.Lock.Locked && !IsPlaceholderTitle(in.Lock.Value) {
		return ResolvedTitle{Canonical: in.Lock.Value, Source: TitleSourceLocked}
	}

	if t := strings.TrimSpace(in.ProjectTitle); t != "" && !IsPlaceholderTitle(t) {
		return ResolvedTitle{Canonical: t, Source: TitleSourceProject}
	}

	working := ""
	if t := strings.TrimSpace(in.MetadataTitle); t != "" {
		if !IsPlaceholderTitle(t) && looksLikeTitle(t) {
			return ResolvedTitle{Canonical: t, Source: TitleSourceMetadata}
		}
		// Keep a placeholder-ish metadata title around as the working title.
		working = t
	}

	if t := cleanFilename(in.Filename); t != "" && !IsPlaceholderTitle(t) && looksLikeTitle(t) {
		return ResolvedTitle{Canonical: t, WorkingTitle: working, Source: TitleSourceFilename}
	}

	if t := scanTitlePage(in.RawText); t != "" {
		return ResolvedTitle{Canonical: t, WorkingTitle: working, Source: TitleSourceTextScan}
	}

	return ResolvedTitle{Canonical: FallbackTitle, WorkingTitle: working, Source: TitleSourceFallback}
}

// IsPlaceholderTitle reports whether s is a known studio/draft placeholder,
// a copyright line, pure punctuation, or a trailing draft/revision marker.
func IsPlaceholderTitle(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return true
	}
	if titlePlaceholders[strings.ToLower(s)] {
		return true
	}
	if copyrightRe.MatchString(s) {
		return true
	}
	if punctOnlyRe.MatchString(s) {
		return true
	}
	if trailingDraftRe.MatchString(s) {
		return true
	}
	return false
}

// looksLikeTitle is the "probably a title" shape check: at most 12 words, at
// most 80 characters, and not a long sentence ending in terminal punctuation.
func looksLikeTitle(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 80 {
		return false
	}
	words := strings.Fields(s)
	if len(words) > 12 {
		return false
	}
	if len(words) > 8 && terminalPunctRe.MatchString(s) {
		return false
	}
	return true
}

func cleanFilename(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if idx := strings.LastIndex(name, "."); idx > 0 {
		name = name[:idx]
	}
	name = separatorRe.ReplaceAllString(name, " ")
	name = strings.Join(strings.Fields(name), " ")
	return titleCase(name)
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		r := []rune(w)
		r[0] = []rune(strings.ToUpper(string(r[0])))[0]
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// scanTitlePage looks for an all-caps candidate line in the text before the
// first scene heading, skipping dates, transitions, credits and page numbers.
func scanTitlePage(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if sceneHeadStart.MatchString(line) {
			// Reached the script body without finding a title.
			return ""
		}
		if dateLineRe.MatchString(line) || pageNumberRe.MatchString(line) {
			continue
		}
		if isNonTitleLine(line) {
			continue
		}
		if line != strings.ToUpper(line) {
			continue
		}
		if IsPlaceholderTitle(line) || !looksLikeTitle(line) {
			continue
		}
		return line
	}
	return ""
}

func isNonTitleLine(line string) bool {
	upper := strings.ToUpper(line)
	for _, prefix := range nonTitleLinePrefixes {
		if strings.HasPrefix(upper, prefix) {
			return true
		}
	}
	return false
}
