// internal/breakdown/characters.go
package breakdown

import (
	"regexp"
	"strings"
)

// CharacterClass is the three-tier classification of a character cue.
type CharacterClass int

const (
	ClassCast CharacterClass = iota
	ClassFeaturedExtra
	ClassVoice
)

var (
	pureNumberRe     = regexp.MustCompile(`^\d+$`)
	sceneNumPrefixRe = regexp.MustCompile(`(?i)^\d+\s+(INT|EXT)\b`)
	trailingTimeRe   = regexp.MustCompile(`(?i)-\s*(DAY|NIGHT|DAWN|DUSK|MORNING|AFTERNOON|EVENING|CONTINUOUS|LATER|SAME)\s*\.?$`)
	contractionRe    = regexp.MustCompile(`(?i)\b\w+'(s|t|re|ve|ll|d|m)\b`)
	numberedSuffixRe = regexp.MustCompile(`(#\d+|\d+)\s*$`)
	genericPatternRe = regexp.MustCompile(`(?i)^(MAN|WOMAN|BOY|GIRL|KID|GUY)(\s+(#?\d+|[A-Z]))?$`)
	commaProperRe    = regexp.MustCompile(`,\s+[A-Z][a-z]`)
	continuationRe   = regexp.MustCompile(`(?i)\s*(\(CONT'?D\.?\)|CONT'?D\.?|\(V\.?O\.?\)|\(O\.?S\.?\)|\(O\.?C\.?\)|\(ON\s+(PHONE|TV|RADIO|SCREEN|MONITOR)\)|\(FILTERED\)|\(PRE-?LAP\)|\(SUBTITLED?\)|\(INTO\s+\w+\))\s*$`)
)

// Camera and editing terms that start action lines, not character cues.
var cameraTermPrefixes = []string{
	"ANGLE", "CLOSE", "CLOSEUP", "CLOSE-UP", "INSERT", "POV", "P.O.V",
	"WIDE", "TIGHT", "PAN", "TILT", "ZOOM", "PUSH", "PULL", "CRANE",
	"AERIAL", "TRACKING", "MOVING", "HANDHELD", "STEADICAM", "DOLLY",
	"EXTREME", "ESTABLISHING", "REVERSE", "OVERHEAD", "UNDERWATER",
	"SLOW MOTION", "SLO-MO", "FREEZE", "SPLIT SCREEN", "MONTAGE",
	"SERIES OF", "FLASHBACK", "FLASH CUT", "DREAM SEQUENCE", "STOCK",
}

// Action-instruction verbs that start stage directions.
var actionVerbPrefixes = []string{
	"HEAR", "CUT", "FADE", "DISSOLVE", "SMASH", "MATCH", "WIPE", "IRIS",
	"HOLD", "SEE", "WATCH", "REVEAL", "FOLLOW", "FIND", "MOVE", "RESUME",
	"BACK TO", "CLOSER ON", "ON THE", "UP ON", "DOWN ON", "INTERCUT",
	"SUPER", "TITLE", "ROLL", "BEGIN", "END",
}

// Common sentence starters; combined with length they flag dialogue
// fragments mistaken for cues.
var sentenceStarters = map[string]bool{
	"THE": true, "A": true, "AN": true, "IT": true, "ITS": true,
	"HE": true, "SHE": true, "THEY": true, "WE": true, "I": true,
	"THIS": true, "THAT": true, "THESE": true, "THOSE": true,
	"AND": true, "BUT": true, "OR": true, "AS": true, "IF": true,
	"THEN": true, "NOW": true, "WHEN": true, "WHERE": true, "WHAT": true,
	"THERE": true, "HERE": true, "SO": true, "NO": true, "YES": true,
}

// Single-word onomatopoeia that shows up as fake cues in action lines.
var onomatopoeiaWords = map[string]bool{
	"BANG": true, "BOOM": true, "CRASH": true, "POW": true, "WHAM": true,
	"BLAM": true, "THUD": true, "THUMP": true, "WHOOSH": true, "SWOOSH": true,
	"SCREECH": true, "CRACK": true, "SNAP": true, "POP": true, "HISS": true,
	"BUZZ": true, "RING": true, "BEEP": true, "HONK": true, "CLICK": true,
	"CLANG": true, "CLANK": true, "RATTLE": true, "RUMBLE": true, "ROAR": true,
	"SPLASH": true, "SLAM": true, "KNOCK": true, "CRUNCH": true, "SQUEAL": true,
	"WHIR": true, "KABOOM": true, "KA-BOOM": true, "WHACK": true, "SMACK": true,
}

// characterBlacklist is the consolidated noise table: sound effects, camera
// and editing jargon, time indicators, screen-text conventions, and assorted
// parser artifacts. Entries match exactly or as a whole against the
// normalized uppercase name; multi-word entries also match as substrings.
var characterBlacklist = map[string]bool{
	// transitions and editing
	"CUT TO": true, "CUT TO:": true, "CUT": true, "HARD CUT": true,
	"SMASH CUT": true, "SMASH CUT TO": true, "MATCH CUT": true,
	"MATCH CUT TO": true, "JUMP CUT": true, "QUICK CUT": true,
	"FADE IN": true, "FADE OUT": true, "FADE TO": true, "FADE TO BLACK": true,
	"FADE UP": true, "DISSOLVE": true, "DISSOLVE TO": true,
	"WIPE TO": true, "IRIS IN": true, "IRIS OUT": true,
	"TIME CUT": true, "FLASH CUT": true, "FINAL SHOT": true,
	"END CREDITS": true, "ROLL CREDITS": true, "CREDITS": true,
	"TITLE CARD": true, "TITLE SEQUENCE": true, "MAIN TITLES": true,
	"OPENING CREDITS": true, "THE END": true, "END": true, "FIN": true,
	"TO BE CONTINUED": true,

	// camera jargon
	"CLOSE UP": true, "CLOSE-UP": true, "EXTREME CLOSE UP": true,
	"WIDE SHOT": true, "WIDE ANGLE": true, "LONG SHOT": true,
	"MEDIUM SHOT": true, "TWO SHOT": true, "ESTABLISHING SHOT": true,
	"AERIAL SHOT": true, "CRANE SHOT": true, "TRACKING SHOT": true,
	"DRONE SHOT": true, "INSERT SHOT": true, "REACTION SHOT": true,
	"ANGLE ON": true, "CLOSE ON": true, "CAMERA": true, "LENS": true,
	"BIRDS EYE VIEW": true, "BIRD'S EYE": true, "HIGH ANGLE": true,
	"LOW ANGLE": true, "DUTCH ANGLE": true, "OVER THE SHOULDER": true,
	"SPLIT SCREEN": true, "SLOW MOTION": true, "FAST MOTION": true,
	"FREEZE FRAME": true, "STOCK FOOTAGE": true, "ARCHIVE FOOTAGE": true,

	// structure and time indicators
	"MONTAGE": true, "END MONTAGE": true, "SERIES OF SHOTS": true,
	"FLASHBACK": true, "END FLASHBACK": true, "FLASH FORWARD": true,
	"DREAM SEQUENCE": true, "END DREAM": true, "LATER": true,
	"MOMENTS LATER": true, "MEANWHILE": true, "CONTINUOUS": true,
	"SAME TIME": true, "SAME": true, "EARLIER": true, "THE NEXT DAY": true,
	"NEXT DAY": true, "THAT NIGHT": true, "PRESENT DAY": true,
	"YEARS LATER": true, "HOURS LATER": true, "MINUTES LATER": true,
	"ONE YEAR LATER": true, "INTERCUT": true, "BACK TO SCENE": true,
	"BACK TO PRESENT": true, "RESUME SCENE": true, "PRELAP": true,
	"PRE-LAP": true, "BEAT": true, "PAUSE": true, "SILENCE": true,

	// screen text conventions
	"SUPER": true, "SUPERIMPOSE": true, "SUPERIMPOSED": true, "CHYRON": true,
	"SUBTITLE": true, "SUBTITLES": true, "ON SCREEN": true, "ONSCREEN": true,
	"TEXT ON SCREEN": true, "SCREEN TEXT": true, "CAPTION": true,
	"LOWER THIRD": true, "GRAPHIC": true, "LEGEND": true,

	// sound direction
	"SFX": true, "VFX": true, "SOUND": true, "SOUND EFFECT": true,
	"SOUND FX": true, "MUSIC": true, "MUSIC CUE": true, "SONG": true,
	"SCORE": true, "SOUNDTRACK": true, "AMBIENT": true, "SILENT": true,
	"GUNSHOT": true, "GUNSHOTS": true, "GUNFIRE": true, "EXPLOSION": true,
	"THUNDER": true, "LIGHTNING": true, "SIRENS": true, "SIREN": true,
	"FOOTSTEPS": true, "HEARTBEAT": true, "BREATHING": true,
	"PHONE RINGS": true, "DOORBELL": true, "ALARM": true, "STATIC": true,
	"APPLAUSE": true, "LAUGHTER": true, "SCREAMING": true, "SCREAMS": true,

	// parser artifacts
	"CONTINUED": true, "CONT'D": true, "CONTD": true, "OMITTED": true,
	"OMIT": true, "REVISED": true, "REVISION": true, "DRAFT": true,
	"SCENE": true, "SCENES": true, "PAGE": true, "ACT ONE": true,
	"ACT TWO": true, "ACT THREE": true, "COLD OPEN": true, "TEASER": true,
	"TAG": true, "EPILOGUE": true, "PROLOGUE": true, "CHAPTER": true,
	"NOTE": true, "NOTES": true, "MORE": true, "(MORE)": true,
	"BLACK": true, "BLACK SCREEN": true, "WHITE": true, "DARKNESS": true,
	"BLACKNESS": true, "NOTHING": true, "EVERYONE": true, "EVERYBODY": true,
	"ALL": true, "BOTH": true, "GROUP": true, "CROWD": true, "VARIOUS": true,
	"UNKNOWN": true, "UNSEEN": true, "OFFSCREEN": true, "OFF SCREEN": true,
}

// Substring keywords marking a functional voice role rather than an
// on-camera character.
var voiceKeywords = []string{
	"VOICE", "V.O", "(V.O", "O.S", "O.C", "NARRATOR", "RADIO", "INTERCOM",
	"ANNOUNCER", "OPERATOR", "DISPATCHER", "DISPATCH", "P.A.", "LOUDSPEAKER",
	"SPEAKER", "TV ANCHOR", "NEWSCASTER", "NEWSREADER", "GPS", "COMPUTER VOICE",
	"AUTOMATED", "RECORDING", "VOICEMAIL", "ANSWERING MACHINE", "ON PHONE",
	"PHONE VOICE", "WALKIE", "PODCAST",
}

// Occupation and rank keywords marking generic or numbered extras.
var extraKeywords = []string{
	"GUARD", "SOLDIER", "COP", "POLICE", "OFFICER", "TROOPER", "DEPUTY",
	"DETECTIVE", "AGENT", "NURSE", "DOCTOR", "MEDIC", "PARAMEDIC", "SURGEON",
	"WAITER", "WAITRESS", "SERVER", "BARTENDER", "BARISTA", "COOK", "CHEF",
	"DRIVER", "CHAUFFEUR", "PILOT", "ATTENDANT", "STEWARD", "STEWARDESS",
	"CONDUCTOR", "CLERK", "CASHIER", "TELLER", "RECEPTIONIST", "SECRETARY",
	"ASSISTANT", "INTERN", "TECHNICIAN", "TECH", "MECHANIC", "JANITOR",
	"DOORMAN", "BOUNCER", "USHER", "VALET", "BELLHOP", "MAID", "BUTLER",
	"REPORTER", "JOURNALIST", "PHOTOGRAPHER", "CAMERAMAN", "ANCHOR",
	"CUSTOMER", "PATRON", "SHOPPER", "PASSENGER", "COMMUTER", "PEDESTRIAN",
	"BYSTANDER", "ONLOOKER", "NEIGHBOR", "VILLAGER", "TOWNSPERSON", "LOCAL",
	"STUDENT", "TEACHER", "PROFESSOR", "PRINCIPAL", "COACH", "REFEREE",
	"THUG", "HENCHMAN", "GOON", "GANGSTER", "MOBSTER", "ROBBER", "LOOKOUT",
	"PRISONER", "INMATE", "CONVICT", "WARDEN", "BAILIFF", "JUDGE", "JUROR",
	"LAWYER", "ATTORNEY", "PROSECUTOR", "SERGEANT", "CORPORAL", "PRIVATE",
	"LIEUTENANT", "COMMANDER", "MARINE", "SAILOR", "AIRMAN", "RECRUIT",
	"SENTRY", "SCOUT", "MESSENGER", "COURIER", "VENDOR", "MERCHANT",
	"FARMER", "WORKER", "LABORER", "FOREMAN", "MINER", "FISHERMAN",
	"HUNTER", "RANGER", "PRIEST", "MONK", "NUN", "PASTOR", "MINISTER",
	"SECURITY",
}

// normalizeCueName strips screenplay continuation suffixes and collapses
// whitespace. The result feeds both classification and deduplication.
func normalizeCueName(name string) string {
	name = strings.TrimSpace(name)
	for {
		stripped := continuationRe.ReplaceAllString(name, "")
		stripped = strings.TrimSpace(stripped)
		if stripped == name {
			break
		}
		name = stripped
	}
	return strings.Join(strings.Fields(name), " ")
}

// NormalizeCharacterName is the exported form of cue normalization.
func NormalizeCharacterName(name string) string {
	return normalizeCueName(name)
}
