// internal/models/breakdown.go
package models

// NormalizedBreakdown is the stable contract downstream consumers rely on.
// Counts are always recomputed from the final state, never carried over from
// the input, and warnings only ever accumulate.
type NormalizedBreakdown struct {
	Title      string           `json:"title"`
	TitleLock  TitleLock        `json:"title_lock"`
	Scenes     SceneSection     `json:"scenes"`
	Characters CharacterBuckets `json:"characters"`
	Locations  LocationSet      `json:"locations"`
	Props      []any            `json:"props"`
	Setpieces  []any            `json:"setpieces"`
	Counts     BreakdownCounts  `json:"counts"`
	Warnings   []Warning        `json:"_warnings"`
}

// TitleLock records a resolved canonical title. Once Locked is true the
// resolver echoes Value verbatim on every subsequent pass; the transition is
// one-way.
type TitleLock struct {
	Value  string `json:"value,omitempty"`
	Locked bool   `json:"locked"`
}

type SceneSection struct {
	Total int     `json:"total"`
	List  []Scene `json:"list"`
}

// Scene is a breakdown scene entry. Heading and Slugline are alternative
// spellings of the same field in upstream output.
type Scene struct {
	Number   int    `json:"number,omitempty"`
	Heading  string `json:"heading,omitempty"`
	Slugline string `json:"slugline,omitempty"`
	Synopsis string `json:"synopsis,omitempty"`
}

// CharacterBuckets partitions characters into three disjoint tiers. A name
// appears in exactly one bucket.
type CharacterBuckets struct {
	Cast                    []Character `json:"cast"`
	FeaturedExtrasWithLines []Character `json:"featured_extras_with_lines"`
	VoicesAndFunctional     []Character `json:"voices_and_functional"`
}

type Character struct {
	Name        string `json:"name"`
	Role        string `json:"role,omitempty"`
	ScenesCount int    `json:"scenes_count,omitempty"`
	Priority    string `json:"priority,omitempty"`
}

type LocationSet struct {
	Base     []Location `json:"base"`
	Variants []string   `json:"variants"`
}

// Location groups every INT/EXT+time heading seen for one base name.
type Location struct {
	Name     string   `json:"name"`
	Variants []string `json:"variants"`
}

type BreakdownCounts struct {
	ScenesTotal           int `json:"scenes_total"`
	CastTotal             int `json:"cast_characters_total"`
	FeaturedExtrasTotal   int `json:"featured_extras_total"`
	VoicesTotal           int `json:"voices_and_functional_total"`
	LocationsBaseTotal    int `json:"locations_base_total"`
	LocationVariantsTotal int `json:"location_variants_total"`
	PropsTotal            int `json:"props_total"`
	SetpiecesTotal        int `json:"setpieces_total"`
}

// Warning is a diagnostic trail entry with a stable code for later audit.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
