package recommend

import "versebox/internal/bible"

// Priority tags how an entry earned its place in the result list.
type Priority string

const (
	// PriorityExact marks the single entry returned when the query itself
	// was an exact scripture reference.
	PriorityExact Priority = "exact_reference"
	// PriorityThemeTop marks curated theme verses injected ahead of the
	// general search results.
	PriorityThemeTop Priority = "theme_top"
	// PriorityGeneral marks scored general-search candidates.
	PriorityGeneral Priority = "general"
)

// Request is one recommendation query.
type Request struct {
	// Query is the free-text query: a mood, a situation, or an exact
	// scripture reference.
	Query string `json:"query"`
	// Page is the 0-indexed result page. Ignored for exact-reference hits.
	Page int `json:"page"`
}

// Verse is one ranked result entry.
type Verse struct {
	Reference string          `json:"reference"`
	Text      string          `json:"text"`
	Meta      bible.VerseMeta `json:"metadata"`
	Score     float64         `json:"score"`
	Priority  Priority        `json:"priority,omitempty"`
}

// Response is the ranked, paginated recommendation result. When Exact is
// set, Verses holds exactly one entry and the pagination fields are
// meaningless.
type Response struct {
	Verses     []Verse `json:"verses"`
	Exact      bool    `json:"-"`
	HasMore    bool    `json:"has_more"`
	TotalPages int     `json:"total_pages"`
	Page       int     `json:"page"`
}
