package model

import "time"

// Pair identifies one (student, listing) combination scored by the engine.
type Pair struct {
	StudentID string `json:"student_id"`
	ListingID string `json:"listing_id"`
}

// SignalScore is one signal's contribution inside a match breakdown.
// Neutral marks signals that fell back to the defined neutral score
// because the underlying data was missing.
type SignalScore struct {
	Score   float64 `json:"score"`
	Weight  float64 `json:"weight"`
	Neutral bool    `json:"neutral,omitempty"`
}

// MatchScore is the cached compatibility result for a pair. Exactly one
// row exists per pair; IsStale marks rows whose inputs changed after
// ComputedAt, and stale rows remain servable until replaced.
type MatchScore struct {
	StudentID      string                 `json:"student_id"`
	ListingID      string                 `json:"listing_id"`
	CompositeScore int                    `json:"composite_score"`
	Signals        map[string]SignalScore `json:"signals"`
	MatchedSkills  []string               `json:"matched_skills"`
	MissingSkills  []string               `json:"missing_skills"`
	IsStale        bool                   `json:"is_stale"`
	ComputedAt     time.Time              `json:"computed_at"`
	ComputationMs  int64                  `json:"computation_ms"`
}

// Pair returns the identifying pair for the score row.
func (m MatchScore) Pair() Pair {
	return Pair{StudentID: m.StudentID, ListingID: m.ListingID}
}
