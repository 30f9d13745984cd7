// Package repository defines the engine's storage ports: the match-score
// cache and the source store the engine reads students, listings and
// schedules from.
package repository

import (
	"context"
	"time"

	"github.com/campuslink/matchengine/internal/domain/model"
)

// ScoreStats aggregates the score cache for the stats endpoint.
type ScoreStats struct {
	TotalScores      int     `json:"total_scores"`
	StaleScores      int     `json:"stale_scores"`
	AvgScore         float64 `json:"avg_score"`
	MaxScore         int     `json:"max_score"`
	MinScore         int     `json:"min_score"`
	AvgComputationMs float64 `json:"avg_computation_ms"`
	UniqueStudents   int     `json:"unique_students"`
	UniqueListings   int     `json:"unique_listings"`
}

// ScoreStore persists exactly one MatchScore row per (student, listing)
// pair. Staleness is informational: stale rows stay readable until a
// recompute replaces them, and reads never block on pending recomputes.
type ScoreStore interface {
	// Upsert writes or overwrites the single row for the score's pair
	// and clears its staleness.
	Upsert(ctx context.Context, score model.MatchScore) error

	// Get returns the row for a pair, stale or not.
	// Returns ErrScoreNotFound when the pair has never been computed.
	Get(ctx context.Context, studentID, listingID string) (model.MatchScore, error)

	// MarkStaleByStudent flips IsStale for every row involving the
	// student and returns the affected pairs.
	MarkStaleByStudent(ctx context.Context, studentID string) []model.Pair

	// MarkStaleByListing flips IsStale for every row involving the
	// listing and returns the affected pairs.
	MarkStaleByListing(ctx context.Context, listingID string) []model.Pair

	// MarkExpired flips IsStale for every fresh row older than ttl and
	// returns the affected pairs.
	MarkExpired(ctx context.Context, ttl time.Duration) []model.Pair

	// StalePairs returns every currently stale pair.
	StalePairs(ctx context.Context) []model.Pair

	// RankedByListing returns up to limit rows for a listing ordered by
	// composite desc; ties rank the older ComputedAt first.
	RankedByListing(ctx context.Context, listingID string, limit int) []model.MatchScore

	// Stats aggregates the cache contents.
	Stats(ctx context.Context) ScoreStats
}

// SourceStore is the engine's read/write port onto collaborator-owned
// records. Students, listings and the season catalog are read-only here;
// schedule entries are owned by the engine's schedule API.
type SourceStore interface {
	Student(ctx context.Context, id string) (model.StudentProfile, error)
	Students(ctx context.Context) ([]model.StudentProfile, error)

	Listing(ctx context.Context, id string) (model.Listing, error)
	OpenListings(ctx context.Context) ([]model.Listing, error)

	SportSeasons(ctx context.Context) ([]model.SportSeason, error)
	SportSeasonMap(ctx context.Context) (map[string]model.SportSeason, error)

	SchedulesByStudent(ctx context.Context, studentID string) ([]model.ScheduleEntry, error)
	CreateSchedule(ctx context.Context, entry model.ScheduleEntry) (model.ScheduleEntry, error)
	DeleteSchedule(ctx context.Context, studentID, entryID string) error
}
