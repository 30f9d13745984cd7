package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/campuslink/matchengine/internal/domain/model"
	"github.com/campuslink/matchengine/pkg/metrics"
)

// MemoryScoreStore is the in-memory ScoreStore. A single RWMutex guards
// the map: reads take the shared lock so readers are never blocked by a
// pending recompute, only briefly by the upsert that replaces a row.
type MemoryScoreStore struct {
	mu     sync.RWMutex
	scores map[model.Pair]model.MatchScore
	now    func() time.Time
}

// ScoreStoreOption applies a configuration option to the MemoryScoreStore.
type ScoreStoreOption func(*MemoryScoreStore)

// WithScoreClock overrides the clock used for TTL expiry; tests use it
// to age rows deterministically.
func WithScoreClock(now func() time.Time) ScoreStoreOption {
	return func(s *MemoryScoreStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewMemoryScoreStore creates an empty in-memory score store.
func NewMemoryScoreStore(opts ...ScoreStoreOption) *MemoryScoreStore {
	s := &MemoryScoreStore{
		scores: make(map[model.Pair]model.MatchScore),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upsert writes the single row for the score's pair, clearing staleness.
func (s *MemoryScoreStore) Upsert(ctx context.Context, score model.MatchScore) error {
	score.IsStale = false
	if score.ComputedAt.IsZero() {
		score.ComputedAt = s.now()
	}

	s.mu.Lock()
	s.scores[score.Pair()] = score
	total := len(s.scores)
	s.mu.Unlock()

	metrics.UpdateTotalScores(total)
	return nil
}

// Get returns the row for a pair, stale or not.
func (s *MemoryScoreStore) Get(ctx context.Context, studentID, listingID string) (model.MatchScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	score, ok := s.scores[model.Pair{StudentID: studentID, ListingID: listingID}]
	if !ok {
		return model.MatchScore{}, ErrScoreNotFound
	}
	return score, nil
}

// MarkStaleByStudent marks every row involving the student stale.
func (s *MemoryScoreStore) MarkStaleByStudent(ctx context.Context, studentID string) []model.Pair {
	return s.markStale(func(score model.MatchScore) bool {
		return score.StudentID == studentID
	})
}

// MarkStaleByListing marks every row involving the listing stale.
func (s *MemoryScoreStore) MarkStaleByListing(ctx context.Context, listingID string) []model.Pair {
	return s.markStale(func(score model.MatchScore) bool {
		return score.ListingID == listingID
	})
}

// MarkExpired marks fresh rows older than ttl stale.
func (s *MemoryScoreStore) MarkExpired(ctx context.Context, ttl time.Duration) []model.Pair {
	cutoff := s.now().Add(-ttl)
	return s.markStale(func(score model.MatchScore) bool {
		return score.ComputedAt.Before(cutoff)
	})
}

// markStale flips IsStale on matching fresh rows. Rows are never deleted:
// a stale score stays servable until the recompute replaces it.
func (s *MemoryScoreStore) markStale(match func(model.MatchScore) bool) []model.Pair {
	s.mu.Lock()
	defer s.mu.Unlock()

	var affected []model.Pair
	for pair, score := range s.scores {
		if score.IsStale || !match(score) {
			continue
		}
		score.IsStale = true
		s.scores[pair] = score
		affected = append(affected, pair)
	}
	sortPairs(affected)
	return affected
}

// StalePairs returns every currently stale pair.
func (s *MemoryScoreStore) StalePairs(ctx context.Context) []model.Pair {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stale []model.Pair
	for pair, score := range s.scores {
		if score.IsStale {
			stale = append(stale, pair)
		}
	}
	sortPairs(stale)
	return stale
}

// RankedByListing returns the listing's rows ordered by composite desc.
// Ties rank the older ComputedAt first: a confirmed score outranks a
// freshly computed equal one.
func (s *MemoryScoreStore) RankedByListing(ctx context.Context, listingID string, limit int) []model.MatchScore {
	s.mu.RLock()
	ranked := make([]model.MatchScore, 0)
	for _, score := range s.scores {
		if score.ListingID == listingID {
			ranked = append(ranked, score)
		}
	}
	s.mu.RUnlock()

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].CompositeScore != ranked[j].CompositeScore {
			return ranked[i].CompositeScore > ranked[j].CompositeScore
		}
		if !ranked[i].ComputedAt.Equal(ranked[j].ComputedAt) {
			return ranked[i].ComputedAt.Before(ranked[j].ComputedAt)
		}
		return ranked[i].StudentID < ranked[j].StudentID
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// Stats aggregates the cache contents.
func (s *MemoryScoreStore) Stats(ctx context.Context) ScoreStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := ScoreStats{TotalScores: len(s.scores)}
	if stats.TotalScores == 0 {
		return stats
	}

	students := make(map[string]struct{})
	listings := make(map[string]struct{})
	var scoreSum, msSum float64
	stats.MinScore = 101
	for _, score := range s.scores {
		if score.IsStale {
			stats.StaleScores++
		}
		scoreSum += float64(score.CompositeScore)
		msSum += float64(score.ComputationMs)
		if score.CompositeScore > stats.MaxScore {
			stats.MaxScore = score.CompositeScore
		}
		if score.CompositeScore < stats.MinScore {
			stats.MinScore = score.CompositeScore
		}
		students[score.StudentID] = struct{}{}
		listings[score.ListingID] = struct{}{}
	}
	stats.AvgScore = scoreSum / float64(stats.TotalScores)
	stats.AvgComputationMs = msSum / float64(stats.TotalScores)
	stats.UniqueStudents = len(students)
	stats.UniqueListings = len(listings)

	metrics.UpdateStaleScores(stats.StaleScores)
	return stats
}

func sortPairs(pairs []model.Pair) {
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].StudentID != pairs[j].StudentID {
			return pairs[i].StudentID < pairs[j].StudentID
		}
		return pairs[i].ListingID < pairs[j].ListingID
	})
}
