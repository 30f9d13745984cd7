// Package scoring combines evaluated signals into the 0-100 composite
// match score. The computation is deterministic: no clock, no randomness,
// same breakdown in means the same composite out.
package scoring

import (
	"math"

	"github.com/campuslink/matchengine/internal/domain/model"
	"github.com/campuslink/matchengine/internal/domain/signals"
)

const maxComposite = 100

// Composite folds the six weighted signal scores into a single integer
// in [0,100]: round(100 * sum(score_i * weight_i)), clamped.
func Composite(b signals.Breakdown) int {
	var sum float64
	for _, name := range signals.Order {
		r := b.Signals[name]
		sum += r.Score * r.Weight
	}
	composite := int(math.Round(maxComposite * sum))
	if composite < 0 {
		return 0
	}
	if composite > maxComposite {
		return maxComposite
	}
	return composite
}

// Assemble converts a breakdown into the MatchScore row persisted for a
// pair. ComputedAt and ComputationMs are supplied by the caller so the
// scoring path itself stays free of clock reads.
func Assemble(studentID, listingID string, b signals.Breakdown) model.MatchScore {
	scores := make(map[string]model.SignalScore, len(signals.Order))
	for _, name := range signals.Order {
		r := b.Signals[name]
		scores[name] = model.SignalScore{Score: r.Score, Weight: r.Weight, Neutral: r.Neutral}
	}
	return model.MatchScore{
		StudentID:      studentID,
		ListingID:      listingID,
		CompositeScore: Composite(b),
		Signals:        scores,
		MatchedSkills:  b.MatchedSkills,
		MissingSkills:  b.MissingSkills,
	}
}
