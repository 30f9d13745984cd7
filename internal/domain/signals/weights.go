package signals

import (
	"fmt"
	"math"
)

// weightEpsilon tolerates floating-point drift when checking the unit-sum
// invariant.
const weightEpsilon = 1e-9

// Weights is the versioned weight configuration for the six signals.
// It is loaded once at process start and passed into scoring explicitly;
// changing it is a deploy-time event that invalidates the score cache.
type Weights struct {
	Version          string  `koanf:"version"`
	SkillsAlignment  float64 `koanf:"skills_alignment"`
	TemporalFit      float64 `koanf:"temporal_fit"`
	Sustainability   float64 `koanf:"sustainability"`
	GrowthTrajectory float64 `koanf:"growth_trajectory"`
	TrustReliability float64 `koanf:"trust_reliability"`
	NetworkAffinity  float64 `koanf:"network_affinity"`
}

// DefaultWeights returns the production weight set.
func DefaultWeights() Weights {
	return Weights{
		Version:          "v1",
		SkillsAlignment:  0.30,
		TemporalFit:      0.25,
		Sustainability:   0.15,
		GrowthTrajectory: 0.10,
		TrustReliability: 0.10,
		NetworkAffinity:  0.10,
	}
}

// ByName returns the weight assigned to the named signal.
func (w Weights) ByName(name string) float64 {
	switch name {
	case SkillsAlignment:
		return w.SkillsAlignment
	case TemporalFit:
		return w.TemporalFit
	case Sustainability:
		return w.Sustainability
	case GrowthTrajectory:
		return w.GrowthTrajectory
	case TrustReliability:
		return w.TrustReliability
	case NetworkAffinity:
		return w.NetworkAffinity
	default:
		return 0
	}
}

// Sum returns the total weight across all six signals.
func (w Weights) Sum() float64 {
	return w.SkillsAlignment + w.TemporalFit + w.Sustainability +
		w.GrowthTrajectory + w.TrustReliability + w.NetworkAffinity
}

// Validate enforces the weight invariants: every weight non-negative and
// the six weights summing to exactly 1.0 within epsilon. A violation is
// a configuration error and must abort startup.
func (w Weights) Validate() error {
	for _, name := range Order {
		if w.ByName(name) < 0 {
			return fmt.Errorf("%w: %s is negative", ErrInvalidWeights, name)
		}
	}
	if diff := math.Abs(w.Sum() - 1.0); diff > weightEpsilon {
		return fmt.Errorf("%w: weights sum to %v, want 1.0", ErrInvalidWeights, w.Sum())
	}
	return nil
}
