// Package signals evaluates the six match signals for a (student,
// listing) pair. Every evaluator is a pure function into [0,1] with no
// shared state, so signals can run in any order and the same inputs
// always produce the same breakdown.
package signals

import (
	"sort"
	"strings"

	"github.com/campuslink/matchengine/internal/domain/model"
)

// Signal names. The set is closed: the engine iterates Order, never an
// open-ended registry.
const (
	SkillsAlignment  = "skills_alignment"
	TemporalFit      = "temporal_fit"
	Sustainability   = "sustainability"
	GrowthTrajectory = "growth_trajectory"
	TrustReliability = "trust_reliability"
	NetworkAffinity  = "network_affinity"
)

// Order fixes the evaluation sequence of the six signals.
var Order = [...]string{
	SkillsAlignment,
	TemporalFit,
	Sustainability,
	GrowthTrajectory,
	TrustReliability,
	NetworkAffinity,
}

// NeutralScore is returned when an evaluator cannot compute from the
// available data. The breakdown flags such signals instead of failing.
const NeutralScore = 0.5

// Evaluator tuning constants.
const (
	travelPenaltyWeight = 1.0  // full decay when every listing week has travel
	comfortableLoad     = 10.0 // committed hours with no sustainability penalty
	overloadCeiling     = 40.0 // committed hours at which sustainability hits 0
	growthNone          = 0.25 // listing adds nothing new
	growthOutside       = 0.6  // new skills, none in declared interests
	growthInterest      = 1.0  // at least one new skill in declared interests
	trustCompletionPart = 0.6
	trustRatingPart     = 0.4
	maxRating           = 5.0
	affinitySameTenant  = 1.0
	affinityShared      = 0.75
	affinityNone        = 0.25
)

// Result is one evaluated signal.
type Result struct {
	Score   float64
	Weight  float64
	Neutral bool
}

// Breakdown carries all six signal results plus the skill comparison
// emitted by the skills evaluator.
type Breakdown struct {
	Signals       map[string]Result
	MatchedSkills []string
	MissingSkills []string
}

// Evaluate runs every signal in fixed order and assembles the breakdown.
func Evaluate(w Weights, student model.StudentProfile, listing model.Listing, windows []model.AvailabilityWindow) Breakdown {
	skills, matched, missing := EvaluateSkills(student, listing)

	b := Breakdown{
		Signals:       make(map[string]Result, len(Order)),
		MatchedSkills: matched,
		MissingSkills: missing,
	}
	b.Signals[SkillsAlignment] = Result{Score: skills, Weight: w.SkillsAlignment}

	temporal, temporalNeutral := EvaluateTemporal(listing, windows)
	b.Signals[TemporalFit] = Result{Score: temporal, Weight: w.TemporalFit, Neutral: temporalNeutral}

	sustain, sustainNeutral := EvaluateSustainability(student)
	b.Signals[Sustainability] = Result{Score: sustain, Weight: w.Sustainability, Neutral: sustainNeutral}

	growth, growthNeutral := EvaluateGrowth(student, listing)
	b.Signals[GrowthTrajectory] = Result{Score: growth, Weight: w.GrowthTrajectory, Neutral: growthNeutral}

	trust, trustNeutral := EvaluateTrust(student)
	b.Signals[TrustReliability] = Result{Score: trust, Weight: w.TrustReliability, Neutral: trustNeutral}

	network, networkNeutral := EvaluateNetwork(student, listing)
	b.Signals[NetworkAffinity] = Result{Score: network, Weight: w.NetworkAffinity, Neutral: networkNeutral}
	return b
}

// EvaluateSkills scores the overlap between the listing's required
// skills and the student's skills. A listing requiring no skills scores
// a full match by definition.
func EvaluateSkills(student model.StudentProfile, listing model.Listing) (score float64, matched, missing []string) {
	if len(listing.RequiredSkills) == 0 {
		return 1.0, nil, nil
	}

	have := make(map[string]bool, len(student.Skills))
	for _, s := range student.Skills {
		have[normalizeSkill(s)] = true
	}

	for _, required := range listing.RequiredSkills {
		if have[normalizeSkill(required)] {
			matched = append(matched, required)
		} else {
			missing = append(missing, required)
		}
	}
	sort.Strings(matched)
	sort.Strings(missing)

	return float64(len(matched)) / float64(len(listing.RequiredSkills)), matched, missing
}

// EvaluateTemporal compares the student's mean available hours over the
// listing duration against the listing's required weekly hours. The
// score saturates at 1.0 when supply meets demand, degrades linearly
// with the shortfall, and decays toward 0 as travel conflicts cover
// more of the listing's weeks.
func EvaluateTemporal(listing model.Listing, windows []model.AvailabilityWindow) (float64, bool) {
	if len(windows) == 0 {
		return NeutralScore, true
	}

	var totalHours float64
	var travelWeeks int
	for _, w := range windows {
		totalHours += w.AvailableHours
		if w.TravelConflicts > 0 {
			travelWeeks++
		}
	}
	mean := totalHours / float64(len(windows))

	score := 1.0
	if listing.RequiredWeeklyHours > 0 && mean < listing.RequiredWeeklyHours {
		score = mean / listing.RequiredWeeklyHours
	}

	travelRatio := float64(travelWeeks) / float64(len(windows))
	score *= 1 - travelPenaltyWeight*travelRatio

	return clamp01(score), false
}

// EvaluateSustainability penalizes students whose accepted engagements
// already consume most of their week.
func EvaluateSustainability(student model.StudentProfile) (float64, bool) {
	committed := student.ActiveCommitmentHours
	if committed < 0 {
		return NeutralScore, true
	}
	if committed <= comfortableLoad {
		return 1.0, false
	}
	if committed >= overloadCeiling {
		return 0.0, false
	}
	return (overloadCeiling - committed) / (overloadCeiling - comfortableLoad), false
}

// EvaluateGrowth rewards listings that extend the student's skill set,
// strongest when a new skill falls inside their declared interest areas.
func EvaluateGrowth(student model.StudentProfile, listing model.Listing) (float64, bool) {
	if len(student.InterestAreas) == 0 {
		return NeutralScore, true
	}

	have := make(map[string]bool, len(student.Skills))
	for _, s := range student.Skills {
		have[normalizeSkill(s)] = true
	}
	interests := make(map[string]bool, len(student.InterestAreas))
	for _, area := range student.InterestAreas {
		interests[normalizeSkill(area)] = true
	}

	var newSkills, interesting int
	for _, required := range listing.RequiredSkills {
		key := normalizeSkill(required)
		if have[key] {
			continue
		}
		newSkills++
		if interests[key] {
			interesting++
		}
	}

	switch {
	case interesting > 0:
		return growthInterest, false
	case newSkills > 0:
		return growthOutside, false
	default:
		return growthNone, false
	}
}

// EvaluateTrust derives reliability from the student's completed
// engagement history. Students with no history score neutral.
func EvaluateTrust(student model.StudentProfile) (float64, bool) {
	if student.CompletedEngagements == 0 {
		return NeutralScore, true
	}
	rating := student.AverageRating / maxRating
	return clamp01(trustCompletionPart*student.CompletionRate + trustRatingPart*rating), false
}

// EvaluateNetwork rewards tenant and shared-network affinity between the
// student and the listing owner.
func EvaluateNetwork(student model.StudentProfile, listing model.Listing) (float64, bool) {
	if student.TenantID == "" || listing.TenantID == "" {
		return NeutralScore, true
	}
	if student.TenantID == listing.TenantID {
		return affinitySameTenant, false
	}
	shared := make(map[string]bool, len(student.NetworkIDs))
	for _, id := range student.NetworkIDs {
		shared[id] = true
	}
	for _, id := range listing.NetworkIDs {
		if shared[id] {
			return affinityShared, false
		}
	}
	return affinityNone, false
}

func normalizeSkill(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
