package signals

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/campuslink/matchengine/internal/domain/model"
)

const scoreTolerance = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= scoreTolerance
}

func TestEvaluateSkills(t *testing.T) {
	tests := []struct {
		name        string
		student     []string
		required    []string
		wantScore   float64
		wantMatched []string
		wantMissing []string
	}{
		{
			name:      "no required skills is a full match",
			student:   []string{"Go"},
			required:  nil,
			wantScore: 1.0,
		},
		{
			name:        "two of three matched",
			student:     []string{"JavaScript", "React"},
			required:    []string{"JavaScript", "React", "SQL"},
			wantScore:   2.0 / 3.0,
			wantMatched: []string{"JavaScript", "React"},
			wantMissing: []string{"SQL"},
		},
		{
			name:        "matching is case and whitespace insensitive",
			student:     []string{" javascript ", "REACT"},
			required:    []string{"JavaScript", "React"},
			wantScore:   1.0,
			wantMatched: []string{"JavaScript", "React"},
		},
		{
			name:        "no overlap",
			student:     []string{"Figma"},
			required:    []string{"Go", "SQL"},
			wantScore:   0.0,
			wantMissing: []string{"Go", "SQL"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			student := model.StudentProfile{Skills: tt.student}
			listing := model.Listing{RequiredSkills: tt.required}

			score, matched, missing := EvaluateSkills(student, listing)
			if !almostEqual(score, tt.wantScore) {
				t.Errorf("score = %v, want %v", score, tt.wantScore)
			}
			if !reflect.DeepEqual(matched, tt.wantMatched) {
				t.Errorf("matched = %v, want %v", matched, tt.wantMatched)
			}
			if !reflect.DeepEqual(missing, tt.wantMissing) {
				t.Errorf("missing = %v, want %v", missing, tt.wantMissing)
			}
		})
	}
}

func TestEvaluateTemporal(t *testing.T) {
	week := func(hours float64, travel int) model.AvailabilityWindow {
		return model.AvailabilityWindow{AvailableHours: hours, TravelConflicts: travel}
	}

	tests := []struct {
		name        string
		listing     model.Listing
		windows     []model.AvailabilityWindow
		wantScore   float64
		wantNeutral bool
	}{
		{
			name:        "no windows is neutral",
			listing:     model.Listing{RequiredWeeklyHours: 10},
			windows:     nil,
			wantScore:   NeutralScore,
			wantNeutral: true,
		},
		{
			name:      "supply meets demand saturates at one",
			listing:   model.Listing{RequiredWeeklyHours: 10},
			windows:   []model.AvailabilityWindow{week(20, 0), week(30, 0)},
			wantScore: 1.0,
		},
		{
			name:      "shortfall degrades linearly",
			listing:   model.Listing{RequiredWeeklyHours: 20},
			windows:   []model.AvailabilityWindow{week(10, 0), week(10, 0)},
			wantScore: 0.5,
		},
		{
			name:      "travel weeks decay the score",
			listing:   model.Listing{RequiredWeeklyHours: 10},
			windows:   []model.AvailabilityWindow{week(20, 1), week(20, 0)},
			wantScore: 0.5,
		},
		{
			name:      "all weeks travelling scores zero",
			listing:   model.Listing{RequiredWeeklyHours: 10},
			windows:   []model.AvailabilityWindow{week(20, 2), week(20, 1)},
			wantScore: 0.0,
		},
		{
			name:      "zero required hours only applies travel decay",
			listing:   model.Listing{RequiredWeeklyHours: 0},
			windows:   []model.AvailabilityWindow{week(5, 0), week(5, 1)},
			wantScore: 0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, neutral := EvaluateTemporal(tt.listing, tt.windows)
			if !almostEqual(score, tt.wantScore) {
				t.Errorf("score = %v, want %v", score, tt.wantScore)
			}
			if neutral != tt.wantNeutral {
				t.Errorf("neutral = %v, want %v", neutral, tt.wantNeutral)
			}
		})
	}
}

func TestEvaluateSustainability(t *testing.T) {
	tests := []struct {
		name        string
		committed   float64
		wantScore   float64
		wantNeutral bool
	}{
		{name: "negative hours is neutral", committed: -1, wantScore: NeutralScore, wantNeutral: true},
		{name: "comfortable load scores full", committed: 10, wantScore: 1.0},
		{name: "midpoint scores half", committed: 25, wantScore: 0.5},
		{name: "overload ceiling scores zero", committed: 40, wantScore: 0.0},
		{name: "beyond ceiling stays zero", committed: 60, wantScore: 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, neutral := EvaluateSustainability(model.StudentProfile{ActiveCommitmentHours: tt.committed})
			if !almostEqual(score, tt.wantScore) {
				t.Errorf("score = %v, want %v", score, tt.wantScore)
			}
			if neutral != tt.wantNeutral {
				t.Errorf("neutral = %v, want %v", neutral, tt.wantNeutral)
			}
		})
	}
}

func TestEvaluateGrowth(t *testing.T) {
	tests := []struct {
		name        string
		student     model.StudentProfile
		required    []string
		wantScore   float64
		wantNeutral bool
	}{
		{
			name:        "no declared interests is neutral",
			student:     model.StudentProfile{Skills: []string{"Go"}},
			required:    []string{"SQL"},
			wantScore:   NeutralScore,
			wantNeutral: true,
		},
		{
			name:      "listing adds nothing new",
			student:   model.StudentProfile{Skills: []string{"Go", "SQL"}, InterestAreas: []string{"Rust"}},
			required:  []string{"Go", "SQL"},
			wantScore: growthNone,
		},
		{
			name:      "new skill outside interests",
			student:   model.StudentProfile{Skills: []string{"Go"}, InterestAreas: []string{"Rust"}},
			required:  []string{"SQL"},
			wantScore: growthOutside,
		},
		{
			name:      "new skill inside interests",
			student:   model.StudentProfile{Skills: []string{"Go"}, InterestAreas: []string{"SQL"}},
			required:  []string{"SQL"},
			wantScore: growthInterest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, neutral := EvaluateGrowth(tt.student, model.Listing{RequiredSkills: tt.required})
			if !almostEqual(score, tt.wantScore) {
				t.Errorf("score = %v, want %v", score, tt.wantScore)
			}
			if neutral != tt.wantNeutral {
				t.Errorf("neutral = %v, want %v", neutral, tt.wantNeutral)
			}
		})
	}
}

func TestEvaluateTrust(t *testing.T) {
	tests := []struct {
		name        string
		student     model.StudentProfile
		wantScore   float64
		wantNeutral bool
	}{
		{
			name:        "no history is neutral",
			student:     model.StudentProfile{},
			wantScore:   NeutralScore,
			wantNeutral: true,
		},
		{
			name:      "perfect record scores full",
			student:   model.StudentProfile{CompletedEngagements: 5, CompletionRate: 1.0, AverageRating: 5.0},
			wantScore: 1.0,
		},
		{
			name:      "blends completion and rating",
			student:   model.StudentProfile{CompletedEngagements: 2, CompletionRate: 0.5, AverageRating: 2.5},
			wantScore: 0.6*0.5 + 0.4*0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, neutral := EvaluateTrust(tt.student)
			if !almostEqual(score, tt.wantScore) {
				t.Errorf("score = %v, want %v", score, tt.wantScore)
			}
			if neutral != tt.wantNeutral {
				t.Errorf("neutral = %v, want %v", neutral, tt.wantNeutral)
			}
		})
	}
}

func TestEvaluateNetwork(t *testing.T) {
	tests := []struct {
		name        string
		student     model.StudentProfile
		listing     model.Listing
		wantScore   float64
		wantNeutral bool
	}{
		{
			name:        "missing tenant data is neutral",
			student:     model.StudentProfile{},
			listing:     model.Listing{TenantID: "tenant-a"},
			wantScore:   NeutralScore,
			wantNeutral: true,
		},
		{
			name:      "same tenant",
			student:   model.StudentProfile{TenantID: "tenant-a"},
			listing:   model.Listing{TenantID: "tenant-a"},
			wantScore: affinitySameTenant,
		},
		{
			name:      "shared network across tenants",
			student:   model.StudentProfile{TenantID: "tenant-a", NetworkIDs: []string{"net-1", "net-2"}},
			listing:   model.Listing{TenantID: "tenant-b", NetworkIDs: []string{"net-2"}},
			wantScore: affinityShared,
		},
		{
			name:      "no relationship",
			student:   model.StudentProfile{TenantID: "tenant-a", NetworkIDs: []string{"net-1"}},
			listing:   model.Listing{TenantID: "tenant-b", NetworkIDs: []string{"net-9"}},
			wantScore: affinityNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, neutral := EvaluateNetwork(tt.student, tt.listing)
			if !almostEqual(score, tt.wantScore) {
				t.Errorf("score = %v, want %v", score, tt.wantScore)
			}
			if neutral != tt.wantNeutral {
				t.Errorf("neutral = %v, want %v", neutral, tt.wantNeutral)
			}
		})
	}
}

func TestEvaluateProducesAllSixSignals(t *testing.T) {
	student := model.StudentProfile{
		ID:            "s1",
		TenantID:      "tenant-a",
		Skills:        []string{"Go"},
		InterestAreas: []string{"SQL"},
	}
	listing := model.Listing{
		ID:                  "l1",
		TenantID:            "tenant-a",
		RequiredSkills:      []string{"Go", "SQL"},
		RequiredWeeklyHours: 10,
	}
	windows := []model.AvailabilityWindow{
		{WeekStart: time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC), AvailableHours: 20},
	}

	b := Evaluate(DefaultWeights(), student, listing, windows)
	if len(b.Signals) != len(Order) {
		t.Fatalf("expected %d signals, got %d", len(Order), len(b.Signals))
	}
	for _, name := range Order {
		r, ok := b.Signals[name]
		if !ok {
			t.Fatalf("missing signal %q", name)
		}
		if r.Score < 0 || r.Score > 1 {
			t.Errorf("signal %q score %v out of range", name, r.Score)
		}
		if !almostEqual(r.Weight, DefaultWeights().ByName(name)) {
			t.Errorf("signal %q weight %v, want %v", name, r.Weight, DefaultWeights().ByName(name))
		}
	}
	if !reflect.DeepEqual(b.MatchedSkills, []string{"Go"}) {
		t.Errorf("matched = %v", b.MatchedSkills)
	}
	if !reflect.DeepEqual(b.MissingSkills, []string{"SQL"}) {
		t.Errorf("missing = %v", b.MissingSkills)
	}
	if b.Signals[TrustReliability].Neutral != true {
		t.Error("expected trust signal to be neutral for a student with no history")
	}
}

func TestWeightsValidate(t *testing.T) {
	if err := DefaultWeights().Validate(); err != nil {
		t.Fatalf("default weights should validate: %v", err)
	}

	w := DefaultWeights()
	w.SkillsAlignment = 0.9
	if err := w.Validate(); err == nil {
		t.Error("expected error for weights not summing to 1")
	}

	w = DefaultWeights()
	w.TemporalFit = -0.25
	w.SkillsAlignment += 0.5
	if err := w.Validate(); err == nil {
		t.Error("expected error for a negative weight")
	}
}

func TestWeightsByNameUnknownSignal(t *testing.T) {
	if got := DefaultWeights().ByName("nonsense"); got != 0 {
		t.Errorf("unknown signal weight = %v, want 0", got)
	}
}
