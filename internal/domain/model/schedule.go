// Package model contains domain models passed between layers.
package model

import "time"

// ScheduleType classifies a schedule entry's source.
type ScheduleType string

const (
	ScheduleTypeSport  ScheduleType = "sport"
	ScheduleTypeCustom ScheduleType = "custom"
	ScheduleTypeWork   ScheduleType = "work"
)

// IsValid reports whether the schedule type is one of the known kinds.
func (s ScheduleType) IsValid() bool {
	switch s {
	case ScheduleTypeSport, ScheduleTypeCustom, ScheduleTypeWork:
		return true
	default:
		return false
	}
}

// AvailabilityLevel is the qualitative bucket for a weekly window.
type AvailabilityLevel string

const (
	AvailabilityNone   AvailabilityLevel = "none"
	AvailabilityLow    AvailabilityLevel = "low"
	AvailabilityMedium AvailabilityLevel = "medium"
	AvailabilityHigh   AvailabilityLevel = "high"
)

// SportSeason is catalog data describing a recurring athletic commitment.
// Months are 1-12 and may wrap across the year boundary (e.g. Nov-Feb).
type SportSeason struct {
	ID                      string  `json:"id" db:"id"`
	SportName               string  `json:"sport_name" db:"sport_name"`
	SeasonType              string  `json:"season_type" db:"season_type"`
	StartMonth              int     `json:"start_month" db:"start_month"`
	EndMonth                int     `json:"end_month" db:"end_month"`
	PracticeHoursPerWeek    float64 `json:"practice_hours_per_week" db:"practice_hours_per_week"`
	CompetitionHoursPerWeek float64 `json:"competition_hours_per_week" db:"competition_hours_per_week"`
	TravelDaysPerMonth      float64 `json:"travel_days_per_month" db:"travel_days_per_month"`
	IntensityLevel          string  `json:"intensity_level" db:"intensity_level"`
}

// InSeason reports whether the given month falls inside the season,
// handling ranges that wrap across the year boundary.
func (s SportSeason) InSeason(month int) bool {
	if s.StartMonth < 1 || s.EndMonth < 1 || s.StartMonth > 12 || s.EndMonth > 12 {
		return false
	}
	if s.StartMonth <= s.EndMonth {
		return month >= s.StartMonth && month <= s.EndMonth
	}
	return month >= s.StartMonth || month <= s.EndMonth
}

// WeeklyHours is the total committed hours the season implies per in-season week.
func (s SportSeason) WeeklyHours() float64 {
	return s.PracticeHoursPerWeek + s.CompetitionHoursPerWeek
}

// CustomBlock is a recurring weekly time block on a custom or work schedule.
type CustomBlock struct {
	Day       time.Weekday `json:"day"`
	StartHour float64      `json:"start_hour"`
	EndHour   float64      `json:"end_hour"`
	Label     string       `json:"label"`
}

// Hours returns the duration of the block in hours.
func (b CustomBlock) Hours() float64 {
	return b.EndHour - b.StartHour
}

// DateRange is a closed interval of calendar days.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Overlaps reports whether the range intersects [from, to).
func (r DateRange) Overlaps(from, to time.Time) bool {
	return r.Start.Before(to) && r.End.After(from)
}

// ScheduleEntry is one schedule source belonging to a single student.
// A student may hold several concurrent active entries; their effects on
// a week's committed hours are additive.
type ScheduleEntry struct {
	ID                    string        `json:"id" db:"id"`
	StudentID             string        `json:"student_id" db:"student_id"`
	ScheduleType          ScheduleType  `json:"schedule_type" db:"schedule_type"`
	SportSeasonID         string        `json:"sport_season_id,omitempty" db:"sport_season_id"`
	CustomBlocks          []CustomBlock `json:"custom_blocks,omitempty"`
	AvailableHoursPerWeek *float64      `json:"available_hours_per_week,omitempty" db:"available_hours_per_week"`
	TravelConflicts       []DateRange   `json:"travel_conflicts,omitempty"`
	EffectiveStart        time.Time     `json:"effective_start" db:"effective_start"`
	EffectiveEnd          time.Time     `json:"effective_end" db:"effective_end"`
	IsActive              bool          `json:"is_active" db:"is_active"`
}

// CoversWeek reports whether the entry's effective window intersects the
// week starting at weekStart. A zero bound is open-ended on that side.
func (e ScheduleEntry) CoversWeek(weekStart time.Time) bool {
	weekEnd := weekStart.AddDate(0, 0, 7)
	if !e.EffectiveStart.IsZero() && !e.EffectiveStart.Before(weekEnd) {
		return false
	}
	if !e.EffectiveEnd.IsZero() && !e.EffectiveEnd.After(weekStart) {
		return false
	}
	return true
}

// AvailabilityWindow is a derived weekly summary of a student's free hours.
// It is a deterministic projection over schedule entries and is never
// persisted as a source of truth.
type AvailabilityWindow struct {
	WeekStart           time.Time         `json:"week_start"`
	WeekEnd             time.Time         `json:"week_end"`
	AvailableHours      float64           `json:"available_hours"`
	TotalCommittedHours float64           `json:"total_committed_hours"`
	SportConflicts      []string          `json:"sport_conflicts,omitempty"`
	TravelConflicts     int               `json:"travel_conflicts"`
	OverallAvailability AvailabilityLevel `json:"overall_availability"`
}
