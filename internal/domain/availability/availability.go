// Package availability builds weekly availability windows from a
// student's schedule sources. Windows are a pure projection over
// schedule entries and the sport-season catalog: the same inputs always
// produce the same windows, so nothing here is persisted.
package availability

import (
	"time"

	"github.com/campuslink/matchengine/internal/domain/model"
)

// Default capacity and classification thresholds. A week's free hours
// are capped at a standard work-week ceiling; the level cut-offs were
// chosen so that a 15h/week sport season on a 40h capacity classifies
// as medium.
const (
	defaultWeeklyCapacity  = 40.0
	defaultLowThreshold    = 10.0
	defaultMediumThreshold = 30.0

	monthsPerYear = 12.0
	weeksPerYear  = 52.0
)

// Builder converts schedule entries into weekly availability windows.
type Builder struct {
	weeklyCapacity  float64
	lowThreshold    float64
	mediumThreshold float64
}

// Option applies a configuration option to the Builder.
type Option func(*Builder)

// WithWeeklyCapacity sets the base weekly capacity in hours.
func WithWeeklyCapacity(hours float64) Option {
	return func(b *Builder) {
		if hours > 0 {
			b.weeklyCapacity = hours
		}
	}
}

// WithThresholds sets the low and medium classification cut-offs.
// Hours below low classify as low, below medium as medium, and at or
// above medium as high.
func WithThresholds(low, medium float64) Option {
	return func(b *Builder) {
		if low > 0 && medium > low {
			b.lowThreshold = low
			b.mediumThreshold = medium
		}
	}
}

// NewBuilder creates a Builder with default capacity and thresholds.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		weeklyCapacity:  defaultWeeklyCapacity,
		lowThreshold:    defaultLowThreshold,
		mediumThreshold: defaultMediumThreshold,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// WeeklyCapacity returns the configured base weekly capacity.
func (b *Builder) WeeklyCapacity() float64 {
	return b.weeklyCapacity
}

// Build returns an ordered, non-overlapping sequence of weekly windows
// covering [from, to]. Each window sums the commitments of every active
// entry whose effective range intersects the week; multiple entries are
// additive, never mutually exclusive.
func (b *Builder) Build(entries []model.ScheduleEntry, seasons map[string]model.SportSeason, from, to time.Time) []model.AvailabilityWindow {
	if !from.Before(to) {
		return nil
	}

	var windows []model.AvailabilityWindow
	for weekStart := startOfISOWeek(from); weekStart.Before(to); weekStart = weekStart.AddDate(0, 0, 7) {
		windows = append(windows, b.buildWeek(entries, seasons, weekStart))
	}
	return windows
}

// buildWeek computes a single window for the week beginning at weekStart.
func (b *Builder) buildWeek(entries []model.ScheduleEntry, seasons map[string]model.SportSeason, weekStart time.Time) model.AvailabilityWindow {
	weekEnd := weekStart.AddDate(0, 0, 7)
	w := model.AvailabilityWindow{
		WeekStart: weekStart,
		WeekEnd:   weekStart.AddDate(0, 0, 6),
	}

	for _, e := range entries {
		if !e.IsActive || !e.CoversWeek(weekStart) {
			continue
		}

		switch e.ScheduleType {
		case model.ScheduleTypeSport:
			season, ok := seasons[e.SportSeasonID]
			if !ok || !season.InSeason(isoWeekMonth(weekStart)) {
				break
			}
			w.TotalCommittedHours += season.WeeklyHours()
			w.SportConflicts = append(w.SportConflicts, season.SportName)
			w.TravelConflicts += prorateTravelDays(season.TravelDaysPerMonth)

		case model.ScheduleTypeCustom, model.ScheduleTypeWork:
			if e.AvailableHoursPerWeek != nil {
				// An explicit override states free hours directly; the
				// remainder of the capacity is committed.
				committed := b.weeklyCapacity - *e.AvailableHoursPerWeek
				if committed < 0 {
					committed = 0
				}
				w.TotalCommittedHours += committed
			} else {
				for _, block := range e.CustomBlocks {
					if block.Hours() > 0 {
						w.TotalCommittedHours += block.Hours()
					}
				}
			}
		}

		for _, conflict := range e.TravelConflicts {
			if conflict.Overlaps(weekStart, weekEnd) {
				w.TravelConflicts++
			}
		}
	}

	w.AvailableHours = b.weeklyCapacity - w.TotalCommittedHours
	if w.AvailableHours < 0 {
		w.AvailableHours = 0
	}
	if w.AvailableHours > b.weeklyCapacity {
		w.AvailableHours = b.weeklyCapacity
	}
	w.OverallAvailability = b.classify(w)
	return w
}

// classify buckets the window into none/low/medium/high. A travel
// conflict on a week that is already below the low threshold leaves no
// usable availability.
func (b *Builder) classify(w model.AvailabilityWindow) model.AvailabilityLevel {
	switch {
	case w.AvailableHours <= 0:
		return model.AvailabilityNone
	case w.TravelConflicts > 0 && w.AvailableHours < b.lowThreshold:
		return model.AvailabilityNone
	case w.AvailableHours < b.lowThreshold:
		return model.AvailabilityLow
	case w.AvailableHours < b.mediumThreshold:
		return model.AvailabilityMedium
	default:
		return model.AvailabilityHigh
	}
}

// prorateTravelDays spreads a monthly travel allowance across weeks and
// rounds to the nearest whole conflict day. Allowances of two or fewer
// days per month prorate below half a day per week and round to zero.
func prorateTravelDays(daysPerMonth float64) int {
	if daysPerMonth <= 0 {
		return 0
	}
	weekly := daysPerMonth * monthsPerYear / weeksPerYear
	return int(weekly + 0.5)
}

// startOfISOWeek returns the Monday 00:00 UTC on or before t.
func startOfISOWeek(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7 // Monday = 0
	return day.AddDate(0, 0, -offset)
}

// isoWeekMonth returns the month the ISO week belongs to, taken from the
// week's Thursday like the ISO year rule.
func isoWeekMonth(weekStart time.Time) int {
	return int(weekStart.AddDate(0, 0, 3).Month())
}
