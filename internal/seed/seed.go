// Package seed loads deterministic demo fixtures into the in-memory
// source store. The data set is small but covers every matching path:
// athletes in and out of season, work schedules, travel-heavy seasons,
// cross-tenant listings and students with no history.
package seed

import (
	"context"
	"time"

	"github.com/campuslink/matchengine/internal/adapters/repository"
	"github.com/campuslink/matchengine/internal/domain/model"
)

// Summary reports what was seeded.
type Summary struct {
	Students  int
	Listings  int
	Seasons   int
	Schedules int
}

func ptr(f float64) *float64 { return &f }

// Demo populates src with the fixture data set. Calling it twice is
// idempotent: every record carries a fixed id.
func Demo(src *repository.MemorySourceStore) Summary {
	seasons := []model.SportSeason{
		{
			ID:                      "season-soccer-fall",
			SportName:               "Soccer",
			SeasonType:              "fall",
			StartMonth:              8,
			EndMonth:                12,
			PracticeHoursPerWeek:    10,
			CompetitionHoursPerWeek: 5,
			TravelDaysPerMonth:      2,
			IntensityLevel:          "high",
		},
		{
			ID:                      "season-swim-winter",
			SportName:               "Swimming",
			SeasonType:              "winter",
			StartMonth:              11,
			EndMonth:                2,
			PracticeHoursPerWeek:    12,
			CompetitionHoursPerWeek: 4,
			TravelDaysPerMonth:      4,
			IntensityLevel:          "high",
		},
		{
			ID:                      "season-tennis-spring",
			SportName:               "Tennis",
			SeasonType:              "spring",
			StartMonth:              3,
			EndMonth:                6,
			PracticeHoursPerWeek:    8,
			CompetitionHoursPerWeek: 3,
			TravelDaysPerMonth:      1,
			IntensityLevel:          "medium",
		},
	}
	for _, s := range seasons {
		src.PutSportSeason(s)
	}

	students := []model.StudentProfile{
		{
			ID:                    "stu-amara",
			FirstName:             "Amara",
			LastName:              "Diallo",
			Email:                 "amara.diallo@state.edu",
			University:            "State University",
			TenantID:              "tenant-state",
			Skills:                []string{"JavaScript", "React", "CSS"},
			InterestAreas:         []string{"Data Engineering", "SQL"},
			NetworkIDs:            []string{"net-west-conference"},
			ActiveCommitmentHours: 5,
			CompletedEngagements:  4,
			CompletionRate:        1.0,
			AverageRating:         4.8,
		},
		{
			ID:                    "stu-jonas",
			FirstName:             "Jonas",
			LastName:              "Berg",
			Email:                 "jonas.berg@state.edu",
			University:            "State University",
			TenantID:              "tenant-state",
			Skills:                []string{"Python", "SQL", "Pandas"},
			InterestAreas:         []string{"Machine Learning"},
			NetworkIDs:            []string{"net-west-conference"},
			ActiveCommitmentHours: 12,
			CompletedEngagements:  2,
			CompletionRate:        0.5,
			AverageRating:         3.9,
		},
		{
			ID:                    "stu-mei",
			FirstName:             "Mei",
			LastName:              "Tanaka",
			Email:                 "mei.tanaka@coastal.edu",
			University:            "Coastal College",
			TenantID:              "tenant-coastal",
			Skills:                []string{"Go", "PostgreSQL", "Docker"},
			InterestAreas:         []string{"Distributed Systems", "Kubernetes"},
			NetworkIDs:            []string{"net-west-conference", "net-engineering-guild"},
			ActiveCommitmentHours: 20,
			CompletedEngagements:  7,
			CompletionRate:        0.86,
			AverageRating:         4.4,
		},
		{
			ID:                    "stu-leo",
			FirstName:             "Leo",
			LastName:              "Martins",
			Email:                 "leo.martins@coastal.edu",
			University:            "Coastal College",
			TenantID:              "tenant-coastal",
			Skills:                []string{"Figma", "Illustration"},
			InterestAreas:         []string{"Frontend", "JavaScript"},
			NetworkIDs:            []string{"net-design-circle"},
			ActiveCommitmentHours: 0,
			CompletedEngagements:  0,
			CompletionRate:        0,
			AverageRating:         0,
		},
		{
			ID:                    "stu-priya",
			FirstName:             "Priya",
			LastName:              "Raman",
			Email:                 "priya.raman@state.edu",
			University:            "State University",
			TenantID:              "tenant-state",
			Skills:                []string{"Java", "Spring", "SQL", "React"},
			InterestAreas:         []string{"Backend"},
			NetworkIDs:            []string{"net-engineering-guild"},
			ActiveCommitmentHours: 38,
			CompletedEngagements:  11,
			CompletionRate:        0.95,
			AverageRating:         4.9,
		},
	}
	for _, s := range students {
		src.PutStudent(s)
	}

	anchor := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	listings := []model.Listing{
		{
			ID:                  "lst-web-portal",
			Title:               "Student Portal Frontend",
			TenantID:            "tenant-state",
			NetworkIDs:          []string{"net-west-conference"},
			RequiredSkills:      []string{"JavaScript", "React", "SQL"},
			RequiredWeeklyHours: 10,
			StartDate:           anchor,
			EndDate:             anchor.AddDate(0, 3, 0),
			Status:              model.ListingOpen,
		},
		{
			ID:                  "lst-data-pipeline",
			Title:               "Athletics Data Pipeline",
			TenantID:            "tenant-state",
			NetworkIDs:          []string{"net-west-conference", "net-engineering-guild"},
			RequiredSkills:      []string{"Python", "SQL"},
			RequiredWeeklyHours: 15,
			StartDate:           anchor,
			EndDate:             anchor.AddDate(0, 4, 0),
			Status:              model.ListingOpen,
		},
		{
			ID:                  "lst-platform-api",
			Title:               "Platform API Service",
			TenantID:            "tenant-coastal",
			NetworkIDs:          []string{"net-engineering-guild"},
			RequiredSkills:      []string{"Go", "PostgreSQL"},
			RequiredWeeklyHours: 20,
			StartDate:           anchor.AddDate(0, 1, 0),
			EndDate:             anchor.AddDate(0, 6, 0),
			Status:              model.ListingOpen,
		},
		{
			ID:                  "lst-brand-refresh",
			Title:               "Brand Refresh",
			TenantID:            "tenant-coastal",
			NetworkIDs:          []string{"net-design-circle"},
			RequiredSkills:      []string{"Figma"},
			RequiredWeeklyHours: 6,
			StartDate:           anchor,
			EndDate:             anchor.AddDate(0, 2, 0),
			Status:              model.ListingOpen,
		},
		{
			ID:       "lst-archived",
			Title:    "Archived Mentorship",
			TenantID: "tenant-state",
			Status:   model.ListingClosed,
		},
	}
	for _, l := range listings {
		src.PutListing(l)
	}

	schedules := []model.ScheduleEntry{
		{
			ID:            "sch-amara-soccer",
			StudentID:     "stu-amara",
			ScheduleType:  model.ScheduleTypeSport,
			SportSeasonID: "season-soccer-fall",
			IsActive:      true,
		},
		{
			ID:            "sch-jonas-swim",
			StudentID:     "stu-jonas",
			ScheduleType:  model.ScheduleTypeSport,
			SportSeasonID: "season-swim-winter",
			TravelConflicts: []model.DateRange{
				{Start: anchor.AddDate(0, 2, 10), End: anchor.AddDate(0, 2, 17)},
			},
			IsActive: true,
		},
		{
			ID:           "sch-mei-work",
			StudentID:    "stu-mei",
			ScheduleType: model.ScheduleTypeWork,
			CustomBlocks: []model.CustomBlock{
				{Day: time.Monday, StartHour: 9, EndHour: 13, Label: "lab assistant"},
				{Day: time.Wednesday, StartHour: 9, EndHour: 13, Label: "lab assistant"},
			},
			IsActive: true,
		},
		{
			ID:                    "sch-priya-capped",
			StudentID:             "stu-priya",
			ScheduleType:          model.ScheduleTypeCustom,
			AvailableHoursPerWeek: ptr(8),
			IsActive:              true,
		},
	}
	ctx := context.Background()
	for _, entry := range schedules {
		if _, err := src.CreateSchedule(ctx, entry); err != nil {
			continue
		}
	}

	return Summary{
		Students:  len(students),
		Listings:  len(listings),
		Seasons:   len(seasons),
		Schedules: len(schedules),
	}
}
