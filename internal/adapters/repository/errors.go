package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrScoreNotFound    = errors.New("match score not found")
	ErrStudentNotFound  = errors.New("student not found")
	ErrListingNotFound  = errors.New("listing not found")
	ErrSeasonNotFound   = errors.New("sport season not found")
	ErrScheduleNotFound = errors.New("schedule entry not found")
)
