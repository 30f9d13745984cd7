package model

import "time"

// StudentProfile is the slice of the identity subsystem's student record
// the engine reads. It is external data: the engine never mutates it.
type StudentProfile struct {
	ID                    string   `json:"id" db:"id"`
	FirstName             string   `json:"first_name" db:"first_name"`
	LastName              string   `json:"last_name" db:"last_name"`
	Email                 string   `json:"email" db:"email"`
	University            string   `json:"university" db:"university"`
	TenantID              string   `json:"tenant_id" db:"tenant_id"`
	Skills                []string `json:"skills"`
	InterestAreas         []string `json:"interest_areas"`
	NetworkIDs            []string `json:"network_ids"`
	ActiveCommitmentHours float64  `json:"active_commitment_hours" db:"active_commitment_hours"`
	CompletedEngagements  int      `json:"completed_engagements" db:"completed_engagements"`
	CompletionRate        float64  `json:"completion_rate" db:"completion_rate"`
	AverageRating         float64  `json:"average_rating" db:"average_rating"`
}

// ListingStatus is the lifecycle state of a listing as the engine sees it.
type ListingStatus string

const (
	ListingOpen   ListingStatus = "open"
	ListingClosed ListingStatus = "closed"
)

// Listing is the slice of the listings subsystem's record the engine reads.
type Listing struct {
	ID                  string        `json:"id" db:"id"`
	Title               string        `json:"title" db:"title"`
	TenantID            string        `json:"tenant_id" db:"tenant_id"`
	NetworkIDs          []string      `json:"network_ids"`
	RequiredSkills      []string      `json:"required_skills"`
	RequiredWeeklyHours float64       `json:"required_weekly_hours" db:"required_weekly_hours"`
	StartDate           time.Time     `json:"start_date" db:"start_date"`
	EndDate             time.Time     `json:"end_date" db:"end_date"`
	Status              ListingStatus `json:"status" db:"status"`
}

// IsOpen reports whether the listing currently accepts candidates.
func (l Listing) IsOpen() bool {
	return l.Status == ListingOpen
}
