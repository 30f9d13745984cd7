package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/campuslink/matchengine/internal/domain/model"
)

// Postgres connection pool settings.
const (
	pgMaxOpenConns    = 25
	pgMaxIdleConns    = 5
	pgConnMaxLifetime = 30 * time.Minute
)

// PostgresSourceStore is the SourceStore backed by the platform's
// Postgres database. List-valued fields (skills, networks, custom
// blocks, travel conflicts) live in JSONB columns.
type PostgresSourceStore struct {
	db *sqlx.DB
}

// NewPostgresSourceStore connects to dsn and verifies the connection.
func NewPostgresSourceStore(ctx context.Context, dsn string) (*PostgresSourceStore, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	db.SetMaxOpenConns(pgMaxOpenConns)
	db.SetMaxIdleConns(pgMaxIdleConns)
	db.SetConnMaxLifetime(pgConnMaxLifetime)
	return &PostgresSourceStore{db: db}, nil
}

// Close releases the connection pool.
func (s *PostgresSourceStore) Close() error {
	return s.db.Close()
}

// studentRow maps the students query; JSONB columns arrive as raw bytes.
type studentRow struct {
	ID                    string          `db:"id"`
	FirstName             string          `db:"first_name"`
	LastName              string          `db:"last_name"`
	Email                 string          `db:"email"`
	University            string          `db:"university"`
	TenantID              string          `db:"tenant_id"`
	Skills                json.RawMessage `db:"skills"`
	InterestAreas         json.RawMessage `db:"interest_areas"`
	NetworkIDs            json.RawMessage `db:"network_ids"`
	ActiveCommitmentHours float64         `db:"active_commitment_hours"`
	CompletedEngagements  int             `db:"completed_engagements"`
	CompletionRate        float64         `db:"completion_rate"`
	AverageRating         float64         `db:"average_rating"`
}

func (r studentRow) toModel() (model.StudentProfile, error) {
	p := model.StudentProfile{
		ID:                    r.ID,
		FirstName:             r.FirstName,
		LastName:              r.LastName,
		Email:                 r.Email,
		University:            r.University,
		TenantID:              r.TenantID,
		ActiveCommitmentHours: r.ActiveCommitmentHours,
		CompletedEngagements:  r.CompletedEngagements,
		CompletionRate:        r.CompletionRate,
		AverageRating:         r.AverageRating,
	}
	if err := decodeJSON(r.Skills, &p.Skills); err != nil {
		return p, err
	}
	if err := decodeJSON(r.InterestAreas, &p.InterestAreas); err != nil {
		return p, err
	}
	if err := decodeJSON(r.NetworkIDs, &p.NetworkIDs); err != nil {
		return p, err
	}
	return p, nil
}

const studentColumns = `
	id, first_name, last_name, email, university, tenant_id,
	skills, interest_areas, network_ids,
	active_commitment_hours, completed_engagements, completion_rate, average_rating`

// Student returns the profile for id.
func (s *PostgresSourceStore) Student(ctx context.Context, id string) (model.StudentProfile, error) {
	query := `SELECT` + studentColumns + ` FROM students WHERE id = $1`

	var row studentRow
	if err := s.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.StudentProfile{}, ErrStudentNotFound
		}
		return model.StudentProfile{}, fmt.Errorf("select student: %w", err)
	}
	return row.toModel()
}

// Students returns all student profiles.
func (s *PostgresSourceStore) Students(ctx context.Context) ([]model.StudentProfile, error) {
	query := `SELECT` + studentColumns + ` FROM students ORDER BY id`

	var rows []studentRow
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("select students: %w", err)
	}
	out := make([]model.StudentProfile, 0, len(rows))
	for _, row := range rows {
		p, err := row.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

type listingRow struct {
	ID                  string          `db:"id"`
	Title               string          `db:"title"`
	TenantID            string          `db:"tenant_id"`
	NetworkIDs          json.RawMessage `db:"network_ids"`
	RequiredSkills      json.RawMessage `db:"required_skills"`
	RequiredWeeklyHours float64         `db:"required_weekly_hours"`
	StartDate           time.Time       `db:"start_date"`
	EndDate             time.Time       `db:"end_date"`
	Status              string          `db:"status"`
}

func (r listingRow) toModel() (model.Listing, error) {
	l := model.Listing{
		ID:                  r.ID,
		Title:               r.Title,
		TenantID:            r.TenantID,
		RequiredWeeklyHours: r.RequiredWeeklyHours,
		StartDate:           r.StartDate,
		EndDate:             r.EndDate,
		Status:              model.ListingStatus(r.Status),
	}
	if err := decodeJSON(r.NetworkIDs, &l.NetworkIDs); err != nil {
		return l, err
	}
	if err := decodeJSON(r.RequiredSkills, &l.RequiredSkills); err != nil {
		return l, err
	}
	return l, nil
}

const listingColumns = `
	id, title, tenant_id, network_ids, required_skills,
	required_weekly_hours, start_date, end_date, status`

// Listing returns the listing for id.
func (s *PostgresSourceStore) Listing(ctx context.Context, id string) (model.Listing, error) {
	query := `SELECT` + listingColumns + ` FROM listings WHERE id = $1`

	var row listingRow
	if err := s.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Listing{}, ErrListingNotFound
		}
		return model.Listing{}, fmt.Errorf("select listing: %w", err)
	}
	return row.toModel()
}

// OpenListings returns every open listing.
func (s *PostgresSourceStore) OpenListings(ctx context.Context) ([]model.Listing, error) {
	query := `SELECT` + listingColumns + ` FROM listings WHERE status = $1 ORDER BY id`

	var rows []listingRow
	if err := s.db.SelectContext(ctx, &rows, query, string(model.ListingOpen)); err != nil {
		return nil, fmt.Errorf("select open listings: %w", err)
	}
	out := make([]model.Listing, 0, len(rows))
	for _, row := range rows {
		l, err := row.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

// SportSeasons returns the season catalog.
func (s *PostgresSourceStore) SportSeasons(ctx context.Context) ([]model.SportSeason, error) {
	query := `
		SELECT id, sport_name, season_type, start_month, end_month,
		       practice_hours_per_week, competition_hours_per_week,
		       travel_days_per_month, intensity_level
		FROM sport_seasons
		ORDER BY sport_name`

	var seasons []model.SportSeason
	if err := s.db.SelectContext(ctx, &seasons, query); err != nil {
		return nil, fmt.Errorf("select sport seasons: %w", err)
	}
	return seasons, nil
}

// SportSeasonMap returns the catalog keyed by season id.
func (s *PostgresSourceStore) SportSeasonMap(ctx context.Context) (map[string]model.SportSeason, error) {
	seasons, err := s.SportSeasons(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]model.SportSeason, len(seasons))
	for _, season := range seasons {
		out[season.ID] = season
	}
	return out, nil
}

type scheduleRow struct {
	ID                    string          `db:"id"`
	StudentID             string          `db:"student_id"`
	ScheduleType          string          `db:"schedule_type"`
	SportSeasonID         sql.NullString  `db:"sport_season_id"`
	CustomBlocks          json.RawMessage `db:"custom_blocks"`
	AvailableHoursPerWeek sql.NullFloat64 `db:"available_hours_per_week"`
	TravelConflicts       json.RawMessage `db:"travel_conflicts"`
	EffectiveStart        time.Time       `db:"effective_start"`
	EffectiveEnd          time.Time       `db:"effective_end"`
	IsActive              bool            `db:"is_active"`
}

func (r scheduleRow) toModel() (model.ScheduleEntry, error) {
	e := model.ScheduleEntry{
		ID:             r.ID,
		StudentID:      r.StudentID,
		ScheduleType:   model.ScheduleType(r.ScheduleType),
		SportSeasonID:  r.SportSeasonID.String,
		EffectiveStart: r.EffectiveStart,
		EffectiveEnd:   r.EffectiveEnd,
		IsActive:       r.IsActive,
	}
	if r.AvailableHoursPerWeek.Valid {
		hours := r.AvailableHoursPerWeek.Float64
		e.AvailableHoursPerWeek = &hours
	}
	if err := decodeJSON(r.CustomBlocks, &e.CustomBlocks); err != nil {
		return e, err
	}
	if err := decodeJSON(r.TravelConflicts, &e.TravelConflicts); err != nil {
		return e, err
	}
	return e, nil
}

// SchedulesByStudent returns the student's schedule entries.
func (s *PostgresSourceStore) SchedulesByStudent(ctx context.Context, studentID string) ([]model.ScheduleEntry, error) {
	query := `
		SELECT id, student_id, schedule_type, sport_season_id, custom_blocks,
		       available_hours_per_week, travel_conflicts,
		       effective_start, effective_end, is_active
		FROM schedule_entries
		WHERE student_id = $1
		ORDER BY id`

	var rows []scheduleRow
	if err := s.db.SelectContext(ctx, &rows, query, studentID); err != nil {
		return nil, fmt.Errorf("select schedules: %w", err)
	}
	out := make([]model.ScheduleEntry, 0, len(rows))
	for _, row := range rows {
		e, err := row.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// CreateSchedule inserts a new schedule entry.
func (s *PostgresSourceStore) CreateSchedule(ctx context.Context, entry model.ScheduleEntry) (model.ScheduleEntry, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	blocks, err := json.Marshal(entry.CustomBlocks)
	if err != nil {
		return model.ScheduleEntry{}, fmt.Errorf("encode custom blocks: %w", err)
	}
	conflicts, err := json.Marshal(entry.TravelConflicts)
	if err != nil {
		return model.ScheduleEntry{}, fmt.Errorf("encode travel conflicts: %w", err)
	}

	query := `
		INSERT INTO schedule_entries
			(id, student_id, schedule_type, sport_season_id, custom_blocks,
			 available_hours_per_week, travel_conflicts,
			 effective_start, effective_end, is_active)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9, $10)`

	_, err = s.db.ExecContext(ctx, query,
		entry.ID, entry.StudentID, string(entry.ScheduleType), entry.SportSeasonID,
		blocks, entry.AvailableHoursPerWeek, conflicts,
		entry.EffectiveStart, entry.EffectiveEnd, entry.IsActive)
	if err != nil {
		return model.ScheduleEntry{}, fmt.Errorf("insert schedule: %w", err)
	}
	return entry, nil
}

// DeleteSchedule removes the entry when it belongs to the student.
func (s *PostgresSourceStore) DeleteSchedule(ctx context.Context, studentID, entryID string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM schedule_entries WHERE id = $1 AND student_id = $2`,
		entryID, studentID)
	if err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	if affected == 0 {
		return ErrScheduleNotFound
	}
	return nil
}

// decodeJSON unmarshals a JSONB column, tolerating SQL NULL.
func decodeJSON(raw json.RawMessage, dest any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode jsonb column: %w", err)
	}
	return nil
}
