package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/campuslink/matchengine/internal/domain/model"
)

// MemorySourceStore is the in-memory SourceStore used for tests and
// demo deployments without a database.
type MemorySourceStore struct {
	mu        sync.RWMutex
	students  map[string]model.StudentProfile
	listings  map[string]model.Listing
	seasons   map[string]model.SportSeason
	schedules map[string]model.ScheduleEntry
}

// NewMemorySourceStore creates an empty in-memory source store.
func NewMemorySourceStore() *MemorySourceStore {
	return &MemorySourceStore{
		students:  make(map[string]model.StudentProfile),
		listings:  make(map[string]model.Listing),
		seasons:   make(map[string]model.SportSeason),
		schedules: make(map[string]model.ScheduleEntry),
	}
}

// PutStudent inserts or replaces a student record.
func (s *MemorySourceStore) PutStudent(p model.StudentProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.students[p.ID] = p
}

// PutListing inserts or replaces a listing record.
func (s *MemorySourceStore) PutListing(l model.Listing) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listings[l.ID] = l
}

// PutSportSeason inserts or replaces a season catalog row.
func (s *MemorySourceStore) PutSportSeason(season model.SportSeason) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seasons[season.ID] = season
}

// Student returns the profile for id.
func (s *MemorySourceStore) Student(ctx context.Context, id string) (model.StudentProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.students[id]
	if !ok {
		return model.StudentProfile{}, ErrStudentNotFound
	}
	return p, nil
}

// Students returns all student profiles ordered by id.
func (s *MemorySourceStore) Students(ctx context.Context) ([]model.StudentProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.StudentProfile, 0, len(s.students))
	for _, p := range s.students {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Listing returns the listing for id.
func (s *MemorySourceStore) Listing(ctx context.Context, id string) (model.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.listings[id]
	if !ok {
		return model.Listing{}, ErrListingNotFound
	}
	return l, nil
}

// OpenListings returns every open listing ordered by id.
func (s *MemorySourceStore) OpenListings(ctx context.Context) ([]model.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Listing, 0, len(s.listings))
	for _, l := range s.listings {
		if l.IsOpen() {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// SportSeasons returns the season catalog ordered by sport name.
func (s *MemorySourceStore) SportSeasons(ctx context.Context) ([]model.SportSeason, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.SportSeason, 0, len(s.seasons))
	for _, season := range s.seasons {
		out = append(out, season)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SportName < out[j].SportName })
	return out, nil
}

// SportSeasonMap returns the catalog keyed by season id.
func (s *MemorySourceStore) SportSeasonMap(ctx context.Context) (map[string]model.SportSeason, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]model.SportSeason, len(s.seasons))
	for id, season := range s.seasons {
		out[id] = season
	}
	return out, nil
}

// SchedulesByStudent returns the student's schedule entries ordered by id.
func (s *MemorySourceStore) SchedulesByStudent(ctx context.Context, studentID string) ([]model.ScheduleEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.ScheduleEntry
	for _, e := range s.schedules {
		if e.StudentID == studentID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CreateSchedule stores a new schedule entry, assigning an id when the
// caller did not.
func (s *MemorySourceStore) CreateSchedule(ctx context.Context, entry model.ScheduleEntry) (model.ScheduleEntry, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schedules[entry.ID] = entry
	return entry, nil
}

// DeleteSchedule removes the entry when it belongs to the student.
func (s *MemorySourceStore) DeleteSchedule(ctx context.Context, studentID, entryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.schedules[entryID]
	if !ok || e.StudentID != studentID {
		return ErrScheduleNotFound
	}
	delete(s.schedules, entryID)
	return nil
}
