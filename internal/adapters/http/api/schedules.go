package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/campuslink/matchengine/internal/domain/model"
)

// ScheduleDependencies defines the interface for schedule operations.
type ScheduleDependencies interface {
	SchedulesByStudent(ctx context.Context, studentID string) ([]model.ScheduleEntry, error)
	CreateSchedule(ctx context.Context, entry model.ScheduleEntry) (model.ScheduleEntry, error)
	DeleteSchedule(ctx context.Context, studentID, entryID string) error
	AvailabilityWindows(ctx context.Context, studentID string, from, to time.Time) ([]model.AvailabilityWindow, error)
}

// SchedulesHandler handles schedule and availability requests.
type SchedulesHandler struct {
	deps ScheduleDependencies
}

// NewSchedulesHandler creates a new schedules handler.
func NewSchedulesHandler(deps ScheduleDependencies) *SchedulesHandler {
	return &SchedulesHandler{deps: deps}
}

// HandleSchedules handles GET and POST /api/v1/schedules.
func (h *SchedulesHandler) HandleSchedules(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleList(w, r)
	case http.MethodPost:
		h.handleCreate(w, r)
	default:
		http.NotFound(w, r)
	}
}

// handleList handles GET /api/v1/schedules?student_id=.
func (h *SchedulesHandler) handleList(w http.ResponseWriter, r *http.Request) {
	studentID := r.URL.Query().Get("student_id")
	if studentID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("student_id is required"))
		return
	}
	entries, err := h.deps.SchedulesByStudent(r.Context(), studentID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if entries == nil {
		entries = []model.ScheduleEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleCreate handles POST /api/v1/schedules.
func (h *SchedulesHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var entry model.ScheduleEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("invalid JSON body"))
		return
	}
	if strings.TrimSpace(entry.StudentID) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("missing student_id"))
		return
	}

	created, err := h.deps.CreateSchedule(r.Context(), entry)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// HandleDeleteSchedule handles DELETE /api/v1/schedules/{entry_id}?student_id=.
func (h *SchedulesHandler) HandleDeleteSchedule(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.NotFound(w, r)
		return
	}

	entryID := strings.TrimPrefix(r.URL.Path, "/api/v1/schedules/")
	if entryID == "" || strings.Contains(entryID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	studentID := r.URL.Query().Get("student_id")
	if studentID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("student_id is required"))
		return
	}

	if err := h.deps.DeleteSchedule(r.Context(), studentID, entryID); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleAvailability handles
// GET /api/v1/schedules/availability?student_id=&start_date=&end_date=.
// Dates are RFC 3339 date strings; end_date is exclusive.
func (h *SchedulesHandler) HandleAvailability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	studentID := r.URL.Query().Get("student_id")
	if studentID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("student_id is required"))
		return
	}

	from, err := parseDate(r.URL.Query().Get("start_date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("start_date must be YYYY-MM-DD"))
		return
	}
	to, err := parseDate(r.URL.Query().Get("end_date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("end_date must be YYYY-MM-DD"))
		return
	}

	windows, err := h.deps.AvailabilityWindows(r.Context(), studentID, from, to)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if windows == nil {
		windows = []model.AvailabilityWindow{}
	}
	writeJSON(w, http.StatusOK, windows)
}

func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, ErrBadRequest
	}
	return time.Parse("2006-01-02", raw)
}
