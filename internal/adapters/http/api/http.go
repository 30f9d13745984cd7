// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/campuslink/matchengine/internal/adapters/repository"
	service "github.com/campuslink/matchengine/internal/app"
	"github.com/campuslink/matchengine/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Match queries.
	RankedMatches(ctx context.Context, listingID string, limit int) ([]service.RankedMatch, error)
	MatchScore(ctx context.Context, studentID, listingID string) (model.MatchScore, error)

	// Recompute triggers.
	RecomputeAll(ctx context.Context) (int, error)
	OnProfileChanged(ctx context.Context, studentID string) (int, error)
	OnListingChanged(ctx context.Context, listingID string) (int, error)

	// Schedules and availability.
	SchedulesByStudent(ctx context.Context, studentID string) ([]model.ScheduleEntry, error)
	CreateSchedule(ctx context.Context, entry model.ScheduleEntry) (model.ScheduleEntry, error)
	DeleteSchedule(ctx context.Context, studentID, entryID string) error
	AvailabilityWindows(ctx context.Context, studentID string, from, to time.Time) ([]model.AvailabilityWindow, error)
	SportSeasons(ctx context.Context) ([]model.SportSeason, error)

	// Observability.
	Stats(ctx context.Context) service.Stats
}

// Server wires HTTP routes for the match engine API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	recomputeHandler *RecomputeHandler
	matchesHandler   *MatchesHandler
	schedulesHandler *SchedulesHandler
	seasonsHandler   *SeasonsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(deps),
		recomputeHandler: NewRecomputeHandler(deps),
		matchesHandler:   NewMatchesHandler(deps),
		schedulesHandler: NewSchedulesHandler(deps),
		seasonsHandler:   NewSeasonsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)

	mux.HandleFunc("/api/v1/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/v1/admin/recompute", MetricsMiddleware(s.recomputeHandler.HandleRecomputeAll, "recompute"))
	mux.HandleFunc("/api/v1/events/profile-changed", MetricsMiddleware(s.recomputeHandler.HandleProfileChanged, "profile_changed"))
	mux.HandleFunc("/api/v1/events/listing-changed", MetricsMiddleware(s.recomputeHandler.HandleListingChanged, "listing_changed"))

	mux.HandleFunc("/api/v1/matches/listing/", MetricsMiddleware(s.matchesHandler.HandleListingMatches, "listing_matches"))
	mux.HandleFunc("/api/v1/matches/score", MetricsMiddleware(s.matchesHandler.HandlePairScore, "pair_score"))

	mux.HandleFunc("/api/v1/schedules/availability", MetricsMiddleware(s.schedulesHandler.HandleAvailability, "availability"))
	mux.HandleFunc("/api/v1/schedules", MetricsMiddleware(s.schedulesHandler.HandleSchedules, "schedules"))
	mux.HandleFunc("/api/v1/schedules/", MetricsMiddleware(s.schedulesHandler.HandleDeleteSchedule, "schedule_delete"))

	mux.HandleFunc("/api/v1/sport-seasons", MetricsMiddleware(s.seasonsHandler.HandleSeasons, "sport_seasons"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeDomainError translates service and repository sentinels to HTTP
// status codes; anything unrecognized is a 500.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrStudentNotFound),
		errors.Is(err, repository.ErrListingNotFound),
		errors.Is(err, repository.ErrScoreNotFound),
		errors.Is(err, repository.ErrScheduleNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, repository.ErrSeasonNotFound),
		errors.Is(err, service.ErrInvalidSchedule),
		errors.Is(err, service.ErrInvalidRange):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
