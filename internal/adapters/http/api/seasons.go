package api

import (
	"context"
	"net/http"

	"github.com/campuslink/matchengine/internal/domain/model"
)

// SeasonDependencies defines the interface for season catalog reads.
type SeasonDependencies interface {
	SportSeasons(ctx context.Context) ([]model.SportSeason, error)
}

// SeasonsHandler handles sport season catalog requests.
type SeasonsHandler struct {
	deps SeasonDependencies
}

// NewSeasonsHandler creates a new seasons handler.
func NewSeasonsHandler(deps SeasonDependencies) *SeasonsHandler {
	return &SeasonsHandler{deps: deps}
}

// HandleSeasons handles GET /api/v1/sport-seasons requests.
func (h *SeasonsHandler) HandleSeasons(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	seasons, err := h.deps.SportSeasons(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, seasons)
}
