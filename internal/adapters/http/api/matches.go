package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	service "github.com/campuslink/matchengine/internal/app"
	"github.com/campuslink/matchengine/internal/domain/model"
)

// Default and maximum page sizes for ranked match queries.
const (
	defaultMatchLimit = 20
	maxMatchLimit     = 100
)

// MatchDependencies defines the interface for match queries.
type MatchDependencies interface {
	RankedMatches(ctx context.Context, listingID string, limit int) ([]service.RankedMatch, error)
	MatchScore(ctx context.Context, studentID, listingID string) (model.MatchScore, error)
}

// MatchesHandler handles match query requests.
type MatchesHandler struct {
	deps MatchDependencies
}

// NewMatchesHandler creates a new matches handler.
func NewMatchesHandler(deps MatchDependencies) *MatchesHandler {
	return &MatchesHandler{deps: deps}
}

type listingMatchesResponse struct {
	ListingID string                `json:"listingId"`
	Matches   []service.RankedMatch `json:"matches"`
}

// HandleListingMatches handles GET /api/v1/matches/listing/{listing_id}?limit=N.
func (h *MatchesHandler) HandleListingMatches(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	listingID := strings.TrimPrefix(r.URL.Path, "/api/v1/matches/listing/")
	if listingID == "" || strings.Contains(listingID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	limit := defaultMatchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", errors.New("limit must be a positive integer"))
			return
		}
		limit = parsed
	}
	if limit > maxMatchLimit {
		limit = maxMatchLimit
	}

	matches, err := h.deps.RankedMatches(r.Context(), listingID, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listingMatchesResponse{ListingID: listingID, Matches: matches})
}

// HandlePairScore handles GET /api/v1/matches/score?student_id=&listing_id=.
func (h *MatchesHandler) HandlePairScore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	studentID := r.URL.Query().Get("student_id")
	listingID := r.URL.Query().Get("listing_id")
	if studentID == "" || listingID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("student_id and listing_id are required"))
		return
	}

	score, err := h.deps.MatchScore(r.Context(), studentID, listingID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, score)
}
