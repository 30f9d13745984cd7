package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// RecomputeDependencies defines the interface for recompute triggers.
type RecomputeDependencies interface {
	RecomputeAll(ctx context.Context) (int, error)
	OnProfileChanged(ctx context.Context, studentID string) (int, error)
	OnListingChanged(ctx context.Context, listingID string) (int, error)
}

// RecomputeHandler handles recompute trigger requests.
type RecomputeHandler struct {
	deps RecomputeDependencies
}

// NewRecomputeHandler creates a new recompute handler.
func NewRecomputeHandler(deps RecomputeDependencies) *RecomputeHandler {
	return &RecomputeHandler{deps: deps}
}

type recomputeResponse struct {
	ScoresMarkedStale int `json:"scoresMarkedStale"`
}

// HandleRecomputeAll handles POST /api/v1/admin/recompute requests.
func (h *RecomputeHandler) HandleRecomputeAll(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	marked, err := h.deps.RecomputeAll(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, recomputeResponse{ScoresMarkedStale: marked})
}

type profileChangedRequest struct {
	StudentID string `json:"studentId"`
}

type listingChangedRequest struct {
	ListingID string `json:"listingId"`
}

// HandleProfileChanged handles POST /api/v1/events/profile-changed.
func (h *RecomputeHandler) HandleProfileChanged(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req profileChangedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("invalid JSON body"))
		return
	}
	if strings.TrimSpace(req.StudentID) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("missing studentId"))
		return
	}
	marked, err := h.deps.OnProfileChanged(r.Context(), req.StudentID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, recomputeResponse{ScoresMarkedStale: marked})
}

// HandleListingChanged handles POST /api/v1/events/listing-changed.
func (h *RecomputeHandler) HandleListingChanged(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req listingChangedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("invalid JSON body"))
		return
	}
	if strings.TrimSpace(req.ListingID) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("missing listingId"))
		return
	}
	marked, err := h.deps.OnListingChanged(r.Context(), req.ListingID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, recomputeResponse{ScoresMarkedStale: marked})
}
