package handler

import (
	"net/http"

	"github.com/mcoot/teamrank/internal/api/apierr"
	"github.com/mcoot/teamrank/internal/api/request"
	"github.com/mcoot/teamrank/internal/api/response"
	"github.com/mcoot/teamrank/internal/services/match"
)

// MatchHandler handles match recording
type MatchHandler struct {
	matchService *match.Service
}

// NewMatchHandler creates a new match handler
func NewMatchHandler(matchService *match.Service) *MatchHandler {
	return &MatchHandler{
		matchService: matchService,
	}
}

// Record handles POST /api/v1/matches
func (h *MatchHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req request.RecordMatchRequest
	if err := decodeBody(w, r, &req); err != nil {
		apierr.WriteError(w, err)
		return
	}

	result, err := h.matchService.Record(r.Context(), req.TeamA, req.TeamB, req.Winner)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.MatchResultFromModel(result))
}
