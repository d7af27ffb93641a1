package handler

import (
	"net/http"

	"github.com/mcoot/teamrank/internal/api/apierr"
	"github.com/mcoot/teamrank/internal/api/request"
	"github.com/mcoot/teamrank/internal/api/response"
	"github.com/mcoot/teamrank/internal/rating"
	"github.com/mcoot/teamrank/internal/services/teams"
)

// TeamHandler handles team generation
type TeamHandler struct {
	teamsService *teams.Service
	strategy     rating.Strategy
}

// NewTeamHandler creates a new team handler
func NewTeamHandler(teamsService *teams.Service, strategy rating.Strategy) *TeamHandler {
	return &TeamHandler{
		teamsService: teamsService,
		strategy:     strategy,
	}
}

// Balance handles POST /api/v1/teams
func (h *TeamHandler) Balance(w http.ResponseWriter, r *http.Request) {
	var req request.BalanceTeamsRequest
	if err := decodeBody(w, r, &req); err != nil {
		apierr.WriteError(w, err)
		return
	}

	result, err := h.teamsService.Balance(r.Context(), req.Players, req.Metric)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.TeamSplitFromResult(result, h.strategy))
}
