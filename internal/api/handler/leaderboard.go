package handler

import (
	"net/http"

	"github.com/mcoot/teamrank/internal/api/apierr"
	"github.com/mcoot/teamrank/internal/api/response"
	"github.com/mcoot/teamrank/internal/services/leaderboard"
)

// LeaderboardHandler serves player rankings
type LeaderboardHandler struct {
	leaderboardService *leaderboard.Service
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(leaderboardService *leaderboard.Service) *LeaderboardHandler {
	return &LeaderboardHandler{
		leaderboardService: leaderboardService,
	}
}

// Top handles GET /api/v1/leaderboard
func (h *LeaderboardHandler) Top(w http.ResponseWriter, r *http.Request) {
	q, err := leaderboard.ParseQuery(r.URL.Query())
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	standings, err := h.leaderboardService.Top(r.Context(), q)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.LeaderboardFromStandings(standings, h.leaderboardService.Strategy()))
}
