package handler

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"

	"github.com/mcoot/teamrank/internal/api/apierr"
	"github.com/mcoot/teamrank/internal/api/request"
	"github.com/mcoot/teamrank/internal/api/response"
	"github.com/mcoot/teamrank/internal/model"
	"github.com/mcoot/teamrank/internal/services/roster"
)

// PlayerHandler handles player-related endpoints
type PlayerHandler struct {
	rosterService *roster.Service
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(rosterService *roster.Service) *PlayerHandler {
	return &PlayerHandler{
		rosterService: rosterService,
	}
}

// List handles GET /api/v1/players
func (h *PlayerHandler) List(w http.ResponseWriter, r *http.Request) {
	players, err := h.rosterService.LoadAll(r.Context())
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerListFromRoster(players, h.rosterService.Strategy()))
}

// Register handles POST /api/v1/players.
// Responds 201 if any player was created and 200 if all already existed.
func (h *PlayerHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterPlayersRequest
	if err := decodeBody(w, r, &req); err != nil {
		apierr.WriteError(w, err)
		return
	}

	names := req.AllNames()
	if len(names) == 0 {
		apierr.WriteError(w, apierr.NewInvalidRequestError("name or names is required"))
		return
	}

	result, err := h.rosterService.Register(r.Context(), names)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	status := http.StatusOK
	if len(result.Created) > 0 {
		status = http.StatusCreated
	}
	response.JSON(w, status, response.RegisterResponseFromResult(result, h.rosterService.Strategy()))
}

// Get handles GET /api/v1/players/{name}
func (h *PlayerHandler) Get(w http.ResponseWriter, r *http.Request) {
	raw := mux.Vars(r)["name"]
	name, err := url.PathUnescape(raw)
	if err != nil {
		apierr.WriteError(w, fmt.Errorf("%w: %q", model.ErrInvalidPlayerName, raw))
		return
	}

	player, err := h.rosterService.Get(r.Context(), name)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerFromModel(player, h.rosterService.Strategy()))
}
