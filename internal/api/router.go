package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/teamrank/internal/api/apierr"
	"github.com/mcoot/teamrank/internal/api/handler"
	"github.com/mcoot/teamrank/internal/api/response"
	"github.com/mcoot/teamrank/internal/metrics"
	"github.com/mcoot/teamrank/internal/middleware"
	"github.com/mcoot/teamrank/internal/services/leaderboard"
	"github.com/mcoot/teamrank/internal/services/match"
	"github.com/mcoot/teamrank/internal/services/roster"
	"github.com/mcoot/teamrank/internal/services/teams"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger             *slog.Logger
	Metrics            *metrics.Metrics // optional
	RosterService      *roster.Service
	MatchService       *match.Service
	TeamsService       *teams.Service
	LeaderboardService *leaderboard.Service
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter().UseEncodedPath()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		apierr.WriteError(w, apierr.NewNotFoundError())
	})

	strategy := cfg.RosterService.Strategy()

	// Create handlers
	playerHandler := handler.NewPlayerHandler(cfg.RosterService)
	matchHandler := handler.NewMatchHandler(cfg.MatchService)
	teamHandler := handler.NewTeamHandler(cfg.TeamsService, strategy)
	leaderboardHandler := handler.NewLeaderboardHandler(cfg.LeaderboardService)

	// Create middleware
	var observer middleware.Observer
	if cfg.Metrics != nil {
		observer = cfg.Metrics
	}
	loggingMiddleware := middleware.Logging(cfg.Logger, observer)
	recoveryMiddleware := middleware.Recovery(cfg.Logger, apiPanicHandler)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Player routes
	api.HandleFunc("/players", playerHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/players", playerHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/players/{name}", playerHandler.Get).Methods(http.MethodGet)

	// Rating routes
	api.HandleFunc("/matches", matchHandler.Record).Methods(http.MethodPost)
	api.HandleFunc("/teams", teamHandler.Balance).Methods(http.MethodPost)
	api.HandleFunc("/leaderboard", leaderboardHandler.Top).Methods(http.MethodGet)

	api.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		response.JSON(w, http.StatusOK, response.Health{Status: "ok", Strategy: string(strategy.Kind())})
	}).Methods(http.MethodGet)

	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics.Handler()).Methods(http.MethodGet)
	}

	return r
}

func apiPanicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	apierr.WriteError(w, apierr.NewInternalError())
}
