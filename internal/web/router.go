package web

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/teamrank/internal/metrics"
	"github.com/mcoot/teamrank/internal/middleware"
	"github.com/mcoot/teamrank/internal/services/leaderboard"
	"github.com/mcoot/teamrank/internal/services/match"
	"github.com/mcoot/teamrank/internal/services/roster"
	"github.com/mcoot/teamrank/internal/services/teams"
	"github.com/mcoot/teamrank/internal/web/handler"
	"github.com/mcoot/teamrank/internal/web/templates"
)

// RouterConfig holds configuration for the web router
type RouterConfig struct {
	Logger             *slog.Logger
	Metrics            *metrics.Metrics // optional
	RosterService      *roster.Service
	MatchService       *match.Service
	TeamsService       *teams.Service
	LeaderboardService *leaderboard.Service
}

// NewRouter creates a new web router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter().UseEncodedPath()

	// Apply global middleware to all routes
	var observer middleware.Observer
	if cfg.Metrics != nil {
		observer = cfg.Metrics
	}
	r.Use(middleware.Recovery(cfg.Logger, webPanicHandler))
	r.Use(middleware.Logging(cfg.Logger, observer))

	pages := handler.NewPageHandler(cfg.RosterService, cfg.MatchService, cfg.TeamsService, cfg.LeaderboardService, cfg.Logger)

	r.HandleFunc("/", pages.Leaderboard).Methods(http.MethodGet)
	r.HandleFunc("/players/{name}", pages.Player).Methods(http.MethodGet)
	r.HandleFunc("/teams", pages.TeamsForm).Methods(http.MethodGet)
	r.HandleFunc("/teams", pages.Teams).Methods(http.MethodPost)
	r.HandleFunc("/matches", pages.MatchForm).Methods(http.MethodGet)
	r.HandleFunc("/matches", pages.RecordMatch).Methods(http.MethodPost)

	return r
}

func webPanicHandler(w http.ResponseWriter, r *http.Request, _ any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	_ = templates.Error(templates.ErrorData{
		PageData: templates.PageData{Title: "Internal Server Error"},
		Message:  "Something went wrong. Please try again later.",
	}).Render(r.Context(), w)
}
