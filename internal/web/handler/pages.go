package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mcoot/teamrank/internal/model"
	"github.com/mcoot/teamrank/internal/rating"
	"github.com/mcoot/teamrank/internal/services/leaderboard"
	"github.com/mcoot/teamrank/internal/services/match"
	"github.com/mcoot/teamrank/internal/services/roster"
	"github.com/mcoot/teamrank/internal/services/teams"
	"github.com/mcoot/teamrank/internal/web/templates"
)

// PageHandler serves the HTML pages
type PageHandler struct {
	rosterService      *roster.Service
	matchService       *match.Service
	teamsService       *teams.Service
	leaderboardService *leaderboard.Service
	strategy           rating.Strategy
	logger             *slog.Logger
}

// NewPageHandler creates a new PageHandler
func NewPageHandler(
	rosterService *roster.Service,
	matchService *match.Service,
	teamsService *teams.Service,
	leaderboardService *leaderboard.Service,
	logger *slog.Logger,
) *PageHandler {
	return &PageHandler{
		rosterService:      rosterService,
		matchService:       matchService,
		teamsService:       teamsService,
		leaderboardService: leaderboardService,
		strategy:           rosterService.Strategy(),
		logger:             logger,
	}
}

// Leaderboard handles GET /
func (h *PageHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	q, err := leaderboard.ParseQuery(r.URL.Query())
	if err != nil {
		renderError(w, r, err)
		return
	}
	standings, err := h.leaderboardService.Top(r.Context(), q)
	if err != nil {
		h.logger.Error("failed to load leaderboard", slog.String("error", err.Error()))
		renderError(w, r, err)
		return
	}

	data := templates.LeaderboardData{
		PageData: templates.PageData{Title: "Leaderboard"},
		Strategy: string(h.strategy.Kind()),
		Rows:     make([]templates.StandingRow, 0, len(standings)),
	}
	for _, s := range standings {
		data.Rows = append(data.Rows, templates.StandingRow{
			Rank:    s.Rank,
			Key:     string(s.Player.Key),
			Name:    s.Player.DisplayName,
			Rating:  formatRating(h.strategy.Kind(), s.Player.Rating),
			Matches: s.Player.MatchesPlayed,
			Wins:    s.Player.Wins,
			WinRate: formatPercent(s.Player.WinRate()),
		})
	}
	render(w, r, http.StatusOK, templates.Leaderboard(data))
}

// Player handles GET /players/{name}
func (h *PageHandler) Player(w http.ResponseWriter, r *http.Request) {
	name, err := nameVar(r)
	if err != nil {
		renderError(w, r, err)
		return
	}
	p, err := h.rosterService.Get(r.Context(), name)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render(w, r, http.StatusOK, templates.Player(templates.PlayerData{
		PageData:  templates.PageData{Title: p.DisplayName},
		Key:       string(p.Key),
		Name:      p.DisplayName,
		Rating:    formatRating(h.strategy.Kind(), p.Rating),
		Skill:     formatSkill(h.strategy.Skill(p.Rating)),
		Matches:   p.MatchesPlayed,
		Wins:      p.Wins,
		Losses:    p.Losses(),
		WinRate:   formatPercent(p.WinRate()),
		LastMatch: formatTime(p.LastMatchAt),
	}))
}

// TeamsForm handles GET /teams
func (h *PageHandler) TeamsForm(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusOK, templates.TeamsForm(templates.TeamsFormData{
		PageData: templates.PageData{Title: "Generate teams"},
		Metric:   string(model.MetricMu),
	}))
}

// Teams handles POST /teams
func (h *PageHandler) Teams(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	players := r.PostFormValue("players")
	metric := r.PostFormValue("metric")

	result, err := h.teamsService.Balance(r.Context(), model.SplitNames(players), metric)
	if err != nil {
		status, message := statusFor(err)
		if status != http.StatusBadRequest {
			renderError(w, r, err)
			return
		}
		render(w, r, status, templates.TeamsForm(templates.TeamsFormData{
			PageData: templates.PageData{Title: "Generate teams", Flash: message, FlashError: true},
			Players:  players,
			Metric:   metric,
		}))
		return
	}

	members := func(keys []model.PlayerKey) []templates.TeamMember {
		out := make([]templates.TeamMember, 0, len(keys))
		for _, key := range keys {
			p := result.Players[key]
			out = append(out, templates.TeamMember{
				Key:    string(key),
				Name:   p.DisplayName,
				Rating: formatRating(h.strategy.Kind(), p.Rating),
			})
		}
		return out
	}
	render(w, r, http.StatusOK, templates.Teams(templates.TeamsData{
		PageData:   templates.PageData{Title: "Balanced teams"},
		Metric:     string(result.Split.Metric),
		TeamA:      members(result.Split.TeamA),
		TeamB:      members(result.Split.TeamB),
		AverageA:   fmt.Sprintf("%.2f", result.AverageA()),
		AverageB:   fmt.Sprintf("%.2f", result.AverageB()),
		Difference: fmt.Sprintf("%.2f", result.Split.Difference),
		WinA:       formatPercent(result.Prediction.WinA),
		WinB:       formatPercent(result.Prediction.WinB),
	}))
}

// MatchForm handles GET /matches
func (h *PageHandler) MatchForm(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusOK, templates.MatchForm(templates.MatchFormData{
		PageData: templates.PageData{Title: "Record match"},
	}))
}

// RecordMatch handles POST /matches
func (h *PageHandler) RecordMatch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	teamA := r.PostFormValue("team_a")
	teamB := r.PostFormValue("team_b")
	winner := r.PostFormValue("winner")

	result, err := h.matchService.Record(r.Context(), model.SplitNames(teamA), model.SplitNames(teamB), winner)
	if err != nil {
		status, message := statusFor(err)
		if status != http.StatusBadRequest {
			renderError(w, r, err)
			return
		}
		render(w, r, status, templates.MatchForm(templates.MatchFormData{
			PageData: templates.PageData{Title: "Record match", Flash: message, FlashError: true},
			TeamA:    teamA,
			TeamB:    teamB,
			Winner:   strings.ToUpper(winner),
		}))
		return
	}

	changes := func(in []model.RatingChange) []templates.ChangeRow {
		out := make([]templates.ChangeRow, 0, len(in))
		for _, c := range in {
			out = append(out, templates.ChangeRow{
				Key:    string(c.Key),
				Name:   c.DisplayName,
				Before: formatRating(result.Strategy, c.Before),
				After:  formatRating(result.Strategy, c.After),
				Won:    c.Won,
			})
		}
		return out
	}
	render(w, r, http.StatusCreated, templates.MatchResult(templates.MatchData{
		PageData: templates.PageData{Title: "Match recorded", Flash: "Ratings updated"},
		ID:       string(result.ID),
		Winner:   string(result.Winner),
		TeamA:    changes(result.TeamA),
		TeamB:    changes(result.TeamB),
	}))
}

// nameVar returns the unescaped {name} route variable. The router matches on
// the escaped path so names may contain a slash.
func nameVar(r *http.Request) (string, error) {
	name, err := url.PathUnescape(mux.Vars(r)["name"])
	if err != nil {
		return "", fmt.Errorf("%w: %q", model.ErrInvalidPlayerName, mux.Vars(r)["name"])
	}
	return name, nil
}
