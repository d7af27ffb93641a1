package response

import (
	"time"

	"github.com/mcoot/teamrank/internal/model"
	"github.com/mcoot/teamrank/internal/rating"
	"github.com/mcoot/teamrank/internal/services/leaderboard"
	"github.com/mcoot/teamrank/internal/services/roster"
	"github.com/mcoot/teamrank/internal/services/teams"
)

// Rating is the strategy-specific rating of a player
type Rating struct {
	Elo   *int     `json:"elo,omitempty"`
	Mu    *float64 `json:"mu,omitempty"`
	Sigma *float64 `json:"sigma,omitempty"`
}

// RatingFromModel keeps only the fields the strategy uses
func RatingFromModel(r model.Rating, kind model.StrategyKind) Rating {
	if kind == model.StrategyElo {
		elo := r.Elo
		return Rating{Elo: &elo}
	}
	mu, sigma := r.Mu, r.Sigma
	return Rating{Mu: &mu, Sigma: &sigma}
}

// Skill is the strategy-independent view of a rating
type Skill struct {
	Mean         float64 `json:"mean"`
	Uncertainty  float64 `json:"uncertainty"`
	Conservative float64 `json:"conservative"`
}

func SkillFromRating(s rating.Skill) Skill {
	return Skill{Mean: s.Mean, Uncertainty: s.Uncertainty, Conservative: s.Conservative()}
}

// Player represents a player in API responses
type Player struct {
	Key           string     `json:"key"`
	DisplayName   string     `json:"display_name"`
	Rating        Rating     `json:"rating"`
	Skill         Skill      `json:"skill"`
	MatchesPlayed int        `json:"matches_played"`
	Wins          int        `json:"wins"`
	Losses        int        `json:"losses"`
	WinRate       float64    `json:"win_rate"`
	LastMatchAt   *time.Time `json:"last_match_at,omitempty"`
}

// PlayerFromModel converts a record using the strategy that produced its rating
func PlayerFromModel(p model.PlayerRecord, strategy rating.Strategy) Player {
	out := Player{
		Key:           string(p.Key),
		DisplayName:   p.DisplayName,
		Rating:        RatingFromModel(p.Rating, strategy.Kind()),
		Skill:         SkillFromRating(strategy.Skill(p.Rating)),
		MatchesPlayed: p.MatchesPlayed,
		Wins:          p.Wins,
		Losses:        p.Losses(),
		WinRate:       p.WinRate(),
	}
	if !p.LastMatchAt.IsZero() {
		at := p.LastMatchAt
		out.LastMatchAt = &at
	}
	return out
}

// PlayerList is the response for listing players
type PlayerList struct {
	Strategy string   `json:"strategy"`
	Players  []Player `json:"players"`
}

// PlayerListFromRoster lists every player ordered by key
func PlayerListFromRoster(r model.Roster, strategy rating.Strategy) PlayerList {
	out := PlayerList{Strategy: string(strategy.Kind()), Players: make([]Player, 0, len(r))}
	for _, key := range r.Keys() {
		out.Players = append(out.Players, PlayerFromModel(r[key], strategy))
	}
	return out
}

// RegisterResponse is the response for registering players
type RegisterResponse struct {
	Players []Player `json:"players"`
	Created []string `json:"created"`
}

func RegisterResponseFromResult(res *roster.RegisterResult, strategy rating.Strategy) RegisterResponse {
	out := RegisterResponse{
		Players: make([]Player, 0, len(res.Players)),
		Created: make([]string, 0, len(res.Created)),
	}
	for _, p := range res.Players {
		out.Players = append(out.Players, PlayerFromModel(p, strategy))
	}
	for _, key := range res.Created {
		out.Created = append(out.Created, string(key))
	}
	return out
}

// RatingChange describes one player's rating movement
type RatingChange struct {
	Key         string `json:"key"`
	DisplayName string `json:"display_name"`
	Before      Rating `json:"before"`
	After       Rating `json:"after"`
	Won         bool   `json:"won"`
}

// MatchResult is the response for recording a match
type MatchResult struct {
	ID       string         `json:"id"`
	Strategy string         `json:"strategy"`
	Winner   string         `json:"winner"`
	PlayedAt time.Time      `json:"played_at"`
	TeamA    []RatingChange `json:"team_a"`
	TeamB    []RatingChange `json:"team_b"`
}

func MatchResultFromModel(m *model.MatchResult) MatchResult {
	return MatchResult{
		ID:       string(m.ID),
		Strategy: string(m.Strategy),
		Winner:   string(m.Winner),
		PlayedAt: m.PlayedAt,
		TeamA:    changesFromModel(m.TeamA, m.Strategy),
		TeamB:    changesFromModel(m.TeamB, m.Strategy),
	}
}

func changesFromModel(changes []model.RatingChange, kind model.StrategyKind) []RatingChange {
	out := make([]RatingChange, 0, len(changes))
	for _, c := range changes {
		out = append(out, RatingChange{
			Key:         string(c.Key),
			DisplayName: c.DisplayName,
			Before:      RatingFromModel(c.Before, kind),
			After:       RatingFromModel(c.After, kind),
			Won:         c.Won,
		})
	}
	return out
}

// Prediction is the estimated outcome of a split
type Prediction struct {
	WinA float64 `json:"win_a"`
	WinB float64 `json:"win_b"`
	Draw float64 `json:"draw"`
}

// TeamSplit is the response for generating teams
type TeamSplit struct {
	Metric     string     `json:"metric"`
	TeamA      []Player   `json:"team_a"`
	TeamB      []Player   `json:"team_b"`
	ScoreA     float64    `json:"score_a"`
	ScoreB     float64    `json:"score_b"`
	AverageA   float64    `json:"average_a"`
	AverageB   float64    `json:"average_b"`
	Difference float64    `json:"difference"`
	Prediction Prediction `json:"prediction"`
}

func TeamSplitFromResult(res *teams.Result, strategy rating.Strategy) TeamSplit {
	team := func(keys []model.PlayerKey) []Player {
		out := make([]Player, 0, len(keys))
		for _, key := range keys {
			out = append(out, PlayerFromModel(res.Players[key], strategy))
		}
		return out
	}
	return TeamSplit{
		Metric:     string(res.Split.Metric),
		TeamA:      team(res.Split.TeamA),
		TeamB:      team(res.Split.TeamB),
		ScoreA:     res.Split.ScoreA,
		ScoreB:     res.Split.ScoreB,
		AverageA:   res.AverageA(),
		AverageB:   res.AverageB(),
		Difference: res.Split.Difference,
		Prediction: Prediction{
			WinA: res.Prediction.WinA,
			WinB: res.Prediction.WinB,
			Draw: res.Prediction.Draw,
		},
	}
}

// Standing is one leaderboard row
type Standing struct {
	Rank   int    `json:"rank"`
	Player Player `json:"player"`
}

// Leaderboard is the response for the leaderboard endpoint
type Leaderboard struct {
	Strategy  string     `json:"strategy"`
	Standings []Standing `json:"standings"`
}

func LeaderboardFromStandings(standings []leaderboard.Standing, strategy rating.Strategy) Leaderboard {
	out := Leaderboard{Strategy: string(strategy.Kind()), Standings: make([]Standing, 0, len(standings))}
	for _, s := range standings {
		out.Standings = append(out.Standings, Standing{Rank: s.Rank, Player: PlayerFromModel(s.Player, strategy)})
	}
	return out
}

// Health is the response for the health endpoint
type Health struct {
	Status   string `json:"status"`
	Strategy string `json:"strategy"`
}
