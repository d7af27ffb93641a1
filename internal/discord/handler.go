package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mcoot/teamrank/internal/model"
	"github.com/mcoot/teamrank/internal/rating"
	"github.com/mcoot/teamrank/internal/services/leaderboard"
	"github.com/mcoot/teamrank/internal/services/match"
	"github.com/mcoot/teamrank/internal/services/roster"
	"github.com/mcoot/teamrank/internal/services/teams"
)

// maxContentRunes is Discord's message length limit
const maxContentRunes = 2000

// Reply is the message sent back for a command
type Reply struct {
	Content string
	// Ephemeral replies are only shown to the invoking user
	Ephemeral bool
}

// Handler executes commands against the services. It has no Discord
// dependency so it can be tested without a gateway connection.
type Handler struct {
	rosterService      *roster.Service
	matchService       *match.Service
	teamsService       *teams.Service
	leaderboardService *leaderboard.Service
	strategy           rating.Strategy
	logger             *slog.Logger
}

func NewHandler(
	rosterService *roster.Service,
	matchService *match.Service,
	teamsService *teams.Service,
	leaderboardService *leaderboard.Service,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		rosterService:      rosterService,
		matchService:       matchService,
		teamsService:       teamsService,
		leaderboardService: leaderboardService,
		strategy:           rosterService.Strategy(),
		logger:             logger.With(slog.String("component", "discord")),
	}
}

// Handle runs the named command. Errors are turned into ephemeral replies.
func (h *Handler) Handle(ctx context.Context, name string, args Args) Reply {
	var (
		content string
		err     error
	)
	switch name {
	case CommandAddPlayer:
		content, err = h.addPlayer(ctx, args)
	case CommandMatch:
		content, err = h.match(ctx, args)
	case CommandTop:
		content, err = h.top(ctx, args)
	case CommandTeam:
		content, err = h.team(ctx, args)
	default:
		return Reply{Content: fmt.Sprintf("Unknown command %q", name), Ephemeral: true}
	}

	if err != nil {
		if errors.Is(err, model.ErrValidation) || errors.Is(err, model.ErrPlayerNotFound) {
			return Reply{Content: "Error: " + err.Error(), Ephemeral: true}
		}
		h.logger.Error("command failed", slog.String("command", name), slog.String("error", err.Error()))
		return Reply{Content: "Something went wrong, the command was not applied.", Ephemeral: true}
	}

	h.logger.Info("command handled", slog.String("command", name))
	return Reply{Content: truncate(content)}
}

func (h *Handler) addPlayer(ctx context.Context, args Args) (string, error) {
	names := model.SplitNames(args.String(OptionPlayers))
	if len(names) == 0 {
		return "", model.ErrInvalidPlayerName
	}
	result, err := h.rosterService.Register(ctx, names)
	if err != nil {
		return "", err
	}

	created := make(map[model.PlayerKey]bool, len(result.Created))
	for _, key := range result.Created {
		created[key] = true
	}
	var added, existing []string
	for _, p := range result.Players {
		if created[p.Key] {
			added = append(added, p.DisplayName)
		} else {
			existing = append(existing, p.DisplayName)
		}
	}

	var b strings.Builder
	if len(added) > 0 {
		fmt.Fprintf(&b, "Registered: %s", strings.Join(added, ", "))
	}
	if len(existing) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Already registered: %s", strings.Join(existing, ", "))
	}
	return b.String(), nil
}

func (h *Handler) match(ctx context.Context, args Args) (string, error) {
	result, err := h.matchService.Record(ctx,
		model.SplitNames(args.String(OptionTeamA)),
		model.SplitNames(args.String(OptionTeamB)),
		args.String(OptionWinner),
	)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Match recorded, team %s won.\n", result.Winner)
	for _, team := range []struct {
		label   string
		changes []model.RatingChange
	}{{"A", result.TeamA}, {"B", result.TeamB}} {
		fmt.Fprintf(&b, "**Team %s**\n", team.label)
		for _, c := range team.changes {
			fmt.Fprintf(&b, "- %s: %s → %s\n", c.DisplayName, h.formatRating(c.Before), h.formatRating(c.After))
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (h *Handler) top(ctx context.Context, args Args) (string, error) {
	q, err := topQuery(args)
	if err != nil {
		return "", err
	}
	standings, err := h.leaderboardService.Top(ctx, q)
	if err != nil {
		return "", err
	}
	if len(standings) == 0 {
		return "No players registered yet.", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**Top %d**\n", len(standings))
	for _, s := range standings {
		fmt.Fprintf(&b, "%d. %s: %s (%d matches, %.0f%% wins)\n",
			s.Rank, s.Player.DisplayName, h.formatRating(s.Player.Rating), s.Player.MatchesPlayed, s.Player.WinRate()*100)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (h *Handler) team(ctx context.Context, args Args) (string, error) {
	result, err := h.teamsService.Balance(ctx, model.SplitNames(args.String(OptionPlayers)), "")
	if err != nil {
		return "", err
	}

	var b strings.Builder
	write := func(label string, keys []model.PlayerKey, average, win float64) {
		fmt.Fprintf(&b, "**Team %s** (average %.2f, %.0f%% to win)\n", label, average, win*100)
		for _, key := range keys {
			p := result.Players[key]
			fmt.Fprintf(&b, "- %s (%s)\n", p.DisplayName, h.formatRating(p.Rating))
		}
	}
	write("A", result.Split.TeamA, result.AverageA(), result.Prediction.WinA)
	write("B", result.Split.TeamB, result.AverageB(), result.Prediction.WinB)
	fmt.Fprintf(&b, "Difference: %.2f", result.Split.Difference)
	return b.String(), nil
}

func (h *Handler) formatRating(r model.Rating) string {
	if h.strategy.Kind() == model.StrategyElo {
		return fmt.Sprintf("%d", r.Elo)
	}
	return fmt.Sprintf("%.2f", r.Mu)
}

func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= maxContentRunes {
		return s
	}
	return string(runes[:maxContentRunes-1]) + "…"
}
