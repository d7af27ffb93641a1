package match

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/mcoot/teamrank/internal/dependencies/clock"
	"github.com/mcoot/teamrank/internal/dependencies/ids"
	"github.com/mcoot/teamrank/internal/metrics"
	"github.com/mcoot/teamrank/internal/model"
	"github.com/mcoot/teamrank/internal/rating"
	"github.com/mcoot/teamrank/internal/services/roster"
)

// Service records match outcomes and applies rating updates
type Service struct {
	roster   *roster.Service
	strategy rating.Strategy
	clock    clock.Clock
	ids      ids.Generator
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// New creates a new match Service
func New(
	roster *roster.Service,
	clock clock.Clock,
	ids ids.Generator,
	metrics *metrics.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		roster:   roster,
		strategy: roster.Strategy(),
		clock:    clock,
		ids:      ids,
		metrics:  metrics,
		logger:   logger,
	}
}

// Record rates a match between two teams of player names and persists the
// result. Unknown players are registered. Input is fully validated before
// anything is loaded or written.
func (s *Service) Record(ctx context.Context, teamA, teamB []string, winner string) (*model.MatchResult, error) {
	side, err := model.ParseSide(winner)
	if err != nil {
		s.metrics.ValidationFailed("match")
		return nil, err
	}

	names := make(map[model.PlayerKey]string, len(teamA)+len(teamB))
	m := model.Match{
		TeamA:  keysOf(teamA, names),
		TeamB:  keysOf(teamB, names),
		Winner: side,
	}
	if err := m.Validate(); err != nil {
		s.metrics.ValidationFailed("match")
		return nil, err
	}

	var (
		result  *model.MatchResult
		created []model.PlayerKey
	)
	err = s.roster.Update(ctx, func(r model.Roster) error {
		created = created[:0]
		for _, key := range m.Participants() {
			_, isNew, err := s.roster.Ensure(r, names[key])
			if err != nil {
				return err
			}
			if isNew {
				created = append(created, key)
			}
		}

		beforeA, beforeB := ratingsOf(r, m.TeamA), ratingsOf(r, m.TeamB)
		afterA, afterB, err := s.strategy.Rate(beforeA, beforeB, side)
		if err != nil {
			return err
		}

		now := s.clock.Now().UTC().Truncate(time.Second)
		result = &model.MatchResult{
			ID:       model.MatchID(s.ids.NewID()),
			Strategy: s.strategy.Kind(),
			Winner:   side,
			TeamA:    apply(r, m.TeamA, afterA, side == model.SideA, now),
			TeamB:    apply(r, m.TeamB, afterB, side == model.SideB, now),
			PlayedAt: now,
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, model.ErrValidation) {
			s.metrics.ValidationFailed("match")
		}
		return nil, err
	}

	s.roster.Registered(created)
	s.metrics.MatchRecorded(string(side))
	s.logger.Info("match recorded",
		slog.String("match_id", string(result.ID)),
		slog.String("winner", string(side)),
		slog.Int("team_a_size", len(m.TeamA)),
		slog.Int("team_b_size", len(m.TeamB)),
	)
	return result, nil
}

// apply writes the new ratings and counters into the roster and returns the
// per-player changes
func apply(r model.Roster, keys []model.PlayerKey, after []model.Rating, won bool, now time.Time) []model.RatingChange {
	changes := make([]model.RatingChange, len(keys))
	for i, key := range keys {
		p := r[key]
		changes[i] = model.RatingChange{
			Key:         key,
			DisplayName: p.DisplayName,
			Before:      p.Rating,
			After:       after[i],
			Won:         won,
		}

		p.Rating = after[i]
		p.MatchesPlayed++
		if won {
			p.Wins++
		}
		p.LastMatchAt = now
		r[key] = p
	}
	return changes
}

func ratingsOf(r model.Roster, keys []model.PlayerKey) []model.Rating {
	out := make([]model.Rating, len(keys))
	for i, key := range keys {
		out[i] = r[key].Rating
	}
	return out
}

// keysOf normalises names, remembering the first spelling of each key
func keysOf(names []string, spellings map[model.PlayerKey]string) []model.PlayerKey {
	keys := make([]model.PlayerKey, len(names))
	for i, name := range names {
		keys[i] = model.NormalizeKey(name)
		if _, ok := spellings[keys[i]]; !ok {
			spellings[keys[i]] = strings.TrimSpace(name)
		}
	}
	return keys
}
