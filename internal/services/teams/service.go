package teams

import (
	"context"
	"log/slog"

	"github.com/mcoot/teamrank/internal/balance"
	"github.com/mcoot/teamrank/internal/dependencies/clock"
	"github.com/mcoot/teamrank/internal/metrics"
	"github.com/mcoot/teamrank/internal/model"
	"github.com/mcoot/teamrank/internal/rating"
	"github.com/mcoot/teamrank/internal/services/roster"
)

// Service generates balanced teams from a list of player names
type Service struct {
	roster        *roster.Service
	strategy      rating.Strategy
	balancer      *balance.Balancer
	defaultMetric model.Metric
	clock         clock.Clock
	metrics       *metrics.Metrics
	logger        *slog.Logger
}

// Result is a balanced split with the records used to compute it
type Result struct {
	Split      model.TeamSplit
	Players    map[model.PlayerKey]model.PlayerRecord
	Prediction rating.Prediction
}

// AverageA returns the mean metric score of team A
func (r *Result) AverageA() float64 {
	return r.Split.ScoreA / float64(len(r.Split.TeamA))
}

// AverageB returns the mean metric score of team B
func (r *Result) AverageB() float64 {
	return r.Split.ScoreB / float64(len(r.Split.TeamB))
}

// New creates a new teams Service. defaultMetric is used when a request names none.
func New(
	roster *roster.Service,
	balancer *balance.Balancer,
	defaultMetric model.Metric,
	clock clock.Clock,
	metrics *metrics.Metrics,
	logger *slog.Logger,
) *Service {
	if defaultMetric == "" {
		defaultMetric = model.MetricMu
	}
	return &Service{
		roster:        roster,
		strategy:      roster.Strategy(),
		balancer:      balancer,
		defaultMetric: defaultMetric,
		clock:         clock,
		metrics:       metrics,
		logger:        logger,
	}
}

// Balance splits the named players into two teams. The roster is validated
// before unknown players are registered, so a rejected request changes nothing.
func (s *Service) Balance(ctx context.Context, names []string, metric string) (*Result, error) {
	m := s.defaultMetric
	if metric != "" {
		parsed, err := model.ParseMetric(metric)
		if err != nil {
			s.metrics.ValidationFailed("teams")
			return nil, err
		}
		m = parsed
	}

	keys := make([]model.PlayerKey, len(names))
	for i, name := range names {
		keys[i] = model.NormalizeKey(name)
	}
	if err := s.balancer.Validate(keys); err != nil {
		s.metrics.ValidationFailed("teams")
		return nil, err
	}

	players := make(map[model.PlayerKey]model.PlayerRecord, len(keys))
	var created []model.PlayerKey
	err := s.roster.Update(ctx, func(r model.Roster) error {
		created = created[:0]
		for _, name := range names {
			p, isNew, err := s.roster.Ensure(r, name)
			if err != nil {
				return err
			}
			if isNew {
				created = append(created, p.Key)
			}
			players[p.Key] = p
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.roster.Registered(created)

	entries := make([]balance.Entry, len(keys))
	for i, key := range keys {
		entries[i] = balance.Entry{Key: key, Skill: s.strategy.Skill(players[key].Rating)}
	}

	start := s.clock.Now()
	split, err := s.balancer.Balance(entries, m)
	if err != nil {
		return nil, err
	}
	took := s.clock.Now().Sub(start)
	s.metrics.TeamsBalanced(string(m), took)

	result := &Result{
		Split:      *split,
		Players:    players,
		Prediction: s.strategy.Predict(ratingsOf(players, split.TeamA), ratingsOf(players, split.TeamB)),
	}

	s.logger.Info("teams balanced",
		slog.String("metric", string(m)),
		slog.Int("player_count", len(keys)),
		slog.Float64("difference", split.Difference),
		slog.Duration("took", took),
	)
	return result, nil
}

func ratingsOf(players map[model.PlayerKey]model.PlayerRecord, keys []model.PlayerKey) []model.Rating {
	out := make([]model.Rating, len(keys))
	for i, key := range keys {
		out[i] = players[key].Rating
	}
	return out
}

