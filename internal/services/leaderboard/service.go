package leaderboard

import (
	"cmp"
	"context"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"time"

	"github.com/mcoot/teamrank/internal/dependencies/clock"
	"github.com/mcoot/teamrank/internal/model"
	"github.com/mcoot/teamrank/internal/rating"
	"github.com/mcoot/teamrank/internal/services/roster"
)

// DefaultLimit is the number of players shown when a query sets no limit
const DefaultLimit = 20

// MaxActiveDays bounds the recency window, keeping it well inside time.Duration
const MaxActiveDays = 36500

// Query filters and truncates the leaderboard
type Query struct {
	// Limit caps the number of standings. Zero selects DefaultLimit, negative means no cap.
	Limit int

	// ActiveWithin keeps only players whose last match is within this window. Zero disables it.
	ActiveWithin time.Duration

	// MinMatches keeps only players with at least this many matches
	MinMatches int
}

// ParseQuery reads limit, active_days and min_matches from URL parameters.
// Absent parameters keep their defaults and limit=0 removes the cap.
func ParseQuery(values url.Values) (Query, error) {
	var q Query
	parse := func(name string) (int, error) {
		raw := values.Get(name)
		if raw == "" {
			return 0, nil
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%w: %s must be a non-negative integer", model.ErrValidation, name)
		}
		return n, nil
	}

	limit, err := parse("limit")
	if err != nil {
		return q, err
	}
	days, err := parse("active_days")
	if err != nil {
		return q, err
	}
	if q.MinMatches, err = parse("min_matches"); err != nil {
		return q, err
	}

	switch {
	case values.Get("limit") == "":
		q.Limit = DefaultLimit
	case limit == 0:
		q.Limit = -1
	default:
		q.Limit = limit
	}
	if q.ActiveWithin, err = ActiveDays(days); err != nil {
		return q, err
	}
	return q, nil
}

// ActiveDays converts a recency window in days to a Query.ActiveWithin value.
// Zero disables the filter.
func ActiveDays(days int) (time.Duration, error) {
	if days < 0 || days > MaxActiveDays {
		return 0, fmt.Errorf("%w: active_days must be between 0 and %d", model.ErrValidation, MaxActiveDays)
	}
	return time.Duration(days) * 24 * time.Hour, nil
}

// Standing is one leaderboard row
type Standing struct {
	Rank   int
	Player model.PlayerRecord
	Skill  rating.Skill
}

// Service ranks players from a read-only snapshot
type Service struct {
	roster   *roster.Service
	strategy rating.Strategy
	clock    clock.Clock
}

// New creates a new leaderboard Service
func New(roster *roster.Service, clock clock.Clock) *Service {
	return &Service{
		roster:   roster,
		strategy: roster.Strategy(),
		clock:    clock,
	}
}

// Strategy returns the rating strategy whose values are ranked
func (s *Service) Strategy() rating.Strategy {
	return s.strategy
}

// Top returns players sorted by rating, highest first. Equal ratings are
// ordered by key.
func (s *Service) Top(ctx context.Context, q Query) ([]Standing, error) {
	players, err := s.roster.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	var cutoff time.Time
	if q.ActiveWithin > 0 {
		cutoff = s.clock.Now().Add(-q.ActiveWithin)
	}

	standings := make([]Standing, 0, len(players))
	for _, p := range players {
		if p.MatchesPlayed < q.MinMatches {
			continue
		}
		if !cutoff.IsZero() && !p.ActiveSince(cutoff) {
			continue
		}
		standings = append(standings, Standing{Player: p, Skill: s.strategy.Skill(p.Rating)})
	}

	slices.SortFunc(standings, func(a, b Standing) int {
		if c := cmp.Compare(b.Skill.Mean, a.Skill.Mean); c != 0 {
			return c
		}
		return cmp.Compare(a.Player.Key, b.Player.Key)
	})

	limit := q.Limit
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit > 0 && len(standings) > limit {
		standings = standings[:limit]
	}
	for i := range standings {
		standings[i].Rank = i + 1
	}
	return standings, nil
}
