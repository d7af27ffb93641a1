package rating

import (
	"fmt"

	"github.com/mcoot/teamrank/internal/model"
)

// Strategy computes post-match ratings for the two teams of a match.
// Implementations are pure: they never read or write the player store.
type Strategy interface {
	// Kind identifies the rating model
	Kind() model.StrategyKind

	// Initial returns the rating given to a newly registered player
	Initial() model.Rating

	// Rate returns the new ratings of both teams, in input order.
	// Every result is derived from the pre-match ratings passed in.
	Rate(teamA, teamB []model.Rating, winner model.Side) ([]model.Rating, []model.Rating, error)

	// Skill projects a rating onto a mean and an uncertainty
	Skill(r model.Rating) Skill

	// Predict estimates the outcome of a match between two teams
	Predict(teamA, teamB []model.Rating) Prediction
}

// Skill is the strategy-independent view of a rating
type Skill struct {
	Mean        float64
	Uncertainty float64
}

// Conservative returns the lower confidence bound mean - 3*uncertainty
func (s Skill) Conservative() float64 {
	return s.Mean - 3*s.Uncertainty
}

// Prediction is the estimated chance of each outcome.
// WinA and WinB sum to 1; Draw is reported separately.
type Prediction struct {
	WinA float64
	WinB float64
	Draw float64
}

// Config holds the constants of both rating models
type Config struct {
	Kind model.StrategyKind

	EloK       float64
	InitialElo int

	InitialMu    float64
	InitialSigma float64
}

// DefaultConfig returns the standard constants with the bayesian model selected
func DefaultConfig() Config {
	return Config{
		Kind:         model.StrategyBayesian,
		EloK:         32,
		InitialElo:   1000,
		InitialMu:    25.0,
		InitialSigma: 8.333,
	}
}

// New builds the strategy selected by cfg.Kind
func New(cfg Config) (Strategy, error) {
	switch cfg.Kind {
	case model.StrategyElo:
		if cfg.EloK <= 0 {
			return nil, fmt.Errorf("%w: elo k must be positive", model.ErrValidation)
		}
		return NewElo(cfg.EloK, cfg.InitialElo), nil
	case model.StrategyBayesian:
		if cfg.InitialSigma <= 0 {
			return nil, fmt.Errorf("%w: initial sigma must be positive", model.ErrValidation)
		}
		return NewBayesian(cfg.InitialMu, cfg.InitialSigma), nil
	default:
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidStrategy, cfg.Kind)
	}
}

func validateTeams(teamA, teamB []model.Rating, winner model.Side) error {
	if winner != model.SideA && winner != model.SideB {
		return fmt.Errorf("%w: got %q", model.ErrInvalidWinner, winner)
	}
	if len(teamA) == 0 || len(teamB) == 0 {
		return model.ErrEmptyTeam
	}
	return nil
}
