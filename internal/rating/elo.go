package rating

import (
	"math"

	"github.com/mcoot/teamrank/internal/model"
)

// Elo rates each player against the average rating of the opposing team
type Elo struct {
	k       float64
	initial int
}

var _ Strategy = (*Elo)(nil)

// NewElo creates an Elo strategy with learning rate k
func NewElo(k float64, initial int) *Elo {
	return &Elo{k: k, initial: initial}
}

func (e *Elo) Kind() model.StrategyKind {
	return model.StrategyElo
}

func (e *Elo) Initial() model.Rating {
	return model.Rating{Elo: e.initial}
}

func (e *Elo) Rate(teamA, teamB []model.Rating, winner model.Side) ([]model.Rating, []model.Rating, error) {
	if err := validateTeams(teamA, teamB, winner); err != nil {
		return nil, nil, err
	}

	// Both averages come from the pre-match ratings
	avgA := averageElo(teamA)
	avgB := averageElo(teamB)

	newA := e.rateTeam(teamA, avgB, winner == model.SideA)
	newB := e.rateTeam(teamB, avgA, winner == model.SideB)
	return newA, newB, nil
}

func (e *Elo) rateTeam(team []model.Rating, opponentAvg float64, won bool) []model.Rating {
	actual := 0.0
	if won {
		actual = 1.0
	}

	out := make([]model.Rating, len(team))
	for i, r := range team {
		expected := ExpectedScore(float64(r.Elo), opponentAvg)
		delta := e.k * (actual - expected)
		out[i] = model.Rating{Elo: int(math.Round(float64(r.Elo) + delta))}
	}
	return out
}

func (e *Elo) Skill(r model.Rating) Skill {
	return Skill{Mean: float64(r.Elo)}
}

func (e *Elo) Predict(teamA, teamB []model.Rating) Prediction {
	if len(teamA) == 0 || len(teamB) == 0 {
		return Prediction{WinA: 0.5, WinB: 0.5}
	}
	winA := ExpectedScore(averageElo(teamA), averageElo(teamB))
	return Prediction{WinA: winA, WinB: 1 - winA}
}

// ExpectedScore is the probability that a player rated r beats an opponent rated opponent
func ExpectedScore(r, opponent float64) float64 {
	return 1 / (1 + math.Pow(10, (opponent-r)/400))
}

func averageElo(team []model.Rating) float64 {
	sum := 0
	for _, r := range team {
		sum += r.Elo
	}
	return float64(sum) / float64(len(team))
}
