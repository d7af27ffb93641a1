package rating

import (
	"math"

	"github.com/intinig/go-openskill/ptr"
	openskill "github.com/intinig/go-openskill/rating"
	"github.com/intinig/go-openskill/types"

	"github.com/mcoot/teamrank/internal/model"
)

// Bayesian tracks a mean and an uncertainty per player and updates all
// participants of a match jointly with the openskill model
type Bayesian struct {
	mu    float64
	sigma float64
}

var _ Strategy = (*Bayesian)(nil)

// NewBayesian creates a Bayesian strategy with the given prior
func NewBayesian(mu, sigma float64) *Bayesian {
	return &Bayesian{mu: mu, sigma: sigma}
}

func (b *Bayesian) Kind() model.StrategyKind {
	return model.StrategyBayesian
}

func (b *Bayesian) Initial() model.Rating {
	return model.Rating{Mu: b.mu, Sigma: b.sigma}
}

func (b *Bayesian) Rate(teamA, teamB []model.Rating, winner model.Side) ([]model.Rating, []model.Rating, error) {
	if err := validateTeams(teamA, teamB, winner); err != nil {
		return nil, nil, err
	}

	// Teams are passed in finishing order, winner first
	first, second := toTeam(teamA), toTeam(teamB)
	if winner == model.SideB {
		first, second = second, first
	}

	rated := openskill.Rate([]types.Team{first, second}, b.options())

	newFirst, newSecond := fromTeam(rated[0]), fromTeam(rated[1])
	if winner == model.SideB {
		return newSecond, newFirst, nil
	}
	return newFirst, newSecond, nil
}

func (b *Bayesian) Skill(r model.Rating) Skill {
	return Skill{Mean: r.Mu, Uncertainty: r.Sigma}
}

// Predict uses the normal approximation of the team performance difference
// for the win probability and the openskill draw likelihood for Draw
func (b *Bayesian) Predict(teamA, teamB []model.Rating) Prediction {
	if len(teamA) == 0 || len(teamB) == 0 {
		return Prediction{WinA: 0.5, WinB: 0.5}
	}

	beta := b.beta()
	var muA, muB, variance float64
	for _, r := range teamA {
		muA += r.Mu
		variance += beta*beta + r.Sigma*r.Sigma
	}
	for _, r := range teamB {
		muB += r.Mu
		variance += beta*beta + r.Sigma*r.Sigma
	}

	winA := normalCDF((muA - muB) / math.Sqrt(variance))
	draw := openskill.PredictDraw([]types.Team{toTeam(teamA), toTeam(teamB)}, b.options())
	return Prediction{WinA: winA, WinB: 1 - winA, Draw: draw}
}

// beta is the performance noise of a single player
func (b *Bayesian) beta() float64 {
	return b.sigma / 2
}

// options builds the model constants from the prior. Rate stores the model
// and ranks in the struct it is given, so every call gets a new one.
func (b *Bayesian) options() *types.OpenSkillOptions {
	return &types.OpenSkillOptions{
		Mu:    ptr.Float64(b.mu),
		Sigma: ptr.Float64(b.sigma),
		Beta:  ptr.Float64(b.beta()),
	}
}

func toTeam(ratings []model.Rating) types.Team {
	team := make(types.Team, len(ratings))
	for i, r := range ratings {
		team[i] = types.Rating{Mu: r.Mu, Sigma: r.Sigma}
	}
	return team
}

func fromTeam(team types.Team) []model.Rating {
	out := make([]model.Rating, len(team))
	for i, r := range team {
		out[i] = model.Rating{Mu: r.Mu, Sigma: math.Max(r.Sigma, 0)}
	}
	return out
}

func normalCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}
