// Package balance splits a roster into two equal-size teams with the smallest
// difference in total skill.
package balance

import (
	"fmt"
	"math"

	"github.com/mcoot/teamrank/internal/model"
	"github.com/mcoot/teamrank/internal/rating"
)

// DefaultMaxPlayers bounds the exhaustive search. C(20, 10) is 184756 splits.
const DefaultMaxPlayers = 20

// Entry is one player offered to the balancer
type Entry struct {
	Key   model.PlayerKey
	Skill rating.Skill
}

// MetricFunc scores a single player for the fairness metric
type MetricFunc func(rating.Skill) float64

// MuOnly scores a player by mean skill
func MuOnly(s rating.Skill) float64 {
	return s.Mean
}

// Conservative scores a player by mean minus three times the uncertainty
func Conservative(s rating.Skill) float64 {
	return s.Conservative()
}

// MetricFor returns the scoring function for a metric
func MetricFor(m model.Metric) (MetricFunc, error) {
	switch m {
	case model.MetricMu:
		return MuOnly, nil
	case model.MetricConservative:
		return Conservative, nil
	default:
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidMetric, m)
	}
}

// Balancer performs an exhaustive search over all equal-size splits
type Balancer struct {
	maxPlayers int
}

// New creates a Balancer that rejects rosters larger than maxPlayers.
// A non-positive value selects DefaultMaxPlayers.
func New(maxPlayers int) *Balancer {
	if maxPlayers <= 0 {
		maxPlayers = DefaultMaxPlayers
	}
	return &Balancer{maxPlayers: maxPlayers}
}

// MaxPlayers returns the largest roster the balancer accepts
func (b *Balancer) MaxPlayers() int {
	return b.maxPlayers
}

// Validate checks a roster of keys without searching
func (b *Balancer) Validate(keys []model.PlayerKey) error {
	n := len(keys)
	if n < 2 {
		return model.ErrRosterTooSmall
	}
	if n%2 != 0 {
		return fmt.Errorf("%w: got %d", model.ErrOddRoster, n)
	}
	if n > b.maxPlayers {
		return fmt.Errorf("%w: got %d, maximum is %d", model.ErrRosterTooLarge, n, b.maxPlayers)
	}

	seen := make(map[model.PlayerKey]struct{}, n)
	for _, key := range keys {
		if key == "" {
			return model.ErrInvalidPlayerName
		}
		if _, ok := seen[key]; ok {
			return fmt.Errorf("%w: %s", model.ErrDuplicatePlayer, key)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// Balance returns the split minimising |score(A) - score(B)|.
//
// Team A candidates are visited in lexicographic order of input positions and
// the first candidate reaching the minimum is kept. Only candidates holding the
// first player are scored: every other candidate is the mirror of one of them,
// visited later with the same difference, so it can never replace it.
func (b *Balancer) Balance(entries []Entry, metric model.Metric) (*model.TeamSplit, error) {
	keys := make([]model.PlayerKey, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
	}
	if err := b.Validate(keys); err != nil {
		return nil, err
	}
	score, err := MetricFor(metric)
	if err != nil {
		return nil, err
	}

	scores := make([]float64, len(entries))
	for i, e := range entries {
		scores[i] = score(e.Skill)
	}

	n, k := len(entries), len(entries)/2
	inA := make([]bool, n)
	best := make([]int, k)
	bestDiff := math.Inf(1)

	combo := make([]int, k)
	for i := range combo {
		combo[i] = i
	}
	for combo[0] == 0 {
		for i := range inA {
			inA[i] = false
		}
		for _, idx := range combo {
			inA[idx] = true
		}
		sumA, sumB := sums(scores, inA)

		if diff := math.Abs(sumA - sumB); diff < bestDiff {
			bestDiff = diff
			copy(best, combo)
			if diff == 0 {
				break
			}
		}
		if !nextCombination(combo, n) {
			break
		}
	}

	for i := range inA {
		inA[i] = false
	}
	for _, idx := range best {
		inA[idx] = true
	}
	sumA, sumB := sums(scores, inA)

	split := &model.TeamSplit{
		Metric:     metric,
		TeamA:      make([]model.PlayerKey, 0, k),
		TeamB:      make([]model.PlayerKey, 0, k),
		ScoreA:     sumA,
		ScoreB:     sumB,
		Difference: bestDiff,
	}
	for i, e := range entries {
		if inA[i] {
			split.TeamA = append(split.TeamA, e.Key)
		} else {
			split.TeamB = append(split.TeamB, e.Key)
		}
	}
	return split, nil
}

// sums adds scores in index order for both sides, so a split and its mirror
// produce bit-identical totals
func sums(scores []float64, inA []bool) (float64, float64) {
	var a, b float64
	for i, s := range scores {
		if inA[i] {
			a += s
		} else {
			b += s
		}
	}
	return a, b
}

// nextCombination advances combo to the next k-subset of [0, n) in
// lexicographic order. It returns false after the last one.
func nextCombination(combo []int, n int) bool {
	k := len(combo)
	i := k - 1
	for i >= 0 && combo[i] == n-k+i {
		i--
	}
	if i < 0 {
		return false
	}
	combo[i]++
	for j := i + 1; j < k; j++ {
		combo[j] = combo[j-1] + 1
	}
	return true
}
