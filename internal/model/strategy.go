package model

import (
	"fmt"
	"strings"
)

// StrategyKind selects the rating model used by a deployment
type StrategyKind string

const (
	StrategyElo      StrategyKind = "elo"
	StrategyBayesian StrategyKind = "bayesian"
)

// ParseStrategyKind parses a strategy name, case-insensitively
func ParseStrategyKind(s string) (StrategyKind, error) {
	switch kind := StrategyKind(strings.ToLower(strings.TrimSpace(s))); kind {
	case StrategyElo, StrategyBayesian:
		return kind, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStrategy, s)
	}
}

// Metric selects the fairness score used when balancing teams
type Metric string

const (
	// MetricMu sums each player's mean skill
	MetricMu Metric = "mu"
	// MetricConservative sums mean minus three times the uncertainty
	MetricConservative Metric = "conservative"
)

// ParseMetric parses a metric name. An empty string selects MetricMu.
func ParseMetric(s string) (Metric, error) {
	switch metric := Metric(strings.ToLower(strings.TrimSpace(s))); metric {
	case "":
		return MetricMu, nil
	case MetricMu, MetricConservative:
		return metric, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMetric, s)
	}
}
