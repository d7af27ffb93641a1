package model

// TeamSplit is a partition of a roster into two equal-size teams
type TeamSplit struct {
	Metric     Metric
	TeamA      []PlayerKey
	TeamB      []PlayerKey
	ScoreA     float64
	ScoreB     float64
	Difference float64
}
