package model

import (
	"fmt"
	"strings"
	"time"
)

// Side identifies one of the two teams in a match
type Side string

const (
	SideA Side = "A"
	SideB Side = "B"
)

// ParseSide parses a winner token. Only "A" and "B" are accepted, in either case.
func ParseSide(s string) (Side, error) {
	switch side := Side(strings.ToUpper(strings.TrimSpace(s))); side {
	case SideA, SideB:
		return side, nil
	default:
		return "", fmt.Errorf("%w: got %q", ErrInvalidWinner, s)
	}
}

// Opponent returns the other side
func (s Side) Opponent() Side {
	if s == SideA {
		return SideB
	}
	return SideA
}

// MatchID identifies a recorded match result
type MatchID string

// Match is a two-team outcome submitted for rating
type Match struct {
	TeamA  []PlayerKey
	TeamB  []PlayerKey
	Winner Side
}

// Validate checks the match shape without touching any stored state
func (m Match) Validate() error {
	if m.Winner != SideA && m.Winner != SideB {
		return fmt.Errorf("%w: got %q", ErrInvalidWinner, m.Winner)
	}
	if len(m.TeamA) == 0 || len(m.TeamB) == 0 {
		return ErrEmptyTeam
	}

	seen := make(map[PlayerKey]Side, len(m.TeamA)+len(m.TeamB))
	for _, team := range []struct {
		side Side
		keys []PlayerKey
	}{{SideA, m.TeamA}, {SideB, m.TeamB}} {
		for _, key := range team.keys {
			if key == "" {
				return ErrInvalidPlayerName
			}
			if prev, ok := seen[key]; ok {
				if prev != team.side {
					return fmt.Errorf("%w: %s", ErrPlayerOnBothTeams, key)
				}
				return fmt.Errorf("%w: %s", ErrDuplicatePlayer, key)
			}
			seen[key] = team.side
		}
	}
	return nil
}

// Participants returns team A followed by team B
func (m Match) Participants() []PlayerKey {
	out := make([]PlayerKey, 0, len(m.TeamA)+len(m.TeamB))
	out = append(out, m.TeamA...)
	return append(out, m.TeamB...)
}

// RatingChange describes how one player's rating moved in a match
type RatingChange struct {
	Key         PlayerKey
	DisplayName string
	Before      Rating
	After       Rating
	Won         bool
}

// MatchResult is returned after a match has been rated and persisted
type MatchResult struct {
	ID       MatchID
	Strategy StrategyKind
	Winner   Side
	TeamA    []RatingChange
	TeamB    []RatingChange
	PlayedAt time.Time
}
