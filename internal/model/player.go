package model

import (
	"maps"
	"slices"
	"strings"
	"time"
)

// PlayerKey is the case-insensitive identity of a player
type PlayerKey string

// NormalizeKey derives the PlayerKey for a display name
func NormalizeKey(name string) PlayerKey {
	return PlayerKey(strings.ToLower(strings.TrimSpace(name)))
}

// SplitNames splits a whitespace-separated list of player names
func SplitNames(s string) []string {
	return strings.Fields(s)
}

// Rating holds the skill state of a player.
// Elo is used by the elo strategy, Mu and Sigma by the bayesian strategy.
type Rating struct {
	Elo   int
	Mu    float64
	Sigma float64
}

// PlayerRecord is the persisted aggregate state of a single player
type PlayerRecord struct {
	Key           PlayerKey
	DisplayName   string // casing as first registered, never overwritten
	Rating        Rating
	MatchesPlayed int
	Wins          int
	LastMatchAt   time.Time // zero until the first match
}

// NewPlayerRecord creates a record with zeroed counters
func NewPlayerRecord(name string, initial Rating) PlayerRecord {
	return PlayerRecord{
		Key:         NormalizeKey(name),
		DisplayName: strings.TrimSpace(name),
		Rating:      initial,
	}
}

// Losses returns the number of matches the player did not win
func (p PlayerRecord) Losses() int {
	return p.MatchesPlayed - p.Wins
}

// WinRate returns wins as a fraction of matches played, 0 with no matches
func (p PlayerRecord) WinRate() float64 {
	if p.MatchesPlayed == 0 {
		return 0
	}
	return float64(p.Wins) / float64(p.MatchesPlayed)
}

// ActiveSince reports whether the player has played at or after t
func (p PlayerRecord) ActiveSince(t time.Time) bool {
	return !p.LastMatchAt.IsZero() && !p.LastMatchAt.Before(t)
}

// Roster is a full snapshot of the player table
type Roster map[PlayerKey]PlayerRecord

// Clone returns an independent copy of the roster
func (r Roster) Clone() Roster {
	if r == nil {
		return Roster{}
	}
	return maps.Clone(r)
}

// Keys returns the roster keys in sorted order
func (r Roster) Keys() []PlayerKey {
	return slices.Sorted(maps.Keys(r))
}
