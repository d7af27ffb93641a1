// Package codec is the stable serialised form of player records shared by the
// storage backends
package codec

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/mcoot/teamrank/internal/model"
)

// Record is the on-disk shape of a player. Only the fields of the active
// strategy are written.
type Record struct {
	DisplayName   string   `json:"display_name"`
	Rating        *int     `json:"rating,omitempty"`
	Mu            *float64 `json:"mu,omitempty"`
	Sigma         *float64 `json:"sigma,omitempty"`
	MatchesPlayed int      `json:"matches_played"`
	Wins          int      `json:"wins"`
	LastMatchAt   int64    `json:"last_match_at,omitempty"` // unix seconds
}

// Codec converts between player records and their serialised form for one
// rating strategy
type Codec struct {
	kind model.StrategyKind
}

// New creates a codec for the given strategy
func New(kind model.StrategyKind) *Codec {
	return &Codec{kind: kind}
}

// Kind returns the strategy the codec reads and writes
func (c *Codec) Kind() model.StrategyKind {
	return c.kind
}

// ToRecord converts a player to its serialised shape
func (c *Codec) ToRecord(p model.PlayerRecord) Record {
	rec := Record{
		DisplayName:   p.DisplayName,
		MatchesPlayed: p.MatchesPlayed,
		Wins:          p.Wins,
		LastMatchAt:   ToUnix(p.LastMatchAt),
	}
	switch c.kind {
	case model.StrategyElo:
		elo := p.Rating.Elo
		rec.Rating = &elo
	case model.StrategyBayesian:
		mu, sigma := p.Rating.Mu, p.Rating.Sigma
		rec.Mu, rec.Sigma = &mu, &sigma
	}
	return rec
}

// FromRecord converts and validates a serialised player
func (c *Codec) FromRecord(key string, rec Record) (model.PlayerRecord, error) {
	p := model.PlayerRecord{
		Key:           model.PlayerKey(key),
		DisplayName:   rec.DisplayName,
		MatchesPlayed: rec.MatchesPlayed,
		Wins:          rec.Wins,
		LastMatchAt:   FromUnix(rec.LastMatchAt),
	}

	switch c.kind {
	case model.StrategyElo:
		if rec.Rating == nil {
			return model.PlayerRecord{}, corrupt(key, "missing rating")
		}
		if rec.Mu != nil || rec.Sigma != nil {
			return model.PlayerRecord{}, corrupt(key, "bayesian fields in elo record")
		}
		p.Rating.Elo = *rec.Rating
	case model.StrategyBayesian:
		if rec.Mu == nil || rec.Sigma == nil {
			return model.PlayerRecord{}, corrupt(key, "missing mu or sigma")
		}
		if rec.Rating != nil {
			return model.PlayerRecord{}, corrupt(key, "elo field in bayesian record")
		}
		p.Rating.Mu, p.Rating.Sigma = *rec.Mu, *rec.Sigma
	}

	if err := c.Validate(p); err != nil {
		return model.PlayerRecord{}, err
	}
	return p, nil
}

// Validate checks the invariants every stored player must satisfy
func (c *Codec) Validate(p model.PlayerRecord) error {
	key := string(p.Key)
	switch {
	case key == "" || model.NormalizeKey(key) != p.Key:
		return corrupt(key, "key is not normalised")
	case p.DisplayName == "":
		return corrupt(key, "empty display name")
	case model.NormalizeKey(p.DisplayName) != p.Key:
		return corrupt(key, "display name does not match key")
	case p.MatchesPlayed < 0 || p.Wins < 0:
		return corrupt(key, "negative counter")
	case p.Wins > p.MatchesPlayed:
		return corrupt(key, "more wins than matches")
	}
	if c.kind == model.StrategyBayesian {
		if !finite(p.Rating.Mu) || !finite(p.Rating.Sigma) || p.Rating.Sigma < 0 {
			return corrupt(key, "invalid mu or sigma")
		}
	}
	return nil
}

// MarshalRecord encodes a single player
func (c *Codec) MarshalRecord(p model.PlayerRecord) ([]byte, error) {
	return json.Marshal(c.ToRecord(p))
}

// UnmarshalRecord decodes a single player stored under key
func (c *Codec) UnmarshalRecord(key string, data []byte) (model.PlayerRecord, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return model.PlayerRecord{}, corrupt(key, err.Error())
	}
	return c.FromRecord(key, rec)
}

// MarshalRoster encodes the whole table as one JSON object keyed by player key
func (c *Codec) MarshalRoster(roster model.Roster) ([]byte, error) {
	out := make(map[string]Record, len(roster))
	for key, p := range roster {
		out[string(key)] = c.ToRecord(p)
	}
	return json.MarshalIndent(out, "", "  ")
}

// UnmarshalRoster decodes a table written by MarshalRoster
func (c *Codec) UnmarshalRoster(data []byte) (model.Roster, error) {
	var raw map[string]Record
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrStorageCorrupt, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: player table is not an object", model.ErrStorageCorrupt)
	}

	roster := make(model.Roster, len(raw))
	for key, rec := range raw {
		p, err := c.FromRecord(key, rec)
		if err != nil {
			return nil, err
		}
		roster[p.Key] = p
	}
	return roster, nil
}

// ToUnix converts a timestamp to unix seconds, 0 for the zero time
func ToUnix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

// FromUnix converts unix seconds to UTC, 0 to the zero time
func FromUnix(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}

func corrupt(key, reason string) error {
	return fmt.Errorf("%w: player %q: %s", model.ErrStorageCorrupt, key, reason)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
