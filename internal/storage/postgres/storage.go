package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mcoot/teamrank/internal/model"
	"github.com/mcoot/teamrank/internal/storage"
	"github.com/mcoot/teamrank/internal/storage/codec"
)

// writerLockID is the advisory lock key shared by every teamrank writer
const writerLockID int64 = 0x7465616d72616e6b

const createTableSQL = `
CREATE TABLE IF NOT EXISTS player_ratings (
	player_key     TEXT PRIMARY KEY,
	display_name   TEXT NOT NULL,
	strategy       TEXT NOT NULL,
	elo            INT NOT NULL DEFAULT 0,
	mu             DOUBLE PRECISION NOT NULL DEFAULT 0,
	sigma          DOUBLE PRECISION NOT NULL DEFAULT 0,
	matches_played INT NOT NULL DEFAULT 0,
	wins           INT NOT NULL DEFAULT 0,
	last_match_at  BIGINT NOT NULL DEFAULT 0
);
`

var columns = []string{
	"player_key", "display_name", "strategy", "elo", "mu", "sigma",
	"matches_played", "wins", "last_match_at",
}

// Storage keeps the player table in Postgres
type Storage struct {
	pool  *pgxpool.Pool
	codec *codec.Codec
}

// New connects to Postgres and ensures the player_ratings table exists
func New(ctx context.Context, databaseURL string, kind model.StrategyKind) (*Storage, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}
	if _, err := pool.Exec(ctx, createTableSQL); err != nil {
		pool.Close()
		return nil, err
	}
	return &Storage{pool: pool, codec: codec.New(kind)}, nil
}

// Ensure Storage implements the interfaces
var (
	_ storage.Storage = (*Storage)(nil)
	_ storage.Locker  = (*Storage)(nil)
)

func (s *Storage) LoadPlayers(ctx context.Context) (model.Roster, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT player_key, display_name, strategy, elo, mu, sigma,
		       matches_played, wins, last_match_at
		FROM player_ratings
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	roster := make(model.Roster)
	for rows.Next() {
		var (
			p         model.PlayerRecord
			key       string
			strategy  string
			lastMatch int64
		)
		if err := rows.Scan(&key, &p.DisplayName, &strategy, &p.Rating.Elo, &p.Rating.Mu, &p.Rating.Sigma,
			&p.MatchesPlayed, &p.Wins, &lastMatch); err != nil {
			return nil, err
		}
		if strategy != string(s.codec.Kind()) {
			return nil, fmt.Errorf("%w: player %q was rated with %q", model.ErrStorageCorrupt, key, strategy)
		}
		p.Key = model.PlayerKey(key)
		p.LastMatchAt = codec.FromUnix(lastMatch)
		if err := s.codec.Validate(p); err != nil {
			return nil, err
		}
		roster[p.Key] = p
	}
	return roster, rows.Err()
}

func (s *Storage) SavePlayers(ctx context.Context, roster model.Roster) error {
	kind := s.codec.Kind()
	values := make([][]any, 0, len(roster))
	for _, key := range roster.Keys() {
		p := roster[key]
		var elo int
		var mu, sigma float64
		if kind == model.StrategyElo {
			elo = p.Rating.Elo
		} else {
			mu, sigma = p.Rating.Mu, p.Rating.Sigma
		}
		values = append(values, []any{
			string(p.Key), p.DisplayName, string(kind), elo, mu, sigma,
			p.MatchesPlayed, p.Wins, codec.ToUnix(p.LastMatchAt),
		})
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM player_ratings`); err != nil {
		return err
	}
	if len(values) > 0 {
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"player_ratings"}, columns, pgx.CopyFromRows(values)); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// Lock holds a session advisory lock on a dedicated connection
func (s *Storage) Lock(ctx context.Context) (func() error, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := conn.Exec(ctx, `SELECT pg_advisory_lock($1)`, writerLockID); err != nil {
		conn.Release()
		return nil, err
	}

	return func() error {
		defer conn.Release()
		_, err := conn.Exec(context.Background(), `SELECT pg_advisory_unlock($1)`, writerLockID)
		return err
	}, nil
}

func (s *Storage) Close() error {
	s.pool.Close()
	return nil
}
