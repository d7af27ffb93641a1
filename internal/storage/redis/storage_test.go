package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/teamrank/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.LockRetry = 5 * time.Millisecond

	s.storage = NewWithClient(client, cfg, model.StrategyElo)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func player(name string, elo int) model.PlayerRecord {
	return model.NewPlayerRecord(name, model.Rating{Elo: elo})
}

func (s *StorageSuite) TestEmptyOnFirstLoad() {
	roster, err := s.storage.LoadPlayers(s.ctx)
	s.Require().NoError(err)
	s.Empty(roster)
}

func (s *StorageSuite) TestSaveAndLoad() {
	alice := player("Alice", 1016)
	alice.MatchesPlayed = 1
	alice.Wins = 1
	alice.LastMatchAt = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	bob := player("bob", 984)

	roster := model.Roster{alice.Key: alice, bob.Key: bob}
	s.Require().NoError(s.storage.SavePlayers(s.ctx, roster))

	loaded, err := s.storage.LoadPlayers(s.ctx)
	s.Require().NoError(err)
	s.Equal(roster, loaded)

	raw := s.mini.HGet("teamrank:players", "alice")
	s.JSONEq(`{"display_name":"Alice","rating":1016,"matches_played":1,"wins":1,"last_match_at":1704110400}`, raw)
}

func (s *StorageSuite) TestSaveReplacesWholeTable() {
	alice, bob := player("Alice", 1000), player("Bob", 1000)
	s.Require().NoError(s.storage.SavePlayers(s.ctx, model.Roster{alice.Key: alice, bob.Key: bob}))
	s.Require().NoError(s.storage.SavePlayers(s.ctx, model.Roster{alice.Key: alice}))

	loaded, err := s.storage.LoadPlayers(s.ctx)
	s.Require().NoError(err)
	s.Len(loaded, 1)

	s.Require().NoError(s.storage.SavePlayers(s.ctx, model.Roster{}))
	s.False(s.mini.Exists("teamrank:players"))
}

func (s *StorageSuite) TestCorruptRecord() {
	s.mini.HSet("teamrank:players", "alice", `{"display_name":`)

	_, err := s.storage.LoadPlayers(s.ctx)
	s.ErrorIs(err, model.ErrStorageCorrupt)
}

func (s *StorageSuite) TestLock() {
	unlock, err := s.storage.Lock(s.ctx)
	s.Require().NoError(err)
	s.True(s.mini.Exists("teamrank:lock:players"))

	ctx, cancel := context.WithTimeout(s.ctx, 30*time.Millisecond)
	defer cancel()
	_, err = s.storage.Lock(ctx)
	s.ErrorIs(err, context.DeadlineExceeded)

	s.Require().NoError(unlock())
	s.False(s.mini.Exists("teamrank:lock:players"))
	s.ErrorIs(unlock(), ErrLockNotHeld)
}

func (s *StorageSuite) TestExpiredLockCanBeRetaken() {
	_, err := s.storage.Lock(s.ctx)
	s.Require().NoError(err)

	s.mini.FastForward(DefaultConfig().LockTTL + time.Second)

	unlock, err := s.storage.Lock(s.ctx)
	s.Require().NoError(err)
	s.NoError(unlock())
}
