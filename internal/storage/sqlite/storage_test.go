package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/teamrank/internal/model"
)

type StorageSuite struct {
	suite.Suite
	path    string
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.path = filepath.Join(s.T().TempDir(), "teamrank.db")
	store, err := New(Config{Path: s.path}, model.StrategyBayesian)
	s.Require().NoError(err)
	s.storage = store
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
}

func (s *StorageSuite) TestEmptyOnFirstLoad() {
	roster, err := s.storage.LoadPlayers(s.ctx)
	s.Require().NoError(err)
	s.Empty(roster)
}

func (s *StorageSuite) TestSaveAndLoad() {
	alice := model.NewPlayerRecord("Alice", model.Rating{Mu: 27.5, Sigma: 7.25})
	alice.MatchesPlayed = 2
	alice.Wins = 1
	alice.LastMatchAt = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	bob := model.NewPlayerRecord("Bob", model.Rating{Mu: 25, Sigma: 8.333})

	s.Require().NoError(s.storage.SavePlayers(s.ctx, model.Roster{alice.Key: alice, bob.Key: bob}))
	s.Require().NoError(s.storage.SavePlayers(s.ctx, model.Roster{alice.Key: alice}))

	loaded, err := s.storage.LoadPlayers(s.ctx)
	s.Require().NoError(err)
	s.Equal(model.Roster{alice.Key: alice}, loaded)
}

func (s *StorageSuite) TestStrategyMismatchIsCorrupt() {
	alice := model.NewPlayerRecord("Alice", model.Rating{Mu: 25, Sigma: 8.333})
	s.Require().NoError(s.storage.SavePlayers(s.ctx, model.Roster{alice.Key: alice}))
	s.Require().NoError(s.storage.Close())

	elo, err := New(Config{Path: s.path}, model.StrategyElo)
	s.Require().NoError(err)
	defer elo.Close()

	_, err = elo.LoadPlayers(s.ctx)
	s.ErrorIs(err, model.ErrStorageCorrupt)
}

func (s *StorageSuite) TestInvalidRowIsCorrupt() {
	err := s.storage.db.Create(&playerRow{Key: "alice", DisplayName: "Alice", Strategy: "bayesian", Mu: 25, Sigma: 8, MatchesPlayed: 1, Wins: 3}).Error
	s.Require().NoError(err)

	_, err = s.storage.LoadPlayers(s.ctx)
	s.ErrorIs(err, model.ErrStorageCorrupt)
}
