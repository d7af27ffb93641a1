package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/teamrank/internal/model"
)

// Runs against a real database when TEAMRANK_TEST_POSTGRES_URL is set
type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	if os.Getenv("TEAMRANK_TEST_POSTGRES_URL") == "" {
		t.Skip("TEAMRANK_TEST_POSTGRES_URL not set")
	}
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.ctx = context.Background()
	store, err := New(s.ctx, os.Getenv("TEAMRANK_TEST_POSTGRES_URL"), model.StrategyElo)
	s.Require().NoError(err)
	s.storage = store
	s.Require().NoError(s.storage.SavePlayers(s.ctx, model.Roster{}))
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
}

func (s *StorageSuite) TestSaveAndLoad() {
	alice := model.NewPlayerRecord("Alice", model.Rating{Elo: 1016})
	alice.MatchesPlayed = 1
	alice.Wins = 1
	alice.LastMatchAt = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	s.Require().NoError(s.storage.SavePlayers(s.ctx, model.Roster{alice.Key: alice}))

	loaded, err := s.storage.LoadPlayers(s.ctx)
	s.Require().NoError(err)
	s.Equal(model.Roster{alice.Key: alice}, loaded)
}

func (s *StorageSuite) TestLockIsReentrantAfterRelease() {
	unlock, err := s.storage.Lock(s.ctx)
	s.Require().NoError(err)
	s.Require().NoError(unlock())

	unlock, err = s.storage.Lock(s.ctx)
	s.Require().NoError(err)
	s.NoError(unlock())
}
