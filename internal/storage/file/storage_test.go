package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/teamrank/internal/model"
)

type StorageSuite struct {
	suite.Suite
	dir     string
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.dir = s.T().TempDir()
	s.ctx = context.Background()

	store, err := New(Config{Path: filepath.Join(s.dir, "nested", "players.json")}, model.StrategyBayesian)
	s.Require().NoError(err)
	s.storage = store
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
}

func (s *StorageSuite) TestMissingFileIsEmptyStore() {
	roster, err := s.storage.LoadPlayers(s.ctx)
	s.Require().NoError(err)
	s.Empty(roster)
}

func (s *StorageSuite) TestSaveAndLoad() {
	alice := model.NewPlayerRecord("Alice", model.Rating{Mu: 25, Sigma: 8.333})
	alice.MatchesPlayed = 3
	alice.Wins = 2
	alice.LastMatchAt = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	roster := model.Roster{alice.Key: alice}

	s.Require().NoError(s.storage.SavePlayers(s.ctx, roster))

	loaded, err := s.storage.LoadPlayers(s.ctx)
	s.Require().NoError(err)
	s.Equal(roster, loaded)

	entries, err := os.ReadDir(filepath.Dir(s.storage.Path()))
	s.Require().NoError(err)
	for _, e := range entries {
		s.Contains([]string{"players.json", "players.json.lock"}, e.Name())
	}
}

func (s *StorageSuite) TestCorruptFileFailsLoudly() {
	s.Require().NoError(os.WriteFile(s.storage.Path(), []byte(`{"alice": {"mu": "high"`), 0o644))

	_, err := s.storage.LoadPlayers(s.ctx)
	s.ErrorIs(err, model.ErrStorageCorrupt)
}

func (s *StorageSuite) TestEmptyFileIsCorrupt() {
	s.Require().NoError(os.WriteFile(s.storage.Path(), nil, 0o644))

	_, err := s.storage.LoadPlayers(s.ctx)
	s.ErrorIs(err, model.ErrStorageCorrupt)
}

func (s *StorageSuite) TestLockExcludesOtherWriters() {
	other, err := New(Config{Path: s.storage.Path(), LockRetry: 5 * time.Millisecond}, model.StrategyBayesian)
	s.Require().NoError(err)
	defer other.Close()

	unlock, err := s.storage.Lock(s.ctx)
	s.Require().NoError(err)

	ctx, cancel := context.WithTimeout(s.ctx, 50*time.Millisecond)
	defer cancel()
	_, err = other.Lock(ctx)
	s.Error(err)

	s.Require().NoError(unlock())

	unlockOther, err := other.Lock(s.ctx)
	s.Require().NoError(err)
	s.NoError(unlockOther())
}

func (s *StorageSuite) TestRequiresPath() {
	_, err := New(Config{}, model.StrategyElo)
	s.Error(err)
}
