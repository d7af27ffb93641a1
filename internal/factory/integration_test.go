package factory

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/teamrank/internal/model"
	"github.com/mcoot/teamrank/internal/rating"
	"github.com/mcoot/teamrank/internal/services/leaderboard"
	filestorage "github.com/mcoot/teamrank/internal/storage/file"
	"github.com/mcoot/teamrank/internal/testutil"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp(model.StrategyBayesian)
	s.ctx = context.Background()
}

// Test: register, play, balance and rank through the wired services
func (s *IntegrationSuite) TestSeasonFlow() {
	// Step 1: Register the group
	result, err := s.app.RosterService.Register(s.ctx, []string{"Alice", "Bob", "Carol", "Dave"})
	s.Require().NoError(err)
	s.Len(result.Created, 4)

	// Step 2: Alice and Bob win twice
	for i := 0; i < 2; i++ {
		_, err := s.app.MatchService.Record(s.ctx, []string{"alice", "bob"}, []string{"carol", "dave"}, "A")
		s.Require().NoError(err)
	}

	// Step 3: Balancing pairs a winner with a loser
	teams, err := s.app.TeamsService.Balance(s.ctx, []string{"alice", "bob", "carol", "dave"}, "")
	s.Require().NoError(err)
	s.Contains(teams.Split.TeamA, model.PlayerKey("alice"))
	s.NotContains(teams.Split.TeamA, model.PlayerKey("bob"))

	// Step 4: Leaderboard puts the winners first
	standings, err := s.app.LeaderboardService.Top(s.ctx, leaderboard.Query{})
	s.Require().NoError(err)
	s.Require().Len(standings, 4)
	top := []model.PlayerKey{standings[0].Player.Key, standings[1].Player.Key}
	s.ElementsMatch([]model.PlayerKey{"alice", "bob"}, top)
	s.Equal(2, standings[0].Player.Wins)
}

func (s *IntegrationSuite) TestFileStoragePersistsAcrossRestarts() {
	path := filepath.Join(s.T().TempDir(), "players.json")
	cfg := Config{
		Rating:      rating.Config{Kind: model.StrategyElo, EloK: 32, InitialElo: 1000},
		Logger:      testutil.NopLogger(),
		StorageType: StorageTypeFile,
		FileConfig:  filestorage.Config{Path: path},
	}

	app, err := New(s.ctx, cfg)
	s.Require().NoError(err)
	_, err = app.MatchService.Record(s.ctx, []string{"Alice"}, []string{"Bob"}, "A")
	s.Require().NoError(err)
	s.Require().NoError(app.Close())

	restarted, err := New(s.ctx, cfg)
	s.Require().NoError(err)
	defer restarted.Close()

	alice, err := restarted.RosterService.Get(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(1016, alice.Rating.Elo)
	s.Equal("Alice", alice.DisplayName)
}

func (s *IntegrationSuite) TestInvalidConfig() {
	_, err := New(s.ctx, Config{StorageType: "floppy"})
	s.Error(err)

	_, err = New(s.ctx, Config{StorageType: StorageTypeRedis})
	s.Error(err)

	_, err = New(s.ctx, Config{Rating: rating.Config{Kind: "glicko"}})
	s.ErrorIs(err, model.ErrInvalidStrategy)
}
