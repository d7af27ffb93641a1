package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/teamrank/internal/factory"
	"github.com/mcoot/teamrank/internal/model"
	"github.com/mcoot/teamrank/internal/testutil"
)

type ConfigSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigSuite))
}

func (s *ConfigSuite) writeFile(name, content string) string {
	path := filepath.Join(s.T().TempDir(), name)
	s.Require().NoError(os.WriteFile(path, []byte(content), 0o644))
	return path
}

func (s *ConfigSuite) TestDefaults() {
	cfg, err := Load(s.writeFile("teamrank.yaml", "{}\n"))
	s.Require().NoError(err)

	s.Equal("bayesian", cfg.Strategy)
	s.InDelta(32.0, cfg.Elo.K, 1e-9)
	s.Equal(1000, cfg.Elo.Initial)
	s.InDelta(25.0, cfg.Bayesian.Mu, 1e-9)
	s.InDelta(8.333, cfg.Bayesian.Sigma, 1e-9)
	s.Equal(20, cfg.Teams.MaxPlayers)
	s.Equal("mu", cfg.Teams.Metric)
	s.Equal(factory.StorageTypeFile, cfg.Storage.Type)
	s.Equal("data/players.json", cfg.Storage.File.Path)
	s.Equal(8080, cfg.Server.Port)
	s.Equal(10*time.Second, cfg.Server.ShutdownTimeout)
	s.Equal("info", cfg.Log.Level)
	s.False(cfg.Discord.Enabled())
}

func (s *ConfigSuite) TestFileValues() {
	path := s.writeFile("teamrank.yaml", `
strategy: elo
elo:
  k: 24
  initial: 1200
teams:
  max_players: 12
  metric: conservative
storage:
  type: sqlite
  sqlite:
    path: /tmp/ratings.db
server:
  port: 9090
`)
	cfg, err := Load(path)
	s.Require().NoError(err)

	s.Equal("elo", cfg.Strategy)
	s.InDelta(24.0, cfg.Elo.K, 1e-9)
	s.Equal(1200, cfg.Elo.Initial)
	s.Equal(12, cfg.Teams.MaxPlayers)
	s.Equal("conservative", cfg.Teams.Metric)
	s.Equal("sqlite", cfg.Storage.Type)
	s.Equal("/tmp/ratings.db", cfg.Storage.SQLite.Path)
	s.Equal(":9090", cfg.Addr())
}

func (s *ConfigSuite) TestEnvironmentOverridesFile() {
	path := s.writeFile("teamrank.yaml", "strategy: elo\nserver:\n  port: 9090\n")
	s.T().Setenv("TEAMRANK_STRATEGY", "bayesian")
	s.T().Setenv("TEAMRANK_SERVER_PORT", "7070")
	s.T().Setenv("TEAMRANK_STORAGE_TYPE", "memory")
	s.T().Setenv("TEAMRANK_DISCORD_TOKEN", "secret")

	cfg, err := Load(path)
	s.Require().NoError(err)

	s.Equal("bayesian", cfg.Strategy)
	s.Equal(7070, cfg.Server.Port)
	s.Equal("memory", cfg.Storage.Type)
	s.True(cfg.Discord.Enabled())
}

func (s *ConfigSuite) TestInvalidValues() {
	cases := map[string]string{
		"strategy": "strategy: glicko\n",
		"metric":   "teams:\n  metric: median\n",
		"players":  "teams:\n  max_players: 1\n",
		"port":     "server:\n  port: 0\n",
	}
	for name, content := range cases {
		s.Run(name, func() {
			_, err := Load(s.writeFile("teamrank.yaml", content))
			s.ErrorIs(err, model.ErrValidation)
		})
	}
}

func (s *ConfigSuite) TestMissingExplicitFile() {
	_, err := Load(filepath.Join(s.T().TempDir(), "nope.yaml"))
	s.Error(err)
}

func (s *ConfigSuite) TestFactoryConfig() {
	path := s.writeFile("teamrank.yaml", `
strategy: elo
teams:
  metric: conservative
storage:
  type: REDIS
  redis:
    url: redis://cache:6379/2
`)
	cfg, err := Load(path)
	s.Require().NoError(err)

	fc := cfg.Factory(testutil.NopLogger(), nil)
	s.Equal(model.StrategyElo, fc.Rating.Kind)
	s.Equal(model.MetricConservative, fc.DefaultMetric)
	s.Equal(factory.StorageTypeRedis, fc.StorageType)
	s.Require().NotNil(fc.RedisConfig)
	s.Equal("redis://cache:6379/2", fc.RedisConfig.URL)
	s.Equal("teamrank", fc.RedisConfig.KeyPrefix)
}
