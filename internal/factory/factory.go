package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/teamrank/internal/balance"
	"github.com/mcoot/teamrank/internal/dependencies/clock"
	"github.com/mcoot/teamrank/internal/dependencies/ids"
	"github.com/mcoot/teamrank/internal/metrics"
	"github.com/mcoot/teamrank/internal/model"
	"github.com/mcoot/teamrank/internal/rating"
	"github.com/mcoot/teamrank/internal/services/leaderboard"
	"github.com/mcoot/teamrank/internal/services/match"
	"github.com/mcoot/teamrank/internal/services/roster"
	"github.com/mcoot/teamrank/internal/services/teams"
	"github.com/mcoot/teamrank/internal/storage"
	filestorage "github.com/mcoot/teamrank/internal/storage/file"
	"github.com/mcoot/teamrank/internal/storage/memory"
	"github.com/mcoot/teamrank/internal/storage/postgres"
	redisstorage "github.com/mcoot/teamrank/internal/storage/redis"
	"github.com/mcoot/teamrank/internal/storage/sqlite"
)

// Storage type constants
const (
	StorageTypeMemory   = "memory"
	StorageTypeFile     = "file"
	StorageTypeRedis    = "redis"
	StorageTypeSQLite   = "sqlite"
	StorageTypePostgres = "postgres"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock   clock.Clock
	IDs     ids.Generator
	Metrics *metrics.Metrics

	// Core
	Strategy rating.Strategy
	Balancer *balance.Balancer

	// Services
	RosterService      *roster.Service
	MatchService       *match.Service
	TeamsService       *teams.Service
	LeaderboardService *leaderboard.Service
}

// Config holds configuration for the application factory
type Config struct {
	// Rating selects the strategy and its constants
	// If zero value, defaults to rating.DefaultConfig()
	Rating rating.Config
	// MaxTeamPlayers bounds the team balancer (optional)
	MaxTeamPlayers int
	// DefaultMetric is used for team requests that name no metric (optional)
	DefaultMetric model.Metric
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// Metrics collects Prometheus metrics (optional)
	Metrics *metrics.Metrics
	// StorageType selects the storage backend
	// If empty, defaults to "memory"
	StorageType string
	// FileConfig holds snapshot file settings (used if StorageType is "file")
	FileConfig filestorage.Config
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLiteConfig holds SQLite settings (used if StorageType is "sqlite")
	SQLiteConfig sqlite.Config
	// PostgresURL is the connection string (required if StorageType is "postgres")
	PostgresURL string
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	ratingCfg := cfg.Rating
	if ratingCfg.Kind == "" {
		ratingCfg = rating.DefaultConfig()
	}
	strategy, err := rating.New(ratingCfg)
	if err != nil {
		return nil, err
	}

	store, err := newStorage(ctx, cfg, strategy.Kind())
	if err != nil {
		return nil, err
	}

	app := newWithDependencies(
		store, strategy, balance.New(cfg.MaxTeamPlayers), cfg.DefaultMetric,
		clock.New(), ids.New(), cfg.Metrics, logger,
	)

	logger.Info("application wired",
		slog.String("strategy", string(strategy.Kind())),
		slog.String("storage", storageTypeOrDefault(cfg.StorageType)),
		slog.Int("max_team_players", app.Balancer.MaxPlayers()),
	)
	return app, nil
}

// Close releases the storage backend
func (a *App) Close() error {
	return a.Storage.Close()
}

func storageTypeOrDefault(t string) string {
	if t == "" {
		return StorageTypeMemory
	}
	return t
}

func newStorage(ctx context.Context, cfg Config, kind model.StrategyKind) (storage.Storage, error) {
	switch storageTypeOrDefault(cfg.StorageType) {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeFile:
		fileCfg := cfg.FileConfig
		if fileCfg.Path == "" {
			fileCfg = filestorage.DefaultConfig()
		}
		return filestorage.New(fileCfg, kind)
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		return redisstorage.New(*cfg.RedisConfig, kind)
	case StorageTypeSQLite:
		sqliteCfg := cfg.SQLiteConfig
		if sqliteCfg.Path == "" {
			sqliteCfg = sqlite.DefaultConfig()
		}
		return sqlite.New(sqliteCfg, kind)
	case StorageTypePostgres:
		if cfg.PostgresURL == "" {
			return nil, errors.New("PostgresURL required when StorageType is postgres")
		}
		return postgres.New(ctx, cfg.PostgresURL, kind)
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be one of memory, file, redis, sqlite, postgres", cfg.StorageType)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	strategy rating.Strategy,
	balancer *balance.Balancer,
	defaultMetric model.Metric,
	clk clock.Clock,
	idGen ids.Generator,
	m *metrics.Metrics,
	logger *slog.Logger,
) *App {
	rosterService := roster.New(store, strategy, m, logger)
	matchService := match.New(rosterService, clk, idGen, m, logger)
	teamsService := teams.New(rosterService, balancer, defaultMetric, clk, m, logger)
	leaderboardService := leaderboard.New(rosterService, clk)

	return &App{
		Storage:            store,
		Clock:              clk,
		IDs:                idGen,
		Metrics:            m,
		Strategy:           strategy,
		Balancer:           balancer,
		RosterService:      rosterService,
		MatchService:       matchService,
		TeamsService:       teamsService,
		LeaderboardService: leaderboardService,
	}
}
