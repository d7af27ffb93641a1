package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mcoot/teamrank/internal/model"
	"github.com/mcoot/teamrank/internal/storage"
	"github.com/mcoot/teamrank/internal/storage/codec"
)

// Config holds SQLite settings
type Config struct {
	// Path is the database file, or ":memory:"
	Path string
}

// DefaultConfig returns sensible defaults for the SQLite backend
func DefaultConfig() Config {
	return Config{Path: "data/teamrank.db"}
}

// playerRow is the players table. Strategy records which model wrote the row.
type playerRow struct {
	Key           string `gorm:"primaryKey"`
	DisplayName   string `gorm:"not null"`
	Strategy      string `gorm:"not null"`
	Elo           int
	Mu            float64
	Sigma         float64
	MatchesPlayed int
	Wins          int
	LastMatchAt   int64
}

func (playerRow) TableName() string {
	return "players"
}

// Storage keeps the player table in SQLite through gorm
type Storage struct {
	db    *gorm.DB
	codec *codec.Codec
}

// New opens the database and migrates the schema
func New(cfg Config, kind model.StrategyKind) (*Storage, error) {
	if cfg.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.AutoMigrate(&playerRow{}); err != nil {
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}

	return &Storage{db: db, codec: codec.New(kind)}, nil
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) LoadPlayers(ctx context.Context) (model.Roster, error) {
	var rows []playerRow
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}

	roster := make(model.Roster, len(rows))
	for _, row := range rows {
		if row.Strategy != string(s.codec.Kind()) {
			return nil, fmt.Errorf("%w: player %q was rated with %q", model.ErrStorageCorrupt, row.Key, row.Strategy)
		}
		p := model.PlayerRecord{
			Key:           model.PlayerKey(row.Key),
			DisplayName:   row.DisplayName,
			Rating:        model.Rating{Elo: row.Elo, Mu: row.Mu, Sigma: row.Sigma},
			MatchesPlayed: row.MatchesPlayed,
			Wins:          row.Wins,
			LastMatchAt:   codec.FromUnix(row.LastMatchAt),
		}
		if err := s.codec.Validate(p); err != nil {
			return nil, err
		}
		roster[p.Key] = p
	}
	return roster, nil
}

func (s *Storage) SavePlayers(ctx context.Context, roster model.Roster) error {
	rows := make([]playerRow, 0, len(roster))
	for _, key := range roster.Keys() {
		p := roster[key]
		row := playerRow{
			Key:           string(p.Key),
			DisplayName:   p.DisplayName,
			Strategy:      string(s.codec.Kind()),
			MatchesPlayed: p.MatchesPlayed,
			Wins:          p.Wins,
			LastMatchAt:   codec.ToUnix(p.LastMatchAt),
		}
		if s.codec.Kind() == model.StrategyElo {
			row.Elo = p.Rating.Elo
		} else {
			row.Mu, row.Sigma = p.Rating.Mu, p.Rating.Sigma
		}
		rows = append(rows, row)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&playerRow{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(rows, 100).Error
	})
}

func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
