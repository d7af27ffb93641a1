package roster

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mcoot/teamrank/internal/metrics"
	"github.com/mcoot/teamrank/internal/model"
	"github.com/mcoot/teamrank/internal/rating"
	"github.com/mcoot/teamrank/internal/storage"
)

// Service owns the player table. Every mutation is a full
// load, modify, save cycle run under a single lock.
type Service struct {
	storage  storage.Storage
	strategy rating.Strategy
	metrics  *metrics.Metrics
	logger   *slog.Logger

	// writer admits one load, modify, save cycle at a time
	writer chan struct{}
}

// RegisterResult lists the requested players in input order
type RegisterResult struct {
	Players []model.PlayerRecord
	Created []model.PlayerKey
}

// New creates a new roster Service
func New(storage storage.Storage, strategy rating.Strategy, metrics *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		storage:  storage,
		strategy: strategy,
		metrics:  metrics,
		logger:   logger,
		writer:   make(chan struct{}, 1),
	}
}

// Strategy returns the rating strategy new players are initialised with
func (s *Service) Strategy() rating.Strategy {
	return s.strategy
}

// Update loads the latest snapshot, applies fn and saves the result.
// If fn returns an error nothing is saved.
func (s *Service) Update(ctx context.Context, fn func(roster model.Roster) error) error {
	return s.locked(ctx, func() error {
		roster, err := s.storage.LoadPlayers(ctx)
		if err != nil {
			s.metrics.StorageFailed("load")
			return err
		}
		if err := fn(roster); err != nil {
			return err
		}
		return s.save(ctx, roster)
	})
}

// Save replaces the persisted snapshot with roster
func (s *Service) Save(ctx context.Context, roster model.Roster) error {
	return s.locked(ctx, func() error {
		return s.save(ctx, roster)
	})
}

// LoadAll returns the full current snapshot
func (s *Service) LoadAll(ctx context.Context) (model.Roster, error) {
	roster, err := s.storage.LoadPlayers(ctx)
	if err != nil {
		s.metrics.StorageFailed("load")
		return nil, err
	}
	return roster, nil
}

// Get returns a single player by name or key
func (s *Service) Get(ctx context.Context, name string) (model.PlayerRecord, error) {
	roster, err := s.LoadAll(ctx)
	if err != nil {
		return model.PlayerRecord{}, err
	}
	p, ok := roster[model.NormalizeKey(name)]
	if !ok {
		return model.PlayerRecord{}, fmt.Errorf("%w: %s", model.ErrPlayerNotFound, model.NormalizeKey(name))
	}
	return p, nil
}

// GetOrCreate returns the player for name, registering it first if needed
func (s *Service) GetOrCreate(ctx context.Context, name string) (model.PlayerRecord, error) {
	result, err := s.Register(ctx, []string{name})
	if err != nil {
		return model.PlayerRecord{}, err
	}
	return result.Players[0], nil
}

// Register creates every unknown player in names. Existing players are left
// untouched, including their display name.
func (s *Service) Register(ctx context.Context, names []string) (*RegisterResult, error) {
	if len(names) == 0 {
		return nil, model.ErrInvalidPlayerName
	}
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			s.metrics.ValidationFailed("register")
			return nil, model.ErrInvalidPlayerName
		}
	}

	result := &RegisterResult{}
	err := s.Update(ctx, func(roster model.Roster) error {
		seen := make(map[model.PlayerKey]bool, len(names))
		for _, name := range names {
			p, created, err := s.Ensure(roster, name)
			if err != nil {
				return err
			}
			if seen[p.Key] {
				continue
			}
			seen[p.Key] = true
			result.Players = append(result.Players, p)
			if created {
				result.Created = append(result.Created, p.Key)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Registered(result.Created)
	return result, nil
}

// Ensure adds name to roster with the strategy's initial rating if it is not
// already present. It does not persist anything.
func (s *Service) Ensure(roster model.Roster, name string) (model.PlayerRecord, bool, error) {
	key := model.NormalizeKey(name)
	if key == "" {
		return model.PlayerRecord{}, false, model.ErrInvalidPlayerName
	}
	if p, ok := roster[key]; ok {
		return p, false, nil
	}
	p := model.NewPlayerRecord(name, s.strategy.Initial())
	roster[key] = p
	return p, true, nil
}

// Registered logs and counts players created inside an Update
func (s *Service) Registered(keys []model.PlayerKey) {
	if len(keys) == 0 {
		return
	}
	s.metrics.PlayersRegistered(len(keys))
	for _, key := range keys {
		s.logger.Info("player registered", slog.String("player", string(key)))
	}
}

func (s *Service) locked(ctx context.Context, fn func() error) error {
	select {
	case s.writer <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-s.writer }()

	if locker, ok := s.storage.(storage.Locker); ok {
		unlock, err := locker.Lock(ctx)
		if err != nil {
			return err
		}
		defer func() {
			if err := unlock(); err != nil {
				s.logger.Warn("failed to release storage lock", slog.String("error", err.Error()))
			}
		}()
	}
	return fn()
}

func (s *Service) save(ctx context.Context, roster model.Roster) error {
	if err := s.storage.SavePlayers(ctx, roster); err != nil {
		s.metrics.StorageFailed("save")
		s.logger.Error("failed to save players",
			slog.Int("player_count", len(roster)),
			slog.String("error", err.Error()),
		)
		return err
	}
	s.metrics.PlayersStored(len(roster))
	return nil
}
