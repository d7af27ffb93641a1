package memory

import (
	"context"
	"sync"

	"github.com/mcoot/teamrank/internal/model"
	"github.com/mcoot/teamrank/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	players model.Roster
	saves   int
	failErr error
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players: make(model.Roster),
	}
}

// NewWithRoster creates an in-memory storage seeded with a roster
func NewWithRoster(roster model.Roster) *Storage {
	return &Storage{
		players: roster.Clone(),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) LoadPlayers(ctx context.Context) (model.Roster, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.players.Clone(), nil
}

func (s *Storage) SavePlayers(ctx context.Context, roster model.Roster) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return s.failErr
	}
	s.players = roster.Clone()
	s.saves++
	return nil
}

// Saves returns how many times the roster has been saved
func (s *Storage) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

// FailSaves makes every following save return err; nil restores normal saves
func (s *Storage) FailSaves(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failErr = err
}

func (s *Storage) Close() error {
	return nil
}
