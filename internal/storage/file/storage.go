package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/natefinch/atomic"

	"github.com/mcoot/teamrank/internal/model"
	"github.com/mcoot/teamrank/internal/storage"
	"github.com/mcoot/teamrank/internal/storage/codec"
)

// Storage keeps the player table in a single JSON file.
// Saves write a temporary file and rename it over the old snapshot.
type Storage struct {
	cfg   Config
	codec *codec.Codec
	lock  *flock.Flock
}

// New creates a file storage for the given strategy
func New(cfg Config, kind model.StrategyKind) (*Storage, error) {
	if cfg.Path == "" {
		return nil, errors.New("file storage path is empty")
	}
	if cfg.LockRetry <= 0 {
		cfg.LockRetry = DefaultConfig().LockRetry
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}

	return &Storage{
		cfg:   cfg,
		codec: codec.New(kind),
		lock:  flock.New(cfg.Path + ".lock"),
	}, nil
}

// Ensure Storage implements the interfaces
var (
	_ storage.Storage = (*Storage)(nil)
	_ storage.Locker  = (*Storage)(nil)
)

// Path returns the snapshot file location
func (s *Storage) Path() string {
	return s.cfg.Path
}

func (s *Storage) LoadPlayers(ctx context.Context) (model.Roster, error) {
	data, err := os.ReadFile(s.cfg.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return make(model.Roster), nil
		}
		return nil, fmt.Errorf("read %s: %w", s.cfg.Path, err)
	}

	roster, err := s.codec.UnmarshalRoster(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.cfg.Path, err)
	}
	return roster, nil
}

func (s *Storage) SavePlayers(ctx context.Context, roster model.Roster) error {
	data, err := s.codec.MarshalRoster(roster)
	if err != nil {
		return err
	}
	if err := atomic.WriteFile(s.cfg.Path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write %s: %w", s.cfg.Path, err)
	}
	return nil
}

// Lock takes an exclusive lock on a sibling .lock file, waiting until ctx is done
func (s *Storage) Lock(ctx context.Context) (func() error, error) {
	locked, err := s.lock.TryLockContext(ctx, s.cfg.LockRetry)
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", s.lock.Path(), err)
	}
	if !locked {
		return nil, fmt.Errorf("lock %s: not acquired", s.lock.Path())
	}
	return s.lock.Unlock, nil
}

func (s *Storage) Close() error {
	return s.lock.Close()
}
