package storage

import (
	"context"

	"github.com/mcoot/teamrank/internal/model"
)

// Storage persists the player table as a whole.
//
// LoadPlayers returns an empty roster when nothing has been saved yet and an
// error wrapping model.ErrStorageCorrupt when saved data cannot be decoded.
// SavePlayers replaces the saved table atomically.
type Storage interface {
	LoadPlayers(ctx context.Context) (model.Roster, error)
	SavePlayers(ctx context.Context, roster model.Roster) error
	Close() error
}

// Locker is implemented by backends that can serialise writers across
// processes. The returned function releases the lock.
type Locker interface {
	Lock(ctx context.Context) (unlock func() error, err error)
}
