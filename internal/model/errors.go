package model

import (
	"errors"
	"fmt"
)

// Common errors used across the application
var (
	// ErrValidation is wrapped by every input error. Nothing is mutated when it is returned.
	ErrValidation = errors.New("validation error")

	// ErrStorageCorrupt means persisted data exists but could not be decoded
	ErrStorageCorrupt = errors.New("storage corrupt")

	// Player errors
	ErrPlayerNotFound    = errors.New("player not found")
	ErrInvalidPlayerName = fmt.Errorf("%w: player name must not be empty", ErrValidation)

	// Match errors
	ErrInvalidWinner     = fmt.Errorf("%w: winner must be A or B", ErrValidation)
	ErrEmptyTeam         = fmt.Errorf("%w: each team needs at least one player", ErrValidation)
	ErrDuplicatePlayer   = fmt.Errorf("%w: player listed more than once", ErrValidation)
	ErrPlayerOnBothTeams = fmt.Errorf("%w: player is on both teams", ErrValidation)

	// Balancing errors
	ErrRosterTooSmall = fmt.Errorf("%w: at least two players are needed", ErrValidation)
	ErrOddRoster      = fmt.Errorf("%w: an even number of players is needed", ErrValidation)
	ErrRosterTooLarge = fmt.Errorf("%w: too many players to balance", ErrValidation)

	// Configuration errors
	ErrInvalidStrategy = fmt.Errorf("%w: unknown rating strategy", ErrValidation)
	ErrInvalidMetric   = fmt.Errorf("%w: unknown fairness metric", ErrValidation)
)
