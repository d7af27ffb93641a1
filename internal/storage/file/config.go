package file

import "time"

// Config holds snapshot file settings
type Config struct {
	// Path is the JSON snapshot file. Its directory is created if missing.
	Path string

	// LockRetry is how often a blocked writer retries the lock file
	LockRetry time.Duration
}

// DefaultConfig returns sensible defaults for the file backend
func DefaultConfig() Config {
	return Config{
		Path:      "data/players.json",
		LockRetry: 50 * time.Millisecond,
	}
}
