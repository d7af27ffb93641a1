package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/mcoot/teamrank/internal/model"
	"github.com/mcoot/teamrank/internal/storage"
	"github.com/mcoot/teamrank/internal/storage/codec"
)

// releaseLock deletes the lock only if it still holds our token
var releaseLock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// ErrLockNotHeld is returned when releasing a lock that expired or was taken over
var ErrLockNotHeld = errors.New("redis writer lock not held")

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
	codec  *codec.Codec
}

// New creates a new Redis storage instance
func New(cfg Config, kind model.StrategyKind) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return NewWithClient(client, cfg, kind), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config, kind model.StrategyKind) *Storage {
	defaults := DefaultConfig()
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = defaults.KeyPrefix
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = defaults.LockTTL
	}
	if cfg.LockRetry <= 0 {
		cfg.LockRetry = defaults.LockRetry
	}
	return &Storage{
		client: client,
		cfg:    cfg,
		codec:  codec.New(kind),
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interfaces
var (
	_ storage.Storage = (*Storage)(nil)
	_ storage.Locker  = (*Storage)(nil)
)

func (s *Storage) LoadPlayers(ctx context.Context) (model.Roster, error) {
	fields, err := s.client.HGetAll(ctx, playersKey(s.cfg.KeyPrefix)).Result()
	if err != nil {
		return nil, err
	}

	// A missing hash reads as empty
	roster := make(model.Roster, len(fields))
	for key, data := range fields {
		p, err := s.codec.UnmarshalRecord(key, []byte(data))
		if err != nil {
			return nil, err
		}
		roster[p.Key] = p
	}
	return roster, nil
}

func (s *Storage) SavePlayers(ctx context.Context, roster model.Roster) error {
	values := make(map[string]interface{}, len(roster))
	for key, p := range roster {
		data, err := s.codec.MarshalRecord(p)
		if err != nil {
			return err
		}
		values[string(key)] = data
	}

	// MULTI/EXEC so readers never observe a half-written table
	key := playersKey(s.cfg.KeyPrefix)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(values) > 0 {
			pipe.HSet(ctx, key, values)
		}
		return nil
	})
	return err
}

// Lock takes the writer lock with SET NX, retrying until ctx is done.
// The lock expires after LockTTL if the holder dies.
func (s *Storage) Lock(ctx context.Context) (func() error, error) {
	key := writerLockKey(s.cfg.KeyPrefix)
	token := uuid.NewString()

	ticker := time.NewTicker(s.cfg.LockRetry)
	defer ticker.Stop()

	for {
		ok, err := s.client.SetNX(ctx, key, token, s.cfg.LockTTL).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("acquire redis writer lock: %w", ctx.Err())
		case <-ticker.C:
		}
	}

	return func() error {
		released, err := releaseLock.Run(context.Background(), s.client, []string{key}, token).Int()
		if err != nil {
			return err
		}
		if released == 0 {
			return ErrLockNotHeld
		}
		return nil
	}, nil
}
