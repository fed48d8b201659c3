package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/piously-console/pkg/game"
)

// Snapshot is what survives a restart: enough to rejoin the game.
type Snapshot struct {
	EnabledFactions map[game.Faction]bool `json:"enabled_factions"`
	GameID          string                `json:"game_id"`
}

// Store persists at most one snapshot per client.
type Store interface {
	// Load returns nil, nil when nothing is saved.
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, s Snapshot) error
	Clear(ctx context.Context) error
	Close() error
}

// KeyPrefix namespaces snapshot keys in Redis.
const KeyPrefix = "piously:session:"

// RedisStore keeps the snapshot in Redis under a per-client key.
type RedisStore struct {
	rdb      *redis.Client
	clientID uuid.UUID
	logger   *slog.Logger
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore connects to redisURL and checks the connection.
func NewRedisStore(ctx context.Context, redisURL string, clientID uuid.UUID, logger *slog.Logger) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Connected to Redis for session snapshots", "client_id", clientID)
	return &RedisStore{rdb: rdb, clientID: clientID, logger: logger}, nil
}

func (r *RedisStore) key() string {
	return KeyPrefix + r.clientID.String()
}

func (r *RedisStore) Load(ctx context.Context) (*Snapshot, error) {
	data, err := r.rdb.Get(ctx, r.key()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		r.logger.Warn("Discarding unreadable session snapshot", "error", err)
		return nil, nil
	}
	return &s, nil
}

func (r *RedisStore) Save(ctx context.Context, s Snapshot) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := r.rdb.Set(ctx, r.key(), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *RedisStore) Clear(ctx context.Context) error {
	if err := r.rdb.Del(ctx, r.key()).Err(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	return r.rdb.Close()
}

// FileStore keeps the snapshot in a JSON file.
type FileStore struct {
	path   string
	logger *slog.Logger
}

var _ Store = (*FileStore)(nil)

func NewFileStore(path string, logger *slog.Logger) *FileStore {
	return &FileStore{path: path, logger: logger}
}

func (f *FileStore) Load(ctx context.Context) (*Snapshot, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		f.logger.Warn("Discarding unreadable session file", "path", f.path, "error", err)
		return nil, nil
	}
	return &s, nil
}

func (f *FileStore) Save(ctx context.Context, s Snapshot) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("failed to create session dir: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

func (f *FileStore) Clear(ctx context.Context) error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

func (f *FileStore) Close() error { return nil }

// ClientID returns a stable identifier for this machine, stored next to the
// session file and created on first use.
func ClientID(dir string) (uuid.UUID, error) {
	path := filepath.Join(dir, "client-id")
	data, err := os.ReadFile(path)
	if err == nil {
		if id, perr := uuid.ParseBytes(data); perr == nil {
			return id, nil
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return uuid.Nil, fmt.Errorf("failed to read client id: %w", err)
	}

	id := uuid.New()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(id.String()), 0o600); err != nil {
		return uuid.Nil, fmt.Errorf("failed to write client id: %w", err)
	}
	return id, nil
}

// Open picks the Redis store when redisURL is set and the file store
// otherwise. The Redis key is derived from a client ID kept beside
// snapshotPath.
func Open(ctx context.Context, redisURL, snapshotPath string, logger *slog.Logger) (Store, error) {
	if redisURL == "" {
		return NewFileStore(snapshotPath, logger), nil
	}

	clientID, err := ClientID(filepath.Dir(snapshotPath))
	if err != nil {
		return nil, err
	}
	store, err := NewRedisStore(ctx, redisURL, clientID, logger)
	if err != nil {
		return nil, err
	}
	return store, nil
}
