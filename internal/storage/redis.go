package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/encounter-tracker/pkg/library"
	"github.com/jwebster45206/encounter-tracker/pkg/session"
)

const (
	sessionKeyPrefix = "session:"
	categoriesKey    = "library:categories"
	creaturesKey     = "library:creatures"
)

// RedisStorage implements Storage on Redis. Sessions are stored as JSON
// strings, library records as hash fields keyed by ID.
type RedisStorage struct {
	client *redis.Client
	logger *slog.Logger
}

// Ensure RedisStorage implements Storage interface
var _ Storage = (*RedisStorage)(nil)

// NewRedisStorage creates a Redis storage instance from a redis URL.
func NewRedisStorage(redisURL string, logger *slog.Logger) (*RedisStorage, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	return &RedisStorage{
		client: redis.NewClient(opt),
		logger: logger,
	}, nil
}

func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	return nil
}

func (r *RedisStorage) SaveSession(ctx context.Context, s session.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := r.client.Set(ctx, sessionKeyPrefix+s.ID.String(), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *RedisStorage) LoadSession(ctx context.Context, id uuid.UUID) (session.Session, error) {
	data, err := r.client.Get(ctx, sessionKeyPrefix+id.String()).Result()
	if errors.Is(err, redis.Nil) {
		return session.Session{}, ErrNotFound
	}
	if err != nil {
		return session.Session{}, fmt.Errorf("failed to load session: %w", err)
	}
	var s session.Session
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return session.Session{}, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return s, nil
}

func (r *RedisStorage) DeleteSession(ctx context.Context, id uuid.UUID) error {
	deleted, err := r.client.Del(ctx, sessionKeyPrefix+id.String()).Result()
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if deleted == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RedisStorage) ListCategories(ctx context.Context) ([]library.Category, error) {
	vals, err := r.client.HVals(ctx, categoriesKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	out := make([]library.Category, 0, len(vals))
	for _, v := range vals {
		var c library.Category
		if err := json.Unmarshal([]byte(v), &c); err != nil {
			return nil, fmt.Errorf("failed to unmarshal category: %w", err)
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *RedisStorage) PutCategory(ctx context.Context, c library.Category) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal category: %w", err)
	}
	if err := r.client.HSet(ctx, categoriesKey, c.ID.String(), data).Err(); err != nil {
		return fmt.Errorf("failed to save category: %w", err)
	}
	return nil
}

func (r *RedisStorage) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	deleted, err := r.client.HDel(ctx, categoriesKey, id.String()).Result()
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if deleted == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RedisStorage) ListCreatures(ctx context.Context) ([]library.CreatureTemplate, error) {
	vals, err := r.client.HVals(ctx, creaturesKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list creatures: %w", err)
	}
	out := make([]library.CreatureTemplate, 0, len(vals))
	for _, v := range vals {
		var t library.CreatureTemplate
		if err := json.Unmarshal([]byte(v), &t); err != nil {
			return nil, fmt.Errorf("failed to unmarshal creature template: %w", err)
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *RedisStorage) PutCreature(ctx context.Context, t library.CreatureTemplate) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to marshal creature template: %w", err)
	}
	if err := r.client.HSet(ctx, creaturesKey, t.ID.String(), data).Err(); err != nil {
		return fmt.Errorf("failed to save creature template: %w", err)
	}
	return nil
}

func (r *RedisStorage) DeleteCreature(ctx context.Context, id uuid.UUID) error {
	deleted, err := r.client.HDel(ctx, creaturesKey, id.String()).Result()
	if err != nil {
		return fmt.Errorf("failed to delete creature template: %w", err)
	}
	if deleted == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RedisStorage) LibrarySnapshot(ctx context.Context) (library.Snapshot, error) {
	cats, err := r.ListCategories(ctx)
	if err != nil {
		return library.Snapshot{}, err
	}
	creatures, err := r.ListCreatures(ctx)
	if err != nil {
		return library.Snapshot{}, err
	}
	return library.Snapshot{Categories: cats, Creatures: creatures}, nil
}

// RestoreLibrary replaces both hashes atomically so a crash mid-import
// cannot leave a half-restored library.
func (r *RedisStorage) RestoreLibrary(ctx context.Context, snap library.Snapshot) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, categoriesKey, creaturesKey)
	for _, c := range snap.Categories {
		data, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("failed to marshal category: %w", err)
		}
		pipe.HSet(ctx, categoriesKey, c.ID.String(), data)
	}
	for _, t := range snap.Creatures {
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("failed to marshal creature template: %w", err)
		}
		pipe.HSet(ctx, creaturesKey, t.ID.String(), data)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to restore library: %w", err)
	}
	return nil
}
