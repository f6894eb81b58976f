package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"tripmarket/internal/domain/models"

	"github.com/redis/go-redis/v9"
)

const DefaultSnapshotKey = "tripmarket:trips:active"

// RedisSnapshotStore shares the active-trip snapshot between processes.
type RedisSnapshotStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func NewRedisSnapshotStore(client *redis.Client, ttl time.Duration) *RedisSnapshotStore {
	return &RedisSnapshotStore{client: client, key: DefaultSnapshotKey, ttl: ttl}
}

// Load returns the shared snapshot. ok is false when the key is absent.
func (s *RedisSnapshotStore) Load(ctx context.Context) (models.TripSnapshot, bool, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.TripSnapshot{}, false, nil
	}
	if err != nil {
		return models.TripSnapshot{}, false, err
	}
	var snap models.TripSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return models.TripSnapshot{}, false, err
	}
	return snap, true, nil
}

func (s *RedisSnapshotStore) Save(ctx context.Context, snap models.TripSnapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key, payload, s.ttl).Err()
}

func (s *RedisSnapshotStore) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}
