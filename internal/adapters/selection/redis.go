package selection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okian/scout/internal/domain/model"
)

// KeyPrefix namespaces selection keys.
const KeyPrefix = "scout:selection:"

// RedisStore keeps selections in Redis as JSON values.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore wraps client. A ttl of zero keeps keys until deleted.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Key returns the Redis key for owner.
func Key(owner string) string {
	return KeyPrefix + owner
}

// Get implements Store.Get.
func (s *RedisStore) Get(ctx context.Context, owner string) ([]model.SelectionEntry, error) {
	data, err := s.client.Get(ctx, Key(owner)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading selection %q: %w", owner, err)
	}

	var entries []model.SelectionEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decoding selection %q: %w", owner, err)
	}
	return entries, nil
}

// Put implements Store.Put.
func (s *RedisStore) Put(ctx context.Context, owner string, entries []model.SelectionEntry) error {
	if err := Validate(owner, entries); err != nil {
		return err
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling selection: %w", err)
	}
	return s.client.Set(ctx, Key(owner), data, s.ttl).Err()
}

// Delete implements Store.Delete.
func (s *RedisStore) Delete(ctx context.Context, owner string) error {
	return s.client.Del(ctx, Key(owner)).Err()
}

// Ping checks the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
