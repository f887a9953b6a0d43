package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
)

// RedisStore keeps each session as one JSON value with a sliding TTL.
type RedisStore struct {
	client   *redisv9.Client
	keySpace string
	ttl      time.Duration
}

func NewRedisStore(client *redisv9.Client, keySpace string, ttl time.Duration) *RedisStore {
	if keySpace == "" {
		keySpace = "photolabel:session"
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{
		client:   client,
		keySpace: keySpace,
		ttl:      ttl,
	}
}

func (s *RedisStore) Get(ctx context.Context, id string) (State, bool, error) {
	raw, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err == redisv9.Nil {
		return State{}, false, nil
	}
	if err != nil {
		return State{}, false, fmt.Errorf("redis get session failed: %w", err)
	}

	var state State
	if err := json.Unmarshal(raw, &state); err != nil {
		return State{}, false, fmt.Errorf("unmarshal session state failed: %w", err)
	}
	return state, true, nil
}

func (s *RedisStore) Save(ctx context.Context, id string, state State) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal session state failed: %w", err)
	}
	if err := s.client.Set(ctx, s.key(id), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session failed: %w", err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) key(id string) string {
	return fmt.Sprintf("%s:%s", s.keySpace, id)
}
