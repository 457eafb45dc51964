package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	redisv9 "github.com/redis/go-redis/v9"
)

// RedisStore keeps session history in Redis so several service instances can
// share it. Entries expire after ttl; retention semantics match MemoryStore.
type RedisStore struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewRedisStore(client *redisv9.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Create(ctx context.Context) (string, error) {
	sessionID := uuid.NewString()
	if err := s.write(ctx, sessionID, []Turn{}); err != nil {
		return "", err
	}
	return sessionID, nil
}

func (s *RedisStore) Append(ctx context.Context, sessionID string, turns ...Turn) error {
	history, err := s.History(ctx, sessionID)
	if err != nil {
		return err
	}
	return s.write(ctx, sessionID, trimTurns(append(history, turns...)))
}

func (s *RedisStore) History(ctx context.Context, sessionID string) ([]Turn, error) {
	raw, err := s.client.Get(ctx, sessionKey(sessionID)).Result()
	if err == redisv9.Nil {
		return nil, ErrUnknownSession
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session failed: %w", err)
	}
	var turns []Turn
	if err := json.Unmarshal([]byte(raw), &turns); err != nil {
		return nil, fmt.Errorf("unmarshal session history failed: %w", err)
	}
	return turns, nil
}

func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis delete session failed: %w", err)
	}
	return nil
}

func (s *RedisStore) write(ctx context.Context, sessionID string, turns []Turn) error {
	payload, err := json.Marshal(turns)
	if err != nil {
		return fmt.Errorf("marshal session history failed: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(sessionID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session failed: %w", err)
	}
	return nil
}

func sessionKey(sessionID string) string {
	return "chat:session:" + sessionID
}
