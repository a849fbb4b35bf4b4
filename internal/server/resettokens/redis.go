package resettokens

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/starterkit/internal/common"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "starterkit:reset:"

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Connect builds a client for addr and pings it.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping error: %w", err)
	}
	return client, nil
}

func (s *RedisStore) Save(ctx context.Context, token, userID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, keyPrefix+token, userID, ttl).Err(); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

// Consume reads and deletes the token in one GETDEL, so a token can be
// redeemed once even under concurrent requests.
func (s *RedisStore) Consume(ctx context.Context, token string) (string, error) {
	userID, err := s.client.GetDel(ctx, keyPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", common.ErrInvalidToken
		}
		return "", fmt.Errorf("redis error: %w", err)
	}
	return userID, nil
}
