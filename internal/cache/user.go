package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bluehaven/rentals/internal/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("cache miss")

// UserCache holds user profiles read by the auth middleware on every request.
type UserCache interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.User, error)
	Set(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type RedisUserCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewUserCache(client redis.UniversalClient, ttl time.Duration) *RedisUserCache {
	return &RedisUserCache{client: client, ttl: ttl}
}

func userKey(id uuid.UUID) string {
	return "user:" + id.String()
}

func (c *RedisUserCache) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	raw, err := c.client.Get(ctx, userKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get user failed: %w", err)
	}

	var user domain.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("unmarshal cached user failed: %w", err)
	}

	return &user, nil
}

func (c *RedisUserCache) Set(ctx context.Context, user *domain.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user failed: %w", err)
	}

	if err := c.client.Set(ctx, userKey(user.ID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set user failed: %w", err)
	}

	return nil
}

func (c *RedisUserCache) Delete(ctx context.Context, id uuid.UUID) error {
	if err := c.client.Del(ctx, userKey(id)).Err(); err != nil {
		return fmt.Errorf("redis del user failed: %w", err)
	}

	return nil
}
