package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tyagiab3/user-service/internal/domain"
)

const userCacheTTL = 10 * time.Minute

// UserCache is a read-through cache for account lookups keyed by email.
// Misses and backend failures both surface as (nil, error); callers fall
// back to the store.
type UserCache interface {
	Get(ctx context.Context, email string) (*domain.User, error)
	Set(ctx context.Context, user *domain.User) error
	Invalidate(ctx context.Context, email string) error
}

type redisUserCache struct {
	client *redis.Client
}

// NewUserCache returns a Redis-backed cache.
func NewUserCache(client *redis.Client) UserCache {
	return &redisUserCache{client: client}
}

func (c *redisUserCache) Get(ctx context.Context, email string) (*domain.User, error) {
	raw, err := c.client.Get(ctx, cacheKey(email)).Bytes()
	if err != nil {
		return nil, err
	}
	var user domain.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *redisUserCache) Set(ctx context.Context, user *domain.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cacheKey(user.Email), raw, userCacheTTL).Err()
}

func (c *redisUserCache) Invalidate(ctx context.Context, email string) error {
	return c.client.Del(ctx, cacheKey(email)).Err()
}

func cacheKey(email string) string {
	return "users:" + email
}
