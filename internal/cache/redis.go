// Package cache holds the published-portfolio read cache. It is strictly
// cache-aside: the portfolio service owns invalidation on every transition
// that changes visibility.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"artfolio/internal/config"
)

type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache returns nil when redis is disabled; callers treat a nil cache as
// a permanent miss.
func NewCache(c *config.Config) (*Cache, error) {
	if !c.Redis.Enabled {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port),
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Cache{
		client: client,
		ttl:    time.Duration(c.Redis.TTL) * time.Second,
	}, nil
}

func portfolioKey(portfolioID uint64) string {
	return fmt.Sprintf("portfolio:%d", portfolioID)
}

// GetPortfolio returns the cached public view bytes, or ok=false on a miss.
func (c *Cache) GetPortfolio(ctx context.Context, portfolioID uint64) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, portfolioKey(portfolioID)).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

func (c *Cache) SetPortfolio(ctx context.Context, portfolioID uint64, data []byte) error {
	if c == nil {
		return nil
	}
	return c.client.Set(ctx, portfolioKey(portfolioID), data, c.ttl).Err()
}

func (c *Cache) InvalidatePortfolio(ctx context.Context, portfolioID uint64) error {
	if c == nil {
		return nil
	}
	return c.client.Del(ctx, portfolioKey(portfolioID)).Err()
}

func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
