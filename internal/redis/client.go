package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"restbar/internal/models"
)

// Client caches catalog lookups so the order path does not hit the catalog
// tables for every line item. A cache miss is never an error for callers.
type Client struct {
	rdb *redis.Client
}

var ErrCacheMiss = fmt.Errorf("cache miss")

func Initialize(redisURL string) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	// Test connection
	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Product caching
func (c *Client) SetProduct(product *models.Product, ttl time.Duration) error {
	ctx := context.Background()
	jsonData, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("failed to marshal product: %w", err)
	}

	return c.rdb.Set(ctx, "product:"+product.ID, jsonData, ttl).Err()
}

func (c *Client) GetProduct(productID string) (*models.Product, error) {
	ctx := context.Background()
	val, err := c.rdb.Get(ctx, "product:"+productID).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	var product models.Product
	if err := json.Unmarshal([]byte(val), &product); err != nil {
		return nil, fmt.Errorf("failed to unmarshal product: %w", err)
	}

	return &product, nil
}

// Close Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}
