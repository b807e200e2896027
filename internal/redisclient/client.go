package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"catalog-service/internal/models"

	"github.com/go-redis/redis/v8"
)

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

func catalogKey(catalogItemID int64) string {
	return fmt.Sprintf("catalog:item:%d", catalogItemID)
}

// SetCatalogItem caches a catalog item as JSON with a TTL
func (c *Client) SetCatalogItem(ctx context.Context, item *models.CatalogItem, ttl time.Duration) error {
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog item: %w", err)
	}
	return c.rdb.Set(ctx, catalogKey(item.ID), data, ttl).Err()
}

// GetCatalogItem returns a cached catalog item, or nil on a cache miss
func (c *Client) GetCatalogItem(ctx context.Context, catalogItemID int64) (*models.CatalogItem, error) {
	data, err := c.rdb.Get(ctx, catalogKey(catalogItemID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var item models.CatalogItem
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached catalog item: %w", err)
	}
	return &item, nil
}

// InvalidateCatalogItem drops a catalog item from the cache. Called after
// moderation decisions so stale pending/active state is never served.
func (c *Client) InvalidateCatalogItem(ctx context.Context, catalogItemID int64) error {
	return c.rdb.Del(ctx, catalogKey(catalogItemID)).Err()
}

// IsEventProcessed reports whether an event id has been recorded. Consumers
// check this before handling and mark only after success, so a failed
// handling attempt never blocks redelivery.
func (c *Client) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	n, err := c.rdb.Exists(ctx, processedKey(eventID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MarkEventProcessed records an event id with a TTL
func (c *Client) MarkEventProcessed(ctx context.Context, eventID string, ttl time.Duration) error {
	return c.rdb.Set(ctx, processedKey(eventID), "1", ttl).Err()
}

func processedKey(eventID string) string {
	return fmt.Sprintf("processed:%s", eventID)
}

// AcquireLock acquires a distributed lock
func (c *Client) AcquireLock(ctx context.Context, lockKey string, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, fmt.Sprintf("lock:%s", lockKey), "1", ttl).Result()
}

// ReleaseLock releases a distributed lock
func (c *Client) ReleaseLock(ctx context.Context, lockKey string) error {
	return c.rdb.Del(ctx, fmt.Sprintf("lock:%s", lockKey)).Err()
}
