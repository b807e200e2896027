package service

import (
	"context"
	"fmt"
	"time"

	"catalog-service/internal/models"
	"catalog-service/internal/redisclient"
	"catalog-service/internal/store"
	"catalog-service/internal/util"

	"go.uber.org/zap"
)

// CatalogCache serves catalog item reads through Redis with a database
// fallback. Only active items are cached: pending and rejected items change
// state under moderation and are always read from the database.
type CatalogCache struct {
	store  *store.Store
	redis  *redisclient.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCatalogCache creates a new catalog cache
func NewCatalogCache(store *store.Store, redis *redisclient.Client, ttl time.Duration) *CatalogCache {
	return &CatalogCache{
		store:  store,
		redis:  redis,
		ttl:    ttl,
		logger: util.GetLogger(),
	}
}

// GetCatalogItem returns a catalog item by id, preferring the cache.
// Returns nil when the item does not exist.
func (cc *CatalogCache) GetCatalogItem(ctx context.Context, catalogItemID int64) (*models.CatalogItem, error) {
	cached, err := cc.redis.GetCatalogItem(ctx, catalogItemID)
	if err != nil {
		cc.logger.Warn("Catalog cache read failed, falling back to DB",
			zap.Int64("catalog_item_id", catalogItemID),
			zap.Error(err))
	} else if cached != nil {
		util.CatalogCacheHitsTotal.Inc()
		return cached, nil
	}

	item, err := cc.store.GetCatalogItemByID(ctx, catalogItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}

	util.CatalogCacheMissesTotal.Inc()
	if item.Status == models.CatalogStatusActive {
		if err := cc.redis.SetCatalogItem(ctx, item, cc.ttl); err != nil {
			cc.logger.Warn("Failed to populate catalog cache",
				zap.Int64("catalog_item_id", catalogItemID),
				zap.Error(err))
		}
	}
	return item, nil
}

// Invalidate drops a catalog item from the cache. Best effort: a failed
// invalidation only delays freshness until the TTL expires.
func (cc *CatalogCache) Invalidate(ctx context.Context, catalogItemID int64) {
	if err := cc.redis.InvalidateCatalogItem(ctx, catalogItemID); err != nil {
		cc.logger.Warn("Failed to invalidate catalog cache",
			zap.Int64("catalog_item_id", catalogItemID),
			zap.Error(err))
	}
}

// SyncActiveCatalog warms the cache with all active catalog items
func (cc *CatalogCache) SyncActiveCatalog(ctx context.Context) error {
	cc.logger.Info("Starting catalog cache warm-up")

	items, err := cc.store.GetActiveCatalogItems(ctx)
	if err != nil {
		return fmt.Errorf("failed to load active catalog items: %w", err)
	}

	for i := range items {
		if err := cc.redis.SetCatalogItem(ctx, &items[i], cc.ttl); err != nil {
			cc.logger.Warn("Failed to cache catalog item",
				zap.Int64("catalog_item_id", items[i].ID),
				zap.Error(err))
		}
	}

	cc.logger.Info("Catalog cache warm-up completed", zap.Int("count", len(items)))
	return nil
}
