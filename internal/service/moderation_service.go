package service

import (
	"context"
	"errors"
	"time"

	"catalog-service/internal/broker"
	"catalog-service/internal/models"
	"catalog-service/internal/redisclient"
	"catalog-service/internal/store"
	"catalog-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// How long processed decision event ids are remembered. The fan-out itself
// is idempotent, so an expired marker only costs a redundant no-op update.
const processedEventTTL = 72 * time.Hour

// ModerationService applies moderation decisions to pending catalog items and
// fans them out to every listing still waiting on approval. Decisions arrive
// either through the admin API or as events from the review pipeline; both
// paths share the same idempotent handler.
type ModerationService struct {
	store          *store.Store
	redis          *redisclient.Client
	cache          *CatalogCache
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
}

// NewModerationService creates a new moderation service
func NewModerationService(
	store *store.Store,
	redis *redisclient.Client,
	cache *CatalogCache,
	eventPublisher *broker.EventPublisher,
) *ModerationService {
	return &ModerationService{
		store:          store,
		redis:          redis,
		cache:          cache,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// DecisionResult reports what a decision changed. A re-delivered decision
// yields Applied=false and UpdatedListings=0 without error.
type DecisionResult struct {
	CatalogItemID   int64  `json:"catalog_item_id"`
	Decision        string `json:"decision"`
	Applied         bool   `json:"applied"`
	UpdatedListings int64  `json:"updated_listings"`
}

// OnCatalogItemDecided flips a pending catalog item to active or rejected
// and updates every referencing pending listing in the same transaction.
// Once it returns, every subsequent read observes the new status.
func (ms *ModerationService) OnCatalogItemDecided(ctx context.Context, catalogItemID int64, decision, reason string) (*DecisionResult, error) {
	ctx, span := util.StartSpan(ctx, "ModerationService.OnCatalogItemDecided")
	defer span.End()

	if !models.ValidDecision(decision) {
		return nil, invalidField("decision", "must be active or rejected")
	}

	item, err := ms.store.GetCatalogItemByID(ctx, catalogItemID)
	if err != nil {
		return nil, storeFailure("get catalog item", err)
	}
	if item == nil {
		return nil, ErrCatalogItemNotFound
	}

	applied, updated, err := ms.store.DecideCatalogItemTx(ctx, catalogItemID, decision)
	if err != nil {
		return nil, storeFailure("apply decision", err)
	}

	ms.cache.Invalidate(ctx, catalogItemID)

	result := &DecisionResult{
		CatalogItemID:   catalogItemID,
		Decision:        decision,
		Applied:         applied,
		UpdatedListings: updated,
	}

	if !applied {
		ms.logger.Info("Decision already applied, nothing to do",
			zap.Int64("catalog_item_id", catalogItemID),
			zap.String("decision", decision))
		return result, nil
	}

	util.CatalogDecisionsTotal.WithLabelValues(decision).Inc()
	util.ListingsFannedOutTotal.Add(float64(updated))
	ms.logger.Info("Catalog item decided",
		zap.Int64("catalog_item_id", catalogItemID),
		zap.String("decision", decision),
		zap.Int64("updated_listings", updated))

	event := &models.CatalogDecidedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeCatalogDecided,
			Timestamp: time.Now(),
		},
		CatalogItemID:   catalogItemID,
		Decision:        decision,
		Reason:          reason,
		UpdatedListings: int(updated),
	}
	if err := ms.eventPublisher.PublishCatalogDecided(ctx, event); err != nil {
		ms.logger.Error("Failed to publish CatalogDecided event", zap.Error(err))
	}

	return result, nil
}

// UpdateCatalogEditorial lets platform staff revise the editorial profile of
// a catalog item. Existing listings keep the snapshot taken when they were
// created; the cache is invalidated so future attaches copy the revised text.
func (ms *ModerationService) UpdateCatalogEditorial(ctx context.Context, catalogItemID int64, fields *CatalogFields) (*models.CatalogItem, error) {
	ctx, span := util.StartSpan(ctx, "ModerationService.UpdateCatalogEditorial")
	defer span.End()

	if err := validateCatalogFields(fields); err != nil {
		util.ValidationFailuresTotal.WithLabelValues("catalog_edit").Inc()
		return nil, err
	}

	item, err := ms.store.GetCatalogItemByID(ctx, catalogItemID)
	if err != nil {
		return nil, storeFailure("get catalog item", err)
	}
	if item == nil {
		return nil, ErrCatalogItemNotFound
	}

	applyCatalogFields(item, fields)
	if err := ms.store.UpdateCatalogItemEditorial(ctx, item); err != nil {
		return nil, storeFailure("update catalog item", err)
	}
	ms.cache.Invalidate(ctx, catalogItemID)

	ms.logger.Info("Catalog item editorial updated",
		zap.Int64("catalog_item_id", catalogItemID),
		zap.String("name", item.Name))
	return item, nil
}

// HandleCatalogDecided processes a decision event from the moderation
// pipeline. Event ids are remembered in Redis to skip obvious re-deliveries;
// the underlying update is conditional, so a missing marker is still safe.
// The marker is written only after the decision applied: a transient failure
// returns the error with no marker, so the redelivered event is retried
// instead of silently dropped.
func (ms *ModerationService) HandleCatalogDecided(ctx context.Context, event *models.CatalogDecidedEvent) error {
	ctx, span := util.StartSpan(ctx, "ModerationService.HandleCatalogDecided")
	defer span.End()

	processed, err := ms.redis.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		ms.logger.Warn("Failed to check processed-event marker, relying on idempotent update",
			zap.String("event_id", event.EventID),
			zap.Error(err))
	} else if processed {
		ms.logger.Info("Event already processed",
			zap.String("event_id", event.EventID))
		return nil
	}

	_, err = ms.OnCatalogItemDecided(ctx, event.CatalogItemID, event.Decision, event.Reason)
	if errors.Is(err, ErrCatalogItemNotFound) {
		// A decision for an item this service never saw. Log and drop: the
		// message would never become processable.
		ms.logger.Warn("Decision event for unknown catalog item",
			zap.Int64("catalog_item_id", event.CatalogItemID))
		return nil
	}
	if err != nil {
		return err
	}

	if err := ms.redis.MarkEventProcessed(ctx, event.EventID, processedEventTTL); err != nil {
		ms.logger.Warn("Failed to mark event processed",
			zap.String("event_id", event.EventID),
			zap.Error(err))
	}
	return nil
}
