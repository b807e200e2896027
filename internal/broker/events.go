package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"catalog-service/internal/models"
	"catalog-service/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventPublisher handles publishing domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishDishProposed publishes DishProposed event
func (ep *EventPublisher) PublishDishProposed(ctx context.Context, event *models.DishProposedEvent) error {
	key := fmt.Sprintf("catalog-%d", event.CatalogItemID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishListingAttached publishes ListingAttached event
func (ep *EventPublisher) PublishListingAttached(ctx context.Context, event *models.ListingAttachedEvent) error {
	key := fmt.Sprintf("catalog-%d", event.CatalogItemID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishCatalogDecided publishes CatalogDecided event
func (ep *EventPublisher) PublishCatalogDecided(ctx context.Context, event *models.CatalogDecidedEvent) error {
	key := fmt.Sprintf("catalog-%d", event.CatalogItemID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// EventHandler routes incoming events to registered handlers
type EventHandler struct {
	onCatalogDecided func(context.Context, *models.CatalogDecidedEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnCatalogDecided registers a handler for CatalogDecided events
func (eh *EventHandler) OnCatalogDecided(handler func(context.Context, *models.CatalogDecidedEvent) error) {
	eh.onCatalogDecided = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	logger := util.GetLogger()
	logger.Debug("Handling event",
		zap.String("type", baseEvent.EventType),
		zap.String("id", baseEvent.EventID))

	switch baseEvent.EventType {
	case models.EventTypeCatalogDecided:
		if eh.onCatalogDecided != nil {
			var event models.CatalogDecidedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal CatalogDecided event: %w", err)
			}
			return eh.onCatalogDecided(ctx, &event)
		}

	default:
		logger.Debug("Unhandled event type", zap.String("type", baseEvent.EventType))
	}

	return nil
}
