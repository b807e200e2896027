package worker

import (
	"context"

	"catalog-service/internal/broker"
	"catalog-service/internal/service"
	"catalog-service/internal/util"
)

// ModerationWorker consumes decision events from the moderation pipeline and
// feeds them to the fan-out handler. The handler is idempotent, so redelivery
// after a crash between handling and offset commit is harmless.
type ModerationWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
}

// NewModerationWorker creates a new moderation worker
func NewModerationWorker(consumer *broker.Consumer, moderation *service.ModerationService) *ModerationWorker {
	eventHandler := broker.NewEventHandler()
	eventHandler.OnCatalogDecided(moderation.HandleCatalogDecided)

	return &ModerationWorker{
		consumer:     consumer,
		eventHandler: eventHandler,
	}
}

// Start starts the worker
func (w *ModerationWorker) Start(ctx context.Context) error {
	util.GetLogger().Info("Starting moderation worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *ModerationWorker) Stop() error {
	util.GetLogger().Info("Stopping moderation worker")
	return w.consumer.Close()
}
