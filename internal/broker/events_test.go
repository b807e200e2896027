package broker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"catalog-service/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decidedMessage(t *testing.T, decision string) kafka.Message {
	t.Helper()

	event := models.CatalogDecidedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   "evt-1",
			EventType: models.EventTypeCatalogDecided,
			Timestamp: time.Now(),
		},
		CatalogItemID: 42,
		Decision:      decision,
	}
	value, err := json.Marshal(event)
	require.NoError(t, err)
	return kafka.Message{Value: value}
}

func TestHandleMessageRoutesCatalogDecided(t *testing.T) {
	handler := NewEventHandler()

	var received *models.CatalogDecidedEvent
	handler.OnCatalogDecided(func(_ context.Context, event *models.CatalogDecidedEvent) error {
		received = event
		return nil
	})

	err := handler.HandleMessage(context.Background(), decidedMessage(t, models.DecisionActive))
	require.NoError(t, err)
	require.NotNil(t, received)
	assert.Equal(t, int64(42), received.CatalogItemID)
	assert.Equal(t, models.DecisionActive, received.Decision)
}

func TestHandleMessageIgnoresUnknownTypes(t *testing.T) {
	handler := NewEventHandler()
	handler.OnCatalogDecided(func(context.Context, *models.CatalogDecidedEvent) error {
		t.Fatal("handler must not fire for unknown event types")
		return nil
	})

	msg := kafka.Message{Value: []byte(`{"event_id":"x","event_type":"SOMETHING_ELSE"}`)}
	assert.NoError(t, handler.HandleMessage(context.Background(), msg))
}

func TestHandleMessageRejectsMalformedPayload(t *testing.T) {
	handler := NewEventHandler()

	msg := kafka.Message{Value: []byte("not json")}
	assert.Error(t, handler.HandleMessage(context.Background(), msg))
}
