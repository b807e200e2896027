package models

import "time"

// Event types
const (
	EventTypeDishProposed    = "DISH_PROPOSED"
	EventTypeListingAttached = "LISTING_ATTACHED"
	EventTypeCatalogDecided  = "CATALOG_DECIDED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// DishProposedEvent is published when a vendor proposes a new catalog item.
// The moderation pipeline consumes it to enqueue the item for review.
type DishProposedEvent struct {
	BaseEvent
	CatalogItemID int64  `json:"catalog_item_id"`
	ListingID     int64  `json:"listing_id"`
	RestaurantID  int64  `json:"restaurant_id"`
	Name          string `json:"name"`
	Category      string `json:"category"`
	Country       string `json:"country"`
}

// ListingAttachedEvent is published when a vendor attaches a listing to an
// existing active catalog item.
type ListingAttachedEvent struct {
	BaseEvent
	ListingID     int64 `json:"listing_id"`
	CatalogItemID int64 `json:"catalog_item_id"`
	RestaurantID  int64 `json:"restaurant_id"`
	PriceCents    int64 `json:"price_cents"`
}

// CatalogDecidedEvent carries a moderation decision for a pending catalog
// item. It is consumed by the moderation worker (decisions coming from the
// external review pipeline) and re-published after local fan-out for
// downstream consumers such as customer-facing menus.
type CatalogDecidedEvent struct {
	BaseEvent
	CatalogItemID   int64  `json:"catalog_item_id"`
	Decision        string `json:"decision"`
	Reason          string `json:"reason,omitempty"`
	UpdatedListings int    `json:"updated_listings"`
}
