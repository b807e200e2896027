package models

import (
	"time"

	"github.com/lib/pq"
)

// Restaurant represents a vendor-owned restaurant
type Restaurant struct {
	ID        int64     `db:"id" json:"id"`
	VendorID  int64     `db:"vendor_id" json:"vendor_id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// CatalogItem is a platform-level dish definition shared across vendors.
// Items proposed by a vendor carry the submitting restaurant as provenance;
// platform-seeded items have none.
type CatalogItem struct {
	ID                    int64          `db:"id" json:"id"`
	Name                  string         `db:"name" json:"name"`
	Description           string         `db:"description" json:"description"`
	Category              string         `db:"category" json:"category"`
	CountryOfOrigin       string         `db:"country_of_origin" json:"country_of_origin"`
	SpiceLevel            int            `db:"spice_level" json:"spice_level,omitempty"`
	OriginStory           string         `db:"origin_story" json:"origin_story,omitempty"`
	BaseIngredients       pq.StringArray `db:"base_ingredients" json:"base_ingredients,omitempty"`
	CulturalSignificance  string         `db:"cultural_significance" json:"cultural_significance,omitempty"`
	IsVegetarian          bool           `db:"is_vegetarian" json:"is_vegetarian"`
	IsVegan               bool           `db:"is_vegan" json:"is_vegan"`
	IsHalal               bool           `db:"is_halal" json:"is_halal"`
	CalorieEstimate       int            `db:"calorie_estimate" json:"calorie_estimate,omitempty"`
	NativeRegions         pq.StringArray `db:"native_regions" json:"native_regions,omitempty"`
	TasteProfile          string         `db:"taste_profile" json:"taste_profile,omitempty"`
	Status                string         `db:"status" json:"status"`
	SubmittedByRestaurant *int64         `db:"submitted_by_restaurant_id" json:"submitted_by_restaurant_id,omitempty"`
	CreatedAt             time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time      `db:"updated_at" json:"updated_at"`
}

// MenuListing is one restaurant's orderable instance of a dish. Editorial
// fields are a snapshot taken at creation time; when CatalogItemID is set
// they are locked to the catalog, otherwise fully vendor-editable.
type MenuListing struct {
	ID                int64          `db:"id" json:"id"`
	RestaurantID      int64          `db:"restaurant_id" json:"restaurant_id"`
	CatalogItemID     *int64         `db:"catalog_item_id" json:"catalog_item_id,omitempty"`
	Name              string         `db:"name" json:"name"`
	Description       string         `db:"description" json:"description"`
	Category          string         `db:"category" json:"category"`
	CountryOfOrigin   string         `db:"country_of_origin" json:"country_of_origin"`
	PriceCents        int64          `db:"price_cents" json:"price_cents"`
	SizeOptions       pq.StringArray `db:"size_options" json:"size_options,omitempty"`
	CustomIngredients string         `db:"custom_ingredients" json:"custom_ingredients,omitempty"`
	RestaurantNotes   string         `db:"restaurant_notes" json:"restaurant_notes,omitempty"`
	IsChefSpecial     bool           `db:"is_chef_special" json:"is_chef_special"`
	// IsActive is the customer-facing availability. While the listing is
	// pending approval it is forced false; DesiredActive remembers what the
	// vendor asked for, and approval restores it.
	IsActive      bool      `db:"is_active" json:"is_active"`
	DesiredActive bool      `db:"desired_active" json:"desired_active"`
	Status        string    `db:"status" json:"status"`
	ImageURL      string    `db:"image_url" json:"image_url,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Catalog item statuses
const (
	CatalogStatusPendingApproval = "pending_approval"
	CatalogStatusActive          = "active"
	CatalogStatusRejected        = "rejected"
)

// Menu listing statuses
const (
	ListingStatusPendingApproval = "pending_approval"
	ListingStatusActive          = "active"
	ListingStatusRejected        = "rejected"
)

// Moderation decisions
const (
	DecisionActive   = "active"
	DecisionRejected = "rejected"
)

// Dish categories
const (
	CategorySoupsStews   = "soups_stews"
	CategoryRiceDishes   = "rice_dishes"
	CategoryMeatsSeafood = "meats_seafood"
	CategoryVegetarian   = "vegetarian"
	CategoryStreetFood   = "street_food"
	CategorySides        = "sides"
	CategoryDesserts     = "desserts"
	CategoryBeverages    = "beverages"
)

// Categories lists every valid dish category.
var Categories = []string{
	CategorySoupsStews,
	CategoryRiceDishes,
	CategoryMeatsSeafood,
	CategoryVegetarian,
	CategoryStreetFood,
	CategorySides,
	CategoryDesserts,
	CategoryBeverages,
}

// ValidCategory reports whether c is a known dish category.
func ValidCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ValidDecision reports whether d is a valid moderation decision.
func ValidDecision(d string) bool {
	return d == DecisionActive || d == DecisionRejected
}
