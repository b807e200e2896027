package store

import (
	"context"
	"database/sql"
	"fmt"

	"catalog-service/internal/models"
)

// PartialWriteError reports a failed proposal transaction where the rollback
// itself also failed, so the catalog item row may have been left behind.
// Operators reconcile using the carried id; callers must not treat this as a
// generic store failure.
type PartialWriteError struct {
	CatalogItemID int64
	Orphaned      bool
	Err           error
}

func (e *PartialWriteError) Error() string {
	if e.Orphaned {
		return fmt.Sprintf("partial write: catalog item %d may be orphaned: %v", e.CatalogItemID, e.Err)
	}
	return fmt.Sprintf("partial write rolled back: %v", e.Err)
}

func (e *PartialWriteError) Unwrap() error {
	return e.Err
}

// CreateListing inserts a menu listing
func (s *Store) CreateListing(ctx context.Context, listing *models.MenuListing) error {
	return insertListing(ctx, s.db, listing)
}

// ProposeDishTx creates a pending catalog item and its linked listing as a
// single transaction. On any failure the whole unit rolls back; no pending
// catalog item is left without its listing.
func (s *Store) ProposeDishTx(ctx context.Context, item *models.CatalogItem, listing *models.MenuListing) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	if err := insertCatalogItem(ctx, tx, item); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to create catalog item: %w", err)
	}

	listing.CatalogItemID = &item.ID
	if err := insertListing(ctx, tx, listing); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return &PartialWriteError{CatalogItemID: item.ID, Orphaned: true, Err: err}
		}
		return fmt.Errorf("failed to create menu listing: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return &PartialWriteError{CatalogItemID: item.ID, Orphaned: false, Err: err}
	}
	return nil
}

// GetListingByID retrieves a menu listing by ID. Returns nil when absent.
func (s *Store) GetListingByID(ctx context.Context, id int64) (*models.MenuListing, error) {
	var listing models.MenuListing
	err := s.db.GetContext(ctx, &listing, "SELECT * FROM menu_listings WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// GetListingsByRestaurant retrieves all listings owned by a restaurant
func (s *Store) GetListingsByRestaurant(ctx context.Context, restaurantID int64) ([]models.MenuListing, error) {
	listings := []models.MenuListing{}
	err := s.db.SelectContext(ctx, &listings,
		"SELECT * FROM menu_listings WHERE restaurant_id = $1 ORDER BY name ASC, id ASC",
		restaurantID)
	return listings, err
}

// GetListingsByCatalogItem retrieves all listings referencing a catalog item
func (s *Store) GetListingsByCatalogItem(ctx context.Context, catalogItemID int64) ([]models.MenuListing, error) {
	listings := []models.MenuListing{}
	err := s.db.SelectContext(ctx, &listings,
		"SELECT * FROM menu_listings WHERE catalog_item_id = $1 ORDER BY id",
		catalogItemID)
	return listings, err
}

// UpdateListingCommerce persists the vendor-editable commerce fields
func (s *Store) UpdateListingCommerce(ctx context.Context, listing *models.MenuListing) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE menu_listings
		SET price_cents = $1, size_options = $2, custom_ingredients = $3,
		    restaurant_notes = $4, is_chef_special = $5, is_active = $6,
		    desired_active = $7, updated_at = NOW()
		WHERE id = $8`,
		listing.PriceCents, listing.SizeOptions, listing.CustomIngredients,
		listing.RestaurantNotes, listing.IsChefSpecial, listing.IsActive,
		listing.DesiredActive, listing.ID)
	return err
}

// UpdateListingEditorial persists editorial fields. Only valid for manual
// listings (catalog_item_id IS NULL); linked listings keep their snapshot.
func (s *Store) UpdateListingEditorial(ctx context.Context, listing *models.MenuListing) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE menu_listings
		SET name = $1, description = $2, category = $3, country_of_origin = $4,
		    updated_at = NOW()
		WHERE id = $5 AND catalog_item_id IS NULL`,
		listing.Name, listing.Description, listing.Category,
		listing.CountryOfOrigin, listing.ID)
	return err
}

// UpdateListingImageURL records the public URL of an uploaded dish image
func (s *Store) UpdateListingImageURL(ctx context.Context, listingID int64, imageURL string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE menu_listings SET image_url = $1, updated_at = NOW() WHERE id = $2",
		imageURL, listingID)
	return err
}

// DeleteListing removes a listing permanently
func (s *Store) DeleteListing(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM menu_listings WHERE id = $1", id)
	return err
}

func insertListing(ctx context.Context, q execer, listing *models.MenuListing) error {
	query := `
		INSERT INTO menu_listings (
			restaurant_id, catalog_item_id, name, description, category,
			country_of_origin, price_cents, size_options, custom_ingredients,
			restaurant_notes, is_chef_special, is_active, desired_active,
			status, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at, updated_at`

	return q.GetContext(ctx, listing, query,
		listing.RestaurantID, listing.CatalogItemID, listing.Name,
		listing.Description, listing.Category, listing.CountryOfOrigin,
		listing.PriceCents, listing.SizeOptions, listing.CustomIngredients,
		listing.RestaurantNotes, listing.IsChefSpecial, listing.IsActive,
		listing.DesiredActive, listing.Status, listing.ImageURL)
}
