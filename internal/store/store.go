package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"catalog-service/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// GetRestaurantByID retrieves a restaurant by ID. Returns nil when absent.
func (s *Store) GetRestaurantByID(ctx context.Context, id int64) (*models.Restaurant, error) {
	var r models.Restaurant
	err := s.db.GetContext(ctx, &r, "SELECT * FROM restaurants WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// GetCatalogItemByID retrieves a catalog item by ID. Returns nil when absent.
func (s *Store) GetCatalogItemByID(ctx context.Context, id int64) (*models.CatalogItem, error) {
	var item models.CatalogItem
	err := s.db.GetContext(ctx, &item, "SELECT * FROM catalog_items WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// SearchActiveCatalogItems returns active catalog items whose name,
// description or country of origin contains the query, case-insensitively,
// ordered by name. The id tiebreak keeps ordering stable for equal names.
func (s *Store) SearchActiveCatalogItems(ctx context.Context, query string, limit int) ([]models.CatalogItem, error) {
	items := []models.CatalogItem{}
	pattern := LikePattern(query)
	err := s.db.SelectContext(ctx, &items, `
		SELECT * FROM catalog_items
		WHERE status = $1
		  AND (name ILIKE $2 OR description ILIKE $2 OR country_of_origin ILIKE $2)
		ORDER BY name ASC, id ASC
		LIMIT $3`,
		models.CatalogStatusActive, pattern, limit)
	return items, err
}

// GetCatalogItemsByIDs retrieves multiple catalog items by IDs
func (s *Store) GetCatalogItemsByIDs(ctx context.Context, ids []int64) ([]models.CatalogItem, error) {
	if len(ids) == 0 {
		return []models.CatalogItem{}, nil
	}

	query, args, err := sqlx.In("SELECT * FROM catalog_items WHERE id IN (?)", ids)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var items []models.CatalogItem
	err = s.db.SelectContext(ctx, &items, query, args...)
	return items, err
}

// GetActiveCatalogItems retrieves all active catalog items (cache warm-up)
func (s *Store) GetActiveCatalogItems(ctx context.Context) ([]models.CatalogItem, error) {
	var items []models.CatalogItem
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM catalog_items WHERE status = $1 ORDER BY id",
		models.CatalogStatusActive)
	return items, err
}

// CreateCatalogItem inserts a catalog item outside any proposal transaction.
// Used for platform-seeded items, which are created directly in active state.
func (s *Store) CreateCatalogItem(ctx context.Context, item *models.CatalogItem) error {
	return insertCatalogItem(ctx, s.db, item)
}

// UpdateCatalogItemEditorial updates the editorial fields of a catalog item.
// Existing listings keep their snapshot; this only affects future attaches.
func (s *Store) UpdateCatalogItemEditorial(ctx context.Context, item *models.CatalogItem) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE catalog_items
		SET name = $1, description = $2, category = $3, country_of_origin = $4,
		    spice_level = $5, origin_story = $6, base_ingredients = $7,
		    cultural_significance = $8, is_vegetarian = $9, is_vegan = $10,
		    is_halal = $11, calorie_estimate = $12, native_regions = $13,
		    taste_profile = $14, updated_at = NOW()
		WHERE id = $15`,
		item.Name, item.Description, item.Category, item.CountryOfOrigin,
		item.SpiceLevel, item.OriginStory, item.BaseIngredients,
		item.CulturalSignificance, item.IsVegetarian, item.IsVegan,
		item.IsHalal, item.CalorieEstimate, item.NativeRegions,
		item.TasteProfile, item.ID)
	return err
}

// DecideCatalogItemTx applies a moderation decision in one transaction: the
// catalog item flips out of pending_approval, and every listing still pending
// on it is updated with a single conditional bulk UPDATE (no read-then-write
// loop, so a concurrent vendor edit cannot be lost). Re-delivering a decision
// matches zero rows and is a no-op: applied=false, updatedListings=0, no error.
func (s *Store) DecideCatalogItemTx(ctx context.Context, catalogItemID int64, decision string) (applied bool, updatedListings int64, err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE catalog_items SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3",
		decision, catalogItemID, models.CatalogStatusPendingApproval)
	if err != nil {
		return false, 0, fmt.Errorf("failed to update catalog item status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, 0, err
	}
	if affected == 0 {
		// Already decided (or never pending). Nothing to fan out.
		return false, 0, tx.Commit()
	}

	// Approval restores the vendor's desired availability; rejection keeps
	// the listing off the menu.
	listingUpdate := `
		UPDATE menu_listings
		SET status = $1, is_active = desired_active, updated_at = NOW()
		WHERE catalog_item_id = $2 AND status = $3`
	if decision == models.DecisionRejected {
		listingUpdate = `
		UPDATE menu_listings
		SET status = $1, is_active = FALSE, updated_at = NOW()
		WHERE catalog_item_id = $2 AND status = $3`
	}
	res, err = tx.ExecContext(ctx, listingUpdate,
		decision, catalogItemID, models.ListingStatusPendingApproval)
	if err != nil {
		return false, 0, fmt.Errorf("failed to fan out decision to listings: %w", err)
	}

	updatedListings, err = res.RowsAffected()
	if err != nil {
		return false, 0, err
	}

	if err := tx.Commit(); err != nil {
		return false, 0, err
	}
	return true, updatedListings, nil
}

// LikePattern turns a raw user query into a contains-anywhere ILIKE pattern,
// escaping LIKE metacharacters so user input cannot widen the match.
func LikePattern(query string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(query)
	return "%" + escaped + "%"
}

type execer interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

func insertCatalogItem(ctx context.Context, q execer, item *models.CatalogItem) error {
	query := `
		INSERT INTO catalog_items (
			name, description, category, country_of_origin, spice_level,
			origin_story, base_ingredients, cultural_significance,
			is_vegetarian, is_vegan, is_halal, calorie_estimate,
			native_regions, taste_profile, status, submitted_by_restaurant_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id, created_at, updated_at`

	return q.GetContext(ctx, item, query,
		item.Name, item.Description, item.Category, item.CountryOfOrigin,
		item.SpiceLevel, item.OriginStory, item.BaseIngredients,
		item.CulturalSignificance, item.IsVegetarian, item.IsVegan,
		item.IsHalal, item.CalorieEstimate, item.NativeRegions,
		item.TasteProfile, item.Status, item.SubmittedByRestaurant)
}
