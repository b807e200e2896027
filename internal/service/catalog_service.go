package service

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"catalog-service/internal/broker"
	"catalog-service/internal/models"
	"catalog-service/internal/store"
	"catalog-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Queries shorter than this return an empty result set rather than scanning
// the whole catalog. A policy, not a validation failure.
const minSearchChars = 2

// CatalogService owns the search-or-create workflow over the two-tier dish
// model: shared catalog items and vendor-owned menu listings.
type CatalogService struct {
	store          *store.Store
	cache          *CatalogCache
	eventPublisher *broker.EventPublisher
	searchLimit    int
	logger         *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(
	store *store.Store,
	cache *CatalogCache,
	eventPublisher *broker.EventPublisher,
	searchLimit int,
) *CatalogService {
	return &CatalogService{
		store:          store,
		cache:          cache,
		eventPublisher: eventPublisher,
		searchLimit:    searchLimit,
		logger:         util.GetLogger(),
	}
}

// CommerceFields are the restaurant-specific fields of a listing, always
// vendor-owned regardless of any catalog link.
type CommerceFields struct {
	PriceCents        int64    `json:"price_cents" binding:"required"`
	SizeOptions       []string `json:"size_options,omitempty"`
	CustomIngredients string   `json:"custom_ingredients,omitempty"`
	RestaurantNotes   string   `json:"restaurant_notes,omitempty"`
	IsChefSpecial     bool     `json:"is_chef_special,omitempty"`
	IsActive          *bool    `json:"is_active,omitempty"`
}

// CatalogFields is the dish profile a vendor fills when proposing a new
// catalog item.
type CatalogFields struct {
	Name                 string   `json:"name" binding:"required"`
	Description          string   `json:"description" binding:"required"`
	Category             string   `json:"category" binding:"required"`
	CountryOfOrigin      string   `json:"country_of_origin" binding:"required"`
	SpiceLevel           int      `json:"spice_level,omitempty"`
	OriginStory          string   `json:"origin_story,omitempty"`
	BaseIngredients      []string `json:"base_ingredients,omitempty"`
	CulturalSignificance string   `json:"cultural_significance,omitempty"`
	IsVegetarian         bool     `json:"is_vegetarian,omitempty"`
	IsVegan              bool     `json:"is_vegan,omitempty"`
	IsHalal              bool     `json:"is_halal,omitempty"`
	CalorieEstimate      int      `json:"calorie_estimate,omitempty"`
	NativeRegions        []string `json:"native_regions,omitempty"`
	TasteProfile         string   `json:"taste_profile,omitempty"`
}

// ProposeDishResult is returned by ProposeNewDish. PendingApproval is always
// true on success: the listing is not orderable until moderation completes.
type ProposeDishResult struct {
	CatalogItem     *models.CatalogItem `json:"catalog_item"`
	MenuListing     *models.MenuListing `json:"menu_listing"`
	PendingApproval bool                `json:"pending_approval"`
}

// SearchCatalog returns active catalog items matching the query in name,
// description or country of origin, ordered by name. Queries under two
// characters return an empty slice.
func (s *CatalogService) SearchCatalog(ctx context.Context, query string) ([]models.CatalogItem, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.SearchCatalog")
	defer span.End()

	if utf8.RuneCountInString(query) < minSearchChars {
		return []models.CatalogItem{}, nil
	}

	start := time.Now()
	items, err := s.store.SearchActiveCatalogItems(ctx, query, s.searchLimit)
	util.CatalogSearchLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, storeFailure("search catalog", err)
	}

	util.CatalogSearchesTotal.Inc()
	return items, nil
}

// AttachListing creates a listing for an existing active catalog item.
// Editorial fields are copied from the item at call time; later catalog
// edits do not touch the listing. The listing is immediately orderable.
func (s *CatalogService) AttachListing(ctx context.Context, vendorID, restaurantID, catalogItemID int64, commerce *CommerceFields) (*models.MenuListing, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.AttachListing")
	defer span.End()

	if err := validateCommerceFields(commerce); err != nil {
		util.ValidationFailuresTotal.WithLabelValues("attach").Inc()
		return nil, err
	}

	if err := s.authorizeRestaurant(ctx, vendorID, restaurantID); err != nil {
		return nil, err
	}

	item, err := s.cache.GetCatalogItem(ctx, catalogItemID)
	if err != nil {
		return nil, storeFailure("get catalog item", err)
	}
	if item == nil {
		return nil, ErrCatalogItemNotFound
	}
	if item.Status != models.CatalogStatusActive {
		return nil, ErrCatalogItemNotActive
	}

	listing := listingFromCatalogItem(item, restaurantID, commerce)
	if err := s.store.CreateListing(ctx, listing); err != nil {
		return nil, storeFailure("create listing", err)
	}

	util.ListingsAttachedTotal.Inc()
	s.logger.Info("Listing attached to catalog item",
		zap.Int64("listing_id", listing.ID),
		zap.Int64("catalog_item_id", item.ID),
		zap.Int64("restaurant_id", restaurantID))

	event := &models.ListingAttachedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeListingAttached,
			Timestamp: time.Now(),
		},
		ListingID:     listing.ID,
		CatalogItemID: item.ID,
		RestaurantID:  restaurantID,
		PriceCents:    listing.PriceCents,
	}
	if err := s.eventPublisher.PublishListingAttached(ctx, event); err != nil {
		s.logger.Error("Failed to publish ListingAttached event", zap.Error(err))
	}

	return listing, nil
}

// ProposeNewDish creates a pending catalog item and its linked listing as one
// transactional unit. The listing stays off the menu until a moderator
// approves the item.
func (s *CatalogService) ProposeNewDish(ctx context.Context, vendorID, restaurantID int64, catalog *CatalogFields, commerce *CommerceFields) (*ProposeDishResult, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.ProposeNewDish")
	defer span.End()

	if err := validateCatalogFields(catalog); err != nil {
		util.ValidationFailuresTotal.WithLabelValues("propose").Inc()
		return nil, err
	}
	if err := validateCommerceFields(commerce); err != nil {
		util.ValidationFailuresTotal.WithLabelValues("propose").Inc()
		return nil, err
	}

	if err := s.authorizeRestaurant(ctx, vendorID, restaurantID); err != nil {
		return nil, err
	}

	item := catalogItemFromFields(catalog, restaurantID)
	listing := pendingListingFromFields(catalog, restaurantID, commerce)

	if err := s.store.ProposeDishTx(ctx, item, listing); err != nil {
		var partial *store.PartialWriteError
		if errors.As(err, &partial) {
			s.logger.Error("Partial write during dish proposal",
				zap.Int64("catalog_item_id", partial.CatalogItemID),
				zap.Bool("orphaned", partial.Orphaned),
				zap.Error(partial.Err))
			return nil, err
		}
		return nil, storeFailure("propose dish", err)
	}

	util.DishesProposedTotal.Inc()
	s.logger.Info("New dish proposed",
		zap.Int64("catalog_item_id", item.ID),
		zap.Int64("listing_id", listing.ID),
		zap.Int64("restaurant_id", restaurantID))

	event := &models.DishProposedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeDishProposed,
			Timestamp: time.Now(),
		},
		CatalogItemID: item.ID,
		ListingID:     listing.ID,
		RestaurantID:  restaurantID,
		Name:          item.Name,
		Category:      item.Category,
		Country:       item.CountryOfOrigin,
	}
	if err := s.eventPublisher.PublishDishProposed(ctx, event); err != nil {
		s.logger.Error("Failed to publish DishProposed event", zap.Error(err))
	}

	return &ProposeDishResult{
		CatalogItem:     item,
		MenuListing:     listing,
		PendingApproval: true,
	}, nil
}

// UpdateListingRequest carries a partial update. Nil pointers leave fields
// untouched. Editorial fields are accepted only for manual listings.
type UpdateListingRequest struct {
	PriceCents        *int64    `json:"price_cents,omitempty"`
	SizeOptions       *[]string `json:"size_options,omitempty"`
	CustomIngredients *string   `json:"custom_ingredients,omitempty"`
	RestaurantNotes   *string   `json:"restaurant_notes,omitempty"`
	IsChefSpecial     *bool     `json:"is_chef_special,omitempty"`
	IsActive          *bool     `json:"is_active,omitempty"`

	Name            *string `json:"name,omitempty"`
	Description     *string `json:"description,omitempty"`
	Category        *string `json:"category,omitempty"`
	CountryOfOrigin *string `json:"country_of_origin,omitempty"`
}

func (r *UpdateListingRequest) hasEditorial() bool {
	return r.Name != nil || r.Description != nil || r.Category != nil || r.CountryOfOrigin != nil
}

// UpdateCommerceFields updates a listing's commerce fields at any time,
// including while it awaits approval. Editorial fields are only mutable on
// manual listings; linked ones keep their catalog snapshot.
func (s *CatalogService) UpdateCommerceFields(ctx context.Context, vendorID, listingID int64, req *UpdateListingRequest) (*models.MenuListing, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.UpdateCommerceFields")
	defer span.End()

	listing, err := s.getOwnedListing(ctx, vendorID, listingID)
	if err != nil {
		return nil, err
	}

	if req.hasEditorial() && listing.CatalogItemID != nil {
		return nil, ErrEditorialFieldsLocked
	}

	if err := applyListingUpdate(listing, req); err != nil {
		util.ValidationFailuresTotal.WithLabelValues("update").Inc()
		return nil, err
	}

	if err := s.store.UpdateListingCommerce(ctx, listing); err != nil {
		return nil, storeFailure("update listing commerce", err)
	}
	if req.hasEditorial() {
		if err := s.store.UpdateListingEditorial(ctx, listing); err != nil {
			return nil, storeFailure("update listing editorial", err)
		}
	}

	s.logger.Info("Listing updated",
		zap.Int64("listing_id", listing.ID),
		zap.String("status", listing.Status))
	return listing, nil
}

// GetListing retrieves a single listing owned by the vendor
func (s *CatalogService) GetListing(ctx context.Context, vendorID, listingID int64) (*models.MenuListing, error) {
	return s.getOwnedListing(ctx, vendorID, listingID)
}

// ListListings retrieves all listings of a vendor-owned restaurant
func (s *CatalogService) ListListings(ctx context.Context, vendorID, restaurantID int64) ([]models.MenuListing, error) {
	if err := s.authorizeRestaurant(ctx, vendorID, restaurantID); err != nil {
		return nil, err
	}

	listings, err := s.store.GetListingsByRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, storeFailure("list listings", err)
	}
	return listings, nil
}

// DeleteListing removes a listing permanently. Returns the image URL that
// was attached to it, if any, so the caller can clean up blob storage.
func (s *CatalogService) DeleteListing(ctx context.Context, vendorID, listingID int64) (string, error) {
	listing, err := s.getOwnedListing(ctx, vendorID, listingID)
	if err != nil {
		return "", err
	}

	if err := s.store.DeleteListing(ctx, listing.ID); err != nil {
		return "", storeFailure("delete listing", err)
	}

	s.logger.Info("Listing deleted", zap.Int64("listing_id", listing.ID))
	return listing.ImageURL, nil
}

// SetListingImage records an uploaded image URL on a listing and returns the
// previous URL so the caller can delete the replaced object.
func (s *CatalogService) SetListingImage(ctx context.Context, vendorID, listingID int64, imageURL string) (string, error) {
	listing, err := s.getOwnedListing(ctx, vendorID, listingID)
	if err != nil {
		return "", err
	}

	if err := s.store.UpdateListingImageURL(ctx, listing.ID, imageURL); err != nil {
		return "", storeFailure("update listing image", err)
	}
	return listing.ImageURL, nil
}

// authorizeRestaurant verifies that the restaurant exists and belongs to the
// acting vendor. Vendor identity is threaded explicitly into every operation
// rather than read from ambient state.
func (s *CatalogService) authorizeRestaurant(ctx context.Context, vendorID, restaurantID int64) error {
	restaurant, err := s.store.GetRestaurantByID(ctx, restaurantID)
	if err != nil {
		return storeFailure("get restaurant", err)
	}
	if restaurant == nil {
		return ErrRestaurantNotFound
	}
	if restaurant.VendorID != vendorID {
		return ErrNotRestaurantOwner
	}
	return nil
}

func (s *CatalogService) getOwnedListing(ctx context.Context, vendorID, listingID int64) (*models.MenuListing, error) {
	listing, err := s.store.GetListingByID(ctx, listingID)
	if err != nil {
		return nil, storeFailure("get listing", err)
	}
	if listing == nil {
		return nil, ErrListingNotFound
	}
	if err := s.authorizeRestaurant(ctx, vendorID, listing.RestaurantID); err != nil {
		return nil, err
	}
	return listing, nil
}

// validateCommerceFields checks the vendor-owned commerce fields
func validateCommerceFields(c *CommerceFields) error {
	if c == nil {
		return invalidField("commerce_fields", "missing")
	}
	if c.PriceCents <= 0 {
		return invalidField("price_cents", "must be greater than zero")
	}
	for _, opt := range c.SizeOptions {
		if opt == "" {
			return invalidField("size_options", "entries must be non-empty")
		}
	}
	return nil
}

// validateCatalogFields checks the dish profile of a new-dish proposal
func validateCatalogFields(f *CatalogFields) error {
	if f == nil {
		return invalidField("catalog_fields", "missing")
	}
	if f.Name == "" {
		return invalidField("name", "required")
	}
	if f.Description == "" {
		return invalidField("description", "required")
	}
	if f.Category == "" {
		return invalidField("category", "required")
	}
	if !models.ValidCategory(f.Category) {
		return invalidField("category", "unknown category")
	}
	if f.CountryOfOrigin == "" {
		return invalidField("country_of_origin", "required")
	}
	if f.SpiceLevel < 0 || f.SpiceLevel > 5 {
		return invalidField("spice_level", "must be between 1 and 5")
	}
	if f.CalorieEstimate < 0 {
		return invalidField("calorie_estimate", "must not be negative")
	}
	return nil
}

// listingFromCatalogItem snapshots editorial fields from an active catalog
// item into a new, immediately orderable listing.
func listingFromCatalogItem(item *models.CatalogItem, restaurantID int64, c *CommerceFields) *models.MenuListing {
	active := true
	if c.IsActive != nil {
		active = *c.IsActive
	}

	catalogItemID := item.ID
	return &models.MenuListing{
		RestaurantID:      restaurantID,
		CatalogItemID:     &catalogItemID,
		Name:              item.Name,
		Description:       item.Description,
		Category:          item.Category,
		CountryOfOrigin:   item.CountryOfOrigin,
		PriceCents:        c.PriceCents,
		SizeOptions:       c.SizeOptions,
		CustomIngredients: c.CustomIngredients,
		RestaurantNotes:   c.RestaurantNotes,
		IsChefSpecial:     c.IsChefSpecial,
		IsActive:          active,
		DesiredActive:     active,
		Status:            models.ListingStatusActive,
	}
}

// catalogItemFromFields builds the pending catalog item of a proposal
func catalogItemFromFields(f *CatalogFields, restaurantID int64) *models.CatalogItem {
	return &models.CatalogItem{
		Name:                  f.Name,
		Description:           f.Description,
		Category:              f.Category,
		CountryOfOrigin:       f.CountryOfOrigin,
		SpiceLevel:            f.SpiceLevel,
		OriginStory:           f.OriginStory,
		BaseIngredients:       f.BaseIngredients,
		CulturalSignificance:  f.CulturalSignificance,
		IsVegetarian:          f.IsVegetarian,
		IsVegan:               f.IsVegan,
		IsHalal:               f.IsHalal,
		CalorieEstimate:       f.CalorieEstimate,
		NativeRegions:         f.NativeRegions,
		TasteProfile:          f.TasteProfile,
		Status:                models.CatalogStatusPendingApproval,
		SubmittedByRestaurant: &restaurantID,
	}
}

// applyCatalogFields overwrites an item's editorial profile in place. Status,
// provenance and timestamps are not touched.
func applyCatalogFields(item *models.CatalogItem, f *CatalogFields) {
	item.Name = f.Name
	item.Description = f.Description
	item.Category = f.Category
	item.CountryOfOrigin = f.CountryOfOrigin
	item.SpiceLevel = f.SpiceLevel
	item.OriginStory = f.OriginStory
	item.BaseIngredients = f.BaseIngredients
	item.CulturalSignificance = f.CulturalSignificance
	item.IsVegetarian = f.IsVegetarian
	item.IsVegan = f.IsVegan
	item.IsHalal = f.IsHalal
	item.CalorieEstimate = f.CalorieEstimate
	item.NativeRegions = f.NativeRegions
	item.TasteProfile = f.TasteProfile
}

// pendingListingFromFields builds the proposal's listing. The listing is
// forced off the menu regardless of the requested availability; the request
// is remembered in DesiredActive and restored on approval.
func pendingListingFromFields(f *CatalogFields, restaurantID int64, c *CommerceFields) *models.MenuListing {
	desired := true
	if c.IsActive != nil {
		desired = *c.IsActive
	}

	return &models.MenuListing{
		RestaurantID:      restaurantID,
		Name:              f.Name,
		Description:       f.Description,
		Category:          f.Category,
		CountryOfOrigin:   f.CountryOfOrigin,
		PriceCents:        c.PriceCents,
		SizeOptions:       c.SizeOptions,
		CustomIngredients: c.CustomIngredients,
		RestaurantNotes:   c.RestaurantNotes,
		IsChefSpecial:     c.IsChefSpecial,
		IsActive:          false,
		DesiredActive:     desired,
		Status:            models.ListingStatusPendingApproval,
	}
}

// applyListingUpdate applies a partial update in place, enforcing the
// visibility rules for pending and rejected listings.
func applyListingUpdate(listing *models.MenuListing, req *UpdateListingRequest) error {
	if req.PriceCents != nil {
		if *req.PriceCents <= 0 {
			return invalidField("price_cents", "must be greater than zero")
		}
		listing.PriceCents = *req.PriceCents
	}
	if req.SizeOptions != nil {
		for _, opt := range *req.SizeOptions {
			if opt == "" {
				return invalidField("size_options", "entries must be non-empty")
			}
		}
		listing.SizeOptions = *req.SizeOptions
	}
	if req.CustomIngredients != nil {
		listing.CustomIngredients = *req.CustomIngredients
	}
	if req.RestaurantNotes != nil {
		listing.RestaurantNotes = *req.RestaurantNotes
	}
	if req.IsChefSpecial != nil {
		listing.IsChefSpecial = *req.IsChefSpecial
	}
	if req.IsActive != nil {
		listing.DesiredActive = *req.IsActive
		// Only an active listing can actually be switched on; pending and
		// rejected listings stay off the menu.
		if listing.Status == models.ListingStatusActive {
			listing.IsActive = *req.IsActive
		} else {
			listing.IsActive = false
		}
	}

	if req.Name != nil {
		if *req.Name == "" {
			return invalidField("name", "must be non-empty")
		}
		listing.Name = *req.Name
	}
	if req.Description != nil {
		listing.Description = *req.Description
	}
	if req.Category != nil {
		if !models.ValidCategory(*req.Category) {
			return invalidField("category", "unknown category")
		}
		listing.Category = *req.Category
	}
	if req.CountryOfOrigin != nil {
		listing.CountryOfOrigin = *req.CountryOfOrigin
	}
	return nil
}
