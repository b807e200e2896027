package service

import (
	"context"
	"testing"

	"catalog-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func boolPtr(b bool) *bool    { return &b }
func int64Ptr(n int64) *int64 { return &n }
func strPtr(s string) *string { return &s }

func TestSearchCatalogShortQuery(t *testing.T) {
	// Queries under two characters short-circuit before the store is touched,
	// so a bare service value is enough.
	svc := &CatalogService{logger: zap.NewNop()}

	// "é" and "奶" are one character each despite their multi-byte encoding.
	for _, q := range []string{"", "a", "j", "é", "奶"} {
		items, err := svc.SearchCatalog(context.Background(), q)
		require.NoError(t, err)
		assert.Empty(t, items, "query %q must return no results", q)
	}
}

func TestValidateCommerceFields(t *testing.T) {
	err := validateCommerceFields(nil)
	require.Error(t, err)

	err = validateCommerceFields(&CommerceFields{PriceCents: 0})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "price_cents", vErr.Field)

	err = validateCommerceFields(&CommerceFields{PriceCents: -500})
	assert.Error(t, err)

	err = validateCommerceFields(&CommerceFields{PriceCents: 2299, SizeOptions: []string{"Regular", ""}})
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "size_options", vErr.Field)

	err = validateCommerceFields(&CommerceFields{
		PriceCents:  2299,
		SizeOptions: []string{"Regular", "Family"},
	})
	assert.NoError(t, err)
}

func TestValidateCatalogFields(t *testing.T) {
	valid := func() *CatalogFields {
		return &CatalogFields{
			Name:            "Suya Platter",
			Description:     "Spiced grilled beef skewers",
			Category:        models.CategoryMeatsSeafood,
			CountryOfOrigin: "Nigeria",
			SpiceLevel:      4,
		}
	}

	assert.NoError(t, validateCatalogFields(valid()))

	cases := []struct {
		field  string
		mutate func(*CatalogFields)
	}{
		{"name", func(f *CatalogFields) { f.Name = "" }},
		{"description", func(f *CatalogFields) { f.Description = "" }},
		{"category", func(f *CatalogFields) { f.Category = "" }},
		{"category", func(f *CatalogFields) { f.Category = "fusion" }},
		{"country_of_origin", func(f *CatalogFields) { f.CountryOfOrigin = "" }},
		{"spice_level", func(f *CatalogFields) { f.SpiceLevel = 6 }},
		{"calorie_estimate", func(f *CatalogFields) { f.CalorieEstimate = -1 }},
	}

	for _, tc := range cases {
		f := valid()
		tc.mutate(f)

		var vErr *ValidationError
		err := validateCatalogFields(f)
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, tc.field, vErr.Field)
	}
}

func TestListingSnapshotFromCatalogItem(t *testing.T) {
	item := &models.CatalogItem{
		ID:              42,
		Name:            "Jollof Rice",
		Description:     "Tomato-based rice dish",
		Category:        models.CategoryRiceDishes,
		CountryOfOrigin: "Ghana",
		Status:          models.CatalogStatusActive,
	}
	commerce := &CommerceFields{PriceCents: 1599, RestaurantNotes: "House recipe"}

	listing := listingFromCatalogItem(item, 7, commerce)

	require.NotNil(t, listing.CatalogItemID)
	assert.Equal(t, int64(42), *listing.CatalogItemID)
	assert.Equal(t, int64(7), listing.RestaurantID)
	assert.Equal(t, "Jollof Rice", listing.Name)
	assert.Equal(t, "Ghana", listing.CountryOfOrigin)
	assert.Equal(t, int64(1599), listing.PriceCents)
	assert.Equal(t, models.ListingStatusActive, listing.Status)
	assert.True(t, listing.IsActive, "availability defaults to true")
	assert.True(t, listing.DesiredActive)

	// Snapshot: later catalog edits must not reach the listing.
	item.Name = "Jollof Rice (updated)"
	item.Description = "New copy"
	assert.Equal(t, "Jollof Rice", listing.Name)
	assert.Equal(t, "Tomato-based rice dish", listing.Description)
}

func TestListingSnapshotHonorsRequestedAvailability(t *testing.T) {
	item := &models.CatalogItem{ID: 1, Name: "Egusi Soup", Status: models.CatalogStatusActive}

	listing := listingFromCatalogItem(item, 3, &CommerceFields{PriceCents: 900, IsActive: boolPtr(false)})
	assert.False(t, listing.IsActive)
	assert.False(t, listing.DesiredActive)
}

func TestPendingListingIsNeverVisible(t *testing.T) {
	fields := &CatalogFields{
		Name:            "Suya Platter",
		Description:     "Spiced grilled beef skewers",
		Category:        models.CategoryMeatsSeafood,
		CountryOfOrigin: "Nigeria",
	}

	// Even an explicit is_active=true request cannot make a pending dish
	// customer-visible; the wish is preserved for approval time.
	listing := pendingListingFromFields(fields, 7, &CommerceFields{PriceCents: 2299, IsActive: boolPtr(true)})

	assert.Equal(t, models.ListingStatusPendingApproval, listing.Status)
	assert.False(t, listing.IsActive)
	assert.True(t, listing.DesiredActive)
	assert.Nil(t, listing.CatalogItemID, "link is set inside the proposal transaction")
}

func TestCatalogItemFromFieldsCarriesProvenance(t *testing.T) {
	fields := &CatalogFields{
		Name:            "Suya Platter",
		Description:     "Spiced grilled beef skewers",
		Category:        models.CategoryMeatsSeafood,
		CountryOfOrigin: "Nigeria",
		BaseIngredients: []string{"beef", "yaji", "onion"},
	}

	item := catalogItemFromFields(fields, 7)

	assert.Equal(t, models.CatalogStatusPendingApproval, item.Status)
	require.NotNil(t, item.SubmittedByRestaurant)
	assert.Equal(t, int64(7), *item.SubmittedByRestaurant)
	assert.Len(t, item.BaseIngredients, 3)
}

func TestApplyListingUpdateCommerce(t *testing.T) {
	listing := &models.MenuListing{
		PriceCents:    1000,
		Status:        models.ListingStatusActive,
		IsActive:      true,
		DesiredActive: true,
	}

	err := applyListingUpdate(listing, &UpdateListingRequest{
		PriceCents:      int64Ptr(1250),
		RestaurantNotes: strPtr("Now with extra pepper"),
		IsChefSpecial:   boolPtr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1250), listing.PriceCents)
	assert.Equal(t, "Now with extra pepper", listing.RestaurantNotes)
	assert.True(t, listing.IsChefSpecial)

	err = applyListingUpdate(listing, &UpdateListingRequest{PriceCents: int64Ptr(0)})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "price_cents", vErr.Field)
}

func TestApplyListingUpdateAvailability(t *testing.T) {
	pending := &models.MenuListing{
		Status:        models.ListingStatusPendingApproval,
		IsActive:      false,
		DesiredActive: false,
	}

	// A pending listing can be price-edited and have availability requested,
	// but stays hidden until approval.
	err := applyListingUpdate(pending, &UpdateListingRequest{IsActive: boolPtr(true)})
	require.NoError(t, err)
	assert.False(t, pending.IsActive)
	assert.True(t, pending.DesiredActive)

	active := &models.MenuListing{
		Status:        models.ListingStatusActive,
		IsActive:      true,
		DesiredActive: true,
	}
	err = applyListingUpdate(active, &UpdateListingRequest{IsActive: boolPtr(false)})
	require.NoError(t, err)
	assert.False(t, active.IsActive)
	assert.False(t, active.DesiredActive)

	rejected := &models.MenuListing{Status: models.ListingStatusRejected}
	err = applyListingUpdate(rejected, &UpdateListingRequest{IsActive: boolPtr(true)})
	require.NoError(t, err)
	assert.False(t, rejected.IsActive, "rejected listings are never orderable")
}

func TestApplyListingUpdateEditorial(t *testing.T) {
	manual := &models.MenuListing{
		Name:     "Grandma's Stew",
		Category: models.CategorySoupsStews,
		Status:   models.ListingStatusActive,
	}

	err := applyListingUpdate(manual, &UpdateListingRequest{
		Name:     strPtr("Grandma's Pepper Stew"),
		Category: strPtr(models.CategoryStreetFood),
	})
	require.NoError(t, err)
	assert.Equal(t, "Grandma's Pepper Stew", manual.Name)
	assert.Equal(t, models.CategoryStreetFood, manual.Category)

	err = applyListingUpdate(manual, &UpdateListingRequest{Category: strPtr("fusion")})
	assert.Error(t, err)

	err = applyListingUpdate(manual, &UpdateListingRequest{Name: strPtr("")})
	assert.Error(t, err)
}

func TestUpdateRequestHasEditorial(t *testing.T) {
	assert.False(t, (&UpdateListingRequest{PriceCents: int64Ptr(100)}).hasEditorial())
	assert.True(t, (&UpdateListingRequest{Name: strPtr("x")}).hasEditorial())
	assert.True(t, (&UpdateListingRequest{CountryOfOrigin: strPtr("Senegal")}).hasEditorial())
}
