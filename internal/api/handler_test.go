package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"catalog-service/internal/service"
	"catalog-service/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondErrorMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", &service.ValidationError{Field: "price_cents", Reason: "must be greater than zero"}, http.StatusBadRequest},
		{"catalog not found", service.ErrCatalogItemNotFound, http.StatusNotFound},
		{"listing not found", service.ErrListingNotFound, http.StatusNotFound},
		{"restaurant not found", service.ErrRestaurantNotFound, http.StatusNotFound},
		{"not active", service.ErrCatalogItemNotActive, http.StatusConflict},
		{"editorial locked", service.ErrEditorialFieldsLocked, http.StatusConflict},
		{"not owner", service.ErrNotRestaurantOwner, http.StatusForbidden},
		{"partial write", &store.PartialWriteError{CatalogItemID: 9, Orphaned: true, Err: errors.New("boom")}, http.StatusInternalServerError},
		{"store unavailable", service.ErrStoreUnavailable, http.StatusServiceUnavailable},
		{"wrapped store unavailable", errors.Join(service.ErrStoreUnavailable, errors.New("timeout")), http.StatusServiceUnavailable},
		{"unknown", errors.New("surprise"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)

			respondError(c, tc.err)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestVendorIdentityMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(vendorIdentity())
	router.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"vendor_id": vendorID(c)})
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("X-Vendor-ID", "not-a-number")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("X-Vendor-ID", "7")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"vendor_id":7}`, rec.Body.String())
}

func TestParamID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/things/:id", func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id})
	})

	req := httptest.NewRequest(http.MethodGet, "/things/12", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	for _, bad := range []string{"abc", "0", "-3"} {
		req = httptest.NewRequest(http.MethodGet, "/things/"+bad, nil)
		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, bad)
	}
}
