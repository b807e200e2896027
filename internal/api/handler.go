package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"catalog-service/internal/blob"
	"catalog-service/internal/service"
	"catalog-service/internal/store"
	"catalog-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const vendorIDKey = "vendorID"

// Handler contains HTTP handlers
type Handler struct {
	catalogService    *service.CatalogService
	moderationService *service.ModerationService
	uploader          blob.Uploader
	maxImageBytes     int64
}

// NewHandler creates a new HTTP handler
func NewHandler(
	catalogService *service.CatalogService,
	moderationService *service.ModerationService,
	uploader blob.Uploader,
	maxImageBytes int64,
) *Handler {
	return &Handler{
		catalogService:    catalogService,
		moderationService: moderationService,
		uploader:          uploader,
		maxImageBytes:     maxImageBytes,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		vendor := v1.Group("/")
		vendor.Use(vendorIdentity())
		{
			vendor.GET("/catalog/search", h.searchCatalog)
			vendor.GET("/restaurants/:id/listings", h.listListings)
			vendor.POST("/restaurants/:id/listings/attach", h.attachListing)
			vendor.POST("/restaurants/:id/listings/propose", h.proposeDish)
			vendor.GET("/listings/:id", h.getListing)
			vendor.PATCH("/listings/:id", h.updateListing)
			vendor.DELETE("/listings/:id", h.deleteListing)
			vendor.POST("/listings/:id/image", h.uploadListingImage)
		}

		// Moderation and editorial curation; authenticated upstream by the
		// admin gateway.
		v1.POST("/admin/catalog/:id/decision", h.decideCatalogItem)
		v1.PUT("/admin/catalog/:id", h.updateCatalogItem)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// searchCatalog handles catalog search queries
func (h *Handler) searchCatalog(c *gin.Context) {
	items, err := h.catalogService.SearchCatalog(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

type attachListingRequest struct {
	CatalogItemID int64 `json:"catalog_item_id" binding:"required"`
	service.CommerceFields
}

// attachListing creates a listing from an existing active catalog item
func (h *Handler) attachListing(c *gin.Context) {
	restaurantID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req attachListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	listing, err := h.catalogService.AttachListing(
		c.Request.Context(), vendorID(c), restaurantID, req.CatalogItemID, &req.CommerceFields)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, listing)
}

type proposeDishRequest struct {
	Catalog  service.CatalogFields  `json:"catalog" binding:"required"`
	Commerce service.CommerceFields `json:"commerce" binding:"required"`
}

// proposeDish submits a new dish proposal
func (h *Handler) proposeDish(c *gin.Context) {
	restaurantID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req proposeDishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	result, err := h.catalogService.ProposeNewDish(
		c.Request.Context(), vendorID(c), restaurantID, &req.Catalog, &req.Commerce)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"catalog_item": result.CatalogItem,
		"menu_listing": result.MenuListing,
		"message":      "Dish submitted for review. The listing will become orderable once approved.",
	})
}

// listListings returns all listings of a restaurant
func (h *Handler) listListings(c *gin.Context) {
	restaurantID, ok := paramID(c, "id")
	if !ok {
		return
	}

	listings, err := h.catalogService.ListListings(c.Request.Context(), vendorID(c), restaurantID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"listings": listings})
}

// getListing returns a single listing
func (h *Handler) getListing(c *gin.Context) {
	listingID, ok := paramID(c, "id")
	if !ok {
		return
	}

	listing, err := h.catalogService.GetListing(c.Request.Context(), vendorID(c), listingID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, listing)
}

// updateListing applies a partial update to a listing
func (h *Handler) updateListing(c *gin.Context) {
	listingID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req service.UpdateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	listing, err := h.catalogService.UpdateCommerceFields(c.Request.Context(), vendorID(c), listingID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, listing)
}

// deleteListing removes a listing and cleans up its image
func (h *Handler) deleteListing(c *gin.Context) {
	listingID, ok := paramID(c, "id")
	if !ok {
		return
	}

	imageURL, err := h.catalogService.DeleteListing(c.Request.Context(), vendorID(c), listingID)
	if err != nil {
		respondError(c, err)
		return
	}

	if imageURL != "" && h.uploader != nil {
		if err := h.uploader.Delete(c.Request.Context(), imageURL); err != nil {
			util.GetLogger().Warn("Failed to delete listing image", zap.Error(err))
		}
	}

	c.Status(http.StatusNoContent)
}

type decisionRequest struct {
	Decision string `json:"decision" binding:"required"`
	Reason   string `json:"reason,omitempty"`
}

// decideCatalogItem applies a moderation decision
func (h *Handler) decideCatalogItem(c *gin.Context) {
	catalogItemID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req decisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	result, err := h.moderationService.OnCatalogItemDecided(
		c.Request.Context(), catalogItemID, req.Decision, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// updateCatalogItem revises a catalog item's editorial profile. Listings
// created earlier keep their snapshot.
func (h *Handler) updateCatalogItem(c *gin.Context) {
	catalogItemID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req service.CatalogFields
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	item, err := h.moderationService.UpdateCatalogEditorial(c.Request.Context(), catalogItemID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// respondError maps workflow errors to HTTP responses. "Not found", "not yet
// available" and "try again" are deliberately distinct.
func respondError(c *gin.Context, err error) {
	var validationErr *service.ValidationError
	var partialErr *store.PartialWriteError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": validationErr.Error(),
			"field": validationErr.Field,
		})
	case errors.Is(err, service.ErrCatalogItemNotFound),
		errors.Is(err, service.ErrListingNotFound),
		errors.Is(err, service.ErrRestaurantNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrCatalogItemNotActive):
		c.JSON(http.StatusConflict, gin.H{
			"error": "This dish is awaiting platform approval and cannot be added yet",
		})
	case errors.Is(err, service.ErrEditorialFieldsLocked):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Name, description, category and country come from the shared catalog and cannot be edited here",
		})
	case errors.Is(err, service.ErrNotRestaurantOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.As(err, &partialErr):
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":            "Dish proposal failed mid-write",
			"catalog_item_id":  partialErr.CatalogItemID,
			"orphaned_catalog": partialErr.Orphaned,
		})
	case errors.Is(err, service.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Temporary storage problem, please retry",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}

// vendorIdentity extracts the authenticated vendor id set by the upstream
// identity provider. Requests without one are unauthenticated.
func vendorIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.GetHeader("X-Vendor-ID"), 10, 64)
		if err != nil || id <= 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Missing or invalid vendor identity",
			})
			return
		}
		c.Set(vendorIDKey, id)
		c.Next()
	}
}

func vendorID(c *gin.Context) int64 {
	return c.GetInt64(vendorIDKey)
}

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return id, true
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
