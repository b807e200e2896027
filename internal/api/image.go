package api

import (
	"fmt"
	"net/http"
	"path"

	"catalog-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// uploadListingImage stores a dish image in blob storage and records its
// public URL on the listing. Size and content-type limits are enforced here,
// before anything reaches the workflow or the uploader.
func (h *Handler) uploadListingImage(c *gin.Context) {
	listingID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if h.uploader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Image storage is not configured"})
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing image file"})
		return
	}

	if fileHeader.Size > h.maxImageBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": fmt.Sprintf("Image exceeds the %d MB limit", h.maxImageBytes/(1<<20)),
		})
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		c.JSON(http.StatusUnsupportedMediaType, gin.H{
			"error": "Only JPEG, PNG and WebP images are accepted",
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unreadable image file"})
		return
	}
	defer file.Close()

	key := path.Join("dishes", uuid.New().String()+ext)
	publicURL, err := h.uploader.Upload(c.Request.Context(), key, contentType, file)
	if err != nil {
		util.GetLogger().Error("Image upload failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Image storage failed, please retry"})
		return
	}

	previousURL, err := h.catalogService.SetListingImage(c.Request.Context(), vendorID(c), listingID, publicURL)
	if err != nil {
		// The listing was not updated; drop the freshly uploaded object.
		if delErr := h.uploader.Delete(c.Request.Context(), publicURL); delErr != nil {
			util.GetLogger().Warn("Failed to clean up uploaded image", zap.Error(delErr))
		}
		respondError(c, err)
		return
	}

	if previousURL != "" {
		if err := h.uploader.Delete(c.Request.Context(), previousURL); err != nil {
			util.GetLogger().Warn("Failed to delete replaced image", zap.Error(err))
		}
	}

	util.ImageUploadsTotal.Inc()
	c.JSON(http.StatusOK, gin.H{"image_url": publicURL})
}
