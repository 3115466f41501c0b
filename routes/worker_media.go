package routes

import (
	"context"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gin-gonic/gin"

	"service-marketplace-server/config"
	"service-marketplace-server/database"
	"service-marketplace-server/middleware"
)

// validateImageFile validates mimetype and size (<= 5MB)
func validateImageFile(h *multipart.FileHeader) bool {
	if h == nil || h.Size <= 0 || h.Size > 5*1024*1024 {
		return false
	}
	ext := strings.ToLower(filepath.Ext(h.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
		return true
	default:
		return false
	}
}

// RegisterWorkerMediaRoutes adds the promo poster upload endpoint
func RegisterWorkerMediaRoutes(rg *gin.RouterGroup) {
	rg.POST("/workers/profile/poster", middleware.WorkerMiddleware(), uploadPromoPoster)
}

// uploadPromoPoster stores the worker's promotional poster on Cloudinary
// and saves its URL on the profile
func uploadPromoPoster(c *gin.Context) {
	profile, ok := currentWorkerProfile(c)
	if !ok {
		return
	}

	if err := c.Request.ParseMultipartForm(10 << 20); err != nil { // 10MB
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid form data"})
		return
	}

	header, err := c.FormFile("poster")
	if err != nil || header == nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "No poster file provided"})
		return
	}
	if !validateImageFile(header) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Poster must be a jpg, png or webp image under 5MB"})
		return
	}

	cloudinaryURL := config.AppConfig.Cloudinary.URL
	if cloudinaryURL == "" {
		log.Printf("❌ CLOUDINARY_URL not set")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Cloudinary not configured"})
		return
	}

	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		log.Printf("❌ Failed to initialize Cloudinary: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Cloudinary initialization failed"})
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Could not read poster file"})
		return
	}
	defer file.Close()

	ow := true
	uf := true
	folder := config.AppConfig.Cloudinary.Folder + "/" + strconv.Itoa(int(profile.ID))
	up, err := cld.Upload.Upload(context.Background(), file, uploader.UploadParams{
		Folder:         folder,
		PublicID:       strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename)),
		Overwrite:      &ow,
		UniqueFilename: &uf,
		ResourceType:   "image",
	})
	if err != nil {
		log.Printf("❌ Poster upload failed for worker %d: %v", profile.ID, err)
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Poster upload failed"})
		return
	}

	profile.PromoPosterURL = &up.SecureURL
	profile.UpdatedAt = time.Now()
	if err := database.DB.Save(profile).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to save profile"})
		return
	}

	log.Printf("📸 Promo poster uploaded for worker %d", profile.ID)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"promo_poster_url": up.SecureURL},
	})
}
