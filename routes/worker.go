package routes

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"

	"service-marketplace-server/database"
	"service-marketplace-server/middleware"
	"service-marketplace-server/models"
)

// RegisterWorkerRoutes registers worker directory and profile routes
func RegisterWorkerRoutes(rg *gin.RouterGroup) {
	rg.GET("/workers", listWorkers)
	rg.GET("/workers/:id", getWorker)
	rg.PUT("/workers/profile", middleware.WorkerMiddleware(), updateWorkerProfile)
	rg.GET("/categories", listCategories)
}

// listWorkers returns the worker directory, optionally filtered by category
func listWorkers(c *gin.Context) {
	query := database.DB.Preload("User")

	if category := c.Query("category"); category != "" {
		query = query.Where("? = ANY(categories)", category)
	}
	if c.Query("active") == "true" {
		query = query.Joins("JOIN profiles ON profiles.id = worker_profiles.user_id").
			Where("profiles.is_active = ?", true)
	}

	var workers []models.WorkerProfile
	if err := query.Order("rating_avg DESC, jobs_done DESC").Find(&workers).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"workers": workers,
		"count":   len(workers),
	})
}

// getWorker returns one worker profile
func getWorker(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid worker id",
			"message": "Worker id must be a positive integer",
		})
		return
	}

	var worker models.WorkerProfile
	if err := database.DB.Preload("User").First(&worker, uint(id)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Worker not found",
			"message": "No worker profile exists with this id",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"worker": worker})
}

// updateWorkerProfile lets a worker edit their own profile. Rating fields
// and jobs_done are derived and cannot be set here.
func updateWorkerProfile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	profile, ok := currentWorkerProfile(c)
	if !ok {
		return
	}

	var input models.WorkerProfileUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"message": err.Error(),
		})
		return
	}

	if input.Categories != nil {
		for _, cat := range input.Categories {
			if !models.IsValidCategory(models.ServiceRequestCategory(cat)) {
				c.JSON(http.StatusBadRequest, gin.H{
					"error":   "Invalid category",
					"message": "Unknown service category: " + cat,
				})
				return
			}
		}
		profile.Categories = pq.StringArray(input.Categories)
	}
	if input.Skills != nil {
		profile.Skills = pq.StringArray(input.Skills)
	}
	if input.Phone != nil {
		profile.Phone = *input.Phone
	}
	if input.Whatsapp != nil {
		profile.Whatsapp = *input.Whatsapp
	}
	if input.Viber != nil {
		profile.Viber = *input.Viber
	}
	if input.About != nil {
		profile.About = *input.About
	}
	if input.PromoPosterURL != nil {
		profile.PromoPosterURL = input.PromoPosterURL
	}
	profile.UpdatedAt = time.Now()

	if err := database.DB.Save(profile).Error; err != nil {
		respondError(c, err)
		return
	}

	if input.FullName != nil && *input.FullName != "" {
		if err := database.DB.Model(&models.User{}).
			Where("id = ?", user.ID).
			Update("full_name", *input.FullName).Error; err != nil {
			respondError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"worker":  profile,
	})
}

// listCategories returns the closed category set
func listCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": models.AllCategories()})
}
