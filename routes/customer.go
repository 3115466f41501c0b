package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"service-marketplace-server/database"
	"service-marketplace-server/middleware"
	"service-marketplace-server/models"
)

// RegisterCustomerRoutes registers customer profile routes
func RegisterCustomerRoutes(rg *gin.RouterGroup) {
	rg.PUT("/customers/profile", middleware.CustomerMiddleware(), updateCustomerProfile)
}

// updateCustomerProfile lets a customer edit their own contact details
func updateCustomerProfile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var profile models.CustomerProfile
	if err := database.DB.Where("user_id = ?", user.ID).First(&profile).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Customer profile not found",
			"message": "No customer profile exists for this account",
		})
		return
	}

	var input models.CustomerProfileUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"message": err.Error(),
		})
		return
	}

	if input.Phone != nil {
		profile.Phone = *input.Phone
	}
	if input.Location != nil {
		profile.Location = *input.Location
	}
	profile.UpdatedAt = time.Now()

	if err := database.DB.Save(&profile).Error; err != nil {
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
		"message":  "Profile updated successfully",
		"customer": profile,
	})
}
