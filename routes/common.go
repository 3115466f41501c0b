package routes

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"service-marketplace-server/apperrors"
	"service-marketplace-server/database"
	"service-marketplace-server/middleware"
	"service-marketplace-server/models"
)

// respondError translates service errors into HTTP responses. Unknown
// errors become 500 without leaking internals.
func respondError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("❌ %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(status, gin.H{
			"error":   "Internal server error",
			"message": "Something went wrong. Please try again.",
		})
		return
	}
	c.JSON(status, gin.H{
		"error":   http.StatusText(status),
		"message": err.Error(),
	})
}

// currentUser returns the authenticated user or aborts with 401
func currentUser(c *gin.Context) (*models.User, bool) {
	user, exists := middleware.GetUser(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "Authentication required",
			"message": "Please provide a valid token",
		})
		return nil, false
	}
	return user, true
}

// currentWorkerProfile resolves the acting user's worker profile. Worker
// actions are keyed by profile id, not user id.
func currentWorkerProfile(c *gin.Context) (*models.WorkerProfile, bool) {
	user, ok := currentUser(c)
	if !ok {
		return nil, false
	}
	var profile models.WorkerProfile
	if err := database.DB.Where("user_id = ?", user.ID).First(&profile).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Worker profile not found",
			"message": "No worker profile exists for this account",
		})
		return nil, false
	}
	return &profile, true
}
