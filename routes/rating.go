package routes

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"service-marketplace-server/middleware"
	"service-marketplace-server/models"
	"service-marketplace-server/services"
)

// RegisterRatingRoutes registers review endpoints
func RegisterRatingRoutes(rg *gin.RouterGroup, ratings *services.RatingService) {
	rg.POST("/reviews", middleware.CustomerMiddleware(), createReview(ratings))
	rg.GET("/workers/:id/reviews", listWorkerReviews(ratings))
}

// createReview lets the owning customer rate the accepted worker of a
// completed request
func createReview(ratings *services.RatingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		var input models.ReviewCreate
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request data",
				"message": err.Error(),
			})
			return
		}

		review, err := ratings.AddReview(user, input)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{"review": review})
	}
}

// listWorkerReviews returns a worker's reviews, newest first
func listWorkerReviews(ratings *services.RatingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid worker id",
				"message": "Worker id must be a positive integer",
			})
			return
		}

		reviews, err := ratings.ListWorkerReviews(uint(id))
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"reviews": reviews,
			"count":   len(reviews),
		})
	}
}
