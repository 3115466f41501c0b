package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"service-marketplace-server/services"
)

// RegisterOverviewRoutes registers the aggregate read-model endpoint
func RegisterOverviewRoutes(rg *gin.RouterGroup, projection *services.ProjectionService) {
	rg.GET("/overview", getOverview(projection))
}

// getOverview serves the cached dashboard aggregate. Clients needing a
// fresh view pass ?refresh=true.
func getOverview(projection *services.ProjectionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var view *services.Overview
		var err error

		if c.Query("refresh") == "true" {
			view, err = projection.Refresh()
		} else {
			view, err = projection.Overview()
		}
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, view)
	}
}
