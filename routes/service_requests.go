package routes

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"service-marketplace-server/database"
	"service-marketplace-server/middleware"
	"service-marketplace-server/models"
	"service-marketplace-server/services"
)

// OfferRequest carries a worker's offer or quote amount
type OfferRequest struct {
	Amount float64 `json:"amount" binding:"required"`
	Notes  string  `json:"notes"`
}

// WorkerSelectionRequest names the worker a customer is acting on
type WorkerSelectionRequest struct {
	WorkerID uint `json:"worker_id" binding:"required"`
}

// ScheduleRequest carries a proposed inspection or work slot
type ScheduleRequest struct {
	ScheduledFor time.Time `json:"scheduled_for" binding:"required"`
}

// PaymentRequest carries the payment marker
type PaymentRequest struct {
	Status string `json:"status" binding:"required"`
}

// RegisterServiceRequestRoutes registers the request lifecycle endpoints.
// Customer actions are gated to customers, worker actions to workers; the
// service layer enforces ownership and assignment on top of that.
func RegisterServiceRequestRoutes(rg *gin.RouterGroup, lifecycle *services.LifecycleService) {
	customer := middleware.CustomerMiddleware()
	worker := middleware.WorkerMiddleware()

	rg.POST("/requests", customer, createRequest(lifecycle))
	rg.GET("/requests", listRequests)
	rg.GET("/requests/:id", getRequest(lifecycle))

	rg.POST("/requests/:id/interest", worker, expressInterest(lifecycle))
	rg.POST("/requests/:id/offers", worker, submitQuoteOffer(lifecycle))

	rg.POST("/requests/:id/select-worker", customer, selectWorker(lifecycle))
	rg.POST("/requests/:id/choose-offer", customer, chooseOffer(lifecycle))
	rg.POST("/requests/:id/confirm-worker", customer, customerAction(lifecycle.CustomerConfirmWorker))

	rg.POST("/requests/:id/inspection/propose", worker, scheduleAction(lifecycle.ProposeInspection))
	rg.POST("/requests/:id/inspection/confirm", customer, customerAction(lifecycle.CustomerConfirmInspection))
	rg.POST("/requests/:id/inspection/complete", worker, workerAction(lifecycle.WorkerCompleteInspection))
	rg.POST("/requests/:id/inspection/confirm-completed", customer, customerAction(lifecycle.CustomerConfirmInspectionCompleted))

	rg.POST("/requests/:id/quote", worker, submitQuote(lifecycle))
	rg.POST("/requests/:id/quote/approve", customer, customerAction(lifecycle.ApproveQuote))

	rg.POST("/requests/:id/work/schedule", worker, scheduleAction(lifecycle.ScheduleWork))
	rg.POST("/requests/:id/work/confirm-schedule", customer, customerAction(lifecycle.CustomerConfirmWorkSchedule))
	rg.POST("/requests/:id/work/complete", worker, workerAction(lifecycle.WorkerCompleteWork))
	rg.POST("/requests/:id/work/confirm-completed", customer, customerAction(lifecycle.CustomerConfirmWorkCompleted))

	rg.POST("/requests/:id/payment", worker, markPayment(lifecycle))
}

func requestID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request id",
			"message": "Request id must be a positive integer",
		})
		return 0, false
	}
	return uint(id), true
}

// createRequest opens a new service request
func createRequest(lifecycle *services.LifecycleService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		var input models.ServiceRequestCreate
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request data",
				"message": err.Error(),
			})
			return
		}

		req, err := lifecycle.CreateRequest(user, input)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{"request": req})
	}
}

// listRequests returns requests filtered by status, category or owner.
// Workers typically list open requests; customers list their own.
func listRequests(c *gin.Context) {
	query := database.DB.Model(&models.ServiceRequest{})

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if mine := c.Query("mine"); mine == "true" {
		user, ok := currentUser(c)
		if !ok {
			return
		}
		switch user.Role {
		case models.RoleCustomer:
			query = query.Where("customer_id = ?", user.ID)
		case models.RoleWorker:
			var profile models.WorkerProfile
			if err := database.DB.Where("user_id = ?", user.ID).First(&profile).Error; err == nil {
				query = query.Where("accepted_worker_id = ? OR ? = ANY(interested_worker_ids)", profile.ID, int64(profile.ID))
			}
		}
	}

	var requests []models.ServiceRequest
	if err := query.Order("created_at DESC").Find(&requests).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"requests": requests,
		"count":    len(requests),
	})
}

// getRequest returns one request with resolved references
func getRequest(lifecycle *services.LifecycleService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := requestID(c)
		if !ok {
			return
		}

		req, err := lifecycle.GetRequest(id)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"request": req})
	}
}

func expressInterest(lifecycle *services.LifecycleService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := requestID(c)
		if !ok {
			return
		}
		profile, ok := currentWorkerProfile(c)
		if !ok {
			return
		}

		req, err := lifecycle.ExpressInterest(profile.ID, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"request": req})
	}
}

func submitQuoteOffer(lifecycle *services.LifecycleService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := requestID(c)
		if !ok {
			return
		}
		profile, ok := currentWorkerProfile(c)
		if !ok {
			return
		}

		var input OfferRequest
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request data",
				"message": err.Error(),
			})
			return
		}

		req, err := lifecycle.SubmitQuoteOffer(profile.ID, id, input.Amount, input.Notes)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"request": req})
	}
}

func selectWorker(lifecycle *services.LifecycleService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := requestID(c)
		if !ok {
			return
		}
		user, ok := currentUser(c)
		if !ok {
			return
		}

		var input WorkerSelectionRequest
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request data",
				"message": err.Error(),
			})
			return
		}

		req, err := lifecycle.SelectWorker(user, id, input.WorkerID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"request": req})
	}
}

func chooseOffer(lifecycle *services.LifecycleService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := requestID(c)
		if !ok {
			return
		}
		user, ok := currentUser(c)
		if !ok {
			return
		}

		var input WorkerSelectionRequest
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request data",
				"message": err.Error(),
			})
			return
		}

		req, err := lifecycle.ChooseOffer(user, id, input.WorkerID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"request": req})
	}
}

func submitQuote(lifecycle *services.LifecycleService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := requestID(c)
		if !ok {
			return
		}
		profile, ok := currentWorkerProfile(c)
		if !ok {
			return
		}

		var input OfferRequest
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request data",
				"message": err.Error(),
			})
			return
		}

		req, err := lifecycle.SubmitQuote(profile.ID, id, input.Amount, input.Notes)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"request": req})
	}
}

func markPayment(lifecycle *services.LifecycleService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := requestID(c)
		if !ok {
			return
		}
		profile, ok := currentWorkerProfile(c)
		if !ok {
			return
		}

		var input PaymentRequest
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request data",
				"message": err.Error(),
			})
			return
		}

		req, err := lifecycle.MarkPayment(profile.ID, id, input.Status)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"request": req})
	}
}

// customerAction wraps the body-less customer confirmations
func customerAction(op func(*models.User, uint) (*models.ServiceRequest, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := requestID(c)
		if !ok {
			return
		}
		user, ok := currentUser(c)
		if !ok {
			return
		}

		req, err := op(user, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"request": req})
	}
}

// workerAction wraps the body-less worker completions
func workerAction(op func(uint, uint) (*models.ServiceRequest, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := requestID(c)
		if !ok {
			return
		}
		profile, ok := currentWorkerProfile(c)
		if !ok {
			return
		}

		req, err := op(profile.ID, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"request": req})
	}
}

// scheduleAction wraps the worker scheduling proposals
func scheduleAction(op func(uint, uint, time.Time) (*models.ServiceRequest, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := requestID(c)
		if !ok {
			return
		}
		profile, ok := currentWorkerProfile(c)
		if !ok {
			return
		}

		var input ScheduleRequest
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request data",
				"message": err.Error(),
			})
			return
		}

		req, err := op(profile.ID, id, input.ScheduledFor)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"request": req})
	}
}
