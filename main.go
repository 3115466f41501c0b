package main

import (
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"service-marketplace-server/config"
	"service-marketplace-server/database"
	"service-marketplace-server/events"
	"service-marketplace-server/jobs"
	"service-marketplace-server/middleware"
	"service-marketplace-server/routes"
	"service-marketplace-server/services"
	ws "service-marketplace-server/websocket"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load configuration
	config.Load()

	// Initialize database
	if err := database.Initialize(); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}

	// Seed demo data when enabled and the store is empty
	if config.AppConfig.Seed.DemoData {
		if err := SeedDemoData(); err != nil {
			log.Printf("⚠️ Demo seed failed: %v", err)
		}
	}

	// Set Gin mode
	if config.AppConfig.Server.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Shared infrastructure
	bus := events.NewBus()
	jwtService := services.NewJWTService()
	lifecycleService := services.NewLifecycleService(bus)
	ratingService := services.NewRatingService(bus)
	projectionService := services.NewProjectionService()

	// Create router
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Disable automatic redirects for trailing slashes
	router.RedirectTrailingSlash = false
	router.RedirectFixedPath = false

	// Security headers (must be first)
	router.Use(middleware.SecurityHeadersMiddleware())

	// Input validation
	router.Use(middleware.InputValidationMiddleware())

	// Rate limiting
	router.Use(middleware.RateLimitMiddleware())

	// CORS
	corsConfig := cors.DefaultConfig()
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		corsConfig.AllowOrigins = strings.Split(origins, ",")
	} else {
		corsConfig.AllowOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	corsConfig.AllowCredentials = true
	corsConfig.AddAllowHeaders("Authorization", "X-Device-ID")
	router.Use(cors.New(corsConfig))

	// Audit logging
	router.Use(middleware.AuditLogMiddleware())

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Service Marketplace Server is running",
			"time":    time.Now().UTC(),
		})
	})

	// WebSocket hub relaying store changes to connected clients
	hub := ws.NewHub()
	go hub.Run()
	go hub.RelayEvents(bus.Subscribe(128))

	// API routes
	api := router.Group("/api/v1")
	{
		// Auth routes (no authentication required) - with strict rate limiting
		authRoutes := api.Group("/auth")
		authRoutes.Use(middleware.AuthRateLimitMiddleware())
		routes.RegisterAuthRoutes(authRoutes, jwtService)

		// WebSocket endpoint (token passed via query parameter)
		api.GET("/ws", middleware.WebSocketAuthMiddleware(), func(c *gin.Context) {
			user, _ := middleware.GetUser(c)
			ws.ServeWebSocket(hub, c.Writer, c.Request, user.ID, string(user.Role))
		})

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			routes.RegisterMeRoutes(protected)
			routes.RegisterServiceRequestRoutes(protected, lifecycleService)
			routes.RegisterWorkerRoutes(protected)
			routes.RegisterCustomerRoutes(protected)
			routes.RegisterRatingRoutes(protected, ratingService)
			routes.RegisterOverviewRoutes(protected, projectionService)
			routes.RegisterWorkerMediaRoutes(protected)
			routes.RegisterAdminRoutes(protected, jwtService, bus)
		}
	}

	// Start background jobs
	projectionJob := jobs.NewProjectionJob(projectionService, bus)
	projectionJob.Start()
	defer projectionJob.Stop()

	tokenCleanupJob := jobs.NewTokenCleanupJob(jwtService)
	tokenCleanupJob.Start()
	defer tokenCleanupJob.Stop()

	port := config.AppConfig.Server.Port
	log.Printf("Server starting on port %s", port)
	if err := router.Run("0.0.0.0:" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
