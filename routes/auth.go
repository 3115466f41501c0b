package routes

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"service-marketplace-server/database"
	"service-marketplace-server/middleware"
	"service-marketplace-server/models"
	"service-marketplace-server/services"
)

// RegisterRequest represents the registration request
type RegisterRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role"`
}

// LoginRequest represents the login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest represents the token refresh request
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RegisterAuthRoutes registers authentication routes
func RegisterAuthRoutes(router *gin.RouterGroup, jwtService *services.JWTService) {
	router.POST("/register", register(jwtService))
	router.POST("/login", login(jwtService))
	router.POST("/refresh", refreshToken(jwtService))
	router.POST("/logout", logout(jwtService))
}

// RegisterMeRoutes registers the authenticated identity route
func RegisterMeRoutes(router *gin.RouterGroup) {
	router.GET("/me", me)
}

// register handles self-service signup for customers and workers. Admin
// accounts are provisioned through the admin routes only.
func register(jwtService *services.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request data",
				"message": err.Error(),
			})
			return
		}

		role := models.UserRole(req.Role)
		if role == "" {
			role = models.RoleCustomer
		}
		if role != models.RoleCustomer && role != models.RoleWorker {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid role",
				"message": "Role must be customer or worker",
			})
			return
		}

		if ok, problems := middleware.ValidatePasswordStrength(req.Password); !ok {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Weak password",
				"message": strings.Join(problems, "; "),
			})
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))

		var existing models.User
		if err := database.DB.Where("email = ?", email).First(&existing).Error; err == nil {
			c.JSON(http.StatusConflict, gin.H{
				"error":   "User already exists",
				"message": "A user with this email already exists",
			})
			return
		}

		hashedPassword, err := jwtService.HashPassword(req.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Password hashing failed",
				"message": "Failed to process password",
			})
			return
		}

		user := models.User{
			FullName:     req.FullName,
			Email:        email,
			PasswordHash: hashedPassword,
			Role:         role,
			IsActive:     true,
		}

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
			switch role {
			case models.RoleWorker:
				return tx.Create(&models.WorkerProfile{UserID: user.ID}).Error
			case models.RoleCustomer:
				return tx.Create(&models.CustomerProfile{UserID: user.ID}).Error
			}
			return nil
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "User creation failed",
				"message": "Failed to create user account",
			})
			return
		}

		tokens, err := jwtService.GenerateTokenPair(&user, c.GetHeader("X-Device-ID"), c.Request.UserAgent(), c.ClientIP())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Token generation failed",
				"message": "Failed to generate authentication token",
			})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message":       "User registered successfully",
			"token":         tokens.AccessToken,
			"refresh_token": tokens.RefreshToken,
			"expires_in":    tokens.ExpiresIn,
			"user":          user,
		})
	}
}

// login handles user authentication
func login(jwtService *services.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request data",
				"message": err.Error(),
			})
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))

		var user models.User
		if err := database.DB.Where("email = ?", email).First(&user).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid credentials",
				"message": "Email or password is incorrect",
			})
			return
		}

		if !jwtService.CheckPasswordHash(req.Password, user.PasswordHash) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid credentials",
				"message": "Email or password is incorrect",
			})
			return
		}

		if !user.IsActive {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "User inactive",
				"message": "User account is deactivated",
			})
			return
		}

		tokens, err := jwtService.GenerateTokenPair(&user, c.GetHeader("X-Device-ID"), c.Request.UserAgent(), c.ClientIP())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Token generation failed",
				"message": "Failed to generate authentication token",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message":       "Login successful",
			"token":         tokens.AccessToken,
			"refresh_token": tokens.RefreshToken,
			"expires_in":    tokens.ExpiresIn,
			"user":          user,
		})
	}
}

// refreshToken exchanges a valid refresh token for a new access token
func refreshToken(jwtService *services.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RefreshRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request data",
				"message": err.Error(),
			})
			return
		}

		tokens, err := jwtService.RefreshAccessToken(req.RefreshToken)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid refresh token",
				"message": err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"token":         tokens.AccessToken,
			"refresh_token": tokens.RefreshToken,
			"expires_in":    tokens.ExpiresIn,
		})
	}
}

// logout revokes the presented refresh token
func logout(jwtService *services.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RefreshRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request data",
				"message": err.Error(),
			})
			return
		}

		if err := jwtService.RevokeRefreshToken(req.RefreshToken); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Logout failed",
				"message": err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
	}
}

// me returns the authenticated user with its role profile
func me(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	response := gin.H{"user": user}

	switch user.Role {
	case models.RoleWorker:
		var profile models.WorkerProfile
		if err := database.DB.Where("user_id = ?", user.ID).First(&profile).Error; err == nil {
			response["worker_profile"] = profile
		}
	case models.RoleCustomer:
		var profile models.CustomerProfile
		if err := database.DB.Where("user_id = ?", user.ID).First(&profile).Error; err == nil {
			response["customer_profile"] = profile
		}
	}

	c.JSON(http.StatusOK, response)
}
