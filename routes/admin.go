package routes

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"service-marketplace-server/database"
	"service-marketplace-server/events"
	"service-marketplace-server/middleware"
	"service-marketplace-server/models"
	"service-marketplace-server/services"
)

// AdminCreateUserRequest provisions a new account of any role
type AdminCreateUserRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required"`
}

// AdminUpdateUserRequest edits an existing account
type AdminUpdateUserRequest struct {
	FullName *string `json:"full_name"`
	Email    *string `json:"email"`
	IsActive *bool   `json:"is_active"`
}

// AdminResetPasswordRequest sets a new password for an account
type AdminResetPasswordRequest struct {
	Password string `json:"password" binding:"required,min=8"`
}

// RegisterAdminRoutes registers the admin user-management endpoints. The
// whole group is gated to admins.
func RegisterAdminRoutes(rg *gin.RouterGroup, jwtService *services.JWTService, bus *events.Bus) {
	admin := rg.Group("/admin", middleware.AdminMiddleware())

	admin.GET("/users", listUsers)
	admin.POST("/users", adminCreateUser(jwtService, bus))
	admin.PUT("/users/:id", adminUpdateUser(jwtService, bus))
	admin.POST("/users/:id/reset-password", adminResetPassword(jwtService))
	admin.DELETE("/users/:id", adminDeleteUser(jwtService, bus))
}

func userID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid user id",
			"message": "User id must be a positive integer",
		})
		return 0, false
	}
	return uint(id), true
}

// listUsers returns all accounts, optionally filtered by role
func listUsers(c *gin.Context) {
	query := database.DB.Model(&models.User{})
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}

	var users []models.User
	if err := query.Order("created_at DESC").Find(&users).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": users,
		"count": len(users),
	})
}

// adminCreateUser provisions an account of any role, including admin. The
// role profile row is created in the same transaction.
func adminCreateUser(jwtService *services.JWTService, bus *events.Bus) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AdminCreateUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request data",
				"message": err.Error(),
			})
			return
		}

		role := models.UserRole(req.Role)
		user := models.User{Role: role}
		if !user.IsValidRole() {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid role",
				"message": "Role must be customer, worker or admin",
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

		user.FullName = req.FullName
		user.Email = email
		user.PasswordHash = hashedPassword
		user.IsActive = true

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

		log.Printf("👤 Admin created %s account %d (%s)", role, user.ID, user.Email)
		bus.Publish(events.Event{Type: events.UserUpdated, UserID: user.ID})
		c.JSON(http.StatusCreated, gin.H{"user": user})
	}
}

// adminUpdateUser edits identity fields and the active flag. Deactivation
// revokes every refresh token so existing sessions die with the account.
func adminUpdateUser(jwtService *services.JWTService, bus *events.Bus) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := userID(c)
		if !ok {
			return
		}

		var req AdminUpdateUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request data",
				"message": err.Error(),
			})
			return
		}

		var user models.User
		if err := database.DB.First(&user, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "User not found",
				"message": "No user exists with this id",
			})
			return
		}

		if req.FullName != nil && *req.FullName != "" {
			user.FullName = *req.FullName
		}
		if req.Email != nil && *req.Email != "" {
			user.Email = strings.ToLower(strings.TrimSpace(*req.Email))
		}
		deactivated := false
		if req.IsActive != nil {
			deactivated = user.IsActive && !*req.IsActive
			user.IsActive = *req.IsActive
		}

		if err := database.DB.Save(&user).Error; err != nil {
			respondError(c, err)
			return
		}

		if deactivated {
			if err := jwtService.RevokeAllUserTokens(user.ID); err != nil {
				log.Printf("⚠️ Could not revoke tokens for deactivated user %d: %v", user.ID, err)
			}
			log.Printf("🚫 User %d deactivated by admin", user.ID)
		}

		bus.Publish(events.Event{Type: events.UserUpdated, UserID: user.ID})
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

// adminResetPassword sets a new password and revokes existing sessions
func adminResetPassword(jwtService *services.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := userID(c)
		if !ok {
			return
		}

		var req AdminResetPasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request data",
				"message": err.Error(),
			})
			return
		}

		var user models.User
		if err := database.DB.First(&user, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "User not found",
				"message": "No user exists with this id",
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

		if err := database.DB.Model(&user).Update("password_hash", hashedPassword).Error; err != nil {
			respondError(c, err)
			return
		}

		if err := jwtService.RevokeAllUserTokens(user.ID); err != nil {
			log.Printf("⚠️ Could not revoke tokens for user %d after password reset: %v", user.ID, err)
		}

		log.Printf("🔑 Password reset for user %d by admin", user.ID)
		c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully"})
	}
}

// adminDeleteUser removes an account and its role profile. Requests and
// reviews keep their ids; history survives the account.
func adminDeleteUser(jwtService *services.JWTService, bus *events.Bus) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := userID(c)
		if !ok {
			return
		}

		actor, ok := currentUser(c)
		if !ok {
			return
		}
		if actor.ID == id {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid operation",
				"message": "Admins cannot delete their own account",
			})
			return
		}

		var user models.User
		if err := database.DB.First(&user, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "User not found",
				"message": "No user exists with this id",
			})
			return
		}

		err := database.DB.Transaction(func(tx *gorm.DB) error {
			switch user.Role {
			case models.RoleWorker:
				if err := tx.Where("user_id = ?", user.ID).Delete(&models.WorkerProfile{}).Error; err != nil {
					return err
				}
			case models.RoleCustomer:
				if err := tx.Where("user_id = ?", user.ID).Delete(&models.CustomerProfile{}).Error; err != nil {
					return err
				}
			}
			if err := tx.Where("user_id = ?", user.ID).Delete(&models.RefreshToken{}).Error; err != nil {
				return err
			}
			return tx.Delete(&user).Error
		})
		if err != nil {
			respondError(c, err)
			return
		}

		log.Printf("🗑️ User %d (%s) deleted by admin %d", user.ID, user.Role, actor.ID)
		bus.Publish(events.Event{Type: events.UserDeleted, UserID: user.ID})
		c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
	}
}
