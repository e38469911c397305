package handlers

import (
	"errors"
	"net/http"

	"github.com/bloodlink-dev/bloodlink/db"
	"github.com/bloodlink-dev/bloodlink/internal/models"
	"github.com/bloodlink-dev/bloodlink/internal/types"
	"github.com/bloodlink-dev/bloodlink/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Console handlers back the management surface behind RequireConsole
// (active superusers only). This is the one place role=admin can be
// granted.

type ConsoleUserResponse struct {
	types.UserResponse
	Superuser      bool `json:"superuser"`
	EmailConfirmed bool `json:"email_confirmed"`
}

type ConsoleUpdateUserRequest struct {
	Role      *string `json:"role"`
	Active    *bool   `json:"active"`
	Superuser *bool   `json:"superuser"`
}

func consoleUserResponse(user models.User) ConsoleUserResponse {
	return ConsoleUserResponse{
		UserResponse:   userResponse(user),
		Superuser:      user.Superuser,
		EmailConfirmed: user.EmailConfirmed,
	}
}

func ConsoleListUsers(ctx *gin.Context) {
	page, size := utils.Pagination(ctx)

	query := db.DB.Model(&models.User{})

	if role := ctx.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}

	var total int64

	if err := query.Count(&total).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve users"})
		return
	}

	var users []models.User

	if err := query.Order("username").Offset((page - 1) * size).Limit(size).Find(&users).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve users"})
		return
	}

	items := make([]ConsoleUserResponse, 0, len(users))
	for _, user := range users {
		items = append(items, consoleUserResponse(user))
	}

	ctx.JSON(http.StatusOK, types.Page{Items: items, Page: page, Size: size, TotalCount: total})
}

// ConsoleUpdateUser changes role, active and superuser flags.
func ConsoleUpdateUser(ctx *gin.Context) {
	var body ConsoleUpdateUserRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if body.Role != nil && !types.IsValidRole(*body.Role) {
		ctx.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"role": "unknown role"}})
		return
	}

	var user models.User

	if err := db.DB.First(&user, "id = ?", ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
		}
		return
	}

	if body.Role != nil {
		user.Role = *body.Role
	}
	if body.Active != nil {
		user.Active = *body.Active
	}
	if body.Superuser != nil {
		user.Superuser = *body.Superuser
	}

	if err := db.DB.Save(&user).Error; err != nil {
		logrus.WithError(err).Error("console: failed to update user")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, consoleUserResponse(user))
}
