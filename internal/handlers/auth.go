package handlers

import (
	"errors"
	"net/http"

	"github.com/bloodlink-dev/bloodlink/db"
	"github.com/bloodlink-dev/bloodlink/internal/auth"
	"github.com/bloodlink-dev/bloodlink/internal/models"
	"github.com/bloodlink-dev/bloodlink/internal/services"
	"github.com/bloodlink-dev/bloodlink/internal/utils"
	"github.com/bloodlink-dev/bloodlink/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// RequireEmailConfirmation keeps newly registered users inactive until
// they confirm a code. Wired from config at startup; off by default.
var RequireEmailConfirmation bool

type TokenRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

type ConfirmEmailRequest struct {
	UserID uint   `json:"user_id" binding:"required"`
	Code   string `json:"code" binding:"required"`
}

// Token handles POST /auth/token: username + password in, an
// access/refresh pair out. Inactive accounts are turned away.
func Token(ctx *gin.Context) {
	var body TokenRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var user models.User

	err := db.DB.Where("username = ?", body.Username).First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		logrus.WithError(err).Error("token: failed to fetch user")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if !user.Active {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Account inactive. Please confirm your email before logging in."})
		return
	}

	access, refresh, err := auth.GenerateTokenPair(user.ID)

	if err != nil {
		logrus.WithError(err).Error("token: failed to sign token pair")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, TokenResponse{Access: access, Refresh: refresh})
}

// RefreshToken handles POST /auth/token/refresh.
func RefreshToken(ctx *gin.Context) {
	var body RefreshRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	userID, err := auth.VerifyToken(body.Refresh, auth.TokenRefresh)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired refresh token"})
		return
	}

	access, err := auth.GenerateAccessToken(userID)

	if err != nil {
		logrus.WithError(err).Error("refresh: failed to sign access token")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"access": access})
}

// Me returns the authenticated caller.
func Me(ctx *gin.Context) {
	current, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var user models.User

	if err := db.DB.First(&user, current.ID).Error; err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": userResponse(user)})
}

// ConfirmEmail handles POST /auth/confirm: checks the 6-digit code and
// activates the account. Works whether or not confirmation is required
// for new registrations, so accounts left inactive can still recover.
func ConfirmEmail(ctx *gin.Context) {
	var body ConfirmEmailRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var user models.User

	if err := db.DB.First(&user, body.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		logrus.WithError(err).Error("confirm: failed to fetch user")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ok, err := services.CheckVerificationCode(ctx.Request.Context(), user.ID, body.Code)

	if err != nil {
		logrus.WithError(err).Error("confirm: failed to check code")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if !ok {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired code. Please request a new code."})
		return
	}

	user.Active = true
	user.EmailConfirmed = true

	if err := db.DB.Save(&user).Error; err != nil {
		logrus.WithError(err).Error("confirm: failed to activate user")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Email verified. You can now log in."})
}

// hashPassword wraps bcrypt so registration and user updates share one
// hashing path.
func hashPassword(raw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// checkDuplicates adds field errors for any other user holding the same
// username, email or normalized phone. excludeID skips the user being
// updated.
func checkDuplicates(in validation.RegistrationInput, excludeID uint, errs validation.Errors) error {
	type check struct {
		field, column, value, message string
	}
	checks := []check{
		{"username", "username", in.Username, "A user with that username already exists."},
		{"email", "email", in.Email, "A user with that email already exists."},
	}
	if in.Phone != "" {
		checks = append(checks, check{"phone", "phone", in.Phone, "This phone number is already used by another account."})
	}

	for _, c := range checks {
		if c.value == "" {
			continue
		}
		var count int64
		query := db.DB.Model(&models.User{}).Where(c.column+" = ?", c.value)
		if excludeID != 0 {
			query = query.Where("id <> ?", excludeID)
		}
		if err := query.Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			errs.Add(c.field, c.message)
		}
	}

	return nil
}
