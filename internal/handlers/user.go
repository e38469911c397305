package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/bloodlink-dev/bloodlink/db"
	"github.com/bloodlink-dev/bloodlink/internal/models"
	"github.com/bloodlink-dev/bloodlink/internal/services"
	"github.com/bloodlink-dev/bloodlink/internal/types"
	"github.com/bloodlink-dev/bloodlink/internal/utils"
	"github.com/bloodlink-dev/bloodlink/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type CreateUserRequest struct {
	Username   string `json:"username" binding:"required"`
	Email      string `json:"email" binding:"required"`
	Password   string `json:"password" binding:"required"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Role       string `json:"role"`
	Phone      string `json:"phone"`
	City       string `json:"city"`
	BloodGroup string `json:"blood_group"`
}

type UpdateUserRequest struct {
	Email      *string `json:"email"`
	Password   *string `json:"password"`
	FirstName  *string `json:"first_name"`
	LastName   *string `json:"last_name"`
	Role       *string `json:"role"`
	Phone      *string `json:"phone"`
	City       *string `json:"city"`
	BloodGroup *string `json:"blood_group"`
}

func userResponse(user models.User) types.UserResponse {
	return types.UserResponse{
		ID:         user.ID,
		Username:   user.Username,
		Email:      user.Email,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		Role:       user.Role,
		Phone:      user.PhoneString(),
		City:       user.City,
		BloodGroup: user.BloodGroup,
		Active:     user.Active,
	}
}

// CreateUser is the registration path (POST /users). Role is limited
// to donor and hospital regardless of input, the phone is normalized
// before the uniqueness check, and the user is active immediately
// unless email confirmation is switched on.
func CreateUser(ctx *gin.Context) {
	var body CreateUserRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	in := validation.RegistrationInput{
		Username:   body.Username,
		Email:      body.Email,
		Password:   body.Password,
		FirstName:  body.FirstName,
		LastName:   body.LastName,
		Role:       body.Role,
		Phone:      body.Phone,
		City:       body.City,
		BloodGroup: body.BloodGroup,
	}

	errs := validation.ValidateRegistration(&in)

	if errs.Empty() {
		if err := checkDuplicates(in, 0, errs); err != nil {
			logrus.WithError(err).Error("register: duplicate check failed")
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
	}

	if !errs.Empty() {
		ctx.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		return
	}

	passwordHash, err := hashPassword(in.Password)

	if err != nil {
		logrus.WithError(err).Error("register: failed to hash password")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	user := models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: passwordHash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Role:         in.Role,
		City:         in.City,
		BloodGroup:   in.BloodGroup,
		Active:       !RequireEmailConfirmation,
	}
	if in.Phone != "" {
		user.Phone = &in.Phone
	}

	if err := db.DB.Create(&user).Error; err != nil {
		logrus.WithError(err).Error("register: failed to create user")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if RequireEmailConfirmation {
		if err := services.SendVerificationCode(ctx.Request.Context(), user); err != nil {
			logrus.WithError(err).Warn("register: failed to send verification code")
		}
	}

	ctx.JSON(http.StatusCreated, gin.H{"user": userResponse(user)})
}

func ListUsers(ctx *gin.Context) {
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

	items := make([]types.UserResponse, 0, len(users))
	for _, user := range users {
		items = append(items, userResponse(user))
	}

	ctx.JSON(http.StatusOK, types.Page{Items: items, Page: page, Size: size, TotalCount: total})
}

func GetUser(ctx *gin.Context) {
	var user models.User

	if err := db.DB.First(&user, "id = ?", ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
		}
		return
	}

	ctx.JSON(http.StatusOK, userResponse(user))
}

// UpdateUser serves PUT and PATCH alike: only fields present in the
// body change. Escalation to the admin role is reserved for superusers.
func UpdateUser(ctx *gin.Context) {
	current, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body UpdateUserRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
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

	errs := validation.Errors{}

	if body.Role != nil && *body.Role != user.Role {
		if !types.IsValidRole(*body.Role) {
			errs.Add("role", "unknown role")
		} else if *body.Role == types.RoleAdmin {
			var caller models.User
			if err := db.DB.First(&caller, current.ID).Error; err != nil || !caller.Superuser {
				ctx.JSON(http.StatusForbidden, gin.H{"error": "Only site superusers can grant admin role."})
				return
			}
		}
	}

	// Username is immutable; only email and phone get duplicate checks.
	var in validation.RegistrationInput
	if body.Email != nil {
		in.Email = strings.ToLower(strings.TrimSpace(*body.Email))
		if in.Email == "" || !strings.Contains(in.Email, "@") {
			errs.Add("email", "enter a valid email address")
		}
	}
	if body.Phone != nil {
		in.Phone = validation.NormalizePhone(*body.Phone)
	}
	if body.BloodGroup != nil && *body.BloodGroup != "" && !types.IsValidBloodGroup(*body.BloodGroup) {
		errs.Add("blood_group", "unknown blood group")
	}
	if body.Password != nil && len(*body.Password) < 6 {
		errs.Add("password", "password must be at least 6 characters")
	}

	if errs.Empty() {
		if err := checkDuplicates(in, user.ID, errs); err != nil {
			logrus.WithError(err).Error("update user: duplicate check failed")
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
	}

	if !errs.Empty() {
		ctx.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		return
	}

	if body.Email != nil {
		user.Email = in.Email
	}
	if body.FirstName != nil {
		user.FirstName = *body.FirstName
	}
	if body.LastName != nil {
		user.LastName = *body.LastName
	}
	if body.Role != nil {
		user.Role = *body.Role
	}
	if body.Phone != nil {
		if in.Phone == "" {
			user.Phone = nil
		} else {
			phone := in.Phone
			user.Phone = &phone
		}
	}
	if body.City != nil {
		user.City = *body.City
	}
	if body.BloodGroup != nil {
		user.BloodGroup = *body.BloodGroup
	}
	if body.Password != nil {
		hash, err := hashPassword(*body.Password)
		if err != nil {
			logrus.WithError(err).Error("update user: failed to hash password")
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		user.PasswordHash = hash
	}

	if err := db.DB.Save(&user).Error; err != nil {
		logrus.WithError(err).Error("update user: failed to save")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, userResponse(user))
}

// DeleteUser cascades to the user's requests and donations.
func DeleteUser(ctx *gin.Context) {
	var user models.User

	if err := db.DB.First(&user, "id = ?", ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
		}
		return
	}

	if err := db.DB.Select("Requests", "Donations").Delete(&user).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		return
	}

	ctx.Status(http.StatusNoContent)
}

// SearchDonors is the public donor directory: active, non-superuser
// donors, filtered by exact blood group and city substring.
func SearchDonors(ctx *gin.Context) {
	page, size := utils.Pagination(ctx)

	query := db.DB.Model(&models.User{}).
		Where("role = ? AND active = ? AND superuser = ?", types.RoleDonor, true, false)

	if group := ctx.Query("blood_group"); group != "" {
		query = query.Where("blood_group = ?", group)
	}
	if city := ctx.Query("city"); city != "" {
		query = query.Where("LOWER(city) LIKE ?", "%"+strings.ToLower(city)+"%")
	}

	var total int64

	if err := query.Count(&total).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search donors"})
		return
	}

	var donors []models.User

	if err := query.Order("username").Offset((page - 1) * size).Limit(size).Find(&donors).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search donors"})
		return
	}

	items := make([]types.UserResponse, 0, len(donors))
	for _, donor := range donors {
		items = append(items, userResponse(donor))
	}

	ctx.JSON(http.StatusOK, types.Page{Items: items, Page: page, Size: size, TotalCount: total})
}
