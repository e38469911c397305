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

type CreateRequestRequest struct {
	BloodGroup string `json:"blood_group" binding:"required"`
	Units      int    `json:"units" binding:"required"`
	City       string `json:"city"`
}

const pendingRequestMessage = "You already have a pending request."

func requestResponse(request models.DonationRequest) types.DonationRequestResponse {
	return types.DonationRequestResponse{
		ID:           request.ID,
		Requester:    userResponse(request.Requester),
		BloodGroup:   request.BloodGroup,
		Units:        request.Units,
		City:         request.City,
		Status:       request.Status,
		CreatedAt:    request.CreatedAt,
		ApprovedByID: request.ApprovedByID,
	}
}

// isUniqueViolation spots the partial-index backstop firing when two
// creations race past the application-level pending check.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "idx_requests_one_pending") ||
		strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}

// CreateRequest opens a donation request in the pending state. A
// requester may hold at most one pending request: checked inside the
// transaction, with the partial unique index closing the window between
// check and insert.
func CreateRequest(ctx *gin.Context) {
	currentID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body CreateRequestRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	in := validation.RequestInput{
		BloodGroup: body.BloodGroup,
		Units:      body.Units,
		City:       body.City,
	}

	if errs := validation.ValidateRequest(&in); !errs.Empty() {
		ctx.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		return
	}

	request := models.DonationRequest{
		RequesterID: currentID,
		BloodGroup:  in.BloodGroup,
		Units:       uint(in.Units),
		City:        in.City,
		Status:      types.StatusPending,
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		var pending int64
		if err := tx.Model(&models.DonationRequest{}).
			Where("requester_id = ? AND status = ?", currentID, types.StatusPending).
			Count(&pending).Error; err != nil {
			return err
		}
		if pending > 0 {
			return gorm.ErrDuplicatedKey
		}
		return tx.Create(&request).Error
	})

	if err != nil {
		if isUniqueViolation(err) {
			ctx.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"request": pendingRequestMessage}})
			return
		}
		logrus.WithError(err).Error("create request: failed to persist")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var requester models.User

	if err := db.DB.First(&requester, currentID).Error; err == nil {
		request.Requester = requester
		services.NotifyRequestReceived(request, requester)
	}

	ctx.JSON(http.StatusCreated, requestResponse(request))
}

// ListRequests supports ?status=, ?blood_group=, ?requester_city= and a
// ?search= over requester username and request city.
func ListRequests(ctx *gin.Context) {
	page, size := utils.Pagination(ctx)

	query := db.DB.Model(&models.DonationRequest{}).
		Joins("JOIN users ON users.id = donation_requests.requester_id")

	if status := ctx.Query("status"); status != "" {
		query = query.Where("donation_requests.status = ?", status)
	}
	if group := ctx.Query("blood_group"); group != "" {
		query = query.Where("donation_requests.blood_group = ?", group)
	}
	if city := ctx.Query("requester_city"); city != "" {
		query = query.Where("users.city = ?", city)
	}
	if search := ctx.Query("search"); search != "" {
		needle := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(users.username) LIKE ? OR LOWER(donation_requests.city) LIKE ?", needle, needle)
	}

	var total int64

	if err := query.Count(&total).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve requests"})
		return
	}

	var requests []models.DonationRequest

	if err := query.Preload("Requester").
		Order("donation_requests.created_at DESC").
		Offset((page - 1) * size).Limit(size).
		Find(&requests).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve requests"})
		return
	}

	items := make([]types.DonationRequestResponse, 0, len(requests))
	for _, request := range requests {
		items = append(items, requestResponse(request))
	}

	ctx.JSON(http.StatusOK, types.Page{Items: items, Page: page, Size: size, TotalCount: total})
}

// MyRequests returns the caller's requests, newest first.
func MyRequests(ctx *gin.Context) {
	currentID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var requests []models.DonationRequest

	if err := db.DB.Preload("Requester").
		Where("requester_id = ?", currentID).
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve requests"})
		return
	}

	items := make([]types.DonationRequestResponse, 0, len(requests))
	for _, request := range requests {
		items = append(items, requestResponse(request))
	}

	ctx.JSON(http.StatusOK, items)
}

// decideRequest moves a pending request into a terminal state and
// records who decided. Any other starting state is a conflict.
func decideRequest(ctx *gin.Context, status string) {
	currentID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var request models.DonationRequest

	if err := db.DB.Preload("Requester").First(&request, "id = ?", ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Request not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve request"})
		}
		return
	}

	if request.Status != types.StatusPending {
		ctx.JSON(http.StatusConflict, gin.H{"error": "Already processed."})
		return
	}

	approverID := currentID
	request.Status = status
	request.ApprovedByID = &approverID

	if err := db.DB.Omit("Requester").Save(&request).Error; err != nil {
		logrus.WithError(err).Error("decide request: failed to save")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	services.NotifyRequestDecision(request, request.Requester)

	ctx.JSON(http.StatusOK, requestResponse(request))
}

func ApproveRequest(ctx *gin.Context) {
	decideRequest(ctx, types.StatusApproved)
}

func RejectRequest(ctx *gin.Context) {
	decideRequest(ctx, types.StatusRejected)
}
