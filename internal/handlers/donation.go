package handlers

import (
	"errors"
	"net/http"
	"strconv"
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

type CreateDonationRequest struct {
	BloodBankID *uint  `json:"blood_bank"`
	BloodGroup  string `json:"blood_group" binding:"required"`
	Units       int    `json:"units" binding:"required"`
}

func donationResponse(donation models.Donation) types.DonationResponse {
	return types.DonationResponse{
		ID:           donation.ID,
		Donor:        userResponse(donation.Donor),
		BloodBankID:  donation.BloodBankID,
		BloodGroup:   donation.BloodGroup,
		Units:        donation.Units,
		Date:         donation.CreatedAt,
		Approved:     donation.Approved,
		ApprovedByID: donation.ApprovedByID,
	}
}

// CreateDonation records a contribution by the caller. Donations always
// start unapproved.
func CreateDonation(ctx *gin.Context) {
	currentID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body CreateDonationRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	in := validation.DonationInput{
		BloodBankID: body.BloodBankID,
		BloodGroup:  body.BloodGroup,
		Units:       body.Units,
	}

	if errs := validation.ValidateDonation(&in); !errs.Empty() {
		ctx.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		return
	}

	if body.BloodBankID != nil {
		var bank models.BloodBank
		if err := db.DB.First(&bank, *body.BloodBankID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "Blood bank not found"})
			} else {
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve blood bank"})
			}
			return
		}
	}

	donation := models.Donation{
		DonorID:     currentID,
		BloodBankID: body.BloodBankID,
		BloodGroup:  in.BloodGroup,
		Units:       uint(in.Units),
	}

	if err := db.DB.Create(&donation).Error; err != nil {
		logrus.WithError(err).Error("create donation: failed to persist")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := db.DB.First(&donation.Donor, currentID).Error; err != nil {
		logrus.WithError(err).Warn("create donation: failed to load donor for response")
	}

	ctx.JSON(http.StatusCreated, donationResponse(donation))
}

// ListDonations supports ?donor=, ?blood_group=, ?approved= filters and
// a ?search= over donor username and bank name.
func ListDonations(ctx *gin.Context) {
	page, size := utils.Pagination(ctx)

	query := db.DB.Model(&models.Donation{}).
		Joins("JOIN users ON users.id = donations.donor_id")

	if donor := ctx.Query("donor"); donor != "" {
		query = query.Where("donations.donor_id = ?", donor)
	}
	if group := ctx.Query("blood_group"); group != "" {
		query = query.Where("donations.blood_group = ?", group)
	}
	if approved := ctx.Query("approved"); approved != "" {
		want, err := strconv.ParseBool(approved)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid approved filter"})
			return
		}
		query = query.Where("donations.approved = ?", want)
	}
	if search := ctx.Query("search"); search != "" {
		needle := "%" + strings.ToLower(search) + "%"
		query = query.
			Joins("LEFT JOIN blood_banks ON blood_banks.id = donations.blood_bank_id").
			Where("LOWER(users.username) LIKE ? OR LOWER(blood_banks.name) LIKE ?", needle, needle)
	}

	var total int64

	if err := query.Count(&total).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve donations"})
		return
	}

	var donations []models.Donation

	if err := query.Preload("Donor").Preload("BloodBank").
		Order("donations.created_at DESC").
		Offset((page - 1) * size).Limit(size).
		Find(&donations).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve donations"})
		return
	}

	items := make([]types.DonationResponse, 0, len(donations))
	for _, donation := range donations {
		items = append(items, donationResponse(donation))
	}

	ctx.JSON(http.StatusOK, types.Page{Items: items, Page: page, Size: size, TotalCount: total})
}

func GetDonation(ctx *gin.Context) {
	var donation models.Donation

	if err := db.DB.Preload("Donor").Preload("BloodBank").First(&donation, "id = ?", ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Donation not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve donation"})
		}
		return
	}

	ctx.JSON(http.StatusOK, donationResponse(donation))
}

// ApproveDonation flips the approved flag exactly once and fixes the
// approver; a second call is a conflict and changes nothing.
func ApproveDonation(ctx *gin.Context) {
	currentID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var donation models.Donation

	if err := db.DB.Preload("Donor").Preload("BloodBank").First(&donation, "id = ?", ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Donation not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve donation"})
		}
		return
	}

	if donation.Approved {
		ctx.JSON(http.StatusConflict, gin.H{"error": "Donation already approved."})
		return
	}

	approverID := currentID
	donation.Approved = true
	donation.ApprovedByID = &approverID

	if err := db.DB.Omit("Donor", "BloodBank").Save(&donation).Error; err != nil {
		logrus.WithError(err).Error("approve donation: failed to save")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	services.NotifyDonationApproved(donation, donation.Donor)

	ctx.JSON(http.StatusOK, donationResponse(donation))
}
