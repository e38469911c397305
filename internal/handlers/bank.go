package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/bloodlink-dev/bloodlink/db"
	"github.com/bloodlink-dev/bloodlink/internal/models"
	"github.com/bloodlink-dev/bloodlink/internal/types"
	"github.com/bloodlink-dev/bloodlink/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type BloodBankRequest struct {
	Name    string `json:"name" binding:"required"`
	City    string `json:"city" binding:"required"`
	Address string `json:"address"`
	Contact string `json:"contact"`
}

func bankResponse(bank models.BloodBank) types.BloodBankResponse {
	return types.BloodBankResponse{
		ID:      bank.ID,
		Name:    bank.Name,
		City:    bank.City,
		Address: bank.Address,
		Contact: bank.Contact,
	}
}

func CreateBloodBank(ctx *gin.Context) {
	var body BloodBankRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	bank := models.BloodBank{
		Name:    body.Name,
		City:    body.City,
		Address: body.Address,
		Contact: body.Contact,
	}

	if err := db.DB.Create(&bank).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create blood bank"})
		return
	}

	ctx.JSON(http.StatusCreated, bankResponse(bank))
}

// ListBloodBanks supports ?search= over name and city.
func ListBloodBanks(ctx *gin.Context) {
	page, size := utils.Pagination(ctx)

	query := db.DB.Model(&models.BloodBank{})

	if search := ctx.Query("search"); search != "" {
		needle := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(city) LIKE ?", needle, needle)
	}

	var total int64

	if err := query.Count(&total).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve blood banks"})
		return
	}

	var banks []models.BloodBank

	if err := query.Order("name").Offset((page - 1) * size).Limit(size).Find(&banks).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve blood banks"})
		return
	}

	items := make([]types.BloodBankResponse, 0, len(banks))
	for _, bank := range banks {
		items = append(items, bankResponse(bank))
	}

	ctx.JSON(http.StatusOK, types.Page{Items: items, Page: page, Size: size, TotalCount: total})
}

func GetBloodBank(ctx *gin.Context) {
	var bank models.BloodBank

	if err := db.DB.First(&bank, "id = ?", ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Blood bank not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve blood bank"})
		}
		return
	}

	ctx.JSON(http.StatusOK, bankResponse(bank))
}

func UpdateBloodBank(ctx *gin.Context) {
	var body BloodBankRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var bank models.BloodBank

	if err := db.DB.First(&bank, "id = ?", ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Blood bank not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve blood bank"})
		}
		return
	}

	bank.Name = body.Name
	bank.City = body.City
	bank.Address = body.Address
	bank.Contact = body.Contact

	if err := db.DB.Save(&bank).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update blood bank"})
		return
	}

	ctx.JSON(http.StatusOK, bankResponse(bank))
}

// DeleteBloodBank removes the bank and its inventory rows; donations
// that referenced the bank keep their history with a NULL bank.
func DeleteBloodBank(ctx *gin.Context) {
	var bank models.BloodBank

	if err := db.DB.First(&bank, "id = ?", ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Blood bank not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve blood bank"})
		}
		return
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("blood_bank_id = ?", bank.ID).Delete(&models.BloodInventory{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Donation{}).Where("blood_bank_id = ?", bank.ID).
			Update("blood_bank_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&bank).Error
	})

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete blood bank"})
		return
	}

	ctx.Status(http.StatusNoContent)
}
