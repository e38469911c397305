package handlers

import (
	"errors"
	"net/http"

	"github.com/bloodlink-dev/bloodlink/db"
	"github.com/bloodlink-dev/bloodlink/internal/models"
	"github.com/bloodlink-dev/bloodlink/internal/types"
	"github.com/bloodlink-dev/bloodlink/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type InventoryRequest struct {
	BloodBankID uint   `json:"blood_bank" binding:"required"`
	BloodGroup  string `json:"blood_group" binding:"required"`
	Units       *uint  `json:"units" binding:"required"`
}

func inventoryResponse(row models.BloodInventory) types.InventoryResponse {
	return types.InventoryResponse{
		ID:          row.ID,
		BloodBankID: row.BloodBankID,
		BloodGroup:  row.BloodGroup,
		Units:       row.Units,
	}
}

func CreateInventory(ctx *gin.Context) {
	var body InventoryRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if !types.IsValidBloodGroup(body.BloodGroup) {
		ctx.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"blood_group": "unknown blood group"}})
		return
	}

	var bank models.BloodBank

	if err := db.DB.First(&bank, body.BloodBankID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Blood bank not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve blood bank"})
		}
		return
	}

	row := models.BloodInventory{
		BloodBankID: body.BloodBankID,
		BloodGroup:  body.BloodGroup,
		Units:       *body.Units,
	}

	if err := db.DB.Create(&row).Error; err != nil {
		// The (bank, group) pair is unique.
		ctx.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"blood_group": "inventory row for this bank and group already exists"}})
		return
	}

	ctx.JSON(http.StatusCreated, inventoryResponse(row))
}

// ListInventory supports ?blood_group= and ?blood_bank= filters.
func ListInventory(ctx *gin.Context) {
	page, size := utils.Pagination(ctx)

	query := db.DB.Model(&models.BloodInventory{})

	if group := ctx.Query("blood_group"); group != "" {
		query = query.Where("blood_group = ?", group)
	}
	if bank := ctx.Query("blood_bank"); bank != "" {
		query = query.Where("blood_bank_id = ?", bank)
	}

	var total int64

	if err := query.Count(&total).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve inventory"})
		return
	}

	var rows []models.BloodInventory

	if err := query.Order("blood_bank_id, blood_group").Offset((page - 1) * size).Limit(size).Find(&rows).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve inventory"})
		return
	}

	items := make([]types.InventoryResponse, 0, len(rows))
	for _, row := range rows {
		items = append(items, inventoryResponse(row))
	}

	ctx.JSON(http.StatusOK, types.Page{Items: items, Page: page, Size: size, TotalCount: total})
}

func GetInventory(ctx *gin.Context) {
	var row models.BloodInventory

	if err := db.DB.First(&row, "id = ?", ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Inventory row not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve inventory"})
		}
		return
	}

	ctx.JSON(http.StatusOK, inventoryResponse(row))
}

// UpdateInventory edits the manually maintained unit count. Units is
// unsigned, so the never-negative invariant holds by construction.
func UpdateInventory(ctx *gin.Context) {
	var body InventoryRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if !types.IsValidBloodGroup(body.BloodGroup) {
		ctx.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"blood_group": "unknown blood group"}})
		return
	}

	var row models.BloodInventory

	if err := db.DB.First(&row, "id = ?", ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Inventory row not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve inventory"})
		}
		return
	}

	row.BloodBankID = body.BloodBankID
	row.BloodGroup = body.BloodGroup
	row.Units = *body.Units

	if err := db.DB.Save(&row).Error; err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"blood_group": "inventory row for this bank and group already exists"}})
		return
	}

	ctx.JSON(http.StatusOK, inventoryResponse(row))
}

func DeleteInventory(ctx *gin.Context) {
	var row models.BloodInventory

	if err := db.DB.First(&row, "id = ?", ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Inventory row not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve inventory"})
		}
		return
	}

	if err := db.DB.Delete(&row).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete inventory"})
		return
	}

	ctx.Status(http.StatusNoContent)
}
