package handlers

import (
	"net/http"
	"time"

	"github.com/bloodlink-dev/bloodlink/db"
	"github.com/bloodlink-dev/bloodlink/internal/models"
	"github.com/bloodlink-dev/bloodlink/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type GroupTotal struct {
	BloodGroup string `json:"blood_group"`
	TotalUnits uint   `json:"total_units"`
}

type AdminStatsResponse struct {
	TotalDonors     int64        `json:"total_donors"`
	TotalRequests   int64        `json:"total_requests"`
	PendingRequests int64        `json:"pending_requests"`
	Inventory       []GroupTotal `json:"inventory"`
}

type DailyCount struct {
	Day   string `json:"day"`
	Count int64  `json:"count"`
}

type GroupCount struct {
	BloodGroup string `json:"blood_group"`
	Count      int64  `json:"count"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type AnalyticsResponse struct {
	Inventory         []GroupTotal  `json:"inventory"`
	DonationsByDay    []DailyCount  `json:"donations_by_day"`
	DonorDistribution []GroupCount  `json:"donor_distribution"`
	RequestStatuses   []StatusCount `json:"request_statuses"`
}

func inventoryTotals() ([]GroupTotal, error) {
	var totals []GroupTotal

	err := db.DB.Model(&models.BloodInventory{}).
		Select("blood_group, SUM(units) AS total_units").
		Group("blood_group").
		Order("blood_group").
		Scan(&totals).Error

	return totals, err
}

// AdminStats serves GET /admin/stats: the aggregate counts shown on the
// admin dashboard.
func AdminStats(ctx *gin.Context) {
	var resp AdminStatsResponse

	if err := db.DB.Model(&models.User{}).Where("role = ?", types.RoleDonor).Count(&resp.TotalDonors).Error; err != nil {
		logrus.WithError(err).Error("stats: donor count failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}
	if err := db.DB.Model(&models.DonationRequest{}).Count(&resp.TotalRequests).Error; err != nil {
		logrus.WithError(err).Error("stats: request count failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}
	if err := db.DB.Model(&models.DonationRequest{}).
		Where("status = ?", types.StatusPending).Count(&resp.PendingRequests).Error; err != nil {
		logrus.WithError(err).Error("stats: pending count failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}

	totals, err := inventoryTotals()
	if err != nil {
		logrus.WithError(err).Error("stats: inventory totals failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}
	resp.Inventory = totals
	if resp.Inventory == nil {
		resp.Inventory = []GroupTotal{}
	}

	ctx.JSON(http.StatusOK, resp)
}

// Analytics serves GET /admin/analytics: chart-ready series for the
// analytics dashboard. The 30-day donation trend is aggregated in Go so
// the date bucketing stays portable across postgres and sqlite.
func Analytics(ctx *gin.Context) {
	var resp AnalyticsResponse

	totals, err := inventoryTotals()
	if err != nil {
		logrus.WithError(err).Error("analytics: inventory totals failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute analytics"})
		return
	}
	resp.Inventory = totals

	since := time.Now().AddDate(0, 0, -30)

	var recent []models.Donation
	if err := db.DB.Where("approved = ? AND created_at >= ?", true, since).
		Order("created_at").Find(&recent).Error; err != nil {
		logrus.WithError(err).Error("analytics: recent donations failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute analytics"})
		return
	}

	byDay := map[string]int64{}
	var days []string
	for _, donation := range recent {
		day := donation.CreatedAt.Format("2006-01-02")
		if _, seen := byDay[day]; !seen {
			days = append(days, day)
		}
		byDay[day]++
	}
	for _, day := range days {
		resp.DonationsByDay = append(resp.DonationsByDay, DailyCount{Day: day, Count: byDay[day]})
	}

	if err := db.DB.Model(&models.User{}).
		Select("blood_group, COUNT(id) AS count").
		Where("role = ?", types.RoleDonor).
		Group("blood_group").
		Order("blood_group").
		Scan(&resp.DonorDistribution).Error; err != nil {
		logrus.WithError(err).Error("analytics: donor distribution failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute analytics"})
		return
	}

	if err := db.DB.Model(&models.DonationRequest{}).
		Select("status, COUNT(id) AS count").
		Group("status").
		Scan(&resp.RequestStatuses).Error; err != nil {
		logrus.WithError(err).Error("analytics: status breakdown failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute analytics"})
		return
	}

	// empty sections serialize as [] rather than null
	if resp.Inventory == nil {
		resp.Inventory = []GroupTotal{}
	}
	if resp.DonationsByDay == nil {
		resp.DonationsByDay = []DailyCount{}
	}
	if resp.DonorDistribution == nil {
		resp.DonorDistribution = []GroupCount{}
	}
	if resp.RequestStatuses == nil {
		resp.RequestStatuses = []StatusCount{}
	}

	ctx.JSON(http.StatusOK, resp)
}
