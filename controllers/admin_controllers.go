package controllers

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/table-order/database"
	"github.com/yeremiapane/table-order/models"
	"github.com/yeremiapane/table-order/ordering"
	"github.com/yeremiapane/table-order/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	topItemsLimit     = 5
	recentOrdersLimit = 5
)

type AdminController struct {
	DB *gorm.DB
}

func NewAdminController(db *gorm.DB) *AdminController {
	return &AdminController{DB: db}
}

type PopularItem struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type Analytics struct {
	TotalOrders       int64          `json:"total_orders"`
	TotalRevenue      float64        `json:"total_revenue"`
	AverageOrderValue float64        `json:"average_order_value"`
	PopularItems      []PopularItem  `json:"popular_items"`
	RecentOrders      []models.Order `json:"recent_orders"`
}

// ComputeAnalytics -> revenue hanya dari order completed, rata-rata dari semua order
func ComputeAnalytics(orders []models.Order) Analytics {
	stats := Analytics{
		TotalOrders:  int64(len(orders)),
		PopularItems: []PopularItem{},
		RecentOrders: []models.Order{},
	}
	if len(orders) == 0 {
		return stats
	}

	revenue := decimal.Zero
	all := decimal.Zero
	counts := map[string]int{}
	for _, o := range orders {
		amount := decimal.NewFromFloat(o.TotalAmount)
		all = all.Add(amount)
		if ordering.Status(o.Status) == ordering.StatusCompleted {
			revenue = revenue.Add(amount)
		}
		// hitung kemunculan, bukan quantity
		for _, line := range o.Items {
			counts[line.Name]++
		}
	}
	stats.TotalRevenue, _ = revenue.Round(2).Float64()
	stats.AverageOrderValue, _ = all.Div(decimal.NewFromInt(int64(len(orders)))).Round(2).Float64()

	for name, n := range counts {
		stats.PopularItems = append(stats.PopularItems, PopularItem{Name: name, Count: n})
	}
	sort.Slice(stats.PopularItems, func(i, j int) bool {
		if stats.PopularItems[i].Count != stats.PopularItems[j].Count {
			return stats.PopularItems[i].Count > stats.PopularItems[j].Count
		}
		return stats.PopularItems[i].Name < stats.PopularItems[j].Name
	})
	if len(stats.PopularItems) > topItemsLimit {
		stats.PopularItems = stats.PopularItems[:topItemsLimit]
	}

	recent := make([]models.Order, len(orders))
	copy(recent, orders)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})
	if len(recent) > recentOrdersLimit {
		recent = recent[:recentOrdersLimit]
	}
	stats.RecentOrders = recent
	return stats
}

// GetAnalytics -> statistik untuk dashboard admin
func (ac *AdminController) GetAnalytics(c *gin.Context) {
	var orders []models.Order
	if err := ac.DB.WithContext(c.Request.Context()).Find(&orders).Error; err != nil {
		if database.IsMissingRelation(err) {
			respondServiceError(c, ordering.ErrRelationMissing)
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Analytics", ComputeAnalytics(orders))
}

// GetSettings -> kalau belum pernah disimpan, kembalikan nilai kosong
func (ac *AdminController) GetSettings(c *gin.Context) {
	settings := models.RestaurantSettings{ID: models.SettingsID}
	err := ac.DB.WithContext(c.Request.Context()).First(&settings, models.SettingsID).Error
	if err != nil && !database.IsNotFound(err) {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Restaurant settings", settings)
}

// SaveSettings -> upsert baris tunggal
func (ac *AdminController) SaveSettings(c *gin.Context) {
	var req struct {
		Name           string  `json:"name" binding:"required"`
		Contact        *string `json:"contact"`
		OperatingHours *string `json:"operating_hours"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("name is required"))
		return
	}

	settings := models.RestaurantSettings{
		ID:             models.SettingsID,
		Name:           strings.TrimSpace(req.Name),
		Contact:        req.Contact,
		OperatingHours: req.OperatingHours,
	}
	err := ac.DB.WithContext(c.Request.Context()).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "contact", "operating_hours", "updated_at"}),
	}).Create(&settings).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Restaurant settings saved: %s", settings.Name)
	utils.RespondJSON(c, http.StatusOK, "Restaurant settings saved", settings)
}
