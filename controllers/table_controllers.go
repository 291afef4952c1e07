package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-order/database"
	"github.com/yeremiapane/table-order/models"
	"github.com/yeremiapane/table-order/ordering"
	"github.com/yeremiapane/table-order/realtime"
	"github.com/yeremiapane/table-order/services"
	"github.com/yeremiapane/table-order/utils"
	"gorm.io/gorm"
)

type TableController struct {
	DB      *gorm.DB
	Hub     *realtime.Hub
	BaseURL string
}

func NewTableController(db *gorm.DB, hub *realtime.Hub, baseURL string) *TableController {
	return &TableController{DB: db, Hub: hub, BaseURL: baseURL}
}

type tableRequest struct {
	TableNumber *int   `json:"table_number" binding:"required"`
	Status      string `json:"status"`
}

func (r tableRequest) validate() error {
	if *r.TableNumber <= 0 {
		return errors.New("table_number must be positive")
	}
	return nil
}

func (tc *TableController) find(c *gin.Context) (models.Table, bool) {
	id, ok := ordering.ParseID(c.Param("table_id"))
	if !ok {
		respondServiceError(c, ordering.ErrInvalidTableID)
		return models.Table{}, false
	}
	var table models.Table
	if err := tc.DB.WithContext(c.Request.Context()).First(&table, "id = ?", id).Error; err != nil {
		if database.IsNotFound(err) {
			err = ordering.ErrTableNotFound
		}
		respondServiceError(c, err)
		return models.Table{}, false
	}
	return table, true
}

// CreateTable -> menambahkan meja baru dengan UUID dan URL QR
func (tc *TableController) CreateTable(c *gin.Context) {
	var req tableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if err := req.validate(); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table, err := services.CreateTable(tc.DB.WithContext(c.Request.Context()), *req.TableNumber, tc.BaseURL)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if req.Status != "" && req.Status != table.Status {
		table.Status = req.Status
		if err := tc.DB.WithContext(c.Request.Context()).Model(&table).Update("status", table.Status).Error; err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
	}

	tc.Hub.BroadcastTableCreate(table)
	utils.InfoLogger.Printf("New table created: %d (%s)", table.TableNumber, table.ID)
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", table)
}

// GetAllTables -> menampilkan seluruh meja urut nomor
func (tc *TableController) GetAllTables(c *gin.Context) {
	var tables []models.Table
	if err := tc.DB.WithContext(c.Request.Context()).Order("table_number ASC").Find(&tables).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

func (tc *TableController) GetTableByID(c *gin.Context) {
	table, ok := tc.find(c)
	if !ok {
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table detail", table)
}

// UpdateTable -> ubah nomor dan/atau status meja
func (tc *TableController) UpdateTable(c *gin.Context) {
	table, ok := tc.find(c)
	if !ok {
		return
	}

	var req tableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if err := req.validate(); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table.TableNumber = *req.TableNumber
	if req.Status != "" {
		table.Status = req.Status
	}
	if err := tc.DB.WithContext(c.Request.Context()).Save(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	tc.Hub.BroadcastTableUpdate(table)
	utils.RespondJSON(c, http.StatusOK, "Table updated", table)
}

// DeleteTable -> ditolak selama masih ada order yang mereferensikan meja
func (tc *TableController) DeleteTable(c *gin.Context) {
	table, ok := tc.find(c)
	if !ok {
		return
	}

	var refs int64
	if err := tc.DB.WithContext(c.Request.Context()).Model(&models.Order{}).Where("table_id = ?", table.ID).Count(&refs).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if refs > 0 {
		respondServiceError(c, ErrTableInUse)
		return
	}

	if err := tc.DB.WithContext(c.Request.Context()).Delete(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	tc.Hub.BroadcastTableDelete(table)
	utils.InfoLogger.Printf("Table %d deleted", table.TableNumber)
	utils.RespondJSON(c, http.StatusOK, "Table deleted", gin.H{"id": table.ID})
}

type qrEntry struct {
	ID          string `json:"id"`
	TableNumber int    `json:"table_number"`
	URL         string `json:"url"`
}

// GetQRCodes -> payload QR per meja (gambar QR dibuat di frontend)
func (tc *TableController) GetQRCodes(c *gin.Context) {
	var tables []models.Table
	if err := tc.DB.WithContext(c.Request.Context()).Order("table_number ASC").Find(&tables).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	entries := make([]qrEntry, 0, len(tables))
	for _, t := range tables {
		entries = append(entries, qrEntry{
			ID:          t.ID.String(),
			TableNumber: t.TableNumber,
			URL:         t.LandingURL(tc.BaseURL),
		})
	}
	utils.RespondJSON(c, http.StatusOK, "Table QR codes", entries)
}
