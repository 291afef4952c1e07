package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-order/database"
	"github.com/yeremiapane/table-order/models"
	"github.com/yeremiapane/table-order/realtime"
	"github.com/yeremiapane/table-order/services"
	"github.com/yeremiapane/table-order/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type MenuController struct {
	DB   *gorm.DB
	Menu *services.MenuService
	Hub  *realtime.Hub
}

func NewMenuController(db *gorm.DB, menu *services.MenuService, hub *realtime.Hub) *MenuController {
	return &MenuController{DB: db, Menu: menu, Hub: hub}
}

// kolom yang boleh dipakai untuk sort di admin
var menuSortColumns = map[string]string{
	"name":       "name",
	"price":      "price",
	"category":   "category",
	"created_at": "created_at",
}

type menuItemRequest struct {
	Name            string   `json:"name" binding:"required"`
	Description     string   `json:"description"`
	Price           *float64 `json:"price" binding:"required"`
	Category        string   `json:"category"`
	Available       *bool    `json:"available"`
	ImageURL        *string  `json:"image_url"`
	PreparationTime *int     `json:"preparation_time"`
	DietaryInfo     []string `json:"dietary_info"`
	SpicyLevel      int      `json:"spicy_level"`
}

// ValidateMenuItem returns every problem with the request, empty when valid.
func ValidateMenuItem(req menuItemRequest) []string {
	var errs []string
	if strings.TrimSpace(req.Name) == "" {
		errs = append(errs, "name is required")
	}
	if req.Price == nil || *req.Price < 0 {
		errs = append(errs, "price must be zero or more")
	}
	if req.SpicyLevel < 0 || req.SpicyLevel > models.MaxSpicyLevel {
		errs = append(errs, fmt.Sprintf("spicy_level must be between 0 and %d", models.MaxSpicyLevel))
	}
	if req.PreparationTime != nil && *req.PreparationTime < 0 {
		errs = append(errs, "preparation_time must be zero or more")
	}
	for _, tag := range req.DietaryInfo {
		if !knownDietTag(tag) {
			errs = append(errs, fmt.Sprintf("unknown dietary tag %q", tag))
		}
	}
	return errs
}

func knownDietTag(tag string) bool {
	for _, t := range models.DietaryTags {
		if t == tag {
			return true
		}
	}
	return false
}

func (req menuItemRequest) apply(item *models.MenuItem) {
	item.Name = strings.TrimSpace(req.Name)
	item.Description = req.Description
	item.Price = *req.Price
	item.Category = strings.TrimSpace(req.Category)
	if item.Category == "" {
		item.Category = "Uncategorized"
	}
	if req.Available != nil {
		item.Available = *req.Available
	}
	item.ImageURL = req.ImageURL
	item.PreparationTime = req.PreparationTime
	item.DietaryInfo = datatypes.JSONSlice[string](req.DietaryInfo)
	if item.DietaryInfo == nil {
		item.DietaryInfo = datatypes.JSONSlice[string]{}
	}
	item.SpicyLevel = req.SpicyLevel
}

func (mc *MenuController) bindItem(c *gin.Context) (menuItemRequest, bool) {
	var req menuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return req, false
	}
	if errs := ValidateMenuItem(req); len(errs) > 0 {
		utils.RespondJSON(c, http.StatusBadRequest, "Invalid menu item", gin.H{"errors": errs})
		return req, false
	}
	return req, true
}

func (mc *MenuController) find(c *gin.Context) (models.MenuItem, bool) {
	id, err := strconv.ParseUint(c.Param("menu_id"), 10, 64)
	if err != nil {
		respondServiceError(c, ErrInvalidID)
		return models.MenuItem{}, false
	}
	var item models.MenuItem
	if err := mc.DB.WithContext(c.Request.Context()).First(&item, id).Error; err != nil {
		if database.IsNotFound(err) {
			utils.RespondError(c, http.StatusNotFound, errors.New("Menu item not found"))
			return item, false
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return item, false
	}
	return item, true
}

// GetMenu -> menu customer: hanya yang available, filter ?category= dan ?q=
func (mc *MenuController) GetMenu(c *gin.Context) {
	catalog, err := mc.Menu.Catalog(c.Request.Context(), services.MenuFilter{
		Category: c.Query("category"),
		Query:    c.Query("q"),
	})
	if err != nil {
		utils.ErrorLogger.Printf("Failed to load menu: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Failed to load menu."))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu", catalog)
}

// GetAllMenuItems -> admin, termasuk yang tidak available. ?q= ?category= ?sort= ?order=
func (mc *MenuController) GetAllMenuItems(c *gin.Context) {
	query := mc.DB.WithContext(c.Request.Context()).Model(&models.MenuItem{})

	if cat := c.Query("category"); cat != "" && cat != services.CategoryAll {
		query = query.Where("category = ?", cat)
	}
	if q := strings.ToLower(strings.TrimSpace(c.Query("q"))); q != "" {
		like := "%" + q + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(category) LIKE ?", like, like, like)
	}

	column, ok := menuSortColumns[c.DefaultQuery("sort", "name")]
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("cannot sort by %q", c.Query("sort")))
		return
	}
	direction := "ASC"
	if strings.EqualFold(c.Query("order"), "desc") {
		direction = "DESC"
	}

	var items []models.MenuItem
	if err := query.Order(column + " " + direction).Order("id ASC").Find(&items).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of menu items", items)
}

func (mc *MenuController) GetMenuItemByID(c *gin.Context) {
	item, ok := mc.find(c)
	if !ok {
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item detail", item)
}

func (mc *MenuController) CreateMenuItem(c *gin.Context) {
	req, ok := mc.bindItem(c)
	if !ok {
		return
	}

	item := models.MenuItem{Available: true}
	req.apply(&item)
	if err := mc.DB.WithContext(c.Request.Context()).Create(&item).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	mc.Hub.BroadcastMenuUpdate(item)
	utils.InfoLogger.Printf("Menu item created: %s (%.2f)", item.Name, item.Price)
	utils.RespondJSON(c, http.StatusCreated, "Menu item created", item)
}

func (mc *MenuController) UpdateMenuItem(c *gin.Context) {
	item, ok := mc.find(c)
	if !ok {
		return
	}
	req, ok := mc.bindItem(c)
	if !ok {
		return
	}

	req.apply(&item)
	if err := mc.DB.WithContext(c.Request.Context()).Save(&item).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	mc.Hub.BroadcastMenuUpdate(item)
	utils.RespondJSON(c, http.StatusOK, "Menu item updated", item)
}

// ToggleAvailability -> balik flag available
func (mc *MenuController) ToggleAvailability(c *gin.Context) {
	item, ok := mc.find(c)
	if !ok {
		return
	}

	item.Available = !item.Available
	if err := mc.DB.WithContext(c.Request.Context()).Model(&item).Update("available", item.Available).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	mc.Hub.BroadcastMenuUpdate(item)
	utils.RespondJSON(c, http.StatusOK, "Menu item availability updated", item)
}

func (mc *MenuController) DeleteMenuItem(c *gin.Context) {
	item, ok := mc.find(c)
	if !ok {
		return
	}
	if err := mc.DB.WithContext(c.Request.Context()).Delete(&item).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item deleted", gin.H{"id": item.ID})
}
