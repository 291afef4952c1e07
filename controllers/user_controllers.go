package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yeremiapane/table-order/database"
	"github.com/yeremiapane/table-order/middlewares"
	"github.com/yeremiapane/table-order/models"
	"github.com/yeremiapane/table-order/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type StaffController struct {
	DB *gorm.DB
}

func NewStaffController(db *gorm.DB) *StaffController {
	return &StaffController{DB: db}
}

type staffRequest struct {
	UserID   string `json:"user_id" binding:"required"`
	Username string `json:"username" binding:"required"`
	Role     string `json:"role" binding:"required"`
	Password string `json:"password"`
}

func (r staffRequest) validate(requirePassword bool) (uuid.UUID, error) {
	userID, err := uuid.Parse(strings.TrimSpace(r.UserID))
	if err != nil {
		return uuid.Nil, errors.New("user_id must be a UUID")
	}
	if strings.TrimSpace(r.Username) == "" || strings.TrimSpace(r.Role) == "" {
		return uuid.Nil, errors.New("username and role are required")
	}
	if requirePassword && len(r.Password) < 6 {
		return uuid.Nil, errors.New("password must be at least 6 characters")
	}
	if !requirePassword && r.Password != "" && len(r.Password) < 6 {
		return uuid.Nil, errors.New("password must be at least 6 characters")
	}
	return userID, nil
}

// Login staff -> return JWT
func (sc *StaffController) Login(c *gin.Context) {
	var input struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var profile models.StaffProfile
	if err := sc.DB.WithContext(c.Request.Context()).
		Where("username = ?", strings.TrimSpace(input.Username)).
		First(&profile).Error; err != nil {
		utils.RespondError(c, http.StatusUnauthorized, ErrBadCreds)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(input.Password)); err != nil {
		utils.RespondError(c, http.StatusUnauthorized, ErrBadCreds)
		return
	}

	token, err := utils.GenerateToken(profile.ID, profile.Role)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Staff logged in: %s (role=%s)", profile.Username, profile.Role)
	utils.RespondJSON(c, http.StatusOK, "Login success", gin.H{
		"token":   token,
		"profile": profile,
	})
}

// GetProfile -> profil staff yang sedang login
func (sc *StaffController) GetProfile(c *gin.Context) {
	id, ok := c.Get(middlewares.ContextProfileID)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("unauthorized"))
		return
	}
	var profile models.StaffProfile
	if err := sc.DB.WithContext(c.Request.Context()).First(&profile, "id = ?", id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("Staff profile not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Profile", profile)
}

func (sc *StaffController) GetAllStaff(c *gin.Context) {
	var profiles []models.StaffProfile
	if err := sc.DB.WithContext(c.Request.Context()).Order("username ASC").Find(&profiles).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of staff", profiles)
}

func (sc *StaffController) CreateStaff(c *gin.Context) {
	var req staffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	userID, err := req.validate(true)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	profile := models.StaffProfile{
		UserID:       userID,
		Username:     strings.TrimSpace(req.Username),
		Role:         strings.TrimSpace(req.Role),
		PasswordHash: string(hashed),
	}
	if err := sc.DB.WithContext(c.Request.Context()).Create(&profile).Error; err != nil {
		utils.RespondError(c, http.StatusConflict, errors.New("username or user_id already in use"))
		return
	}

	utils.InfoLogger.Printf("Staff profile created: %s (role=%s)", profile.Username, profile.Role)
	utils.RespondJSON(c, http.StatusCreated, "Staff created", profile)
}

// UpdateStaff -> password kosong berarti tidak diganti
func (sc *StaffController) UpdateStaff(c *gin.Context) {
	profile, ok := sc.find(c)
	if !ok {
		return
	}

	var req staffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	userID, err := req.validate(false)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	profile.UserID = userID
	profile.Username = strings.TrimSpace(req.Username)
	profile.Role = strings.TrimSpace(req.Role)
	if req.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
		profile.PasswordHash = string(hashed)
	}

	if err := sc.DB.WithContext(c.Request.Context()).Save(&profile).Error; err != nil {
		utils.RespondError(c, http.StatusConflict, errors.New("username or user_id already in use"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Staff updated", profile)
}

func (sc *StaffController) DeleteStaff(c *gin.Context) {
	profile, ok := sc.find(c)
	if !ok {
		return
	}
	if self, _ := c.Get(middlewares.ContextProfileID); self == profile.ID {
		utils.RespondError(c, http.StatusConflict, errors.New("cannot delete your own profile"))
		return
	}
	if err := sc.DB.WithContext(c.Request.Context()).Delete(&profile).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Staff deleted", gin.H{"id": profile.ID})
}

func (sc *StaffController) find(c *gin.Context) (models.StaffProfile, bool) {
	var profile models.StaffProfile
	id, err := uuid.Parse(c.Param("staff_id"))
	if err != nil {
		respondServiceError(c, ErrInvalidID)
		return profile, false
	}
	if err := sc.DB.WithContext(c.Request.Context()).First(&profile, "id = ?", id).Error; err != nil {
		if database.IsNotFound(err) {
			utils.RespondError(c, http.StatusNotFound, errors.New("Staff profile not found"))
			return profile, false
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return profile, false
	}
	return profile, true
}
