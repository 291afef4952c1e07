package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/yeremiapane/table-order/models"
	"github.com/yeremiapane/table-order/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedAdmin membuat akun admin kalau username belum ada
func SeedAdmin(ctx context.Context, db *gorm.DB, username, password string) error {
	if username == "" || password == "" {
		return errors.New("admin username and password are required")
	}

	var count int64
	if err := db.WithContext(ctx).Model(&models.StaffProfile{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		utils.InfoLogger.Printf("Admin %s already exists, skipping", username)
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := models.StaffProfile{
		Username:     username,
		PasswordHash: string(hashed),
		Role:         models.RoleAdmin,
	}
	if err := db.WithContext(ctx).Create(&admin).Error; err != nil {
		return err
	}
	utils.InfoLogger.Printf("Admin %s created", username)
	return nil
}

// SeedMenu mengisi menu_items dari menu statis kalau tabel masih kosong
func SeedMenu(ctx context.Context, db *gorm.DB) (int, error) {
	var count int64
	if err := db.WithContext(ctx).Model(&models.MenuItem{}).Count(&count).Error; err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	items, err := FallbackMenu()
	if err != nil {
		return 0, err
	}
	if err := db.WithContext(ctx).Create(&items).Error; err != nil {
		return 0, err
	}
	utils.InfoLogger.Printf("Seeded %d menu items", len(items))
	return len(items), nil
}

// SeedTables creates tables numbered 1..count when none exist.
func SeedTables(ctx context.Context, db *gorm.DB, count int, baseURL string) (int, error) {
	var existing int64
	if err := db.WithContext(ctx).Model(&models.Table{}).Count(&existing).Error; err != nil {
		return 0, err
	}
	if existing > 0 || count <= 0 {
		return 0, nil
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for n := 1; n <= count; n++ {
			if _, err := CreateTable(tx, n, baseURL); err != nil {
				return fmt.Errorf("table %d: %w", n, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	utils.InfoLogger.Printf("Seeded %d tables", count)
	return count, nil
}

// CreateTable inserts a table and stores its landing URL as QR payload.
func CreateTable(db *gorm.DB, number int, baseURL string) (models.Table, error) {
	table := models.Table{ID: uuid.New(), TableNumber: number, Status: models.TableStatusActive}
	table.QRCodeData = table.LandingURL(baseURL)
	if err := db.Create(&table).Error; err != nil {
		return models.Table{}, err
	}
	return table, nil
}
