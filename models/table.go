package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const TableStatusActive = "active"

type Table struct {
	ID          uuid.UUID `gorm:"type:varchar(36);primaryKey" json:"id"`
	TableNumber int       `gorm:"not null;index" json:"table_number"`
	Status      string    `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	QRCodeData  string    `gorm:"type:varchar(512)" json:"qr_code_data"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Table) TableName() string { return "tables" }

func (t *Table) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Status == "" {
		t.Status = TableStatusActive
	}
	return nil
}

// LandingURL -> URL yang di-encode ke QR code meja
func (t Table) LandingURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + "/table/" + t.ID.String()
}
