package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RoleAdmin adalah satu-satunya role yang dicek literal untuk akses admin.
// Role lain (staff, chef, waiter, ...) bebas diisi dan dianggap staff biasa.
const RoleAdmin = "admin"

type StaffProfile struct {
	ID           uuid.UUID `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex" json:"user_id"`
	Username     string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"username"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	Role         string    `gorm:"type:varchar(50);not null" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (StaffProfile) TableName() string { return "staff_profiles" }

func (s *StaffProfile) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.UserID == uuid.Nil {
		s.UserID = uuid.New()
	}
	return nil
}

func (s StaffProfile) IsAdmin() bool {
	return s.Role == RoleAdmin
}
