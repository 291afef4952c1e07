package models

import "time"

// SettingsID adalah primary key tetap untuk baris tunggal restaurant_settings
const SettingsID uint = 1

type RestaurantSettings struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"type:varchar(255);not null" json:"name"`
	Contact        *string   `gorm:"type:varchar(255)" json:"contact,omitempty"`
	OperatingHours *string   `gorm:"type:varchar(255)" json:"operating_hours,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (RestaurantSettings) TableName() string { return "restaurant_settings" }
