package models

import (
	"time"

	"gorm.io/datatypes"
)

// Dietary tags yang dikenali di menu
const (
	DietVegetarian = "vegetarian"
	DietVegan      = "vegan"
	DietGlutenFree = "gluten-free"
	DietSpicy      = "spicy"
	MaxSpicyLevel  = 5
)

var DietaryTags = []string{DietVegetarian, DietVegan, DietGlutenFree, DietSpicy}

type MenuItem struct {
	ID              uint                        `gorm:"primaryKey" json:"id" yaml:"id"`
	Name            string                      `gorm:"type:varchar(255);not null" json:"name" yaml:"name"`
	Description     string                      `gorm:"type:text" json:"description" yaml:"description"`
	Price           float64                     `gorm:"type:decimal(10,2);not null" json:"price" yaml:"price"`
	Category        string                      `gorm:"type:varchar(100);not null;index" json:"category" yaml:"category"`
	Available       bool                        `gorm:"not null" json:"available" yaml:"available"`
	ImageURL        *string                     `gorm:"type:varchar(512)" json:"image_url,omitempty" yaml:"image_url,omitempty"`
	PreparationTime *int                        `json:"preparation_time,omitempty" yaml:"preparation_time,omitempty"`
	DietaryInfo     datatypes.JSONSlice[string] `json:"dietary_info" yaml:"dietary_info"`
	SpicyLevel      int                         `gorm:"not null;default:0" json:"spicy_level" yaml:"spicy_level"`
	CreatedAt       time.Time                   `json:"created_at" yaml:"-"`
	UpdatedAt       time.Time                   `json:"updated_at" yaml:"-"`
}

func (MenuItem) TableName() string { return "menu_items" }
