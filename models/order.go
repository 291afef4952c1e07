package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Order struct {
	ID           uuid.UUID                      `gorm:"type:varchar(36);primaryKey" json:"id"`
	TableID      uuid.UUID                      `gorm:"type:varchar(36);not null;index:idx_orders_table_created,priority:1" json:"table_id"`
	Table        *Table                         `gorm:"foreignKey:TableID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"table,omitempty"`
	Items        datatypes.JSONSlice[OrderLine] `gorm:"not null" json:"items"`
	TotalAmount  float64                        `gorm:"type:decimal(10,2);not null;default:0" json:"total_amount"`
	Status       string                         `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	WaiterCalled bool                           `gorm:"not null" json:"waiter_called"`
	CustomerName *string                        `gorm:"type:varchar(255)" json:"customer_name,omitempty"`
	Notes        *string                        `gorm:"type:text" json:"notes,omitempty"`
	Version      uint                           `gorm:"not null" json:"version"`
	CreatedAt    time.Time                      `gorm:"index:idx_orders_table_created,priority:2" json:"created_at"`
	UpdatedAt    time.Time                      `gorm:"index" json:"updated_at"`
}

func (Order) TableName() string { return "orders" }

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.Version == 0 {
		o.Version = 1
	}
	if o.Items == nil {
		o.Items = datatypes.JSONSlice[OrderLine]{}
	}
	return nil
}
