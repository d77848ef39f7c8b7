package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/autolenis/autolenis-backend/pkg/enums"
)

// InventoryItem is one vehicle on a dealer's lot. Vehicle facts live inline
// because offers and ranked-option snapshots read them together.
type InventoryItem struct {
	ID        uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	DealerID  uuid.UUID             `gorm:"column:dealer_id;type:uuid;not null;index"`
	Status    enums.InventoryStatus `gorm:"column:status;type:inventory_status;not null;default:'available'"`
	Vin       *string               `gorm:"column:vin"`
	Year      int                   `gorm:"column:year;not null"`
	Make      string                `gorm:"column:make;not null"`
	Model     string                `gorm:"column:model;not null"`
	Trim      *string               `gorm:"column:trim"`
	Mileage   int                   `gorm:"column:mileage;not null;default:0"`
	IsNew     bool                  `gorm:"column:is_new;not null;default:false"`
	CreatedAt time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
