package models

import (
	"time"

	"github.com/google/uuid"
)

// BuyerProfile carries the pre-qualification facts the ranking pipeline reads.
// Identity management lives elsewhere; this row is keyed by the external user id.
type BuyerProfile struct {
	UserID          uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	MaxOtdCents     *int64    `gorm:"column:max_otd_cents"`
	MaxMonthlyCents *int64    `gorm:"column:max_monthly_cents"`
	PreferredMakes  []string  `gorm:"column:preferred_makes;type:jsonb;serializer:json"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// DealerProfile holds the dealer-side facts used for ranking and display.
type DealerProfile struct {
	UserID         uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	Name           string    `gorm:"column:name;not null"`
	IntegrityScore *float64  `gorm:"column:integrity_score"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
