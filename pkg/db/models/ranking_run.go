package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// RankingRun logs one best-price computation. Written best-effort; a failed
// insert never fails the ranking itself.
type RankingRun struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AuctionID       uuid.UUID       `gorm:"column:auction_id;type:uuid;not null;index"`
	OfferCount      int             `gorm:"column:offer_count;not null"`
	ValidOfferCount int             `gorm:"column:valid_offer_count;not null"`
	OptionCount     int             `gorm:"column:option_count;not null"`
	Weights         json.RawMessage `gorm:"column:weights;type:jsonb"`
	DurationMs      int64           `gorm:"column:duration_ms;not null"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
}
