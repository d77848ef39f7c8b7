package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/autolenis/autolenis-backend/pkg/enums"
)

// Auction is a buyer-initiated, time-boxed bidding round among invited dealers.
// Status transitions are monotonic; a closed auction never reopens.
type Auction struct {
	ID          uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BuyerID     uuid.UUID           `gorm:"column:buyer_id;type:uuid;not null;index"`
	Status      enums.AuctionStatus `gorm:"column:status;type:auction_status;not null;default:'open'"`
	MaxOtdCents *int64              `gorm:"column:max_otd_cents"`
	StartsAt    time.Time           `gorm:"column:starts_at;not null"`
	EndsAt      time.Time           `gorm:"column:ends_at;not null"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// AuctionParticipant is a dealer invitation, one row per (auction, dealer).
type AuctionParticipant struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AuctionID   uuid.UUID  `gorm:"column:auction_id;type:uuid;not null;uniqueIndex:ux_participants_auction_dealer"`
	DealerID    uuid.UUID  `gorm:"column:dealer_id;type:uuid;not null;uniqueIndex:ux_participants_auction_dealer"`
	InvitedAt   time.Time  `gorm:"column:invited_at;autoCreateTime"`
	RespondedAt *time.Time `gorm:"column:responded_at"`
}
