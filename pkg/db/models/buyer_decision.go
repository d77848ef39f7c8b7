package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/autolenis/autolenis-backend/pkg/enums"
)

// BuyerDecisionEvent records a buyer accepting or declining an offer or
// ranked option.
type BuyerDecisionEvent struct {
	ID             uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AuctionID      uuid.UUID           `gorm:"column:auction_id;type:uuid;not null;index"`
	BuyerID        uuid.UUID           `gorm:"column:buyer_id;type:uuid;not null"`
	OfferID        uuid.UUID           `gorm:"column:offer_id;type:uuid;not null"`
	RankedOptionID *uuid.UUID          `gorm:"column:ranked_option_id;type:uuid"`
	Decision       enums.BuyerDecision `gorm:"column:decision;type:buyer_decision;not null"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime"`
}
