package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/autolenis/autolenis-backend/pkg/db/types"
	"github.com/autolenis/autolenis-backend/pkg/enums"
)

// Deal is the aggregate created when a buyer accepts an offer. At most one
// non-terminal deal per auction; the partial unique index in migrations backs
// the forced-cancel-then-create flow under concurrency.
type Deal struct {
	ID                uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AuctionID         uuid.UUID                `gorm:"column:auction_id;type:uuid;not null;index"`
	BuyerID           uuid.UUID                `gorm:"column:buyer_id;type:uuid;not null;index"`
	DealerID          uuid.UUID                `gorm:"column:dealer_id;type:uuid;not null;index"`
	OfferID           uuid.UUID                `gorm:"column:offer_id;type:uuid;not null"`
	InventoryItemID   uuid.UUID                `gorm:"column:inventory_item_id;type:uuid;not null"`
	FinancingOptionID *uuid.UUID               `gorm:"column:financing_option_id;type:uuid"`
	Status            enums.DealStatus         `gorm:"column:status;type:deal_status;not null;default:'pending_financing'"`
	PaymentType       enums.PaymentType        `gorm:"column:payment_type;type:payment_type;not null;default:'not_selected'"`
	ConciergeFee      enums.ConciergeFeeStatus `gorm:"column:concierge_fee_status;type:concierge_fee_status;not null;default:'pending'"`
	Insurance         enums.InsuranceStatus    `gorm:"column:insurance_status;type:insurance_status;not null;default:'not_selected'"`
	AgreedOtdCents    int64                    `gorm:"column:agreed_otd_cents;not null"`
	TaxCents          int64                    `gorm:"column:tax_cents;not null;default:0"`
	FeeBreakdown      dbtypes.FeeBreakdown     `gorm:"column:fee_breakdown;type:jsonb;serializer:json"`
	CancelReason      *string                  `gorm:"column:cancel_reason"`
	CreatedAt         time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}

// DealStatusHistory is the append-only audit trail of deal status changes.
// Override marks admin transitions that bypassed the transition table.
type DealStatusHistory struct {
	ID         uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	DealID     uuid.UUID        `gorm:"column:deal_id;type:uuid;not null;index"`
	FromStatus enums.DealStatus `gorm:"column:from_status;type:deal_status;not null"`
	ToStatus   enums.DealStatus `gorm:"column:to_status;type:deal_status;not null"`
	ActorID    *uuid.UUID       `gorm:"column:actor_id;type:uuid"`
	ActorRole  enums.ActorRole  `gorm:"column:actor_role;type:actor_role;not null"`
	Note       *string          `gorm:"column:note"`
	Override   bool             `gorm:"column:override;not null;default:false"`
	CreatedAt  time.Time        `gorm:"column:created_at;autoCreateTime"`
}
