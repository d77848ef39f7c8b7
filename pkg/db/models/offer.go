package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/autolenis/autolenis-backend/pkg/db/types"
	"github.com/autolenis/autolenis-backend/pkg/enums"
)

// Offer is a dealer's priced bid for one auction. At most one non-withdrawn
// offer per (auction, dealer); the partial unique index in migrations enforces
// it under concurrent submissions.
type Offer struct {
	ID              uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AuctionID       uuid.UUID            `gorm:"column:auction_id;type:uuid;not null;index"`
	DealerID        uuid.UUID            `gorm:"column:dealer_id;type:uuid;not null;index"`
	InventoryItemID uuid.UUID            `gorm:"column:inventory_item_id;type:uuid;not null"`
	CashOtdCents    int64                `gorm:"column:cash_otd_cents;not null"`
	FeeBreakdown    dbtypes.FeeBreakdown `gorm:"column:fee_breakdown;type:jsonb;serializer:json"`
	IsValid         bool                 `gorm:"column:is_valid;not null;default:false"`
	Issues          dbtypes.Issues       `gorm:"column:issues;type:jsonb;serializer:json"`
	Status          enums.OfferStatus    `gorm:"column:status;type:offer_status;not null;default:'active'"`
	Notes           *string              `gorm:"column:notes"`
	SubmittedAt     time.Time            `gorm:"column:submitted_at;not null"`
	CreatedAt       time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time            `gorm:"column:updated_at;autoUpdateTime"`

	FinancingOptions []FinancingOption `gorm:"foreignKey:OfferID"`
}

// FinancingOption is one lender quote attached to an offer.
type FinancingOption struct {
	ID                  uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OfferID             uuid.UUID `gorm:"column:offer_id;type:uuid;not null;index"`
	Lender              string    `gorm:"column:lender;not null"`
	Apr                 float64   `gorm:"column:apr;not null"`
	TermMonths          int       `gorm:"column:term_months;not null"`
	DownPaymentCents    int64     `gorm:"column:down_payment_cents;not null;default:0"`
	MonthlyPaymentCents int64     `gorm:"column:monthly_payment_cents;not null"`
	Promoted            bool      `gorm:"column:promoted;not null;default:false"`
	CreatedAt           time.Time `gorm:"column:created_at;autoCreateTime"`
}
