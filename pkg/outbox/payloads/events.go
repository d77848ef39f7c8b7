package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/autolenis/autolenis-backend/pkg/enums"
)

// OfferSubmittedEvent is emitted when a dealer offer passes validation and is stored.
type OfferSubmittedEvent struct {
	OfferID      uuid.UUID `json:"offer_id"`
	AuctionID    uuid.UUID `json:"auction_id"`
	DealerID     uuid.UUID `json:"dealer_id"`
	CashOtdCents int64     `json:"cash_otd_cents"`
	IsValid      bool      `json:"is_valid"`
	WarningCount int       `json:"warning_count"`
}

// OfferWithdrawnEvent is emitted when a dealer pulls an active offer.
type OfferWithdrawnEvent struct {
	OfferID   uuid.UUID `json:"offer_id"`
	AuctionID uuid.UUID `json:"auction_id"`
	DealerID  uuid.UUID `json:"dealer_id"`
}

// OfferValidityOverriddenEvent records an admin flipping an offer's validity flag.
type OfferValidityOverriddenEvent struct {
	OfferID   uuid.UUID `json:"offer_id"`
	AuctionID uuid.UUID `json:"auction_id"`
	WasValid  bool      `json:"was_valid"`
	IsValid   bool      `json:"is_valid"`
	Note      string    `json:"note,omitempty"`
}

// AuctionClosedEvent is emitted when an open auction is closed by the expiry sweeper.
type AuctionClosedEvent struct {
	AuctionID  uuid.UUID           `json:"auction_id"`
	Status     enums.AuctionStatus `json:"status"`
	OfferCount int                 `json:"offer_count"`
}

// BestPriceComputedEvent summarizes a ranking run that replaced the option set.
type BestPriceComputedEvent struct {
	AuctionID       uuid.UUID `json:"auction_id"`
	OfferCount      int       `json:"offer_count"`
	ValidOfferCount int       `json:"valid_offer_count"`
	OptionCount     int       `json:"option_count"`
}

// OptionDeclinedEvent is emitted when a buyer declines a ranked option.
type OptionDeclinedEvent struct {
	AuctionID      uuid.UUID            `json:"auction_id"`
	RankedOptionID uuid.UUID            `json:"ranked_option_id"`
	OfferID        uuid.UUID            `json:"offer_id"`
	Category       enums.OptionCategory `json:"category"`
}

// DealCreatedEvent is emitted when a buyer accepts an offer and a deal is opened.
type DealCreatedEvent struct {
	DealID         uuid.UUID `json:"deal_id"`
	AuctionID      uuid.UUID `json:"auction_id"`
	BuyerID        uuid.UUID `json:"buyer_id"`
	DealerID       uuid.UUID `json:"dealer_id"`
	OfferID        uuid.UUID `json:"offer_id"`
	AgreedOtdCents int64     `json:"agreed_otd_cents"`
}

// DealStatusChangedEvent records one deal status transition, organic or override.
type DealStatusChangedEvent struct {
	DealID     uuid.UUID        `json:"deal_id"`
	AuctionID  uuid.UUID        `json:"auction_id"`
	FromStatus enums.DealStatus `json:"from_status"`
	ToStatus   enums.DealStatus `json:"to_status"`
	Override   bool             `json:"override,omitempty"`
	Note       string           `json:"note,omitempty"`
}

// DealCancelledEvent is emitted when a deal reaches the cancelled terminal state.
type DealCancelledEvent struct {
	DealID      uuid.UUID `json:"deal_id"`
	AuctionID   uuid.UUID `json:"auction_id"`
	Reason      string    `json:"reason,omitempty"`
	CancelledAt time.Time `json:"cancelled_at"`
}
