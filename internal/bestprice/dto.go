package bestprice

import (
	"github.com/google/uuid"

	"github.com/autolenis/autolenis-backend/pkg/db/models"
	"github.com/autolenis/autolenis-backend/pkg/enums"
)

// CategoryGroup is the buyer-facing view of one ranking category: the first
// non-declined option leads, everything else stays visible as alternatives.
type CategoryGroup struct {
	Category     enums.OptionCategory  `json:"category"`
	Primary      *models.RankedOption  `json:"primary,omitempty"`
	Alternatives []models.RankedOption `json:"alternatives"`
}

// GroupedOptions is the full best-price read for one auction.
type GroupedOptions struct {
	AuctionID  uuid.UUID       `json:"auction_id"`
	Categories []CategoryGroup `json:"categories"`
}

// DeclineOptionInput identifies the ranked option a buyer is passing on.
type DeclineOptionInput struct {
	AuctionID uuid.UUID
	OptionID  uuid.UUID
	BuyerID   uuid.UUID
}

// DeclineOfferInput declines by raw offer id, for surfaces that show offers
// rather than ranked options.
type DeclineOfferInput struct {
	AuctionID uuid.UUID
	OfferID   uuid.UUID
	BuyerID   uuid.UUID
}

// DeclineResult carries the next recommendation in the same category, nil
// when the category is exhausted.
type DeclineResult struct {
	Declined *models.RankedOption
	Next     *models.RankedOption
}

// SelectDealInput accepts either a ranked option or a raw offer. Exactly one
// of OptionID and OfferID must be set.
type SelectDealInput struct {
	AuctionID         uuid.UUID
	BuyerID           uuid.UUID
	OptionID          *uuid.UUID
	OfferID           *uuid.UUID
	FinancingOptionID *uuid.UUID
}
