package deals

import (
	"github.com/google/uuid"

	"github.com/autolenis/autolenis-backend/pkg/db/models"
	dbtypes "github.com/autolenis/autolenis-backend/pkg/db/types"
	"github.com/autolenis/autolenis-backend/pkg/enums"
)

// CreateInput carries everything the selection flow hands over when a buyer
// accepts an offer.
type CreateInput struct {
	AuctionID         uuid.UUID
	BuyerID           uuid.UUID
	DealerID          uuid.UUID
	OfferID           uuid.UUID
	InventoryItemID   uuid.UUID
	FinancingOptionID *uuid.UUID
	AgreedOtdCents    int64
	TaxCents          int64
	FeeBreakdown      dbtypes.FeeBreakdown
}

// Actor identifies who is driving a deal mutation.
type Actor struct {
	ID   uuid.UUID
	Role enums.ActorRole
}

// ChoosePaymentInput sets the buyer's payment path on a pending deal.
type ChoosePaymentInput struct {
	DealID            uuid.UUID
	PaymentType       enums.PaymentType
	FinancingOptionID *uuid.UUID
	Actor             Actor
}

// UpdateConciergeFeeInput settles or defers the platform's concierge fee.
type UpdateConciergeFeeInput struct {
	DealID uuid.UUID
	Status enums.ConciergeFeeStatus
	Actor  Actor
}

// UpdateInsuranceInput records the buyer's insurance progress.
type UpdateInsuranceInput struct {
	DealID uuid.UUID
	Status enums.InsuranceStatus
	Actor  Actor
}

// CancelInput terminates a deal with a reason for the record.
type CancelInput struct {
	DealID uuid.UUID
	Reason string
	Actor  Actor
}

// OverrideStatusInput is the admin-only jump to an arbitrary status.
type OverrideStatusInput struct {
	DealID   uuid.UUID
	ToStatus enums.DealStatus
	AdminID  uuid.UUID
	Note     string
}

// DealWithHistory pairs a deal with its full transition trail.
type DealWithHistory struct {
	Deal    *models.Deal
	History []models.DealStatusHistory
}
