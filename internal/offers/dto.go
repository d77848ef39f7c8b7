package offers

import (
	"time"

	"github.com/google/uuid"

	"github.com/autolenis/autolenis-backend/pkg/db/models"
	dbtypes "github.com/autolenis/autolenis-backend/pkg/db/types"
	"github.com/autolenis/autolenis-backend/pkg/enums"
)

// FinancingOptionInput is one lender quote in a dealer submission.
type FinancingOptionInput struct {
	Lender              string  `json:"lender" validate:"required"`
	Apr                 float64 `json:"apr"`
	TermMonths          int     `json:"term_months"`
	DownPaymentCents    int64   `json:"down_payment_cents"`
	MonthlyPaymentCents int64   `json:"monthly_payment_cents"`
	Promoted            bool    `json:"promoted"`
}

// SubmitOfferInput carries a dealer's raw offer submission.
type SubmitOfferInput struct {
	AuctionID        uuid.UUID
	DealerID         uuid.UUID
	InventoryItemID  uuid.UUID
	CashOtdCents     int64
	FeeBreakdown     dbtypes.FeeBreakdown
	FinancingOptions []FinancingOptionInput
	Notes            *string
}

// SubmitOfferResult is returned on successful persistence. Issues carries any
// warning-severity findings that rode along with the accepted offer.
type SubmitOfferResult struct {
	Offer  *models.Offer
	Issues dbtypes.Issues
}

// WithdrawOfferInput identifies the offer a dealer wants to pull.
type WithdrawOfferInput struct {
	OfferID  uuid.UUID
	DealerID uuid.UUID
}

// OverrideValidityInput is the admin-only post-hoc validity flip.
type OverrideValidityInput struct {
	OfferID uuid.UUID
	IsValid bool
	AdminID uuid.UUID
	Note    string
}

// OfferList is a cursor page of offers for one auction.
type OfferList struct {
	Offers     []models.Offer
	NextCursor string
}

// ValidationContext bundles the persisted state the validator checks a
// submission against. Nil members mean the referenced row does not exist.
type ValidationContext struct {
	Auction       *models.Auction
	Participant   *models.AuctionParticipant
	ExistingOffer *models.Offer
	Inventory     *models.InventoryItem
	Buyer         *models.BuyerProfile
	Now           time.Time
}

// BudgetCeilingCents resolves the buyer's pre-qualified ceiling, preferring
// the snapshot taken onto the auction at creation time.
func (vc ValidationContext) BudgetCeilingCents() *int64 {
	if vc.Auction != nil && vc.Auction.MaxOtdCents != nil {
		return vc.Auction.MaxOtdCents
	}
	if vc.Buyer != nil && vc.Buyer.MaxOtdCents != nil {
		return vc.Buyer.MaxOtdCents
	}
	return nil
}

func (vc ValidationContext) hasActiveOffer() bool {
	return vc.ExistingOffer != nil && vc.ExistingOffer.Status != enums.OfferStatusWithdrawn
}
