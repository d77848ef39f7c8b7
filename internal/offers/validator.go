package offers

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/autolenis/autolenis-backend/pkg/config"
	dbtypes "github.com/autolenis/autolenis-backend/pkg/db/types"
	"github.com/autolenis/autolenis-backend/pkg/enums"
)

const (
	aprMin  = 0.0
	aprMax  = 40.0
	termMin = 12
	termMax = 96
)

// Validator runs every submission check and accumulates findings instead of
// short-circuiting, so dealers see the full defect list in one pass.
type Validator struct {
	cfg config.OffersConfig
}

// NewValidator builds a validator with the configured tolerance thresholds.
func NewValidator(cfg config.OffersConfig) *Validator {
	return &Validator{cfg: cfg}
}

// Validate decides whether the submission may be persisted. The offer is
// storable only when no error-severity issue exists; warnings ride along.
func (v *Validator) Validate(vc ValidationContext, input SubmitOfferInput) (bool, dbtypes.Issues) {
	var issues dbtypes.Issues

	issues = append(issues, v.checkAuction(vc)...)
	issues = append(issues, v.checkInventory(vc, input)...)
	issues = append(issues, v.checkFeeBreakdown(input)...)
	issues = append(issues, v.checkFinancing(input)...)
	issues = append(issues, v.checkBudget(vc, input)...)

	return !issues.HasErrors(), issues
}

func (v *Validator) checkAuction(vc ValidationContext) dbtypes.Issues {
	var issues dbtypes.Issues
	if vc.Auction == nil {
		return append(issues, errorIssue(enums.IssueAuctionNotFound, "auction not found", "auction_id"))
	}
	if vc.Auction.Status != enums.AuctionStatusOpen {
		issues = append(issues, errorIssue(enums.IssueAuctionNotOpen,
			fmt.Sprintf("auction is %s, offers require an open auction", vc.Auction.Status), "auction_id"))
	}
	if !vc.Now.Before(vc.Auction.EndsAt) {
		issues = append(issues, errorIssue(enums.IssueAuctionExpired,
			fmt.Sprintf("auction ended at %s", vc.Auction.EndsAt.UTC().Format("2006-01-02T15:04:05Z")), "auction_id"))
	}
	if vc.Participant == nil {
		issues = append(issues, errorIssue(enums.IssueNotParticipant, "dealer is not invited to this auction", "dealer_id"))
	}
	if vc.hasActiveOffer() {
		issues = append(issues, errorIssue(enums.IssueAlreadySubmitted, "dealer already has an offer for this auction", "dealer_id"))
	}
	return issues
}

func (v *Validator) checkInventory(vc ValidationContext, input SubmitOfferInput) dbtypes.Issues {
	var issues dbtypes.Issues
	if vc.Inventory == nil {
		return append(issues, errorIssue(enums.IssueInventoryNotFound, "inventory item not found", "inventory_item_id"))
	}
	if vc.Inventory.DealerID != input.DealerID {
		issues = append(issues, errorIssue(enums.IssueInventoryNotOwned, "inventory item belongs to a different dealer", "inventory_item_id"))
	}
	if vc.Inventory.Status != enums.InventoryStatusAvailable {
		issues = append(issues, errorIssue(enums.IssueInventoryUnavailable,
			fmt.Sprintf("inventory item is %s", vc.Inventory.Status), "inventory_item_id"))
	}
	return issues
}

func (v *Validator) checkFeeBreakdown(input SubmitOfferInput) dbtypes.Issues {
	var issues dbtypes.Issues
	fb := input.FeeBreakdown

	for _, field := range []struct {
		name  string
		cents int64
	}{
		{"fee_breakdown.base_price_cents", fb.BasePriceCents},
		{"fee_breakdown.tax_cents", fb.TaxCents},
		{"fee_breakdown.title_registration_cents", fb.TitleRegistrationCents},
		{"fee_breakdown.doc_fee_cents", fb.DocFeeCents},
		{"fee_breakdown.dealer_fees_cents", fb.DealerFeesCents},
		{"fee_breakdown.other_fees_cents", fb.OtherFeesCents},
	} {
		if field.cents < 0 {
			issues = append(issues, errorIssue(enums.IssueNegativeFee,
				fmt.Sprintf("%s must not be negative", field.name), field.name))
		}
	}
	for i, addOn := range fb.AddOns {
		if addOn.PriceCents < 0 {
			field := fmt.Sprintf("fee_breakdown.add_ons[%d].price_cents", i)
			issues = append(issues, errorIssue(enums.IssueNegativeFee,
				fmt.Sprintf("%s must not be negative", field), field))
		}
	}

	if fb.BasePriceCents <= 0 {
		issues = append(issues, errorIssue(enums.IssueBasePriceRequired, "base price must be present and positive", "fee_breakdown.base_price_cents"))
	}

	computed := fb.Total()
	delta := input.CashOtdCents - computed
	if delta < 0 {
		delta = -delta
	}
	if delta > v.cfg.OtdToleranceCents {
		issues = append(issues, errorIssue(enums.IssueOtdMismatch,
			fmt.Sprintf("declared OTD %s does not match fee breakdown total %s (delta %s, tolerance %s)",
				dollars(input.CashOtdCents), dollars(computed), dollars(delta), dollars(v.cfg.OtdToleranceCents)),
			"cash_otd_cents"))
	}
	return issues
}

func (v *Validator) checkFinancing(input SubmitOfferInput) dbtypes.Issues {
	var issues dbtypes.Issues
	if len(input.FinancingOptions) == 0 {
		return append(issues, errorIssue(enums.IssueFinancingRequired, "at least one financing option is required", "financing_options"))
	}
	for i, option := range input.FinancingOptions {
		if option.Apr < aprMin || option.Apr > aprMax {
			field := fmt.Sprintf("financing_options[%d].apr", i)
			issues = append(issues, errorIssue(enums.IssueAprOutOfRange,
				fmt.Sprintf("option %d APR %.2f must be between %.0f and %.0f", i, option.Apr, aprMin, aprMax), field))
		}
		if option.TermMonths < termMin || option.TermMonths > termMax {
			field := fmt.Sprintf("financing_options[%d].term_months", i)
			issues = append(issues, errorIssue(enums.IssueTermOutOfRange,
				fmt.Sprintf("option %d term %d must be between %d and %d months", i, option.TermMonths, termMin, termMax), field))
		}
		if option.DownPaymentCents < 0 {
			field := fmt.Sprintf("financing_options[%d].down_payment_cents", i)
			issues = append(issues, errorIssue(enums.IssueDownPaymentNegative,
				fmt.Sprintf("option %d down payment must not be negative", i), field))
		}
		if option.MonthlyPaymentCents < 0 {
			field := fmt.Sprintf("financing_options[%d].monthly_payment_cents", i)
			issues = append(issues, errorIssue(enums.IssueMonthlyPaymentNegative,
				fmt.Sprintf("option %d monthly payment must not be negative", i), field))
		}
	}
	return issues
}

// checkBudget is the soft check: exceeding the pre-qualified ceiling by more
// than the configured percentage warns but never blocks.
func (v *Validator) checkBudget(vc ValidationContext, input SubmitOfferInput) dbtypes.Issues {
	ceiling := vc.BudgetCeilingCents()
	if ceiling == nil || *ceiling <= 0 {
		return nil
	}
	max := decimal.NewFromInt(*ceiling)
	otd := decimal.NewFromInt(input.CashOtdCents)
	if otd.LessThanOrEqual(max) {
		return nil
	}
	overagePct := otd.Sub(max).Div(max).Mul(decimal.NewFromInt(100))
	threshold := decimal.NewFromFloat(v.cfg.BudgetWarningPercent)
	if overagePct.LessThanOrEqual(threshold) {
		return nil
	}
	return dbtypes.Issues{{
		Code: enums.IssueOverBudget,
		Message: fmt.Sprintf("OTD %s exceeds pre-qualified budget %s by %s%%",
			dollars(input.CashOtdCents), dollars(*ceiling), overagePct.StringFixed(1)),
		Field:    "cash_otd_cents",
		Severity: enums.SeverityWarning,
	}}
}

func errorIssue(code enums.IssueCode, message, field string) dbtypes.Issue {
	return dbtypes.Issue{
		Code:     code,
		Message:  message,
		Field:    field,
		Severity: enums.SeverityError,
	}
}

func dollars(cents int64) string {
	return "$" + decimal.NewFromInt(cents).Div(decimal.NewFromInt(100)).StringFixed(2)
}
