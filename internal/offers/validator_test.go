package offers

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/autolenis/autolenis-backend/pkg/config"
	"github.com/autolenis/autolenis-backend/pkg/db/models"
	dbtypes "github.com/autolenis/autolenis-backend/pkg/db/types"
	"github.com/autolenis/autolenis-backend/pkg/enums"
)

func testValidator() *Validator {
	return NewValidator(config.OffersConfig{
		OtdToleranceCents:    500,
		BudgetWarningPercent: 20,
	})
}

func int64Ptr(v int64) *int64 { return &v }

func validContext(dealerID uuid.UUID) ValidationContext {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	auctionID := uuid.New()
	return ValidationContext{
		Auction: &models.Auction{
			ID:          auctionID,
			BuyerID:     uuid.New(),
			Status:      enums.AuctionStatusOpen,
			MaxOtdCents: int64Ptr(3_000_000),
			EndsAt:      now.Add(24 * time.Hour),
		},
		Participant: &models.AuctionParticipant{
			AuctionID: auctionID,
			DealerID:  dealerID,
		},
		Inventory: &models.InventoryItem{
			ID:       uuid.New(),
			DealerID: dealerID,
			Status:   enums.InventoryStatusAvailable,
			Year:     2021,
			Make:     "Toyota",
			Model:    "RAV4",
			Mileage:  24000,
		},
		Now: now,
	}
}

func validInput(vc ValidationContext, dealerID uuid.UUID) SubmitOfferInput {
	return SubmitOfferInput{
		AuctionID:       vc.Auction.ID,
		DealerID:        dealerID,
		InventoryItemID: vc.Inventory.ID,
		CashOtdCents:    2_700_000,
		FeeBreakdown: dbtypes.FeeBreakdown{
			BasePriceCents: 2_500_000,
			TaxCents:       200_000,
		},
		FinancingOptions: []FinancingOptionInput{
			{Lender: "Ally", Apr: 6.5, TermMonths: 60, MonthlyPaymentCents: 48_000},
		},
	}
}

func hasIssue(issues dbtypes.Issues, code enums.IssueCode) bool {
	for _, issue := range issues {
		if issue.Code == code {
			return true
		}
	}
	return false
}

func TestValidateCleanSubmission(t *testing.T) {
	dealerID := uuid.New()
	vc := validContext(dealerID)

	ok, issues := testValidator().Validate(vc, validInput(vc, dealerID))
	if !ok {
		t.Fatalf("expected valid submission, got issues %v", issues)
	}
	if len(issues) != 0 {
		t.Fatalf("expected no issues, got %v", issues)
	}
}

func TestValidateOtdMismatch(t *testing.T) {
	dealerID := uuid.New()
	vc := validContext(dealerID)
	input := validInput(vc, dealerID)
	// Breakdown totals $27,000.00 but the dealer declares $26,500.00.
	input.CashOtdCents = 2_650_000

	ok, issues := testValidator().Validate(vc, input)
	if ok {
		t.Fatal("expected rejection")
	}
	if !hasIssue(issues, enums.IssueOtdMismatch) {
		t.Fatalf("expected OTD_MISMATCH, got %v", issues)
	}
	for _, issue := range issues {
		if issue.Code != enums.IssueOtdMismatch {
			continue
		}
		for _, want := range []string{"$26500.00", "$27000.00", "$500.00"} {
			if !strings.Contains(issue.Message, want) {
				t.Fatalf("mismatch message missing %q: %s", want, issue.Message)
			}
		}
	}
}

func TestValidateOtdToleranceBoundary(t *testing.T) {
	dealerID := uuid.New()
	vc := validContext(dealerID)
	input := validInput(vc, dealerID)
	input.CashOtdCents = 2_700_500

	ok, issues := testValidator().Validate(vc, input)
	if !ok {
		t.Fatalf("delta of exactly the tolerance should pass, got %v", issues)
	}

	input.CashOtdCents = 2_700_501
	ok, issues = testValidator().Validate(vc, input)
	if ok || !hasIssue(issues, enums.IssueOtdMismatch) {
		t.Fatalf("delta one cent over tolerance should fail, got ok=%t issues=%v", ok, issues)
	}
}

func TestValidateNegativeFees(t *testing.T) {
	dealerID := uuid.New()
	vc := validContext(dealerID)
	input := validInput(vc, dealerID)
	input.FeeBreakdown.DocFeeCents = -100
	input.FeeBreakdown.AddOns = []dbtypes.AddOn{{Name: "Paint protection", PriceCents: -5000}}
	input.CashOtdCents = input.FeeBreakdown.Total()

	ok, issues := testValidator().Validate(vc, input)
	if ok {
		t.Fatal("expected rejection")
	}
	count := 0
	for _, issue := range issues {
		if issue.Code == enums.IssueNegativeFee {
			count++
		}
	}
	if count != 2 {
		t.Fatalf("expected a NEGATIVE_FEE per offending field, got %d in %v", count, issues)
	}
	if !hasIssue(issues, enums.IssueNegativeFee) {
		t.Fatalf("expected NEGATIVE_FEE, got %v", issues)
	}
}

func TestValidateBasePriceRequired(t *testing.T) {
	dealerID := uuid.New()
	vc := validContext(dealerID)
	input := validInput(vc, dealerID)
	input.FeeBreakdown.BasePriceCents = 0
	input.CashOtdCents = input.FeeBreakdown.Total()

	ok, issues := testValidator().Validate(vc, input)
	if ok || !hasIssue(issues, enums.IssueBasePriceRequired) {
		t.Fatalf("expected BASE_PRICE_REQUIRED, got ok=%t issues=%v", ok, issues)
	}
}

func TestValidateFinancingRules(t *testing.T) {
	dealerID := uuid.New()
	vc := validContext(dealerID)

	input := validInput(vc, dealerID)
	input.FinancingOptions = nil
	ok, issues := testValidator().Validate(vc, input)
	if ok || !hasIssue(issues, enums.IssueFinancingRequired) {
		t.Fatalf("expected FINANCING_REQUIRED, got ok=%t issues=%v", ok, issues)
	}

	input = validInput(vc, dealerID)
	input.FinancingOptions = []FinancingOptionInput{
		{Lender: "Ally", Apr: 41, TermMonths: 10, DownPaymentCents: -1, MonthlyPaymentCents: -1},
	}
	ok, issues = testValidator().Validate(vc, input)
	if ok {
		t.Fatal("expected rejection")
	}
	for _, code := range []enums.IssueCode{
		enums.IssueAprOutOfRange,
		enums.IssueTermOutOfRange,
		enums.IssueDownPaymentNegative,
		enums.IssueMonthlyPaymentNegative,
	} {
		if !hasIssue(issues, code) {
			t.Fatalf("expected %s, got %v", code, issues)
		}
	}
}

func TestValidateBudgetWarning(t *testing.T) {
	dealerID := uuid.New()
	vc := validContext(dealerID)
	input := validInput(vc, dealerID)
	// 23.3% over the $30,000.00 ceiling: warn but accept.
	input.FeeBreakdown = dbtypes.FeeBreakdown{BasePriceCents: 3_500_000, TaxCents: 200_000}
	input.CashOtdCents = 3_700_000

	ok, issues := testValidator().Validate(vc, input)
	if !ok {
		t.Fatalf("budget overage must not reject, got %v", issues)
	}
	if !hasIssue(issues, enums.IssueOverBudget) {
		t.Fatalf("expected OVER_BUDGET warning, got %v", issues)
	}
	for _, issue := range issues {
		if issue.Code == enums.IssueOverBudget {
			if issue.Severity != enums.SeverityWarning {
				t.Fatalf("OVER_BUDGET must be a warning, got %s", issue.Severity)
			}
			if !strings.Contains(issue.Message, "23.3%") {
				t.Fatalf("expected overage percentage in message, got %s", issue.Message)
			}
		}
	}
}

func TestValidateWithinBudgetGrace(t *testing.T) {
	dealerID := uuid.New()
	vc := validContext(dealerID)
	input := validInput(vc, dealerID)
	// 20% over exactly is still inside the grace band.
	input.FeeBreakdown = dbtypes.FeeBreakdown{BasePriceCents: 3_400_000, TaxCents: 200_000}
	input.CashOtdCents = 3_600_000

	ok, issues := testValidator().Validate(vc, input)
	if !ok || len(issues) != 0 {
		t.Fatalf("expected clean acceptance at the threshold, got ok=%t issues=%v", ok, issues)
	}
}

func TestValidateNoBudgetOnFile(t *testing.T) {
	dealerID := uuid.New()
	vc := validContext(dealerID)
	vc.Auction.MaxOtdCents = nil
	input := validInput(vc, dealerID)
	input.FeeBreakdown = dbtypes.FeeBreakdown{BasePriceCents: 9_000_000, TaxCents: 700_000}
	input.CashOtdCents = 9_700_000

	ok, issues := testValidator().Validate(vc, input)
	if !ok || len(issues) != 0 {
		t.Fatalf("no ceiling means no budget check, got ok=%t issues=%v", ok, issues)
	}
}

func TestValidateAuctionGates(t *testing.T) {
	dealerID := uuid.New()

	vc := validContext(dealerID)
	vc.Auction = nil
	ok, issues := testValidator().Validate(vc, validInput(validContext(dealerID), dealerID))
	if ok || !hasIssue(issues, enums.IssueAuctionNotFound) {
		t.Fatalf("expected AUCTION_NOT_FOUND, got ok=%t issues=%v", ok, issues)
	}

	vc = validContext(dealerID)
	vc.Auction.Status = enums.AuctionStatusClosed
	ok, issues = testValidator().Validate(vc, validInput(vc, dealerID))
	if ok || !hasIssue(issues, enums.IssueAuctionNotOpen) {
		t.Fatalf("expected AUCTION_NOT_OPEN, got ok=%t issues=%v", ok, issues)
	}

	vc = validContext(dealerID)
	vc.Now = vc.Auction.EndsAt.Add(time.Minute)
	ok, issues = testValidator().Validate(vc, validInput(vc, dealerID))
	if ok || !hasIssue(issues, enums.IssueAuctionExpired) {
		t.Fatalf("expected AUCTION_EXPIRED, got ok=%t issues=%v", ok, issues)
	}

	vc = validContext(dealerID)
	vc.Participant = nil
	ok, issues = testValidator().Validate(vc, validInput(vc, dealerID))
	if ok || !hasIssue(issues, enums.IssueNotParticipant) {
		t.Fatalf("expected NOT_PARTICIPANT, got ok=%t issues=%v", ok, issues)
	}

	vc = validContext(dealerID)
	vc.ExistingOffer = &models.Offer{Status: enums.OfferStatusActive}
	ok, issues = testValidator().Validate(vc, validInput(vc, dealerID))
	if ok || !hasIssue(issues, enums.IssueAlreadySubmitted) {
		t.Fatalf("expected ALREADY_SUBMITTED, got ok=%t issues=%v", ok, issues)
	}

	// A withdrawn prior offer does not block a new submission.
	vc = validContext(dealerID)
	vc.ExistingOffer = &models.Offer{Status: enums.OfferStatusWithdrawn}
	ok, issues = testValidator().Validate(vc, validInput(vc, dealerID))
	if !ok || len(issues) != 0 {
		t.Fatalf("withdrawn prior offer should not block, got ok=%t issues=%v", ok, issues)
	}
}

func TestValidateInventoryGates(t *testing.T) {
	dealerID := uuid.New()

	vc := validContext(dealerID)
	vc.Inventory = nil
	ok, issues := testValidator().Validate(vc, validInput(validContext(dealerID), dealerID))
	if ok || !hasIssue(issues, enums.IssueInventoryNotFound) {
		t.Fatalf("expected INVENTORY_NOT_FOUND, got ok=%t issues=%v", ok, issues)
	}

	vc = validContext(dealerID)
	vc.Inventory.DealerID = uuid.New()
	ok, issues = testValidator().Validate(vc, validInput(vc, dealerID))
	if ok || !hasIssue(issues, enums.IssueInventoryNotOwned) {
		t.Fatalf("expected INVENTORY_NOT_OWNED, got ok=%t issues=%v", ok, issues)
	}

	vc = validContext(dealerID)
	vc.Inventory.Status = enums.InventoryStatusSold
	ok, issues = testValidator().Validate(vc, validInput(vc, dealerID))
	if ok || !hasIssue(issues, enums.IssueInventoryUnavailable) {
		t.Fatalf("expected INVENTORY_UNAVAILABLE, got ok=%t issues=%v", ok, issues)
	}
}

func TestValidateAccumulatesIssues(t *testing.T) {
	dealerID := uuid.New()
	vc := validContext(dealerID)
	vc.Participant = nil
	input := validInput(vc, dealerID)
	input.FinancingOptions = nil
	input.CashOtdCents = 1

	ok, issues := testValidator().Validate(vc, input)
	if ok {
		t.Fatal("expected rejection")
	}
	if len(issues) < 3 {
		t.Fatalf("expected all findings in one pass, got %v", issues)
	}
}
