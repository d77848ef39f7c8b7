package enums

// IssueSeverity splits offer validation findings into blocking errors and
// advisory warnings.
type IssueSeverity string

const (
	SeverityError   IssueSeverity = "error"
	SeverityWarning IssueSeverity = "warning"
)

// IsValid reports whether the value is a known IssueSeverity.
func (s IssueSeverity) IsValid() bool {
	return s == SeverityError || s == SeverityWarning
}

// IssueCode identifies a specific offer validation finding.
type IssueCode string

const (
	IssueAuctionNotFound        IssueCode = "AUCTION_NOT_FOUND"
	IssueAuctionNotOpen         IssueCode = "AUCTION_NOT_OPEN"
	IssueAuctionExpired         IssueCode = "AUCTION_EXPIRED"
	IssueNotParticipant         IssueCode = "NOT_PARTICIPANT"
	IssueAlreadySubmitted       IssueCode = "ALREADY_SUBMITTED"
	IssueInventoryNotFound      IssueCode = "INVENTORY_NOT_FOUND"
	IssueInventoryNotOwned      IssueCode = "INVENTORY_NOT_OWNED"
	IssueInventoryUnavailable   IssueCode = "INVENTORY_UNAVAILABLE"
	IssueOtdMismatch            IssueCode = "OTD_MISMATCH"
	IssueNegativeFee            IssueCode = "NEGATIVE_FEE"
	IssueBasePriceRequired      IssueCode = "BASE_PRICE_REQUIRED"
	IssueFinancingRequired      IssueCode = "FINANCING_REQUIRED"
	IssueAprOutOfRange          IssueCode = "APR_OUT_OF_RANGE"
	IssueTermOutOfRange         IssueCode = "TERM_OUT_OF_RANGE"
	IssueDownPaymentNegative    IssueCode = "DOWN_PAYMENT_NEGATIVE"
	IssueMonthlyPaymentNegative IssueCode = "MONTHLY_PAYMENT_NEGATIVE"
	IssueOverBudget             IssueCode = "OVER_BUDGET"
	IssueAdminOverride          IssueCode = "ADMIN_OVERRIDE"
)
