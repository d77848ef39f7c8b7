package enums

import "fmt"

// DealStatus tracks a deal through closing. COMPLETED and CANCELLED are
// terminal; the transition table lives in internal/deals.
type DealStatus string

const (
	DealStatusPendingFinancing DealStatus = "pending_financing"
	DealStatusFinancingChosen  DealStatus = "financing_chosen"
	DealStatusInsuranceReady   DealStatus = "insurance_ready"
	DealStatusContractPending  DealStatus = "contract_pending"
	DealStatusContractPassed   DealStatus = "contract_passed"
	DealStatusSigned           DealStatus = "signed"
	DealStatusPickupScheduled  DealStatus = "pickup_scheduled"
	DealStatusCompleted        DealStatus = "completed"
	DealStatusCancelled        DealStatus = "cancelled"
)

var validDealStatuses = []DealStatus{
	DealStatusPendingFinancing,
	DealStatusFinancingChosen,
	DealStatusInsuranceReady,
	DealStatusContractPending,
	DealStatusContractPassed,
	DealStatusSigned,
	DealStatusPickupScheduled,
	DealStatusCompleted,
	DealStatusCancelled,
}

// String implements fmt.Stringer.
func (d DealStatus) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DealStatus.
func (d DealStatus) IsValid() bool {
	for _, candidate := range validDealStatuses {
		if candidate == d {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status permits no further transitions.
func (d DealStatus) IsTerminal() bool {
	return d == DealStatusCompleted || d == DealStatusCancelled
}

// ParseDealStatus converts raw input into a DealStatus.
func ParseDealStatus(value string) (DealStatus, error) {
	for _, candidate := range validDealStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid deal status %q", value)
}
